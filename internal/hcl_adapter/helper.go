package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/specialistvlad/modelcore/internal/config"
	"github.com/specialistvlad/modelcore/internal/ctxlog"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with zero-width
// placeholder expressions, so a nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	isDefined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// upperBound evaluates an `upper` expression: "*" is unbounded, a number is
// taken as is, and an omitted expression means 1.
func upperBound(ctx context.Context, expr hcl.Expression) (int, error) {
	if !isExprDefined(ctx, expr, "upper") {
		return 1, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, fmt.Errorf("invalid upper bound: %w", diags)
	}
	if val.Type() == cty.String && val.AsString() == "*" {
		return config.Many, nil
	}
	var n int
	if err := gocty.FromCtyValue(val, &n); err != nil {
		return 0, fmt.Errorf("upper bound must be a whole number or \"*\": %w", err)
	}
	if n < 1 {
		return 0, fmt.Errorf("upper bound must be at least 1, got %d", n)
	}
	return n, nil
}

// bounds combines an optional lower bound with an upper expression.
func bounds(ctx context.Context, lower *int, upper hcl.Expression) (int, int, error) {
	lo := 0
	if lower != nil {
		lo = *lower
	}
	hi, err := upperBound(ctx, upper)
	if err != nil {
		return 0, 0, err
	}
	if lo < 0 || (hi != config.Many && lo > hi) {
		return 0, 0, fmt.Errorf("invalid multiplicity %d..%d", lo, hi)
	}
	return lo, hi, nil
}
