package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/modelcore/internal/ctxlog"
)

var primitiveTypes = map[string]cty.Type{
	"string": cty.String,
	"number": cty.Number,
	"bool":   cty.Bool,
	"any":    cty.DynamicPseudoType,
}

var collectionTypes = map[string]func(cty.Type) cty.Type{
	"list": cty.List,
	"set":  cty.Set,
	"map":  cty.Map,
}

// typeExprToCtyType converts an attribute type expression such as `string`,
// `list(number)` or `object({ x = number })` into a cty.Type. A nil
// expression means any.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	if expr == nil {
		return cty.DynamicPseudoType, nil
	}

	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.NilType, fmt.Errorf("type keyword must be a single identifier")
		}
		t, ok := primitiveTypes[v.Traversal.RootName()]
		if !ok {
			return cty.NilType, fmt.Errorf("unknown primitive type %q", v.Traversal.RootName())
		}
		return t, nil

	case *hclsyntax.FunctionCallExpr:
		ctxlog.FromContext(ctx).Debug("Resolving type constructor.", "constructor", v.Name)
		switch v.Name {
		case "object":
			return objectTypeExpr(ctx, v)
		case "tuple":
			return tupleTypeExpr(ctx, v)
		}
		wrap, ok := collectionTypes[v.Name]
		if !ok {
			return cty.NilType, fmt.Errorf("unknown type constructor %q", v.Name)
		}
		if len(v.Args) != 1 {
			return cty.NilType, fmt.Errorf("%s() takes exactly one element type, got %d arguments", v.Name, len(v.Args))
		}
		elem, err := typeExprToCtyType(ctx, v.Args[0])
		if err != nil {
			return cty.NilType, fmt.Errorf("in %s(): %w", v.Name, err)
		}
		if elem == cty.DynamicPseudoType {
			return cty.NilType, fmt.Errorf("%s() cannot hold type any", v.Name)
		}
		return wrap(elem), nil

	default:
		return cty.NilType, fmt.Errorf("unsupported type expression %T", v)
	}
}

// objectTypeExpr parses `object({ key = type, ... })`.
func objectTypeExpr(ctx context.Context, call *hclsyntax.FunctionCallExpr) (cty.Type, error) {
	if len(call.Args) != 1 {
		return cty.NilType, fmt.Errorf("object() takes one object literal, got %d arguments", len(call.Args))
	}
	objExpr, ok := call.Args[0].(*hclsyntax.ObjectConsExpr)
	if !ok {
		return cty.NilType, fmt.Errorf("object() expects a literal like { key = type }, got %T", call.Args[0])
	}

	attrs := make(map[string]cty.Type, len(objExpr.Items))
	for _, item := range objExpr.Items {
		key := objectKey(item.KeyExpr)
		if key == "" {
			return cty.NilType, fmt.Errorf("object type keys must be identifiers or quoted strings")
		}
		t, err := typeExprToCtyType(ctx, item.ValueExpr)
		if err != nil {
			return cty.NilType, fmt.Errorf("in object attribute %q: %w", key, err)
		}
		attrs[key] = t
	}
	return cty.Object(attrs), nil
}

// tupleTypeExpr parses `tuple([type, ...])`.
func tupleTypeExpr(ctx context.Context, call *hclsyntax.FunctionCallExpr) (cty.Type, error) {
	if len(call.Args) != 1 {
		return cty.NilType, fmt.Errorf("tuple() takes one list of types, got %d arguments", len(call.Args))
	}
	list, ok := call.Args[0].(*hclsyntax.TupleConsExpr)
	if !ok {
		return cty.NilType, fmt.Errorf("tuple() expects a literal like [type, ...], got %T", call.Args[0])
	}

	elems := make([]cty.Type, len(list.Exprs))
	for i, e := range list.Exprs {
		t, err := typeExprToCtyType(ctx, e)
		if err != nil {
			return cty.NilType, fmt.Errorf("in tuple element %d: %w", i, err)
		}
		elems[i] = t
	}
	return cty.Tuple(elems), nil
}

func objectKey(expr hclsyntax.Expression) string {
	keyExpr, ok := expr.(*hclsyntax.ObjectConsKeyExpr)
	if !ok {
		return ""
	}
	switch k := keyExpr.Wrapped.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(k.Traversal) == 1 {
			return k.Traversal.RootName()
		}
	case *hclsyntax.TemplateExpr:
		if len(k.Parts) == 1 {
			if lit, isLit := k.Parts[0].(*hclsyntax.LiteralValueExpr); isLit && lit.Val.Type().Equals(cty.String) {
				return lit.Val.AsString()
			}
		}
	}
	return ""
}
