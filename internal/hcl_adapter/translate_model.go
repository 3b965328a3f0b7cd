// This file contains the logic for translating HCL schema structs into the
// format-agnostic definitions of the config package.

package hcl_adapter

import (
	"context"
	"fmt"
	"slices"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/specialistvlad/modelcore/internal/config"
	"github.com/specialistvlad/modelcore/internal/ctxlog"
)

func translateSettings(s *SettingsBlock) (config.Settings, error) {
	out := config.Settings{LogLevel: s.LogLevel, LogFormat: s.LogFormat}
	if s.UndoDepth != nil {
		if *s.UndoDepth == 0 {
			return out, fmt.Errorf("settings: undo_depth must not be 0; use a negative value for an unbounded history")
		}
		out.UndoDepth = *s.UndoDepth
	}
	return out, nil
}

// translateType converts one `type` block into the agnostic model.
func (l *Loader) translateType(ctx context.Context, t *TypeBlock) (*config.TypeDefinition, error) {
	logger := ctxlog.FromContext(ctx).With("type", t.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL type to internal config model.")

	def := &config.TypeDefinition{
		Name:        t.Name,
		Description: t.Description,
		Extends:     t.Extends,
		Abstract:    t.Abstract,
		Diagram:     t.Diagram,
	}
	seen := make(map[string]struct{})
	claim := func(name string) error {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("type '%s' declares property '%s' more than once", t.Name, name)
		}
		seen[name] = struct{}{}
		return nil
	}

	for _, a := range t.Attributes {
		if err := claim(a.Name); err != nil {
			return nil, err
		}
		attr, err := translateAttribute(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("in type '%s', attribute '%s': %w", t.Name, a.Name, err)
		}
		def.Attributes = append(def.Attributes, attr)
	}
	for _, a := range t.Associations {
		if err := claim(a.Name); err != nil {
			return nil, err
		}
		lo, hi, err := bounds(ctx, a.Lower, a.Upper)
		if err != nil {
			return nil, fmt.Errorf("in type '%s', association '%s': %w", t.Name, a.Name, err)
		}
		def.Associations = append(def.Associations, &config.AssociationDefinition{
			Name:        a.Name,
			Target:      a.Target,
			Description: a.Description,
			Lower:       lo,
			Upper:       hi,
			Opposite:    a.Opposite,
			Composite:   a.Composite,
		})
	}
	for _, d := range t.DerivedUnions {
		if err := claim(d.Name); err != nil {
			return nil, err
		}
		lo, hi, err := bounds(ctx, d.Lower, d.Upper)
		if err != nil {
			return nil, fmt.Errorf("in type '%s', derived union '%s': %w", t.Name, d.Name, err)
		}
		if len(d.Subsets) == 0 {
			return nil, fmt.Errorf("in type '%s', derived union '%s': at least one subset is required", t.Name, d.Name)
		}
		def.DerivedUnions = append(def.DerivedUnions, &config.DerivedUnionDefinition{
			Name:        d.Name,
			Target:      d.Target,
			Description: d.Description,
			Lower:       lo,
			Upper:       hi,
			Subsets:     d.Subsets,
		})
	}
	for _, r := range t.Redefines {
		if err := claim(r.Name); err != nil {
			return nil, err
		}
		def.Redefines = append(def.Redefines, &config.RedefineDefinition{
			Name:        r.Name,
			Target:      r.Target,
			Description: r.Description,
			Original:    r.Original,
		})
	}
	return def, nil
}

// translateAttribute parses the type expression and converts the default
// value to that type.
func translateAttribute(ctx context.Context, a *AttributeBlock) (*config.AttributeDefinition, error) {
	typ := cty.DynamicPseudoType
	switch {
	case isExprDefined(ctx, a.Type, "type"):
		parsed, err := typeExprToCtyType(ctx, a.Type)
		if err != nil {
			return nil, err
		}
		typ = parsed
	case len(a.Enum) > 0:
		typ = cty.String
	}
	if len(a.Enum) > 0 && !typ.Equals(cty.String) {
		return nil, fmt.Errorf("enum requires type string, got %s", typ.FriendlyName())
	}

	def := &config.AttributeDefinition{
		Name:        a.Name,
		Type:        typ,
		Description: a.Description,
		Enum:        a.Enum,
	}
	if !isExprDefined(ctx, a.Default, "default") {
		return def, nil
	}

	val, diags := a.Default.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid default value: %w", diags)
	}
	if val.IsNull() {
		return def, nil
	}
	if !typ.Equals(cty.DynamicPseudoType) {
		converted, err := convert.Convert(val, typ)
		if err != nil {
			return nil, fmt.Errorf("default value does not match type %s: %w", typ.FriendlyName(), err)
		}
		val = converted
	}
	if len(a.Enum) > 0 && !slices.Contains(a.Enum, val.AsString()) {
		return nil, fmt.Errorf("default %q is not one of %v", val.AsString(), a.Enum)
	}
	def.Default = &val
	return def, nil
}
