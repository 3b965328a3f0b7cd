package hcl_adapter

import (
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// ToNative converts a cty value into a plain Go value. Collections of
// primitives become typed slices and maps so that they convert back to the
// declared collection type.
func (c *Converter) ToNative(v cty.Value) (any, error) {
	return ctyToNative(v)
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}

func ctyToNative(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("value of type %s is not known", val.Type().FriendlyName())
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case ty.IsListType() || ty.IsSetType():
		return primitiveCollection(val, ty.ElementType(), false)
	case ty.IsMapType():
		return primitiveCollection(val, ty.ElementType(), true)
	case ty.IsTupleType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			n, err := ctyToNative(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case ty.IsObjectType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			n, err := ctyToNative(ev)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", k.AsString(), err)
			}
			out[k.AsString()] = n
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}

// primitiveCollection decodes a list, set or map of a primitive element
// type into the matching typed Go slice or map.
func primitiveCollection(val cty.Value, elem cty.Type, isMap bool) (any, error) {
	var target any
	switch {
	case elem == cty.String && isMap:
		target = &map[string]string{}
	case elem == cty.String:
		target = &[]string{}
	case elem == cty.Number && isMap:
		target = &map[string]float64{}
	case elem == cty.Number:
		target = &[]float64{}
	case elem == cty.Bool && isMap:
		target = &map[string]bool{}
	case elem == cty.Bool:
		target = &[]bool{}
	default:
		return nil, fmt.Errorf("unsupported collection element type %s", elem.FriendlyName())
	}
	if val.Type().IsSetType() {
		list, err := convert.Convert(val, cty.List(elem))
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", val.Type().FriendlyName(), err)
		}
		val = list
	}
	if err := gocty.FromCtyValue(val, target); err != nil {
		return nil, fmt.Errorf("convert %s: %w", val.Type().FriendlyName(), err)
	}
	return reflect.ValueOf(target).Elem().Interface(), nil
}
