// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package element

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Attribute is a single scalar slot. Values are plain Go values that must
// convert to the declared cty type. Storage is sparse: holding the default
// is the same as holding nothing.
type Attribute struct {
	descriptor
	typ  cty.Type
	def  any
	enum []string
}

// AttributeOption configures an Attribute.
type AttributeOption func(*Attribute)

// WithDefault sets the value returned while nothing is stored.
func WithDefault(v any) AttributeOption {
	return func(a *Attribute) { a.def = v }
}

// WithEnum restricts a string attribute to the given literals.
func WithEnum(values ...string) AttributeOption {
	return func(a *Attribute) { a.enum = slices.Clone(values) }
}

// NewAttribute creates an attribute of the given type. cty.DynamicPseudoType
// accepts any value.
func NewAttribute(name string, typ cty.Type, opts ...AttributeOption) *Attribute {
	a := &Attribute{
		descriptor: descriptor{name: name, lower: 0, upper: 1},
		typ:        typ,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Attribute) Kind() PropertyKind { return KindAttribute }
func (a *Attribute) Target() *Type { return nil }
func (a *Attribute) Type() cty.Type { return a.typ }
func (a *Attribute) Default() any { return a.def }
func (a *Attribute) Enum() []string { return slices.Clone(a.enum) }

func (a *Attribute) Get(e *Element) any {
	if v, ok := e.values[a.name]; ok {
		return v
	}
	return a.def
}

func (a *Attribute) Set(e *Element, v any) error {
	return a.assign(e, v, true)
}

// Delete resets the attribute to its default. The value argument is ignored.
func (a *Attribute) Delete(e *Element, _ any) error {
	return a.assign(e, nil, true)
}

func (a *Attribute) Load(e *Element, v any) error {
	return a.assign(e, v, false)
}

func (a *Attribute) assign(e *Element, v any, notify bool) error {
	if err := a.check(v); err != nil {
		return err
	}

	old := a.Get(e)
	if v == nil || a.equal(v, a.def) {
		delete(e.values, a.name)
	} else {
		e.values[a.name] = v
	}

	current := a.Get(e)
	if notify && !a.equal(old, current) {
		e.emit(Event{Kind: AttributeUpdated, Element: e, Property: a, Old: old, New: current})
	}
	return nil
}

func (a *Attribute) check(v any) error {
	if v == nil {
		return nil
	}
	if len(a.enum) > 0 {
		s, ok := v.(string)
		if !ok || !slices.Contains(a.enum, s) {
			return fmt.Errorf("%w: %s accepts one of %v, got %#v", ErrTypeViolation, a.qualified(), a.enum, v)
		}
		return nil
	}
	if a.typ.Equals(cty.DynamicPseudoType) {
		return nil
	}
	if _, err := gocty.ToCtyValue(v, a.typ); err != nil {
		return fmt.Errorf("%w: %s expects %s, got %T: %v", ErrTypeViolation, a.qualified(), a.typ.FriendlyName(), v, err)
	}
	return nil
}

// equal compares two attribute values by their cty representation, so 3
// and 3.0 are the same number.
func (a *Attribute) equal(x, y any) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	if a.typ.Equals(cty.DynamicPseudoType) {
		return reflect.DeepEqual(x, y)
	}
	cx, errX := gocty.ToCtyValue(x, a.typ)
	cy, errY := gocty.ToCtyValue(y, a.typ)
	if errX != nil || errY != nil {
		return reflect.DeepEqual(x, y)
	}
	return cx.Equals(cy).True()
}

func (a *Attribute) related(*Element) []*Element { return nil }
func (a *Attribute) unlink(*Element) {}
