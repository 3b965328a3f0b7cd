// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package element

import (
	"fmt"
	"slices"
)

// Type is a metamodel class. Properties are looked up on the type itself
// first and then on its supertypes in declaration order.
type Type struct {
	name     string
	supers   []*Type
	abstract bool
	diagram  bool
	own      []Property
	byName   map[string]Property
}

// TypeOption configures a Type at construction.
type TypeOption func(*Type)

// Abstract marks a type that cannot be instantiated.
func Abstract() TypeOption {
	return func(t *Type) { t.abstract = true }
}

// DiagramBearing marks a type whose instances hold view state. Factory.Flush
// tears those down before the rest of the model.
func DiagramBearing() TypeOption {
	return func(t *Type) { t.diagram = true }
}

// Extends declares supertypes.
func Extends(supers ...*Type) TypeOption {
	return func(t *Type) { t.Extend(supers...) }
}

// NewType creates a type with no properties.
func NewType(name string, opts ...TypeOption) *Type {
	t := &Type{name: name, byName: make(map[string]Property)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Type) Name() string { return t.name }
func (t *Type) String() string { return t.name }
func (t *Type) IsAbstract() bool { return t.abstract }
func (t *Type) Supertypes() []*Type { return slices.Clone(t.supers) }

// IsDiagram reports whether t or any of its supertypes is diagram bearing.
func (t *Type) IsDiagram() bool {
	if t.diagram {
		return true
	}
	for _, s := range t.supers {
		if s.IsDiagram() {
			return true
		}
	}
	return false
}

// Extend appends supertypes. It panics if that would make the hierarchy
// cyclic.
func (t *Type) Extend(supers ...*Type) {
	for _, s := range supers {
		if s.IsSubtypeOf(t) {
			panic(fmt.Sprintf("element: %s cannot extend %s: cyclic hierarchy", t.name, s.name))
		}
		if !slices.Contains(t.supers, s) {
			t.supers = append(t.supers, s)
		}
	}
}

// IsSubtypeOf reports whether t is o or derives from it.
func (t *Type) IsSubtypeOf(o *Type) bool {
	if t == o {
		return true
	}
	for _, s := range t.supers {
		if s.IsSubtypeOf(o) {
			return true
		}
	}
	return false
}

// Define adds a property to the type and makes the type its owner. It
// panics when the type already declares a property of the same name.
func (t *Type) Define(p Property) {
	name := p.Name()
	if _, exists := t.byName[name]; exists {
		panic(fmt.Sprintf("element: property %s.%s already defined", t.name, name))
	}
	p.base().owner = t
	t.byName[name] = p
	t.own = append(t.own, p)
}

// Property resolves name on t or its supertypes.
func (t *Type) Property(name string) (Property, bool) {
	if p, ok := t.byName[name]; ok {
		return p, true
	}
	for _, s := range t.supers {
		if p, ok := s.Property(name); ok {
			return p, true
		}
	}
	return nil, false
}

// OwnProperties returns the properties declared directly on t.
func (t *Type) OwnProperties() []Property {
	return slices.Clone(t.own)
}

// Properties returns every property visible on t. A property declared on a
// subtype hides a supertype property of the same name.
func (t *Type) Properties() []Property {
	var out []Property
	seen := make(map[string]struct{})
	t.collect(&out, seen)
	return out
}

func (t *Type) collect(out *[]Property, seen map[string]struct{}) {
	for _, p := range t.own {
		if _, ok := seen[p.Name()]; ok {
			continue
		}
		seen[p.Name()] = struct{}{}
		*out = append(*out, p)
	}
	for _, s := range t.supers {
		s.collect(out, seen)
	}
}

// PropertyNames lists the names of Properties.
func (t *Type) PropertyNames() []string {
	props := t.Properties()
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name()
	}
	return names
}

// Metamodel is a registry of types by name.
type Metamodel struct {
	types map[string]*Type
	order []*Type
}

// NewMetamodel creates an empty metamodel.
func NewMetamodel() *Metamodel {
	return &Metamodel{types: make(map[string]*Type)}
}

// Register adds t. It panics on a duplicate name.
func (m *Metamodel) Register(t *Type) {
	if _, exists := m.types[t.name]; exists {
		panic(fmt.Sprintf("element: type %q already registered", t.name))
	}
	m.types[t.name] = t
	m.order = append(m.order, t)
}

// Lookup finds a type by name.
func (m *Metamodel) Lookup(name string) (*Type, bool) {
	t, ok := m.types[name]
	return t, ok
}

// MustLookup is like Lookup but panics for unknown names.
func (m *Metamodel) MustLookup(name string) *Type {
	t, ok := m.types[name]
	if !ok {
		panic(fmt.Sprintf("element: unknown type %q", name))
	}
	return t
}

// Types returns every registered type in registration order.
func (m *Metamodel) Types() []*Type {
	return slices.Clone(m.order)
}

// Names returns the registered type names in registration order.
func (m *Metamodel) Names() []string {
	names := make([]string, len(m.order))
	for i, t := range m.order {
		names[i] = t.name
	}
	return names
}
