// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package element

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/modelcore/internal/propath"
)

// referrer records that holder's association slot prop points at an
// element, so unlinking the element can clear that slot.
type referrer struct {
	holder string
	prop   *Association
}

// Element is an identity-bearing node of the graph. Its slots are read and
// written only through property descriptors.
type Element struct {
	id        string
	typ       *Type
	factory   *Factory
	seq       uint64
	values    map[string]any
	referrers []referrer
	unlinking bool
}

func (e *Element) ID() string { return e.id }
func (e *Element) Type() *Type { return e.typ }

func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	return e.typ.name + "(" + e.id + ")"
}

// IsKindOf reports whether e is an instance of t or one of its subtypes.
func (e *Element) IsKindOf(t *Type) bool {
	return e.typ.IsSubtypeOf(t)
}

// IsKindOfName is IsKindOf by type name.
func (e *Element) IsKindOfName(name string) bool {
	t, ok := e.factory.model.Lookup(name)
	return ok && e.IsKindOf(t)
}

// Property resolves a property of e's type by name.
func (e *Element) Property(name string) (Property, error) {
	if p, ok := e.typ.Property(name); ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s has no property %q%s", ErrNotFound, e.typ.name, name, propath.Hint(name, e.typ.PropertyNames()))
}

func (e *Element) Get(name string) (any, error) {
	p, err := e.Property(name)
	if err != nil {
		return nil, err
	}
	return p.Get(e), nil
}

func (e *Element) Set(name string, v any) error {
	p, err := e.Property(name)
	if err != nil {
		return err
	}
	return p.Set(e, v)
}

func (e *Element) Delete(name string, v any) error {
	p, err := e.Property(name)
	if err != nil {
		return err
	}
	return p.Delete(e, v)
}

func (e *Element) Load(name string, v any) error {
	p, err := e.Property(name)
	if err != nil {
		return err
	}
	return p.Load(e, v)
}

// Ref returns the first element held by the named property, or nil.
func (e *Element) Ref(name string) *Element {
	if refs := e.Refs(name); len(refs) > 0 {
		return refs[0]
	}
	return nil
}

// Refs returns the elements held by the named property. Unknown names and
// attributes yield nil.
func (e *Element) Refs(name string) []*Element {
	p, ok := e.typ.Property(name)
	if !ok {
		return nil
	}
	return p.related(e)
}

// Collection returns the collection behind a multi-valued association.
func (e *Element) Collection(name string) (*Collection, error) {
	p, err := e.Property(name)
	if err != nil {
		return nil, err
	}
	for {
		switch v := p.(type) {
		case *Association:
			if c := v.Collection(e); c != nil {
				return c, nil
			}
			return nil, fmt.Errorf("%w: %s is single-valued", ErrInvalidOperation, v.qualified())
		case *Redefine:
			p = v.original
		default:
			return nil, fmt.Errorf("%w: %s is a %s, not an association", ErrInvalidOperation, name, p.Kind())
		}
	}
}

// Related returns the elements held by p on e.
func (e *Element) Related(p Property) []*Element {
	return p.related(e)
}

// Unlink removes e from the model. Composite values are unlinked first,
// then every link of e is removed from both ends, then slots elsewhere that
// still point at e are cleared, and finally e leaves the factory with an
// ElementDeleted event. Calling Unlink again, or while it runs, does nothing.
func (e *Element) Unlink() {
	if e.unlinking || !e.factory.owns(e) {
		return
	}
	e.unlinking = true
	defer func() { e.unlinking = false }()

	for _, p := range e.typ.Properties() {
		p.unlink(e)
	}

	for len(e.referrers) > 0 {
		r := e.referrers[len(e.referrers)-1]
		holder := e.factory.resolve(r.holder)
		if holder == nil || r.prop.unlinkValue(holder, e, linkOneSided, true) != nil {
			e.referrers = e.referrers[:len(e.referrers)-1]
		}
	}

	e.factory.remove(e)
}

// Watcher returns a Watcher rooted at e. handler is used for paths added
// with Watch.
func (e *Element) Watcher(handler Handler) *Watcher {
	return &Watcher{element: e, handler: handler}
}

func (e *Element) emit(ev Event) {
	e.factory.bus.Publish(ev)
}

func (e *Element) addReferrer(holder *Element, p *Association) {
	e.referrers = append(e.referrers, referrer{holder: holder.id, prop: p})
}

func (e *Element) removeReferrer(holder *Element, p *Association) {
	r := referrer{holder: holder.id, prop: p}
	if i := slices.Index(e.referrers, r); i >= 0 {
		e.referrers = slices.Delete(e.referrers, i, i+1)
	}
}
