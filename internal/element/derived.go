// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package element

import (
	"fmt"
	"slices"
)

// DerivedUnion is a read-only property whose value is the union of its
// subsets, deduplicated and in subset declaration order. It stores nothing.
type DerivedUnion struct {
	descriptor
	target  *Type
	subsets []Property
}

// NewDerivedUnion creates a union over subsets and registers it as their
// dependent.
func NewDerivedUnion(name string, target *Type, lower, upper int, subsets ...Property) *DerivedUnion {
	d := &DerivedUnion{
		descriptor: descriptor{name: name, lower: lower, upper: upper},
		target:     target,
	}
	for _, s := range subsets {
		d.AddSubset(s)
	}
	return d
}

// AddSubset appends a constituent property.
func (d *DerivedUnion) AddSubset(p Property) {
	if slices.Contains(d.subsets, p) {
		return
	}
	d.subsets = append(d.subsets, p)
	p.base().addDependent(d)
}

func (d *DerivedUnion) Kind() PropertyKind { return KindDerivedUnion }
func (d *DerivedUnion) Target() *Type { return d.target }
func (d *DerivedUnion) Subsets() []Property { return slices.Clone(d.subsets) }

// Get returns []*Element for a multi-valued union and *Element (or nil)
// otherwise.
func (d *DerivedUnion) Get(e *Element) any {
	vals := d.related(e)
	if d.Multi() {
		return vals
	}
	if len(vals) == 0 {
		return nil
	}
	return vals[0]
}

func (d *DerivedUnion) Set(*Element, any) error {
	return fmt.Errorf("%w: derived union %s is read-only", ErrInvalidOperation, d.qualified())
}

func (d *DerivedUnion) Delete(*Element, any) error {
	return fmt.Errorf("%w: derived union %s is read-only", ErrInvalidOperation, d.qualified())
}

func (d *DerivedUnion) Load(*Element, any) error {
	return fmt.Errorf("%w: derived union %s cannot be loaded", ErrInvalidOperation, d.qualified())
}

func (d *DerivedUnion) related(e *Element) []*Element {
	var out []*Element
	seen := make(map[*Element]struct{})
	for _, s := range d.subsets {
		if s.Owner() != nil && !e.IsKindOf(s.Owner()) {
			continue
		}
		for _, v := range s.related(e) {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// first returns the single value of the union. With undone set, the
// subset that published it is read as it was before the change.
func (d *DerivedUnion) first(e *Element, undone *Event) *Element {
	for _, s := range d.subsets {
		if s.Owner() != nil && !e.IsKindOf(s.Owner()) {
			continue
		}
		vals := s.related(e)
		if undone != nil && undone.Property == s {
			vals = valuesBefore(vals, *undone)
		}
		if len(vals) > 0 {
			return vals[0]
		}
	}
	return nil
}

// valuesBefore reconstructs a subset's values as they were before ev.
func valuesBefore(vals []*Element, ev Event) []*Element {
	old, nw := ev.OldElement(), ev.NewElement()
	switch {
	case ev.Kind.IsSet():
		if old == nil {
			return nil
		}
		return []*Element{old}
	case ev.Kind == AssociationSwapped:
		vals = slices.Clone(vals)
		i, j := slices.Index(vals, old), slices.Index(vals, nw)
		if i >= 0 && j >= 0 {
			vals[i], vals[j] = vals[j], vals[i]
		}
		return vals
	}
	if nw != nil && ev.Kind.IsAdded() {
		vals = slices.DeleteFunc(slices.Clone(vals), func(v *Element) bool { return v == nw })
	}
	if old != nil && ev.Kind.IsDeleted() && !slices.Contains(vals, old) {
		at := min(max(ev.Index, 0), len(vals))
		vals = slices.Insert(slices.Clone(vals), at, old)
	}
	return vals
}

// occurrences counts v across the subsets without deduplication.
func (d *DerivedUnion) occurrences(e *Element, v *Element) int {
	n := 0
	for _, s := range d.subsets {
		if s.Owner() != nil && !e.IsKindOf(s.Owner()) {
			continue
		}
		if slices.Contains(s.related(e), v) {
			n++
		}
	}
	return n
}

func (d *DerivedUnion) unlink(*Element) {}

// derive turns a subset event into union events, emitting only when the
// union itself changed.
func (d *DerivedUnion) derive(ev Event) []Event {
	e := ev.Element
	if e == nil || !resolves(e, d) {
		return nil
	}

	old, nw := ev.OldElement(), ev.NewElement()
	if !d.Multi() {
		cur, prev := d.first(e, nil), d.first(e, &ev)
		if cur == prev {
			return nil
		}
		return []Event{{Kind: DerivedSet, Element: e, Property: d, Old: elemOrNil(prev), New: elemOrNil(cur)}}
	}

	var out []Event
	if old != nil && (ev.Kind.IsSet() || ev.Kind.IsDeleted()) && d.occurrences(e, old) == 0 {
		out = append(out, Event{Kind: DerivedDeleted, Element: e, Property: d, Old: old})
	}
	if nw != nil && (ev.Kind.IsSet() || ev.Kind.IsAdded()) && d.occurrences(e, nw) == 1 {
		out = append(out, Event{Kind: DerivedAdded, Element: e, Property: d, New: nw})
	}
	return out
}

// Redefine renames or narrows an existing property for a subtype. Every
// operation is delegated to the original; only the published event kinds
// differ.
type Redefine struct {
	descriptor
	target   *Type
	original Property
}

// NewRedefine creates a redefine of original and registers it as a
// dependent. target may be nil when original is an attribute.
func NewRedefine(name string, target *Type, original Property) *Redefine {
	r := &Redefine{
		descriptor: descriptor{name: name, lower: original.Lower(), upper: original.Upper()},
		target:     target,
		original:   original,
	}
	original.base().addDependent(r)
	return r
}

func (r *Redefine) Kind() PropertyKind { return KindRedefine }
func (r *Redefine) Target() *Type { return r.target }
func (r *Redefine) Original() Property { return r.original }

func (r *Redefine) Get(e *Element) any { return r.original.Get(e) }

func (r *Redefine) Set(e *Element, v any) error {
	if err := r.check(v); err != nil {
		return err
	}
	return r.original.Set(e, v)
}

func (r *Redefine) Delete(e *Element, v any) error {
	return r.original.Delete(e, v)
}

func (r *Redefine) Load(e *Element, v any) error {
	if err := r.check(v); err != nil {
		return err
	}
	return r.original.Load(e, v)
}

func (r *Redefine) check(v any) error {
	if x, ok := v.(*Element); ok && x != nil && r.target != nil && !x.IsKindOf(r.target) {
		return fmt.Errorf("%w: %s expects %s, got %s", ErrTypeViolation, r.qualified(), r.target.name, x.typ.name)
	}
	return nil
}

func (r *Redefine) related(e *Element) []*Element { return r.original.related(e) }
func (r *Redefine) unlink(e *Element) { r.original.unlink(e) }

func (r *Redefine) derive(ev Event) []Event {
	e := ev.Element
	if e == nil || !resolves(e, r) {
		return nil
	}

	var kind EventKind
	switch {
	case ev.Kind.IsSet() || ev.Kind == AttributeUpdated:
		kind = RedefinedSet
	case ev.Kind.IsAdded():
		kind = RedefinedAdded
	case ev.Kind.IsDeleted():
		kind = RedefinedDeleted
	default:
		return nil
	}
	return []Event{{Kind: kind, Element: e, Property: r, Old: ev.Old, New: ev.New, Index: ev.Index}}
}
