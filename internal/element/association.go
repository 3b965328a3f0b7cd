// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package element

import "fmt"

// linkMode controls how far a link or unlink travels to the opposite end.
type linkMode int

const (
	// linkBoth maintains the opposite end.
	linkBoth linkMode = iota
	// linkFromOpposite is used when the opposite end initiated the change:
	// the new value is not linked back, but a displaced single value still
	// loses its back-pointer.
	linkFromOpposite
	// linkOneSided touches only the local slot. Undo replay uses it because
	// both ends were recorded as separate events.
	linkOneSided
)

// Association is a reference slot to other elements. With an upper bound of
// one it holds a single element, otherwise a Collection.
type Association struct {
	descriptor
	target    *Type
	composite bool
	opposite  string
}

// AssociationOption configures an Association.
type AssociationOption func(*Association)

// Composite makes the owner's unlink cascade to every owned value.
func Composite() AssociationOption {
	return func(a *Association) { a.composite = true }
}

// WithOpposite names the property on the target type that mirrors this one.
func WithOpposite(name string) AssociationOption {
	return func(a *Association) { a.opposite = name }
}

// NewAssociation creates an association to target. Use Many for an
// unbounded upper bound.
func NewAssociation(name string, target *Type, lower, upper int, opts ...AssociationOption) *Association {
	a := &Association{
		descriptor: descriptor{name: name, lower: lower, upper: upper},
		target:     target,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Association) Kind() PropertyKind { return KindAssociation }
func (a *Association) Target() *Type { return a.target }
func (a *Association) IsComposite() bool { return a.composite }
func (a *Association) OppositeName() string { return a.opposite }

// Opposite resolves the mirrored association on the target type. A
// redefine of the opposite resolves to the association it delegates to.
func (a *Association) Opposite() *Association {
	if a.opposite == "" {
		return nil
	}
	p, ok := a.target.Property(a.opposite)
	if !ok {
		return nil
	}
	for {
		switch v := p.(type) {
		case *Association:
			return v
		case *Redefine:
			p = v.original
		default:
			return nil
		}
	}
}

func (a *Association) peer(mode linkMode) *Association {
	if mode == linkOneSided {
		return nil
	}
	return a.Opposite()
}

func (a *Association) Get(e *Element) any {
	if a.Multi() {
		return a.Collection(e)
	}
	return elemOrNil(a.value(e))
}

// Collection returns the collection of a multi-valued slot, creating it on
// first use. It returns nil for single-valued associations.
func (a *Association) Collection(e *Element) *Collection {
	if !a.Multi() {
		return nil
	}
	return a.collection(e, true)
}

func (a *Association) collection(e *Element, create bool) *Collection {
	if c, ok := e.values[a.name].(*Collection); ok {
		return c
	}
	if !create {
		return nil
	}
	c := &Collection{owner: e, prop: a}
	e.values[a.name] = c
	return c
}

func (a *Association) valueID(e *Element) string {
	id, _ := e.values[a.name].(string)
	return id
}

func (a *Association) value(e *Element) *Element {
	if id := a.valueID(e); id != "" {
		return e.factory.resolve(id)
	}
	return nil
}

func (a *Association) related(e *Element) []*Element {
	if a.Multi() {
		if c := a.collection(e, false); c != nil {
			return c.Items()
		}
		return nil
	}
	if v := a.value(e); v != nil {
		return []*Element{v}
	}
	return nil
}

// Set links v. On a single-valued slot the previous value is replaced; on a
// multi-valued slot v is appended. Assigning nil clears a single slot.
func (a *Association) Set(e *Element, v any) error {
	ref, err := a.ref(v)
	if err != nil {
		return err
	}
	if ref == nil {
		if a.Multi() {
			return fmt.Errorf("%w: %s: cannot assign nil to a multi-valued association", ErrInvalidOperation, a.qualified())
		}
		return a.Delete(e, nil)
	}
	return a.link(e, ref, linkBoth, true, -1)
}

// Delete unlinks v. A single-valued slot may be cleared by passing nil.
func (a *Association) Delete(e *Element, v any) error {
	ref, err := a.ref(v)
	if err != nil {
		return err
	}
	if ref == nil {
		if a.Multi() {
			return fmt.Errorf("%w: %w: %s: name the member to delete", ErrCardinalityViolation, ErrInvalidOperation, a.qualified())
		}
		if ref = a.value(e); ref == nil {
			return nil
		}
	}
	return a.unlinkValue(e, ref, linkBoth, true)
}

func (a *Association) Load(e *Element, v any) error {
	ref, err := a.ref(v)
	if err != nil || ref == nil {
		return err
	}
	return a.link(e, ref, linkBoth, false, -1)
}

// SetOneSided links v without touching the opposite end. A nil v clears a
// single-valued slot.
func (a *Association) SetOneSided(e, v *Element) error {
	if v == nil {
		if a.Multi() {
			return fmt.Errorf("%w: %s: cannot assign nil to a multi-valued association", ErrInvalidOperation, a.qualified())
		}
		if cur := a.value(e); cur != nil {
			return a.unlinkValue(e, cur, linkOneSided, true)
		}
		return nil
	}
	if !v.IsKindOf(a.target) {
		return a.typeError(v)
	}
	return a.link(e, v, linkOneSided, true, -1)
}

// InsertOneSided links v into a multi-valued slot at position at without
// touching the opposite end. A negative or out-of-range at appends.
func (a *Association) InsertOneSided(e, v *Element, at int) error {
	if !a.Multi() {
		return fmt.Errorf("%w: %s is single-valued", ErrInvalidOperation, a.qualified())
	}
	if v == nil {
		return fmt.Errorf("%w: %s: cannot insert nil", ErrInvalidOperation, a.qualified())
	}
	if !v.IsKindOf(a.target) {
		return a.typeError(v)
	}
	return a.link(e, v, linkOneSided, true, at)
}

// DeleteOneSided unlinks v without touching the opposite end.
func (a *Association) DeleteOneSided(e, v *Element) error {
	return a.unlinkValue(e, v, linkOneSided, true)
}

func (a *Association) ref(v any) (*Element, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case *Element:
		if x == nil {
			return nil, nil
		}
		if !x.IsKindOf(a.target) {
			return nil, a.typeError(x)
		}
		return x, nil
	default:
		return nil, fmt.Errorf("%w: %s expects an element of type %s, got %T", ErrTypeViolation, a.qualified(), a.target.name, v)
	}
}

func (a *Association) typeError(v *Element) error {
	return fmt.Errorf("%w: %s expects %s, got %s", ErrTypeViolation, a.qualified(), a.target.name, v.typ.name)
}

// accepts checks that holder could be linked into a's slot on e. It is run
// on the opposite end before any state changes.
func (a *Association) accepts(e, holder *Element) error {
	if !holder.IsKindOf(a.target) {
		return a.typeError(holder)
	}
	if a.Multi() && a.upper != Many {
		c := a.collection(e, false)
		if c != nil && !c.contains(holder.id) && c.Len() >= a.upper {
			return fmt.Errorf("%w: %s holds at most %d values", ErrCardinalityViolation, a.qualified(), a.upper)
		}
	}
	return nil
}

// link stores v. On a multi-valued slot at is the insert position; a
// negative at appends.
func (a *Association) link(e, v *Element, mode linkMode, notify bool, at int) error {
	opp := a.peer(mode)

	if a.Multi() {
		c := a.collection(e, true)
		if c.contains(v.id) {
			return nil
		}
		if a.upper != Many && c.Len() >= a.upper {
			return fmt.Errorf("%w: %s holds at most %d values", ErrCardinalityViolation, a.qualified(), a.upper)
		}
		if opp != nil && mode == linkBoth {
			if err := opp.accepts(v, e); err != nil {
				return err
			}
		}

		pos := c.insert(v.id, at)
		v.addReferrer(e, a)
		if opp != nil && mode == linkBoth {
			_ = opp.link(v, e, linkFromOpposite, notify, -1)
		}
		if notify {
			e.emit(Event{Kind: AssociationAdded, Element: e, Property: a, New: v, Index: pos})
		}
		return nil
	}

	old := a.value(e)
	if old == v {
		return nil
	}
	if opp != nil && mode == linkBoth {
		if err := opp.accepts(v, e); err != nil {
			return err
		}
	}

	if old != nil {
		delete(e.values, a.name)
		old.removeReferrer(e, a)
		if opp != nil {
			_ = opp.unlinkValue(old, e, linkOneSided, notify)
		}
	}
	e.values[a.name] = v.id
	v.addReferrer(e, a)
	if opp != nil && mode == linkBoth {
		_ = opp.link(v, e, linkFromOpposite, notify, -1)
	}
	if notify {
		e.emit(Event{Kind: AssociationSet, Element: e, Property: a, Old: elemOrNil(old), New: v})
	}
	return nil
}

func (a *Association) unlinkValue(e, v *Element, mode linkMode, notify bool) error {
	opp := a.peer(mode)

	if a.Multi() {
		c := a.collection(e, false)
		if c == nil || !c.contains(v.id) {
			return fmt.Errorf("%w: %s does not hold %s", ErrNotFound, a.qualified(), v)
		}
		pos := c.remove(v.id)
		v.removeReferrer(e, a)
		if opp != nil && mode == linkBoth {
			_ = opp.unlinkValue(v, e, linkFromOpposite, notify)
		}
		if notify {
			e.emit(Event{Kind: AssociationDeleted, Element: e, Property: a, Old: v, Index: pos})
		}
		return nil
	}

	if a.valueID(e) != v.id {
		return fmt.Errorf("%w: %s does not hold %s", ErrNotFound, a.qualified(), v)
	}
	delete(e.values, a.name)
	v.removeReferrer(e, a)
	if opp != nil && mode == linkBoth {
		_ = opp.unlinkValue(v, e, linkFromOpposite, notify)
	}
	if notify {
		e.emit(Event{Kind: AssociationSet, Element: e, Property: a, Old: v})
	}
	return nil
}

// unlink runs while e is being unlinked. Composite values go first, then
// every remaining link is removed from both ends.
func (a *Association) unlink(e *Element) {
	if a.composite {
		for _, v := range a.related(e) {
			v.Unlink()
		}
	}
	for _, v := range a.related(e) {
		_ = a.unlinkValue(e, v, linkBoth, true)
	}
}
