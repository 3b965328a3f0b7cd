// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package element

// PropertyKind tags the four descriptor variants.
type PropertyKind int

const (
	KindAttribute PropertyKind = iota
	KindAssociation
	KindDerivedUnion
	KindRedefine
)

func (k PropertyKind) String() string {
	switch k {
	case KindAttribute:
		return "attribute"
	case KindAssociation:
		return "association"
	case KindDerivedUnion:
		return "derived union"
	case KindRedefine:
		return "redefine"
	default:
		return "unknown"
	}
}

// Many is the upper bound of an unbounded multi-valued property.
const Many = -1

// Property describes one named slot of a Type and implements its access
// semantics. The set of implementations is closed: Attribute, Association,
// DerivedUnion and Redefine.
type Property interface {
	Name() string
	Kind() PropertyKind
	// Owner is the type that declares the property.
	Owner() *Type
	// Target is the declared value type, or nil for attributes.
	Target() *Type
	Lower() int
	Upper() int
	Multi() bool

	Get(e *Element) any
	Set(e *Element, v any) error
	Delete(e *Element, v any) error
	// Load stores v like Set without publishing events.
	Load(e *Element, v any) error

	related(e *Element) []*Element
	unlink(e *Element)
	base() *descriptor
}

// dependent is implemented by properties that re-publish the events of the
// properties they are built on.
type dependent interface {
	derive(ev Event) []Event
}

type descriptor struct {
	name       string
	owner      *Type
	lower      int
	upper      int
	dependents []dependent
}

func (d *descriptor) Name() string { return d.name }
func (d *descriptor) Owner() *Type { return d.owner }
func (d *descriptor) Lower() int { return d.lower }
func (d *descriptor) Upper() int { return d.upper }
func (d *descriptor) Multi() bool { return d.upper != 1 }
func (d *descriptor) base() *descriptor { return d }

func (d *descriptor) addDependent(x dependent) {
	d.dependents = append(d.dependents, x)
}

// qualified returns Owner.name for error messages.
func (d *descriptor) qualified() string {
	if d.owner == nil {
		return d.name
	}
	return d.owner.name + "." + d.name
}

// resolves reports whether e's type sees p under p's own name.
func resolves(e *Element, p Property) bool {
	got, ok := e.typ.Property(p.Name())
	return ok && got == p
}
