// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package element

// EventKind tags a change event.
type EventKind int

const (
	AttributeUpdated EventKind = iota + 1
	AssociationSet
	AssociationAdded
	AssociationDeleted
	AssociationSwapped
	DerivedSet
	DerivedAdded
	DerivedDeleted
	RedefinedSet
	RedefinedAdded
	RedefinedDeleted
	ElementCreated
	ElementDeleted
	ElementTypeChanged
	ModelReady
	ModelFlushed
)

var kindNames = map[EventKind]string{
	AttributeUpdated:   "AttributeUpdated",
	AssociationSet:     "AssociationSet",
	AssociationAdded:   "AssociationAdded",
	AssociationDeleted: "AssociationDeleted",
	AssociationSwapped: "AssociationSwapped",
	DerivedSet:         "DerivedSet",
	DerivedAdded:       "DerivedAdded",
	DerivedDeleted:     "DerivedDeleted",
	RedefinedSet:       "RedefinedSet",
	RedefinedAdded:     "RedefinedAdded",
	RedefinedDeleted:   "RedefinedDeleted",
	ElementCreated:     "ElementCreated",
	ElementDeleted:     "ElementDeleted",
	ElementTypeChanged: "ElementTypeChanged",
	ModelReady:         "ModelReady",
	ModelFlushed:       "ModelFlushed",
}

func (k EventKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// IsSet reports whether the event replaces a single value.
func (k EventKind) IsSet() bool {
	return k == AssociationSet || k == DerivedSet || k == RedefinedSet
}

// IsAdded reports whether the event adds a member to a multi-valued slot.
func (k EventKind) IsAdded() bool {
	return k == AssociationAdded || k == DerivedAdded || k == RedefinedAdded
}

// IsDeleted reports whether the event removes a member from a multi-valued slot.
func (k EventKind) IsDeleted() bool {
	return k == AssociationDeleted || k == DerivedDeleted || k == RedefinedDeleted
}

// IsModelWide reports whether the event concerns the whole model rather
// than one element.
func (k EventKind) IsModelWide() bool {
	return k == ModelReady || k == ModelFlushed
}

// Event describes a single change. Element and Property are nil for
// model-wide events. For ElementTypeChanged, Old and New hold *Type values.
type Event struct {
	Kind     EventKind
	Element  *Element
	Property Property
	Old      any
	New      any
	// Index is the member's position for added and deleted members: where
	// it now sits, or where it sat before removal.
	Index int
}

// OldElement returns Old when it holds an element.
func (ev Event) OldElement() *Element {
	e, _ := ev.Old.(*Element)
	return e
}

// NewElement returns New when it holds an element.
func (ev Event) NewElement() *Element {
	e, _ := ev.New.(*Element)
	return e
}

// elemOrNil keeps a nil *Element from turning into a non-nil interface.
func elemOrNil(e *Element) any {
	if e == nil {
		return nil
	}
	return e
}
