package undo

import (
	"fmt"

	"github.com/specialistvlad/modelcore/internal/element"
)

// Op tags the operation an Action performs when replayed.
type Op uint8

const (
	// OpSetAttribute assigns Value to an attribute.
	OpSetAttribute Op = iota + 1
	// OpSetReference assigns Value (an element or nil) to a single-valued
	// association, one end only.
	OpSetReference
	// OpAddMember inserts Value into a multi-valued association at Index,
	// one end only.
	OpAddMember
	// OpRemoveMember removes Value from a multi-valued association, one end
	// only.
	OpRemoveMember
	// OpSwapMembers swaps Value and Other back.
	OpSwapMembers
	// OpDiscardElement removes Element from the factory without unlinking.
	OpDiscardElement
	// OpRestoreElement puts Element back into the factory.
	OpRestoreElement
	// OpRestoreType reclassifies Element as Value, a *element.Type.
	OpRestoreType
)

var opNames = map[Op]string{
	OpSetAttribute:   "set-attribute",
	OpSetReference:   "set-reference",
	OpAddMember:      "add-member",
	OpRemoveMember:   "remove-member",
	OpSwapMembers:    "swap-members",
	OpDiscardElement: "discard-element",
	OpRestoreElement: "restore-element",
	OpRestoreType:    "restore-type",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Action restores the state before one change event.
type Action struct {
	Op       Op
	Element  *element.Element
	Property element.Property
	Value    any
	Other    any
	Index    int
}

// reverse derives the action undoing ev. Derived and redefined events are
// skipped because the event of the underlying property is recorded too.
func reverse(ev element.Event) (Action, bool) {
	a := Action{Element: ev.Element, Property: ev.Property}
	switch ev.Kind {
	case element.AttributeUpdated:
		a.Op, a.Value = OpSetAttribute, ev.Old
	case element.AssociationSet:
		a.Op, a.Value = OpSetReference, ev.Old
	case element.AssociationAdded:
		a.Op, a.Value = OpRemoveMember, ev.New
	case element.AssociationDeleted:
		a.Op, a.Value, a.Index = OpAddMember, ev.Old, ev.Index
	case element.AssociationSwapped:
		a.Op, a.Value, a.Other = OpSwapMembers, ev.Old, ev.New
	case element.ElementCreated:
		a.Op = OpDiscardElement
	case element.ElementDeleted:
		a.Op = OpRestoreElement
	case element.ElementTypeChanged:
		a.Op, a.Value = OpRestoreType, ev.Old
	default:
		return Action{}, false
	}
	return a, true
}

// apply replays a against factory.
func (a Action) apply(factory *element.Factory) error {
	switch a.Op {
	case OpSetAttribute:
		return a.Property.Set(a.Element, a.Value)
	case OpSetReference:
		assoc, err := a.association()
		if err != nil {
			return err
		}
		v, _ := a.Value.(*element.Element)
		return assoc.SetOneSided(a.Element, v)
	case OpAddMember:
		assoc, err := a.association()
		if err != nil {
			return err
		}
		v, _ := a.Value.(*element.Element)
		return assoc.InsertOneSided(a.Element, v, a.Index)
	case OpRemoveMember:
		assoc, err := a.association()
		if err != nil {
			return err
		}
		v, _ := a.Value.(*element.Element)
		if v == nil {
			return fmt.Errorf("%w: nothing to remove", element.ErrInvalidOperation)
		}
		return assoc.DeleteOneSided(a.Element, v)
	case OpSwapMembers:
		assoc, err := a.association()
		if err != nil {
			return err
		}
		x, _ := a.Value.(*element.Element)
		y, _ := a.Other.(*element.Element)
		c := assoc.Collection(a.Element)
		if c == nil || !c.Swap(x, y) {
			return fmt.Errorf("%w: swap members are gone", element.ErrNotFound)
		}
		return nil
	case OpDiscardElement:
		return factory.Discard(a.Element)
	case OpRestoreElement:
		return factory.Restore(a.Element)
	case OpRestoreType:
		t, _ := a.Value.(*element.Type)
		return factory.SwapElement(a.Element, t)
	default:
		return fmt.Errorf("%w: unknown op %s", element.ErrInvalidOperation, a.Op)
	}
}

func (a Action) association() (*element.Association, error) {
	assoc, ok := a.Property.(*element.Association)
	if !ok || assoc == nil {
		return nil, fmt.Errorf("%w: %s needs an association, got %v", element.ErrInvalidOperation, a.Op, a.Property)
	}
	return assoc, nil
}
