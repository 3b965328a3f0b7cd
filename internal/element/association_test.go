package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssociation_BidirectionalSet(t *testing.T) {
	tm := newTestModel(t)
	c := tm.create(t, "Class")
	op := tm.create(t, "Operation")
	tm.reset()

	require.NoError(t, op.Set("class_", c))

	assert.Same(t, c, op.Ref("class_"))
	assert.Equal(t, []*Element{op}, c.Refs("ownedOperation"))

	// The opposite end is updated before the primary event.
	assert.Equal(t, []EventKind{AssociationAdded, AssociationSet}, tm.kinds())
	assert.Same(t, c, tm.events[0].Element)
	assert.Same(t, op, tm.events[1].Element)
}

func TestAssociation_RemovalIsSymmetric(t *testing.T) {
	testCases := []struct {
		name   string
		remove func(c, op *Element) error
	}{
		{name: "from the multi-valued end", remove: func(c, op *Element) error { return c.Delete("ownedOperation", op) }},
		{name: "from the single-valued end", remove: func(c, op *Element) error { return op.Delete("class_", nil) }},
		{name: "by assigning nil", remove: func(c, op *Element) error { return op.Set("class_", nil) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tm := newTestModel(t)
			c := tm.create(t, "Class")
			op := tm.create(t, "Operation")
			require.NoError(t, c.Set("ownedOperation", op))

			require.NoError(t, tc.remove(c, op))
			assert.Nil(t, op.Ref("class_"))
			assert.Empty(t, c.Refs("ownedOperation"))
			assert.Empty(t, op.referrers)
			assert.Empty(t, c.referrers)
		})
	}
}

func TestAssociation_SingleValuedReplaceDisplacesOpposite(t *testing.T) {
	tm := newTestModel(t)
	t1 := tm.create(t, "Transition")
	t2 := tm.create(t, "Transition")
	g1 := tm.create(t, "Constraint")
	g2 := tm.create(t, "Constraint")

	require.NoError(t, t1.Set("guard", g1))
	require.NoError(t, t1.Set("guard", g2))
	assert.Same(t, g2, t1.Ref("guard"))
	assert.Nil(t, g1.Ref("transition"), "the replaced value loses its back-pointer")
	assert.Same(t, t1, g2.Ref("transition"))

	// Linking g2 to t2 steals it from t1.
	require.NoError(t, t2.Set("guard", g2))
	assert.Same(t, t2, g2.Ref("transition"))
	assert.Nil(t, t1.Ref("guard"))
}

func TestAssociation_ResetToSameValueIsNoop(t *testing.T) {
	tm := newTestModel(t)
	tr := tm.create(t, "Transition")
	g := tm.create(t, "Constraint")
	require.NoError(t, tr.Set("guard", g))
	tm.reset()

	require.NoError(t, tr.Set("guard", g))
	assert.Empty(t, tm.events)
}

func TestAssociation_TypeViolation(t *testing.T) {
	tm := newTestModel(t)
	c := tm.create(t, "Class")
	p := tm.create(t, "Parameter")
	tm.reset()

	require.ErrorIs(t, c.Set("ownedOperation", p), ErrTypeViolation)
	require.ErrorIs(t, c.Set("ownedOperation", "not an element"), ErrTypeViolation)
	assert.Empty(t, c.Refs("ownedOperation"))
	assert.Empty(t, tm.events)
}

func TestAssociation_DeleteMultiWithoutMember(t *testing.T) {
	tm := newTestModel(t)
	c := tm.create(t, "Class")

	err := c.Delete("ownedOperation", nil)
	require.ErrorIs(t, err, ErrInvalidOperation)
	require.ErrorIs(t, err, ErrCardinalityViolation)
}

func TestAssociation_DeleteAbsentMember(t *testing.T) {
	tm := newTestModel(t)
	c := tm.create(t, "Class")
	op := tm.create(t, "Operation")

	require.ErrorIs(t, c.Delete("ownedOperation", op), ErrNotFound)
}

func TestAssociation_UpperBound(t *testing.T) {
	tm := newTestModel(t)
	k := tm.create(t, "Constraint")
	a := tm.create(t, "Class")
	b := tm.create(t, "Class")
	c := tm.create(t, "Class")

	require.NoError(t, k.Set("constrainedElement", a))
	require.NoError(t, k.Set("constrainedElement", b))
	require.NoError(t, k.Set("constrainedElement", a), "re-adding a member is not an overflow")
	require.ErrorIs(t, k.Set("constrainedElement", c), ErrCardinalityViolation)
	assert.Equal(t, []*Element{a, b}, k.Refs("constrainedElement"))
}

func TestAssociation_UnlinkClearsReferrers(t *testing.T) {
	tm := newTestModel(t)
	c := tm.create(t, "Class")
	cm := tm.create(t, "Comment")
	k := tm.create(t, "Constraint")
	require.NoError(t, cm.Set("annotatedElement", c))
	require.NoError(t, k.Set("constrainedElement", c))

	c.Unlink()
	assert.Empty(t, cm.Refs("annotatedElement"))
	assert.Empty(t, k.Refs("constrainedElement"))

	_, err := tm.factory.Lookup(cm.ID())
	require.NoError(t, err, "a referrer is never unlinked with its target")
}

func TestAssociation_CompositeCascade(t *testing.T) {
	tm := newTestModel(t)
	c := tm.create(t, "Class")
	op := tm.create(t, "Operation")
	p := tm.create(t, "Parameter")
	require.NoError(t, c.Set("ownedOperation", op))
	require.NoError(t, op.Set("formalParameter", p))

	c.Unlink()
	for _, e := range []*Element{c, op, p} {
		_, err := tm.factory.Lookup(e.ID())
		require.ErrorIs(t, err, ErrNotFound, "%s should be gone", e)
	}
}

func TestAssociation_NonCompositeKeepsReferrer(t *testing.T) {
	tm := newTestModel(t)
	c := tm.create(t, "Class")
	op := tm.create(t, "Operation")
	require.NoError(t, c.Set("ownedOperation", op))

	// Unlinking the owned value must not take the owner with it.
	op.Unlink()
	_, err := tm.factory.Lookup(c.ID())
	require.NoError(t, err)
	assert.Empty(t, c.Refs("ownedOperation"))
}

func TestAssociation_LoadMaintainsOppositeSilently(t *testing.T) {
	tm := newTestModel(t)
	c := tm.create(t, "Class")
	op := tm.create(t, "Operation")
	tm.reset()

	require.NoError(t, op.Load("class_", c))
	assert.Same(t, c, op.Ref("class_"))
	assert.Equal(t, []*Element{op}, c.Refs("ownedOperation"))
	assert.Empty(t, tm.events)
}

func TestAssociation_OneSided(t *testing.T) {
	tm := newTestModel(t)
	c := tm.create(t, "Class")
	op := tm.create(t, "Operation")
	p, err := op.Property("class_")
	require.NoError(t, err)
	assoc := p.(*Association)

	require.NoError(t, assoc.SetOneSided(op, c))
	assert.Same(t, c, op.Ref("class_"))
	assert.Empty(t, c.Refs("ownedOperation"))

	require.NoError(t, assoc.DeleteOneSided(op, c))
	assert.Nil(t, op.Ref("class_"))
	require.NoError(t, assoc.SetOneSided(op, nil))
}

func TestAssociation_Opposite(t *testing.T) {
	tm := newTestModel(t)
	class := tm.model.MustLookup("Class")
	p, ok := class.Property("ownedOperation")
	require.True(t, ok)

	assoc := p.(*Association)
	require.NotNil(t, assoc.Opposite())
	assert.Equal(t, "class_", assoc.Opposite().Name())
	assert.True(t, assoc.IsComposite())
	assert.Same(t, assoc, assoc.Opposite().Opposite())
}
