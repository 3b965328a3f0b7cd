package undo

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/modelcore/internal/element"
	"github.com/specialistvlad/modelcore/internal/observability"
)

func TestManager_UndoRedoAttribute(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)
	c := fx.create(t, "Class")

	require.NoError(t, m.Run(func() error { return c.Set("name", "Customer") }))
	require.True(t, m.CanUndo())

	ok, err := m.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	v, _ := c.Get("name")
	assert.Nil(t, v)
	assert.False(t, m.CanUndo())
	assert.True(t, m.CanRedo())

	ok, err = m.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	v, _ = c.Get("name")
	assert.Equal(t, "Customer", v)
	assert.True(t, m.CanUndo())
	assert.False(t, m.CanRedo())
}

func TestManager_UndoRestoresBothEnds(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)
	c := fx.create(t, "Class")
	op := fx.create(t, "Operation")

	tx := m.Begin()
	require.NoError(t, c.Set("ownedOperation", op))
	tx.Commit()
	assert.Equal(t, 2, tx.Len(), "both ends are recorded")

	_, err := m.Undo()
	require.NoError(t, err)
	assert.Nil(t, op.Ref("class_"))
	assert.Empty(t, c.Refs("ownedOperation"))

	_, err = m.Redo()
	require.NoError(t, err)
	assert.Same(t, c, op.Ref("class_"))
	assert.Equal(t, []*element.Element{op}, c.Refs("ownedOperation"))
}

func TestManager_UndoRemovalKeepsPosition(t *testing.T) {
	testCases := []struct {
		name   string
		remove func(c, op *element.Element) error
	}{
		{name: "delete from collection", remove: func(c, op *element.Element) error { return c.Delete("ownedOperation", op) }},
		{name: "clear opposite end", remove: func(_, op *element.Element) error { return op.Set("class_", nil) }},
		{name: "unlink member", remove: func(_, op *element.Element) error { op.Unlink(); return nil }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t)
			m := New(fx.factory)
			c := fx.create(t, "Class")
			a, b, d := fx.create(t, "Operation"), fx.create(t, "Operation"), fx.create(t, "Operation")
			require.NoError(t, m.Run(func() error {
				for _, op := range []*element.Element{a, b, d} {
					if err := c.Set("ownedOperation", op); err != nil {
						return err
					}
				}
				return nil
			}))
			want := ids([]*element.Element{a, b, d})

			require.NoError(t, m.Run(func() error { return tc.remove(c, b) }))
			require.Equal(t, ids([]*element.Element{a, d}), ids(c.Refs("ownedOperation")))

			_, err := m.Undo()
			require.NoError(t, err)
			assert.Equal(t, want, ids(c.Refs("ownedOperation")))
			assert.Same(t, c, b.Ref("class_"))

			_, err = m.Redo()
			require.NoError(t, err)
			assert.Equal(t, ids([]*element.Element{a, d}), ids(c.Refs("ownedOperation")))

			_, err = m.Undo()
			require.NoError(t, err)
			assert.Equal(t, want, ids(c.Refs("ownedOperation")), "a second undo restores the same order")
		})
	}
}

func TestManager_JournalRecordsMemberPosition(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)
	c := fx.create(t, "Class")
	a, b := fx.create(t, "Operation"), fx.create(t, "Operation")
	require.NoError(t, m.Run(func() error {
		if err := c.Set("ownedOperation", a); err != nil {
			return err
		}
		return c.Set("ownedOperation", b)
	}))
	require.NoError(t, m.Run(func() error { return c.Delete("ownedOperation", b) }))

	history := m.History()
	require.Len(t, history, 2)
	var added []Record
	for _, r := range history[1] {
		if r.Op == OpAddMember.String() {
			added = append(added, r)
		}
	}
	require.Len(t, added, 1)
	assert.Equal(t, b.ID(), added[0].ValueRef)
	assert.Equal(t, 1, added[0].Index)
}

func TestManager_UndoCreationAndDeletion(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)

	var c, op *element.Element
	require.NoError(t, m.Run(func() error {
		c = fx.create(t, "Class")
		op = fx.create(t, "Operation")
		if err := op.Set("name", "run"); err != nil {
			return err
		}
		return c.Set("ownedOperation", op)
	}))

	require.NoError(t, m.Run(func() error {
		c.Unlink()
		return nil
	}))
	_, err := fx.factory.Lookup(op.ID())
	require.ErrorIs(t, err, element.ErrNotFound, "composite cascade removed the operation")

	_, err = m.Undo()
	require.NoError(t, err)
	got, err := fx.factory.Lookup(op.ID())
	require.NoError(t, err)
	assert.Same(t, op, got)
	assert.Same(t, c, op.Ref("class_"))
	name, _ := op.Get("name")
	assert.Equal(t, "run", name)

	_, err = m.Undo()
	require.NoError(t, err)
	assert.Equal(t, 0, fx.factory.Len(), "undoing the creation discards both elements")

	_, err = m.Redo()
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID()}, ids(op.Refs("class_")))
}

func TestManager_UndoRedoSequenceReproducesState(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)

	var c, op1, op2 *element.Element
	steps := []func() error{
		func() error {
			c = fx.create(t, "Class")
			return c.Set("name", "C")
		},
		func() error {
			op1 = fx.create(t, "Operation")
			if err := c.Set("ownedOperation", op1); err != nil {
				return err
			}
			return op1.Set("name", "a")
		},
		func() error {
			op2 = fx.create(t, "Operation")
			if err := op2.Set("class_", c); err != nil {
				return err
			}
			coll, err := c.Collection("ownedOperation")
			if err != nil {
				return err
			}
			if !coll.Swap(op1, op2) {
				return errors.New("swap failed")
			}
			return nil
		},
		func() error {
			op1.Unlink()
			return nil
		},
		func() error {
			return c.Set("name", "D")
		},
	}

	for _, step := range steps {
		require.NoError(t, m.Run(step))
	}
	want := fx.snapshot()
	require.Equal(t, len(steps), m.UndoDepth())

	for range steps {
		ok, err := m.Undo()
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, 0, fx.factory.Len())
	ok, err := m.Undo()
	require.NoError(t, err)
	assert.False(t, ok, "nothing left to undo")

	for range steps {
		ok, err := m.Redo()
		require.NoError(t, err)
		require.True(t, ok)
	}
	if diff := cmp.Diff(want, fx.snapshot()); diff != "" {
		t.Errorf("state after redo mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_SwapAndTypeChange(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)
	c := fx.create(t, "Class")
	a := fx.create(t, "Operation")
	b := fx.create(t, "Operation")
	require.NoError(t, c.Set("ownedOperation", a))
	require.NoError(t, c.Set("ownedOperation", b))

	require.NoError(t, m.Run(func() error {
		coll, err := c.Collection("ownedOperation")
		if err != nil {
			return err
		}
		coll.Swap(a, b)
		return fx.factory.SwapElement(c, fx.model.MustLookup("Interface"))
	}))
	assert.Equal(t, "Interface", c.Type().Name())

	_, err := m.Undo()
	require.NoError(t, err)
	assert.Equal(t, "Class", c.Type().Name())
	assert.Equal(t, []*element.Element{a, b}, c.Refs("ownedOperation"))
}

func TestManager_Rollback(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)
	c := fx.create(t, "Class")
	require.NoError(t, m.Run(func() error { return c.Set("name", "kept") }))

	tx := m.Begin()
	require.NoError(t, c.Set("name", "discarded"))
	op := fx.create(t, "Operation")
	tx.Rollback()

	v, _ := c.Get("name")
	assert.Equal(t, "kept", v)
	_, err := fx.factory.Lookup(op.ID())
	require.ErrorIs(t, err, element.ErrNotFound)
	assert.Equal(t, 1, m.UndoDepth(), "rollback never touches the stacks")
	assert.Equal(t, 0, m.RedoDepth())
	assert.False(t, m.InTransaction())
}

func TestManager_RunRollsBackOnErrorAndPanic(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)
	c := fx.create(t, "Class")

	boom := errors.New("boom")
	err := m.Run(func() error {
		require.NoError(t, c.Set("name", "x"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	v, _ := c.Get("name")
	assert.Nil(t, v)

	assert.Panics(t, func() {
		_ = m.Run(func() error {
			require.NoError(t, c.Set("name", "y"))
			panic("kaboom")
		})
	})
	v, _ = c.Get("name")
	assert.Nil(t, v)
	assert.False(t, m.InTransaction())
	assert.False(t, m.CanUndo())
}

func TestManager_EmptyCommitIsDiscarded(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)

	m.Begin().Commit()
	assert.False(t, m.CanUndo())
}

func TestManager_CommitClearsRedo(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)
	c := fx.create(t, "Class")

	require.NoError(t, m.Run(func() error { return c.Set("name", "a") }))
	_, err := m.Undo()
	require.NoError(t, err)
	require.True(t, m.CanRedo())

	require.NoError(t, m.Run(func() error { return c.Set("name", "b") }))
	assert.False(t, m.CanRedo())
}

func TestManager_DepthEvictsOldest(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory, WithDepth(2))
	c := fx.create(t, "Class")

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, m.Run(func() error { return c.Set("name", name) }))
	}
	assert.Equal(t, 2, m.UndoDepth())

	for m.CanUndo() {
		_, err := m.Undo()
		require.NoError(t, err)
	}
	v, _ := c.Get("name")
	assert.Equal(t, "a", v, "the first transaction was evicted")
}

func TestManager_NestedBeginPanics(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)
	tx := m.Begin()

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, element.ErrInvalidOperation)
		tx.Commit()
	}()
	m.Begin()
}

func TestManager_UndoWhileRecording(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)
	tx := m.Begin()
	defer tx.Commit()

	_, err := m.Undo()
	require.ErrorIs(t, err, element.ErrInvalidOperation)
}

func TestManager_ReentrantUndoIsRefused(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)
	c := fx.create(t, "Class")
	require.NoError(t, m.Run(func() error { return c.Set("name", "a") }))
	require.NoError(t, m.Run(func() error { return c.Set("name", "b") }))

	armed := false
	var nested error
	fx.bus.Subscribe("reentrant", func(element.Event) {
		if armed {
			_, nested = m.Undo()
		}
	})

	armed = true
	ok, err := m.Undo()
	armed = false
	require.NoError(t, err)
	require.True(t, ok)
	require.ErrorIs(t, nested, element.ErrReentrancy)

	v, _ := c.Get("name")
	assert.Equal(t, "a", v, "only one transaction was undone")
}

func TestManager_ReplayToleratesFailures(t *testing.T) {
	var buf bytes.Buffer
	fx := newFixture(t)
	rec := newSpy()
	m := New(fx.factory, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))), WithRecorder(rec))
	c := fx.create(t, "Class")

	var op *element.Element
	require.NoError(t, m.Run(func() error {
		op = fx.create(t, "Operation")
		return c.Set("name", "x")
	}))

	// Remove op behind the manager's back so discarding it fails on undo.
	require.NoError(t, fx.factory.Discard(op))

	ok, err := m.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	v, _ := c.Get("name")
	assert.Nil(t, v, "the remaining actions still ran")
	assert.Contains(t, buf.String(), "Undo action failed.")
	assert.Equal(t, 1, rec.failures["undo"])
}

func TestManager_FlushClearsHistory(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)
	c := fx.create(t, "Class")
	require.NoError(t, m.Run(func() error { return c.Set("name", "a") }))

	require.NoError(t, fx.factory.Flush())
	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())
}

func TestManager_EventsOutsideTransactionsAreNotRecorded(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)
	c := fx.create(t, "Class")
	require.NoError(t, c.Set("name", "free"))
	assert.False(t, m.CanUndo())
}

func TestManager_RecordsOutcomes(t *testing.T) {
	fx := newFixture(t)
	rec := newSpy()
	m := New(fx.factory, WithRecorder(rec))
	c := fx.create(t, "Class")

	require.NoError(t, m.Run(func() error { return c.Set("name", "a") }))
	require.Error(t, m.Run(func() error {
		_ = c.Set("name", "b")
		return errors.New("abort")
	}))
	m.Begin().Commit()

	assert.Equal(t, map[string]int{"commit": 1, "rollback": 1, "empty": 1}, rec.transactions)
}

func TestManager_Close(t *testing.T) {
	fx := newFixture(t)
	m := New(fx.factory)
	m.Close()
	m.Close()

	tx := m.Begin()
	fx.create(t, "Class")
	assert.Equal(t, 0, tx.Len(), "a closed manager no longer listens")
	tx.Commit()
}

// spyRecorder counts the calls the manager makes.
type spyRecorder struct {
	observability.Nop
	failures     map[string]int
	transactions map[string]int
}

func newSpy() *spyRecorder {
	return &spyRecorder{failures: map[string]int{}, transactions: map[string]int{}}
}

func (s *spyRecorder) HandlerFailed(component string) { s.failures[component]++ }
func (s *spyRecorder) TransactionFinished(outcome string) { s.transactions[outcome]++ }
