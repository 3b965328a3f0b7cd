package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttribute_SetAndGet(t *testing.T) {
	tm := newTestModel(t)
	c := tm.create(t, "Class")
	tm.reset()

	require.NoError(t, c.Set("name", "Customer"))
	v, err := c.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "Customer", v)

	require.Len(t, tm.events, 1)
	assert.Equal(t, AttributeUpdated, tm.events[0].Kind)
	assert.Nil(t, tm.events[0].Old)
	assert.Equal(t, "Customer", tm.events[0].New)
}

func TestAttribute_NoEventWhenUnchanged(t *testing.T) {
	tm := newTestModel(t)
	op := tm.create(t, "Operation")

	require.NoError(t, op.Set("weight", 3))
	tm.reset()

	require.NoError(t, op.Set("weight", 3.0), "3 and 3.0 are the same number")
	assert.Empty(t, tm.events)
}

func TestAttribute_DefaultIsSparse(t *testing.T) {
	tm := newTestModel(t)
	c := tm.create(t, "Class")

	v, err := c.Get("visibility")
	require.NoError(t, err)
	assert.Equal(t, "public", v)

	require.NoError(t, c.Set("visibility", "private"))
	assert.Contains(t, c.values, "visibility")

	tm.reset()
	require.NoError(t, c.Set("visibility", "public"))
	assert.NotContains(t, c.values, "visibility", "assigning the default clears storage")
	require.Len(t, tm.events, 1)
	assert.Equal(t, "private", tm.events[0].Old)
	assert.Equal(t, "public", tm.events[0].New)

	require.NoError(t, c.Set("visibility", "protected"))
	require.NoError(t, c.Delete("visibility", nil))
	v, _ = c.Get("visibility")
	assert.Equal(t, "public", v)
}

func TestAttribute_TypeViolation(t *testing.T) {
	testCases := []struct {
		name  string
		prop  string
		value any
	}{
		{name: "number into string", prop: "name", value: 42},
		{name: "string into bool", prop: "isAbstract", value: "yes"},
		{name: "string into number", prop: "weight", value: "heavy"},
		{name: "literal outside enum", prop: "visibility", value: "package"},
		{name: "non-string into enum", prop: "visibility", value: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tm := newTestModel(t)
			target := "Class"
			if tc.prop == "weight" {
				target = "Operation"
			}
			e := tm.create(t, target)
			before, _ := e.Get(tc.prop)
			tm.reset()

			err := e.Set(tc.prop, tc.value)
			require.ErrorIs(t, err, ErrTypeViolation)

			after, _ := e.Get(tc.prop)
			assert.Equal(t, before, after, "a rejected write leaves the slot unchanged")
			assert.Empty(t, tm.events)
		})
	}
}

func TestAttribute_DynamicAcceptsAnything(t *testing.T) {
	tm := newTestModel(t)
	cm := tm.create(t, "Comment")

	require.NoError(t, cm.Set("body", map[string]int{"a": 1}))
	tm.reset()
	require.NoError(t, cm.Set("body", map[string]int{"a": 1}))
	assert.Empty(t, tm.events)

	require.NoError(t, cm.Set("body", []string{"x"}))
	assert.Len(t, tm.events, 1)
}

func TestAttribute_LoadIsSilent(t *testing.T) {
	tm := newTestModel(t)
	c := tm.create(t, "Class")
	tm.reset()

	require.NoError(t, c.Load("name", "Loaded"))
	v, _ := c.Get("name")
	assert.Equal(t, "Loaded", v)
	assert.Empty(t, tm.events)

	require.ErrorIs(t, c.Load("name", true), ErrTypeViolation)
}

func TestElement_UnknownPropertySuggests(t *testing.T) {
	tm := newTestModel(t)
	c := tm.create(t, "Class")

	err := c.Set("nme", "x")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `did you mean "name"`)
}
