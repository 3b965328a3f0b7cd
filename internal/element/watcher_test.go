package element

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubObserver records Observe calls and hands out cancel functions.
type stubObserver struct {
	active map[string]int
	fail   string
}

func (s *stubObserver) Observe(root *Element, path string, h Handler) (func(), error) {
	if path == s.fail {
		return nil, errors.New("bad path")
	}
	s.active[path]++
	return func() { s.active[path]-- }, nil
}

func TestWatcher_SubscribeAndRelease(t *testing.T) {
	tm := newTestModel(t)
	obs := &stubObserver{active: make(map[string]int)}
	tm.factory.SetPathObserver(obs)
	c := tm.create(t, "Class")

	w := c.Watcher(func(Event) {}).
		Watch("name").
		WatchWith("ownedOperation.name", func(Event) {})

	require.NoError(t, w.SubscribeAll())
	require.NoError(t, w.SubscribeAll(), "subscribing twice is harmless")
	assert.Equal(t, map[string]int{"name": 1, "ownedOperation.name": 1}, obs.active)

	w.UnsubscribeAll()
	assert.Equal(t, map[string]int{"name": 0, "ownedOperation.name": 0}, obs.active)
}

func TestWatcher_Errors(t *testing.T) {
	tm := newTestModel(t)
	c := tm.create(t, "Class")

	err := c.Watcher(func(Event) {}).Watch("name").SubscribeAll()
	require.ErrorIs(t, err, ErrInvalidOperation, "no observer installed")

	obs := &stubObserver{active: make(map[string]int), fail: "broken"}
	tm.factory.SetPathObserver(obs)

	err = c.Watcher(nil).Watch("name").SubscribeAll()
	require.ErrorIs(t, err, ErrInvalidOperation, "no handler")

	err = c.Watcher(func(Event) {}).Watch("broken").Watch("name").SubscribeAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, 1, obs.active["name"], "the remaining paths are still subscribed")
}
