package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/modelcore/internal/element"
)

// AssertLogged checks that the harness log output contains every given
// substring.
func AssertLogged(t *testing.T, h *Harness, substrings ...string) {
	t.Helper()
	out := h.Logs.String()
	for _, s := range substrings {
		require.True(t, strings.Contains(out, s), "expected log output to contain %q", s)
	}
}

// EventLog collects every event published on a bus.
type EventLog struct {
	Events []element.Event
}

// RecordEvents subscribes an EventLog to bus for the rest of the test.
func RecordEvents(t *testing.T, bus *element.Bus) *EventLog {
	t.Helper()
	log := &EventLog{}
	cancel := bus.Subscribe("testutil", func(ev element.Event) {
		log.Events = append(log.Events, ev)
	})
	t.Cleanup(cancel)
	return log
}

// Kinds returns the kinds of the recorded events in order.
func (l *EventLog) Kinds() []element.EventKind {
	out := make([]element.EventKind, len(l.Events))
	for i, ev := range l.Events {
		out[i] = ev.Kind
	}
	return out
}

// Reset forgets the recorded events.
func (l *EventLog) Reset() {
	l.Events = nil
}
