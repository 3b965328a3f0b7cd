// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package element

import (
	"log/slog"
	"slices"

	"github.com/specialistvlad/modelcore/internal/ctxlog"
	"github.com/specialistvlad/modelcore/internal/observability"
)

// Handler reacts to a change event.
type Handler func(Event)

type busSub struct {
	id   int
	name string
	fn   Handler
}

// Bus delivers change events synchronously to its subscribers, in
// subscription order. A subscriber that panics is logged and skipped; the
// remaining subscribers still run.
type Bus struct {
	logger   *slog.Logger
	recorder observability.Recorder
	subs     []*busSub
	nextID   int
	blocked  int
}

// NewBus creates a bus. Nil arguments select a discarding logger and a nop
// recorder.
func NewBus(logger *slog.Logger, recorder observability.Recorder) *Bus {
	if logger == nil {
		logger = ctxlog.Discard()
	}
	return &Bus{logger: logger, recorder: observability.OrNop(recorder)}
}

// Subscribe registers fn under name, which identifies it in logs and
// metrics. The returned function removes the subscription.
func (b *Bus) Subscribe(name string, fn Handler) (cancel func()) {
	b.nextID++
	s := &busSub{id: b.nextID, name: name, fn: fn}
	b.subs = append(b.subs, s)
	return func() {
		b.subs = slices.DeleteFunc(b.subs, func(x *busSub) bool { return x == s })
	}
}

// Block suppresses delivery until the returned release function is called.
// Blocks nest.
func (b *Bus) Block() (release func()) {
	b.blocked++
	released := false
	return func() {
		if !released {
			released = true
			b.blocked--
		}
	}
}

// Blocked reports whether delivery is currently suppressed.
func (b *Bus) Blocked() bool {
	return b.blocked > 0
}

// Publish delivers ev and then the correlated events of every property that
// depends on ev.Property.
func (b *Bus) Publish(ev Event) {
	if b.blocked > 0 {
		return
	}
	b.recorder.EventPublished(ev.Kind.String())

	subs := slices.Clone(b.subs)
	for _, s := range subs {
		b.deliver(s, ev)
	}

	if ev.Property == nil {
		return
	}
	for _, d := range ev.Property.base().dependents {
		for _, de := range d.derive(ev) {
			b.Publish(de)
		}
	}
}

func (b *Bus) deliver(s *busSub, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("Event handler failed.", "handler", s.name, "event", ev.Kind.String(), "panic", r)
			b.recorder.HandlerFailed(s.name)
		}
	}()
	s.fn(ev)
}
