// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package element

import (
	"errors"
	"fmt"
)

// PathObserver subscribes a handler to every change reachable from root
// along a property path. The dispatcher implements it.
type PathObserver interface {
	Observe(root *Element, path string, h Handler) (cancel func(), err error)
}

type watch struct {
	path    string
	handler Handler
	cancel  func()
}

// Watcher binds a set of paths rooted at one element, typically for a
// single widget, so they can be subscribed and released together.
type Watcher struct {
	element *Element
	handler Handler
	watches []*watch
}

// Watch adds path using the watcher's default handler.
func (w *Watcher) Watch(path string) *Watcher {
	return w.WatchWith(path, nil)
}

// WatchWith adds path with its own handler.
func (w *Watcher) WatchWith(path string, h Handler) *Watcher {
	w.watches = append(w.watches, &watch{path: path, handler: h})
	return w
}

// SubscribeAll subscribes every path not yet subscribed. Paths that fail
// are reported together; the others stay subscribed.
func (w *Watcher) SubscribeAll() error {
	obs := w.element.factory.observer
	if obs == nil {
		return fmt.Errorf("%w: no path observer installed", ErrInvalidOperation)
	}

	var errs []error
	for _, wt := range w.watches {
		if wt.cancel != nil {
			continue
		}
		h := wt.handler
		if h == nil {
			h = w.handler
		}
		if h == nil {
			errs = append(errs, fmt.Errorf("%w: watch %q has no handler", ErrInvalidOperation, wt.path))
			continue
		}
		cancel, err := obs.Observe(w.element, wt.path, h)
		if err != nil {
			errs = append(errs, fmt.Errorf("watch %q: %w", wt.path, err))
			continue
		}
		wt.cancel = cancel
	}
	return errors.Join(errs...)
}

// UnsubscribeAll releases every subscription. The paths are kept, so
// SubscribeAll can be called again.
func (w *Watcher) UnsubscribeAll() {
	for _, wt := range w.watches {
		if wt.cancel != nil {
			wt.cancel()
			wt.cancel = nil
		}
	}
}
