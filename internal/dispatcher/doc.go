// Package dispatcher lets a handler subscribe once to a property path rooted
// at an element, e.g. `ownedOperation.parameter.name`, and be called for
// every change to any value reachable along that path. As the graph is
// edited the dispatcher moves its subscriptions along with it, so callers
// never re-subscribe after an edit.
//
// Subscriptions are tracked per (element, property) edge. Each edge keeps,
// for every subscription and every position in that subscription's path, a
// reference count and the child elements the path descended into. Cyclic
// paths therefore terminate and unsubscribing releases exactly what was
// registered.
package dispatcher
