// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package element

import (
	"cmp"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/specialistvlad/modelcore/internal/ctxlog"
	"github.com/specialistvlad/modelcore/internal/propath"
)

// IDGenerator produces fresh element ids.
type IDGenerator func() string

// Factory is the sole owner of the id to element table.
type Factory struct {
	model    *Metamodel
	bus      *Bus
	logger   *slog.Logger
	newID    IDGenerator
	elements map[string]*Element
	order    []*Element
	seq      uint64
	flushing bool
	observer PathObserver
}

// NewFactory creates an empty factory publishing on bus. A nil logger
// discards output.
func NewFactory(model *Metamodel, bus *Bus, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = ctxlog.Discard()
	}
	return &Factory{
		model:    model,
		bus:      bus,
		logger:   logger,
		newID:    uuid.NewString,
		elements: make(map[string]*Element),
	}
}

// SetIDGenerator replaces the default uuid generator.
func (f *Factory) SetIDGenerator(gen IDGenerator) {
	f.newID = gen
}

// SetPathObserver installs the service Watchers subscribe through.
func (f *Factory) SetPathObserver(o PathObserver) {
	f.observer = o
}

func (f *Factory) Model() *Metamodel { return f.model }
func (f *Factory) Bus() *Bus { return f.bus }
func (f *Factory) Len() int { return len(f.elements) }

// Create instantiates t under a fresh id and publishes ElementCreated.
func (f *Factory) Create(t *Type) (*Element, error) {
	e, err := f.insert(t, f.newID())
	if err != nil {
		return nil, err
	}
	f.logger.Debug("Element created.", "id", e.id, "type", t.name)
	f.bus.Publish(Event{Kind: ElementCreated, Element: e})
	return e, nil
}

// CreateNamed is Create by type name.
func (f *Factory) CreateNamed(typeName string) (*Element, error) {
	t, ok := f.model.Lookup(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q%s", ErrNotFound, typeName, propath.Hint(typeName, f.model.Names()))
	}
	return f.Create(t)
}

// CreateAs instantiates t under a caller-chosen id, as a loader does. No
// event is published.
func (f *Factory) CreateAs(t *Type, id string) (*Element, error) {
	return f.insert(t, id)
}

func (f *Factory) insert(t *Type, id string) (*Element, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrInvalidOperation)
	}
	if t.abstract {
		return nil, fmt.Errorf("%w: type %s is abstract", ErrInvalidOperation, t.name)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty element id", ErrInvalidOperation)
	}
	if _, exists := f.elements[id]; exists {
		return nil, fmt.Errorf("%w: element id %q already in use", ErrInvalidOperation, id)
	}

	f.seq++
	e := &Element{
		id:      id,
		typ:     t,
		factory: f,
		seq:     f.seq,
		values:  make(map[string]any),
	}
	f.elements[id] = e
	f.order = append(f.order, e)
	return e, nil
}

// Lookup returns the element with the given id.
func (f *Factory) Lookup(id string) (*Element, error) {
	if e, ok := f.elements[id]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: element %q", ErrNotFound, id)
}

// Select lazily yields the elements matching pred in creation order. A nil
// pred matches everything. Elements removed during iteration are skipped.
func (f *Factory) Select(pred func(*Element) bool) iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		for _, e := range slices.Clone(f.order) {
			if !f.owns(e) || (pred != nil && !pred(e)) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Flush unlinks every element, diagram-bearing ones first, with events
// blocked, and then publishes a single ModelFlushed.
func (f *Factory) Flush() error {
	if f.flushing {
		return fmt.Errorf("%w: flush already in progress", ErrReentrancy)
	}
	f.flushing = true
	defer func() { f.flushing = false }()

	count := len(f.elements)
	release := f.bus.Block()
	for e := range f.Select(func(e *Element) bool { return e.typ.IsDiagram() }) {
		e.Unlink()
	}
	for e := range f.Select(nil) {
		e.Unlink()
	}
	release()

	f.logger.Debug("Factory flushed.", "elements", count)
	f.bus.Publish(Event{Kind: ModelFlushed})
	return nil
}

// SwapElement reclassifies e as t while keeping its identity and stored
// values. Stored values are not re-validated against t.
func (f *Factory) SwapElement(e *Element, t *Type) error {
	if !f.owns(e) {
		return fmt.Errorf("%w: element %s is not in the factory", ErrNotFound, e)
	}
	if t == nil {
		return fmt.Errorf("%w: nil type", ErrInvalidOperation)
	}
	old := e.typ
	if old == t {
		return nil
	}
	e.typ = t
	f.bus.Publish(Event{Kind: ElementTypeChanged, Element: e, Old: old, New: t})
	return nil
}

// BulkLoad runs fn with events blocked and publishes ModelReady once it
// succeeds. fn is expected to use CreateAs and Load.
func (f *Factory) BulkLoad(fn func() error) error {
	release := f.bus.Block()
	err := fn()
	release()
	if err != nil {
		return fmt.Errorf("bulk load: %w", err)
	}
	f.logger.Debug("Bulk load complete.", "elements", len(f.elements))
	f.bus.Publish(Event{Kind: ModelReady})
	return nil
}

// Discard removes e from the id table without unlinking it and publishes
// ElementDeleted. Undo uses it to revert a creation.
func (f *Factory) Discard(e *Element) error {
	if !f.owns(e) {
		return fmt.Errorf("%w: element %s is not in the factory", ErrNotFound, e)
	}
	f.remove(e)
	return nil
}

// Restore puts a removed element back under its id and publishes
// ElementCreated. Undo uses it to revert a deletion.
func (f *Factory) Restore(e *Element) error {
	if e == nil || e.factory != f {
		return fmt.Errorf("%w: element does not belong to this factory", ErrInvalidOperation)
	}
	if _, exists := f.elements[e.id]; exists {
		return fmt.Errorf("%w: element id %q already in use", ErrInvalidOperation, e.id)
	}
	f.elements[e.id] = e
	i, _ := slices.BinarySearchFunc(f.order, e.seq, func(x *Element, seq uint64) int {
		return cmp.Compare(x.seq, seq)
	})
	f.order = slices.Insert(f.order, i, e)
	f.bus.Publish(Event{Kind: ElementCreated, Element: e})
	return nil
}

func (f *Factory) remove(e *Element) {
	delete(f.elements, e.id)
	if i := slices.Index(f.order, e); i >= 0 {
		f.order = slices.Delete(f.order, i, i+1)
	}
	f.logger.Debug("Element removed.", "id", e.id, "type", e.typ.name)
	f.bus.Publish(Event{Kind: ElementDeleted, Element: e})
}

func (f *Factory) owns(e *Element) bool {
	return e != nil && f.elements[e.id] == e
}

func (f *Factory) resolve(id string) *Element {
	return f.elements[id]
}
