package dispatcher

import (
	"log/slog"
	"slices"

	"github.com/specialistvlad/modelcore/internal/ctxlog"
	"github.com/specialistvlad/modelcore/internal/element"
	"github.com/specialistvlad/modelcore/internal/observability"
)

type edge struct {
	elem *element.Element
	prop element.Property
}

// continuation is the state of one subscription at one path position on
// one edge.
type continuation struct {
	refs     int
	children []*element.Element
}

// Subscription is a handler bound to a path rooted at an element.
type Subscription struct {
	id       int
	root     *element.Element
	compiled *Compiled
	handler  element.Handler
	edges    map[edge]struct{}
	active   bool
}

func (s *Subscription) Root() *element.Element { return s.root }
func (s *Subscription) Path() string { return s.compiled.Path.String() }
func (s *Subscription) Active() bool { return s.active }

// Dispatcher routes bus events to path subscriptions.
type Dispatcher struct {
	model    *element.Metamodel
	logger   *slog.Logger
	recorder observability.Recorder
	handlers map[edge]map[*Subscription]map[int]*continuation
	subs     []*Subscription
	nextID   int
	cancel   func()
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for handler failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r observability.Recorder) Option {
	return func(d *Dispatcher) { d.recorder = observability.OrNop(r) }
}

// New creates a dispatcher listening on bus. model resolves narrowing
// annotations.
func New(bus *element.Bus, model *element.Metamodel, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		model:    model,
		logger:   ctxlog.Discard(),
		recorder: observability.Nop{},
		handlers: make(map[edge]map[*Subscription]map[int]*continuation),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.cancel = bus.Subscribe("dispatcher", d.handle)
	return d
}

// Subscribe calls h for every change along path from root. Values already
// present along the path are followed immediately.
func (d *Dispatcher) Subscribe(root *element.Element, path string, h element.Handler) (*Subscription, error) {
	compiled, err := Compile(d.model, root.Type(), path)
	if err != nil {
		return nil, err
	}

	d.nextID++
	sub := &Subscription{
		id:       d.nextID,
		root:     root,
		compiled: compiled,
		handler:  h,
		edges:    make(map[edge]struct{}),
		active:   true,
	}
	d.subs = append(d.subs, sub)
	d.register(sub, root, 0)
	d.logger.Debug("Path subscribed.", "root", root.ID(), "path", sub.Path(), "edges", len(sub.edges))
	d.recorder.EdgesTracked(len(d.handlers))
	return sub, nil
}

// Observe implements element.PathObserver.
func (d *Dispatcher) Observe(root *element.Element, path string, h element.Handler) (func(), error) {
	sub, err := d.Subscribe(root, path, h)
	if err != nil {
		return nil, err
	}
	return func() { d.Unsubscribe(sub) }, nil
}

// Unsubscribe removes sub from every edge it reached.
func (d *Dispatcher) Unsubscribe(sub *Subscription) {
	if sub == nil || !sub.active {
		return
	}
	d.drop(sub)
	sub.active = false
	d.subs = slices.DeleteFunc(d.subs, func(s *Subscription) bool { return s == sub })
	d.recorder.EdgesTracked(len(d.handlers))
}

// EdgeCount returns the number of (element, property) pairs watched by at
// least one subscription.
func (d *Dispatcher) EdgeCount() int {
	return len(d.handlers)
}

// Close detaches from the bus and drops every subscription.
func (d *Dispatcher) Close() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	for _, sub := range slices.Clone(d.subs) {
		d.Unsubscribe(sub)
	}
}

func (d *Dispatcher) register(sub *Subscription, e *element.Element, idx int) {
	props := sub.compiled.Properties
	key := edge{elem: e, prop: props[idx]}

	bySub, ok := d.handlers[key]
	if !ok {
		bySub = make(map[*Subscription]map[int]*continuation)
		d.handlers[key] = bySub
	}
	byIdx, ok := bySub[sub]
	if !ok {
		byIdx = make(map[int]*continuation)
		bySub[sub] = byIdx
	}
	c, ok := byIdx[idx]
	if !ok {
		c = &continuation{}
		byIdx[idx] = c
	}
	sub.edges[key] = struct{}{}

	c.refs++
	if c.refs > 1 || idx+1 >= len(props) {
		return
	}
	for _, v := range e.Related(key.prop) {
		d.follow(sub, c, v, idx+1)
	}
}

// follow descends from continuation c into v at idx.
func (d *Dispatcher) follow(sub *Subscription, c *continuation, v *element.Element, idx int) {
	if !v.IsKindOf(sub.compiled.Scopes[idx]) || slices.Contains(c.children, v) {
		return
	}
	c.children = append(c.children, v)
	d.register(sub, v, idx)
}

// retreat undoes follow.
func (d *Dispatcher) retreat(sub *Subscription, c *continuation, v *element.Element, idx int) {
	i := slices.Index(c.children, v)
	if i < 0 {
		return
	}
	c.children = slices.Delete(c.children, i, i+1)
	d.unregister(sub, v, idx)
}

func (d *Dispatcher) unregister(sub *Subscription, e *element.Element, idx int) {
	key := edge{elem: e, prop: sub.compiled.Properties[idx]}
	byIdx := d.handlers[key][sub]
	c, ok := byIdx[idx]
	if !ok {
		return
	}

	c.refs--
	if c.refs > 0 {
		return
	}
	delete(byIdx, idx)
	if len(byIdx) == 0 {
		delete(d.handlers[key], sub)
		delete(sub.edges, key)
		if len(d.handlers[key]) == 0 {
			delete(d.handlers, key)
		}
	}
	for _, v := range c.children {
		d.unregister(sub, v, idx+1)
	}
}

// drop removes every trace of sub without walking the graph.
func (d *Dispatcher) drop(sub *Subscription) {
	for key := range sub.edges {
		delete(d.handlers[key], sub)
		if len(d.handlers[key]) == 0 {
			delete(d.handlers, key)
		}
	}
	sub.edges = make(map[edge]struct{})
}

// rewalk rebuilds every subscription from its root. It runs after events
// that bypass per-edge notification.
func (d *Dispatcher) rewalk() {
	for _, sub := range d.subs {
		d.drop(sub)
		d.register(sub, sub.root, 0)
	}
	d.logger.Debug("Subscriptions rebuilt.", "subscriptions", len(d.subs), "edges", len(d.handlers))
	d.recorder.EdgesTracked(len(d.handlers))
}

func (d *Dispatcher) handle(ev element.Event) {
	switch {
	case ev.Kind.IsModelWide(), ev.Kind == element.ElementTypeChanged:
		d.rewalk()
		return
	case ev.Element == nil || ev.Property == nil:
		return
	}

	bySub, ok := d.handlers[edge{elem: ev.Element, prop: ev.Property}]
	if !ok {
		return
	}
	subs := make([]*Subscription, 0, len(bySub))
	for sub := range bySub {
		subs = append(subs, sub)
	}
	slices.SortFunc(subs, func(a, b *Subscription) int { return a.id - b.id })

	for _, sub := range subs {
		d.call(sub, ev)
		if sub.active {
			d.rewire(sub, ev)
		}
	}
	d.recorder.EdgesTracked(len(d.handlers))
}

func (d *Dispatcher) rewire(sub *Subscription, ev element.Event) {
	key := edge{elem: ev.Element, prop: ev.Property}
	last := len(sub.compiled.Properties) - 1

	indices := make([]int, 0, len(d.handlers[key][sub]))
	for idx := range d.handlers[key][sub] {
		indices = append(indices, idx)
	}
	slices.Sort(indices)

	old, nw := ev.OldElement(), ev.NewElement()
	for _, idx := range indices {
		if idx >= last {
			continue
		}
		c, ok := d.handlers[key][sub][idx]
		if !ok {
			continue
		}
		if old != nil && (ev.Kind.IsSet() || ev.Kind.IsDeleted()) {
			d.retreat(sub, c, old, idx+1)
			// On a cyclic path the retreat may have released c itself.
			if d.handlers[key][sub][idx] != c {
				continue
			}
		}
		if nw != nil && (ev.Kind.IsSet() || ev.Kind.IsAdded()) {
			d.follow(sub, c, nw, idx+1)
		}
	}
}

func (d *Dispatcher) call(sub *Subscription, ev element.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("Dispatcher handler failed.", "root", sub.root.ID(), "path", sub.Path(), "event", ev.Kind.String(), "panic", r)
			d.recorder.HandlerFailed("dispatcher")
		}
	}()
	sub.handler(ev)
}
