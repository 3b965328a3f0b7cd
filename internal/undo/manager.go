package undo

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/specialistvlad/modelcore/internal/ctxlog"
	"github.com/specialistvlad/modelcore/internal/element"
	"github.com/specialistvlad/modelcore/internal/observability"
)

// DefaultDepth bounds the undo stack when no depth is configured.
const DefaultDepth = 100

type replayMode int

const (
	modeNormal replayMode = iota
	modeUndo
	modeRedo
)

func (r replayMode) String() string {
	switch r {
	case modeUndo:
		return "undo"
	case modeRedo:
		return "redo"
	default:
		return "normal"
	}
}

// Transaction is an ordered list of reverse actions for one logical edit.
type Transaction struct {
	m       *Manager
	actions []Action
	done    bool
}

// Actions returns a copy of the recorded actions in event order.
func (tx *Transaction) Actions() []Action {
	return slices.Clone(tx.actions)
}

// Len returns the number of recorded actions.
func (tx *Transaction) Len() int {
	return len(tx.actions)
}

// Commit closes the transaction. A non-empty transaction is pushed on the
// undo stack and clears the redo stack; an empty one is discarded.
func (tx *Transaction) Commit() {
	m := tx.m
	if tx.done || m.current != tx {
		panic(fmt.Errorf("%w: transaction is not open", element.ErrInvalidOperation))
	}
	tx.done = true
	m.current = nil

	if len(tx.actions) == 0 {
		m.recorder.TransactionFinished("empty")
		return
	}
	m.push(&m.undo, tx)
	m.redo = nil
	m.journal(tx)
	m.recorder.TransactionFinished("commit")
	m.logger.Debug("Transaction committed.", "actions", len(tx.actions), "undo_depth", len(m.undo))
	m.reportDepth()
}

// Rollback reverts the transaction's own changes and closes it. The
// reverting changes are recorded into a scratch transaction that is thrown
// away, so neither stack is touched.
func (tx *Transaction) Rollback() {
	m := tx.m
	if tx.done || m.current != tx {
		panic(fmt.Errorf("%w: transaction is not open", element.ErrInvalidOperation))
	}
	tx.done = true

	m.current = &Transaction{m: m}
	m.replay(tx)
	m.current = nil

	m.recorder.TransactionFinished("rollback")
	m.logger.Debug("Transaction rolled back.", "actions", len(tx.actions))
}

// Manager records transactions from bus events and replays them.
type Manager struct {
	factory  *element.Factory
	logger   *slog.Logger
	recorder observability.Recorder
	depth    int
	undo     []*Transaction
	redo     []*Transaction
	current  *Transaction
	mode     replayMode
	cancel   func()
	sink     io.Writer
}

// Option configures a Manager.
type Option func(*Manager)

// WithDepth bounds the undo stack; the oldest transaction is evicted first.
// A depth of zero or less means unbounded.
func WithDepth(n int) Option {
	return func(m *Manager) { m.depth = n }
}

// WithLogger sets the logger used for replay failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r observability.Recorder) Option {
	return func(m *Manager) { m.recorder = observability.OrNop(r) }
}

// WithJournal appends every committed transaction to w in msgpack form.
func WithJournal(w io.Writer) Option {
	return func(m *Manager) { m.sink = w }
}

// New creates a manager listening on the factory's bus.
func New(factory *element.Factory, opts ...Option) *Manager {
	m := &Manager{
		factory:  factory,
		logger:   ctxlog.Discard(),
		recorder: observability.Nop{},
		depth:    DefaultDepth,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cancel = factory.Bus().Subscribe("undo", m.handle)
	return m
}

// Begin opens a transaction. Opening one while another is open is a
// programming error and panics.
func (m *Manager) Begin() *Transaction {
	if m.current != nil {
		panic(fmt.Errorf("%w: a transaction is already open", element.ErrInvalidOperation))
	}
	m.current = &Transaction{m: m}
	return m.current
}

// Run executes fn inside a transaction, committing when fn returns nil and
// rolling back when it returns an error or panics.
func (m *Manager) Run(fn func() error) (err error) {
	tx := m.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	if err := fn(); err != nil {
		tx.Rollback()
		return err
	}
	tx.Commit()
	return nil
}

// InTransaction reports whether a transaction is open.
func (m *Manager) InTransaction() bool {
	return m.current != nil
}

func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }
func (m *Manager) UndoDepth() int { return len(m.undo) }
func (m *Manager) RedoDepth() int { return len(m.redo) }

// Undo reverts the latest committed transaction and moves its inverse to
// the redo stack. It returns false when there is nothing to undo.
func (m *Manager) Undo() (bool, error) {
	return m.step(modeUndo)
}

// Redo re-applies the latest undone transaction.
func (m *Manager) Redo() (bool, error) {
	return m.step(modeRedo)
}

func (m *Manager) step(mode replayMode) (bool, error) {
	if m.mode != modeNormal {
		return false, fmt.Errorf("%w: undo or redo is already replaying", element.ErrReentrancy)
	}
	if m.current != nil {
		return false, fmt.Errorf("%w: a transaction is open", element.ErrInvalidOperation)
	}

	from := &m.undo
	if mode == modeRedo {
		from = &m.redo
	}
	if len(*from) == 0 {
		return false, nil
	}
	tx := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]

	m.mode = mode
	fresh := &Transaction{m: m}
	m.current = fresh
	m.replay(tx)
	m.current = nil
	m.mode = modeNormal
	fresh.done = true

	if len(fresh.actions) > 0 {
		if mode == modeUndo {
			m.push(&m.redo, fresh)
		} else {
			m.push(&m.undo, fresh)
		}
	}
	m.logger.Debug("Transaction replayed.", "direction", mode.String(), "actions", len(tx.actions))
	m.reportDepth()
	return true, nil
}

// Clear empties both stacks.
func (m *Manager) Clear() {
	m.undo, m.redo = nil, nil
	m.reportDepth()
}

// Close detaches the manager from the bus.
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// replay applies tx's actions in reverse. A failing action is logged and
// the rest still run.
func (m *Manager) replay(tx *Transaction) {
	for i := len(tx.actions) - 1; i >= 0; i-- {
		m.apply(tx.actions[i])
	}
}

func (m *Manager) apply(a Action) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("Undo action panicked.", "op", a.Op.String(), "element", a.Element.String(), "panic", r)
			m.recorder.HandlerFailed("undo")
		}
	}()
	if err := a.apply(m.factory); err != nil {
		m.logger.Warn("Undo action failed.", "op", a.Op.String(), "element", a.Element.String(), "error", err)
		m.recorder.HandlerFailed("undo")
	}
}

func (m *Manager) push(stack *[]*Transaction, tx *Transaction) {
	*stack = append(*stack, tx)
	if m.depth > 0 && len(*stack) > m.depth {
		*stack = slices.Delete(*stack, 0, len(*stack)-m.depth)
	}
}

func (m *Manager) handle(ev element.Event) {
	if ev.Kind.IsModelWide() {
		m.Clear()
		m.logger.Debug("Undo history cleared.", "event", ev.Kind.String())
		return
	}
	if m.current == nil {
		return
	}
	if a, ok := reverse(ev); ok {
		m.current.actions = append(m.current.actions, a)
	}
}

func (m *Manager) journal(tx *Transaction) {
	if m.sink == nil {
		return
	}
	if err := WriteRecords(m.sink, tx.Records()); err != nil {
		m.logger.Warn("Failed to write undo journal.", "error", err)
	}
}

func (m *Manager) reportDepth() {
	m.recorder.StackDepth("undo", len(m.undo))
	m.recorder.StackDepth("redo", len(m.redo))
}
