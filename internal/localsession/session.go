// Package localsession provides the in-process implementation of the
// session.Session and session.SessionFactory interfaces.
package localsession

import (
	"context"
	"errors"
	"io"

	"github.com/specialistvlad/modelcore/internal/config"
	"github.com/specialistvlad/modelcore/internal/ctxlog"
	"github.com/specialistvlad/modelcore/internal/dispatcher"
	"github.com/specialistvlad/modelcore/internal/element"
	"github.com/specialistvlad/modelcore/internal/observability"
	"github.com/specialistvlad/modelcore/internal/session"
	"github.com/specialistvlad/modelcore/internal/undo"
)

// SessionFactory implements session.SessionFactory. The zero value is
// ready to use; the fields are optional.
type SessionFactory struct {
	// Recorder receives runtime metrics. Nil disables them.
	Recorder observability.Recorder
	// Journal receives every committed transaction in msgpack form.
	Journal io.Writer
	// IDGenerator replaces the default uuid element ids.
	IDGenerator element.IDGenerator
}

// NewSession creates and wires a new local session. The logger is taken
// from ctx.
func (f *SessionFactory) NewSession(
	ctx context.Context,
	mm *element.Metamodel,
	settings config.Settings,
) (session.Session, error) {
	if mm == nil {
		return nil, errors.New("localsession: a metamodel is required")
	}
	logger := ctxlog.FromContext(ctx)
	rec := observability.OrNop(f.Recorder)

	// --- This is where the dependency injection wiring happens ---
	bus := element.NewBus(logger, rec)
	factory := element.NewFactory(mm, bus, logger)
	if f.IDGenerator != nil {
		factory.SetIDGenerator(f.IDGenerator)
	}
	disp := dispatcher.New(bus, mm,
		dispatcher.WithLogger(logger),
		dispatcher.WithRecorder(rec),
	)
	factory.SetPathObserver(disp)

	undoOpts := []undo.Option{
		undo.WithDepth(settings.UndoDepth),
		undo.WithLogger(logger),
		undo.WithRecorder(rec),
	}
	if f.Journal != nil {
		undoOpts = append(undoOpts, undo.WithJournal(f.Journal))
	}
	manager := undo.New(factory, undoOpts...)
	// --- End of dependency injection ---

	logger.Debug("Local session created.", "types", len(mm.Types()), "undo_depth", settings.UndoDepth)
	return &Session{
		bus:        bus,
		factory:    factory,
		dispatcher: disp,
		undo:       manager,
	}, nil
}

// Session implements session.Session for local, single-threaded editing.
type Session struct {
	bus        *element.Bus
	factory    *element.Factory
	dispatcher *dispatcher.Dispatcher
	undo       *undo.Manager
	closed     bool
}

func (s *Session) Bus() *element.Bus { return s.bus }
func (s *Session) Factory() *element.Factory { return s.factory }
func (s *Session) Dispatcher() *dispatcher.Dispatcher { return s.dispatcher }
func (s *Session) Undo() *undo.Manager { return s.undo }

// Close detaches the dispatcher and the undo manager. Elements stay
// readable; further edits are no longer observed or recorded.
func (s *Session) Close(ctx context.Context) error {
	logger := ctxlog.OrDiscard(ctx)
	if s.closed {
		logger.Debug("Local session already closed.")
		return nil
	}
	if s.undo.InTransaction() {
		return errors.New("localsession: cannot close while a transaction is open")
	}
	s.closed = true
	s.dispatcher.Close()
	s.undo.Close()
	logger.Debug("Local session closed.", "elements", s.factory.Len())
	return nil
}
