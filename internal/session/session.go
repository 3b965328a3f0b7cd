// Package session defines the interfaces for creating and managing an
// editing session: one metamodel, one element factory and the services
// listening on its event bus.
package session

import (
	"context"

	"github.com/specialistvlad/modelcore/internal/config"
	"github.com/specialistvlad/modelcore/internal/dispatcher"
	"github.com/specialistvlad/modelcore/internal/element"
	"github.com/specialistvlad/modelcore/internal/undo"
)

// SessionFactory creates a Session over a metamodel. Different
// implementations may wire the services differently.
type SessionFactory interface {
	NewSession(
		ctx context.Context,
		mm *element.Metamodel,
		settings config.Settings,
	) (Session, error)
}

// Session owns the services of one model being edited.
type Session interface {
	Bus() *element.Bus
	Factory() *element.Factory
	Dispatcher() *dispatcher.Dispatcher
	Undo() *undo.Manager
	// Close detaches every service from the bus. It accepts a context for
	// logging during cleanup.
	Close(ctx context.Context) error
}
