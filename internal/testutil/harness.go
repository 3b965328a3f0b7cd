package testutil

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/modelcore/internal/config"
	"github.com/specialistvlad/modelcore/internal/ctxlog"
	"github.com/specialistvlad/modelcore/internal/element"
	"github.com/specialistvlad/modelcore/internal/localsession"
	"github.com/specialistvlad/modelcore/internal/metamodel"
	"github.com/specialistvlad/modelcore/internal/observability"
	"github.com/specialistvlad/modelcore/internal/session"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Harness is a session over the bundled core metamodel with captured logs
// and a private metrics registry.
type Harness struct {
	Ctx      context.Context
	Model    *element.Metamodel
	Session  session.Session
	Logs     *SafeBuffer
	Registry *prometheus.Registry
	Journal  *bytes.Buffer
}

// HarnessOption adjusts the settings or the session factory before the
// session is created.
type HarnessOption func(*config.Settings, *localsession.SessionFactory)

// WithUndoDepth bounds the harness undo stack.
func WithUndoDepth(n int) HarnessOption {
	return func(s *config.Settings, _ *localsession.SessionFactory) { s.UndoDepth = n }
}

// SequentialIDs returns a generator yielding prefix-1, prefix-2, ...
func SequentialIDs(prefix string) element.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// NewHarness builds the core metamodel and a local session with debug
// logging into a SafeBuffer. Element ids are "id-1", "id-2", ... The
// session is closed when the test ends.
func NewHarness(t *testing.T, opts ...HarnessOption) *Harness {
	t.Helper()

	logs := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	mm, err := metamodel.Core(ctx)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	rec, err := observability.NewPrometheus(reg)
	require.NoError(t, err)

	journal := &bytes.Buffer{}
	settings := config.DefaultSettings()
	factory := &localsession.SessionFactory{
		Recorder:    rec,
		Journal:     journal,
		IDGenerator: SequentialIDs("id"),
	}
	for _, opt := range opts {
		opt(&settings, factory)
	}

	sess, err := factory.NewSession(ctx, mm, settings)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = sess.Close(ctx)
		if os.Getenv("MODELCORE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return &Harness{
		Ctx:      ctx,
		Model:    mm,
		Session:  sess,
		Logs:     logs,
		Registry: reg,
		Journal:  journal,
	}
}

// Create instantiates a core type by name.
func (h *Harness) Create(t *testing.T, typeName string) *element.Element {
	t.Helper()
	e, err := h.Session.Factory().CreateNamed(typeName)
	require.NoError(t, err)
	return e
}

// Set assigns a property and fails the test on error.
func (h *Harness) Set(t *testing.T, e *element.Element, prop string, v any) {
	t.Helper()
	require.NoError(t, e.Set(prop, v), "set %s.%s", e.Type().Name(), prop)
}
