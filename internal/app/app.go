package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/modelcore/internal/config"
	"github.com/specialistvlad/modelcore/internal/ctxlog"
	"github.com/specialistvlad/modelcore/internal/dispatcher"
	"github.com/specialistvlad/modelcore/internal/element"
	"github.com/specialistvlad/modelcore/internal/metamodel"
	"github.com/specialistvlad/modelcore/internal/propath"
	"github.com/specialistvlad/modelcore/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	settings config.Settings
	model    *element.Metamodel
	session  session.Session
}

// NewApp is the constructor for the main application. It loads the
// configuration, builds the metamodel and opens a session. Any failure is a
// fatal startup error and panics.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, sessions session.SessionFactory) *App {
	logger := newLogger(pick(appConfig.LogLevel, config.DefaultLogLevel), pick(appConfig.LogFormat, config.DefaultLogFormat), outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	model := config.NewModel()
	var converter config.Converter
	if !appConfig.NoCore {
		core, conv, err := metamodel.CoreModel(ctx)
		if err != nil {
			panic(err)
		}
		model, converter = core, conv
		logger.Debug("Core metamodel definitions loaded.", "types", len(core.Types))
	}

	if len(appConfig.ConfigPaths) > 0 {
		loaded, conv, err := loader.Load(ctx, appConfig.ConfigPaths...)
		if err != nil {
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		if err := model.Merge(loaded); err != nil {
			panic(fmt.Errorf("failed to merge configuration: %w", err))
		}
		converter = conv
		logger.Debug("Configuration loaded and merged into unified model.", "paths", appConfig.ConfigPaths)
	}

	settings := model.Settings
	logger = newLogger(pick(appConfig.LogLevel, settings.LogLevel), pick(appConfig.LogFormat, settings.LogFormat), outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	mm, err := metamodel.Build(ctx, model, converter)
	if err != nil {
		panic(fmt.Errorf("failed to build metamodel: %w", err))
	}

	sess, err := sessions.NewSession(ctx, mm, settings)
	if err != nil {
		panic(fmt.Errorf("failed to create session: %w", err))
	}
	logger.Debug("Session ready.", "types", len(mm.Types()))

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		settings: settings,
		model:    mm,
		session:  sess,
	}
}

// Metamodel returns the built metamodel.
func (a *App) Metamodel() *element.Metamodel { return a.model }

// Session returns the application's session. This is primarily for testing.
func (a *App) Session() session.Session { return a.session }

// Settings returns the effective settings after all sources were merged.
func (a *App) Settings() config.Settings { return a.settings }

// Run prints the description selected by the configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.TypeName == "" {
		return writeTypeList(a.outW, a.model)
	}

	t, ok := a.model.Lookup(a.config.TypeName)
	if !ok {
		return fmt.Errorf("%w: unknown type %q%s", element.ErrNotFound, a.config.TypeName, propath.Hint(a.config.TypeName, a.model.Names()))
	}
	if a.config.Path == "" {
		return writeType(a.outW, t)
	}
	compiled, err := dispatcher.Compile(a.model, t, a.config.Path)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Path compiled.", "type", t.Name(), "path", compiled.Path.String(), "segments", compiled.Path.Len())
	return writePath(a.outW, t, compiled)
}

// Close releases the session.
func (a *App) Close(ctx context.Context) error {
	return a.session.Close(ctxlog.WithLogger(ctx, a.logger))
}
