package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/modelcore/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("modelctl", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
modelctl - Inspect a metamodel built from the bundled UML core and HCL definitions.

Usage:
  modelctl [options] [CONFIG_PATH...]

Arguments:
  CONFIG_PATH
    Path to a single .hcl file or a directory containing .hcl files with
    settings and type definitions. May be repeated.

Examples:
  modelctl                                   list every core type
  modelctl -type Class                       describe Class and its properties
  modelctl -type Class -path ownedOperation.parameter.name
                                             show how a path resolves

Options:
`)
		flagSet.PrintDefaults()
	}

	var configPaths []string
	flagSet.Func("config", "Path to a configuration file or directory. May be repeated.", func(v string) error {
		if v == "" {
			return errors.New("empty path")
		}
		configPaths = append(configPaths, v)
		return nil
	})
	noCoreFlag := flagSet.Bool("no-core", false, "Do not load the bundled UML core metamodel.")
	typeFlag := flagSet.String("type", "", "Type to describe. Lists every type when empty.")
	pathFlag := flagSet.String("path", "", "Property path to compile against -type, e.g. 'guard[Constraint].specification'.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format: 'text' or 'json'. Defaults to the configured settings.")
	logLevelFlag := flagSet.String("log-level", "", "Logging level: 'debug', 'info', 'warn' or 'error'. Defaults to the configured settings.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	configPaths = append(configPaths, flagSet.Args()...)
	slog.Debug("Arguments parsed successfully.", "config_paths", configPaths)

	logFormat := strings.ToLower(*logFormatFlag)
	switch logFormat {
	case "", "text", "json":
	default:
		return nil, false, usageError("invalid log-format %q: must be 'text' or 'json'", *logFormatFlag)
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, false, usageError("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", *logLevelFlag)
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPaths: configPaths,
		NoCore:      *noCoreFlag,
		TypeName:    *typeFlag,
		Path:        *pathFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
