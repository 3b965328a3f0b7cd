package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/modelcore/internal/app"
	"github.com/specialistvlad/modelcore/internal/cli"
	"github.com/specialistvlad/modelcore/internal/hcl_adapter"
	"github.com/specialistvlad/modelcore/internal/localsession"
)

// main is the entrypoint for the modelctl application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors; surface them as a plain error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	ctx := context.Background()
	modelApp := app.NewApp(outW, appConfig, hcl_adapter.NewLoader(), &localsession.SessionFactory{})
	defer func() {
		if closeErr := modelApp.Close(ctx); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return modelApp.Run(ctx)
}
