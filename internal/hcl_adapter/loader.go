package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/modelcore/internal/config"
	"github.com/specialistvlad/modelcore/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL definition loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file found under paths and merges their settings
// and type blocks into one model. Missing paths are skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	model := config.NewModel()
	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := l.decodeInto(ctx, model, hclFile, file); err != nil {
			return nil, nil, err
		}
	}

	logger.Debug("HCL loading complete.", "types", len(model.Types), "undo_depth", model.Settings.UndoDepth)
	return model, NewConverter(), nil
}

// LoadBytes parses a single in-memory source. filename is only used in
// diagnostics.
func (l *Loader) LoadBytes(ctx context.Context, filename string, src []byte) (*config.Model, config.Converter, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	model := config.NewModel()
	if err := l.decodeInto(ctx, model, hclFile, filename); err != nil {
		return nil, nil, err
	}
	ctxlog.FromContext(ctx).Debug("HCL source loaded.", "source", filename, "types", len(model.Types))
	return model, NewConverter(), nil
}

func (l *Loader) decodeInto(ctx context.Context, model *config.Model, f *hcl.File, name string) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", name, diags)
	}

	for _, s := range root.Settings {
		settings, err := translateSettings(s)
		if err != nil {
			return fmt.Errorf("in %s: %w", name, err)
		}
		model.Settings = model.Settings.Override(settings)
	}
	for _, t := range root.Types {
		def, err := l.translateType(ctx, t)
		if err != nil {
			return fmt.Errorf("in %s: %w", name, err)
		}
		if err := model.AddType(def); err != nil {
			return fmt.Errorf("in %s: %w", name, err)
		}
	}
	return nil
}

// findAllHCLFiles expands paths into the .hcl files they name, walking
// directories recursively. Paths that do not exist are skipped and a file
// reached twice is loaded once.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	collect := func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".hcl" {
			return nil
		}
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			files = append(files, p)
		}
		return nil
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			return nil, fmt.Errorf("error accessing path %s: %w", root, err)
		case !info.IsDir():
			err = collect(root, fs.FileInfoToDirEntry(info), nil)
		default:
			err = filepath.WalkDir(root, collect)
		}
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
