package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific definition loader.
type Loader interface {
	// Load reads definitions from the given files or directories, translates
	// them into the format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter turns literal values of the source format into the plain Go
// values stored in attribute slots.
type Converter interface {
	// ToNative converts v into string, bool, float64, []any or map[string]any.
	// A null value converts to nil.
	ToNative(v cty.Value) (any, error)
}
