package metamodel

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/specialistvlad/modelcore/internal/config"
	"github.com/specialistvlad/modelcore/internal/element"
	"github.com/specialistvlad/modelcore/internal/hcl_adapter"
)

//go:embed core.hcl
var coreSource []byte

// CoreSource returns the HCL source of the bundled UML core metamodel.
func CoreSource() []byte {
	return append([]byte(nil), coreSource...)
}

// CoreModel decodes the bundled core definitions without building them, so
// callers can merge their own types on top.
func CoreModel(ctx context.Context) (*config.Model, config.Converter, error) {
	model, conv, err := hcl_adapter.NewLoader().LoadBytes(ctx, "core.hcl", coreSource)
	if err != nil {
		return nil, nil, fmt.Errorf("load core metamodel: %w", err)
	}
	return model, conv, nil
}

// Core builds the bundled UML core metamodel.
func Core(ctx context.Context) (*element.Metamodel, error) {
	model, conv, err := CoreModel(ctx)
	if err != nil {
		return nil, err
	}
	return Build(ctx, model, conv)
}
