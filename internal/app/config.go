package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string // hcl files or directories with settings and types
	NoCore      bool     // skip the bundled UML core metamodel

	TypeName string // type to describe; empty lists every type
	Path     string // dispatcher path to compile against TypeName

	// Empty log fields fall back to the loaded settings.
	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Path != "" && cfg.TypeName == "" {
		return nil, errors.New("a path is compiled against a type: TypeName is required when Path is set")
	}
	if cfg.NoCore && len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("NoCore requires at least one configuration path")
	}
	return &cfg, nil
}
