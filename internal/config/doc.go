// Package config defines the format-agnostic description of a metamodel and
// the runtime settings, along with the interfaces (Loader, Converter) used to
// read them from a concrete source.
//
// The `config.Model` is the single input of the `metamodel` builder and of
// the session settings. Concrete implementations of the interfaces, such as
// for HCL, are provided in separate packages.
package config
