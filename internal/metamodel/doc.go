// Package metamodel turns format-agnostic type definitions into a live
// element.Metamodel.
//
// Build resolves definitions in dependency order: supertypes before
// subtypes, plain attributes and associations before derived unions and
// redefines, and opposite pairs last, once every property exists. Any name
// that cannot be resolved fails the build with ErrInvalidDefinition and a
// "did you mean" hint.
//
// Core returns the bundled UML subset that the CLI and the tests use.
package metamodel
