// internal/propath/doc.go

/*
Package propath parses and formats the property paths used to subscribe to
changes in the element graph.

A path is a dot-separated sequence of property names, each optionally
followed by a bracketed type name that narrows the values the rest of the
path is resolved against:

	ownedOperation.parameter.name
	guard[Constraint].specification

Parsing is purely syntactic. Resolving names against a metamodel happens in
the dispatcher, which compiles a Path once per subscription.
*/
package propath
