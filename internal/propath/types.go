// internal/propath/types.go
package propath

import "strings"

// Segment is a single component of a path, e.g. `guard[Constraint]`.
type Segment struct {
	Name   string
	Narrow string // empty when the segment carries no type annotation.
}

// NewSegment creates a segment without a type annotation.
func NewSegment(name string) Segment {
	return Segment{Name: name}
}

// NewNarrowedSegment creates a segment that narrows its values to typeName.
func NewNarrowedSegment(name, typeName string) Segment {
	return Segment{Name: name, Narrow: typeName}
}

// IsNarrowed reports whether the segment carries a type annotation.
func (s Segment) IsNarrowed() bool {
	return s.Narrow != ""
}

// String formats the segment in its canonical form.
func (s Segment) String() string {
	if s.IsNarrowed() {
		return s.Name + "[" + s.Narrow + "]"
	}
	return s.Name
}

// Path is the structured form of a dotted property path.
type Path struct {
	Segments []Segment
}

// Len returns the number of segments.
func (p *Path) Len() int {
	return len(p.Segments)
}

// String returns the canonical representation, which Parse accepts.
func (p *Path) String() string {
	parts := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}
