// internal/propath/parser.go
package propath

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex matches a single segment, e.g. `name` or `guard[Constraint]`.
var segmentRegex = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(?:\[([A-Za-z_][A-Za-z0-9_]*)\])?$`)

// Parse converts the canonical string form into a Path.
func Parse(raw string) (*Path, error) {
	if raw == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	p := &Path{}
	for _, part := range strings.Split(raw, ".") {
		if part == "" {
			return nil, fmt.Errorf("path %q contains an empty segment", raw)
		}

		matches := segmentRegex.FindStringSubmatch(part)
		if matches == nil {
			return nil, fmt.Errorf("invalid path segment format: %q", part)
		}

		seg := NewSegment(matches[1])
		if len(matches) > 2 && matches[2] != "" {
			seg.Narrow = matches[2]
		}
		p.Segments = append(p.Segments, seg)
	}

	return p, nil
}

// MustParse is like Parse but panics on malformed input. It is meant for
// paths written as literals in code.
func MustParse(raw string) *Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}
