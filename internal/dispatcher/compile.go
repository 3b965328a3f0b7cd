package dispatcher

import (
	"fmt"

	"github.com/specialistvlad/modelcore/internal/element"
	"github.com/specialistvlad/modelcore/internal/propath"
)

// Compiled is a path resolved against a root type.
type Compiled struct {
	Path       *propath.Path
	Properties []element.Property
	// Scopes[i] is the type Properties[i] was resolved on. Values reached
	// through Properties[i-1] are followed only if they are instances of
	// Scopes[i].
	Scopes []*element.Type
}

// Compile parses raw and resolves every segment, starting on root. A
// narrowing annotation must name a subtype of the property's target, and an
// attribute may only appear as the last segment.
func Compile(model *element.Metamodel, root *element.Type, raw string) (*Compiled, error) {
	p, err := propath.Parse(raw)
	if err != nil {
		return nil, err
	}

	c := &Compiled{Path: p}
	t := root
	last := len(p.Segments) - 1
	for i, seg := range p.Segments {
		prop, ok := t.Property(seg.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no property %q%s", element.ErrNotFound, t.Name(), seg.Name, propath.Hint(seg.Name, t.PropertyNames()))
		}
		c.Properties = append(c.Properties, prop)
		c.Scopes = append(c.Scopes, t)

		next := prop.Target()
		if next == nil {
			if seg.IsNarrowed() {
				return nil, fmt.Errorf("%w: attribute %s.%s cannot be narrowed", element.ErrInvalidOperation, t.Name(), seg.Name)
			}
			if i != last {
				return nil, fmt.Errorf("%w: attribute %s.%s must be the last segment of %q", element.ErrInvalidOperation, t.Name(), seg.Name, raw)
			}
			continue
		}

		if seg.IsNarrowed() {
			narrow, ok := model.Lookup(seg.Narrow)
			if !ok {
				return nil, fmt.Errorf("%w: unknown type %q%s", element.ErrNotFound, seg.Narrow, propath.Hint(seg.Narrow, model.Names()))
			}
			if !narrow.IsSubtypeOf(next) {
				return nil, fmt.Errorf("%w: %s is not a subtype of %s", element.ErrTypeViolation, narrow.Name(), next.Name())
			}
			next = narrow
		}
		t = next
	}
	return c, nil
}
