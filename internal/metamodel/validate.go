package metamodel

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/modelcore/internal/element"
	"github.com/specialistvlad/modelcore/internal/propath"
)

// opposites checks that every declared opposite names an association on
// the target type that points back. All mismatches are reported together.
func (b *builder) opposites() error {
	var errs []string
	for _, def := range b.order {
		t := b.mm.MustLookup(def.Name)
		for _, a := range def.Associations {
			p, _ := t.Property(a.Name)
			assoc := p.(*element.Association)
			if assoc.OppositeName() == "" {
				continue
			}
			if msg := checkOpposite(assoc); msg != "" {
				errs = append(errs, msg)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: opposite validation failed:\n- %s", ErrInvalidDefinition, strings.Join(errs, "\n- "))
	}
	return nil
}

func checkOpposite(a *element.Association) string {
	name := a.Owner().Name() + "." + a.Name()
	p, ok := a.Target().Property(a.OppositeName())
	if !ok {
		return fmt.Sprintf("%s: opposite '%s' is not a property of %s%s",
			name, a.OppositeName(), a.Target(), propath.Hint(a.OppositeName(), a.Target().PropertyNames()))
	}
	opp := a.Opposite()
	if opp == nil {
		return fmt.Sprintf("%s: opposite '%s' is a %s, not an association", name, a.OppositeName(), p.Kind())
	}
	if opp == a {
		return fmt.Sprintf("%s: an association cannot be its own opposite", name)
	}
	if !a.Owner().IsSubtypeOf(opp.Target()) {
		return fmt.Sprintf("%s: opposite %s.%s targets %s, which %s is not a kind of",
			name, opp.Owner(), opp.Name(), opp.Target(), a.Owner())
	}
	if back := opp.Opposite(); back != a {
		return fmt.Sprintf("%s: opposite %s.%s does not name it back (declares '%s')",
			name, opp.Owner(), opp.Name(), opp.OppositeName())
	}
	if a.IsComposite() && opp.IsComposite() {
		return fmt.Sprintf("%s: both ends of an opposite pair are composite", name)
	}
	return ""
}
