package metamodel

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/modelcore/internal/config"
	"github.com/specialistvlad/modelcore/internal/ctxlog"
	"github.com/specialistvlad/modelcore/internal/element"
	"github.com/specialistvlad/modelcore/internal/propath"
)

// ErrInvalidDefinition is returned for definitions that do not form a
// consistent metamodel.
var ErrInvalidDefinition = errors.New("invalid metamodel definition")

type builder struct {
	ctx   context.Context
	model *config.Model
	conv  config.Converter
	mm    *element.Metamodel
	order []*config.TypeDefinition
}

// Build creates the metamodel described by model. conv converts attribute
// defaults into slot values.
func Build(ctx context.Context, model *config.Model, conv config.Converter) (*element.Metamodel, error) {
	b := &builder{ctx: ctx, model: model, conv: conv, mm: element.NewMetamodel()}
	logger := ctxlog.FromContext(ctx)

	steps := []struct {
		name string
		fn   func() error
	}{
		{"types", b.types},
		{"attributes", b.attributes},
		{"associations", b.associations},
		{"derived unions", b.unions},
		{"redefines", b.redefines},
		{"subsets", b.subsets},
		{"opposites", b.opposites},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return nil, err
		}
		logger.Debug("Metamodel build step complete.", "step", step.name)
	}

	logger.Debug("Metamodel built.", "types", len(b.order))
	return b.mm, nil
}

// types registers every type and links supertypes in dependency order.
func (b *builder) types() error {
	state := make(map[string]int) // 1 visiting, 2 done
	var visit func(def *config.TypeDefinition, path []string) error
	visit = func(def *config.TypeDefinition, path []string) error {
		switch state[def.Name] {
		case 1:
			return fmt.Errorf("%w: cyclic supertypes %v", ErrInvalidDefinition, append(path, def.Name))
		case 2:
			return nil
		}
		state[def.Name] = 1
		for _, name := range def.Extends {
			super, ok := b.model.Type(name)
			if !ok {
				return fmt.Errorf("%w: type '%s' extends unknown type '%s'%s", ErrInvalidDefinition, def.Name, name, b.typeHint(name))
			}
			if err := visit(super, append(path, def.Name)); err != nil {
				return err
			}
		}
		state[def.Name] = 2
		b.order = append(b.order, def)
		return nil
	}

	for _, def := range b.model.Types {
		if err := visit(def, nil); err != nil {
			return err
		}
	}

	for _, def := range b.order {
		var opts []element.TypeOption
		if def.Abstract {
			opts = append(opts, element.Abstract())
		}
		if def.Diagram {
			opts = append(opts, element.DiagramBearing())
		}
		for _, name := range def.Extends {
			opts = append(opts, element.Extends(b.mm.MustLookup(name)))
		}
		b.mm.Register(element.NewType(def.Name, opts...))
	}
	return nil
}

func (b *builder) attributes() error {
	for _, def := range b.order {
		t := b.mm.MustLookup(def.Name)
		for _, a := range def.Attributes {
			if err := b.checkFree(t, a.Name); err != nil {
				return err
			}
			var opts []element.AttributeOption
			if len(a.Enum) > 0 {
				opts = append(opts, element.WithEnum(a.Enum...))
			}
			if a.Default != nil {
				v, err := b.conv.ToNative(*a.Default)
				if err != nil {
					return fmt.Errorf("%w: default of %s.%s: %w", ErrInvalidDefinition, def.Name, a.Name, err)
				}
				opts = append(opts, element.WithDefault(v))
			}
			t.Define(element.NewAttribute(a.Name, a.Type, opts...))
		}
	}
	return nil
}

func (b *builder) associations() error {
	for _, def := range b.order {
		t := b.mm.MustLookup(def.Name)
		for _, a := range def.Associations {
			if err := b.checkFree(t, a.Name); err != nil {
				return err
			}
			target, err := b.target(def.Name, a.Name, a.Target)
			if err != nil {
				return err
			}
			var opts []element.AssociationOption
			if a.Composite {
				opts = append(opts, element.Composite())
			}
			if a.Opposite != "" {
				opts = append(opts, element.WithOpposite(a.Opposite))
			}
			t.Define(element.NewAssociation(a.Name, target, a.Lower, upper(a.Upper), opts...))
		}
	}
	return nil
}

// unions defines every derived union without subsets, so that subsets may
// name unions declared anywhere.
func (b *builder) unions() error {
	for _, def := range b.order {
		t := b.mm.MustLookup(def.Name)
		for _, d := range def.DerivedUnions {
			if err := b.checkFree(t, d.Name); err != nil {
				return err
			}
			target, err := b.target(def.Name, d.Name, d.Target)
			if err != nil {
				return err
			}
			t.Define(element.NewDerivedUnion(d.Name, target, d.Lower, upper(d.Upper)))
		}
	}
	return nil
}

// redefines resolves each original on the supertypes. Types are visited
// supertypes first, so a redefine of a redefine resolves.
func (b *builder) redefines() error {
	for _, def := range b.order {
		t := b.mm.MustLookup(def.Name)
		for _, r := range def.Redefines {
			if r.Name != r.Original {
				if err := b.checkFree(t, r.Name); err != nil {
					return err
				}
			}
			original, ok := inherited(t, r.Original)
			if !ok {
				return fmt.Errorf("%w: %s.%s redefines unknown inherited property '%s'%s",
					ErrInvalidDefinition, def.Name, r.Name, r.Original, propath.Hint(r.Original, inheritedNames(t)))
			}

			var target *element.Type
			if original.Kind() != element.KindAttribute {
				if r.Target == "" {
					target = original.Target()
				} else {
					var err error
					if target, err = b.target(def.Name, r.Name, r.Target); err != nil {
						return err
					}
				}
				if !target.IsSubtypeOf(original.Target()) {
					return fmt.Errorf("%w: %s.%s narrows %s to %s, which is not a subtype: %w",
						ErrInvalidDefinition, def.Name, r.Name, original.Target(), target, element.ErrTypeViolation)
				}
			}
			t.Define(element.NewRedefine(r.Name, target, original))
		}
	}
	return nil
}

func (b *builder) subsets() error {
	for _, def := range b.order {
		t := b.mm.MustLookup(def.Name)
		for _, d := range def.DerivedUnions {
			p, _ := t.Property(d.Name)
			union := p.(*element.DerivedUnion)
			for _, name := range d.Subsets {
				sub, ok := t.Property(name)
				if !ok {
					return fmt.Errorf("%w: derived union %s.%s names unknown subset '%s'%s",
						ErrInvalidDefinition, def.Name, d.Name, name, propath.Hint(name, t.PropertyNames()))
				}
				if sub == p {
					return fmt.Errorf("%w: derived union %s.%s cannot subset itself", ErrInvalidDefinition, def.Name, d.Name)
				}
				if sub.Kind() == element.KindAttribute {
					return fmt.Errorf("%w: derived union %s.%s cannot subset attribute '%s'", ErrInvalidDefinition, def.Name, d.Name, name)
				}
				if !sub.Target().IsSubtypeOf(union.Target()) {
					return fmt.Errorf("%w: subset %s of %s.%s targets %s, not a kind of %s: %w",
						ErrInvalidDefinition, name, def.Name, d.Name, sub.Target(), union.Target(), element.ErrTypeViolation)
				}
				union.AddSubset(sub)
			}
		}
	}
	return nil
}

func (b *builder) target(owner, prop, name string) (*element.Type, error) {
	t, ok := b.mm.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s targets unknown type '%s'%s", ErrInvalidDefinition, owner, prop, name, b.typeHint(name))
	}
	return t, nil
}

// checkFree refuses a property that hides one of the same name on a
// supertype. Renaming is what redefine is for.
func (b *builder) checkFree(t *element.Type, name string) error {
	if _, ok := inherited(t, name); ok {
		return fmt.Errorf("%w: %s.%s hides an inherited property; use a redefine", ErrInvalidDefinition, t.Name(), name)
	}
	return nil
}

func (b *builder) typeHint(name string) string {
	names := make([]string, 0, len(b.model.Types))
	for _, def := range b.model.Types {
		names = append(names, def.Name)
	}
	return propath.Hint(name, names)
}

func inherited(t *element.Type, name string) (element.Property, bool) {
	for _, s := range t.Supertypes() {
		if p, ok := s.Property(name); ok {
			return p, true
		}
	}
	return nil, false
}

func inheritedNames(t *element.Type) []string {
	var names []string
	for _, s := range t.Supertypes() {
		names = append(names, s.PropertyNames()...)
	}
	return names
}

func upper(n int) int {
	if n == config.Many {
		return element.Many
	}
	return n
}
