package undo

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/modelcore/internal/element"
)

type fixture struct {
	model   *element.Metamodel
	bus     *element.Bus
	factory *element.Factory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	m := element.NewMetamodel()
	named := element.NewType("NamedElement", element.Abstract())
	class := element.NewType("Class", element.Extends(named))
	iface := element.NewType("Interface", element.Extends(class))
	operation := element.NewType("Operation", element.Extends(named))
	for _, ty := range []*element.Type{named, class, iface, operation} {
		m.Register(ty)
	}
	named.Define(element.NewAttribute("name", cty.String))
	class.Define(element.NewAssociation("ownedOperation", operation, 0, element.Many, element.Composite(), element.WithOpposite("class_")))
	operation.Define(element.NewAssociation("class_", class, 0, 1, element.WithOpposite("ownedOperation")))

	bus := element.NewBus(nil, nil)
	return &fixture{model: m, bus: bus, factory: element.NewFactory(m, bus, nil)}
}

func (fx *fixture) create(t *testing.T, typeName string) *element.Element {
	t.Helper()
	e, err := fx.factory.CreateNamed(typeName)
	require.NoError(t, err)
	return e
}

// elementState is a comparable view of one element.
type elementState struct {
	Type  string
	Name  any
	Class string
	Ops   []string
}

// snapshot captures every element's slot values by id.
func (fx *fixture) snapshot() map[string]elementState {
	out := make(map[string]elementState)
	for e := range fx.factory.Select(nil) {
		name, _ := e.Get("name")
		st := elementState{Type: e.Type().Name(), Name: name}
		if c := e.Ref("class_"); c != nil {
			st.Class = c.ID()
		}
		for _, op := range e.Refs("ownedOperation") {
			st.Ops = append(st.Ops, op.ID())
		}
		out[e.ID()] = st
	}
	return out
}

func ids(elems []*element.Element) []string {
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = e.ID()
	}
	return slices.Clip(out)
}
