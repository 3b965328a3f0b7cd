package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/modelcore/internal/element"
)

type fixture struct {
	model      *element.Metamodel
	bus        *element.Bus
	factory    *element.Factory
	dispatcher *Dispatcher
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	m := element.NewMetamodel()
	named := element.NewType("NamedElement", element.Abstract())
	class := element.NewType("Class", element.Extends(named))
	operation := element.NewType("Operation", element.Extends(named))
	parameter := element.NewType("Parameter", element.Extends(named))
	transition := element.NewType("Transition", element.Extends(named))
	valueSpec := element.NewType("ValueSpecification", element.Extends(named))
	constraint := element.NewType("Constraint", element.Extends(valueSpec))
	nodeA := element.NewType("A", element.Extends(named))
	nodeB := element.NewType("B", element.Extends(named))
	for _, ty := range []*element.Type{named, class, operation, parameter, transition, valueSpec, constraint, nodeA, nodeB} {
		m.Register(ty)
	}

	named.Define(element.NewAttribute("name", cty.String))
	class.Define(element.NewAssociation("ownedOperation", operation, 0, element.Many, element.Composite(), element.WithOpposite("class_")))
	operation.Define(element.NewAssociation("class_", class, 0, 1, element.WithOpposite("ownedOperation")))
	formal := element.NewAssociation("formalParameter", parameter, 0, element.Many, element.Composite())
	result := element.NewAssociation("returnResult", parameter, 0, element.Many, element.Composite())
	operation.Define(formal)
	operation.Define(result)
	operation.Define(element.NewDerivedUnion("parameter", parameter, 0, element.Many, formal, result))

	transition.Define(element.NewAssociation("guard", valueSpec, 0, 1))
	constraint.Define(element.NewAssociation("specification", valueSpec, 0, 1))

	nodeA.Define(element.NewAssociation("one", nodeB, 0, 1))
	nodeB.Define(element.NewAssociation("two", nodeA, 0, 1))

	bus := element.NewBus(nil, nil)
	f := element.NewFactory(m, bus, nil)
	d := New(bus, m, opts...)
	f.SetPathObserver(d)
	return &fixture{model: m, bus: bus, factory: f, dispatcher: d}
}

func (fx *fixture) create(t *testing.T, typeName string) *element.Element {
	t.Helper()
	e, err := fx.factory.CreateNamed(typeName)
	require.NoError(t, err)
	return e
}

// counter is a handler that counts its calls.
type counter struct {
	events []element.Event
}

func (c *counter) handle(ev element.Event) {
	c.events = append(c.events, ev)
}

func (c *counter) calls() int {
	return len(c.events)
}
