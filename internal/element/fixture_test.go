package element

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// testModel is a small UML-flavoured metamodel used across the package
// tests.
type testModel struct {
	model   *Metamodel
	bus     *Bus
	factory *Factory
	events  []Event
}

func newTestModel(t *testing.T) *testModel {
	t.Helper()

	m := NewMetamodel()
	elem := NewType("Element", Abstract())
	named := NewType("NamedElement", Abstract(), Extends(elem))
	class := NewType("Class", Extends(named))
	operation := NewType("Operation", Extends(named))
	parameter := NewType("Parameter", Extends(named))
	transition := NewType("Transition", Extends(named))
	constraint := NewType("Constraint", Extends(named))
	comment := NewType("Comment", Extends(elem))
	pkg := NewType("Package", Extends(named))
	profile := NewType("Profile", Extends(pkg))
	diagram := NewType("Diagram", DiagramBearing(), Extends(named))
	for _, ty := range []*Type{elem, named, class, operation, parameter, transition, constraint, comment, pkg, profile, diagram} {
		m.Register(ty)
	}

	named.Define(NewAttribute("name", cty.String))
	named.Define(NewAttribute("visibility", cty.String, WithEnum("public", "private", "protected"), WithDefault("public")))
	class.Define(NewAttribute("isAbstract", cty.Bool, WithDefault(false)))
	operation.Define(NewAttribute("weight", cty.Number, WithDefault(1)))
	comment.Define(NewAttribute("body", cty.DynamicPseudoType))

	class.Define(NewAssociation("ownedOperation", operation, 0, Many, Composite(), WithOpposite("class_")))
	operation.Define(NewAssociation("class_", class, 0, 1, WithOpposite("ownedOperation")))

	formal := NewAssociation("formalParameter", parameter, 0, Many, Composite(), WithOpposite("ownerFormalParam"))
	result := NewAssociation("returnResult", parameter, 0, Many, Composite(), WithOpposite("ownerReturnParam"))
	operation.Define(formal)
	operation.Define(result)
	operation.Define(NewDerivedUnion("parameter", parameter, 0, Many, formal, result))
	parameter.Define(NewAssociation("ownerFormalParam", operation, 0, 1, WithOpposite("formalParameter")))
	parameter.Define(NewAssociation("ownerReturnParam", operation, 0, 1, WithOpposite("returnResult")))

	transition.Define(NewAssociation("guard", constraint, 0, 1, WithOpposite("transition")))
	constraint.Define(NewAssociation("transition", transition, 0, 1, WithOpposite("guard")))
	constraint.Define(NewAssociation("constrainedElement", elem, 0, 2))
	comment.Define(NewAssociation("annotatedElement", elem, 0, Many))

	packaged := NewAssociation("packagedElement", named, 0, Many, Composite())
	pkg.Define(packaged)
	profile.Define(NewRedefine("packagedElement", class, packaged))

	diagram.Define(NewAssociation("element", elem, 0, 1))

	bus := NewBus(nil, nil)
	f := NewFactory(m, bus, nil)
	seq := 0
	f.SetIDGenerator(func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	})

	tm := &testModel{model: m, bus: bus, factory: f}
	bus.Subscribe("recorder", func(ev Event) { tm.events = append(tm.events, ev) })
	return tm
}

func (tm *testModel) create(t *testing.T, typeName string) *Element {
	t.Helper()
	e, err := tm.factory.CreateNamed(typeName)
	require.NoError(t, err)
	return e
}

func (tm *testModel) reset() {
	tm.events = nil
}

func (tm *testModel) kinds() []EventKind {
	out := make([]EventKind, len(tm.events))
	for i, ev := range tm.events {
		out[i] = ev.Kind
	}
	return out
}
