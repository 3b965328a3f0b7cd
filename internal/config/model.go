package config

import (
	"fmt"
	"slices"

	"github.com/zclconf/go-cty/cty"
)

// Many is the upper bound of an unbounded multiplicity.
const Many = -1

// Default settings applied when a source leaves a value unset.
const (
	DefaultUndoDepth = 100
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Model is the unified, format-agnostic representation of everything a
// source defines: runtime settings and metamodel types.
type Model struct {
	Settings Settings
	// Types holds the type definitions in declaration order.
	Types []*TypeDefinition
}

// NewModel returns an empty model carrying the default settings.
func NewModel() *Model {
	return &Model{Settings: DefaultSettings()}
}

// Type returns the definition with the given name.
func (m *Model) Type(name string) (*TypeDefinition, bool) {
	i := slices.IndexFunc(m.Types, func(t *TypeDefinition) bool { return t.Name == name })
	if i < 0 {
		return nil, false
	}
	return m.Types[i], true
}

// AddType appends def, refusing a second definition of the same name.
func (m *Model) AddType(def *TypeDefinition) error {
	if _, exists := m.Type(def.Name); exists {
		return fmt.Errorf("type %q is defined more than once", def.Name)
	}
	m.Types = append(m.Types, def)
	return nil
}

// Merge appends every type of other and takes its explicitly set settings.
func (m *Model) Merge(other *Model) error {
	for _, def := range other.Types {
		if err := m.AddType(def); err != nil {
			return err
		}
	}
	m.Settings = m.Settings.Override(other.Settings)
	return nil
}

// Settings are the runtime knobs read from a `settings` block.
type Settings struct {
	UndoDepth int
	LogLevel  string
	LogFormat string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		UndoDepth: DefaultUndoDepth,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// Override returns s with every non-zero field of o applied on top.
func (s Settings) Override(o Settings) Settings {
	if o.UndoDepth != 0 {
		s.UndoDepth = o.UndoDepth
	}
	if o.LogLevel != "" {
		s.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		s.LogFormat = o.LogFormat
	}
	return s
}

// --- Metamodel Definitions ---

// TypeDefinition is the format-agnostic representation of a `type` block.
type TypeDefinition struct {
	Name          string
	Description   string
	Extends       []string
	Abstract      bool
	Diagram       bool
	Attributes    []*AttributeDefinition
	Associations  []*AssociationDefinition
	DerivedUnions []*DerivedUnionDefinition
	Redefines     []*RedefineDefinition
}

// PropertyNames lists every property the definition declares, in block
// order per kind.
func (t *TypeDefinition) PropertyNames() []string {
	var names []string
	for _, a := range t.Attributes {
		names = append(names, a.Name)
	}
	for _, a := range t.Associations {
		names = append(names, a.Name)
	}
	for _, d := range t.DerivedUnions {
		names = append(names, d.Name)
	}
	for _, r := range t.Redefines {
		names = append(names, r.Name)
	}
	return names
}

// AttributeDefinition defines a scalar slot.
type AttributeDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	Enum        []string
}

// AssociationDefinition defines a reference slot to elements of Target.
type AssociationDefinition struct {
	Name        string
	Target      string
	Description string
	Lower       int
	Upper       int
	Opposite    string
	Composite   bool
}

// DerivedUnionDefinition defines a read-only union over subset properties.
type DerivedUnionDefinition struct {
	Name        string
	Target      string
	Description string
	Lower       int
	Upper       int
	Subsets     []string
}

// RedefineDefinition renames an inherited property and narrows its target.
type RedefineDefinition struct {
	Name        string
	Target      string
	Description string
	Original    string
}
