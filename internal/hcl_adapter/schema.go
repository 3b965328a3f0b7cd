// This file contains the HCL block schema decoded with gohcl. The structs
// mirror the source syntax; translate_model.go maps them onto config types.

package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode every top-level block from any file.
type fileRoot struct {
	Settings []*SettingsBlock `hcl:"settings,block"`
	Types    []*TypeBlock     `hcl:"type,block"`
	Remain   hcl.Body         `hcl:",remain"`
}

// SettingsBlock is the `settings` block.
type SettingsBlock struct {
	UndoDepth *int   `hcl:"undo_depth,optional"`
	LogLevel  string `hcl:"log_level,optional"`
	LogFormat string `hcl:"log_format,optional"`
}

// TypeBlock is a `type "Name" { ... }` block.
type TypeBlock struct {
	Name          string               `hcl:"name,label"`
	Description   string               `hcl:"description,optional"`
	Extends       []string             `hcl:"extends,optional"`
	Abstract      bool                 `hcl:"abstract,optional"`
	Diagram       bool                 `hcl:"diagram,optional"`
	Attributes    []*AttributeBlock    `hcl:"attribute,block"`
	Associations  []*AssociationBlock  `hcl:"association,block"`
	DerivedUnions []*DerivedUnionBlock `hcl:"derived_union,block"`
	Redefines     []*RedefineBlock     `hcl:"redefine,block"`
}

// AttributeBlock declares a scalar slot. `type` is a type expression such
// as `string` or `list(number)`; it defaults to `any`, or to `string` when
// `enum` is given.
type AttributeBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type,optional"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
	Enum        []string       `hcl:"enum,optional"`
}

// AssociationBlock declares a reference slot. `upper` is a number or "*".
type AssociationBlock struct {
	Name        string         `hcl:"name,label"`
	Target      string         `hcl:"target"`
	Description string         `hcl:"description,optional"`
	Lower       *int           `hcl:"lower,optional"`
	Upper       hcl.Expression `hcl:"upper,optional"`
	Opposite    string         `hcl:"opposite,optional"`
	Composite   bool           `hcl:"composite,optional"`
}

// DerivedUnionBlock declares a union over properties of the same type.
type DerivedUnionBlock struct {
	Name        string         `hcl:"name,label"`
	Target      string         `hcl:"target"`
	Description string         `hcl:"description,optional"`
	Lower       *int           `hcl:"lower,optional"`
	Upper       hcl.Expression `hcl:"upper,optional"`
	Subsets     []string       `hcl:"subsets"`
}

// RedefineBlock renames an inherited property, narrowing its target.
type RedefineBlock struct {
	Name        string `hcl:"name,label"`
	Original    string `hcl:"original"`
	Target      string `hcl:"target"`
	Description string `hcl:"description,optional"`
}
