package app

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/specialistvlad/modelcore/internal/dispatcher"
	"github.com/specialistvlad/modelcore/internal/element"
	"github.com/zclconf/go-cty/cty"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// writeTypeList prints one row per registered type, sorted by name.
func writeTypeList(w io.Writer, mm *element.Metamodel) error {
	types := mm.Types()
	slices.SortFunc(types, func(a, b *element.Type) int { return strings.Compare(a.Name(), b.Name()) })

	tw := newTable(w)
	fmt.Fprintln(tw, "TYPE\tEXTENDS\tFLAGS\tPROPERTIES")
	for _, t := range types {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", t.Name(), typeNames(t.Supertypes()), typeFlags(t), len(t.Properties()))
	}
	return tw.Flush()
}

// writeType prints a type header followed by every property visible on it,
// inherited ones included.
func writeType(w io.Writer, t *element.Type) error {
	fmt.Fprintf(w, "type %s", t.Name())
	if supers := t.Supertypes(); len(supers) > 0 {
		fmt.Fprintf(w, " extends %s", typeNames(supers))
	}
	if flags := typeFlags(t); flags != "-" {
		fmt.Fprintf(w, " (%s)", flags)
	}
	fmt.Fprintln(w)

	tw := newTable(w)
	fmt.Fprintln(tw, "PROPERTY\tKIND\tTYPE\tMULTIPLICITY\tOWNER\tDETAILS")
	for _, p := range t.Properties() {
		owner := "-"
		if p.Owner() != nil {
			owner = p.Owner().Name()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.Name(), p.Kind(), valueType(p), multiplicity(p), owner, details(p))
	}
	return tw.Flush()
}

// writePath prints how each segment of a compiled path resolves.
func writePath(w io.Writer, root *element.Type, c *dispatcher.Compiled) error {
	fmt.Fprintf(w, "path %s on %s\n", c.Path, root.Name())

	tw := newTable(w)
	fmt.Fprintln(tw, "#\tSEGMENT\tSCOPE\tKIND\tYIELDS")
	for i, p := range c.Properties {
		yields := valueType(p)
		if i+1 < len(c.Scopes) {
			yields = c.Scopes[i+1].Name()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i, c.Path.Segments[i], c.Scopes[i].Name(), p.Kind(), yields)
	}
	return tw.Flush()
}

func typeNames(types []*element.Type) string {
	if len(types) == 0 {
		return "-"
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name()
	}
	return strings.Join(names, ", ")
}

func typeFlags(t *element.Type) string {
	var flags []string
	if t.IsAbstract() {
		flags = append(flags, "abstract")
	}
	if t.IsDiagram() {
		flags = append(flags, "diagram")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func valueType(p element.Property) string {
	if a, ok := p.(*element.Attribute); ok {
		if a.Type() == cty.DynamicPseudoType {
			return "any"
		}
		return a.Type().FriendlyName()
	}
	if t := p.Target(); t != nil {
		return t.Name()
	}
	if r, ok := p.(*element.Redefine); ok {
		return valueType(r.Original())
	}
	return "-"
}

func multiplicity(p element.Property) string {
	upper := "*"
	if p.Upper() != element.Many {
		upper = strconv.Itoa(p.Upper())
	}
	if strconv.Itoa(p.Lower()) == upper {
		return upper
	}
	return fmt.Sprintf("%d..%s", p.Lower(), upper)
}

func details(p element.Property) string {
	var out []string
	switch v := p.(type) {
	case *element.Attribute:
		if def := v.Default(); def != nil {
			out = append(out, fmt.Sprintf("default=%v", def))
		}
		if enum := v.Enum(); len(enum) > 0 {
			out = append(out, "enum="+strings.Join(enum, "|"))
		}
	case *element.Association:
		if v.IsComposite() {
			out = append(out, "composite")
		}
		if v.OppositeName() != "" {
			out = append(out, "opposite="+v.OppositeName())
		}
	case *element.DerivedUnion:
		names := make([]string, 0, len(v.Subsets()))
		for _, s := range v.Subsets() {
			names = append(names, s.Name())
		}
		out = append(out, "subsets="+strings.Join(names, ","))
	case *element.Redefine:
		orig := v.Original()
		if orig.Owner() != nil {
			out = append(out, fmt.Sprintf("redefines=%s.%s", orig.Owner().Name(), orig.Name()))
		} else {
			out = append(out, "redefines="+orig.Name())
		}
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, " ")
}
