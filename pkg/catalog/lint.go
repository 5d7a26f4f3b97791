package catalog

import (
	"fmt"
	"slices"
)

// Lint reports suspicious but loadable catalog constructs, one message per
// finding, sorted for stable output. A nil result means nothing was found.
//
// Findings include element types or lengths on parameters that ignore them,
// order lists naming undeclared or duplicate parameters, and sources whose
// derived shape does not match the declared kind.
func Lint(c *Catalog) []string {
	var out []string
	for _, name := range c.TypeNames() {
		t := c.Types[name]
		seen := make(map[string]bool, len(t.Order))
		for _, k := range t.Order {
			if seen[k] {
				out = append(out, fmt.Sprintf("%s: order lists %q twice", name, k))
			}
			seen[k] = true
			if _, ok := t.Params[k]; !ok {
				out = append(out, fmt.Sprintf("%s: order lists undeclared param %q", name, k))
			}
		}
		for _, pname := range t.ParamNames() {
			out = append(out, lintParam(name, pname, t.Params[pname])...)
		}
	}
	slices.Sort(out)
	return out
}

func lintParam(typ, name string, p ParamDef) []string {
	var out []string
	where := typ + "." + name
	if p.ValueType != nil && p.Kind != ParamList && p.Kind != ParamTable {
		out = append(out, fmt.Sprintf("%s: value_type is ignored for %s params", where, p.Kind))
	}
	if p.ValueType != nil && p.Kind == ParamTable && *p.ValueType != ValueFloat {
		out = append(out, fmt.Sprintf("%s: table params only read value_type = \"float\"", where))
	}
	if p.Len != nil && p.Kind != ParamList {
		out = append(out, fmt.Sprintf("%s: len is ignored for %s params", where, p.Kind))
	}
	if p.Len != nil && *p.Len == 0 {
		out = append(out, fmt.Sprintf("%s: len = 0 only accepts empty lists", where))
	}
	if p.Source != nil {
		multi := p.Source.Kind == SourceIncomingEdgeLabels || p.Source.Kind == SourceOutgoingEdgeLabels
		if multi && p.Kind != ParamList {
			out = append(out, fmt.Sprintf("%s: source %s yields a list but param is %s", where, p.Source.Kind, p.Kind))
		}
		if !multi && p.Kind != ParamString && p.Kind != ParamList {
			out = append(out, fmt.Sprintf("%s: source %s yields a string but param is %s", where, p.Source.Kind, p.Kind))
		}
	}
	return out
}
