package resolve

import (
	"github.com/matzehuels/tuigraph/pkg/catalog"
	"github.com/matzehuels/tuigraph/pkg/graph"
	"github.com/matzehuels/tuigraph/pkg/value"
)

// Value returns the effective value of parameter name on node. Explicit
// values win over derived ones. The boolean is false when neither exists.
func Value(g *graph.Graph, node *graph.NodeInstance, name string, def catalog.ParamDef) (value.Value, bool) {
	if v, ok := node.Value(name); ok {
		return v, true
	}
	return Derived(g, node, def)
}

// Derived evaluates only the derivation source of def, ignoring explicit
// values. It reports false when def has no source or the source selects an
// edge that does not exist.
func Derived(g *graph.Graph, node *graph.NodeInstance, def catalog.ParamDef) (value.Value, bool) {
	if def.Source == nil || node == nil {
		return nil, false
	}
	src := *def.Source
	switch src.Kind {
	case catalog.SourceNodeLabel:
		return value.String(node.Label), true
	case catalog.SourceIncomingEdgeLabels:
		return stringList(g.IncomingLabels(node.ID)), true
	case catalog.SourceOutgoingEdgeLabels:
		return stringList(g.OutgoingLabels(node.ID)), true
	case catalog.SourceIncomingEdgeLabel:
		return pick(g.IncomingLabels(node.ID), src.Index)
	case catalog.SourceOutgoingEdgeLabel:
		return pick(g.OutgoingLabels(node.ID), src.Index)
	}
	return nil, false
}

func pick(labels []string, i int) (value.Value, bool) {
	if i < 0 || i >= len(labels) {
		return nil, false
	}
	return value.String(labels[i]), true
}

func stringList(labels []string) value.List {
	out := make(value.List, len(labels))
	for i, l := range labels {
		out[i] = value.String(l)
	}
	return out
}
