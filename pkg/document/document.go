package document

import (
	"maps"
	"slices"

	"github.com/matzehuels/tuigraph/pkg/catalog"
	"github.com/matzehuels/tuigraph/pkg/graph"
	"github.com/matzehuels/tuigraph/pkg/resolve"
	"github.com/matzehuels/tuigraph/pkg/value"
)

// Record is the emitted form of one node.
type Record struct {
	NodeID uint64
	Values map[string]value.Value
}

// Document is the assembled output before rendering.
type Document struct {
	Root  string
	Types map[string][]Record
}

// TypeNames returns the type names present in the document, sorted.
func (d *Document) TypeNames() []string {
	return slices.Sorted(maps.Keys(d.Types))
}

// Len returns the total number of records.
func (d *Document) Len() int {
	n := 0
	for _, recs := range d.Types {
		n += len(recs)
	}
	return n
}

// Assemble builds the document for g. A nil catalog behaves like
// [catalog.Empty]. The graph is not modified.
func Assemble(g *graph.Graph, cat *catalog.Catalog) *Document {
	doc := &Document{
		Root:  cat.Root(),
		Types: map[string][]Record{},
	}
	for _, node := range g.SortedNodes() {
		rec := Record{NodeID: node.ID}
		if def, ok := cat.Type(node.Type); ok {
			rec.Values = knownValues(g, node, def)
		} else {
			rec.Values = maps.Clone(node.Values)
			if rec.Values == nil {
				rec.Values = map[string]value.Value{}
			}
		}
		doc.Types[node.Type] = append(doc.Types[node.Type], rec)
	}
	return doc
}

func knownValues(g *graph.Graph, node *graph.NodeInstance, def *catalog.NodeTypeDef) map[string]value.Value {
	out := make(map[string]value.Value, len(def.Params))
	for name, p := range def.Params {
		v, ok := resolve.Value(g, node, name, p)
		if !ok {
			continue
		}
		out[name] = resolve.ApplyRender(v, p)
	}
	return out
}
