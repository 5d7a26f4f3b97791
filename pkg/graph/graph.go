package graph

import (
	"cmp"
	"slices"

	errs "github.com/matzehuels/tuigraph/pkg/errors"
	"github.com/matzehuels/tuigraph/pkg/value"
)

// NodeInstance is one node of the edited graph.
type NodeInstance struct {
	ID    uint64
	Type  string // catalog type name; may be unknown to the catalog
	Label string
	// Values holds explicitly entered parameter values only. Parameters
	// absent here are eligible for derivation.
	Values map[string]value.Value
}

// NewNodeInstance creates a node with no explicit values.
func NewNodeInstance(id uint64, typ, label string) NodeInstance {
	return NodeInstance{
		ID:     id,
		Type:   typ,
		Label:  label,
		Values: map[string]value.Value{},
	}
}

// Value returns the explicit value for a parameter, if set.
func (n *NodeInstance) Value(name string) (value.Value, bool) {
	v, ok := n.Values[name]
	return v, ok
}

// SetValue records an explicit value, overriding any derivation.
func (n *NodeInstance) SetValue(name string, v value.Value) {
	if n.Values == nil {
		n.Values = map[string]value.Value{}
	}
	n.Values[name] = v
}

// ClearValue removes an explicit value so the parameter is derived again.
func (n *NodeInstance) ClearValue(name string) {
	delete(n.Values, name)
}

// Edge is a directed, labeled connection between two node ids.
type Edge struct {
	ID    uint64
	From  uint64
	To    uint64
	Label string
}

// Graph holds nodes and edges in insertion order.
type Graph struct {
	Nodes []NodeInstance
	Edges []Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// NextNodeID returns max(node ids)+1, or 1 for an empty graph.
func (g *Graph) NextNodeID() uint64 {
	var maxID uint64
	for _, n := range g.Nodes {
		if n.ID > maxID {
			maxID = n.ID
		}
	}
	return maxID + 1
}

// NextEdgeID returns count(edges)+1.
func (g *Graph) NextEdgeID() uint64 {
	return uint64(len(g.Edges)) + 1
}

// AddNode appends a node. The id must be positive and unused.
func (g *Graph) AddNode(n NodeInstance) error {
	if n.ID == 0 {
		return errs.New(errs.ErrCodeInvalidGraph, "node id must be positive")
	}
	if _, ok := g.Node(n.ID); ok {
		return errs.New(errs.ErrCodeInvalidGraph, "duplicate node id %d", n.ID)
	}
	if n.Values == nil {
		n.Values = map[string]value.Value{}
	}
	g.Nodes = append(g.Nodes, n)
	return nil
}

// AddEdge appends an edge with the next edge id and returns it. The
// endpoints are not required to exist.
func (g *Graph) AddEdge(from, to uint64, label string) Edge {
	e := Edge{ID: g.NextEdgeID(), From: from, To: to, Label: label}
	g.Edges = append(g.Edges, e)
	return e
}

// Node returns a pointer to the node with the given id, for in-place edits
// by the owning session.
func (g *Graph) Node(id uint64) (*NodeInstance, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// SortedNodes returns the nodes ordered by ascending id. The returned
// pointers alias the graph's storage.
func (g *Graph) SortedNodes() []*NodeInstance {
	out := make([]*NodeInstance, len(g.Nodes))
	for i := range g.Nodes {
		out[i] = &g.Nodes[i]
	}
	slices.SortStableFunc(out, func(a, b *NodeInstance) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// SortedEdges returns all edges ordered by ascending id.
func (g *Graph) SortedEdges() []Edge {
	return g.edgesWhere(func(Edge) bool { return true })
}

// Incoming returns the edges whose To is id, ordered by ascending edge id.
func (g *Graph) Incoming(id uint64) []Edge {
	return g.edgesWhere(func(e Edge) bool { return e.To == id })
}

// Outgoing returns the edges whose From is id, ordered by ascending edge id.
func (g *Graph) Outgoing(id uint64) []Edge {
	return g.edgesWhere(func(e Edge) bool { return e.From == id })
}

// IncomingLabels returns the labels of [Graph.Incoming].
func (g *Graph) IncomingLabels(id uint64) []string {
	return labels(g.Incoming(id))
}

// OutgoingLabels returns the labels of [Graph.Outgoing].
func (g *Graph) OutgoingLabels(id uint64) []string {
	return labels(g.Outgoing(id))
}

// DanglingEdges returns edges with at least one endpoint missing from the
// graph, ordered by edge id.
func (g *Graph) DanglingEdges() []Edge {
	return g.edgesWhere(func(e Edge) bool {
		_, fromOK := g.Node(e.From)
		_, toOK := g.Node(e.To)
		return !fromOK || !toOK
	})
}

func (g *Graph) edgesWhere(keep func(Edge) bool) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if keep(e) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b Edge) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func labels(edges []Edge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.Label
	}
	return out
}
