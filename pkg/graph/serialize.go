package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/tuigraph/pkg/errors"
	"github.com/matzehuels/tuigraph/pkg/value"
)

// =============================================================================
// Wire types
// =============================================================================

// File is the serialized form of a graph, shared by the TOML graph files,
// the JSON API and session payloads.
type File struct {
	Nodes []NodeFile `toml:"nodes" json:"nodes"`
	Edges []EdgeFile `toml:"edges" json:"edges"`
}

// NodeFile is one serialized node. Values holds plain decoder data.
type NodeFile struct {
	ID     int64          `toml:"id" json:"id"`
	Type   string         `toml:"type" json:"type"`
	Label  string         `toml:"label" json:"label"`
	Values map[string]any `toml:"values,omitempty" json:"values,omitempty"`
}

// EdgeFile is one serialized edge.
type EdgeFile struct {
	ID    int64  `toml:"id" json:"id"`
	From  int64  `toml:"from" json:"from"`
	To    int64  `toml:"to" json:"to"`
	Label string `toml:"label" json:"label"`
}

func toNodeFile(n NodeInstance) NodeFile {
	nf := NodeFile{ID: int64(n.ID), Type: n.Type, Label: n.Label}
	if len(n.Values) > 0 {
		nf.Values = value.MapToAny(n.Values)
	}
	return nf
}

func (nf NodeFile) toNode() (NodeInstance, error) {
	if nf.ID <= 0 {
		return NodeInstance{}, errs.New(errs.ErrCodeInvalidGraph, "node id must be positive, got %d", nf.ID)
	}
	n := NewNodeInstance(uint64(nf.ID), nf.Type, nf.Label)
	vals, err := value.MapFromAny(nf.Values)
	if err != nil {
		return NodeInstance{}, errs.Wrap(errs.ErrCodeInvalidGraph, err, "node %d values", nf.ID)
	}
	n.Values = vals
	return n, nil
}

func toEdgeFile(e Edge) EdgeFile {
	return EdgeFile{ID: int64(e.ID), From: int64(e.From), To: int64(e.To), Label: e.Label}
}

func (ef EdgeFile) toEdge() (Edge, error) {
	if ef.ID <= 0 {
		return Edge{}, errs.New(errs.ErrCodeInvalidGraph, "edge id must be positive, got %d", ef.ID)
	}
	if ef.From < 0 || ef.To < 0 {
		return Edge{}, errs.New(errs.ErrCodeInvalidGraph, "edge %d has a negative endpoint", ef.ID)
	}
	return Edge{ID: uint64(ef.ID), From: uint64(ef.From), To: uint64(ef.To), Label: ef.Label}, nil
}

// ToFile converts g to its serialized form.
func (g *Graph) ToFile() File {
	f := File{
		Nodes: make([]NodeFile, len(g.Nodes)),
		Edges: make([]EdgeFile, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		f.Nodes[i] = toNodeFile(n)
	}
	for i, e := range g.Edges {
		f.Edges[i] = toEdgeFile(e)
	}
	return f
}

// FromFile rebuilds a graph, rejecting non-positive or duplicate node ids.
func FromFile(f File) (*Graph, error) {
	g := New()
	for _, nf := range f.Nodes {
		n, err := nf.toNode()
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, ef := range f.Edges {
		e, err := ef.toEdge()
		if err != nil {
			return nil, err
		}
		g.Edges = append(g.Edges, e)
	}
	return g, nil
}

// =============================================================================
// TOML API
// =============================================================================

// WriteGraph encodes g as TOML to w. Nodes and edges keep insertion order.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	if err := enc.Encode(g.ToFile()); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "encode graph")
	}
	return nil
}

// MarshalGraph encodes g as TOML bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadGraph decodes a TOML graph from r.
func ReadGraph(r io.Reader) (*Graph, error) {
	var f File
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidGraph, err, "decode graph")
	}
	return FromFile(f)
}

// UnmarshalGraph decodes TOML bytes into a graph.
func UnmarshalGraph(data []byte) (*Graph, error) {
	return ReadGraph(bytes.NewReader(data))
}

// ReadGraphFile reads a TOML graph file.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "graph %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return ReadGraph(f)
}

// WriteGraphFile writes g to path atomically: the TOML is written to a
// temporary file in the same directory which is then renamed over path.
func WriteGraphFile(g *Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "create temp file in %s", dir)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return errs.Wrap(errs.ErrCodeIO, err, "close %s", name)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return errs.Wrap(errs.ErrCodeIO, err, "chmod %s", name)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return errs.Wrap(errs.ErrCodeIO, err, "rename to %s", path)
	}
	return nil
}

// =============================================================================
// JSON API
// =============================================================================

// MarshalJSON implements json.Marshaler.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.ToFile())
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	parsed, err := FromFile(f)
	if err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	*g = *parsed
	return nil
}
