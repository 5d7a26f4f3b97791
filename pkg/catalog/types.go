package catalog

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/tuigraph/pkg/errors"
)

// ParamType is the declared kind of a parameter. It selects the literal
// parsing rule applied to user input.
type ParamType int

// Parameter kinds. The zero value means "not declared" and fails loading.
const (
	ParamString ParamType = iota + 1
	ParamFloat
	ParamBool
	ParamList
	ParamTable
)

var paramTypeNames = map[ParamType]string{
	ParamString: "string",
	ParamFloat:  "float",
	ParamBool:   "bool",
	ParamList:   "list",
	ParamTable:  "table",
}

func (t ParamType) String() string {
	if s, ok := paramTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("param_type(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t ParamType) MarshalText() ([]byte, error) {
	s, ok := paramTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown param type %d", int(t))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ParamType) UnmarshalText(b []byte) error {
	for k, s := range paramTypeNames {
		if s == string(b) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown param type %q (want string, float, bool, list or table)", b)
}

// ValueType is the element type a list parameter validates against. It is
// also read by table parameters, where [ValueFloat] enables the "x y"
// coordinate shorthand.
type ValueType int

// Element types.
const (
	ValueString ValueType = iota + 1
	ValueFloat
	ValueBool
	ValueAny
)

var valueTypeNames = map[ValueType]string{
	ValueString: "string",
	ValueFloat:  "float",
	ValueBool:   "bool",
	ValueAny:    "any",
}

func (t ValueType) String() string {
	if s, ok := valueTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("value_type(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t ValueType) MarshalText() ([]byte, error) {
	s, ok := valueTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown value type %d", int(t))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ValueType) UnmarshalText(b []byte) error {
	for k, s := range valueTypeNames {
		if s == string(b) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown value type %q (want string, float, bool or any)", b)
}

// RenderHint overrides the shape of a resolved value at emission time.
type RenderHint int

// Render hints.
const (
	// RenderScalar unwraps single-element lists.
	RenderScalar RenderHint = iota + 1
	// RenderList wraps non-list values in a single-element list.
	RenderList
)

func (h RenderHint) String() string {
	switch h {
	case RenderScalar:
		return "scalar"
	case RenderList:
		return "list"
	}
	return fmt.Sprintf("render(%d)", int(h))
}

// MarshalText implements encoding.TextMarshaler.
func (h RenderHint) MarshalText() ([]byte, error) {
	switch h {
	case RenderScalar, RenderList:
		return []byte(h.String()), nil
	}
	return nil, fmt.Errorf("unknown render hint %d", int(h))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *RenderHint) UnmarshalText(b []byte) error {
	switch string(b) {
	case "scalar":
		*h = RenderScalar
	case "list":
		*h = RenderList
	default:
		return fmt.Errorf("unknown render hint %q (want scalar or list)", b)
	}
	return nil
}

// SourceKind selects how a derived value is computed from the graph.
type SourceKind int

// Derivation sources.
const (
	// SourceNodeLabel uses the node's own label.
	SourceNodeLabel SourceKind = iota + 1
	// SourceIncomingEdgeLabels collects the labels of all edges ending at the node.
	SourceIncomingEdgeLabels
	// SourceOutgoingEdgeLabels collects the labels of all edges starting at the node.
	SourceOutgoingEdgeLabels
	// SourceIncomingEdgeLabel picks one incoming edge label by index.
	SourceIncomingEdgeLabel
	// SourceOutgoingEdgeLabel picks one outgoing edge label by index.
	SourceOutgoingEdgeLabel
)

var sourceKindNames = map[SourceKind]string{
	SourceNodeLabel:          "node_label",
	SourceIncomingEdgeLabels: "incoming_edge_labels",
	SourceOutgoingEdgeLabels: "outgoing_edge_labels",
	SourceIncomingEdgeLabel:  "incoming_edge_label",
	SourceOutgoingEdgeLabel:  "outgoing_edge_label",
}

func (k SourceKind) String() string {
	if s, ok := sourceKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("source(%d)", int(k))
}

// Indexed reports whether the source selects a single edge label.
func (k SourceKind) Indexed() bool {
	return k == SourceIncomingEdgeLabel || k == SourceOutgoingEdgeLabel
}

func parseSourceKind(s string) (SourceKind, error) {
	for k, name := range sourceKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown source %q", s)
}

// ParamSource is a derivation rule. Index is only read for the indexed kinds
// and defaults to 0.
type ParamSource struct {
	Kind  SourceKind
	Index int
}

func (s ParamSource) String() string {
	if s.Kind.Indexed() {
		return fmt.Sprintf("%s[%d]", s.Kind, s.Index)
	}
	return s.Kind.String()
}

// UnmarshalTOML implements toml.Unmarshaler.
//
// Unit sources are plain strings ("node_label"). Indexed sources are either a
// plain string (index 0) or a one-key table whose value holds an optional
// index: { incoming_edge_label = { index = 1 } }.
func (s *ParamSource) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		k, err := parseSourceKind(v)
		if err != nil {
			return err
		}
		*s = ParamSource{Kind: k}
		return nil
	case map[string]any:
		if len(v) != 1 {
			return fmt.Errorf("source table must have exactly one key, got %d", len(v))
		}
		for name, body := range v {
			k, err := parseSourceKind(name)
			if err != nil {
				return err
			}
			idx, err := sourceIndex(body)
			if err != nil {
				return fmt.Errorf("source %s: %w", name, err)
			}
			if idx != 0 && !k.Indexed() {
				return fmt.Errorf("source %s does not take an index", name)
			}
			*s = ParamSource{Kind: k, Index: idx}
		}
		return nil
	}
	return fmt.Errorf("source must be a string or table, got %T", data)
}

func sourceIndex(body any) (int, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return 0, fmt.Errorf("expected table, got %T", body)
	}
	raw, ok := m["index"]
	if !ok {
		return 0, nil
	}
	n, ok := raw.(int64)
	if !ok {
		return 0, fmt.Errorf("index must be an integer, got %T", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("index must not be negative, got %d", n)
	}
	return int(n), nil
}

// ParamDef declares one parameter of a node type.
type ParamDef struct {
	Kind ParamType `toml:"type"`
	// ValueType is the list element type. Table parameters read it to enable
	// the coordinate shorthand.
	ValueType *ValueType `toml:"value_type"`
	// Len is the exact element count required of a list.
	Len    *int         `toml:"len"`
	Source *ParamSource `toml:"source"`
	Render *RenderHint  `toml:"render"`
}

// ElemType returns the declared element type, or [ValueAny] when unset.
func (d ParamDef) ElemType() ValueType {
	if d.ValueType == nil {
		return ValueAny
	}
	return *d.ValueType
}

// Describe returns a compact one-line summary, e.g. "list<string>[1] ← outgoing_edge_label[0]".
func (d ParamDef) Describe() string {
	var b strings.Builder
	b.WriteString(d.Kind.String())
	if d.ValueType != nil {
		fmt.Fprintf(&b, "<%s>", *d.ValueType)
	}
	if d.Len != nil {
		fmt.Fprintf(&b, "[%d]", *d.Len)
	}
	if d.Render != nil {
		fmt.Fprintf(&b, " as %s", *d.Render)
	}
	if d.Source != nil {
		fmt.Fprintf(&b, " ← %s", d.Source)
	}
	return b.String()
}

func (d ParamDef) validate() error {
	if d.Kind == 0 {
		return errs.New(errs.ErrCodeCatalogLoad, "missing type")
	}
	if d.Len != nil && *d.Len < 0 {
		return errs.New(errs.ErrCodeCatalogLoad, "len must not be negative, got %d", *d.Len)
	}
	return nil
}
