package catalog

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/tuigraph/pkg/errors"
	"github.com/matzehuels/tuigraph/pkg/value"
)

const scenarioTOML = `
[format]
root = "plant"

[format.tables.sim]
dt = 0.5

[nodes.types.cstr]
order = ["name", "out"]

[nodes.types.cstr.params.name]
type = "string"
source = "node_label"

[nodes.types.cstr.params.out]
type = "list"
value_type = "string"
len = 1
source = { outgoing_edge_label = { index = 0 } }

[nodes.types.sensor.params.in]
type = "list"
value_type = "string"
len = 1
source = { incoming_edge_label = {} }
render = "scalar"
`

func TestParseTOML(t *testing.T) {
	c, err := ParseTOML([]byte(scenarioTOML))
	if err != nil {
		t.Fatalf("ParseTOML: %v", err)
	}

	if got := c.Root(); got != "plant" {
		t.Errorf("Root() = %q, want plant", got)
	}
	if got := c.TypeNames(); !slices.Equal(got, []string{"cstr", "sensor"}) {
		t.Errorf("TypeNames() = %v", got)
	}

	wantTables := map[string]value.Value{"sim": value.Table{"dt": value.Float(0.5)}}
	if diff := cmp.Diff(wantTables, c.ExtraTables()); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}

	cstr, ok := c.Type("cstr")
	if !ok {
		t.Fatal("cstr not found")
	}
	out, ok := cstr.Param("out")
	if !ok {
		t.Fatal("cstr.out not found")
	}
	if out.Kind != ParamList || out.ElemType() != ValueString {
		t.Errorf("out = %s", out.Describe())
	}
	if out.Len == nil || *out.Len != 1 {
		t.Errorf("out.Len = %v, want 1", out.Len)
	}
	if out.Source == nil || *out.Source != (ParamSource{Kind: SourceOutgoingEdgeLabel}) {
		t.Errorf("out.Source = %v", out.Source)
	}

	sensor, _ := c.Type("sensor")
	in := sensor.Params["in"]
	if in.Render == nil || *in.Render != RenderScalar {
		t.Errorf("in.Render = %v, want scalar", in.Render)
	}
	if in.Source == nil || in.Source.Kind != SourceIncomingEdgeLabel || in.Source.Index != 0 {
		t.Errorf("in.Source = %v", in.Source)
	}
}

func TestParseTOMLSourceForms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want ParamSource
	}{
		{"unit string", `"node_label"`, ParamSource{Kind: SourceNodeLabel}},
		{"all incoming", `"incoming_edge_labels"`, ParamSource{Kind: SourceIncomingEdgeLabels}},
		{"all outgoing", `"outgoing_edge_labels"`, ParamSource{Kind: SourceOutgoingEdgeLabels}},
		{"indexed bare", `"incoming_edge_label"`, ParamSource{Kind: SourceIncomingEdgeLabel}},
		{"indexed table", `{ outgoing_edge_label = { index = 2 } }`, ParamSource{Kind: SourceOutgoingEdgeLabel, Index: 2}},
		{"indexed default", `{ incoming_edge_label = {} }`, ParamSource{Kind: SourceIncomingEdgeLabel}},
		{"unit as table", `{ node_label = {} }`, ParamSource{Kind: SourceNodeLabel}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "[nodes.types.x.params.p]\ntype = \"string\"\nsource = " + tt.src + "\n"
			c, err := ParseTOML([]byte(doc))
			if err != nil {
				t.Fatalf("ParseTOML: %v", err)
			}
			got := c.Types["x"].Params["p"].Source
			if got == nil || *got != tt.want {
				t.Errorf("source = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTOMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", `[nodes`},
		{"missing nodes", `[format]` + "\n" + `root = "units"`},
		{"missing root", "[format]\n[nodes.types.x.params.p]\ntype = \"string\"\n"},
		{"missing params", "[nodes.types.x]\norder = []\n"},
		{"missing type", "[nodes.types.x.params.p]\nlen = 1\n"},
		{"bad type", "[nodes.types.x.params.p]\ntype = \"integer\"\n"},
		{"bad value type", "[nodes.types.x.params.p]\ntype = \"list\"\nvalue_type = \"int\"\n"},
		{"bad render", "[nodes.types.x.params.p]\ntype = \"list\"\nrender = \"inline\"\n"},
		{"bad source", "[nodes.types.x.params.p]\ntype = \"string\"\nsource = \"edge\"\n"},
		{"index on unit source", "[nodes.types.x.params.p]\ntype = \"string\"\nsource = { node_label = { index = 1 } }\n"},
		{"negative index", "[nodes.types.x.params.p]\ntype = \"list\"\nsource = { incoming_edge_label = { index = -1 } }\n"},
		{"two source keys", "[nodes.types.x.params.p]\ntype = \"list\"\nsource = { incoming_edge_label = {}, outgoing_edge_label = {} }\n"},
		{"negative len", "[nodes.types.x.params.p]\ntype = \"list\"\nlen = -1\n"},
		{"datetime table", "[format]\nroot = \"u\"\n[format.tables.sim]\nstart = 1979-05-27T07:32:00Z\n[nodes.types.x.params.p]\ntype = \"string\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTOML([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errs.Is(err, errs.ErrCodeCatalogLoad) {
				t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodeCatalogLoad)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "catalog.toml")
	if err := os.WriteFile(path, []byte(scenarioTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Types) != 2 {
		t.Errorf("len(Types) = %d, want 2", len(c.Types))
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !errs.Is(err, errs.ErrCodeCatalogLoad) {
		t.Errorf("missing file: err = %v, want %v", err, errs.ErrCodeCatalogLoad)
	}
}

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if c.Root() != DefaultRoot {
		t.Errorf("Root() = %q, want %q", c.Root(), DefaultRoot)
	}
	for _, name := range []string{"cstr", "sensor", "merge"} {
		if _, ok := c.Type(name); !ok {
			t.Errorf("default catalog lacks type %q", name)
		}
	}
	if findings := Lint(c); len(findings) != 0 {
		t.Errorf("default catalog has lint findings: %v", findings)
	}

	c2, _ := Default()
	delete(c2.Types, "cstr")
	if _, ok := c.Type("cstr"); !ok {
		t.Error("Default() returned shared state")
	}
}

func TestEmptyAndNilCatalog(t *testing.T) {
	var nilCat *Catalog
	if nilCat.Root() != DefaultRoot {
		t.Errorf("nil Root() = %q", nilCat.Root())
	}
	if _, ok := nilCat.Type("x"); ok {
		t.Error("nil catalog found a type")
	}
	e := Empty()
	if len(e.TypeNames()) != 0 || e.ExtraTables() != nil {
		t.Errorf("Empty() = %+v", e)
	}
}

func TestSortKeys(t *testing.T) {
	tests := []struct {
		name  string
		order []string
		keys  []string
		want  []string
	}{
		{"lexical without order", nil, []string{"b", "c", "a"}, []string{"a", "b", "c"}},
		{"explicit order", []string{"name", "out", "in"}, []string{"in", "out", "name"}, []string{"name", "out", "in"}},
		{"unknown keys last", []string{"name"}, []string{"zeta", "name", "alpha"}, []string{"name", "alpha", "zeta"}},
		{"empty order sorts lexically", []string{}, []string{"b", "a"}, []string{"a", "b"}},
		{"duplicate order entry keeps first", []string{"b", "a", "b"}, []string{"a", "b"}, []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &NodeTypeDef{Order: tt.order}
			got := slices.Clone(tt.keys)
			d.SortKeys(got)
			if !slices.Equal(got, tt.want) {
				t.Errorf("SortKeys(%v) = %v, want %v", tt.keys, got, tt.want)
			}
		})
	}

	var nilDef *NodeTypeDef
	keys := []string{"b", "a"}
	nilDef.SortKeys(keys)
	if !slices.Equal(keys, []string{"a", "b"}) {
		t.Errorf("nil SortKeys = %v", keys)
	}
}

func TestLint(t *testing.T) {
	doc := `
[nodes.types.x]
order = ["a", "a", "ghost"]

[nodes.types.x.params.a]
type = "string"
value_type = "string"

[nodes.types.x.params.b]
type = "float"
len = 2

[nodes.types.x.params.c]
type = "string"
source = "incoming_edge_labels"

[nodes.types.x.params.d]
type = "table"
value_type = "bool"
`
	c, err := ParseTOML([]byte(doc))
	if err != nil {
		t.Fatalf("ParseTOML: %v", err)
	}
	got := Lint(c)
	want := []string{
		`x.a: value_type is ignored for string params`,
		`x.b: len is ignored for float params`,
		`x.c: source incoming_edge_labels yields a list but param is string`,
		`x.d: table params only read value_type = "float"`,
		`x: order lists "a" twice`,
		`x: order lists undeclared param "ghost"`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lint mismatch (-want +got):\n%s", diff)
	}
}

func TestParamDefDescribe(t *testing.T) {
	vt := ValueString
	n := 1
	h := RenderScalar
	d := ParamDef{
		Kind:      ParamList,
		ValueType: &vt,
		Len:       &n,
		Render:    &h,
		Source:    &ParamSource{Kind: SourceOutgoingEdgeLabel, Index: 0},
	}
	want := "list<string>[1] as scalar ← outgoing_edge_label[0]"
	if got := d.Describe(); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}
