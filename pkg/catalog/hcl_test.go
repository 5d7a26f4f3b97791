package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zclconf/go-cty/cty"

	errs "github.com/matzehuels/tuigraph/pkg/errors"
	"github.com/matzehuels/tuigraph/pkg/value"
)

const scenarioHCL = `
format {
  root   = "plant"
  tables = {
    sim = { dt = 0.5, tags = ["a", "b"], live = true }
  }
}

type "cstr" {
  order = ["name", "out"]

  param "name" {
    type   = "string"
    source = "node_label"
  }

  param "out" {
    type         = "list"
    value_type   = "string"
    len          = 1
    source       = "outgoing_edge_label"
    source_index = 0
  }
}

type "sensor" {
  param "in" {
    type         = "list"
    value_type   = "string"
    len          = 1
    source       = "incoming_edge_label"
    source_index = 1
    render       = "scalar"
  }
}
`

func TestParseHCL(t *testing.T) {
	c, err := ParseHCL([]byte(scenarioHCL), "catalog.hcl")
	if err != nil {
		t.Fatalf("ParseHCL: %v", err)
	}
	if c.Root() != "plant" {
		t.Errorf("Root() = %q, want plant", c.Root())
	}

	wantTables := map[string]value.Value{
		"sim": value.Table{
			"dt":   value.Float(0.5),
			"tags": value.List{value.String("a"), value.String("b")},
			"live": value.Bool(true),
		},
	}
	if diff := cmp.Diff(wantTables, c.ExtraTables()); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}

	cstr, ok := c.Type("cstr")
	if !ok {
		t.Fatal("cstr not found")
	}
	if diff := cmp.Diff([]string{"name", "out"}, cstr.Order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	out := cstr.Params["out"]
	if out.Kind != ParamList || out.ElemType() != ValueString || out.Len == nil || *out.Len != 1 {
		t.Errorf("out = %s", out.Describe())
	}

	sensor, _ := c.Type("sensor")
	in := sensor.Params["in"]
	if in.Source == nil || *in.Source != (ParamSource{Kind: SourceIncomingEdgeLabel, Index: 1}) {
		t.Errorf("in.Source = %v", in.Source)
	}
	if in.Render == nil || *in.Render != RenderScalar {
		t.Errorf("in.Render = %v", in.Render)
	}
}

func TestParseHCLMatchesTOML(t *testing.T) {
	fromHCL, err := ParseHCL([]byte(scenarioHCL), "catalog.hcl")
	if err != nil {
		t.Fatal(err)
	}
	fromTOML, err := ParseTOML([]byte(scenarioTOML))
	if err != nil {
		t.Fatal(err)
	}
	hc, _ := fromHCL.Type("cstr")
	tc, _ := fromTOML.Type("cstr")
	if diff := cmp.Diff(tc.Params, hc.Params); diff != "" {
		t.Errorf("cstr params differ between formats (-toml +hcl):\n%s", diff)
	}
}

func TestParseHCLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", `type "x" {`},
		{"missing type attr", "type \"x\" {\n  param \"p\" {\n    len = 1\n  }\n}"},
		{"bad kind", "type \"x\" {\n  param \"p\" {\n    type = \"int\"\n  }\n}"},
		{"bad source", "type \"x\" {\n  param \"p\" {\n    type = \"string\"\n    source = \"label\"\n  }\n}"},
		{"index without source", "type \"x\" {\n  param \"p\" {\n    type = \"list\"\n    source_index = 1\n  }\n}"},
		{"index on unit source", "type \"x\" {\n  param \"p\" {\n    type = \"string\"\n    source = \"node_label\"\n    source_index = 1\n  }\n}"},
		{"duplicate type", "type \"x\" {\n}\ntype \"x\" {\n}"},
		{"scalar tables", "format {\n  root = \"u\"\n  tables = 3\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHCL([]byte(tt.doc), "bad.hcl")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errs.Is(err, errs.ErrCodeCatalogLoad) {
				t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodeCatalogLoad)
			}
		})
	}
}

func TestLoadHCLByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.hcl")
	if err := os.WriteFile(path, []byte(scenarioHCL), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := c.Type("sensor"); !ok {
		t.Error("sensor not loaded")
	}
}

func TestFromCty(t *testing.T) {
	tests := []struct {
		name    string
		in      cty.Value
		want    value.Value
		wantErr bool
	}{
		{"string", cty.StringVal("a"), value.String("a"), false},
		{"number", cty.NumberIntVal(3), value.Float(3), false},
		{"bool", cty.True, value.Bool(true), false},
		{"list", cty.ListVal([]cty.Value{cty.StringVal("a")}), value.List{value.String("a")}, false},
		{"tuple", cty.TupleVal([]cty.Value{cty.NumberFloatVal(1.5), cty.False}), value.List{value.Float(1.5), value.Bool(false)}, false},
		{"map", cty.MapVal(map[string]cty.Value{"k": cty.StringVal("v")}), value.Table{"k": value.String("v")}, false},
		{"object", cty.ObjectVal(map[string]cty.Value{"x": cty.NumberIntVal(1)}), value.Table{"x": value.Float(1)}, false},
		{"null", cty.NullVal(cty.String), nil, true},
		{"unknown", cty.UnknownVal(cty.String), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromCty(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromCty() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !value.Equal(got, tt.want) {
				t.Errorf("FromCty() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
