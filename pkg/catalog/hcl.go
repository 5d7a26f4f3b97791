package catalog

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	errs "github.com/matzehuels/tuigraph/pkg/errors"
	"github.com/matzehuels/tuigraph/pkg/value"
)

// hclCatalogFile is the top-level structure of an HCL catalog:
//
//	format {
//	  root   = "units"
//	  tables = { sim = { dt = 0.1 } }
//	}
//
//	type "cstr" {
//	  order = ["name", "out"]
//
//	  param "out" {
//	    type         = "list"
//	    value_type   = "string"
//	    len          = 1
//	    source       = "outgoing_edge_label"
//	    source_index = 0
//	  }
//	}
type hclCatalogFile struct {
	Format *hclFormat `hcl:"format,block"`
	Types  []*hclType `hcl:"type,block"`
}

type hclFormat struct {
	Root   string         `hcl:"root"`
	Tables hcl.Expression `hcl:"tables,optional"`
}

type hclType struct {
	Name   string      `hcl:"name,label"`
	Order  []string    `hcl:"order,optional"`
	Params []*hclParam `hcl:"param,block"`
}

type hclParam struct {
	Name        string  `hcl:"name,label"`
	Type        string  `hcl:"type"`
	ValueType   *string `hcl:"value_type,optional"`
	Len         *int    `hcl:"len,optional"`
	Source      *string `hcl:"source,optional"`
	SourceIndex *int    `hcl:"source_index,optional"`
	Render      *string `hcl:"render,optional"`
}

// ParseHCL decodes an HCL catalog. filename is used in diagnostics only.
func ParseHCL(data []byte, filename string) (*Catalog, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errs.Wrap(errs.ErrCodeCatalogLoad, diags, "parse %s", filename)
	}

	var f hclCatalogFile
	if diags := gohcl.DecodeBody(file.Body, nil, &f); diags.HasErrors() {
		return nil, errs.Wrap(errs.ErrCodeCatalogLoad, diags, "decode %s", filename)
	}

	c := &Catalog{Types: make(map[string]NodeTypeDef, len(f.Types))}

	if f.Format != nil {
		spec := &FormatSpec{Root: f.Format.Root}
		if f.Format.Tables != nil {
			v, diags := f.Format.Tables.Value(nil)
			if diags.HasErrors() {
				return nil, errs.Wrap(errs.ErrCodeCatalogLoad, diags, "format.tables")
			}
			if !v.IsNull() {
				tables, err := tablesFromCty(v)
				if err != nil {
					return nil, errs.Wrap(errs.ErrCodeCatalogLoad, err, "format.tables")
				}
				spec.Tables = tables
			}
		}
		c.Format = spec
	}

	for _, t := range f.Types {
		if _, dup := c.Types[t.Name]; dup {
			return nil, errs.New(errs.ErrCodeCatalogLoad, "type %q declared twice", t.Name)
		}
		def := NodeTypeDef{Order: t.Order, Params: make(map[string]ParamDef, len(t.Params))}
		for _, p := range t.Params {
			pd, err := p.toParamDef()
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeCatalogLoad, err, "type %q param %q", t.Name, p.Name)
			}
			def.Params[p.Name] = pd
		}
		c.Types[t.Name] = def
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *hclParam) toParamDef() (ParamDef, error) {
	var d ParamDef
	if err := d.Kind.UnmarshalText([]byte(p.Type)); err != nil {
		return d, err
	}
	if p.ValueType != nil {
		var vt ValueType
		if err := vt.UnmarshalText([]byte(*p.ValueType)); err != nil {
			return d, err
		}
		d.ValueType = &vt
	}
	d.Len = p.Len
	if p.Render != nil {
		var h RenderHint
		if err := h.UnmarshalText([]byte(*p.Render)); err != nil {
			return d, err
		}
		d.Render = &h
	}
	if p.Source != nil {
		k, err := parseSourceKind(*p.Source)
		if err != nil {
			return d, err
		}
		src := ParamSource{Kind: k}
		if p.SourceIndex != nil {
			if !k.Indexed() {
				return d, fmt.Errorf("source %s does not take an index", k)
			}
			if *p.SourceIndex < 0 {
				return d, fmt.Errorf("source_index must not be negative, got %d", *p.SourceIndex)
			}
			src.Index = *p.SourceIndex
		}
		d.Source = &src
	} else if p.SourceIndex != nil {
		return d, fmt.Errorf("source_index set without source")
	}
	return d, nil
}

func tablesFromCty(v cty.Value) (map[string]value.Value, error) {
	t := v.Type()
	if !t.IsObjectType() && !t.IsMapType() {
		return nil, fmt.Errorf("expected an object, got %s", t.FriendlyName())
	}
	conv, err := FromCty(v)
	if err != nil {
		return nil, err
	}
	return conv.(value.Table), nil
}

// FromCty converts a known, non-null cty value into a [value.Value].
// Numbers become floats; lists, tuples and sets become lists; maps and
// objects become tables.
func FromCty(v cty.Value) (value.Value, error) {
	if v.IsNull() {
		return nil, fmt.Errorf("null value")
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("unknown value")
	}
	t := v.Type()
	switch {
	case t.Equals(cty.String):
		return value.String(v.AsString()), nil
	case t.Equals(cty.Number):
		f, _ := v.AsBigFloat().Float64()
		return value.Float(f), nil
	case t.Equals(cty.Bool):
		return value.Bool(v.True()), nil
	case t.IsListType() || t.IsTupleType() || t.IsSetType():
		out := value.List{}
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			e, err := FromCty(ev)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", len(out), err)
			}
			out = append(out, e)
		}
		return out, nil
	case t.IsMapType() || t.IsObjectType():
		out := value.Table{}
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			e, err := FromCty(ev)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k.AsString(), err)
			}
			out[k.AsString()] = e
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %s", t.FriendlyName())
}
