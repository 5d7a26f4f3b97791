package document

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tuigraph/pkg/catalog"
	errs "github.com/matzehuels/tuigraph/pkg/errors"
	"github.com/matzehuels/tuigraph/pkg/graph"
	"github.com/matzehuels/tuigraph/pkg/value"
)

// Emit renders doc as TOML. The catalog supplies the extra top-level tables
// and per-type key order; nil means none. Values with no TOML form fail with
// a RENDER_ERROR, as does a nil document or an empty root name.
func Emit(doc *Document, cat *catalog.Catalog) (string, error) {
	if doc == nil {
		return "", errs.New(errs.ErrCodeRender, "no document")
	}
	if doc.Root == "" {
		return "", errs.New(errs.ErrCodeRender, "document root name is empty")
	}
	var b strings.Builder

	if extra := cat.ExtraTables(); len(extra) > 0 {
		if _, clash := extra[doc.Root]; clash {
			return "", errs.New(errs.ErrCodeRender, "format table %q collides with the document root", doc.Root)
		}
		text, err := encodeTables(extra)
		if err != nil {
			return "", err
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	root, err := value.Key(doc.Root)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeRender, err, "root name %q", doc.Root)
	}
	b.WriteString("[" + root + "]\n")

	for _, typeName := range doc.TypeNames() {
		key, err := value.Key(typeName)
		if err != nil {
			return "", errs.Wrap(errs.ErrCodeRender, err, "type name %q", typeName)
		}
		header := "[[" + root + "." + key + "]]\n"

		var def *catalog.NodeTypeDef
		if d, ok := cat.Type(typeName); ok {
			def = d
		}
		for _, rec := range doc.Types[typeName] {
			b.WriteString(header)
			if err := writeRecord(&b, rec, def); err != nil {
				return "", errs.Wrap(errs.ErrCodeRender, err, "%s node %d", typeName, rec.NodeID)
			}
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func writeRecord(b *strings.Builder, rec Record, def *catalog.NodeTypeDef) error {
	keys := slices.Collect(maps.Keys(rec.Values))
	def.SortKeys(keys)
	for _, k := range keys {
		key, err := value.Key(k)
		if err != nil {
			return err
		}
		lit, err := value.Literal(rec.Values[k])
		if err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		b.WriteString(key + " = " + lit + "\n")
	}
	return nil
}

// encodeTables renders the verbatim format tables. The encoder sorts keys
// and places scalar keys before sub-tables.
func encodeTables(tables map[string]value.Value) (string, error) {
	for name, v := range tables {
		if v == nil {
			return "", errs.New(errs.ErrCodeRender, "format table %q has no value", name)
		}
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(value.MapToAny(tables)); err != nil {
		return "", errs.Wrap(errs.ErrCodeRender, err, "encode format tables")
	}
	return buf.String(), nil
}

// Render is Assemble followed by Emit.
func Render(g *graph.Graph, cat *catalog.Catalog) (string, error) {
	return Emit(Assemble(g, cat), cat)
}

// Write renders g and writes it to path atomically. On failure no partial
// file is left behind and an existing file at path is untouched.
func Write(path string, g *graph.Graph, cat *catalog.Catalog) error {
	if err := errs.ValidatePath(path); err != nil {
		return err
	}
	text, err := Render(g, cat)
	if err != nil {
		return err
	}
	return graph.WriteFileAtomic(path, []byte(text))
}
