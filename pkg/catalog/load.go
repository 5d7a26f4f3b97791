package catalog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/tuigraph/pkg/errors"
	"github.com/matzehuels/tuigraph/pkg/value"
)

// catalogFile mirrors the TOML layout of a catalog file.
type catalogFile struct {
	Format *formatFile `toml:"format"`
	Nodes  *struct {
		Types map[string]*typeFile `toml:"types"`
	} `toml:"nodes"`
}

type formatFile struct {
	Root   *string        `toml:"root"`
	Tables map[string]any `toml:"tables"`
}

type typeFile struct {
	Order  []string            `toml:"order"`
	Params map[string]ParamDef `toml:"params"`
}

// Load reads a catalog file, choosing the decoder from the file extension:
// ".hcl" files are decoded with [ParseHCL], everything else as TOML.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeCatalogLoad, err, "catalog %s not found", path)
		}
		return nil, errs.Wrap(errs.ErrCodeCatalogLoad, err, "read %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return ParseHCL(data, path)
	}
	return ParseTOML(data)
}

// ParseTOML decodes a TOML catalog.
func ParseTOML(data []byte) (*Catalog, error) {
	var f catalogFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, errs.Wrap(errs.ErrCodeCatalogLoad, err, "decode catalog")
	}
	if f.Nodes == nil {
		return nil, errs.New(errs.ErrCodeCatalogLoad, "missing [nodes] section")
	}

	c := &Catalog{Types: make(map[string]NodeTypeDef, len(f.Nodes.Types))}

	if f.Format != nil {
		if f.Format.Root == nil {
			return nil, errs.New(errs.ErrCodeCatalogLoad, "format: missing root")
		}
		tables, err := value.MapFromAny(f.Format.Tables)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeCatalogLoad, err, "format.tables")
		}
		c.Format = &FormatSpec{Root: *f.Format.Root, Tables: tables}
	}

	for name, t := range f.Nodes.Types {
		if t == nil || t.Params == nil {
			return nil, errs.New(errs.ErrCodeCatalogLoad, "type %q: missing params", name)
		}
		c.Types[name] = NodeTypeDef{Order: t.Order, Params: t.Params}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// validate checks invariants shared by all decoders.
func (c *Catalog) validate() error {
	if c.Format != nil {
		if err := errs.ValidateName(c.Format.Root); err != nil {
			return errs.Wrap(errs.ErrCodeCatalogLoad, err, "format.root")
		}
	}
	for name, t := range c.Types {
		if err := errs.ValidateName(name); err != nil {
			return errs.Wrap(errs.ErrCodeCatalogLoad, err, "type %q", name)
		}
		for pname, p := range t.Params {
			if err := errs.ValidateName(pname); err != nil {
				return errs.Wrap(errs.ErrCodeCatalogLoad, err, "type %q param", name)
			}
			if err := p.validate(); err != nil {
				return errs.Wrap(errs.ErrCodeCatalogLoad, err, "type %q param %q", name, pname)
			}
		}
	}
	return nil
}
