package catalog

import _ "embed"

//go:embed default.toml
var defaultCatalog []byte

// Default parses the catalog bundled with the program. Each call returns a
// fresh Catalog.
func Default() (*Catalog, error) {
	return ParseTOML(defaultCatalog)
}

// DefaultOrEmpty returns [Default], or [Empty] together with the error if the
// bundled catalog fails to parse.
func DefaultOrEmpty() (*Catalog, error) {
	c, err := Default()
	if err != nil {
		return Empty(), err
	}
	return c, nil
}
