package catalog

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/tuigraph/pkg/value"
)

// DefaultRoot is the root table name used when a catalog has no format section.
const DefaultRoot = "units"

// FormatSpec controls the outer shape of the emitted document.
type FormatSpec struct {
	// Root names the table that holds one array of records per node type.
	Root string
	// Tables are extra top-level tables emitted verbatim, independent of the graph.
	Tables map[string]value.Value
}

// NodeTypeDef declares the parameters of one node type.
type NodeTypeDef struct {
	// Order fixes the key order of emitted records. Keys missing from Order
	// sort after the listed ones, lexically among themselves. When Order is
	// nil all keys sort lexically.
	Order  []string
	Params map[string]ParamDef
}

// Param looks up a parameter definition by name.
func (d *NodeTypeDef) Param(name string) (ParamDef, bool) {
	p, ok := d.Params[name]
	return p, ok
}

// ParamNames returns the declared parameter names in emission order.
func (d *NodeTypeDef) ParamNames() []string {
	names := slices.Collect(maps.Keys(d.Params))
	d.SortKeys(names)
	return names
}

// SortKeys sorts keys in place by their position in Order, placing keys not
// listed in Order last in lexical order. A nil receiver sorts lexically.
func (d *NodeTypeDef) SortKeys(keys []string) {
	if d == nil || d.Order == nil {
		slices.Sort(keys)
		return
	}
	pos := make(map[string]int, len(d.Order))
	for i, k := range d.Order {
		if _, seen := pos[k]; !seen {
			pos[k] = i
		}
	}
	rank := func(k string) int {
		if i, ok := pos[k]; ok {
			return i
		}
		return len(d.Order)
	}
	slices.SortStableFunc(keys, func(a, b string) int {
		if c := cmp.Compare(rank(a), rank(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
}

// Catalog is the loaded schema. It is immutable after construction.
type Catalog struct {
	Format *FormatSpec
	Types  map[string]NodeTypeDef
}

// Empty returns a catalog that declares no types. Every node is then treated
// as an unknown type and emitted with its explicit values only.
func Empty() *Catalog {
	return &Catalog{Types: map[string]NodeTypeDef{}}
}

// Root returns the document root name, falling back to [DefaultRoot].
func (c *Catalog) Root() string {
	if c == nil || c.Format == nil || c.Format.Root == "" {
		return DefaultRoot
	}
	return c.Format.Root
}

// Type looks up a node type definition by name.
func (c *Catalog) Type(name string) (*NodeTypeDef, bool) {
	if c == nil {
		return nil, false
	}
	d, ok := c.Types[name]
	if !ok {
		return nil, false
	}
	return &d, true
}

// TypeNames returns all declared type names in lexical order.
func (c *Catalog) TypeNames() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.Types))
}

// ExtraTables returns the verbatim top-level tables, or nil.
func (c *Catalog) ExtraTables() map[string]value.Value {
	if c == nil || c.Format == nil {
		return nil
	}
	return c.Format.Tables
}
