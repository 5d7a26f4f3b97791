// Package catalog models the schema that drives document assembly.
//
// A [Catalog] maps node type names to [NodeTypeDef]s. Each type declares its
// parameters: the value kind ([ParamType]), list element type ([ValueType])
// and exact length, an optional derivation rule ([ParamSource]) used when the
// user left a parameter unset, and an optional [RenderHint] that reshapes the
// value at emission time. An optional [FormatSpec] names the root table of the
// emitted document and carries extra top-level tables that are copied
// verbatim.
//
// # File Formats
//
// Catalogs are usually TOML:
//
//	[format]
//	root = "units"
//
//	[nodes.types.cstr]
//	order = ["name", "out"]
//
//	[nodes.types.cstr.params.name]
//	type = "string"
//	source = "node_label"
//
//	[nodes.types.cstr.params.out]
//	type = "list"
//	value_type = "string"
//	len = 1
//	source = { outgoing_edge_label = { index = 0 } }
//
// The same schema can be written in HCL with one `type` block per node type
// and one `param` block per parameter; see [ParseHCL].
//
// # Defaults
//
// [Default] returns the catalog bundled with the program. Callers fall back
// to it when a user-supplied catalog fails to load, and thread it through
// explicitly; there is no package-level mutable catalog.
//
// A Catalog is immutable after loading and safe for concurrent reads.
package catalog
