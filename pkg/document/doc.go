// Package document assembles a graph into the output document and renders it
// as TOML.
//
// [Assemble] visits nodes in ascending id order. A node whose type is
// declared in the catalog gets every declared parameter resolved and shaped
// by its render hint. A node of an unknown type contributes exactly its
// explicit values. Records are grouped by type name.
//
// [Emit] renders the document deterministically:
//
//	[sim]            # catalog format.tables, verbatim
//	dt = 0.1
//
//	[units]
//
//	[[units.cstr]]
//	name = "lane1.t1"
//	out = "lane1_t1_out"
//
// Type names are sorted, records keep assembly order, and keys follow the
// type's order list with the remaining keys sorted after it.
package document
