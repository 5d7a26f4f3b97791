// Package pkg provides the core libraries for tuigraph, a catalog-driven
// TOML document builder.
//
// # Overview
//
// A catalog declares node types and their parameters. A graph holds node
// instances of those types, joined by labeled edges. Parameters that are not
// set explicitly on a node are derived from the labels of its incoming edges,
// and the whole graph is emitted as one deterministic TOML document.
//
// # Architecture
//
// The typical data flow:
//
//	Catalog (TOML or HCL)      Graph file / editor / API
//	         ↓                          ↓
//	    [catalog] package         [graph] package
//	         └──────────┬───────────────┘
//	                    ↓
//	    [literal] package (parse user-typed values)
//	                    ↓
//	    [resolve] package (explicit, derived and default values)
//	                    ↓
//	    [document] package (assemble records, emit TOML)
//
// # Quick Start
//
//	cat, _ := catalog.Load("catalog.toml")
//	g, _ := graph.ReadGraphFile("pipeline.toml")
//
//	out, err := document.Render(g, cat)
//	if err != nil {
//	    return err
//	}
//	fmt.Print(out)
//
// # Main Packages
//
//   - [value]: the sealed value union shared by every layer
//   - [catalog]: node type definitions, loaded from TOML or HCL
//   - [literal]: parsing and formatting of literal text
//   - [graph]: node instances, edges and their TOML/JSON serialization
//   - [resolve]: per-parameter value resolution
//   - [document]: document assembly and TOML emission
//   - [nodelink]: DOT, SVG and PNG previews of a graph
//   - [session]: saved editing sessions (file, Redis, MongoDB)
//   - [cache]: rendered preview cache
//   - [errors]: coded errors
//   - [observability]: hooks for exports, session operations and HTTP
//   - [buildinfo]: version information
package pkg
