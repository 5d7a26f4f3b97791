// Package graph models the graph a user edits: typed node instances and
// labeled, directed edges.
//
// The model is plain data. A [Graph] only supports appending nodes and edges,
// id allocation and adjacency lookup; it never computes values. Value
// derivation lives in pkg/resolve and document assembly in pkg/document.
//
// # Identifiers
//
// Node ids are positive and allocated as max(existing)+1, so they are never
// reused within a graph. Edge ids are allocated as count(edges)+1. Edges may
// reference node ids that do not exist; lookups simply find no match.
//
// # Serialization
//
// Graphs round-trip through TOML, the format used for saved editing sessions:
//
//	[[nodes]]
//	id = 1
//	type = "cstr"
//	label = "lane1.t1"
//
//	[nodes.values]
//	pos = { x = 1.0, y = 2.0 }
//
//	[[edges]]
//	id = 1
//	from = 1
//	to = 2
//	label = "lane1_t1_out"
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("session.toml")  // File → Graph
//	graph.WriteGraphFile(g, "session.toml")      // Graph → File
//	data, _ := graph.MarshalGraph(g)             // Graph → []byte
//
// [Graph], [NodeInstance] and [Edge] also implement JSON marshaling for the
// HTTP API.
package graph
