// Package resolve computes the effective value of a node parameter.
//
// A parameter's value comes from the first of:
//
//  1. an explicit value stored on the node,
//  2. the parameter's derivation source, read from the node's label or the
//     labels of its incident edges,
//  3. nothing: an absent value is not an error and the key is simply omitted
//     from the output.
//
// Edge-derived lists are ordered by edge id, so the result is independent of
// the order edges were stored in. Edges whose other endpoint does not exist
// still contribute their label. Resolution never mutates the graph.
//
// [ApplyRender] then shapes the resolved value for output according to the
// parameter's render hint.
package resolve
