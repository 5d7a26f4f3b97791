// Package nodelink renders an edited graph as a node-link diagram.
//
// [ToDOT] produces Graphviz DOT source with one rounded box per node and one
// labeled arrow per edge. Edges whose endpoint does not exist are drawn to a
// dashed placeholder node so that dangling connections stay visible.
//
//	dot := nodelink.ToDOT(g, cat, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// With Detailed set, node labels include the values the node would emit,
// resolved against the catalog exactly as the document writer does.
//
// Rendering runs Graphviz in-process via [github.com/goccy/go-graphviz].
package nodelink
