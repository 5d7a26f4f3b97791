package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tuigraph/pkg/catalog"
	"github.com/matzehuels/tuigraph/pkg/document"
	"github.com/matzehuels/tuigraph/pkg/graph"
	"github.com/matzehuels/tuigraph/pkg/value"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the node's resolved parameter values to its label.
	Detailed bool
}

// ToDOT converts g to Graphviz DOT. Nodes and edges are written in id order,
// so the output is stable for a given graph.
func ToDOT(g *graph.Graph, cat *catalog.Catalog, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("\n")

	var records map[uint64]document.Record
	if opts.Detailed {
		records = recordsByNode(document.Assemble(g, cat))
	}

	for _, n := range g.SortedNodes() {
		label := fmtLabel(n, cat, records[n.ID], opts.Detailed)
		fmt.Fprintf(&buf, "  %s [label=%q];\n", nodeID(n.ID), label)
	}

	missing := map[uint64]bool{}
	for _, e := range g.DanglingEdges() {
		for _, id := range []uint64{e.From, e.To} {
			if _, ok := g.Node(id); !ok && !missing[id] {
				missing[id] = true
				fmt.Fprintf(&buf, "  %s [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n",
					nodeID(id), fmt.Sprintf("#%d (missing)", id))
			}
		}
	}

	buf.WriteString("\n")
	for _, e := range g.SortedEdges() {
		fmt.Fprintf(&buf, "  %s -> %s [label=%q];\n", nodeID(e.From), nodeID(e.To), e.Label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id uint64) string {
	return "n" + strconv.FormatUint(id, 10)
}

func fmtLabel(n *graph.NodeInstance, cat *catalog.Catalog, rec document.Record, detailed bool) string {
	head := fmt.Sprintf("#%d %s", n.ID, n.Label)
	typ := n.Type
	if _, ok := cat.Type(n.Type); !ok {
		typ += " (unknown)"
	}
	if !detailed {
		return head + "\n" + typ
	}

	lines := []string{head, typ}
	def, _ := cat.Type(n.Type)
	keys := value.Table(rec.Values).Keys()
	def.SortKeys(keys)
	for _, k := range keys {
		lit, err := value.Literal(rec.Values[k])
		if err != nil {
			lit = "?"
		}
		lines = append(lines, k+" = "+lit)
	}
	return strings.Join(lines, "\n")
}

func recordsByNode(doc *document.Document) map[uint64]document.Record {
	out := make(map[uint64]document.Record, doc.Len())
	for _, recs := range doc.Types {
		for _, r := range recs {
			out[r.NodeID] = r
		}
	}
	return out
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

// RenderPNG renders DOT source to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg tag with one whose width
// and height match the viewBox, so the image scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
