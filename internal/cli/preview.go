package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tuigraph/pkg/cache"
	"github.com/matzehuels/tuigraph/pkg/catalog"
	"github.com/matzehuels/tuigraph/pkg/graph"
	"github.com/matzehuels/tuigraph/pkg/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// previewOpts holds the flags of the preview command.
type previewOpts struct {
	graph    string
	format   string
	output   string
	detailed bool
	noCache  bool
}

// previewCommand creates the preview command, which draws the edited graph
// as a node-link diagram.
func (c *CLI) previewCommand() *cobra.Command {
	opts := previewOpts{format: formatDOT}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a graph as a DOT, SVG or PNG diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case formatDOT, formatSVG, formatPNG:
			default:
				return fmt.Errorf("invalid format %q: must be dot, svg or png", opts.format)
			}
			return c.runPreview(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.graph, "graph", "g", "", "graph file (.toml or .json)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot (default), svg, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "list resolved parameter values in each node")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "render even when a cached preview exists")
	_ = cmd.MarkFlagRequired("graph")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, w io.Writer, opts previewOpts) error {
	logger := loggerFromContext(ctx)
	cat := c.loadCatalog(ctx)

	g, err := readGraph(opts.graph)
	if err != nil {
		return fmt.Errorf("read graph: %w", err)
	}

	var spin *Spinner
	if opts.output != "" && opts.format != formatDOT {
		spin = newSpinner(ctx, w, "Rendering "+opts.format+"...")
		spin.Start()
	}
	data, err := renderPreview(ctx, g, cat, opts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}

	if opts.output == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	logger.Debug("wrote preview", "path", opts.output, "format", opts.format, "bytes", len(data))
	printSuccess(w, "Rendered %s", opts.format)
	printFile(w, opts.output)
	return nil
}

// renderPreview returns DOT text as is and renders SVG and PNG through the
// preview cache.
func renderPreview(ctx context.Context, g *graph.Graph, cat *catalog.Catalog, opts previewOpts) ([]byte, error) {
	dot := nodelink.ToDOT(g, cat, nodelink.Options{Detailed: opts.detailed})
	if opts.format == formatDOT {
		return []byte(dot), nil
	}

	renders := openRenderCache(opts.noCache)
	defer renders.Close()
	return cache.GetOrRender(ctx, renders, cache.RenderKey(opts.format, dot), renderTTL, func() ([]byte, error) {
		loggerFromContext(ctx).Debug("rendering preview", "format", opts.format)
		if opts.format == formatPNG {
			return nodelink.RenderPNG(ctx, dot)
		}
		return nodelink.RenderSVG(ctx, dot)
	})
}
