package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tuigraph/pkg/catalog"
	"github.com/matzehuels/tuigraph/pkg/document"
	errs "github.com/matzehuels/tuigraph/pkg/errors"
	"github.com/matzehuels/tuigraph/pkg/graph"
	"github.com/matzehuels/tuigraph/pkg/observability"
)

// stdoutPath selects standard output for --output.
const stdoutPath = "-"

// exportOpts holds the flags of the export command.
type exportOpts struct {
	graph  string
	output string
}

// exportCommand creates the export command, the non-interactive counterpart
// of the editor's write key.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{output: defaultOutput}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the TOML document for a graph file",
		Long: `Export assembles the document for a graph file against the catalog and
writes it atomically. Use --output - to print it instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.graph, "graph", "g", "", "graph file (.toml or .json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output file, or - for stdout")
	_ = cmd.MarkFlagRequired("graph")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, w io.Writer, opts exportOpts) error {
	logger := loggerFromContext(ctx)
	cat := c.loadCatalog(ctx)

	g, err := readGraph(opts.graph)
	if err != nil {
		return fmt.Errorf("read graph: %w", err)
	}
	logger.Debug("loaded graph", "path", opts.graph, "nodes", len(g.Nodes), "edges", len(g.Edges))
	if d := len(g.DanglingEdges()); d > 0 {
		logger.Warn("graph has dangling edges", "count", d)
	}

	if opts.output == stdoutPath {
		text, err := document.Render(g, cat)
		if err != nil {
			return fmt.Errorf("render document: %w", err)
		}
		_, err = io.WriteString(w, text)
		return err
	}

	prog := newProgress(logger)
	records, err := exportDocument(ctx, opts.output, g, cat)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	prog.done(fmt.Sprintf("Wrote %d records", records))
	printSuccess(w, "Exported document")
	printFile(w, opts.output)
	return nil
}

// exportDocument writes the document for g to path and reports the export
// through the observability hooks. It returns the number of records written.
func exportDocument(ctx context.Context, path string, g *graph.Graph, cat *catalog.Catalog) (int, error) {
	hooks := observability.Export()
	hooks.OnExportStart(ctx, path, len(g.Nodes))
	start := time.Now()

	err := document.Write(path, g, cat)
	records := 0
	if err == nil {
		records = document.Assemble(g, cat).Len()
	}
	hooks.OnExportComplete(ctx, path, records, time.Since(start), err)
	return records, err
}

// readGraph reads a graph file, TOML unless the name ends in .json.
func readGraph(path string) (*graph.Graph, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return graph.ReadGraphFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "graph %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeIO, err, "read %s", path)
	}
	g := graph.New()
	if err := json.Unmarshal(data, g); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidGraph, err, "decode graph %s", path)
	}
	return g, nil
}

// readGraphOrEmpty is readGraph, except that an empty or missing path yields
// an empty graph so the editor can create new files.
func readGraphOrEmpty(path string) (*graph.Graph, error) {
	if path == "" {
		return graph.New(), nil
	}
	g, err := readGraph(path)
	if errs.Is(err, errs.ErrCodeFileNotFound) {
		return graph.New(), nil
	}
	return g, err
}

// writeGraph saves g to path in the format readGraph expects.
func writeGraph(path string, g *graph.Graph) error {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return graph.WriteGraphFile(g, path)
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "encode graph")
	}
	return graph.WriteFileAtomic(path, append(data, '\n'))
}
