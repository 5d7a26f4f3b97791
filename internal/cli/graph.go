package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tuigraph/pkg/catalog"
	"github.com/matzehuels/tuigraph/pkg/graph"
)

// graphCommand creates the graph command group.
func (c *CLI) graphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Inspect graph files",
	}

	cmd.AddCommand(c.graphShowCommand())

	return cmd
}

// graphShowCommand creates the "graph show" subcommand.
func (c *CLI) graphShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Print the nodes and edges of a graph file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0])
			if err != nil {
				return err
			}
			showGraph(cmd.OutOrStdout(), g, c.loadCatalog(cmd.Context()))
			return nil
		},
	}
}

// showGraph prints node and edge tables followed by a summary line. Nodes
// of types the catalog does not declare and edges with a missing endpoint
// are flagged.
func showGraph(w io.Writer, g *graph.Graph, cat *catalog.Catalog) {
	if len(g.Nodes) > 0 {
		rows := [][]string{}
		for _, n := range g.SortedNodes() {
			typ := n.Type
			if _, ok := cat.Type(n.Type); !ok {
				typ = StyleWarning.Render(typ + " (unknown)")
			}
			rows = append(rows, []string{
				strconv.FormatUint(n.ID, 10),
				typ,
				n.Label,
				strconv.Itoa(len(n.Values)),
			})
		}
		fmt.Fprintln(w, renderTable([]string{"ID", "Type", "Label", "Values"}, rows))
	}

	if len(g.Edges) > 0 {
		rows := [][]string{}
		for _, e := range g.SortedEdges() {
			rows = append(rows, []string{
				strconv.FormatUint(e.ID, 10),
				endpoint(g, e.From),
				endpoint(g, e.To),
				e.Label,
			})
		}
		fmt.Fprintln(w, renderTable([]string{"ID", "From", "To", "Label"}, rows))
	}

	printStats(w, len(g.Nodes), len(g.Edges), len(g.DanglingEdges()))
}

func endpoint(g *graph.Graph, id uint64) string {
	n, ok := g.Node(id)
	if !ok {
		return StyleWarning.Render(fmt.Sprintf("#%d (missing)", id))
	}
	if n.Label == "" {
		return fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("#%d %s", id, n.Label)
}
