package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tuigraph/pkg/catalog"
	"github.com/matzehuels/tuigraph/pkg/value"
)

// catalogCommand creates the catalog command group.
func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the node type catalog",
	}

	cmd.AddCommand(c.catalogShowCommand())
	cmd.AddCommand(c.catalogCheckCommand())

	return cmd
}

// catalogShowCommand creates the "catalog show" subcommand.
func (c *CLI) catalogShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [type]",
		Short: "List node types and their parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := c.loadCatalog(cmd.Context())
			names := cat.TypeNames()
			if len(args) == 1 {
				if _, ok := cat.Type(args[0]); !ok {
					return fmt.Errorf("unknown node type %q", args[0])
				}
				names = args
			}
			showCatalog(cmd.OutOrStdout(), cat, names)
			return nil
		},
	}
}

func showCatalog(w io.Writer, cat *catalog.Catalog, names []string) {
	printKeyValue(w, "root", cat.Root())
	for _, name := range sortedTables(cat) {
		lit, err := value.Literal(cat.ExtraTables()[name])
		if err != nil {
			lit = StyleError.Render(err.Error())
		}
		printKeyValue(w, "["+name+"]", lit)
	}
	if len(names) == 0 {
		printInfo(w, "No node types declared")
		return
	}

	rows := [][]string{}
	for _, name := range names {
		def, _ := cat.Type(name)
		params := def.ParamNames()
		if len(params) == 0 {
			rows = append(rows, []string{name, "", StyleDim.Render("no params")})
			continue
		}
		for i, p := range params {
			typ := ""
			if i == 0 {
				typ = name
			}
			pdef, _ := def.Param(p)
			rows = append(rows, []string{typ, p, pdef.Describe()})
		}
	}
	fmt.Fprintln(w, renderTable([]string{"Type", "Param", "Definition"}, rows))
}

func sortedTables(cat *catalog.Catalog) []string {
	return slices.Sorted(maps.Keys(cat.ExtraTables()))
}

// catalogCheckCommand creates the "catalog check" subcommand. Unlike other
// commands it does not fall back to the built-in catalog: a load error is the
// result being asked for.
func (c *CLI) catalogCheckCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a catalog file and report suspicious definitions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			path := c.catalogPath
			if len(args) == 1 {
				path = args[0]
			}

			var (
				cat *catalog.Catalog
				err error
			)
			if path == "" {
				path = "(built-in)"
				cat, err = catalog.Default()
			} else {
				cat, err = catalog.Load(path)
			}
			if err != nil {
				printError(w, "%s", path)
				return err
			}

			findings := catalog.Lint(cat)
			if len(findings) == 0 {
				printSuccess(w, "%s: %d types, no findings", path, len(cat.Types))
				return nil
			}
			printWarning(w, "%s: %d findings", path, len(findings))
			for _, f := range findings {
				printDetail(w, "%s", f)
			}
			if strict {
				return fmt.Errorf("catalog check: %s", strings.Join(findings, "; "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when lint findings are reported")
	return cmd
}
