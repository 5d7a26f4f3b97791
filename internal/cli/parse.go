package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tuigraph/pkg/literal"
	"github.com/matzehuels/tuigraph/pkg/resolve"
	"github.com/matzehuels/tuigraph/pkg/value"
)

// parseOpts holds the flags of the parse command.
type parseOpts struct {
	typ   string
	param string
}

// parseCommand creates the parse command, which runs the literal parser the
// editor uses on one input and prints the resulting TOML literal.
func (c *CLI) parseCommand() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse VALUE",
		Short: "Parse a value as the editor would for one parameter",
		Example: `  tuigraph parse --type cstr --param pos "1 2"
  tuigraph parse --type merge --param weights "[0.5, 0.5]"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			cat := c.loadCatalog(cmd.Context())

			def, ok := cat.Type(opts.typ)
			if !ok {
				return fmt.Errorf("unknown node type %q", opts.typ)
			}
			pdef, ok := def.Param(opts.param)
			if !ok {
				return fmt.Errorf("type %s has no param %q", opts.typ, opts.param)
			}

			v, err := literal.Parse(args[0], pdef)
			if err != nil {
				printError(w, "%s", err)
				return err
			}
			lit, err := value.Literal(v)
			if err != nil {
				return err
			}
			emitted, err := value.Literal(resolve.ApplyRender(v, pdef))
			if err != nil {
				return err
			}

			printKeyValue(w, "param", pdef.Describe())
			printKeyValue(w, "kind", v.Kind().String())
			printKeyValue(w, "literal", lit)
			if emitted != lit {
				printKeyValue(w, "emitted", emitted)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.typ, "type", "t", "", "node type")
	cmd.Flags().StringVarP(&opts.param, "param", "p", "", "parameter name")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("param")
	_ = cmd.RegisterFlagCompletionFunc("type", c.completeTypeNames)
	_ = cmd.RegisterFlagCompletionFunc("param", c.completeParamNames)

	return cmd
}
