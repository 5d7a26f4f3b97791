package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// completionTimeout bounds store lookups made while the shell waits.
const completionTimeout = 2 * time.Second

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand prints a shell completion script. Besides commands and
// flags, the scripts complete session ids, catalog type names and the
// parameters of the type given with --type.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion SHELL",
		Short: "Print a shell completion script",
		Long: fmt.Sprintf(`Print the completion script for SHELL (%s).

Load it for the current shell, for example:

  source <(%[2]s completion bash)
  %[2]s completion fish | source

or write it to your shell's completion directory to load it every time.
Session ids come from the configured session store and type names from
--catalog.`, strings.Join(completionShells, ", "), appName),
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, w := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(w)
			}
			return root.GenBashCompletionV2(w, true)
		},
	}
}

// completeSessionIDs offers saved session ids, described by session name.
// ids already on the command line are skipped, so "session delete" can
// complete several in a row.
func (c *CLI) completeSessionIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	ctx, cancel := context.WithTimeout(completionContext(cmd), completionTimeout)
	defer cancel()

	store, err := c.openStore(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer store.Close()
	sums, err := store.List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	taken := make(map[string]bool, len(args))
	for _, a := range args {
		taken[a] = true
	}
	var out []string
	for _, s := range sums {
		if taken[s.ID] || !strings.HasPrefix(s.ID, toComplete) {
			continue
		}
		out = append(out, s.ID+"\t"+s.Name)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeTypeNames offers the catalog's node types.
func (c *CLI) completeTypeNames(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cat := c.loadCatalog(completionContext(cmd))
	var out []string
	for _, name := range cat.TypeNames() {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeParamNames offers the parameters of the type named by --type, with
// their descriptions.
func (c *CLI) completeParamNames(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	typ, _ := cmd.Flags().GetString("type")
	def, ok := c.loadCatalog(completionContext(cmd)).Type(typ)
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, name := range def.ParamNames() {
		if !strings.HasPrefix(name, toComplete) {
			continue
		}
		pdef, _ := def.Param(name)
		out = append(out, name+"\t"+pdef.Describe())
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completionContext returns the command context, which cobra leaves unset
// for some completion requests.
func completionContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
