package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tuigraph/pkg/session"
)

// sessionCommand creates the session command group.
func (c *CLI) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage saved editor sessions",
		Long: `Sessions are stored in files under ~/.config/tuigraph/sessions by default,
or in Redis (--redis-addr) or MongoDB (--mongo-uri).`,
	}

	cmd.AddCommand(c.sessionListCommand())
	cmd.AddCommand(c.sessionShowCommand())
	cmd.AddCommand(c.sessionDeleteCommand())

	return cmd
}

// sessionListCommand creates the "session list" subcommand.
func (c *CLI) sessionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, w := cmd.Context(), cmd.OutOrStdout()
			store, err := c.connectStore(ctx, w)
			if err != nil {
				return err
			}
			defer store.Close()

			sums, err := store.List(ctx)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(sums) == 0 {
				printInfo(w, "No saved sessions")
				printNextStep(w, "Start one with", appName+" edit --save-as NAME")
				return nil
			}

			now := time.Now()
			rows := make([][]string, len(sums))
			for i, s := range sums {
				rows[i] = []string{
					s.ID,
					s.Name,
					strconv.Itoa(s.Nodes),
					strconv.Itoa(s.Edges),
					formatRelativeTime(s.UpdatedAt, now),
				}
			}
			fmt.Fprintln(w, renderTable([]string{"ID", "Name", "Nodes", "Edges", "Updated"}, rows))
			return nil
		},
	}
}

// sessionShowCommand creates the "session show" subcommand.
func (c *CLI) sessionShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a saved session and its graph",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return c.completeSessionIDs(cmd, args, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, w := cmd.Context(), cmd.OutOrStdout()
			if err := session.ValidateID(args[0]); err != nil {
				return err
			}
			store, err := c.connectStore(ctx, w)
			if err != nil {
				return err
			}
			defer store.Close()

			sess, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}

			printKeyValue(w, "id", sess.ID)
			printKeyValue(w, "name", sess.Name)
			if sess.CatalogPath != "" {
				printKeyValue(w, "catalog", sess.CatalogPath)
			}
			if sess.OutputPath != "" {
				printKeyValue(w, "output", sess.OutputPath)
			}
			printKeyValue(w, "created", sess.CreatedAt.Local().Format(time.DateTime))
			printKeyValue(w, "updated", sess.UpdatedAt.Local().Format(time.DateTime))
			fmt.Fprintln(w)
			showGraph(w, sess.Graph, c.loadCatalog(ctx))
			printNextStep(w, "Resume with", appName+" edit --session "+sess.ID)
			return nil
		},
	}
}

// sessionDeleteCommand creates the "session delete" subcommand.
func (c *CLI) sessionDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete ID...",
		Short:             "Delete saved sessions",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeSessionIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, w := cmd.Context(), cmd.OutOrStdout()
			for _, id := range args {
				if err := session.ValidateID(id); err != nil {
					return err
				}
			}
			store, err := c.connectStore(ctx, w)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, id := range args {
				if err := store.Delete(ctx, id); err != nil {
					return fmt.Errorf("delete %s: %w", id, err)
				}
			}
			printSuccess(w, "Deleted %d session(s)", len(args))
			return nil
		},
	}
}
