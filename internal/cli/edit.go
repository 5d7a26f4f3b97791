package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tuigraph/pkg/graph"
	"github.com/matzehuels/tuigraph/pkg/session"
)

// editOpts holds the flags of the edit command.
type editOpts struct {
	graph   string
	output  string
	session string
	saveAs  string
	pick    bool
}

// editCommand creates the interactive editor command.
func (c *CLI) editCommand() *cobra.Command {
	opts := editOpts{output: defaultOutput}

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a graph interactively",
		Long: `Edit opens the terminal graph editor.

The graph comes from --graph (created on quit if it does not exist), from a
saved session (--session ID or --pick), or starts empty. Press w to write the
document to --output. With --save-as NAME the graph is stored as a new session
when you quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				opts.output = ""
			}
			return c.runEdit(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.graph, "graph", "g", "", "graph file to load and save (.toml or .json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "document written by the w key")
	cmd.Flags().StringVarP(&opts.session, "session", "s", "", "resume a saved session by id")
	cmd.Flags().StringVar(&opts.saveAs, "save-as", "", "save the graph as a new session with this name")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose a saved session interactively")
	cmd.MarkFlagsMutuallyExclusive("session", "pick", "save-as")
	_ = cmd.RegisterFlagCompletionFunc("session", c.completeSessionIDs)

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, w io.Writer, opts editOpts) error {
	logger := loggerFromContext(ctx)
	cat := c.loadCatalog(ctx)

	cfg := editorConfig{Catalog: cat, Output: opts.output}

	if opts.session != "" || opts.pick || opts.saveAs != "" {
		store, err := c.connectStore(ctx, w)
		if err != nil {
			return err
		}
		defer store.Close()
		cfg.Store = store

		id := opts.session
		if opts.pick {
			if id, err = pickSession(ctx, store); err != nil || id == "" {
				return err
			}
		}
		if id != "" {
			sess, err := store.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("load session: %w", err)
			}
			cfg.Session = sess
			logger.Debug("resumed session", "id", sess.ID, "name", sess.Name)
		}
	}

	switch {
	case cfg.Session != nil:
		cfg.Graph = cfg.Session.Graph
		if cfg.Output == "" {
			cfg.Output = cfg.Session.OutputPath
		}
	default:
		g, err := readGraphOrEmpty(opts.graph)
		if err != nil {
			return fmt.Errorf("read graph: %w", err)
		}
		cfg.Graph = g
		if opts.saveAs != "" {
			cfg.Session = session.New(opts.saveAs, g)
		} else {
			cfg.GraphPath = opts.graph
		}
	}
	if cfg.Output == "" {
		cfg.Output = defaultOutput
	}
	if cfg.Session != nil {
		cfg.Session.CatalogPath = c.catalogPath
		cfg.Session.OutputPath = cfg.Output
	}

	final, err := tea.NewProgram(newEditorModel(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("editor: %w", err)
	}

	m, ok := final.(EditorModel)
	if !ok || !m.Confirmed() {
		printWarning(w, "Quit without saving")
		return nil
	}
	return c.afterEdit(w, cfg, m.Graph(), m.Dirty())
}

// afterEdit reports what the confirmed quit saved, writing the graph file
// when the edit was not session backed.
func (c *CLI) afterEdit(w io.Writer, cfg editorConfig, g *graph.Graph, dirty bool) error {
	if cfg.Session != nil {
		printSuccess(w, "Saved session %s", cfg.Session.Name)
		printDetail(w, "%s", cfg.Session.ID)
		printStats(w, len(g.Nodes), len(g.Edges), len(g.DanglingEdges()))
		return nil
	}
	if cfg.GraphPath == "" || !dirty {
		return nil
	}
	if err := writeGraph(cfg.GraphPath, g); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	printSuccess(w, "Saved graph")
	printFile(w, cfg.GraphPath)
	printStats(w, len(g.Nodes), len(g.Edges), len(g.DanglingEdges()))
	return nil
}

// pickSession lets the user choose a session. It returns "" when the picker
// is dismissed.
func pickSession(ctx context.Context, store session.Store) (string, error) {
	sums, err := store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list sessions: %w", err)
	}
	final, err := tea.NewProgram(NewSessionListModel(sums), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", fmt.Errorf("session picker: %w", err)
	}
	m, ok := final.(SessionListModel)
	if !ok || m.Selected == nil {
		return "", nil
	}
	return m.Selected.ID, nil
}

// connectStore opens the session store behind a spinner, since the Redis and
// Mongo backends dial out.
func (c *CLI) connectStore(ctx context.Context, w io.Writer) (session.Store, error) {
	spin := newSpinner(ctx, w, "Connecting to session store...")
	spin.Start()
	store, err := c.openStore(ctx)
	spin.Stop()
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return store, nil
}
