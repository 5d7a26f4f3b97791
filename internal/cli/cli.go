// Package cli implements the tuigraph command-line interface.
//
// Commands:
//   - edit: interactive graph editor (bubbletea)
//   - export: write the TOML document for a graph file
//   - catalog: show or check a node type catalog
//   - parse: probe the literal parser for one parameter
//   - preview: render a graph as DOT, SVG or PNG
//   - graph: print the nodes and edges of a graph file
//   - session: list, show and delete saved editor sessions
//   - serve: run the HTTP API
//   - cache: manage the rendered preview cache
//
// All commands support --verbose (-v) for debug logging. The logger travels
// through the command context, see withLogger.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tuigraph/pkg/buildinfo"
	"github.com/matzehuels/tuigraph/pkg/catalog"
	"github.com/matzehuels/tuigraph/pkg/observability"
	"github.com/matzehuels/tuigraph/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "tuigraph"

	// envCatalog overrides the default of --catalog.
	envCatalog = "TUIGRAPH_CATALOG"

	defaultOutput = "out.toml"
	defaultAddr   = ":8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	catalogPath string
	store       storeOptions
}

// storeOptions selects the session backend. Redis wins over Mongo, and the
// file store is used when neither is set.
type storeOptions struct {
	dir       string
	redisAddr string
	mongoURI  string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "tuigraph builds node graphs and writes them as TOML documents",
		Long:         `tuigraph is a terminal editor for typed node graphs. Node types come from a catalog; the graph is written as a deterministic TOML document with derived values filled in from node and edge labels.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			observability.SetExportHooks(logHooks{c.Logger})
			observability.SetSessionHooks(logHooks{c.Logger})
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.catalogPath, "catalog", os.Getenv(envCatalog), "catalog file (.toml or .hcl); env "+envCatalog)
	pf.StringVar(&c.store.dir, "session-dir", "", "session directory (default ~/.config/tuigraph/sessions)")
	pf.StringVar(&c.store.redisAddr, "redis-addr", "", "store sessions in redis at this address")
	pf.StringVar(&c.store.mongoURI, "mongo-uri", "", "store sessions in mongodb at this URI")

	root.AddCommand(c.editCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.sessionCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Catalog
// =============================================================================

// loadCatalog loads --catalog. A missing or broken catalog is not fatal: the
// embedded default is used instead, and the empty catalog if even that fails.
func (c *CLI) loadCatalog(ctx context.Context) *catalog.Catalog {
	logger := loggerFromContext(ctx)
	if c.catalogPath != "" {
		cat, err := catalog.Load(c.catalogPath)
		if err == nil {
			logger.Debug("loaded catalog", "path", c.catalogPath, "types", len(cat.Types))
			return cat
		}
		logger.Warn("catalog failed to load, using built-in default", "path", c.catalogPath, "err", err)
	}
	cat, err := catalog.DefaultOrEmpty()
	if err != nil {
		logger.Warn("built-in catalog failed to load, using empty catalog", "err", err)
	}
	return cat
}

// =============================================================================
// Sessions
// =============================================================================

// openStore opens the configured session backend, instrumented for the
// session hooks.
func (c *CLI) openStore(ctx context.Context) (session.Store, error) {
	switch {
	case c.store.redisAddr != "":
		s, err := session.NewRedisStore(ctx, session.RedisConfig{Addr: c.store.redisAddr})
		if err != nil {
			return nil, err
		}
		return session.Instrument(s, "redis"), nil
	case c.store.mongoURI != "":
		s, err := session.NewMongoStore(ctx, session.MongoConfig{URI: c.store.mongoURI})
		if err != nil {
			return nil, err
		}
		return session.Instrument(s, "mongo"), nil
	}
	s, err := session.NewFileStore(c.store.dir)
	if err != nil {
		return nil, err
	}
	return session.Instrument(s, "file"), nil
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/tuigraph/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
