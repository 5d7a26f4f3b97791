package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tuigraph/internal/api"
	"github.com/matzehuels/tuigraph/pkg/session"
)

const shutdownTimeout = 10 * time.Second

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr       string
	noSessions bool
	noCache    bool
}

// serveCommand creates the serve command, which runs the HTTP API until the
// command context is cancelled.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: defaultAddr}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().BoolVar(&opts.noSessions, "no-sessions", false, "disable the /sessions endpoints")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not cache rendered previews")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)
	cat := c.loadCatalog(ctx)

	var store session.Store
	if !opts.noSessions {
		s, err := c.openStore(ctx)
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		defer s.Close()
		store = s
	}

	renders := openRenderCache(opts.noCache)
	defer renders.Close()

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           api.New(cat, store, logger).WithRenderCache(renders).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", opts.addr, "types", len(cat.Types), "sessions", store != nil)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
