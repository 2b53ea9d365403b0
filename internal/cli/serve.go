package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracelayer/gridroute/internal/server"
	"github.com/tracelayer/gridroute/pkg/cache"
	"github.com/tracelayer/gridroute/pkg/pipeline"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		storeSpec string
		redisAddr string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the routing API over HTTP",
		Long: `Serve the routing API over HTTP.

Endpoints:
  GET    /healthz                   liveness probe
  POST   /api/route                 route a problem and record the run
  GET    /api/runs                  list recorded runs
  GET    /api/runs/{id}             one run with its outcome
  GET    /api/runs/{id}/svg         the run's rendered layout
  GET    /api/runs/{id}/elements    routed geometry, filtered by ?layer= and ?bbox=
  DELETE /api/runs/{id}             delete a run

The run store defaults to the local file store; pass a mongodb:// URI for
shared deployments. With --redis the result cache moves to Redis so several
instances share routed results.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, storeSpec, redisAddr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&storeSpec, "store", "", "run store: directory or mongodb:// URI (default ~/.config/gridroute/runs)")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for a shared result cache (default: local file cache)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result caching")

	return cmd
}

// runServe assembles the store, cache, and runner, then serves until the
// context is cancelled.
func (c *CLI) runServe(ctx context.Context, addr, storeSpec, redisAddr string, noCache bool) error {
	st, err := openStore(ctx, storeSpec)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}

	cc, err := newServerCache(ctx, redisAddr, noCache)
	if err != nil {
		_ = st.Close()
		return err
	}

	// Scoped keys keep server cache entries apart from CLI entries on a
	// shared backend.
	runner := pipeline.NewRunner(cc, cache.NewScopedKeyer(nil, "api:"), c.Logger)
	defer runner.Close()

	srv := server.New(server.Config{
		Addr:   addr,
		Store:  st,
		Runner: runner,
		Logger: c.Logger,
	})

	printInfo("Serving on %s", addr)
	if redisAddr != "" {
		printDetail("Cache: redis %s", redisAddr)
	}
	return srv.Start(ctx)
}

// newServerCache picks the server's cache backend.
func newServerCache(ctx context.Context, redisAddr string, noCache bool) (cache.Cache, error) {
	switch {
	case noCache:
		return cache.NewNullCache(), nil
	case redisAddr != "":
		rc, err := cache.NewRedisCache(ctx, redisAddr)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, nil
	default:
		return newCache(false)
	}
}
