package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cardlore/cardlore/internal/config"
	"github.com/cardlore/cardlore/internal/gateway"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the GraphQL API",
	Long: `Connect to the graph store and serve the catalog over GraphQL.

The process exits with an error when the graph store cannot be reached
after the configured connection attempts. SIGINT and SIGTERM stop the HTTP
server gracefully and then close the graph connection.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			logger.Warn("shutdown incomplete", "error", err)
		}
	}()

	schema, err := gateway.LoadSchema()
	if err != nil {
		return err
	}
	executor := gateway.NewExecutor(schema, a.dispatcher, logger.With("component", "gateway"))

	opts := []gateway.ServerOption{
		gateway.WithServerLogger(logger.With("component", "http")),
		gateway.WithHealthChecker(a.client),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, gateway.WithMetrics(a.metrics, a.metrics.Handler()))
	}

	server, err := gateway.NewServer(gatewayConfig(cfg), executor, opts...)
	if err != nil {
		return err
	}
	if err := server.Setup(); err != nil {
		return err
	}

	ready := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx, ready)
	})
	g.Go(func() error {
		select {
		case <-ready:
			logger.Info("cardlore ready",
				"address", server.Addr().String(),
				"graphql", cfg.Server.Path,
				"version", version)
		case <-gctx.Done():
		}
		return nil
	})

	return g.Wait()
}

// gatewayConfig converts the server section of cfg for the gateway.
func gatewayConfig(cfg *config.Config) gateway.Config {
	gc := gateway.Config{
		Address:         cfg.Server.Address,
		Path:            cfg.Server.Path,
		CORSOrigins:     cfg.Server.CORSOrigins,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimit:       cfg.Server.RateLimit,
		RateBurst:       cfg.Server.RateBurst,
		Playground:      cfg.Server.Playground,
	}
	if cfg.Metrics.Enabled {
		gc.MetricsPath = cfg.Metrics.Path
	}
	return gc
}
