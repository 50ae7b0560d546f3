package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/cardlore/cardlore/cmd/cardlore/internal"
	"github.com/cardlore/cardlore/internal/catalog"
	"github.com/cardlore/cardlore/internal/config"
	"github.com/cardlore/cardlore/internal/graph"
	"github.com/cardlore/cardlore/internal/observability"
)

const closeTimeout = 10 * time.Second

// app holds the components shared by serve and query.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	metrics    *observability.Metrics
	tracer     *sdktrace.TracerProvider
	client     *graph.Neo4jClient
	dispatcher *catalog.Dispatcher
}

// newApp connects to the graph store and builds the traced catalog. The
// returned app must be closed.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, err
	}

	tp, err := observability.InitTracing(ctx, cfg.Tracing, version)
	if err != nil {
		return nil, internal.WrapError(internal.ExitConfigError, "failed to initialize tracing", err)
	}

	a := &app{cfg: cfg, logger: logger, metrics: metrics, tracer: tp}

	a.client, err = connectGraph(ctx, cfg, logger, graph.WithSessionObserver(metrics))
	if err != nil {
		a.close()
		return nil, err
	}

	service, err := catalog.NewService(a.client,
		catalog.WithLogger(logger.With("component", "catalog")),
		catalog.WithLimits(cfg.Catalog.Limits()),
		catalog.WithLabels(cfg.Catalog.Labels()),
	)
	if err != nil {
		a.close()
		return nil, internal.WrapError(internal.ExitConfigError, "invalid catalog configuration", err)
	}

	traced := catalog.NewTracedCatalog(service, tp.Tracer("cardlore/catalog"), catalog.WithRecorder(metrics))
	a.dispatcher = catalog.NewDispatcher(traced, cfg.Catalog.Limits())
	return a, nil
}

// connectGraph creates the Neo4j client and waits until the store answers.
func connectGraph(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...graph.Option) (*graph.Neo4jClient, error) {
	opts = append([]graph.Option{graph.WithLogger(logger.With("component", "graph"))}, opts...)
	client, err := graph.NewNeo4jClient(cfg.Neo4j.GraphConfig(), opts...)
	if err != nil {
		return nil, internal.WrapError(internal.ExitConfigError, "invalid neo4j configuration", err)
	}
	if err := client.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, internal.WrapError(internal.ExitGraphError, "cannot reach the graph store", err)
	}
	return client, nil
}

// close releases the graph connection and flushes pending spans. It runs on
// a fresh context so shutdown completes after a signal.
func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	var errs []error
	if a.client != nil {
		errs = append(errs, a.client.Close(ctx))
	}
	errs = append(errs, observability.ShutdownTracing(ctx, a.tracer))
	return errors.Join(errs...)
}
