package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/cardlore/cardlore/internal/types"
)

// Neo4jClient implements Client for Neo4j.
// Pooling is the driver's concern; this client only scopes sessions.
type Neo4jClient struct {
	config   Config
	logger   *slog.Logger
	observer SessionObserver

	mu     sync.RWMutex
	driver neo4j.DriverWithContext
}

// Option configures a Neo4jClient.
type Option func(*Neo4jClient)

// WithLogger sets the logger used for connection and session events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Neo4jClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSessionObserver registers an observer for session acquire/release.
func WithSessionObserver(observer SessionObserver) Option {
	return func(c *Neo4jClient) {
		c.observer = observer
	}
}

// NewNeo4jClient creates a new Neo4j client with the given configuration.
// The client must be connected via Connect() before use.
func NewNeo4jClient(config Config, opts ...Option) (*Neo4jClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Neo4jClient{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect creates the driver and verifies connectivity, retrying with
// exponential backoff up to ConnectAttempts times.
func (c *Neo4jClient) Connect(ctx context.Context) error {
	auth := neo4j.BasicAuth(c.config.Username, c.config.Password, "")

	driverConfig := func(config *neo4j.Config) {
		if c.config.MaxConnectionPoolSize > 0 {
			config.MaxConnectionPoolSize = c.config.MaxConnectionPoolSize
		}
		config.ConnectionAcquisitionTimeout = c.config.ConnectionTimeout
		// Encryption is selected by the URI scheme (bolt:// vs bolt+s://).
	}

	var lastErr error
	baseDelay := 100 * time.Millisecond

	for attempt := 0; attempt < c.config.ConnectAttempts; attempt++ {
		driver, err := neo4j.NewDriverWithContext(c.config.URI, auth, driverConfig)
		if err == nil {
			err = driver.VerifyConnectivity(ctx)
			if err == nil {
				c.mu.Lock()
				c.driver = driver
				c.mu.Unlock()
				c.logger.Info("connected to graph store", "uri", c.config.URI, "attempt", attempt+1)
				return nil
			}
			_ = driver.Close(ctx)
		}

		lastErr = err
		c.logger.Warn("graph store connection attempt failed",
			"uri", c.config.URI,
			"attempt", attempt+1,
			"error", err)

		if attempt == c.config.ConnectAttempts-1 {
			break
		}

		delay := baseDelay << attempt
		if delay > c.config.ConnectionTimeout {
			delay = c.config.ConnectionTimeout
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return types.WrapError(ErrCodeGraphConnectionFailed,
				"connection attempt cancelled", ctx.Err())
		}
	}

	return types.WrapError(ErrCodeGraphConnectionFailed,
		fmt.Sprintf("failed to connect after %d attempts", c.config.ConnectAttempts), lastErr)
}

// Close releases all resources and closes the driver.
func (c *Neo4jClient) Close(ctx context.Context) error {
	c.mu.Lock()
	driver := c.driver
	c.driver = nil
	c.mu.Unlock()

	if driver == nil {
		return nil
	}

	if err := driver.Close(ctx); err != nil {
		return types.WrapError(ErrCodeGraphConnectionClosed,
			"failed to close driver", err)
	}
	c.logger.Info("graph store connection closed")
	return nil
}

// Health returns the current health status of the Neo4j connection.
func (c *Neo4jClient) Health(ctx context.Context) types.HealthStatus {
	driver := c.currentDriver()
	if driver == nil {
		return types.Unhealthy("driver not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := driver.VerifyConnectivity(healthCtx); err != nil {
		return types.Unhealthy(fmt.Sprintf("connectivity check failed: %v", err)).WithLatency(time.Since(start))
	}

	return types.Healthy("connected to Neo4j").WithLatency(time.Since(start))
}

// WithReadSession opens a read-mode session for the duration of fn.
func (c *Neo4jClient) WithReadSession(ctx context.Context, fn func(Runner) error) error {
	driver := c.currentDriver()
	if driver == nil {
		return types.NewError(ErrCodeGraphConnectionClosed, "driver not connected")
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.config.Database,
	})
	if c.observer != nil {
		c.observer.SessionOpened()
	}
	defer func() {
		// The caller's context may already be cancelled; release must still happen.
		if err := session.Close(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("failed to close graph session", "error", err)
		}
		if c.observer != nil {
			c.observer.SessionClosed()
		}
	}()

	return fn(&neo4jRunner{session: session})
}

func (c *Neo4jClient) currentDriver() neo4j.DriverWithContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.driver
}

// neo4jRunner runs auto-commit queries on a single session. Auto-commit is
// used instead of managed transactions so the driver never retries.
type neo4jRunner struct {
	session neo4j.SessionWithContext
}

// Run executes cypher and collects all records.
func (r *neo4jRunner) Run(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	startTime := time.Now()

	result, err := r.session.Run(ctx, cypher, params)
	if err != nil {
		return QueryResult{}, classifyDriverError(err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return QueryResult{}, classifyDriverError(err)
	}

	queryResult := convertNeo4jRecords(records)
	if len(queryResult.Columns) == 0 {
		if keys, err := result.Keys(); err == nil {
			queryResult.Columns = keys
		}
	}
	queryResult.ExecutionTime = time.Since(startTime)

	return queryResult, nil
}

// classifyDriverError maps driver failures onto graph error codes.
func classifyDriverError(err error) error {
	if neo4j.IsConnectivityError(err) {
		return types.WrapError(ErrCodeGraphConnectionLost, "lost connection to graph store", err)
	}

	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) && strings.HasPrefix(neoErr.Code, "Neo.ClientError.Statement") {
		return types.WrapError(ErrCodeGraphInvalidQuery, "graph store rejected query", err)
	}

	return types.WrapError(ErrCodeGraphQueryFailed, "query execution failed", err)
}

// convertNeo4jRecords converts driver records to QueryResult rows.
func convertNeo4jRecords(records []*neo4j.Record) QueryResult {
	result := QueryResult{
		Records: make([]map[string]any, 0, len(records)),
		Columns: []string{},
	}

	if len(records) > 0 {
		result.Columns = records[0].Keys
	}

	for _, record := range records {
		recordMap := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			recordMap[key] = record.Values[i]
		}
		result.Records = append(result.Records, recordMap)
	}

	return result
}
