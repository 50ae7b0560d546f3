package graph

import (
	"context"
	"time"

	"github.com/cardlore/cardlore/internal/types"
)

// Client is the process-wide handle to the graph store. It is constructed once
// at startup, connected, passed to every operation, and closed on shutdown.
// Implementations must be safe for concurrent use.
type Client interface {
	// Connect establishes the store connection and verifies it is reachable.
	Connect(ctx context.Context) error

	// Close releases the connection pool. Sessions still open are not waited for.
	Close(ctx context.Context) error

	// Health verifies connectivity and reports the outcome.
	Health(ctx context.Context) types.HealthStatus

	// WithReadSession acquires one read-mode session, runs fn with it, and
	// releases the session on every exit path including a panic in fn.
	// Sessions are never shared between calls.
	WithReadSession(ctx context.Context, fn func(Runner) error) error
}

// Runner executes Cypher inside an open session.
type Runner interface {
	// Run executes cypher with params and collects every row.
	// Failures are infrastructure errors and are not retried.
	Run(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)
}

// QueryResult represents the result of a Cypher query execution.
type QueryResult struct {
	// Records contains the result rows as maps of column name to value.
	Records []map[string]any

	// Columns contains the names of the columns in the result set.
	Columns []string

	// ExecutionTime is the duration of query execution.
	ExecutionTime time.Duration
}

// SessionObserver is notified when sessions are acquired and released.
type SessionObserver interface {
	SessionOpened()
	SessionClosed()
}

// Config contains connection options for the graph store.
type Config struct {
	// URI is the connection URI, e.g. "bolt://host:7687" or "neo4j+s://host".
	URI string

	// Username for authentication.
	Username string

	// Password for authentication.
	Password string

	// Database name. Empty string uses the server default.
	Database string

	// MaxConnectionPoolSize limits the driver's pool. Zero uses the driver default.
	MaxConnectionPoolSize int

	// ConnectionTimeout bounds connection acquisition and each connect attempt's backoff.
	ConnectionTimeout time.Duration

	// ConnectAttempts is how many times Connect tries to reach the store before failing.
	ConnectAttempts int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		URI:                   "bolt://localhost:7687",
		Username:              "neo4j",
		Password:              "password",
		MaxConnectionPoolSize: 50,
		ConnectionTimeout:     30 * time.Second,
		ConnectAttempts:       5,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.URI == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "URI cannot be empty")
	}
	if c.Username == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "Username cannot be empty")
	}
	if c.Password == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "Password cannot be empty")
	}
	if c.ConnectionTimeout <= 0 {
		return types.NewError(ErrCodeGraphInvalidConfig, "ConnectionTimeout must be positive")
	}
	if c.ConnectAttempts < 1 {
		return types.NewError(ErrCodeGraphInvalidConfig, "ConnectAttempts must be at least 1")
	}
	return nil
}
