package gateway

import (
	"fmt"
	"strings"
	"time"

	"github.com/cardlore/cardlore/internal/types"
)

// Config holds the HTTP listener settings of the gateway.
type Config struct {
	// Address is the listen address, e.g. ":5000".
	Address string
	// Path serves GraphQL requests.
	Path string
	// CORSOrigins lists the origins allowed to call the API. "*" allows all.
	CORSOrigins []string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// ShutdownTimeout bounds the graceful shutdown when the Start context
	// ends.
	ShutdownTimeout time.Duration

	// RateLimit is requests per second per client address. 0 disables it.
	RateLimit float64
	RateBurst int

	// MetricsPath serves Prometheus metrics when a metrics handler is set.
	MetricsPath string
	// Playground serves the GraphQL playground at "/".
	Playground bool
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Address == "" {
		return types.NewError(ErrCodeInvalidConfig, "address is required")
	}
	if !strings.HasPrefix(c.Path, "/") {
		return types.NewError(ErrCodeInvalidConfig, fmt.Sprintf("path must start with / (got %q)", c.Path))
	}
	if c.MetricsPath != "" && !strings.HasPrefix(c.MetricsPath, "/") {
		return types.NewError(ErrCodeInvalidConfig, fmt.Sprintf("metrics path must start with / (got %q)", c.MetricsPath))
	}
	if c.MetricsPath == c.Path || c.Path == "/health" || (c.Playground && c.Path == "/") {
		return types.NewError(ErrCodeInvalidConfig, "GraphQL path collides with another route")
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return types.NewError(ErrCodeInvalidConfig, "rate limit and burst must not be negative")
	}
	return nil
}
