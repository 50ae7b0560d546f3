package config

import (
	"time"

	"github.com/cardlore/cardlore/internal/catalog"
)

// DefaultConfig returns a Config with sensible default values. The Neo4j
// URI and credentials have no default and must be configured.
func DefaultConfig() *Config {
	limits := catalog.DefaultLimits()

	cfg := &Config{
		Server: ServerConfig{
			Address:         ":5000",
			Path:            "/graphql",
			CORSOrigins:     []string{"http://localhost:3000"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       0,
			RateBurst:       20,
		},
		Neo4j: Neo4jConfig{
			MaxConnections:    50,
			ConnectionTimeout: 30 * time.Second,
			ConnectAttempts:   5,
		},
		Catalog: CatalogConfig{
			DefaultLimit: limits.Default,
			MaxLimit:     limits.Max,
			CardLabel:    catalog.DefaultCardLabel,
		},
	}
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	cfg.Tracing.ServiceName = "cardlore"
	cfg.Tracing.SampleRate = 1.0
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"
	return cfg
}

// envBindings maps configuration keys to the environment variables the
// deployment sets. Every other key can be set as CARDLORE_<SECTION>_<KEY>.
var envBindings = map[string]string{
	"neo4j.uri":           "NEO4J_URI",
	"neo4j.username":      "NEO4J_USER",
	"neo4j.password":      "NEO4J_PASSWORD",
	"neo4j.database":      "NEO4J_DATABASE",
	"server.cors_origins": "CORS_ORIGIN",
}
