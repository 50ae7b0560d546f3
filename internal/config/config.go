package config

import (
	"time"

	"github.com/cardlore/cardlore/internal/catalog"
	"github.com/cardlore/cardlore/internal/graph"
	"github.com/cardlore/cardlore/internal/observability"
)

// Config is the root configuration for cardlore.
type Config struct {
	Server  ServerConfig                `mapstructure:"server" yaml:"server"`
	Neo4j   Neo4jConfig                 `mapstructure:"neo4j" yaml:"neo4j"`
	Catalog CatalogConfig               `mapstructure:"catalog" yaml:"catalog"`
	Logging observability.LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Tracing observability.TracingConfig `mapstructure:"tracing" yaml:"tracing"`
	Metrics observability.MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig contains the HTTP listener settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address" yaml:"address" validate:"required"`
	Path            string        `mapstructure:"path" yaml:"path" validate:"required,startswith=/"`
	CORSOrigins     []string      `mapstructure:"cors_origins" yaml:"cors_origins" validate:"dive,required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"min=1s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=1s"`
	RateLimit       float64       `mapstructure:"rate_limit" yaml:"rate_limit" validate:"min=0"`
	RateBurst       int           `mapstructure:"rate_burst" yaml:"rate_burst" validate:"min=0"`
	Playground      bool          `mapstructure:"playground" yaml:"playground"`
}

// Neo4jConfig contains the graph store connection settings.
type Neo4jConfig struct {
	URI               string        `mapstructure:"uri" yaml:"uri" validate:"required"`
	Username          string        `mapstructure:"username" yaml:"username" validate:"required"`
	Password          string        `mapstructure:"password" yaml:"password" validate:"required"`
	Database          string        `mapstructure:"database" yaml:"database"`
	MaxConnections    int           `mapstructure:"max_connections" yaml:"max_connections" validate:"min=1,max=1000"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout" yaml:"connection_timeout" validate:"min=1s"`
	ConnectAttempts   int           `mapstructure:"connect_attempts" yaml:"connect_attempts" validate:"min=1,max=20"`
}

// CatalogConfig contains query limits and the card label.
type CatalogConfig struct {
	DefaultLimit int64  `mapstructure:"default_limit" yaml:"default_limit" validate:"min=0"`
	MaxLimit     int64  `mapstructure:"max_limit" yaml:"max_limit" validate:"min=1"`
	CardLabel    string `mapstructure:"card_label" yaml:"card_label" validate:"required"`
}

// GraphConfig converts the settings to a graph.Config.
func (c Neo4jConfig) GraphConfig() graph.Config {
	return graph.Config{
		URI:                   c.URI,
		Username:              c.Username,
		Password:              c.Password,
		Database:              c.Database,
		MaxConnectionPoolSize: c.MaxConnections,
		ConnectionTimeout:     c.ConnectionTimeout,
		ConnectAttempts:       c.ConnectAttempts,
	}
}

// Limits converts the settings to catalog.Limits.
func (c CatalogConfig) Limits() catalog.Limits {
	return catalog.Limits{Default: c.DefaultLimit, Max: c.MaxLimit}
}

// Labels returns the node labels with the configured card label.
func (c CatalogConfig) Labels() catalog.Labels {
	labels := catalog.DefaultLabels()
	labels.Card = c.CardLabel
	return labels
}
