package observability

import (
	"fmt"
	"strings"
)

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json text"`
}

// Validate validates the LoggingConfig fields.
func (c *LoggingConfig) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Format) {
	case "json", "text":
		return nil
	default:
		return fmt.Errorf("invalid log format: %s (must be one of: json, text)", c.Format)
	}
}

// TracingConfig contains distributed tracing configuration. When disabled a
// provider that records nothing is used.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint     string  `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	ServiceName  string  `yaml:"service_name" mapstructure:"service_name"`
	SampleRate   float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	TLSCertFile  string  `yaml:"tls_cert_file" mapstructure:"tls_cert_file"`
	InsecureMode bool    `yaml:"insecure_mode" mapstructure:"insecure_mode"`
}

// Validate validates the TracingConfig fields.
func (c *TracingConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.SampleRate < 0.0 || c.SampleRate > 1.0 {
		return fmt.Errorf("invalid sample rate: %f (must be between 0.0 and 1.0)", c.SampleRate)
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required when tracing is enabled")
	}
	return nil
}

// MetricsConfig contains Prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path" validate:"omitempty,startswith=/"`
}
