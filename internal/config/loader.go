package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/cardlore/cardlore/internal/types"
)

// EnvPrefix prefixes the generic environment overrides, e.g.
// CARDLORE_SERVER_RATE_LIMIT.
const EnvPrefix = "CARDLORE"

// ConfigLoader handles loading configuration from defaults, an optional YAML
// file and the environment, in increasing order of precedence.
type ConfigLoader interface {
	// Load reads path, which must exist. An empty path reads no file.
	Load(path string) (*Config, error)
	// LoadWithDefaults reads path when it exists and falls back to defaults
	// and the environment otherwise.
	LoadWithDefaults(path string) (*Config, error)
}

// viperConfigLoader implements ConfigLoader using Viper.
type viperConfigLoader struct {
	validator ConfigValidator
	lookupEnv func(string) (string, bool)
}

// NewConfigLoader creates a new ConfigLoader instance.
func NewConfigLoader(validator ConfigValidator) ConfigLoader {
	return &viperConfigLoader{
		validator: validator,
		lookupEnv: os.LookupEnv,
	}
}

// Load implements ConfigLoader.
func (l *viperConfigLoader) Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, DefaultConfig())

	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "invalid config path", err)
		}
		path = expanded
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
				fmt.Sprintf("failed to read config file %s", path), err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to bind "+env, err)
		}
	}

	// ${VAR} references are expanded after every source has been merged.
	for _, key := range v.AllKeys() {
		if s, ok := v.Get(key).(string); ok && strings.Contains(s, "${") {
			v.Set(key, l.interpolateString(s))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to unmarshal config", err)
	}

	l.applyPlatformEnv(&cfg)
	if cfg.Tracing.TLSCertFile != "" {
		certFile, err := ExpandPath(cfg.Tracing.TLSCertFile)
		if err != nil {
			return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "invalid tracing.tls_cert_file", err)
		}
		cfg.Tracing.TLSCertFile = certFile
	}

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED, "configuration validation failed", err)
	}
	return &cfg, nil
}

// LoadWithDefaults implements ConfigLoader.
func (l *viperConfigLoader) LoadWithDefaults(path string) (*Config, error) {
	if path != "" {
		if expanded, err := ExpandPath(path); err == nil {
			path = expanded
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	return l.Load(path)
}

// applyPlatformEnv applies variables whose format differs from the setting
// they override.
func (l *viperConfigLoader) applyPlatformEnv(cfg *Config) {
	if port, ok := l.lookupEnv("PORT"); ok {
		if addr := portAddress(port); addr != "" {
			cfg.Server.Address = addr
		}
	}
	// A single origin env value may carry spaces around commas.
	var origins []string
	for _, origin := range cfg.Server.CORSOrigins {
		origins = append(origins, splitList(origin)...)
	}
	cfg.Server.CORSOrigins = origins
}

var envRefPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateString replaces ${VAR_NAME} with environment variable values.
// Unset variables are left as written.
func (l *viperConfigLoader) interpolateString(s string) string {
	return envRefPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if envValue, ok := l.lookupEnv(varName); ok && envValue != "" {
			return envValue
		}
		return match
	})
}

// setDefaults registers every key as a viper default so that environment
// overrides apply to keys absent from the file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.address", cfg.Server.Address)
	v.SetDefault("server.path", cfg.Server.Path)
	v.SetDefault("server.cors_origins", cfg.Server.CORSOrigins)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("server.rate_limit", cfg.Server.RateLimit)
	v.SetDefault("server.rate_burst", cfg.Server.RateBurst)
	v.SetDefault("server.playground", cfg.Server.Playground)

	v.SetDefault("neo4j.uri", cfg.Neo4j.URI)
	v.SetDefault("neo4j.username", cfg.Neo4j.Username)
	v.SetDefault("neo4j.password", cfg.Neo4j.Password)
	v.SetDefault("neo4j.database", cfg.Neo4j.Database)
	v.SetDefault("neo4j.max_connections", cfg.Neo4j.MaxConnections)
	v.SetDefault("neo4j.connection_timeout", cfg.Neo4j.ConnectionTimeout)
	v.SetDefault("neo4j.connect_attempts", cfg.Neo4j.ConnectAttempts)

	v.SetDefault("catalog.default_limit", cfg.Catalog.DefaultLimit)
	v.SetDefault("catalog.max_limit", cfg.Catalog.MaxLimit)
	v.SetDefault("catalog.card_label", cfg.Catalog.CardLabel)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("tracing.enabled", cfg.Tracing.Enabled)
	v.SetDefault("tracing.endpoint", cfg.Tracing.Endpoint)
	v.SetDefault("tracing.service_name", cfg.Tracing.ServiceName)
	v.SetDefault("tracing.sample_rate", cfg.Tracing.SampleRate)
	v.SetDefault("tracing.tls_cert_file", cfg.Tracing.TLSCertFile)
	v.SetDefault("tracing.insecure_mode", cfg.Tracing.InsecureMode)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
