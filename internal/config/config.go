// Package config loads and validates twigd configuration from YAML files,
// with ${VAR} environment variable interpolation for secrets.
package config

import (
	"fmt"
	"time"

	"github.com/TwigSlot/twig-server/internal/graph"
	"github.com/TwigSlot/twig-server/internal/types"
)

// Config is the root configuration for the twigd server.
type Config struct {
	Neo4j   Neo4jConfig   `yaml:"neo4j" mapstructure:"neo4j"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
}

// Neo4jConfig holds graph store connection settings.
type Neo4jConfig struct {
	URI               string        `yaml:"uri" mapstructure:"uri"`
	Username          string        `yaml:"username" mapstructure:"username"`
	Password          string        `yaml:"password" mapstructure:"password"`
	Database          string        `yaml:"database" mapstructure:"database"`
	PoolSize          int           `yaml:"pool_size" mapstructure:"pool_size"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout" mapstructure:"connection_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig holds OpenTelemetry tracing settings.
type TracingConfig struct {
	Enabled bool    `yaml:"enabled" mapstructure:"enabled"`
	Ratio   float64 `yaml:"ratio" mapstructure:"ratio"`
}

// DefaultConfig returns a Config with sensible defaults for local
// development against a stock Neo4j container.
func DefaultConfig() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URI:               "bolt://localhost:7687",
			Username:          "neo4j",
			Password:          "password",
			Database:          "",
			PoolSize:          50,
			ConnectionTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			Enabled: false,
			Ratio:   1.0,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Neo4j.URI == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "neo4j.uri cannot be empty")
	}
	if c.Neo4j.Username == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "neo4j.username cannot be empty")
	}
	if c.Neo4j.Password == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "neo4j.password cannot be empty")
	}
	if c.Neo4j.ConnectionTimeout <= 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "neo4j.connection_timeout must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("invalid logging.level %q (must be debug, info, warn, or error)", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("invalid logging.format %q (must be text or json)", c.Logging.Format))
	}
	if c.Tracing.Ratio < 0 || c.Tracing.Ratio > 1 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "tracing.ratio must be within [0, 1]")
	}
	return nil
}

// GraphConfig converts the Neo4j section into the graph client's config.
func (c *Config) GraphConfig() graph.ClientConfig {
	return graph.ClientConfig{
		URI:                   c.Neo4j.URI,
		Username:              c.Neo4j.Username,
		Password:              c.Neo4j.Password,
		Database:              c.Neo4j.Database,
		MaxConnectionPoolSize: c.Neo4j.PoolSize,
		ConnectionTimeout:     c.Neo4j.ConnectionTimeout,
	}
}
