// Package config provides configuration loading from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Defaults shared with callers that build a Config by hand.
const (
	DefaultDatabaseURL     = "mongodb://localhost:27017/mcp_db"
	DefaultSchemaSample    = 100
	DefaultListConcurrency = 8
)

// Config holds all configuration for the MCP server.
type Config struct {
	DatabaseURL     string        `env:"DATABASE_URL,default=mongodb://localhost:27017/mcp_db"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT,default=10s"`
	SchemaSample    int           `env:"SCHEMA_SAMPLE_SIZE,default=100"`
	ListConcurrency int           `env:"LIST_CONCURRENCY,default=8"`

	// Logging configuration
	LogLevel      string `env:"LOG_LEVEL,default=info"`
	LogFile       string `env:"LOG_FILE"` // empty = stderr only
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB,default=10"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS,default=5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS,default=28"`
	LogCompress   bool   `env:"LOG_COMPRESS,default=true"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL must not be empty")
	}
	if c.SchemaSample <= 0 {
		return fmt.Errorf("SCHEMA_SAMPLE_SIZE must be positive, got %d", c.SchemaSample)
	}
	if c.ListConcurrency <= 0 {
		return fmt.Errorf("LIST_CONCURRENCY must be positive, got %d", c.ListConcurrency)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("CONNECT_TIMEOUT must be positive, got %s", c.ConnectTimeout)
	}
	return nil
}
