// Package config loads relq's connection and pool settings from a TOML
// file, the same configuration format and BurntSushi/toml decoder used
// elsewhere in the pack for structured settings files.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/omniql-engine/relq/dialect"
	"github.com/omniql-engine/relq/dialect/mysql"
	"github.com/omniql-engine/relq/dialect/postgres"
	"github.com/omniql-engine/relq/dialect/sqlite"
	"github.com/omniql-engine/relq/driver"
)

// Config is the top-level shape of a relq TOML configuration file.
type Config struct {
	Dialect        string `toml:"dialect"` // "sqlite", "postgresql", or "mysql"
	DialectVersion string `toml:"dialect_version"`
	DSN            string `toml:"dsn"`
	Pool           Pool   `toml:"pool"`
}

// Pool mirrors driver.PoolConfig with TOML-friendly scalar fields;
// durations are expressed in milliseconds.
type Pool struct {
	MinSize               int `toml:"min_size"`
	MaxSize               int `toml:"max_size"`
	AcquireTimeoutMS      int `toml:"acquire_timeout_ms"`
	HealthCheckIntervalMS int `toml:"health_check_interval_ms"`
}

const (
	defaultMaxSize             = 10
	defaultAcquireTimeoutMS    = 5000
	defaultHealthCheckInterval = 30000
)

// Load decodes a Config from the TOML file at path, filling in pool
// defaults for any field left at zero.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Pool.MaxSize == 0 {
		c.Pool.MaxSize = defaultMaxSize
	}
	if c.Pool.AcquireTimeoutMS == 0 {
		c.Pool.AcquireTimeoutMS = defaultAcquireTimeoutMS
	}
	if c.Pool.HealthCheckIntervalMS == 0 {
		c.Pool.HealthCheckIntervalMS = defaultHealthCheckInterval
	}
}

// PoolConfig converts the TOML-friendly Pool settings into a
// driver.PoolConfig.
func (c *Config) PoolConfig() driver.PoolConfig {
	return driver.PoolConfig{
		MinSize:             c.Pool.MinSize,
		MaxSize:             c.Pool.MaxSize,
		AcquireTimeout:      time.Duration(c.Pool.AcquireTimeoutMS) * time.Millisecond,
		HealthCheckInterval: time.Duration(c.Pool.HealthCheckIntervalMS) * time.Millisecond,
	}
}

// BuildDialect constructs the dialect.Dialect named by c.Dialect.
func (c *Config) BuildDialect() (dialect.Dialect, error) {
	switch c.Dialect {
	case "sqlite":
		return sqlite.New(c.DialectVersion), nil
	case "postgresql", "postgres":
		return postgres.New(), nil
	case "mysql":
		return mysql.New(c.DialectVersion), nil
	default:
		return nil, fmt.Errorf("config: unknown dialect %q", c.Dialect)
	}
}
