// Package config holds rdbctl settings: defaults overlaid by environment
// variables. Command-line flags are applied on top by the cli package.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the rdbctl client.
//
// Fields:
//   - ServerURL: base URL of the registry HTTP API.
//   - Timeout: upper bound for one request.
type Config struct {
	ServerURL string        `env:"RDB_SERVER"`
	Timeout   time.Duration `env:"RDB_CLIENT_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.Timeout = 10 * time.Second
}

// Load applies defaults and then the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
