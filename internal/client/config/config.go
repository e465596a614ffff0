// Package config holds runtime settings for the back-office CLI and the
// defaults → JSON file → command-line flags overlay used to load them.
package config

import "time"

// Config holds runtime settings for the back-office CLI.
//
// Fields:
//   - APIBaseURL: scheme://host[:port] of the site's REST API.
//   - StoragePath: path of the local SQLite file holding the session.
//   - RequestTimeout: transport-level timeout for API calls.
type Config struct {
	APIBaseURL     string
	StoragePath    string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.StoragePath = "backoffice.db"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
