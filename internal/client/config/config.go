package config

import "time"

// Config holds runtime settings for the shopkeeper CLI.
//
// Fields:
//   - APIBaseURL: base URL of the remote storefront API, including the
//     /api prefix.
//   - RequestTimeout: per-request timeout for outbound HTTP calls.
//   - DatabasePath: path of the local SQLite database holding the cart and
//     session snapshots.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	DatabasePath   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:5000/api"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "shopkeeper.db"
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
