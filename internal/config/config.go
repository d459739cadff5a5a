// Package config assembles the client runtime configuration. Sources are
// overlaid in order: built-in defaults, environment (an optional .env file
// included), a JSON config file, and finally command-line flags.
package config

import "time"

// Config holds runtime settings for the Life is Skill client.
type Config struct {
	// APIBaseURL is the root of the backend REST API, e.g.
	// "https://api.lifeisskill.cz".
	APIBaseURL string
	// APIKey identifies this client build to the backend.
	APIKey string
	// AppVersion is reported with every request.
	AppVersion string
	// DatabasePath is the sqlite file holding the local game data.
	DatabasePath string
	// OnlineCheckInterval is how often reachability is probed.
	OnlineCheckInterval time.Duration
	// RequestTimeout bounds every single API call.
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://api.lifeisskill.cz"
	c.AppVersion = "dev"
	c.DatabasePath = "lisk.db"
	c.OnlineCheckInterval = 30 * time.Second
	c.RequestTimeout = 15 * time.Second
}

// LoadConfig constructs a Config with all sources applied. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
