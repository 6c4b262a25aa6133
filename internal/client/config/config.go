package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the RecipeShelf CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST API.
//   - RequestTimeout: per-request HTTP timeout.
//   - TokenFile: path the session token is persisted to between runs.
//   - SearchDebounce: how long search input must be quiet before a fetch.
//   - PageLimit: page size requested for recipe lists.
type Config struct {
	ServerBaseURL  string
	TokenFile      string
	RequestTimeout time.Duration
	SearchDebounce time.Duration
	PageLimit      int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.TokenFile = defaultTokenFile()
	c.SearchDebounce = 500 * time.Millisecond
	c.PageLimit = 12
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".recipeshelf", "token")
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
