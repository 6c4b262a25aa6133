// Package config handles configuration for the server component. Settings
// come from the environment, with an optional .env file loaded first via
// godotenv, matching how the server is run in containers.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the RecipeShelf server.
//
// Fields:
//   - Addr: bind address for the HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - TokenValidityDuration: access token lifetime.
//   - CORSOrigins: allowed browser origins.
type Config struct {
	Addr                  string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	CORSOrigins           []string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 24 * time.Hour
	c.CORSOrigins = []string{"http://localhost:3000"}
}

// LoadConfig builds a Config by applying defaults, loading an optional .env
// file, and overlaying environment variables.
//
// Recognized variables: ADDRESS, DATABASE_DSN, SECRET_KEY,
// TOKEN_VALIDITY (Go duration), CORS_ORIGINS (comma-separated).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()

	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	parseEnv(cfg)
	return cfg
}

func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv("ADDRESS"); ok {
		cfg.Addr = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		cfg.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("SECRET_KEY"); ok {
		cfg.SecretKey = v
	}
	if v, ok := os.LookupEnv("TOKEN_VALIDITY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.TokenValidityDuration = d
	}
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		origins := make([]string, 0)
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}
}
