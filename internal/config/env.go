package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the environment. A .env file in
// the working directory is loaded first (missing file is fine); real
// environment variables win over .env entries, which godotenv guarantees by
// never overriding existing ones.
//
// Recognized variables:
//
//	LISK_API_BASE_URL
//	LISK_API_KEY
//	LISK_APP_VERSION
//	LISK_DATABASE_PATH
//	LISK_ONLINE_CHECK_INTERVAL  (Go duration, e.g. "30s")
//	LISK_REQUEST_TIMEOUT        (Go duration)
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("LISK_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("LISK_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("LISK_APP_VERSION"); v != "" {
		cfg.AppVersion = v
	}
	if v := os.Getenv("LISK_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("LISK_ONLINE_CHECK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.OnlineCheckInterval = d
		}
	}
	if v := os.Getenv("LISK_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
}
