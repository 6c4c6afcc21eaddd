package config // package config loads application configuration from environment variables

import (
	"fmt"     // fmt builds descriptive validation errors
	"strconv" // strconv validates the numeric port
	"time"    // time provides durations for probe timeouts
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Only PORT is validated; every other value is
// optional and the components that use it degrade when it is missing.
type Config struct {
	Env          string        // application environment (e.g. "dev", "prod")
	Port         string        // HTTP port to listen on
	DatabaseURL  string        // MySQL DSN for the optional catalog collaborator
	DatabaseName string        // catalog name override reported by the probe
	ProbeTimeout time.Duration // upper bound on the catalog listing in /test
	LogLevel     string        // apex/log level name
	LogFormat    string        // "text" or "json"
}

// Load reads configuration values from environment variables and returns a
// Config.  An error is returned when PORT is not a valid TCP port.
func Load() (Config, error) {
	cfg := Config{
		Env:          envStr("APP_ENV", "dev"),
		Port:         envStr("PORT", "8000"),
		DatabaseURL:  envStr("DATABASE_URL", ""),
		DatabaseName: envStr("DATABASE_NAME", ""),
		ProbeTimeout: envDur("PROBE_TIMEOUT", 5*time.Second),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		LogFormat:    envStr("LOG_FORMAT", "text"),
	}
	n, err := strconv.Atoi(cfg.Port)
	if err != nil || n < 1 || n > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q", cfg.Port)
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	return cfg, nil
}

// Addr returns the listen address bound to all interfaces.
func (c Config) Addr() string {
	return "0.0.0.0:" + c.Port
}
