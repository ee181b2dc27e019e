// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port            string
	AllowedOrigins  []string // origins allowed to open a widget connection; empty = dev mode
	AgentOrigins    []string // origin prefixes eligible to register agent connections
	ArchiveURL      string   // remote archive endpoint; empty means every save goes to fallback
	ArchiveToken    string
	FallbackDBPath  string
	InactivityDelay time.Duration
	SweepInterval   time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		AllowedOrigins:  splitList(getEnv("ALLOWED_ORIGINS", "")),
		AgentOrigins:    splitList(getEnv("AGENT_ORIGINS", "")),
		ArchiveURL:      getEnv("ARCHIVE_URL", ""),
		ArchiveToken:    getEnv("ARCHIVE_TOKEN", ""),
		FallbackDBPath:  getEnv("FALLBACK_DB_PATH", "./data/archive.db"),
		InactivityDelay: getEnvDuration("INACTIVITY_DELAY", 2*time.Minute),
		SweepInterval:   getEnvDuration("SWEEP_INTERVAL", 5*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.FallbackDBPath == "" {
		return fmt.Errorf("FALLBACK_DB_PATH cannot be empty")
	}
	if c.InactivityDelay <= 0 {
		return fmt.Errorf("INACTIVITY_DELAY must be > 0")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}
	return nil
}

// IsDevelopment reports whether the relay runs in development mode, which
// disables origin enforcement. Only a fully empty allow-list counts: a
// configured list keeps enforcement on even if it includes localhost
// entries for testing.
func (c *Config) IsDevelopment() bool {
	return len(c.AllowedOrigins) == 0
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
