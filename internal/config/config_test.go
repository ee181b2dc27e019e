package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.InactivityDelay != 2*time.Minute {
		t.Errorf("InactivityDelay = %v, want 2m", cfg.InactivityDelay)
	}
	if cfg.SweepInterval != 5*time.Minute {
		t.Errorf("SweepInterval = %v, want 5m", cfg.SweepInterval)
	}
	if !cfg.IsDevelopment() {
		t.Error("empty allowed origins should mean development mode")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AGENT_ORIGINS", "https://desk.example.com, https://staging-desk.")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example.com")
	t.Setenv("INACTIVITY_DELAY", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.AgentOrigins) != 2 || cfg.AgentOrigins[0] != "https://desk.example.com" {
		t.Errorf("AgentOrigins = %v", cfg.AgentOrigins)
	}
	if cfg.InactivityDelay != 30*time.Second {
		t.Errorf("InactivityDelay = %v, want 30s", cfg.InactivityDelay)
	}
	if cfg.IsDevelopment() {
		t.Error("explicit non-local origins should not be development mode")
	}
}

func TestLocalhostEntryKeepsOriginEnforcement(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example.com, http://localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.IsDevelopment() {
		t.Error("a localhost entry in a configured allow-list must not disable origin enforcement")
	}
}

func TestLoadIgnoresInvalidDuration(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SweepInterval != 5*time.Minute {
		t.Errorf("SweepInterval = %v, want default 5m", cfg.SweepInterval)
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		Port:            "8080",
		FallbackDBPath:  "./data/archive.db",
		InactivityDelay: time.Minute,
		SweepInterval:   time.Minute,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"empty fallback path", func(c *Config) { c.FallbackDBPath = "" }},
		{"zero inactivity delay", func(c *Config) { c.InactivityDelay = 0 }},
		{"zero sweep interval", func(c *Config) { c.SweepInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
