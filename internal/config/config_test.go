package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Auth: AuthConfig{
			Keys: []APIKeyConfig{
				{Key: "k1", Role: "admin"},
				{Key: "k2", Role: "standard"},
			},
			FingerprintSecret: "secret",
			MaxFailedAttempts: 5,
			FailureWindow:     5 * time.Minute,
			BlockDuration:     15 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Write: WriteLimitConfig{Limit: 10, Window: time.Minute, Backend: "memory"},
		},
		Storage: StorageConfig{Driver: "memory"},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejectsBrokenConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no keys", func(c *Config) { c.Auth.Keys = nil }},
		{"empty key", func(c *Config) { c.Auth.Keys[0].Key = "" }},
		{"duplicate key", func(c *Config) { c.Auth.Keys[1].Key = c.Auth.Keys[0].Key }},
		{"bad role", func(c *Config) { c.Auth.Keys[0].Role = "root" }},
		{"no fingerprint secret", func(c *Config) { c.Auth.FingerprintSecret = "" }},
		{"bad storage driver", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"bad limiter backend", func(c *Config) { c.RateLimit.Write.Backend = "memcached" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
http:
  addr: ":9999"
auth:
  keys:
    - key: file-key
      role: admin
  fingerprint_secret: file-secret
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9999" {
		t.Fatalf("http.addr = %q, want file override", cfg.HTTP.Addr)
	}
	if len(cfg.Auth.Keys) != 1 || cfg.Auth.Keys[0].Key != "file-key" {
		t.Fatalf("auth.keys = %+v, want the file key set", cfg.Auth.Keys)
	}
	// untouched sections keep the embedded defaults
	if cfg.Auth.MaxFailedAttempts != 5 {
		t.Fatalf("max_failed_attempts = %d, want default 5", cfg.Auth.MaxFailedAttempts)
	}
	if cfg.RateLimit.Write.Backend != "memory" {
		t.Fatalf("write backend = %q, want default memory", cfg.RateLimit.Write.Backend)
	}
}
