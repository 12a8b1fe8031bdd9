package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "zero max pages",
			mutate: func(cfg *Config) {
				cfg.MaxPages = 0
			},
			wantErr: "max pages",
		},
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "unsupported scheme",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "ftp://books.toscrape.com"
			},
			wantErr: "scheme",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "unknown backend",
			mutate: func(cfg *Config) {
				cfg.Backend = "rod"
			},
			wantErr: "backend",
		},
		{
			name: "negative rate",
			mutate: func(cfg *Config) {
				cfg.RateLimit = -2
			},
			wantErr: "rate limit",
		},
		{
			name: "negative repeat window",
			mutate: func(cfg *Config) {
				cfg.RepeatWindow = -1
			},
			wantErr: "repeat window",
		},
		{
			name: "unknown format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("timeout=%v, want 10s", cfg.Timeout)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SCRAPER_BASE_URL", "https://example.test")
	t.Setenv("SCRAPER_BACKEND", "RESTY")
	t.Setenv("SCRAPER_PAGES", "3")
	t.Setenv("SCRAPER_RATE", "1.5")
	t.Setenv("SCRAPER_TIMEOUT", "2s")
	t.Setenv("SCRAPER_ATOMIC", "true")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.BaseURL != "https://example.test" {
		t.Fatalf("base url=%q", cfg.BaseURL)
	}
	if cfg.Backend != "resty" {
		t.Fatalf("backend=%q, want resty", cfg.Backend)
	}
	if cfg.MaxPages != 3 || cfg.RateLimit != 1.5 || cfg.Timeout != 2*time.Second || !cfg.AtomicWrite {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestApplyEnvInvalidInt(t *testing.T) {
	t.Setenv("SCRAPER_PAGES", "many")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err == nil || !strings.Contains(err.Error(), "SCRAPER_PAGES") {
		t.Fatalf("expected SCRAPER_PAGES error, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SCRAPER_TEST_OUTPUT=from-dotenv.json\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("SCRAPER_TEST_OUTPUT", "")
	os.Unsetenv("SCRAPER_TEST_OUTPUT")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if v, ok := EnvString("SCRAPER_TEST_OUTPUT"); !ok || v != "from-dotenv.json" {
		t.Fatalf("SCRAPER_TEST_OUTPUT=%q (set=%v)", v, ok)
	}
}
