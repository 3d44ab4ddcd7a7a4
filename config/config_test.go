package config

import (
	"errors"
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
			name: "negative concurrency",
			mutate: func(cfg *Config) {
				cfg.Concurrency = -1
			},
			wantErr: "concurrency",
		},
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
			name: "ftp base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "ftp://magbo.ru"
			},
			wantErr: "scheme",
		},
		{
			name: "template without verb",
			mutate: func(cfg *Config) {
				cfg.SearchTemplate = "/catalog/?q="
			},
			wantErr: "search template",
		},
		{
			name: "zero validate timeout",
			mutate: func(cfg *Config) {
				cfg.ValidateTimeout = 0
			},
			wantErr: "validate timeout",
		},
		{
			name: "negative fetch timeout",
			mutate: func(cfg *Config) {
				cfg.FetchTimeout = -1 * time.Second
			},
			wantErr: "fetch timeout",
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
	if cfg.Concurrency != 20 {
		t.Fatalf("concurrency = %d, want 20", cfg.Concurrency)
	}
	if cfg.ValidateTimeout != 10*time.Second {
		t.Fatalf("validate timeout = %v, want 10s", cfg.ValidateTimeout)
	}
	if cfg.FetchTimeout != 0 {
		t.Fatalf("fetch timeout = %v, want transport default", cfg.FetchTimeout)
	}
	if cfg.StrictAvailability {
		t.Fatalf("strict availability must default to off")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SCRAPER_CONCURRENCY", "4")
	t.Setenv("SCRAPER_OUTPUT", "out/products.csv")
	t.Setenv("SCRAPER_FORMAT", "JSON")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Concurrency != 4 {
		t.Fatalf("concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.OutputFile != "out/products.csv" {
		t.Fatalf("output = %q", cfg.OutputFile)
	}
	if cfg.OutputFormat != "json" {
		t.Fatalf("format = %q, want json", cfg.OutputFormat)
	}
}

func TestApplyEnvInvalidInt(t *testing.T) {
	t.Setenv("SCRAPER_MAX_PAGES", "many")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err == nil || !strings.Contains(err.Error(), "SCRAPER_MAX_PAGES") {
		t.Fatalf("expected SCRAPER_MAX_PAGES error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraper.yaml")
	content := `base_url: http://shop.test
concurrency: 5
fetch_timeout: 30s
format: SQLite
keep_partial_pages: true
strict_availability: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cfg := DefaultConfig()
	if err := f.Apply(cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.BaseURL != "http://shop.test" {
		t.Fatalf("base url = %q", cfg.BaseURL)
	}
	if cfg.Concurrency != 5 {
		t.Fatalf("concurrency = %d, want 5", cfg.Concurrency)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Fatalf("fetch timeout = %v, want 30s", cfg.FetchTimeout)
	}
	if cfg.OutputFormat != "sqlite" {
		t.Fatalf("format = %q, want sqlite", cfg.OutputFormat)
	}
	if !cfg.KeepPartialPages {
		t.Fatalf("keep partial pages should be set")
	}
	if !cfg.StrictAvailability {
		t.Fatalf("strict availability should be set")
	}
	if cfg.PageParam != "PAGEN_2" {
		t.Fatalf("unset keys must keep defaults, page param = %q", cfg.PageParam)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestApplyBadDuration(t *testing.T) {
	bad := "soon"
	f := &File{ValidateTimeout: &bad}
	if err := f.Apply(DefaultConfig()); err == nil || !strings.Contains(err.Error(), "validate_timeout") {
		t.Fatalf("expected validate_timeout error, got %v", err)
	}
}
