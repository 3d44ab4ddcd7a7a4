package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "single", raw: "дрель", want: []string{"дрель"}},
		{name: "trims entries", raw: " дрель ,  перфоратор ", want: []string{"дрель", "перфоратор"}},
		{name: "drops empties", raw: "a,, ,b,", want: []string{"a", "b"}},
		{name: "empty", raw: "   ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitList(tt.raw)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Fatalf("splitList(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPrompt(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantMode  string
		wantItems []string
		wantErr   error
	}{
		{name: "search", input: "1\nдрель, пила\n", wantMode: modeSearch, wantItems: []string{"дрель", "пила"}},
		{name: "links without trailing newline", input: "2\nhttp://a/catalog/detail/x/", wantMode: modeLinks, wantItems: []string{"http://a/catalog/detail/x/"}},
		{name: "invalid mode", input: "3\n", wantErr: errInvalidMode},
		{name: "empty input", input: "", wantErr: errInvalidMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			mode, items, err := prompt(bufio.NewReader(strings.NewReader(tt.input)), &out)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("prompt: %v", err)
			}
			if mode != tt.wantMode {
				t.Fatalf("mode = %q, want %q", mode, tt.wantMode)
			}
			if strings.Join(items, "|") != strings.Join(tt.wantItems, "|") {
				t.Fatalf("items = %q, want %q", items, tt.wantItems)
			}
			if !strings.Contains(out.String(), "Select mode") {
				t.Fatalf("prompt not shown: %q", out.String())
			}
		})
	}
}

func TestRootInvalidModeWritesNothing(t *testing.T) {
	output := filepath.Join(t.TempDir(), "data.csv")

	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader("7\n"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"-o", output})

	if err := cmd.Execute(); !errors.Is(err, errInvalidMode) {
		t.Fatalf("expected invalid mode, got %v", err)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatalf("no output expected, stat err = %v", err)
	}
}

func TestSearchRejectsInvalidConfig(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"search", "дрель", "--concurrency", "0"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "concurrency") {
		t.Fatalf("expected concurrency error, got %v", err)
	}
}

func TestSearchRequiresTerms(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"search"})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected argument error")
	}
}

func TestLinksAllRejectedWritesNothing(t *testing.T) {
	output := filepath.Join(t.TempDir(), "data.csv")

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"links", "ftp://magbo.ru/catalog/detail/a/, https://magbo.ru/about/", "-o", output})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "Nothing to scrape") {
		t.Fatalf("expected terminal message, got %q", out.String())
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatalf("no output expected, stat err = %v", err)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraper.yaml")
	content := "concurrency: 5\nmax_pages: 40\nvalidate_timeout: 3s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SCRAPER_CONCURRENCY", "7")
	t.Setenv("SCRAPER_MAX_PAGES", "60")

	newCmd := func(args ...string) *cobra.Command {
		t.Helper()
		cmd := &cobra.Command{Use: "test"}
		addRunFlags(cmd.Flags())
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("parse flags: %v", err)
		}
		return cmd
	}

	cfg, err := loadConfig(newCmd("--config", path, "--concurrency", "9"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Concurrency != 9 {
		t.Fatalf("concurrency = %d, flag should win", cfg.Concurrency)
	}
	if cfg.MaxPages != 60 {
		t.Fatalf("max pages = %d, env should beat the file", cfg.MaxPages)
	}
	if cfg.ValidateTimeout != 3*time.Second {
		t.Fatalf("validate timeout = %v, file should beat defaults", cfg.ValidateTimeout)
	}

	cfg, err = loadConfig(newCmd("--config", path))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Concurrency != 7 {
		t.Fatalf("concurrency = %d, unset flag must not override env", cfg.Concurrency)
	}
	if cfg.StrictAvailability {
		t.Fatalf("strict availability must default to off")
	}

	cfg, err = loadConfig(newCmd("--strict-availability"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.StrictAvailability {
		t.Fatalf("--strict-availability should enable strict mode")
	}
}

func TestCreateWriter(t *testing.T) {
	dir := t.TempDir()
	for _, format := range []string{"csv", "json", "dual", "sqlite"} {
		if _, err := createWriter(format, filepath.Join(dir, "out."+format)); err != nil {
			t.Fatalf("createWriter(%q): %v", format, err)
		}
	}
	if _, err := createWriter("xml", filepath.Join(dir, "out.xml")); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestWatchShutdown(t *testing.T) {
	tests := []struct {
		name         string
		cancelBefore bool
		wantLog      bool
	}{
		{name: "normal return then cancel", cancelBefore: false, wantLog: false},
		{name: "cancel during run", cancelBefore: true, wantLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))
			ctx, cancel := context.WithCancel(context.Background())

			release := watchShutdown(ctx, logger)
			if tt.cancelBefore {
				cancel()
			}
			release()
			cancel()

			logged := strings.Contains(buf.String(), "shutdown signal received")
			if logged != tt.wantLog {
				t.Fatalf("logged = %v, want %v (output %q)", logged, tt.wantLog, buf.String())
			}
		})
	}
}
