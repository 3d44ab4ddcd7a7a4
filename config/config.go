package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds scraper configuration.
type Config struct {
	BaseURL            string
	SearchTemplate     string // path and query relative to BaseURL, %s receives the escaped term
	PageParam          string
	DetailPath         string
	MaxPages           int
	Concurrency        int
	ValidateTimeout    time.Duration
	FetchTimeout       time.Duration // zero keeps the transport default
	UserAgent          string
	OutputFile         string
	OutputFormat       string // csv, json, dual, or sqlite
	ReportFile         string
	MetricsAddr        string
	DedupeMaxSize      int
	KeepPartialPages   bool
	StrictAvailability bool // treat "Нет в наличии" as out of stock
	Verbose            bool
}

// DefaultConfig returns the defaults for the magbo.ru catalog.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "https://magbo.ru",
		SearchTemplate:     "/catalog/?q=%s&s=Найти",
		PageParam:          "PAGEN_2",
		DetailPath:         "/catalog/detail/",
		MaxPages:           500,
		Concurrency:        20,
		ValidateTimeout:    10 * time.Second,
		FetchTimeout:       0,
		UserAgent:          "Mozilla/5.0",
		OutputFile:         "data.csv",
		OutputFormat:       "csv",
		ReportFile:         "",
		MetricsAddr:        "",
		DedupeMaxSize:      100000,
		KeepPartialPages:   false,
		StrictAvailability: false,
		Verbose:            false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base URL scheme must be http or https")
	}

	if strings.Count(c.SearchTemplate, "%s") != 1 {
		return fmt.Errorf("search template must contain exactly one %%s verb")
	}
	if c.PageParam == "" {
		return fmt.Errorf("page param cannot be empty")
	}
	if c.DetailPath == "" {
		return fmt.Errorf("detail path cannot be empty")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.ValidateTimeout <= 0 {
		return fmt.Errorf("validate timeout must be positive")
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch timeout cannot be negative")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	switch c.OutputFormat {
	case "csv", "json", "dual", "sqlite":
	default:
		return fmt.Errorf("output format must be csv, json, dual, or sqlite")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}

	return nil
}

// EnvInt reads an integer environment variable. ok is false when the variable is unset.
func EnvInt(name string) (value int, ok bool, err error) {
	raw, ok := EnvString(name)
	if !ok {
		return 0, false, nil
	}
	value, err = strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", name, err)
	}
	return value, true, nil
}

// EnvString reads a non-empty environment variable.
func EnvString(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// ApplyEnv overlays SCRAPER_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	if value, ok := EnvString("SCRAPER_BASE_URL"); ok {
		c.BaseURL = value
	}
	if value, ok, err := EnvInt("SCRAPER_CONCURRENCY"); err != nil {
		return err
	} else if ok {
		c.Concurrency = value
	}
	if value, ok, err := EnvInt("SCRAPER_MAX_PAGES"); err != nil {
		return err
	} else if ok {
		c.MaxPages = value
	}
	if value, ok := EnvString("SCRAPER_OUTPUT"); ok {
		c.OutputFile = value
	}
	if value, ok := EnvString("SCRAPER_FORMAT"); ok {
		c.OutputFormat = strings.ToLower(value)
	}
	if value, ok := EnvString("SCRAPER_METRICS_ADDR"); ok {
		c.MetricsAddr = value
	}
	return nil
}
