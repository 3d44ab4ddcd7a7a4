package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File mirrors Config for YAML files. Unset keys leave the current value alone.
type File struct {
	BaseURL            *string `yaml:"base_url"`
	SearchTemplate     *string `yaml:"search_template"`
	PageParam          *string `yaml:"page_param"`
	DetailPath         *string `yaml:"detail_path"`
	MaxPages           *int    `yaml:"max_pages"`
	Concurrency        *int    `yaml:"concurrency"`
	ValidateTimeout    *string `yaml:"validate_timeout"`
	FetchTimeout       *string `yaml:"fetch_timeout"`
	UserAgent          *string `yaml:"user_agent"`
	OutputFile         *string `yaml:"output"`
	OutputFormat       *string `yaml:"format"`
	ReportFile         *string `yaml:"report"`
	MetricsAddr        *string `yaml:"metrics_addr"`
	DedupeMaxSize      *int    `yaml:"dedupe_max_size"`
	KeepPartialPages   *bool   `yaml:"keep_partial_pages"`
	StrictAvailability *bool   `yaml:"strict_availability"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the --config flag
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// Apply copies every key present in f onto c.
func (f *File) Apply(c *Config) error {
	setString(&c.BaseURL, f.BaseURL)
	setString(&c.SearchTemplate, f.SearchTemplate)
	setString(&c.PageParam, f.PageParam)
	setString(&c.DetailPath, f.DetailPath)
	setString(&c.UserAgent, f.UserAgent)
	setString(&c.OutputFile, f.OutputFile)
	setString(&c.ReportFile, f.ReportFile)
	setString(&c.MetricsAddr, f.MetricsAddr)
	if f.OutputFormat != nil {
		c.OutputFormat = strings.ToLower(*f.OutputFormat)
	}
	if f.MaxPages != nil {
		c.MaxPages = *f.MaxPages
	}
	if f.Concurrency != nil {
		c.Concurrency = *f.Concurrency
	}
	if f.DedupeMaxSize != nil {
		c.DedupeMaxSize = *f.DedupeMaxSize
	}
	if f.KeepPartialPages != nil {
		c.KeepPartialPages = *f.KeepPartialPages
	}
	if f.StrictAvailability != nil {
		c.StrictAvailability = *f.StrictAvailability
	}
	if err := setDuration(&c.ValidateTimeout, f.ValidateTimeout, "validate_timeout"); err != nil {
		return err
	}
	return setDuration(&c.FetchTimeout, f.FetchTimeout, "fetch_timeout")
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string, key string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
