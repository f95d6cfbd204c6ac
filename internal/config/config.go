// Package config loads the optional pipeline configuration file.
//
// All fields are pointers so a partial config file only overrides what it
// names; the Get* accessors provide the fallback defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the conventional location of the pipeline config.
const DefaultConfigPath = "config/brewstats.json"

// Defaults for fields not present in the config file.
const (
	DefaultBaseURL        = "https://api.brewfather.app"
	DefaultPageLimit      = 50
	DefaultRawPath        = "data/detailed_batches_all.json"
	DefaultStatsPath      = "data/brewing_statistics.json"
	DefaultSiteDir        = "site"
	DefaultArchivePath    = "data/brewstats.db"
	DefaultThrottle       = 500 * time.Millisecond
	DefaultTopIngredients = 15
)

// Config holds the pipeline configuration. Every field is optional in the
// JSON file; nil means "use the default".
type Config struct {
	// Fetch params
	BaseURL   *string `json:"base_url,omitempty"`
	PageLimit *int    `json:"page_limit,omitempty"`
	Throttle  *string `json:"throttle,omitempty"` // duration string like "500ms"

	// Pipeline file locations
	RawPath     *string `json:"raw_path,omitempty"`
	StatsPath   *string `json:"stats_path,omitempty"`
	SiteDir     *string `json:"site_dir,omitempty"`
	ArchivePath *string `json:"archive_path,omitempty"`

	// Showcase params
	TopIngredients *int `json:"top_ingredients,omitempty"`
}

// Load reads a Config from a JSON file. A missing file is not an error and
// yields an empty config so every accessor returns its default.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.PageLimit != nil && (*c.PageLimit < 1 || *c.PageLimit > 500) {
		return fmt.Errorf("page_limit must be between 1 and 500, got %d", *c.PageLimit)
	}
	if c.Throttle != nil && *c.Throttle != "" {
		if _, err := time.ParseDuration(*c.Throttle); err != nil {
			return fmt.Errorf("invalid throttle '%s': %w", *c.Throttle, err)
		}
	}
	if c.TopIngredients != nil && *c.TopIngredients < 1 {
		return fmt.Errorf("top_ingredients must be positive, got %d", *c.TopIngredients)
	}
	return nil
}

// GetBaseURL returns the API base URL or the default.
func (c *Config) GetBaseURL() string {
	if c.BaseURL == nil || *c.BaseURL == "" {
		return DefaultBaseURL
	}
	return *c.BaseURL
}

// GetPageLimit returns the fetch page size or the default.
func (c *Config) GetPageLimit() int {
	if c.PageLimit == nil {
		return DefaultPageLimit
	}
	return *c.PageLimit
}

// GetThrottle parses and returns the inter-page sleep as a time.Duration.
func (c *Config) GetThrottle() time.Duration {
	if c.Throttle == nil || *c.Throttle == "" {
		return DefaultThrottle
	}
	d, err := time.ParseDuration(*c.Throttle)
	if err != nil {
		return DefaultThrottle
	}
	return d
}

// GetRawPath returns the raw batch dump path or the default.
func (c *Config) GetRawPath() string {
	if c.RawPath == nil || *c.RawPath == "" {
		return DefaultRawPath
	}
	return *c.RawPath
}

// GetStatsPath returns the statistics output path or the default.
func (c *Config) GetStatsPath() string {
	if c.StatsPath == nil || *c.StatsPath == "" {
		return DefaultStatsPath
	}
	return *c.StatsPath
}

// GetSiteDir returns the showcase output directory or the default.
func (c *Config) GetSiteDir() string {
	if c.SiteDir == nil || *c.SiteDir == "" {
		return DefaultSiteDir
	}
	return *c.SiteDir
}

// GetArchivePath returns the fetch archive database path or the default.
func (c *Config) GetArchivePath() string {
	if c.ArchivePath == nil || *c.ArchivePath == "" {
		return DefaultArchivePath
	}
	return *c.ArchivePath
}

// GetTopIngredients returns how many ingredients the showcase charts show.
func (c *Config) GetTopIngredients() int {
	if c.TopIngredients == nil {
		return DefaultTopIngredients
	}
	return *c.TopIngredients
}
