// Package config loads dirigent's own configuration from a JSON file
// with environment overrides. Catalog content is the catalog package's
// concern; this covers only the engine's runtime knobs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the runtime configuration.
type Config struct {
	// CatalogDir is the directory of YAML unit definitions.
	CatalogDir string `json:"catalog_dir,omitempty"`

	// AuditDB is the SQLite path for the resolution audit trail.
	// Empty disables auditing.
	AuditDB string `json:"audit_db,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// WatchDebounceMS is the quiet period before a catalog reload.
	WatchDebounceMS int `json:"watch_debounce_ms,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		CatalogDir:      "catalog",
		LogLevel:        "info",
		WatchDebounceMS: 500,
	}
}

// Load reads a config file, fills defaults for absent fields, and
// applies environment overrides. A missing file is not an error: the
// defaults (plus overrides) are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		applyDefaults(cfg)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.CatalogDir == "" {
		cfg.CatalogDir = def.CatalogDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.WatchDebounceMS == 0 {
		cfg.WatchDebounceMS = def.WatchDebounceMS
	}
}

// applyEnvOverrides lets DIRIGENT_* variables override file values.
func applyEnvOverrides(cfg *Config) {
	if dir := os.Getenv("DIRIGENT_CATALOG_DIR"); dir != "" {
		cfg.CatalogDir = dir
	}
	if db := os.Getenv("DIRIGENT_AUDIT_DB"); db != "" {
		cfg.AuditDB = db
	}
	if level := os.Getenv("DIRIGENT_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if ms := os.Getenv("DIRIGENT_WATCH_DEBOUNCE_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 {
			cfg.WatchDebounceMS = v
		}
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn, or error)", c.LogLevel)
	}
	if c.WatchDebounceMS < 0 {
		return fmt.Errorf("watch_debounce_ms must be non-negative, got %d", c.WatchDebounceMS)
	}
	return nil
}

// WatchDebounce returns the debounce as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}
