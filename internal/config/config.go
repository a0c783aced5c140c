package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/stronganchortech/bible-linker/internal/sites"
	"github.com/stronganchortech/bible-linker/internal/transform"
)

const defaultConfigPath = "/etc/bible-linker/config.json"

// Config matches the JSON schema of the service configuration file.
type Config struct {
	Version      string   `json:"version"`
	Site         string   `json:"site"`
	Database     string   `json:"database"`
	ContentTypes []string `json:"content_types"`
	OutputDir    string   `json:"output_dir"`
}

// Default returns the configuration used when no file sets a field.
func Default() *Config {
	return &Config{
		Version:      transform.DefaultVersion,
		Site:         string(transform.DefaultSite),
		Database:     "/var/lib/bible-linker/content.db",
		ContentTypes: []string{"post", "page"},
	}
}

func DefaultPath() string {
	if path := os.Getenv("BIBLELINKER_CONFIG_FILE"); path != "" {
		return path
	}
	return defaultConfigPath
}

// Load reads the JSON file at path over the defaults, applies environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides the version and site from BIBLELINKER_VERSION and
// BIBLELINKER_SITE when they are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("BIBLELINKER_VERSION"); v != "" {
		c.Version = v
	}
	if s := os.Getenv("BIBLELINKER_SITE"); s != "" {
		c.Site = s
	}
}

func (c *Config) Validate() error {
	if c.Version == "" {
		return errors.New("config version is required")
	}
	if c.Database == "" {
		return errors.New("config database is required")
	}
	return nil
}

// KnownSite reports whether links for the configured site resolve to a real
// URL. Unknown sites are accepted and link to a placeholder.
func (c *Config) KnownSite() bool {
	return sites.Known(sites.Site(c.Site))
}

// Handles reports whether items of the given content type are rewritten on save.
func (c *Config) Handles(contentType string) bool {
	return slices.Contains(c.ContentTypes, contentType)
}

// Linking returns the per-invocation rewrite configuration.
func (c *Config) Linking() transform.Config {
	return transform.Config{Version: c.Version, Site: sites.Site(c.Site)}
}

func (c *Config) OutputPath() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return filepath.Join(filepath.Dir(c.Database), "html")
}
