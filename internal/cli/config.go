package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when --config is
// not given. A missing default file is not an error.
const DefaultConfigFile = "quarry.yaml"

// Config holds project settings shared by every command.
type Config struct {
	// Database is the SQLite database path used by query, init and models.
	Database string `yaml:"database,omitempty"`

	// Dialect selects the compiled dialect: mysql or sqlite.
	Dialect string `yaml:"dialect,omitempty"`

	// Language is the current language; Languages lists the available ones.
	Language  string   `yaml:"language,omitempty"`
	Languages []string `yaml:"languages,omitempty"`

	// MetadataPaths are the descriptor search paths, in lookup order.
	// Relative paths are resolved against the config file's directory.
	MetadataPaths []string `yaml:"metadata_paths,omitempty"`
}

// DefaultConfig returns the settings used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Database:      "quarry.db",
		Dialect:       "sqlite",
		Language:      "en",
		MetadataPaths: []string{"models"},
	}
}

// LoadConfig reads a config file over the defaults. Unknown keys are
// rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, p := range cfg.MetadataPaths {
		if !filepath.IsAbs(p) {
			cfg.MetadataPaths[i] = filepath.Join(base, p)
		}
	}
	if cfg.Database != "" && cfg.Database != ":memory:" && !filepath.IsAbs(cfg.Database) {
		cfg.Database = filepath.Join(base, cfg.Database)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// resolveConfig loads path, or the default file when path is empty and
// the default file exists, or the defaults.
func resolveConfig(path string) (*Config, error) {
	if path != "" {
		return LoadConfig(path)
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return LoadConfig(DefaultConfigFile)
	}
	return DefaultConfig(), nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if len(c.MetadataPaths) == 0 {
		return fmt.Errorf("metadata_paths must list at least one path")
	}
	switch c.Dialect {
	case "", "mysql", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unknown dialect %q (expected mysql or sqlite)", c.Dialect)
	}
	return nil
}
