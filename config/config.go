// Package config loads analyzer options from coolsemant.toml or a YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no -config flag is
// given.
const DefaultFile = "coolsemant.toml"

// Override return policies.
const (
	OverrideIgnore = "ignore" // only formal types and count must match
	OverrideExact  = "exact"  // the return type must match as well
)

type Config struct {
	EntryClass          string `toml:"entry_class" yaml:"entry_class"`
	EntryMethod         string `toml:"entry_method" yaml:"entry_method"`
	RequireNullaryEntry bool   `toml:"require_nullary_entry" yaml:"require_nullary_entry"`
	OverrideReturns     string `toml:"override_returns" yaml:"override_returns"`
	CheckAttributes     bool   `toml:"check_attributes" yaml:"check_attributes"`
	LogLevel            string `toml:"log_level" yaml:"log_level"`
}

func Default() Config {
	return Config{
		EntryClass:          "Main",
		EntryMethod:         "main",
		RequireNullaryEntry: true,
		OverrideReturns:     OverrideIgnore,
		CheckAttributes:     true,
		LogLevel:            "info",
	}
}

// Load reads path on top of the defaults. Files ending in .yml or .yaml are
// YAML, anything else TOML. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = toml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.EntryClass == "" || c.EntryMethod == "" {
		return fmt.Errorf("config: entry_class and entry_method must be set")
	}
	switch c.OverrideReturns {
	case OverrideIgnore, OverrideExact:
	default:
		return fmt.Errorf("config: override_returns must be %q or %q, got %q",
			OverrideIgnore, OverrideExact, c.OverrideReturns)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lvl, fmt.Errorf("config: log_level: %w", err)
	}
	return lvl, nil
}
