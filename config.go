package refract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/refract-dev/refract/internal/refactor"
)

// ConfigFileName is the project configuration file looked up at the
// project root.
const ConfigFileName = ".refract.toml"

// Config is the project configuration.
type Config struct {
	// Languages restricts indexing to the named languages. Empty means all
	// registered languages.
	Languages []string `toml:"languages"`
	// Ignore lists extra path substrings excluded from discovery, on top
	// of .gitignore and the built-in skip list.
	Ignore []string `toml:"ignore"`
	// Inline configures the inline-function safety gate.
	Inline InlineConfig `toml:"inline"`
}

// InlineConfig carries the inline safety-gate thresholds. Zero values fall
// back to the engine defaults.
type InlineConfig struct {
	MaxCallSites  int `toml:"max_call_sites"`
	MaxComplexity int `toml:"max_complexity"`
}

// DefaultConfig returns the configuration used when no project file exists.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig reads .refract.toml from root. A missing file yields the
// defaults, not an error.
func LoadConfig(root string) (*Config, error) {
	path := filepath.Join(root, ConfigFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// inlineOptions translates the config into engine options, leaving zero
// values to the refactor defaults.
func (c *Config) inlineOptions() refactor.InlineOptions {
	opts := refactor.DefaultInlineOptions()
	if c.Inline.MaxCallSites > 0 {
		opts.MaxCallSites = c.Inline.MaxCallSites
	}
	if c.Inline.MaxComplexity > 0 {
		opts.MaxComplexity = c.Inline.MaxComplexity
	}
	return opts
}

// ignored reports whether a discovered path contains one of the configured
// ignore patterns as a path segment.
func (c *Config) ignored(path string) bool {
	for _, pattern := range c.Ignore {
		if pattern == "" {
			continue
		}
		for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
			if seg == pattern {
				return true
			}
		}
	}
	return false
}
