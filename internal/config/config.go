// Package config loads tool configuration from edacad.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the tool configuration. Zero values fall back to the
// defaults from Default.
type Config struct {
	// KicadCLI is the kicad-cli binary used for rule checks.
	KicadCLI string `toml:"kicad_cli"`

	Checker CheckerConfig `toml:"checker"`
}

// CheckerConfig controls rule-check report handling.
type CheckerConfig struct {
	// Level is the minimum severity kept in reports: ignore, warning
	// or error.
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		KicadCLI: "kicad-cli",
		Checker:  CheckerConfig{Level: "ignore"},
	}
}

// Load reads configuration from path. An empty path searches
// ./edacad.toml and then the user config directory.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = findConfig()
		if path == "" {
			return cfg, nil
		}
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	if cfg.KicadCLI == "" {
		cfg.KicadCLI = "kicad-cli"
	}
	switch cfg.Checker.Level {
	case "", "ignore", "warning", "error":
	default:
		return nil, fmt.Errorf("invalid checker level %q in %s", cfg.Checker.Level, path)
	}
	if cfg.Checker.Level == "" {
		cfg.Checker.Level = "ignore"
	}
	return cfg, nil
}

func findConfig() string {
	if _, err := os.Stat("edacad.toml"); err == nil {
		return "edacad.toml"
	}
	if dir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(dir, "edacad", "config.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
