// Package config loads the biotree configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/biotree/pkg/layout"
	"github.com/matzehuels/biotree/pkg/server"
	"github.com/matzehuels/biotree/pkg/storage"
)

// Config holds biotree configuration.
type Config struct {
	Storage storage.Config `toml:"storage"`
	Layout  LayoutConfig   `toml:"layout"`
	Server  ServerConfig   `toml:"server"`
	Dataset DatasetConfig  `toml:"dataset"`
}

// LayoutConfig controls the generated initial layout.
type LayoutConfig struct {
	HorizontalGap float64 `toml:"horizontal_gap"`
	VerticalGap   float64 `toml:"vertical_gap"`
	BranchT       float64 `toml:"branch_t"`
}

// Options converts the section to layout options.
func (c LayoutConfig) Options() layout.Options {
	return layout.Options{HorizontalGap: c.HorizontalGap, VerticalGap: c.VerticalGap, BranchT: c.BranchT}
}

// ServerConfig controls `biotree serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DatasetConfig selects the taxonomy the initial layout is built from.
type DatasetConfig struct {
	Path string `toml:"path"` // empty means the bundled animal kingdom
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: storage.DefaultConfig(),
		Layout: LayoutConfig{
			HorizontalGap: layout.DefaultHorizontalGap,
			VerticalGap:   layout.DefaultVerticalGap,
			BranchT:       layout.DefaultBranchT,
		},
		Server: ServerConfig{Addr: server.DefaultAddr},
	}
}

// ConfigDir returns the biotree config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "biotree")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path, or the default path when empty.
// A missing file yields the defaults; a malformed one is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, or the default path when empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
