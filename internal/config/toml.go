// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analyze AnalyzeConfig `toml:"analyze"`
	Bench   BenchConfig   `toml:"bench"`
}

// AnalyzeConfig maps analysis settings.
type AnalyzeConfig struct {
	Top       *int    `toml:"top"`
	Normalize *bool   `toml:"normalize"`
	Plot      *bool   `toml:"plot"`
	Fold      *bool   `toml:"fold"`
	Workers   *int    `toml:"workers"`
	Tables    *string `toml:"tables"`
	Save      *bool   `toml:"save"`
}

// BenchConfig maps benchmark settings.
type BenchConfig struct {
	Lengths  []int   `toml:"lengths"`
	Trials   *int    `toml:"trials"`
	Wordlist *string `toml:"wordlist"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
