// Package config loads galdi's optional configuration file. Its values
// only fill in flags the caller left unset on the command line; an
// explicit flag always wins over a config default.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the top-level shape of config.toml.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig holds the snapshot subcommand's persistent flag
// defaults.
type DefaultsConfig struct {
	ChecksumAlgorithm *string `toml:"checksum_algorithm"`
	Workers           *int    `toml:"workers"`
	MaxDepth          *int    `toml:"max_depth"`
}

const (
	appDirName     = "galdi"
	configFileName = "config.toml"
)

// ConfigPath resolves where the config file lives: under
// $XDG_CONFIG_HOME if set, otherwise under ~/.config. An empty return
// means neither could be determined, which Load treats the same as a
// missing file.
func ConfigPath() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, appDirName, configFileName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName, configFileName)
}

// Load parses the config file at ConfigPath. A file that does not exist
// is not an error: every caller wants an absent config to behave exactly
// like an empty one.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return Config{}, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}

	return cfg, nil
}
