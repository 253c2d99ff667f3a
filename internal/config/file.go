package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	configDirName  = ".config/idlerig"
	configFileName = "config.toml"
)

// Dir returns ~/.config/idlerig
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(homeDir, configDirName), nil
}

// DefaultPath returns the config file location used when --config is not given
func DefaultPath() string {
	dir, err := Dir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(dir, configFileName)
}

// LoadFile decodes a TOML file over cfg. A missing file is not an error.
func LoadFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return &Error{Field: path, Reason: err.Error()}
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return &Error{Field: path, Reason: "unknown key " + undecoded[0].String()}
	}

	return nil
}

// Load builds a Config from defaults, the TOML file at path and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := LoadFile(path, cfg); err != nil {
		return nil, err
	}
	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as TOML, creating the parent directory
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.Wrap(err, "failed to open config file")
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	return nil
}
