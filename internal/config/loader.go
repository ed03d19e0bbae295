package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// FileName is the config file name inside the home directory.
const FileName = "winmgr.json"

// EnvConfigPath overrides the config location when set.
const EnvConfigPath = "WINMGR_CONFIG"

// LoadResult carries the loaded config and how it was obtained.
type LoadResult struct {
	Config *Config
	Path   string
	// Created is set when no file existed and the default was used.
	Created bool
	// WriteErr holds the failure to persist the default config, if any.
	// The in-memory default is still usable.
	WriteErr error
}

// DefaultConfigPath returns $WINMGR_CONFIG or $HOME/winmgr.json.
func DefaultConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, FileName), nil
}

// Load reads the configuration from the standard location.
func Load() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates the config at path. A missing file yields
// the default config, which is written back to path.
func LoadFromPath(path string) (*LoadResult, error) {
	exists, err := pathExists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		cfg := DefaultConfig()
		return &LoadResult{
			Config:   cfg,
			Path:     path,
			Created:  true,
			WriteErr: cfg.SaveTo(path),
		}, nil
	}

	cfg, err := ReadFromPath(path)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, Path: path}, nil
}

// ReadFromPath parses and validates the config at path without creating it.
// A missing file is an error matching fs.ErrNotExist.
func ReadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			ce.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// SaveTo validates c and writes it to path, creating the parent directory.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	// A regular file where a parent directory should be also means no config.
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return false, nil
	}
	return false, err
}
