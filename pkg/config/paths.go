package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigDir returns the path to the ClusterView config directory (~/.clusterview).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".clusterview"), nil
}

// EnsureConfigDir creates the config directory if it does not exist.
func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return dir, nil
}

// DefaultPath returns the path to the config file for the given file name
// (e.g., "clusterview.yaml"). If name is already an absolute path, it is
// returned as-is. The file does not have to exist; callers should treat a
// missing file as "run with defaults".
func DefaultPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
