package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./config.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "strmsync", "config.toml")
}

// Discover finds the config file. An explicit path (from --config) must
// exist. Otherwise the search order is:
//  1. STRMSYNC_CONFIG environment variable
//  2. ./config.toml (current directory)
//  3. $XDG_CONFIG_HOME/strmsync/config.toml
//  4. ~/.config/strmsync/config.toml
func Discover(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config %s: %w", explicit, err)
		}
		return explicit, nil
	}
	if envPath := os.Getenv("STRMSYNC_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("STRMSYNC_CONFIG=%s: %w", envPath, err)
		}
		return envPath, nil
	}

	paths := []string{"./config.toml", DefaultPath()}
	if home, err := os.UserHomeDir(); err == nil {
		fallback := filepath.Join(home, ".config", "strmsync", "config.toml")
		if fallback != paths[1] {
			paths = append(paths, fallback)
		}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("config not found, checked: %s", strings.Join(paths, ", "))
}
