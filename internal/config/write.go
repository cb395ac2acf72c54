package config

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

//go:embed default_config.toml
var defaultConfig string

// DefaultConfig returns the annotated example configuration.
func DefaultConfig() string {
	return defaultConfig
}

// WriteDefault writes the example config to the specified path.
// Creates parent directories if needed and refuses to overwrite.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfig), 0o600)
}

// Encode serializes the config to TOML. Secrets are masked so the output
// is safe to print.
func (c *Config) Encode(w io.Writer) error {
	masked := *c
	masked.TMDB.APIKey = mask(c.TMDB.APIKey)
	masked.MediaServer.APIKey = mask(c.MediaServer.APIKey)
	return toml.NewEncoder(w).Encode(masked)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
