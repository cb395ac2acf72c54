// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Playlist    PlaylistConfig    `toml:"playlist"`
	Output      OutputConfig      `toml:"output"`
	Library     LibraryConfig     `toml:"library"`
	Database    DatabaseConfig    `toml:"database"`
	TMDB        TMDBConfig        `toml:"tmdb"`
	Filter      FilterConfig      `toml:"filter"`
	Groups      GroupsConfig      `toml:"groups"`
	Ignore      IgnoreConfig      `toml:"ignore"`
	Sync        SyncConfig        `toml:"sync"`
	MediaServer MediaServerConfig `toml:"mediaserver"`
	Log         LogConfig         `toml:"log"`
}

type PlaylistConfig struct {
	Source string `toml:"source"` // file path or http(s) URL
}

type OutputConfig struct {
	Dir       string `toml:"dir"`
	Extension string `toml:"extension"`
	DryRun    bool   `toml:"dry_run"`
	Report    string `toml:"report"`
}

type LibraryConfig struct {
	ExistingDirs []string `toml:"existing_dirs"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type TMDBConfig struct {
	APIKey     string        `toml:"api_key"`
	BaseURL    string        `toml:"base_url"`
	RateLimit  time.Duration `toml:"rate_limit"`
	CacheTTL   time.Duration `toml:"cache_ttl"`
	MaxRetries int           `toml:"max_retries"`
	MaxBackoff time.Duration `toml:"max_backoff"`
}

type FilterConfig struct {
	AllowedMovieCountries []string `toml:"allowed_movie_countries"`
	AllowedTVCountries    []string `toml:"allowed_tv_countries"`
	TargetLanguage        string   `toml:"target_language"`
	ExcludedLanguage      string   `toml:"excluded_language"`
}

// GroupsConfig maps group-title keywords to categories.
type GroupsConfig struct {
	Movie       []string `toml:"movie"`
	TV          []string `toml:"tv"`
	Documentary []string `toml:"documentary"`
	Replay      []string `toml:"replay"`
}

// IgnoreConfig lists title substrings dropped per category.
type IgnoreConfig struct {
	Movies        []string `toml:"movies"`
	TVShows       []string `toml:"tvshows"`
	Documentaries []string `toml:"documentaries"`
}

type SyncConfig struct {
	Workers Workers `toml:"workers"`
}

type MediaServerConfig struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Workers is a worker count. Zero, or "max" in the config file, means one
// worker per CPU.
type Workers int

// UnmarshalTOML accepts an integer or the string "max".
func (w *Workers) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case int64:
		if val < 0 {
			return fmt.Errorf("workers: must not be negative, got %d", val)
		}
		*w = Workers(val)
		return nil
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		if s == "max" || s == "" {
			*w = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return fmt.Errorf("workers: must be a positive integer or \"max\", got %q", val)
		}
		*w = Workers(n)
		return nil
	default:
		return fmt.Errorf("workers: unsupported value %v", v)
	}
}

// MarshalText writes "max" for the per-CPU default.
func (w Workers) MarshalText() ([]byte, error) {
	if w <= 0 {
		return []byte("max"), nil
	}
	return []byte(strconv.Itoa(int(w))), nil
}

// Count resolves the configured value to a concrete worker count.
func (w Workers) Count() int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return int(w)
}

// Load reads, parses, and validates the configuration file. Warnings from
// Validate do not fail the load.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}
	if errs := Fatal(cfg.Validate()); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file and applies
// defaults. Unresolved environment variables are still an error.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Output.Extension == "" {
		c.Output.Extension = "ptr"
	}
	c.Output.Extension = strings.TrimPrefix(c.Output.Extension, ".")
	if c.Database.Path == "" {
		c.Database.Path = "./data/strmsync.db"
	}

	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = "https://api.themoviedb.org"
	}
	if c.TMDB.RateLimit == 0 {
		c.TMDB.RateLimit = 250 * time.Millisecond
	}
	if c.TMDB.CacheTTL == 0 {
		c.TMDB.CacheTTL = 7 * 24 * time.Hour
	}
	if c.TMDB.MaxRetries == 0 {
		c.TMDB.MaxRetries = 5
	}
	if c.TMDB.MaxBackoff == 0 {
		c.TMDB.MaxBackoff = 30 * time.Second
	}

	if c.Filter.AllowedMovieCountries == nil {
		c.Filter.AllowedMovieCountries = []string{"US"}
	}
	if c.Filter.AllowedTVCountries == nil {
		c.Filter.AllowedTVCountries = []string{"US"}
	}
	if c.Filter.TargetLanguage == "" {
		c.Filter.TargetLanguage = "en"
	}
	if c.Filter.ExcludedLanguage == "" {
		c.Filter.ExcludedLanguage = "ja"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
}
