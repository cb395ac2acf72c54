package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"text": true, "json": true,
}

var countryCode = regexp.MustCompile(`^[A-Z]{2}$`)

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Playlist.Source == "" {
		errs = append(errs, "playlist.source: required")
	}
	if c.Output.Dir == "" {
		errs = append(errs, "output.dir: required")
	}
	if c.TMDB.APIKey == "" {
		errs = append(errs, "tmdb.api_key: required")
	}
	if c.Database.Path == "" {
		errs = append(errs, "database.path: required")
	}

	ext := c.Output.Extension
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		errs = append(errs, fmt.Sprintf("output.extension: must be a bare extension, got %q", ext))
	}

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if !validLogFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format: must be text or json; got %q", c.Log.Format))
	}

	for _, cc := range c.Filter.AllowedMovieCountries {
		if !countryCode.MatchString(cc) {
			errs = append(errs, fmt.Sprintf("filter.allowed_movie_countries: %q is not an ISO 3166-1 alpha-2 code", cc))
		}
	}
	for _, cc := range c.Filter.AllowedTVCountries {
		if !countryCode.MatchString(cc) {
			errs = append(errs, fmt.Sprintf("filter.allowed_tv_countries: %q is not an ISO 3166-1 alpha-2 code", cc))
		}
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"tmdb.rate_limit", c.TMDB.RateLimit},
		{"tmdb.cache_ttl", c.TMDB.CacheTTL},
		{"tmdb.max_backoff", c.TMDB.MaxBackoff},
	}
	for _, f := range durations {
		if f.d <= 0 {
			errs = append(errs, fmt.Sprintf("%s: must be positive, got %s", f.name, f.d))
		}
	}
	if c.TMDB.MaxRetries < 1 {
		errs = append(errs, fmt.Sprintf("tmdb.max_retries: must be at least 1, got %d", c.TMDB.MaxRetries))
	}

	if c.MediaServer.URL != "" && c.MediaServer.APIKey == "" {
		errs = append(errs, "mediaserver.api_key: required when mediaserver.url is set")
	}

	// Missing library roots are reported but do not stop a run.
	for _, dir := range c.Library.ExistingDirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("library.existing_dirs: warning: directory %q does not exist", dir))
		}
	}

	return errs
}

// Fatal filters out warnings, leaving the errors that must stop a run.
func Fatal(errs []string) []string {
	var out []string
	for _, e := range errs {
		if !strings.Contains(e, ": warning: ") {
			out = append(out, e)
		}
	}
	return out
}
