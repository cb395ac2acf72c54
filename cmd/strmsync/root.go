package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/strmsync/internal/config"
	"github.com/vmunix/strmsync/internal/logging"
)

var version = "dev"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "strmsync",
	Short: "Sync an IPTV playlist into a pointer-file library",
	Long: `strmsync - turn an IPTV playlist into a media library

Parses an extended M3U playlist, filters entries by market and language
using TMDB, and writes one pointer file per title in a layout that Emby,
Jellyfin, and similar servers can scan.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: discovered)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("strmsync {{.Version}}\n")
}

// loadConfig discovers and loads the config file.
func loadConfig(validate bool) (*config.Config, string, error) {
	path, err := config.Discover(configPath)
	if err != nil {
		return nil, "", err
	}
	var cfg *config.Config
	if validate {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadWithoutValidation(path)
	}
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// newLogger builds the command logger from cfg, writing to the command's
// error stream.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, io.Closer, error) {
	lc := logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}
	if logLevel != "" {
		lc.Level = logLevel
	}
	log, closer, err := logging.New(lc, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}
	return log, closer, nil
}
