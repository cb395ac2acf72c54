package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/strmsync/internal/config"
)

var initForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an annotated default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution without running a sync.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configTestCmd, configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.WriteDefault(path, initForce); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	explicit := configPath
	if len(args) > 0 {
		explicit = args[0]
	}
	path, err := config.Discover(explicit)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(out, configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(out, cfg)

	var warnings []string
	for _, msg := range cfg.Validate() {
		if strings.Contains(msg, ": warning: ") {
			warnings = append(warnings, msg)
		}
	}
	if len(warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
	fmt.Fprintln(out, "\nConfiguration valid!")
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if len(e.Errors) > 0 {
		fmt.Fprintln(w, "Validation errors:")
		for _, err := range e.Errors {
			fmt.Fprintf(w, "  - %s\n", err)
		}
		fmt.Fprintln(w)
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	tmdb := "disabled"
	if cfg.TMDB.APIKey != "" {
		tmdb = cfg.TMDB.BaseURL
	}
	mediaServer := "none"
	if cfg.MediaServer.URL != "" {
		mediaServer = cfg.MediaServer.URL
	}
	rows := [][]string{
		{"Playlist", cfg.Playlist.Source},
		{"Output", fmt.Sprintf("%s (*.%s)", cfg.Output.Dir, cfg.Output.Extension)},
		{"Existing dirs", strings.Join(cfg.Library.ExistingDirs, ", ")},
		{"Database", cfg.Database.Path},
		{"TMDB", tmdb},
		{"Movie countries", strings.Join(cfg.Filter.AllowedMovieCountries, ", ")},
		{"TV countries", strings.Join(cfg.Filter.AllowedTVCountries, ", ")},
		{"Languages", fmt.Sprintf("%s (excluded: %s)", cfg.Filter.TargetLanguage, cfg.Filter.ExcludedLanguage)},
		{"Workers", fmt.Sprint(cfg.Sync.Workers.Count())},
		{"Media server", mediaServer},
	}
	renderTable(w, "Configuration summary", []string{"Setting", "Value"}, rows, nil)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(false)
	if err != nil {
		return err
	}
	return cfg.Encode(cmd.OutOrStdout())
}
