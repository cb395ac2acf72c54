package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/strmsync/internal/library"
	"github.com/vmunix/strmsync/internal/logging"
)

var scanCmd = &cobra.Command{
	Use:   "scan [dir...]",
	Short: "Scan existing media directories and print what was found",
	Long:  "Runs the existing-media scan on the given directories, or on library.existing_dirs from the config, without touching the database.",
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	dirs := args
	log := logging.Discard()
	if len(dirs) == 0 {
		cfg, _, err := loadConfig(false)
		if err != nil {
			return err
		}
		l, closer, err := newLogger(cmd, cfg)
		if err != nil {
			return err
		}
		defer closer.Close()
		log = l
		dirs = cfg.Library.ExistingDirs
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no directories to scan: pass them as arguments or set library.existing_dirs")
	}

	media, stats, err := library.ScanAll(dirs, log)
	if err != nil {
		return err
	}
	renderCounts(cmd.OutOrStdout(), "Existing media", [][2]any{
		{"Movies", stats.Movies},
		{"Episodes", stats.Episodes},
		{"Documentaries", stats.Documentaries},
		{"Unreadable dirs", stats.Unreadable},
		{"Unique keys", len(media)},
	})
	return nil
}
