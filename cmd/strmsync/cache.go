package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/strmsync/internal/database"
	"github.com/vmunix/strmsync/internal/library"
	"github.com/vmunix/strmsync/internal/metadata"
	"github.com/vmunix/strmsync/internal/runlock"
)

var (
	resetDecisions bool
	resetLookups   bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the decision and lookup caches",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache counts",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired TMDB lookup entries",
	Args:  cobra.NoArgs,
	RunE:  runCachePrune,
}

var cacheResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear cached decisions or lookups",
	Long:  "Clearing decisions forces every entry to be classified again on the next sync. Clearing lookups forces fresh TMDB requests.",
	Args:  cobra.NoArgs,
	RunE:  runCacheReset,
}

func init() {
	cacheResetCmd.Flags().BoolVar(&resetDecisions, "decisions", false, "Clear allow/exclude decisions")
	cacheResetCmd.Flags().BoolVar(&resetLookups, "lookups", false, "Clear cached TMDB responses")

	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cachePruneCmd, cacheResetCmd)
}

// withDatabase opens the configured database under the run lock.
func withDatabase(cmd *cobra.Command, fn func(ctx context.Context, db *sql.DB) error) error {
	cfg, _, err := loadConfig(false)
	if err != nil {
		return err
	}
	lock, err := runlock.Acquire(runlock.PathFor(cfg.Database.Path))
	if err != nil {
		return err
	}
	defer lock.Release()

	ctx := cmd.Context()
	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, db)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	return withDatabase(cmd, func(ctx context.Context, db *sql.DB) error {
		ds, err := library.NewStore(db).Stats(ctx)
		if err != nil {
			return err
		}
		ls, err := metadata.NewCache(db).Stats(ctx)
		if err != nil {
			return err
		}
		renderCounts(cmd.OutOrStdout(), "Cache", [][2]any{
			{"Existing media", ds.ExistingMedia},
			{"Decisions (allowed)", ds.Allowed},
			{"Decisions (excluded)", ds.Excluded},
			{"Decisions (unset)", ds.Unset},
			{"Lookups", ls.Entries},
			{"Lookups (expired)", ls.Expired},
		})
		return nil
	})
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	return withDatabase(cmd, func(ctx context.Context, db *sql.DB) error {
		n, err := metadata.NewCache(db).Prune(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired lookup entries\n", n)
		return nil
	})
}

func runCacheReset(cmd *cobra.Command, args []string) error {
	if !resetDecisions && !resetLookups {
		return fmt.Errorf("nothing to reset: pass --decisions and/or --lookups")
	}
	return withDatabase(cmd, func(ctx context.Context, db *sql.DB) error {
		if resetDecisions {
			n, err := library.NewStore(db).ResetDecisions(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d decisions\n", n)
		}
		if resetLookups {
			n, err := metadata.NewCache(db).Reset(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d lookup entries\n", n)
		}
		return nil
	})
}
