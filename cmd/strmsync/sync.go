package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vmunix/strmsync/internal/backoff"
	"github.com/vmunix/strmsync/internal/catalog"
	"github.com/vmunix/strmsync/internal/config"
	"github.com/vmunix/strmsync/internal/database"
	"github.com/vmunix/strmsync/internal/library"
	"github.com/vmunix/strmsync/internal/mediaserver"
	"github.com/vmunix/strmsync/internal/metadata"
	"github.com/vmunix/strmsync/internal/playlist"
	"github.com/vmunix/strmsync/internal/reconcile"
	"github.com/vmunix/strmsync/internal/runlock"
	"github.com/vmunix/strmsync/internal/tmdb"
)

var (
	syncDryRun  bool
	syncWorkers int
	syncSource  string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the playlist with the pointer-file tree",
	Long: `Parses the playlist, skips titles already in the local library, classifies
new titles through TMDB, writes pointer files for allowed titles, and removes
pointer files that are no longer wanted.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Classify and report without writing or persisting anything")
	syncCmd.Flags().IntVar(&syncWorkers, "workers", 0, "Worker count (default: sync.workers from config)")
	syncCmd.Flags().StringVar(&syncSource, "playlist", "", "Playlist path or URL (default: playlist.source from config)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(true)
	if err != nil {
		return err
	}
	if syncSource != "" {
		cfg.Playlist.Source = syncSource
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.Output.DryRun = syncDryRun
	}
	if syncWorkers > 0 {
		cfg.Sync.Workers = config.Workers(syncWorkers)
	}

	log, closer, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	log = log.With("run_id", uuid.NewString())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lock, err := runlock.Acquire(runlock.PathFor(cfg.Database.Path))
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn("failed to release run lock", "error", err)
		}
	}()

	summary, err := syncOnce(ctx, cfg, log)
	if err != nil {
		return err
	}
	printSummary(cmd, summary)

	if !cfg.Output.DryRun && cfg.MediaServer.URL != "" {
		emby := mediaserver.NewEmby(cfg.MediaServer.URL, cfg.MediaServer.APIKey, log)
		if err := emby.Refresh(ctx); err != nil {
			log.Warn("media server refresh failed", "error", err)
		}
	}
	return nil
}

// syncOnce runs one full reconciliation against cfg.
func syncOnce(ctx context.Context, cfg *config.Config, log *slog.Logger) (reconcile.Summary, error) {
	log.Info("starting sync", "source", cfg.Playlist.Source, "output", cfg.Output.Dir, "dry_run", cfg.Output.DryRun)

	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		return reconcile.Summary{}, err
	}
	defer db.Close()

	path, cleanup, err := playlist.Open(ctx, cfg.Playlist.Source, playlist.NewFetcher(log))
	if err != nil {
		return reconcile.Summary{}, fmt.Errorf("open playlist: %w", err)
	}
	defer cleanup()

	entries, _, err := playlist.NewParser(parserRules(cfg), log).ParseFile(path)
	if err != nil {
		return reconcile.Summary{}, fmt.Errorf("parse playlist: %w", err)
	}

	existing, _, err := library.ScanAll(cfg.Library.ExistingDirs, log)
	if err != nil {
		return reconcile.Summary{}, fmt.Errorf("scan existing media: %w", err)
	}

	client := newTMDBClient(cfg, metadata.NewCache(db), log)
	classifier := tmdb.NewClassifier(client, tmdb.Policy{
		AllowedMovieCountries: cfg.Filter.AllowedMovieCountries,
		AllowedTVCountries:    cfg.Filter.AllowedTVCountries,
		TargetLanguage:        cfg.Filter.TargetLanguage,
		ExcludedLanguage:      cfg.Filter.ExcludedLanguage,
	}, log)

	engine := reconcile.New(library.NewStore(db), classifier, reconcile.Options{
		OutputDir:     cfg.Output.Dir,
		Workers:       cfg.Sync.Workers.Count(),
		DryRun:        cfg.Output.DryRun,
		Extension:     cfg.Output.Extension,
		ReportPath:    cfg.Output.Report,
		ExistingMedia: existing,
	}, log)
	return engine.Run(ctx, entries)
}

func newTMDBClient(cfg *config.Config, cache tmdb.LookupCache, log *slog.Logger) *tmdb.Client {
	policy := backoff.DefaultPolicy()
	policy.Attempts = cfg.TMDB.MaxRetries
	policy.Max = cfg.TMDB.MaxBackoff

	return tmdb.NewClient(cfg.TMDB.APIKey,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithLimiter(tmdb.NewLimiter(cfg.TMDB.RateLimit)),
		tmdb.WithCache(cache),
		tmdb.WithCacheTTL(cfg.TMDB.CacheTTL),
		tmdb.WithRetry(policy),
		tmdb.WithLogger(log),
	)
}

func parserRules(cfg *config.Config) playlist.Rules {
	return playlist.Rules{
		MovieGroups:       cfg.Groups.Movie,
		TVGroups:          cfg.Groups.TV,
		DocumentaryGroups: cfg.Groups.Documentary,
		ReplayGroups:      cfg.Groups.Replay,
		Ignore: map[catalog.Category][]string{
			catalog.Movie:       cfg.Ignore.Movies,
			catalog.TVEpisode:   cfg.Ignore.TVShows,
			catalog.Documentary: cfg.Ignore.Documentaries,
		},
	}
}

func printSummary(cmd *cobra.Command, s reconcile.Summary) {
	title := "Sync summary"
	if s.DryRun {
		title += " (dry run)"
	}
	renderCounts(cmd.OutOrStdout(), title, [][2]any{
		{"Parsed", s.Parsed},
		{"Dropped", s.Dropped},
		{"Unique", s.Unique},
		{"Locally present", s.LocallyPresent},
		{"Cache hits (allowed)", s.CacheHitAllowed},
		{"Cache hits (excluded)", s.CacheHitExcluded},
		{"Classified (allowed)", s.ClassifiedAllowed},
		{"Classified (excluded)", s.ClassifiedExcluded},
		{"Written", s.Written},
		{"Skipped", s.Skipped},
		{"Excluded", s.Excluded},
		{"Failed", s.Failed},
		{"Removed files", s.RemovedFiles},
		{"Removed dirs", s.RemovedDirs},
		{"Duration", s.Duration.Round(time.Millisecond)},
	})
}
