// Package reconcile turns a parsed playlist into a pointer-file tree,
// reusing cached decisions and classifying only what is new.
package reconcile

//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/strmsync/internal/catalog"
	"github.com/vmunix/strmsync/internal/library"
	"github.com/vmunix/strmsync/internal/tmdb"
)

// Store persists the inventory and the decision cache.
type Store interface {
	ReplaceExistingMedia(ctx context.Context, media library.ExistingMedia) error
	Decisions(ctx context.Context) (library.Decisions, error)
	ReplaceDecisions(ctx context.Context, decisions library.Decisions) error
}

// Classifier decides whether an entry belongs in the library.
type Classifier interface {
	Classify(ctx context.Context, e catalog.Entry) (tmdb.Verdict, error)
}

// Options configures a run.
type Options struct {
	OutputDir     string
	Workers       int // <= 0 means runtime.NumCPU()
	DryRun        bool
	Extension     string
	ReportPath    string
	ExistingMedia library.ExistingMedia
}

// State is where an entry ended up during a run.
type State int

const (
	StateParsed State = iota
	StateLocallyPresent
	StateCacheHitAllowed
	StateCacheHitExcluded
	StateNeedsClassification
	StateAllowed
	StateExcluded
	StateWritten
	StateSkipped
	StateNotWritten
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateLocallyPresent:
		return "locally_present"
	case StateCacheHitAllowed:
		return "cache_hit_allowed"
	case StateCacheHitExcluded:
		return "cache_hit_excluded"
	case StateNeedsClassification:
		return "needs_classification"
	case StateAllowed:
		return "allowed"
	case StateExcluded:
		return "excluded"
	case StateWritten:
		return "written"
	case StateSkipped:
		return "skipped"
	case StateNotWritten:
		return "not_written"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Summary counts what a run did.
type Summary struct {
	Parsed             int
	Dropped            int
	Unique             int
	LocallyPresent     int
	CacheHitAllowed    int
	CacheHitExcluded   int
	ClassifiedAllowed  int
	ClassifiedExcluded int
	Written            int
	Skipped            int
	Excluded           int
	Failed             int
	RemovedFiles       int
	RemovedDirs        int
	DryRun             bool
	Duration           time.Duration
}

// Allowed returns the number of entries that passed, from any source.
func (s Summary) Allowed() int {
	return s.LocallyPresent + s.CacheHitAllowed + s.ClassifiedAllowed
}

// Engine runs the reconciliation pipeline.
type Engine struct {
	store      Store
	classifier Classifier
	opts       Options
	log        *slog.Logger
}

// New creates an Engine.
func New(store Store, classifier Classifier, opts Options, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Extension == "" {
		opts.Extension = catalog.DefaultExtension
	}
	return &Engine{
		store:      store,
		classifier: classifier,
		opts:       opts,
		log:        log.With("component", "reconcile"),
	}
}

// item tracks one unique entry through the pipeline.
type item struct {
	entry  catalog.Entry
	key    catalog.Key
	state  State
	reason string
}

// run holds the mutable state shared by workers during one Run.
type run struct {
	mu       sync.Mutex
	summary  Summary
	newCache library.Decisions
}

func (r *run) record(key catalog.Key, d library.Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.Key = key
	r.newCache[key] = d
}

func (r *run) count(fn func(s *Summary)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.summary)
}

// Run reconciles entries against the store and the output tree. A canceled
// context aborts the run before anything is persisted.
func (e *Engine) Run(ctx context.Context, entries []catalog.Entry) (Summary, error) {
	start := time.Now()

	outputDir, err := filepath.Abs(e.opts.OutputDir)
	if err != nil {
		return Summary{}, fmt.Errorf("resolve output dir: %w", err)
	}

	valid := make([]catalog.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.URL == "" || entry.Key() == "" {
			e.log.Warn("dropping malformed entry", "title", entry.RawTitle, "category", entry.Category)
			continue
		}
		valid = append(valid, entry)
	}
	unique := Dedup(valid)

	r := &run{summary: Summary{
		Parsed:  len(entries),
		Dropped: len(entries) - len(valid),
		Unique:  len(unique),
		DryRun:  e.opts.DryRun,
	}}
	e.log.Info("deduplicated playlist", "parsed", len(entries), "unique", len(unique))

	existing := e.opts.ExistingMedia
	if existing == nil {
		existing = library.ExistingMedia{}
	}
	if !e.opts.DryRun {
		if err := e.store.ReplaceExistingMedia(ctx, existing); err != nil {
			return r.summary, fmt.Errorf("persist existing media: %w", err)
		}
	}

	snapshot, err := e.store.Decisions(ctx)
	if err != nil {
		return r.summary, fmt.Errorf("load decisions: %w", err)
	}
	r.newCache = maps.Clone(snapshot)
	if r.newCache == nil {
		r.newCache = library.Decisions{}
	}

	items := e.partition(unique, existing, snapshot, r)
	if err := e.classify(ctx, items, r); err != nil {
		return r.summary, err
	}
	if err := e.write(ctx, outputDir, items, existing, snapshot, r); err != nil {
		return r.summary, err
	}

	var excluded []catalog.Entry
	for _, it := range items {
		if it.state == StateExcluded {
			excluded = append(excluded, it.entry)
			r.record(it.key, library.Decision{URL: it.entry.URL, Allowed: boolPtr(false)})
		}
	}
	r.summary.Excluded = len(excluded)

	if err := ctx.Err(); err != nil {
		return r.summary, err
	}

	if e.opts.DryRun {
		e.log.Info("dry run, skipping persist and cleanup")
	} else {
		if err := e.store.ReplaceDecisions(ctx, r.newCache); err != nil {
			return r.summary, fmt.Errorf("persist decisions: %w", err)
		}
		stats, err := e.cleanup(outputDir, r.newCache)
		if err != nil {
			return r.summary, err
		}
		r.summary.RemovedFiles = stats.Files
		r.summary.RemovedDirs = stats.Dirs
	}

	if e.opts.ReportPath != "" {
		if err := WriteReport(e.opts.ReportPath, r.summary.Allowed(), excluded); err != nil {
			e.log.Warn("failed to write excluded report", "path", e.opts.ReportPath, "error", err)
		}
	}

	r.summary.Duration = time.Since(start)
	e.log.Info("sync complete",
		"written", r.summary.Written,
		"skipped", r.summary.Skipped,
		"excluded", r.summary.Excluded,
		"failed", r.summary.Failed,
		"removed_files", r.summary.RemovedFiles,
		"duration", r.summary.Duration)
	return r.summary, nil
}

func (e *Engine) partition(unique []catalog.Entry, existing library.ExistingMedia, snapshot library.Decisions, r *run) []*item {
	items := make([]*item, 0, len(unique))
	for _, entry := range unique {
		it := &item{entry: entry, key: entry.Key(), state: StateParsed}
		if _, ok := existing[it.key]; ok {
			it.state = StateLocallyPresent
			r.summary.LocallyPresent++
		} else if d, ok := snapshot[it.key]; ok && d.Decided() {
			if d.IsAllowed() {
				it.state = StateCacheHitAllowed
				r.summary.CacheHitAllowed++
			} else {
				it.state = StateCacheHitExcluded
				r.summary.CacheHitExcluded++
			}
		} else {
			it.state = StateNeedsClassification
		}
		items = append(items, it)
	}
	e.log.Info("partitioned entries",
		"locally_present", r.summary.LocallyPresent,
		"cache_allowed", r.summary.CacheHitAllowed,
		"cache_excluded", r.summary.CacheHitExcluded,
		"to_classify", len(items)-r.summary.LocallyPresent-r.summary.CacheHitAllowed-r.summary.CacheHitExcluded)
	return items
}

func (e *Engine) classify(ctx context.Context, items []*item, r *run) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for _, it := range items {
		switch it.state {
		case StateLocallyPresent, StateCacheHitAllowed:
			it.state = StateAllowed
			continue
		case StateCacheHitExcluded:
			it.state = StateExcluded
			continue
		}

		g.Go(func() error {
			v, err := e.classifier.Classify(gctx, it.entry)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				e.log.Warn("classification failed, excluding", "title", it.entry.RawTitle, "error", err)
				v.Allowed, v.Reason = false, err.Error()
			}
			it.reason = v.Reason
			if v.Allowed {
				it.state = StateAllowed
				r.count(func(s *Summary) { s.ClassifiedAllowed++ })
			} else {
				it.state = StateExcluded
				r.count(func(s *Summary) { s.ClassifiedExcluded++ })
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	return ctx.Err()
}

func (e *Engine) write(ctx context.Context, outputDir string, items []*item, existing library.ExistingMedia, snapshot library.Decisions, r *run) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for _, it := range items {
		if it.state != StateAllowed {
			continue
		}
		if _, ok := existing[it.key]; ok {
			it.state = StateSkipped
			r.record(it.key, library.Decision{URL: it.entry.URL, Allowed: boolPtr(true)})
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.writeOne(outputDir, it, snapshot[it.key], r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (e *Engine) writeOne(outputDir string, it *item, cached library.Decision, r *run) {
	rel, err := it.entry.TargetPath(e.opts.Extension)
	if err != nil {
		it.state = StateNotWritten
		e.log.Warn("no target path", "title", it.entry.RawTitle, "error", err)
		r.count(func(s *Summary) { s.Failed++ })
		return
	}
	target := filepath.Join(outputDir, rel)
	allowed := library.Decision{URL: it.entry.URL, Path: &target, Allowed: boolPtr(true)}

	if cached.URL == it.entry.URL && cached.Path != nil && *cached.Path == target && fileExists(target) {
		it.state = StateSkipped
		r.record(it.key, allowed)
		r.count(func(s *Summary) { s.Skipped++ })
		return
	}

	if e.opts.DryRun {
		same, err := holdsURL(target, it.entry.URL)
		if err != nil {
			e.log.Warn("cannot read existing pointer file", "path", target, "error", err)
		}
		if same {
			it.state = StateSkipped
			r.count(func(s *Summary) { s.Skipped++ })
			return
		}
		it.state = StateWritten
		e.log.Debug("would write", "path", target)
		r.count(func(s *Summary) { s.Written++ })
		return
	}

	written, err := writePointer(target, it.entry.URL)
	if err != nil {
		it.state = StateNotWritten
		e.log.Error("failed to write pointer file", "path", target, "error", err)
		r.count(func(s *Summary) { s.Failed++ })
		return
	}
	r.record(it.key, allowed)
	if written {
		it.state = StateWritten
		e.log.Debug("wrote pointer file", "path", target)
		r.count(func(s *Summary) { s.Written++ })
	} else {
		it.state = StateSkipped
		r.count(func(s *Summary) { s.Skipped++ })
	}
}

func (e *Engine) cleanup(outputDir string, cache library.Decisions) (CleanupStats, error) {
	if len(cache) == 0 {
		e.log.Info("decision cache is empty, skipping cleanup")
		return CleanupStats{}, nil
	}
	valid := make(map[string]bool, len(cache))
	for _, d := range cache {
		if d.Path != nil {
			valid[filepath.Clean(*d.Path)] = true
		}
	}
	stats, err := Cleanup(outputDir, valid, e.opts.Extension, e.log)
	if err != nil {
		return stats, fmt.Errorf("cleanup: %w", err)
	}
	return stats, nil
}

func boolPtr(v bool) *bool { return &v }
