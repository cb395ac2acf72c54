package reconcile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vmunix/strmsync/internal/catalog"
)

// ErrPathOutsideRoot is returned when a removal target escapes the output root.
var ErrPathOutsideRoot = os.ErrPermission

// CleanupStats counts what cleanup removed.
type CleanupStats struct {
	Files int
	Dirs  int
}

// Cleanup removes pointer files under root whose absolute path is not in
// valid, then prunes directories left empty or holding only .nfo sidecars.
// The root and the category roots directly below it are never removed.
func Cleanup(root string, valid map[string]bool, ext string, log *slog.Logger) (CleanupStats, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return CleanupStats{}, err
	}
	absRoot = filepath.Clean(absRoot)
	suffix := "." + strings.ToLower(strings.TrimPrefix(ext, "."))

	var (
		stats CleanupStats
		dirs  []string
	)
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == absRoot {
				return fs.SkipAll
			}
			log.Warn("cannot read path during cleanup", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != absRoot {
				dirs = append(dirs, path)
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), suffix) || valid[path] {
			return nil
		}
		if err := removeUnder(absRoot, path, false); err != nil {
			log.Warn("failed to remove orphaned pointer file", "path", path, "error", err)
			return nil
		}
		log.Debug("removed orphaned pointer file", "path", path)
		stats.Files++
		return nil
	})
	if err != nil {
		return stats, err
	}

	// WalkDir visits parents first, so walking backwards handles children
	// before the directories that contain them.
	for _, dir := range slices.Backward(dirs) {
		if isProtected(absRoot, dir) {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		if !prunable(entries) {
			continue
		}
		if err := removeUnder(absRoot, dir, true); err != nil {
			log.Warn("failed to remove directory", "path", dir, "error", err)
			continue
		}
		log.Debug("removed directory", "path", dir)
		stats.Dirs++
	}

	log.Info("cleanup complete", "files_removed", stats.Files, "dirs_removed", stats.Dirs)
	return stats, nil
}

// prunable reports whether a directory is empty or holds only .nfo files.
func prunable(entries []os.DirEntry) bool {
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".nfo") {
			return false
		}
	}
	return true
}

func isProtected(root, dir string) bool {
	if dir == root {
		return true
	}
	return filepath.Dir(dir) == root && slices.Contains(catalog.ProtectedRoots, filepath.Base(dir))
}

// removeUnder deletes path after checking that it lies strictly below root.
func removeUnder(root, path string, all bool) error {
	clean := filepath.Clean(path)
	if !strings.HasPrefix(clean, root+string(filepath.Separator)) {
		return fmt.Errorf("%s: %w", path, ErrPathOutsideRoot)
	}
	if all {
		return os.RemoveAll(clean)
	}
	return os.Remove(clean)
}
