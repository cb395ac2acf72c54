package library

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vmunix/strmsync/internal/catalog"
	"github.com/vmunix/strmsync/pkg/title"
)

// VideoExtensions are the file extensions counted as local media.
var VideoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".flv": true,
	".wmv": true, ".mpg": true, ".mpeg": true, ".m4v": true, ".webm": true,
}

var (
	docDirs = map[string]bool{"documentaries": true, "documentary": true, "docs": true}
	tvDirs  = map[string]bool{"tv shows": true, "tv_shows": true, "series": true, "tv": true, "television": true}

	yearInName = regexp.MustCompile(`\(\d{4}\)`)
)

// ScanStats counts what a scan found.
type ScanStats struct {
	Movies        int
	Episodes      int
	Documentaries int
	Unreadable    int
}

// Total returns the number of media files recognized.
func (s ScanStats) Total() int {
	return s.Movies + s.Episodes + s.Documentaries
}

func (s *ScanStats) add(o ScanStats) {
	s.Movies += o.Movies
	s.Episodes += o.Episodes
	s.Documentaries += o.Documentaries
	s.Unreadable += o.Unreadable
}

// ScanExistingMedia walks root, following symlinked directories, and
// derives a key for every video file found.
func ScanExistingMedia(root string, log *slog.Logger) (ExistingMedia, ScanStats, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log = log.With("component", "scan")

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, ScanStats{}, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, ScanStats{}, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, ScanStats{}, fmt.Errorf("scan %s: not a directory", root)
	}

	s := &scanner{
		media:   make(ExistingMedia),
		visited: map[string]bool{resolved: true},
		log:     log,
	}
	s.walk(resolved, nil)

	log.Info("local media scan complete",
		"root", root,
		"movies", s.stats.Movies,
		"episodes", s.stats.Episodes,
		"documentaries", s.stats.Documentaries)
	return s.media, s.stats, nil
}

// ScanAll scans every root and merges the results. Later roots overwrite
// keys found in earlier ones. Missing roots are skipped with a warning.
func ScanAll(roots []string, log *slog.Logger) (ExistingMedia, ScanStats, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	merged := make(ExistingMedia)
	var total ScanStats
	for _, root := range roots {
		media, stats, err := ScanExistingMedia(root, log)
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("existing media directory not found, skipping", "root", root)
			continue
		}
		if err != nil {
			return nil, ScanStats{}, err
		}
		for k, c := range media {
			merged[k] = c
		}
		total.add(stats)
	}
	return merged, total, nil
}

type scanner struct {
	media   ExistingMedia
	stats   ScanStats
	visited map[string]bool
	log     *slog.Logger
}

// walk visits dir; dirs holds the directory names between the root and dir.
func (s *scanner) walk(dir string, dirs []string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.stats.Unreadable++
		s.log.Warn("cannot read directory", "path", dir, "error", err)
		return
	}
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		isDir := e.IsDir()
		if e.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(full)
			if err != nil {
				s.log.Debug("dangling symlink", "path", full)
				continue
			}
			isDir = info.IsDir()
		}

		if isDir {
			target, err := filepath.EvalSymlinks(full)
			if err != nil || s.visited[target] {
				continue
			}
			s.visited[target] = true
			s.walk(full, append(dirs[:len(dirs):len(dirs)], e.Name()))
			continue
		}
		if !VideoExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		s.record(e.Name(), dirs)
	}
}

func (s *scanner) record(name string, dirs []string) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	parent := ""
	if len(dirs) > 0 {
		parent = dirs[len(dirs)-1]
	}

	if underDocDir(dirs) {
		s.media[catalog.Key(title.MovieKey(movieTitle(stem, parent)))] = catalog.Documentary
		s.stats.Documentaries++
		return
	}
	if season, episode, ok := title.ParseEpisode(stem); ok {
		show := showFolder(dirs)
		if show == "" {
			show = title.StripEpisode(stem)
		}
		s.media[catalog.Key(title.TVKey(show, season, episode))] = catalog.TVEpisode
		s.stats.Episodes++
		return
	}
	s.media[catalog.Key(title.MovieKey(movieTitle(stem, parent)))] = catalog.Movie
	s.stats.Movies++
}

func underDocDir(dirs []string) bool {
	for _, d := range dirs {
		if docDirs[strings.ToLower(d)] {
			return true
		}
	}
	return false
}

// movieTitle prefers a parent folder carrying a year, then the file stem
// cut after its year, then the bare stem.
func movieTitle(stem, parent string) string {
	switch {
	case yearInName.MatchString(parent):
		return parent
	case yearInName.MatchString(stem):
		return title.StripAfterYear(stem)
	default:
		return stem
	}
}

// showFolder finds the show directory for an episode file: the nearest
// folder with a year, the folder just below a TV category folder, or the
// immediate parent with season folders skipped.
func showFolder(dirs []string) string {
	for i := len(dirs) - 1; i >= 0; i-- {
		if yearInName.MatchString(dirs[i]) {
			return dirs[i]
		}
		if tvDirs[strings.ToLower(dirs[i])] && i+1 < len(dirs) && !title.IsSeasonDir(dirs[i+1]) {
			return dirs[i+1]
		}
	}
	i := len(dirs) - 1
	if i >= 0 && title.IsSeasonDir(dirs[i]) {
		i--
	}
	if i < 0 || tvDirs[strings.ToLower(dirs[i])] {
		return ""
	}
	return dirs[i]
}
