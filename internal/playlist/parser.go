// Package playlist parses extended-M3U playlists into catalog entries.
package playlist

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/vmunix/strmsync/internal/catalog"
	"github.com/vmunix/strmsync/pkg/title"
)

const (
	extInfPrefix = "#EXTINF:"
	maxLineSize  = 1024 * 1024
)

// Legacy group values with fixed meanings that take precedence over the
// configured keyword sets.
const (
	groupDoc  = "doc"
	groupDocs = "docs"
)

var (
	attrRegex        = regexp.MustCompile(`([A-Za-z0-9_-]+)="([^"]*)"`)
	yearSuffixHint   = regexp.MustCompile(`\(\d{4}\)\s*$`)
	dashYearSuffHint = regexp.MustCompile(`[-–]\s*\d{4}\s*$`)
)

// Rules controls how group tags map to categories and which titles are dropped.
type Rules struct {
	MovieGroups       []string
	TVGroups          []string
	DocumentaryGroups []string
	ReplayGroups      []string

	// Ignore holds substrings per category. Matching titles are dropped
	// before they reach the result.
	Ignore map[catalog.Category][]string
}

// Stats summarizes a parse.
type Stats struct {
	Lines      int
	Entries    int
	Ignored    int
	Malformed  int
	ByCategory map[catalog.Category]int
}

// Parser converts playlist text into entries.
type Parser struct {
	movie, tv, doc, replay map[string]struct{}
	ignore                 map[catalog.Category][]string
	log                    *slog.Logger
}

// NewParser creates a parser for the given rules.
func NewParser(rules Rules, log *slog.Logger) *Parser {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ignore := make(map[catalog.Category][]string, len(rules.Ignore))
	for cat, words := range rules.Ignore {
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				ignore[cat] = append(ignore[cat], w)
			}
		}
	}
	return &Parser{
		movie:  keywordSet(rules.MovieGroups),
		tv:     keywordSet(rules.TVGroups),
		doc:    keywordSet(rules.DocumentaryGroups),
		replay: keywordSet(rules.ReplayGroups),
		ignore: ignore,
		log:    log.With("component", "playlist"),
	}
}

func keywordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}

// pending holds the metadata line waiting for its URL.
type pending struct {
	title string
	attrs map[string]string
}

// Parse reads playlist text. Entries are returned in parse order.
func (p *Parser) Parse(r io.Reader) ([]catalog.Entry, Stats, error) {
	stats := Stats{ByCategory: make(map[catalog.Category]int)}
	var entries []catalog.Entry
	var cur *pending

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, extInfPrefix) {
			cur = parseExtInf(line)
			continue
		}
		if strings.HasPrefix(line, "#") || cur == nil {
			continue
		}

		meta := cur
		cur = nil

		if !isStreamURL(line) {
			stats.Malformed++
			p.log.Debug("dropping entry without stream url", "title", meta.title, "line", line)
			continue
		}
		if meta.title == "" {
			stats.Malformed++
			p.log.Debug("dropping entry without title", "url", line)
			continue
		}

		group := strings.ToLower(strings.TrimSpace(meta.attrs["group-title"]))
		cat := p.categorize(group, meta.title)

		if word, ok := p.ignored(cat, meta.title); ok {
			stats.Ignored++
			p.log.Debug("ignored by keyword", "title", meta.title, "category", cat, "keyword", word)
			continue
		}

		e := catalog.NewEntry(meta.title, line, cat)
		e.Group = group
		e.Logo = meta.attrs["tvg-logo"]
		e.TVGID = meta.attrs["tvg-id"]
		entries = append(entries, e)
		stats.Entries++
		stats.ByCategory[cat]++
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scan playlist: %w", err)
	}

	p.log.Info("playlist parsed",
		"movies", stats.ByCategory[catalog.Movie],
		"episodes", stats.ByCategory[catalog.TVEpisode],
		"documentaries", stats.ByCategory[catalog.Documentary],
		"replays", stats.ByCategory[catalog.Replay],
		"ignored", stats.Ignored,
		"malformed", stats.Malformed,
	)
	return entries, stats, nil
}

// ParseFile parses the playlist stored at path.
func (p *Parser) ParseFile(path string) ([]catalog.Entry, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open playlist: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// parseExtInf splits a metadata line into its display title and attributes.
// The title is everything after the first comma outside a quoted attribute
// value, so titles may themselves contain commas.
func parseExtInf(line string) *pending {
	pd := &pending{attrs: make(map[string]string)}
	header := line
	if i := titleComma(line); i >= 0 {
		pd.title = strings.TrimSpace(line[i+1:])
		header = line[:i]
	}
	for _, m := range attrRegex.FindAllStringSubmatch(header, -1) {
		pd.attrs[strings.ToLower(m[1])] = strings.TrimSpace(m[2])
	}
	if pd.title == "" {
		pd.title = pd.attrs["tvg-name"]
	}
	return pd
}

func titleComma(line string) int {
	quoted := false
	for i, r := range line {
		switch r {
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				return i
			}
		}
	}
	return -1
}

// categorize resolves a category from the group tag first, then from title
// heuristics, defaulting to Movie.
func (p *Parser) categorize(group, rawTitle string) catalog.Category {
	switch group {
	case groupDoc:
		return catalog.Documentary
	case groupDocs:
		return catalog.TVEpisode
	}
	if group != "" {
		if _, ok := p.movie[group]; ok {
			return catalog.Movie
		}
		if _, ok := p.tv[group]; ok {
			return catalog.TVEpisode
		}
		if _, ok := p.doc[group]; ok {
			return catalog.Documentary
		}
		if _, ok := p.replay[group]; ok {
			return catalog.Replay
		}
	}
	if _, _, ok := title.ParseEpisode(rawTitle); ok {
		return catalog.TVEpisode
	}
	switch {
	case yearSuffixHint.MatchString(rawTitle), dashYearSuffHint.MatchString(rawTitle):
		return catalog.Movie
	default:
		return catalog.Movie
	}
}

// ignored reports the first ignore keyword of cat found in the folded title.
func (p *Parser) ignored(cat catalog.Category, rawTitle string) (string, bool) {
	words := p.ignore[cat]
	if len(words) == 0 {
		return "", false
	}
	folded := strings.ToLower(title.FoldASCII(title.NormalizeUnicode(rawTitle)))
	for _, w := range words {
		if strings.Contains(folded, w) {
			return w, true
		}
	}
	return "", false
}

func isStreamURL(line string) bool {
	lower := strings.ToLower(line)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
