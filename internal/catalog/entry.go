package catalog

import (
	"github.com/vmunix/strmsync/pkg/title"
)

// Key is the canonical identity of an entry. It is the sole identity used
// for dedup, decision caching, and path derivation.
type Key string

// Episode identifies an episode within a show.
type Episode struct {
	Season int
	Number int
}

// Entry is one stream parsed from a playlist.
type Entry struct {
	RawTitle string
	Title    string // sanitized; for episodes, the sanitized show title
	Category Category
	Year     int      // 0 when unknown
	Episode  *Episode // nil when no season/episode marker was found
	URL      string
	Group    string // lowercase group-title, if any
	Logo     string
	TVGID    string
}

// NewEntry builds an entry from a raw playlist title, deriving the
// sanitized title, year, and episode marker.
func NewEntry(raw, url string, cat Category) Entry {
	e := Entry{
		RawTitle: raw,
		Title:    title.Sanitize(raw),
		Category: cat,
		URL:      url,
	}
	if year, ok := yearOf(raw, cat); ok {
		e.Year = year
	}
	if cat == TVEpisode {
		if season, episode, ok := title.ParseEpisode(raw); ok {
			e.Episode = &Episode{Season: season, Number: episode}
			e.Title = title.Sanitize(title.StripEpisode(raw))
		}
	}
	return e
}

// WithYear returns a copy of e with Year backfilled from the raw title
// when it was not already known.
func (e Entry) WithYear() Entry {
	if e.Year != 0 {
		return e
	}
	if year, ok := yearOf(e.RawTitle, e.Category); ok {
		e.Year = year
	}
	return e
}

// yearOf reads the year the same way Key does, so the year in the target
// path always matches the one in the key.
func yearOf(raw string, cat Category) (int, bool) {
	if cat == Movie || cat == Documentary {
		return title.MovieYear(raw)
	}
	return title.ExtractYear(raw)
}

// Key derives the canonical key. Shows without a season/episode marker fall
// back to a key built from the raw title, so they never collide with
// properly tagged episodes of the same show.
func (e Entry) Key() Key {
	switch e.Category {
	case Movie, Documentary:
		return Key(title.MovieKey(e.RawTitle))
	case TVEpisode:
		if e.Episode != nil {
			return Key(title.TVKey(title.StripEpisode(e.RawTitle), e.Episode.Season, e.Episode.Number))
		}
		return Key(title.MakeKey(e.RawTitle))
	case Replay:
		return Key(title.MakeKey(e.RawTitle))
	default:
		return ""
	}
}
