// Package catalog defines playlist catalog entries, their canonical keys,
// and the pointer-file layout derived from them.
package catalog

import "fmt"

// Category is the inferred content type of a catalog entry.
type Category int

const (
	Movie Category = iota
	TVEpisode
	Documentary
	Replay
)

// Categories lists every Category in declaration order.
var Categories = []Category{Movie, TVEpisode, Documentary, Replay}

// Category roots under the output directory.
const (
	MoviesRoot        = "Movies"
	TVShowsRoot       = "TV Shows"
	DocumentariesRoot = "Documentaries"
)

// ProtectedRoots are never removed by cleanup, even when empty.
var ProtectedRoots = []string{MoviesRoot, TVShowsRoot, DocumentariesRoot}

func (c Category) String() string {
	switch c {
	case Movie:
		return "movie"
	case TVEpisode:
		return "tvshow"
	case Documentary:
		return "documentary"
	case Replay:
		return "replay"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Root returns the top-level output directory for the category.
// Replays have no root and are never written.
func (c Category) Root() (string, error) {
	switch c {
	case Movie:
		return MoviesRoot, nil
	case TVEpisode:
		return TVShowsRoot, nil
	case Documentary:
		return DocumentariesRoot, nil
	case Replay:
		return "", ErrNotWritable
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
}

// ParseCategory converts the stored name of a category back into a Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "movie", "MOVIE":
		return Movie, nil
	case "tvshow", "TVEPISODE", "tvepisode":
		return TVEpisode, nil
	case "documentary", "DOCUMENTARY":
		return Documentary, nil
	case "replay", "REPLAY":
		return Replay, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}
