package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/strmsync/internal/catalog"
	"github.com/vmunix/strmsync/pkg/title"
)

func touch(t *testing.T, root string, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestScanExistingMedia(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Movies/The Matrix (1999)/The.Matrix.1999.1080p.BluRay.mkv")
	touch(t, root, "Movies/Heat (1995) 2160p.mp4")
	touch(t, root, "Loose Film.avi")
	touch(t, root, "TV Shows/Breaking Bad (2008)/Season 01/Breaking Bad S01E02.mkv")
	touch(t, root, "TV Shows/The Wire/Season 2/The Wire 2x05.mkv")
	touch(t, root, "Series/Season 1/Lost S01E03.mkv")
	touch(t, root, "Documentaries/Planet Earth (2006)/Planet Earth (2006).mkv")
	touch(t, root, "Movies/The Matrix (1999)/poster.jpg")
	touch(t, root, "Movies/The Matrix (1999)/movie.nfo")

	media, stats, err := ScanExistingMedia(root, nil)
	require.NoError(t, err)

	want := ExistingMedia{
		catalog.Key(title.MovieKey("The Matrix (1999)")):   catalog.Movie,
		catalog.Key(title.MovieKey("Heat (1995)")):         catalog.Movie,
		catalog.Key(title.MovieKey("Loose Film")):          catalog.Movie,
		catalog.Key(title.TVKey("Breaking Bad", 1, 2)):     catalog.TVEpisode,
		catalog.Key(title.TVKey("The Wire", 2, 5)):         catalog.TVEpisode,
		catalog.Key(title.TVKey("Lost", 1, 3)):             catalog.TVEpisode,
		catalog.Key(title.MovieKey("Planet Earth (2006)")): catalog.Documentary,
	}
	assert.Equal(t, want, media)
	assert.Equal(t, ScanStats{Movies: 3, Episodes: 3, Documentaries: 1}, stats)
	assert.Equal(t, 7, stats.Total())
}

func TestScanExistingMedia_KeysMatchPlaylistEntries(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Movies/The Matrix (1999)/The Matrix (1999).mkv")
	touch(t, root, "TV Shows/Breaking Bad (2008)/Season 01/Breaking Bad (2008) S01E02.mkv")

	media, _, err := ScanExistingMedia(root, nil)
	require.NoError(t, err)

	movie := catalog.NewEntry("The Matrix (1999)", "http://x/1", catalog.Movie)
	episode := catalog.NewEntry("Breaking Bad (2008) 1x02", "http://x/2", catalog.TVEpisode)
	assert.Contains(t, media, movie.Key())
	assert.Contains(t, media, episode.Key())
}

func TestScanExistingMedia_FollowsSymlinks(t *testing.T) {
	outside := t.TempDir()
	touch(t, outside, "Heat (1995)/Heat (1995).mkv")

	root := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "linked")))
	// A loop back to the root must not recurse forever.
	require.NoError(t, os.Symlink(root, filepath.Join(outside, "loop")))

	media, stats, err := ScanExistingMedia(root, nil)
	require.NoError(t, err)
	assert.Contains(t, media, catalog.Key(title.MovieKey("Heat (1995)")))
	assert.Equal(t, 1, stats.Movies)
}

func TestScanExistingMedia_MissingRoot(t *testing.T) {
	_, _, err := ScanExistingMedia(filepath.Join(t.TempDir(), "missing"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanAll_LaterRootsWin(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	touch(t, a, "Movies/Heat (1995)/Heat (1995).mkv")
	touch(t, b, "Documentaries/Heat (1995).mkv")
	touch(t, b, "Movies/Ronin (1998).mkv")

	media, stats, err := ScanAll([]string{a, filepath.Join(a, "missing"), b}, nil)
	require.NoError(t, err)

	assert.Equal(t, catalog.Documentary, media[catalog.Key(title.MovieKey("Heat (1995)"))])
	assert.Equal(t, catalog.Movie, media[catalog.Key(title.MovieKey("Ronin (1998)"))])
	assert.Len(t, media, 2)
	assert.Equal(t, 3, stats.Total())
}

func TestShowFolder(t *testing.T) {
	tests := []struct {
		dirs []string
		want string
	}{
		{[]string{"TV Shows", "Lost (2004)", "Season 1"}, "Lost (2004)"},
		{[]string{"TV Shows", "Lost", "Season 1"}, "Lost"},
		{[]string{"Lost", "Season 1"}, "Lost"},
		{[]string{"Lost"}, "Lost"},
		{[]string{"Season 1"}, ""},
		{[]string{"tv"}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, showFolder(tt.dirs), "%v", tt.dirs)
	}
}
