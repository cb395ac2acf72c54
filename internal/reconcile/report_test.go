package reconcile_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/strmsync/internal/catalog"
	"github.com/vmunix/strmsync/internal/reconcile"
)

func TestFormatReport(t *testing.T) {
	excluded := []catalog.Entry{
		catalog.NewEntry("Spirited Away (2001)", "http://x/1", catalog.Movie),
		catalog.NewEntry("Akira (1988)", "http://x/2", catalog.Movie),
		catalog.NewEntry("Some Doc (2010)", "http://x/3", catalog.Documentary),
		catalog.NewEntry("Cowboy Bebop S01E01", "http://x/4", catalog.TVEpisode),
		catalog.NewEntry("Cowboy Bebop S01E02", "http://x/5", catalog.TVEpisode),
		catalog.NewEntry("Cowboy Bebop (1998) S01E03", "http://x/6", catalog.TVEpisode),
		catalog.NewEntry("Naruto S01E01", "http://x/7", catalog.TVEpisode),
	}

	var buf bytes.Buffer
	require.NoError(t, reconcile.FormatReport(&buf, 12, excluded))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "=== Excluded Entries Report ===\n"))
	assert.Contains(t, out, "Total allowed: 12\n")
	assert.Contains(t, out, "Total excluded: 7\n")
	assert.Less(t, strings.Index(out, "Akira (1988)"), strings.Index(out, "Spirited Away (2001)"), "movies are sorted")
	assert.Contains(t, out, "Total movies excluded: 2\n")
	assert.Contains(t, out, "Some Doc (2010)\nTotal documentaries excluded: 1\n")
	assert.Contains(t, out, "Cowboy Bebop (1998) (similar: Cowboy Bebop) - 3 episodes excluded\n")
	assert.Contains(t, out, "Naruto - 1 episodes excluded\n")
	assert.Contains(t, out, "Total shows excluded: 2\n")
	assert.True(t, strings.HasSuffix(out, "=== End of Report ===\n"))
}

func TestFormatReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reconcile.FormatReport(&buf, 0, nil))
	assert.Contains(t, buf.String(), "Total excluded: 0\n")
	assert.Contains(t, buf.String(), "Total shows excluded: 0\n")
}
