package reconcile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vmunix/strmsync/internal/catalog"
	"github.com/vmunix/strmsync/pkg/title"
)

// WriteReport writes the excluded-entries report to path.
func WriteReport(path string, allowed int, excluded []catalog.Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := FormatReport(f, allowed, excluded); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// FormatReport renders the excluded-entries report. Movies and
// documentaries are listed by title; episodes are grouped by show, with
// near-identical show names merged.
func FormatReport(w io.Writer, allowed int, excluded []catalog.Entry) error {
	var movies, docs, shows []string
	episodes := make(map[string]int)
	for _, e := range excluded {
		switch e.Category {
		case catalog.Movie:
			movies = append(movies, e.RawTitle)
		case catalog.Documentary:
			docs = append(docs, e.RawTitle)
		case catalog.TVEpisode:
			base := title.StripEpisode(e.RawTitle)
			if episodes[base] == 0 {
				shows = append(shows, base)
			}
			episodes[base]++
		}
	}
	slices.Sort(movies)
	slices.Sort(docs)

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "=== Excluded Entries Report ===")
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Total allowed: %d\n", allowed)
	fmt.Fprintf(bw, "Total excluded: %d\n", len(excluded))

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "--- Movies ---")
	for _, m := range movies {
		fmt.Fprintln(bw, m)
	}
	fmt.Fprintf(bw, "Total movies excluded: %d\n", len(movies))

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "--- Documentaries ---")
	for _, d := range docs {
		fmt.Fprintln(bw, d)
	}
	fmt.Fprintf(bw, "Total documentaries excluded: %d\n", len(docs))

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "--- TV Shows ---")
	groups := title.SimilarGroups(shows, title.DefaultSimilarity)
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	for _, name := range names {
		members := groups[name]
		count := 0
		var aliases []string
		for _, m := range members {
			count += episodes[m]
			if m != name {
				aliases = append(aliases, m)
			}
		}
		if len(aliases) > 0 {
			fmt.Fprintf(bw, "%s (similar: %s) - %d episodes excluded\n", name, strings.Join(aliases, ", "), count)
		} else {
			fmt.Fprintf(bw, "%s - %d episodes excluded\n", name, count)
		}
	}
	fmt.Fprintf(bw, "Total shows excluded: %d\n", len(names))

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "=== End of Report ===")
	return bw.Flush()
}
