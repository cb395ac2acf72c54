package title

import (
	"regexp"
	"strings"

	"github.com/hbollon/go-edlib"
)

// DefaultSimilarity is the Jaro-Winkler score at which two titles are
// considered the same show for reporting purposes.
const DefaultSimilarity = 0.92

var (
	compareYearRegex    = regexp.MustCompile(`\(\d{4}\)|\s*-\s*\d{4}$`)
	compareQualityRegex = regexp.MustCompile(`(?i)\s*\(\d{3,4}p\)`)
	compareStripRegex   = regexp.MustCompile(`[^a-z0-9\s]`)
)

// comparisonForm reduces a title to lowercase words without years or quality tags.
func comparisonForm(s string) string {
	s = compareYearRegex.ReplaceAllString(s, "")
	s = compareQualityRegex.ReplaceAllString(s, "")
	s = compareStripRegex.ReplaceAllString(strings.ToLower(FoldASCII(s)), "")
	return strings.Join(strings.Fields(s), " ")
}

// Similarity returns the Jaro-Winkler similarity of two titles after
// reducing both to their comparable form.
func Similarity(a, b string) float64 {
	return float64(edlib.JaroWinklerSimilarity(comparisonForm(a), comparisonForm(b)))
}

// SimilarGroups clusters titles whose similarity reaches threshold.
// Titles are visited in input order; each group is keyed by its longest member
// and lists members in the order they were seen.
func SimilarGroups(titles []string, threshold float64) map[string][]string {
	groups := make(map[string][]string)
	used := make([]bool, len(titles))

	for i, t := range titles {
		if used[i] {
			continue
		}
		used[i] = true
		members := []string{t}

		for j := i + 1; j < len(titles); j++ {
			if used[j] {
				continue
			}
			if Similarity(t, titles[j]) >= threshold {
				members = append(members, titles[j])
				used[j] = true
			}
		}

		rep := members[0]
		for _, m := range members[1:] {
			if len(m) > len(rep) {
				rep = m
			}
		}
		groups[rep] = append(groups[rep], members...)
	}
	return groups
}
