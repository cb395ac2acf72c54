package title

import (
	"regexp"
	"strconv"
	"strings"
)

// Episode notations, tried in order. A multi-episode range ("S01E02-E03")
// matches the first pattern, so only its first episode is reported.
var episodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[Ss](\d{1,2})\s*[Ee](\d{1,2})`),
	regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{2})\b`),
}

var (
	episodeTailRegex = regexp.MustCompile(`(?i)(?:[s]\d{1,2}\s*[e]\d{1,2}|\b\d{1,2}x\d{2}\b).*$`)
	countryTagRegex  = regexp.MustCompile(`(?i)\((US|UK|CA|AU|NZ|FR|DE|IT)\)`)
	seasonDirRegex   = regexp.MustCompile(`(?i)^season\s+\d+$`)
	dashYearSuffix   = regexp.MustCompile(`\s*-\s*\d{4}$`)
)

// ParseEpisode extracts season and episode numbers from a title.
// Supports "S01E02", "s1e2", and "1x02" notations.
func ParseEpisode(s string) (season, episode int, ok bool) {
	for _, re := range episodePatterns {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		sn, err1 := strconv.Atoi(m[1])
		ep, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			continue
		}
		return sn, ep, true
	}
	return 0, 0, false
}

// StripEpisode removes the season/episode marker and everything after it.
func StripEpisode(s string) string {
	return strings.TrimSpace(episodeTailRegex.ReplaceAllString(s, ""))
}

// IsSeasonDir reports whether a directory name looks like "Season 2".
func IsSeasonDir(name string) bool {
	return seasonDirRegex.MatchString(strings.TrimSpace(name))
}

// SearchQuery builds the show name sent to a TV search from an episode title.
// The episode marker, year, and country tags are removed.
func SearchQuery(s string) string {
	q := StripEpisode(s)
	q = parenYearAnywhere.ReplaceAllString(q, " ")
	q = dashYearSuffix.ReplaceAllString(q, "")
	q = countryTagRegex.ReplaceAllString(q, "")
	q = strings.ReplaceAll(q, "&", "and")
	return strings.Join(strings.Fields(q), " ")
}

// NormalizeQuery is the cache identity of a search string.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
