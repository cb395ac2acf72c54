// Package title derives stable identities from noisy playlist and filesystem titles.
package title

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// symbolReplacer maps symbols that NFKD folding would drop or mangle.
var symbolReplacer = strings.NewReplacer(
	"½", "1/2", "⅓", "1/3", "⅔", "2/3", "¼", "1/4", "¾", "3/4",
	"·", " ",
	"–", "-", "—", "-",
	"“", `"`, "”", `"`, "‘", "'", "’", "'",
	"…", "...",
	"Æ", "AE", "æ", "ae",
)

var (
	qualityPrefixRegex = regexp.MustCompile(`^\s*(\d+[kK]|[0-9]{3,4}[pP]):\s*`)
	imdbIDRegex        = regexp.MustCompile(`(?i)[{}()]?tt\d+[{}()]?`)
	imdbWordRegex      = regexp.MustCompile(`(?i)\bimdb\b`)
	punctRegex         = regexp.MustCompile(`[^\w\s():]+`)
	spaceRegex         = regexp.MustCompile(`\s+`)
	doubleYearRegex    = regexp.MustCompile(`\((\d{4})\)\s*\((\d{4})\)`)
	trailingParenYear  = regexp.MustCompile(`\s*\(\d{4}\)\s*$`)
	trailingDashYear   = regexp.MustCompile(`\s*-\s*\d{4}\s*$`)
	trailingBareYear   = regexp.MustCompile(`\s+\d{4}\s*$`)
	parenYearAnywhere  = regexp.MustCompile(`\s*\(\d{4}\)\s*`)
	nonKeyRegex        = regexp.MustCompile(`[^a-z0-9]+`)
	releaseYearRegex   = regexp.MustCompile(`\s((?:19|20)\d{2})$`)

	// releaseTagRegex cuts a scene-style tail ("1080p BluRay x264 GROUP") at
	// its first quality or source tag. The tag must follow at least one word.
	releaseTagRegex = regexp.MustCompile(`(?i)\s(2160p|1080p|720p|576p|480p|4k|uhd|bluray|bdrip|brrip|webrip|web dl|webdl|hdtv|dvdrip|x264|x265|h264|h265|hevc|remux)\b.*$`)

	yearInParens   = regexp.MustCompile(`\((\d{4})\)`)
	yearDashSuffix = regexp.MustCompile(`-\s*(\d{4})$`)
	upToYear       = regexp.MustCompile(`(\(\d{4}\)).*$`)
)

// maxSanitizePasses bounds the fixed-point loop in Sanitize.
const maxSanitizePasses = 8

// FoldASCII applies compatibility decomposition and drops everything outside ASCII.
func FoldASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeUnicode replaces fractions and typographic symbols with ASCII
// equivalents and applies NFKC.
func NormalizeUnicode(s string) string {
	return norm.NFKC.String(symbolReplacer.Replace(s))
}

// Sanitize strips quality prefixes, external ids, and trailing years from a
// title and collapses its punctuation to single spaces. The result is used
// for display paths and as the input to key derivation.
//
// Sanitize is idempotent: it repeats its pass until the output is stable, so
// stacked noise such as "4K: 1080p: Title" or "Title 2001 2002" is fully removed.
func Sanitize(s string) string {
	out := sanitizeOnce(s)
	for i := 0; i < maxSanitizePasses; i++ {
		next := sanitizeOnce(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func sanitizeOnce(s string) string {
	t := cleanNoise(s)
	t = trailingParenYear.ReplaceAllString(t, "")
	t = trailingDashYear.ReplaceAllString(t, "")
	t = trailingBareYear.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}

// cleanNoise performs every Sanitize step except trailing year removal.
func cleanNoise(s string) string {
	t := FoldASCII(NormalizeUnicode(strings.TrimSpace(s)))
	t = qualityPrefixRegex.ReplaceAllString(t, "")
	t = strings.ReplaceAll(t, "&", "and")
	t = imdbIDRegex.ReplaceAllString(t, "")
	t = imdbWordRegex.ReplaceAllString(t, "")
	t = strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(t)
	t = punctRegex.ReplaceAllString(t, " ")
	t = strings.TrimSpace(spaceRegex.ReplaceAllString(t, " "))
	t = releaseTagRegex.ReplaceAllString(t, "")
	return collapseDoubleYear(t)
}

// collapseDoubleYear turns "(1999) (1999)" into "(1999)". Differing years are left alone.
func collapseDoubleYear(s string) string {
	return doubleYearRegex.ReplaceAllStringFunc(s, func(m string) string {
		sub := doubleYearRegex.FindStringSubmatch(m)
		if sub[1] == sub[2] {
			return "(" + sub[1] + ")"
		}
		return m
	})
}

// ExtractYear finds a four digit year in parentheses, or failing that a
// trailing "-YYYY" suffix. It never guesses from bare numbers.
func ExtractYear(s string) (int, bool) {
	m := yearInParens.FindStringSubmatch(s)
	if m == nil {
		m = yearDashSuffix.FindStringSubmatch(s)
	}
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// StripAfterYear drops everything after the first "(YYYY)".
func StripAfterYear(s string) string {
	return upToYear.ReplaceAllString(s, "$1")
}

// MakeKey lowercases s and removes everything that is not a letter or digit.
func MakeKey(s string) string {
	return nonKeyRegex.ReplaceAllString(strings.ToLower(s), "")
}

// MovieYear returns the release year of a movie or documentary title.
// Scene-style names ("the.matrix.1999.1080p") carry the year as the last
// word before the release tags; that year is used when ExtractYear finds none.
func MovieYear(raw string) (int, bool) {
	if year, ok := ExtractYear(raw); ok {
		return year, true
	}
	return releaseYear(raw)
}

// MovieKey derives the canonical key of a movie or documentary title.
// The MovieYear of the raw title is appended before stripping.
func MovieKey(raw string) string {
	t := Sanitize(raw)
	if year, ok := MovieYear(raw); ok {
		t = fmt.Sprintf("%s %d", t, year)
	}
	return MakeKey(t)
}

func releaseYear(raw string) (int, bool) {
	m := releaseYearRegex.FindStringSubmatch(cleanNoise(raw))
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// TVKey derives the canonical key of a TV episode from its show title.
func TVKey(show string, season, episode int) string {
	s := parenYearAnywhere.ReplaceAllString(Sanitize(show), "")
	return MakeKey(fmt.Sprintf("%s s%02de%02d", s, season, episode))
}
