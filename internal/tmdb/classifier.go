package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/vmunix/strmsync/internal/catalog"
	"github.com/vmunix/strmsync/pkg/title"
)

// Oracle is the subset of the TMDB API the classifier needs.
type Oracle interface {
	SearchMovie(ctx context.Context, query string, year int) (*MovieSearch, error)
	MovieReleaseCountries(ctx context.Context, movieID int64) ([]string, error)
	SearchTV(ctx context.Context, query string) (*TVSearch, error)
	TVDetails(ctx context.Context, tvID int64) (*TVDetails, error)
}

// Policy describes which markets and languages pass the filter.
type Policy struct {
	AllowedMovieCountries []string
	AllowedTVCountries    []string
	TargetLanguage        string
	ExcludedLanguage      string
}

// DefaultPolicy allows US releases and English originals, and rejects Japanese originals.
func DefaultPolicy() Policy {
	return Policy{
		AllowedMovieCountries: []string{"US"},
		AllowedTVCountries:    []string{"US"},
		TargetLanguage:        "en",
		ExcludedLanguage:      "ja",
	}
}

// Verdict is the outcome of classifying one entry.
type Verdict struct {
	Allowed bool
	Reason  string
}

func allow(reason string) Verdict   { return Verdict{Allowed: true, Reason: reason} }
func exclude(reason string) Verdict { return Verdict{Allowed: false, Reason: reason} }

// Classifier decides whether an entry belongs in the library.
type Classifier struct {
	oracle Oracle
	policy Policy
	log    *slog.Logger
}

// NewClassifier creates a Classifier over oracle.
func NewClassifier(oracle Oracle, policy Policy, log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	policy.TargetLanguage = strings.ToLower(policy.TargetLanguage)
	policy.ExcludedLanguage = strings.ToLower(policy.ExcludedLanguage)
	return &Classifier{
		oracle: oracle,
		policy: policy,
		log:    log.With("component", "classifier"),
	}
}

// Classify dispatches on the entry category. Lookup failures become exclude
// verdicts; only context cancellation is returned as an error.
func (c *Classifier) Classify(ctx context.Context, e catalog.Entry) (Verdict, error) {
	var (
		v   Verdict
		err error
	)
	switch e.Category {
	case catalog.Movie, catalog.Documentary:
		v, err = c.ClassifyMovie(ctx, e.Title, e.Year)
	case catalog.TVEpisode:
		v, err = c.ClassifyTV(ctx, title.SearchQuery(e.RawTitle), e.Year)
	case catalog.Replay:
		v = exclude("replay")
	default:
		return Verdict{}, fmt.Errorf("classify %q: %w", e.RawTitle, catalog.ErrUnknownCategory)
	}
	if err != nil {
		return Verdict{}, err
	}
	c.log.Debug("classified", "title", e.RawTitle, "category", e.Category, "allowed", v.Allowed, "reason", v.Reason)
	return v, nil
}

// ClassifyMovie classifies a movie or documentary by its sanitized title.
func (c *Classifier) ClassifyMovie(ctx context.Context, query string, year int) (Verdict, error) {
	search, err := c.oracle.SearchMovie(ctx, query, year)
	if err != nil {
		return lookupFailed(ctx, "movie search", err)
	}
	if len(search.Results) == 0 && year > 0 {
		c.log.Debug("no match with year, retrying without", "query", query, "year", year)
		search, err = c.oracle.SearchMovie(ctx, query, 0)
		if err != nil {
			return lookupFailed(ctx, "movie search", err)
		}
	}
	if len(search.Results) == 0 {
		return exclude("no movie match"), nil
	}

	best := search.Results[0]
	if best.ID == 0 {
		return exclude("movie match has no id"), nil
	}
	lang := strings.ToLower(best.OriginalLanguage)
	if c.policy.ExcludedLanguage != "" && lang == c.policy.ExcludedLanguage {
		return exclude("original language " + lang), nil
	}
	allowed := c.policy.AllowedMovieCountries
	if lang == c.policy.TargetLanguage && len(allowed) == 0 {
		return allow("target language"), nil
	}

	countries, err := c.oracle.MovieReleaseCountries(ctx, best.ID)
	if err != nil {
		return lookupFailed(ctx, "release dates", err)
	}
	if country, ok := firstAllowed(allowed, countries); ok {
		return allow("released in " + country), nil
	}
	if lang == c.policy.TargetLanguage {
		return allow("target language fallback"), nil
	}
	return exclude("no allowed release country"), nil
}

// ClassifyTV classifies a show by its search query. Missing show details
// allow the entry.
func (c *Classifier) ClassifyTV(ctx context.Context, query string, year int) (Verdict, error) {
	search, err := c.oracle.SearchTV(ctx, query)
	if err != nil {
		return lookupFailed(ctx, "tv search", err)
	}
	if len(search.Results) == 0 {
		return exclude("no tv match"), nil
	}

	allowed := c.policy.AllowedTVCountries
	best := pickShow(search.Results, year, allowed)
	if best.ID == 0 {
		return exclude("tv match has no id"), nil
	}
	lang := strings.ToLower(best.OriginalLanguage)
	if c.policy.ExcludedLanguage != "" && lang == c.policy.ExcludedLanguage {
		return exclude("original language " + lang), nil
	}
	if lang == c.policy.TargetLanguage && len(allowed) == 0 {
		return allow("target language"), nil
	}

	details, err := c.oracle.TVDetails(ctx, best.ID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Verdict{}, ctxErr
		}
		c.log.Debug("show details unavailable, allowing", "query", query, "id", best.ID, "error", err)
		return allow("details unavailable"), nil
	}
	for _, n := range details.Networks {
		if slices.Contains(allowed, n.OriginCountry) {
			return allow("network " + n.OriginCountry), nil
		}
	}
	for _, pc := range details.ProductionCountries {
		if slices.Contains(allowed, pc.Code) {
			return allow("produced in " + pc.Code), nil
		}
	}
	if country, ok := firstAllowed(allowed, details.OriginCountry); ok {
		return allow("origin " + country), nil
	}
	return exclude("no allowed tv country"), nil
}

// pickShow narrows results to the given first-air year and to shows from an
// allowed country when any match, then takes the most popular. Ties keep the
// earliest result.
func pickShow(results []TVResult, year int, allowed []string) TVResult {
	if year > 0 {
		var byYear []TVResult
		for _, r := range results {
			if r.Year() == year {
				byYear = append(byYear, r)
			}
		}
		if len(byYear) > 0 {
			results = byYear
		}
	}

	var preferred []TVResult
	for _, r := range results {
		if _, ok := firstAllowed(allowed, r.OriginCountry); ok {
			preferred = append(preferred, r)
		}
	}
	if len(preferred) > 0 {
		results = preferred
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Popularity > best.Popularity {
			best = r
		}
	}
	return best
}

func firstAllowed(allowed, countries []string) (string, bool) {
	for _, c := range countries {
		if slices.Contains(allowed, c) {
			return c, true
		}
	}
	return "", false
}

func lookupFailed(ctx context.Context, what string, err error) (Verdict, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Verdict{}, ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return Verdict{}, err
	}
	return exclude(what + ": " + err.Error()), nil
}
