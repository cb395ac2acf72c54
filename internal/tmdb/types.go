// Package tmdb provides a client for The Movie Database API and the
// market classifier built on top of it.
package tmdb

import "strconv"

// MovieResult is one hit from /search/movie.
type MovieResult struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalLanguage string  `json:"original_language"`
	ReleaseDate      string  `json:"release_date"` // "1999-03-31"
	Popularity       float64 `json:"popularity"`
}

// Year extracts the year from ReleaseDate.
func (m MovieResult) Year() int {
	return dateYear(m.ReleaseDate)
}

// MovieSearch is the /search/movie response.
type MovieSearch struct {
	Page    int           `json:"page"`
	Results []MovieResult `json:"results"`
}

// ReleaseDates is the /movie/{id}/release_dates response.
type ReleaseDates struct {
	ID      int64            `json:"id"`
	Results []CountryRelease `json:"results"`
}

// CountryRelease groups the release dates of one country.
type CountryRelease struct {
	Country string `json:"iso_3166_1"`
}

// Countries returns the distinct release countries in response order.
func (r *ReleaseDates) Countries() []string {
	seen := make(map[string]bool, len(r.Results))
	var out []string
	for _, rel := range r.Results {
		if rel.Country == "" || seen[rel.Country] {
			continue
		}
		seen[rel.Country] = true
		out = append(out, rel.Country)
	}
	return out
}

// TVResult is one hit from /search/tv.
type TVResult struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	OriginalLanguage string   `json:"original_language"`
	FirstAirDate     string   `json:"first_air_date"`
	OriginCountry    []string `json:"origin_country"`
	Popularity       float64  `json:"popularity"`
}

// Year extracts the year from FirstAirDate.
func (s TVResult) Year() int {
	return dateYear(s.FirstAirDate)
}

// TVSearch is the /search/tv response.
type TVSearch struct {
	Page    int        `json:"page"`
	Results []TVResult `json:"results"`
}

// TVDetails is the /tv/{id} response, reduced to the market fields.
type TVDetails struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	OriginalLanguage    string    `json:"original_language"`
	OriginCountry       []string  `json:"origin_country"`
	Networks            []Network `json:"networks"`
	ProductionCountries []Country `json:"production_countries"`
}

// Network is a broadcaster. TMDB reports a single origin country per network.
type Network struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	OriginCountry string `json:"origin_country"`
}

// Country is an ISO 3166-1 production country.
type Country struct {
	Code string `json:"iso_3166_1"`
	Name string `json:"name"`
}

func dateYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
