package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/strmsync/internal/backoff"
)

func fastRetry() backoff.Policy {
	return backoff.Policy{Attempts: 5, Base: time.Millisecond, Max: 4 * time.Millisecond}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	base := []Option{
		WithBaseURL(server.URL),
		WithLimiter(NewLimiter(0)),
		WithRetry(fastRetry()),
	}
	return NewClient("test-key", append(base, opts...)...)
}

func TestClient_SearchMovie(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/search/movie", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "The Matrix", r.URL.Query().Get("query"))
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		assert.Equal(t, "1999", r.URL.Query().Get("year"))

		resp := MovieSearch{Results: []MovieResult{{
			ID:               603,
			Title:            "The Matrix",
			OriginalLanguage: "en",
			ReleaseDate:      "1999-03-31",
		}}}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	search, err := client.SearchMovie(context.Background(), "The Matrix", 1999)
	require.NoError(t, err)
	require.Len(t, search.Results, 1)
	assert.Equal(t, int64(603), search.Results[0].ID)
	assert.Equal(t, 1999, search.Results[0].Year())
}

func TestClient_SearchMovie_NoYearParam(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("year"))
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	search, err := client.SearchMovie(context.Background(), "Heat", 0)
	require.NoError(t, err)
	assert.Empty(t, search.Results)
}

func TestClient_MovieReleaseCountries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/movie/603/release_dates", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":603,"results":[{"iso_3166_1":"US"},{"iso_3166_1":"GB"},{"iso_3166_1":"US"}]}`))
	})

	countries, err := client.MovieReleaseCountries(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, []string{"US", "GB"}, countries)
}

func TestClient_TVDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/tv/1396", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": 1396,
			"name": "Breaking Bad",
			"origin_country": ["US"],
			"networks": [{"id": 174, "name": "AMC", "origin_country": "US"}],
			"production_countries": [{"iso_3166_1": "US", "name": "United States of America"}]
		}`))
	})

	details, err := client.TVDetails(context.Background(), 1396)
	require.NoError(t, err)
	assert.Equal(t, "US", details.Networks[0].OriginCountry)
	assert.Equal(t, "US", details.ProductionCountries[0].Code)
}

func TestClient_NotFound(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
	})

	details, err := client.TVDetails(context.Background(), 99999999)
	assert.Nil(t, details)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load(), "not found is not retried")
}

func TestClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"id":1,"name":"Show"}]}`))
	})

	search, err := client.SearchTV(context.Background(), "Show")
	require.NoError(t, err)
	assert.Len(t, search.Results, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.SearchTV(context.Background(), "Show")
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(5), calls.Load())
}

func TestClient_Cached(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"results":[{"id":603,"title":"The Matrix"}]}`))
	}, WithCacheTTL(time.Hour))

	// First call hits API
	_, err := client.SearchMovie(context.Background(), "The Matrix", 1999)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	// Same query with different spacing and case uses cache
	search, err := client.SearchMovie(context.Background(), "the  matrix", 1999)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "should use cache, not call API again")
	assert.Equal(t, int64(603), search.Results[0].ID)

	// A different year is a different key
	_, err = client.SearchMovie(context.Background(), "The Matrix", 2003)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_CacheHitSkipsLimiter(t *testing.T) {
	served := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served = true
	}))
	defer server.Close()

	cache := newMemoryCache()
	require.NoError(t, cache.Set(context.Background(), detailsKey("tv", 7), []byte(`{"id":7,"name":"Cached"}`), time.Hour))

	// A limiter that never grants a permit within the test.
	slow := NewLimiter(time.Hour)
	require.NoError(t, slow.Wait(context.Background()))

	client := NewClient("k", WithBaseURL(server.URL), WithLimiter(slow), WithCache(cache))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	details, err := client.TVDetails(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Cached", details.Name)
	assert.False(t, served)
}

func TestClient_UndecodableCacheEntryRefetches(t *testing.T) {
	var calls atomic.Int32
	cache := newMemoryCache()
	require.NoError(t, cache.Set(context.Background(), detailsKey("tv", 7), []byte(`not json`), time.Hour))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"id":7,"name":"Fresh"}`))
	}, WithCache(cache))

	details, err := client.TVDetails(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Fresh", details.Name)
	assert.Equal(t, int32(1), calls.Load())

	body, ok := cache.Get(context.Background(), detailsKey("tv", 7))
	require.True(t, ok)
	assert.JSONEq(t, `{"id":7,"name":"Fresh"}`, string(body))
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := newMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok, "empty cache should miss")

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Minute))
	got, ok := c.Get(context.Background(), "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(context.Background(), "k")
	assert.False(t, ok, "expired entries miss")
}

func TestSearchKey(t *testing.T) {
	assert.Equal(t, "tmdb:search:movie:the matrix:1999", searchKey("movie", " The  Matrix ", 1999))
	assert.Equal(t, "tmdb:search:tv:breaking bad", searchKey("tv", "Breaking Bad", 0))
	assert.Equal(t, "tmdb:details:tv:1396", detailsKey("tv", 1396))
}
