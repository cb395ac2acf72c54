package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vmunix/strmsync/internal/backoff"
	"github.com/vmunix/strmsync/pkg/title"
)

const defaultBaseURL = "https://api.themoviedb.org"
const defaultCacheTTL = 7 * 24 * time.Hour

// Client is a TMDB API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *Limiter
	cache      LookupCache
	cacheTTL   time.Duration
	policy     backoff.Policy
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLimiter shares a request limiter with other clients.
func WithLimiter(l *Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithCache stores responses in a persistent lookup cache.
func WithCache(lc LookupCache) Option {
	return func(c *Client) {
		c.cache = lc
	}
}

// WithCacheTTL sets the cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithRetry overrides the retry policy applied to each request.
func WithRetry(p backoff.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter:  NewLimiter(DefaultSpacing),
		cache:    newMemoryCache(),
		cacheTTL: defaultCacheTTL,
		policy:   backoff.DefaultPolicy(),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "tmdb")
	return c
}

// SearchMovie searches movies by title, optionally narrowed to a release year.
func (c *Client) SearchMovie(ctx context.Context, query string, year int) (*MovieSearch, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", "en-US")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var out MovieSearch
	if err := c.get(ctx, searchKey("movie", query, year), "/3/search/movie", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MovieReleaseCountries returns the countries a movie was released in.
func (c *Client) MovieReleaseCountries(ctx context.Context, movieID int64) ([]string, error) {
	var out ReleaseDates
	path := fmt.Sprintf("/3/movie/%d/release_dates", movieID)
	if err := c.get(ctx, detailsKey("release_dates", movieID), path, url.Values{}, &out); err != nil {
		return nil, err
	}
	return out.Countries(), nil
}

// SearchTV searches shows by name.
func (c *Client) SearchTV(ctx context.Context, query string) (*TVSearch, error) {
	params := url.Values{}
	params.Set("query", query)

	var out TVSearch
	if err := c.get(ctx, searchKey("tv", query, 0), "/3/search/tv", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TVDetails fetches show details by TMDB ID.
func (c *Client) TVDetails(ctx context.Context, tvID int64) (*TVDetails, error) {
	var out TVDetails
	path := fmt.Sprintf("/3/tv/%d", tvID)
	if err := c.get(ctx, detailsKey("tv", tvID), path, url.Values{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func searchKey(kind, query string, year int) string {
	key := "tmdb:search:" + kind + ":" + title.NormalizeQuery(query)
	if year > 0 {
		key += ":" + strconv.Itoa(year)
	}
	return key
}

func detailsKey(kind string, id int64) string {
	return "tmdb:details:" + kind + ":" + strconv.FormatInt(id, 10)
}

// get serves a request from the lookup cache, falling back to the API.
// Cache hits never consume a limiter permit.
func (c *Client) get(ctx context.Context, cacheKey, path string, params url.Values, out any) error {
	if body, ok := c.cache.Get(ctx, cacheKey); ok {
		if err := json.Unmarshal(body, out); err == nil {
			c.log.Debug("cache hit", "key", cacheKey)
			return nil
		}
		c.log.Warn("discarding undecodable cache entry", "key", cacheKey)
	}

	body, err := c.fetch(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
		c.log.Warn("cache write failed", "key", cacheKey, "error", err)
	}
	return nil
}

// fetch performs the GET under the retry policy. Each attempt waits for a
// limiter permit first.
func (c *Client) fetch(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("api_key", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	var body []byte
	err := backoff.Do(ctx, c.policy, func(ctx context.Context) (backoff.Outcome, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Fatal, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Fatal, fmt.Errorf("create request: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		outcome := backoff.ClassifyHTTP(resp, err)
		if err != nil {
			if outcome == backoff.Retryable {
				c.log.Warn("request failed, retrying", "path", path, "error", err)
			}
			return outcome, fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Fatal, ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests:
			c.log.Warn("rate limited, backing off", "path", path)
			return backoff.Retryable, ErrRateLimited
		case outcome != backoff.Ok:
			return outcome, fmt.Errorf("TMDB API error: %s", resp.Status)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Retryable, fmt.Errorf("read body: %w", err)
		}
		return backoff.Ok, nil
	})
	if err != nil {
		if errors.Is(err, ErrRetriesExhausted) {
			c.log.Error("giving up on request", "path", path, "error", err)
		}
		return nil, err
	}
	return body, nil
}
