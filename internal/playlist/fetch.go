package playlist

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/vmunix/strmsync/internal/backoff"
)

// ErrNoPlaylist is returned when a source is empty or cannot be resolved.
var ErrNoPlaylist = errors.New("no playlist source")

const defaultFetchTimeout = 30 * time.Second

// Fetcher downloads playlists served over HTTP.
type Fetcher struct {
	httpClient *http.Client
	policy     backoff.Policy
	tempDir    string
	log        *slog.Logger
}

// FetchOption configures a Fetcher.
type FetchOption func(*Fetcher)

// WithFetchHTTPClient sets a custom HTTP client.
func WithFetchHTTPClient(hc *http.Client) FetchOption {
	return func(f *Fetcher) {
		f.httpClient = hc
	}
}

// WithFetchPolicy overrides the download retry policy.
func WithFetchPolicy(p backoff.Policy) FetchOption {
	return func(f *Fetcher) {
		f.policy = p
	}
}

// WithTempDir sets where downloaded playlists are stored.
func WithTempDir(dir string) FetchOption {
	return func(f *Fetcher) {
		f.tempDir = dir
	}
}

// NewFetcher creates a Fetcher. Downloads retry 429 and 5xx responses up to
// three extra times.
func NewFetcher(log *slog.Logger, opts ...FetchOption) *Fetcher {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f := &Fetcher{
		httpClient: &http.Client{Timeout: defaultFetchTimeout},
		policy: backoff.Policy{
			Attempts: 4,
			Base:     time.Second,
			Max:      8 * time.Second,
			Jitter:   250 * time.Millisecond,
		},
		log: log.With("component", "fetch"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsURL reports whether source should be downloaded rather than opened.
func IsURL(source string) bool {
	s := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch downloads url into a temporary file and returns its path.
// The caller removes the file when done.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var body []byte
	err := backoff.Do(ctx, f.policy, func(ctx context.Context) (backoff.Outcome, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Fatal, fmt.Errorf("create request: %w", err)
		}
		resp, err := f.httpClient.Do(req)
		outcome := backoff.ClassifyHTTP(resp, err)
		if err != nil {
			f.log.Warn("playlist download failed", "url", url, "error", err, "outcome", outcome)
			return outcome, fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()

		if outcome != backoff.Ok {
			f.log.Warn("playlist download rejected", "url", url, "status", resp.StatusCode, "outcome", outcome)
			return outcome, fmt.Errorf("playlist server error: %s", resp.Status)
		}
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Retryable, fmt.Errorf("read body: %w", err)
		}
		return backoff.Ok, nil
	})
	if err != nil {
		return "", fmt.Errorf("download playlist: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("%w: empty response from %s", ErrNoPlaylist, url)
	}
	if !looksLikeM3U(body) {
		f.log.Warn("downloaded content does not look like an M3U playlist", "url", url, "bytes", len(body))
	}

	tmp, err := os.CreateTemp(f.tempDir, "playlist-*.m3u")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	f.log.Info("playlist downloaded", "url", url, "bytes", len(body), "path", tmp.Name())
	return tmp.Name(), nil
}

// looksLikeM3U checks the first lines for an #EXTM3U header or an #EXTINF entry.
func looksLikeM3U(body []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(body))
	for i := 0; i < 10 && sc.Scan(); i++ {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#EXTM3U") || strings.HasPrefix(line, extInfPrefix) {
			return true
		}
	}
	return false
}

// Open resolves source to a local file, downloading it when it is a URL.
// The returned cleanup func removes any temporary download.
func Open(ctx context.Context, source string, fetcher *Fetcher) (path string, cleanup func(), err error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", func() {}, ErrNoPlaylist
	}
	if !IsURL(source) {
		if _, err := os.Stat(source); err != nil {
			return "", func() {}, fmt.Errorf("%w: %w", ErrNoPlaylist, err)
		}
		return source, func() {}, nil
	}
	path, err = fetcher.Fetch(ctx, source)
	if err != nil {
		return "", func() {}, err
	}
	return path, func() { os.Remove(path) }, nil
}
