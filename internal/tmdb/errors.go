package tmdb

import (
	"errors"

	"github.com/vmunix/strmsync/internal/backoff"
)

var (
	// ErrNotFound is returned when TMDB has no resource for an id.
	ErrNotFound = errors.New("tmdb resource not found")
	// ErrRateLimited marks a 429 response. It is retried until the policy runs out.
	ErrRateLimited = errors.New("tmdb rate limit hit")
	// ErrRetriesExhausted is returned when every attempt was rate limited or failed transiently.
	ErrRetriesExhausted = backoff.ErrExhausted
)
