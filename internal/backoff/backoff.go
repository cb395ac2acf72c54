// Package backoff runs bounded retry loops for outbound HTTP calls.
//
// Each attempt reports an Outcome. Retryable outcomes sleep an exponentially
// growing, jittered, capped delay before the next attempt; Fatal outcomes
// stop immediately. When the attempt budget runs out the last transient
// error is returned wrapped in ErrExhausted.
package backoff

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrExhausted is returned when every attempt ended in a retryable outcome.
var ErrExhausted = errors.New("retries exhausted")

// Outcome classifies a single attempt.
type Outcome int

const (
	Ok Outcome = iota
	Retryable
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case Retryable:
		return "retryable"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Policy bounds a retry loop.
type Policy struct {
	Attempts int           // total attempts including the first
	Base     time.Duration // delay before the second attempt
	Max      time.Duration // cap applied after jitter
	Jitter   time.Duration // random spread, clamped to Base/2
}

// DefaultPolicy doubles from one second up to thirty, five attempts in total.
func DefaultPolicy() Policy {
	return Policy{
		Attempts: 5,
		Base:     time.Second,
		Max:      30 * time.Second,
		Jitter:   500 * time.Millisecond,
	}
}

func (p Policy) normalized() Policy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Base <= 0 {
		p.Base = time.Millisecond
	}
	if p.Max < p.Base {
		p.Max = p.Base
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	// Jitter wider than half the base could reorder consecutive delays.
	if p.Jitter > p.Base/2 {
		p.Jitter = p.Base / 2
	}
	return p
}

// Backoff builds the delay sequence for p. The sequence yields at most
// Attempts-1 delays, each capped at Max.
func (p Policy) Backoff() retry.Backoff {
	p = p.normalized()
	b := retry.NewExponential(p.Base)
	if p.Jitter > 0 {
		b = retry.WithJitter(p.Jitter, b)
	}
	b = retry.WithCappedDuration(p.Max, b)
	return retry.WithMaxRetries(uint64(p.Attempts-1), b)
}

// AttemptFunc performs one attempt.
type AttemptFunc func(ctx context.Context) (Outcome, error)

// Do runs fn until it succeeds, fails fatally, or the policy is exhausted.
// Context cancellation is returned as is.
func Do(ctx context.Context, p Policy, fn AttemptFunc) error {
	var transient error
	err := retry.Do(ctx, p.Backoff(), func(ctx context.Context) error {
		outcome, err := fn(ctx)
		switch outcome {
		case Ok:
			return nil
		case Retryable:
			if err == nil {
				err = errors.New("retryable failure")
			}
			transient = err
			return retry.RetryableError(err)
		case Fatal:
			if err == nil {
				err = errors.New("fatal failure")
			}
			transient = nil
			return err
		default:
			return fmt.Errorf("unknown outcome %v", outcome)
		}
	})
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if transient != nil && errors.Is(err, transient) {
		return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, p.normalized().Attempts, err)
	}
	return err
}

// ClassifyHTTP maps a response or transport error to an Outcome.
// Rate limiting, server errors, and timeouts are retryable.
func ClassifyHTTP(resp *http.Response, err error) Outcome {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Fatal
		}
		var netErr net.Error
		if errors.As(err, &netErr) {
			return Retryable
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return Retryable
		}
		return Fatal
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Ok
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode >= http.StatusInternalServerError:
		return Retryable
	default:
		return Fatal
	}
}
