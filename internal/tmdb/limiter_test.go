package tmdb

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_SpacingUnderConcurrency(t *testing.T) {
	const (
		spacing = 20 * time.Millisecond
		callers = 6
		slack   = 2 * time.Millisecond
	)
	l := NewLimiter(spacing)

	start := time.Now()
	var (
		mu    sync.Mutex
		times []time.Duration
		wg    sync.WaitGroup
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, l.Wait(context.Background()))
			mu.Lock()
			times = append(times, time.Since(start))
			mu.Unlock()
		}()
	}
	wg.Wait()

	slices.Sort(times)
	require.Len(t, times, callers)
	for i, d := range times {
		assert.GreaterOrEqual(t, d, time.Duration(i)*spacing-slack, "permit %d came too early", i)
	}
}

func TestLimiter_CanceledContext(t *testing.T) {
	l := NewLimiter(time.Hour)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx))
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(ctx))
	}
}
