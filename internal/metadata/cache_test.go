package metadata

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/strmsync/internal/database"
	"github.com/vmunix/strmsync/internal/tmdb"
)

var _ tmdb.LookupCache = (*Cache)(nil)

// setupTestDB creates a migrated in-memory SQLite database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// newTestCache returns a cache with a controllable clock.
func newTestCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewCache(setupTestDB(t))
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_GetSet_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	value := []byte(`{"results":[{"id":603,"title":"The Matrix"}]}`)
	require.NoError(t, cache.Set(ctx, "tmdb:search:movie:the matrix:1999", value, time.Hour))

	got, ok := cache.Get(ctx, "tmdb:search:movie:the matrix:1999")
	assert.True(t, ok, "expected to find cached value")
	assert.Equal(t, value, got)
}

func TestCache_Get_NotFound(t *testing.T) {
	cache, _ := newTestCache(t)

	got, ok := cache.Get(context.Background(), "nonexistent-key")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_Get_Expired(t *testing.T) {
	cache, now := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok := cache.Get(ctx, "k")
	assert.True(t, ok, "expected to find cached value before expiration")

	*now = now.Add(2 * time.Minute)
	got, ok := cache.Get(ctx, "k")
	assert.False(t, ok, "expected not to find cached value after expiration")
	assert.Nil(t, got)
}

func TestCache_Set_OverwriteExtendsTTL(t *testing.T) {
	cache, now := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("first"), time.Minute))
	require.NoError(t, cache.Set(ctx, "k", []byte("second"), time.Hour))

	*now = now.Add(30 * time.Minute)
	got, ok := cache.Get(ctx, "k")
	assert.True(t, ok, "expected value to still be cached after TTL extension")
	assert.Equal(t, []byte("second"), got)
}

func TestCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, cache.Delete(ctx, "k"))

	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok, "expected value to be deleted")

	assert.NoError(t, cache.Delete(ctx, "nonexistent-key"))
}

func TestCache_PruneAndStats(t *testing.T) {
	cache, now := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short-1", []byte("a"), time.Minute))
	require.NoError(t, cache.Set(ctx, "short-2", []byte("b"), time.Minute))
	require.NoError(t, cache.Set(ctx, "long", []byte("c"), 7*24*time.Hour))

	*now = now.Add(time.Hour)

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, CacheStats{Entries: 3, Expired: 2}, stats)

	pruned, err := cache.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pruned, "expected 2 expired entries to be pruned")

	got, ok := cache.Get(ctx, "long")
	assert.True(t, ok)
	assert.Equal(t, []byte("c"), got)

	pruned, err = cache.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, pruned)
}

func TestCache_Reset(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, cache.Set(ctx, "b", []byte("2"), time.Hour))

	n, err := cache.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)
}

func TestCache_EmptyValue(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "empty", []byte{}, time.Hour))

	got, ok := cache.Get(ctx, "empty")
	assert.True(t, ok)
	assert.Equal(t, []byte{}, got)
}

func TestCache_SpecialCharactersInKey(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		key  string
	}{
		{"spaces", "tmdb:search:tv:the office"},
		{"unicode", "key-中文-日本語"},
		{"special chars", "key:with/special?chars&more=stuff"},
		{"quotes", `key"with'quotes`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			value := []byte("value for " + tc.key)
			require.NoError(t, cache.Set(ctx, tc.key, value, time.Hour))

			got, ok := cache.Get(ctx, tc.key)
			assert.True(t, ok)
			assert.Equal(t, value, got)
		})
	}
}

func TestCache_BacksTMDBClient(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "tmdb:details:tv:1396", []byte(`{"id":1396,"name":"Breaking Bad"}`), time.Hour))

	// Unreachable base URL: the hit must not touch the network.
	client := tmdb.NewClient("k", tmdb.WithCache(cache), tmdb.WithBaseURL("http://127.0.0.1:1"))
	details, err := client.TVDetails(ctx, 1396)
	require.NoError(t, err)
	assert.Equal(t, "Breaking Bad", details.Name)
}
