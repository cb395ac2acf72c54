package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/strmsync/internal/catalog"
)

func TestStore_ReplaceExistingMedia(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	first := ExistingMedia{
		"thematrix1999":     catalog.Movie,
		"breakingbads01e02": catalog.TVEpisode,
		"planetearth2006":   catalog.Documentary,
	}
	require.NoError(t, store.ReplaceExistingMedia(ctx, first))

	got, err := store.ExistingMedia(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	// A rescan replaces, never merges.
	second := ExistingMedia{"heat1995": catalog.Movie}
	require.NoError(t, store.ReplaceExistingMedia(ctx, second))

	got, err = store.ExistingMedia(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestStore_ReplaceExistingMedia_RollsBack(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.ReplaceExistingMedia(ctx, ExistingMedia{"heat1995": catalog.Movie}))

	// Replays violate the category check, so the whole swap is rolled back.
	err := store.ReplaceExistingMedia(ctx, ExistingMedia{"x": catalog.Movie, "y": catalog.Replay})
	assert.ErrorIs(t, err, ErrConstraint)

	got, err := store.ExistingMedia(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExistingMedia{"heat1995": catalog.Movie}, got)
}

func TestStore_GetDecision_NotFound(t *testing.T) {
	store := NewStore(setupTestDB(t))

	d, err := store.GetDecision(context.Background(), "missing")
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpsertDecision(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.UpsertDecision(ctx, Decision{Key: "heat1995", URL: "http://x/1"}))

	d, err := store.GetDecision(ctx, "heat1995")
	require.NoError(t, err)
	assert.Equal(t, "http://x/1", d.URL)
	assert.Nil(t, d.Path, "NULL path preserved")
	assert.Nil(t, d.Allowed, "NULL allowed preserved")
	assert.False(t, d.Decided())

	require.NoError(t, store.UpsertDecision(ctx, Decision{
		Key:     "heat1995",
		URL:     "http://x/2",
		Path:    ptr("/out/Movies/Heat (1995)/Heat (1995).ptr"),
		Allowed: ptr(true),
	}))

	d, err = store.GetDecision(ctx, "heat1995")
	require.NoError(t, err)
	assert.Equal(t, "http://x/2", d.URL)
	require.NotNil(t, d.Path)
	assert.Equal(t, "/out/Movies/Heat (1995)/Heat (1995).ptr", *d.Path)
	assert.True(t, d.IsAllowed())
	assert.False(t, d.UpdatedAt.IsZero())
}

func TestStore_UpsertDecision_EmptyKey(t *testing.T) {
	store := NewStore(setupTestDB(t))

	err := store.UpsertDecision(context.Background(), Decision{URL: "http://x/1"})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestStore_ReplaceDecisions(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.UpsertDecision(ctx, Decision{Key: "stale", URL: "http://x/0", Allowed: ptr(true)}))

	next := Decisions{
		"heat1995":  {URL: "http://x/1", Path: ptr("/out/a.ptr"), Allowed: ptr(true)},
		"ringu1998": {URL: "http://x/2", Allowed: ptr(false)},
		"unknown":   {URL: "http://x/3"},
	}
	require.NoError(t, store.ReplaceDecisions(ctx, next))

	got, err := store.Decisions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.NotContains(t, got, catalog.Key("stale"))

	assert.True(t, got["heat1995"].IsAllowed())
	assert.Equal(t, catalog.Key("heat1995"), got["heat1995"].Key, "key is filled from the map")
	assert.True(t, got["ringu1998"].Decided())
	assert.False(t, got["ringu1998"].IsAllowed())
	assert.Nil(t, got["ringu1998"].Path)
	assert.False(t, got["unknown"].Decided())
}

func TestStore_Stats(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.ReplaceExistingMedia(ctx, ExistingMedia{"a": catalog.Movie, "b": catalog.TVEpisode}))
	require.NoError(t, store.ReplaceDecisions(ctx, Decisions{
		"c": {URL: "u", Allowed: ptr(true)},
		"d": {URL: "u", Allowed: ptr(true)},
		"e": {URL: "u", Allowed: ptr(false)},
		"f": {URL: "u"},
	}))

	st, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{ExistingMedia: 2, Allowed: 2, Excluded: 1, Unset: 1}, st)

	n, err := store.ResetDecisions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	st, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{ExistingMedia: 2}, st)
}

func TestTx_Commit(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertDecision(ctx, Decision{Key: "k", URL: "u", Allowed: ptr(false)}))

	d, err := tx.GetDecision(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "u", d.URL)
	require.NoError(t, tx.Commit())

	// Should be visible outside transaction
	_, err = store.GetDecision(ctx, "k")
	assert.NoError(t, err)
}

func TestTx_Rollback(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.ReplaceExistingMedia(ctx, ExistingMedia{"k": catalog.Movie}))
	require.NoError(t, tx.UpsertDecision(ctx, Decision{Key: "k", URL: "u"}))
	require.NoError(t, tx.Rollback())

	// Should NOT be visible outside transaction
	_, err = store.GetDecision(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	media, err := store.ExistingMedia(ctx)
	require.NoError(t, err)
	assert.Empty(t, media)
}
