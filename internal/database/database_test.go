package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/strmsync/internal/migrations"
)

func TestOpen_CreatesAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "strmsync.db")

	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, path)

	for _, table := range []string{"existing_media", "entry_decisions", "metadata_cache"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	v, err := migrations.Version(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strmsync.db")

	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO existing_media (key, category) VALUES ('heat1995', 'movie')")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM existing_media").Scan(&n))
	assert.Equal(t, 1, n, "migrations must not reset data")
}

func TestOpenMemory(t *testing.T) {
	db, err := OpenMemory(context.Background())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("INSERT INTO existing_media (key, category) VALUES ('x', 'replay')")
	assert.Error(t, err, "replay is never stored as existing media")
}
