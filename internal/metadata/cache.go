// Package metadata persists TMDB lookup responses in the shared SQLite store.
package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Cache is the SQLite-backed lookup cache for oracle responses. It
// satisfies tmdb.LookupCache.
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// CacheStats summarizes the cache contents.
type CacheStats struct {
	Entries int64
	Expired int64
}

// NewCache creates a new metadata cache.
func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db, now: time.Now}
}

// Get retrieves a cached value by key.
// Returns nil, false if not found or expired.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	var value []byte
	var expiresAt int64

	err := c.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM metadata_cache WHERE key = ?", key,
	).Scan(&value, &expiresAt)
	if err != nil || c.now().Unix() >= expiresAt {
		return nil, false
	}
	if value == nil {
		value = []byte{}
	}
	return value, true
}

// Set stores a value with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := c.now().Add(ttl).Unix()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO metadata_cache (key, value, expires_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, string(value), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached value.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM metadata_cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Prune removes all expired entries and reports how many were removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx,
		"DELETE FROM metadata_cache WHERE expires_at <= ?", c.now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return result.RowsAffected()
}

// Reset removes every entry.
func (c *Cache) Reset(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, "DELETE FROM metadata_cache")
	if err != nil {
		return 0, fmt.Errorf("cache reset: %w", err)
	}
	return result.RowsAffected()
}

// Stats counts live and expired entries.
func (c *Cache) Stats(ctx context.Context) (CacheStats, error) {
	var s CacheStats
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
		 FROM metadata_cache`, c.now().Unix(),
	).Scan(&s.Entries, &s.Expired)
	if err != nil {
		return CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return s, nil
}
