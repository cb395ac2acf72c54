package library

import (
	"context"
	"fmt"

	"github.com/vmunix/strmsync/internal/catalog"
)

// ExistingMedia maps the keys of locally present titles to their category.
type ExistingMedia map[catalog.Key]catalog.Category

func replaceExistingMedia(ctx context.Context, q querier, media ExistingMedia) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM existing_media"); err != nil {
		return fmt.Errorf("clear existing media: %w", mapSQLiteError(err))
	}
	for key, cat := range media {
		if _, err := q.ExecContext(ctx,
			"INSERT INTO existing_media (key, category) VALUES (?, ?)", string(key), cat.String(),
		); err != nil {
			return fmt.Errorf("insert existing media %q: %w", key, mapSQLiteError(err))
		}
	}
	return nil
}

// ReplaceExistingMedia swaps the whole inventory for media in one transaction.
// Stale rows never survive a rescan.
func (s *Store) ReplaceExistingMedia(ctx context.Context, media ExistingMedia) error {
	return s.inTx(ctx, func(tx *Tx) error {
		return tx.ReplaceExistingMedia(ctx, media)
	})
}

// ReplaceExistingMedia swaps the inventory within a transaction.
func (t *Tx) ReplaceExistingMedia(ctx context.Context, media ExistingMedia) error {
	return replaceExistingMedia(ctx, t.tx, media)
}

func existingMedia(ctx context.Context, q querier) (ExistingMedia, error) {
	rows, err := q.QueryContext(ctx, "SELECT key, category FROM existing_media")
	if err != nil {
		return nil, fmt.Errorf("list existing media: %w", mapSQLiteError(err))
	}
	defer rows.Close()

	media := make(ExistingMedia)
	for rows.Next() {
		var key, category string
		if err := rows.Scan(&key, &category); err != nil {
			return nil, fmt.Errorf("scan existing media: %w", err)
		}
		cat, err := catalog.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("existing media %q: %w", key, err)
		}
		media[catalog.Key(key)] = cat
	}
	return media, rows.Err()
}

// ExistingMedia returns the stored inventory.
func (s *Store) ExistingMedia(ctx context.Context) (ExistingMedia, error) {
	return existingMedia(ctx, s.db)
}

// ExistingMedia returns the stored inventory within a transaction.
func (t *Tx) ExistingMedia(ctx context.Context) (ExistingMedia, error) {
	return existingMedia(ctx, t.tx)
}
