package library

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vmunix/strmsync/internal/catalog"
)

// Decision is the cached outcome for one key.
type Decision struct {
	Key       catalog.Key
	URL       string
	Path      *string // absolute pointer file path; nil when nothing was written
	Allowed   *bool   // nil when no decision was made yet
	UpdatedAt time.Time
}

// Decided reports whether an allow or exclude decision is recorded.
func (d Decision) Decided() bool {
	return d.Allowed != nil
}

// IsAllowed reports whether the recorded decision is an allow.
func (d Decision) IsAllowed() bool {
	return d.Allowed != nil && *d.Allowed
}

// Decisions maps keys to their cached decision.
type Decisions map[catalog.Key]Decision

func scanDecision(scan func(dest ...any) error) (Decision, error) {
	var (
		d       Decision
		key     string
		path    sql.NullString
		allowed sql.NullBool
	)
	if err := scan(&key, &d.URL, &path, &allowed, &d.UpdatedAt); err != nil {
		return Decision{}, err
	}
	d.Key = catalog.Key(key)
	if path.Valid {
		d.Path = &path.String
	}
	if allowed.Valid {
		d.Allowed = &allowed.Bool
	}
	return d, nil
}

const decisionColumns = "key, url, path, allowed, updated_at"

func getDecision(ctx context.Context, q querier, key catalog.Key) (*Decision, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+decisionColumns+" FROM entry_decisions WHERE key = ?", string(key))
	d, err := scanDecision(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("get decision %q: %w", key, mapSQLiteError(err))
	}
	return &d, nil
}

// GetDecision returns the decision for key.
// Returns ErrNotFound if no decision exists.
func (s *Store) GetDecision(ctx context.Context, key catalog.Key) (*Decision, error) {
	return getDecision(ctx, s.db, key)
}

// GetDecision returns the decision for key within a transaction.
func (t *Tx) GetDecision(ctx context.Context, key catalog.Key) (*Decision, error) {
	return getDecision(ctx, t.tx, key)
}

func listDecisions(ctx context.Context, q querier) (Decisions, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+decisionColumns+" FROM entry_decisions")
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", mapSQLiteError(err))
	}
	defer rows.Close()

	out := make(Decisions)
	for rows.Next() {
		d, err := scanDecision(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		out[d.Key] = d
	}
	return out, rows.Err()
}

// Decisions returns a snapshot of every cached decision.
func (s *Store) Decisions(ctx context.Context) (Decisions, error) {
	return listDecisions(ctx, s.db)
}

// Decisions returns every cached decision within a transaction.
func (t *Tx) Decisions(ctx context.Context) (Decisions, error) {
	return listDecisions(ctx, t.tx)
}

func upsertDecision(ctx context.Context, q querier, d Decision) error {
	if d.Key == "" {
		return fmt.Errorf("upsert decision: empty key: %w", ErrConstraint)
	}
	var path, allowed any
	if d.Path != nil {
		path = *d.Path
	}
	if d.Allowed != nil {
		allowed = *d.Allowed
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO entry_decisions (key, url, path, allowed, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			url = excluded.url, path = excluded.path,
			allowed = excluded.allowed, updated_at = excluded.updated_at`,
		string(d.Key), d.URL, path, allowed, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert decision %q: %w", d.Key, mapSQLiteError(err))
	}
	return nil
}

// UpsertDecision inserts or replaces the decision for d.Key.
func (s *Store) UpsertDecision(ctx context.Context, d Decision) error {
	return upsertDecision(ctx, s.db, d)
}

// UpsertDecision inserts or replaces a decision within a transaction.
func (t *Tx) UpsertDecision(ctx context.Context, d Decision) error {
	return upsertDecision(ctx, t.tx, d)
}

// ReplaceDecisions atomically swaps the decision table for decisions.
func (s *Store) ReplaceDecisions(ctx context.Context, decisions Decisions) error {
	return s.inTx(ctx, func(tx *Tx) error {
		return tx.ReplaceDecisions(ctx, decisions)
	})
}

// ReplaceDecisions swaps the decision table within a transaction.
func (t *Tx) ReplaceDecisions(ctx context.Context, decisions Decisions) error {
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM entry_decisions"); err != nil {
		return fmt.Errorf("clear decisions: %w", mapSQLiteError(err))
	}
	for key, d := range decisions {
		d.Key = key
		if err := upsertDecision(ctx, t.tx, d); err != nil {
			return err
		}
	}
	return nil
}

// ResetDecisions removes every decision, forcing reclassification.
func (s *Store) ResetDecisions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM entry_decisions")
	if err != nil {
		return 0, fmt.Errorf("reset decisions: %w", mapSQLiteError(err))
	}
	return res.RowsAffected()
}

// Stats counts the cached rows.
type Stats struct {
	ExistingMedia int64
	Allowed       int64
	Excluded      int64
	Unset         int64
}

// Stats returns row counts for the inventory and the decision table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM existing_media").Scan(&st.ExistingMedia); err != nil {
		return Stats{}, fmt.Errorf("count existing media: %w", mapSQLiteError(err))
	}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN allowed = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN allowed = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN allowed IS NULL THEN 1 ELSE 0 END), 0)
		FROM entry_decisions`,
	).Scan(&st.Allowed, &st.Excluded, &st.Unset)
	if err != nil {
		return Stats{}, fmt.Errorf("count decisions: %w", mapSQLiteError(err))
	}
	return st, nil
}
