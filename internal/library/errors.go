package library

import "errors"

// Store errors. Driver errors are mapped onto these by mapSQLiteError so
// callers never match on SQLite message text.
var (
	ErrNotFound   = errors.New("library: no record for key")
	ErrDuplicate  = errors.New("library: key already recorded")
	ErrConstraint = errors.New("library: row rejected by schema")
)
