package catalog

import "errors"

var (
	// ErrUnknownCategory indicates a category value outside the closed set.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrNotWritable indicates a category that never produces a pointer file.
	ErrNotWritable = errors.New("category has no output path")

	// ErrEmptyTitle indicates a title that sanitizes to nothing.
	ErrEmptyTitle = errors.New("empty title")
)
