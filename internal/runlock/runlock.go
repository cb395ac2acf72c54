// Package runlock keeps two sync runs from working on the same database
// and output tree at once.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned when another process holds the lock.
var ErrAlreadyRunning = errors.New("another strmsync run is in progress")

// Lock is an exclusive advisory file lock.
type Lock struct {
	fl *flock.Flock
}

// PathFor returns the lock file used for a database path.
func PathFor(dbPath string) string {
	return dbPath + ".lock"
}

// Acquire takes the lock at path without waiting.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrAlreadyRunning)
	}
	return &Lock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// Release unlocks. The lock file is left in place.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
