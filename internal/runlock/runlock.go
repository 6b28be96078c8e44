// Package runlock keeps two pipeline runs from writing the same output
// directory at once. The lock is an advisory flock on <dir>/.etl.lock and is
// released when the process exits, even on a crash.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the lock file created inside the guarded directory.
const FileName = ".etl.lock"

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("another run holds the output lock")

// Lock is a held run lock.
type Lock struct {
	f *os.File
}

// Acquire takes the lock for dir without blocking. dir is created if needed.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("runlock: %w", err)
	}
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("runlock: %w", err)
	}
	if err := tryLock(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("runlock %s: %w", path, err)
	}
	return &Lock{f: f}, nil
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	f := l.f
	l.f = nil
	uerr := unlock(f)
	return errors.Join(uerr, f.Close())
}
