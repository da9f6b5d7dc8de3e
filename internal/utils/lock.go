package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockFileSuffix = ".lock"
)

// OutputLock is an advisory lock on an output file, held for the lifetime
// of a scrape so two processes never rewrite the same file.
type OutputLock struct {
	lock *flock.Flock
	path string
}

// NewOutputLock creates a lock next to outputPath.
func NewOutputLock(outputPath string) (*OutputLock, error) {
	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute output path: %w", err)
	}
	lockPath := absPath + lockFileSuffix
	return &OutputLock{
		lock: flock.New(lockPath),
		path: lockPath,
	}, nil
}

// Path returns the lock file path.
func (l *OutputLock) Path() string {
	return l.path
}

// Lock acquires the lock, waiting if another process holds it.
func (l *OutputLock) Lock() error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}

	if !locked {
		Log.Warnf("Another granfondo process is writing %s, waiting for it to finish...", l.path)
		if err := l.lock.Lock(); err != nil {
			return fmt.Errorf("failed to acquire lock on %s after waiting: %w", l.path, err)
		}
	}
	return nil
}

// TryLock acquires the lock without waiting.
func (l *OutputLock) TryLock() (bool, error) {
	locked, err := l.lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}
	return locked, nil
}

// Unlock releases the lock. The lock file stays behind: removing it would
// let a waiter and a newcomer lock two different inodes.
func (l *OutputLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}
