// Package filelock provides advisory file locks and atomic file writes, used
// to serialize settings saves and to keep a single batch scan running per
// user.
package filelock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned by [Lock.TryLock] when another holder owns the lock.
var ErrLocked = errors.New("lock is held by another process")

// Lock is an exclusive advisory lock backed by a lock file.
type Lock struct {
	flock *flock.Flock
	path  string
}

// New creates a [Lock] for the lock file at path. The file is created on
// first use.
func New(path string) *Lock {
	return &Lock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Lock blocks until the lock is acquired.
func (l *Lock) Lock() error {
	err := os.MkdirAll(filepath.Dir(l.path), 0o700)
	if err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	err = l.flock.Lock()
	if err != nil {
		return fmt.Errorf("acquire lock on %s: %w", l.path, err)
	}

	return nil
}

// TryLock acquires the lock without blocking. It returns [ErrLocked] when
// the lock is held elsewhere.
func (l *Lock) TryLock() error {
	err := os.MkdirAll(filepath.Dir(l.path), 0o700)
	if err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	ok, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("try lock on %s: %w", l.path, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", l.path, ErrLocked)
	}

	return nil
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	err := l.flock.Unlock()
	if err != nil {
		return fmt.Errorf("release lock on %s: %w", l.path, err)
	}

	return nil
}

// AtomicWrite writes data to path through a temporary file in the same
// directory followed by a rename, so readers never observe a partial file.
func AtomicWrite(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)

	err := os.MkdirAll(dir, 0o700)
	if err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpPath := tmp.Name()
	renamed := false

	defer func() {
		if !renamed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	_, err = tmp.Write(data)
	if err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	err = tmp.Sync()
	if err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	err = os.Chmod(tmpPath, perm)
	if err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}

	err = os.Rename(tmpPath, path)
	if err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}

	renamed = true

	return nil
}

// LockAndWrite holds the lock at path+".lock" while writing data atomically.
func LockAndWrite(path string, data []byte, perm fs.FileMode) error {
	lock := New(path + ".lock")

	err := lock.Lock()
	if err != nil {
		return err
	}

	defer func() {
		_ = lock.Unlock()
	}()

	return AtomicWrite(path, data, perm)
}
