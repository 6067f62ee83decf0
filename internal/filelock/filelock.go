// Package filelock provides file locking and atomic write operations so
// concurrent sessqc runs can share an output directory without corrupting
// summaries or figures.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockTimeout is returned when a lock cannot be acquired within the
// requested timeout.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// lockRetryInterval is how often LockWithTimeout polls a contended lock.
const lockRetryInterval = 10 * time.Millisecond

// LockMetrics records how a single lock acquisition went.
type LockMetrics struct {
	Attempts int
	Wait     time.Duration
	TimedOut bool
}

// MonitorFunc receives metrics after each lock acquisition completes.
type MonitorFunc func(path string, metrics LockMetrics)

// FileLock wraps a flock file lock for coordinating access to files.
type FileLock struct {
	flock *flock.Flock
	path  string

	mu      sync.Mutex
	monitor MonitorFunc
	last    LockMetrics
}

// NewFileLock creates a new file lock for the given path.
// The lock file will be created at the specified path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// SetMonitor registers a callback invoked with acquisition metrics after each
// Lock, TryLock or LockWithTimeout call. Pass nil to remove the monitor.
func (fl *FileLock) SetMonitor(fn MonitorFunc) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.monitor = fn
}

// LastMetrics returns the metrics recorded by the most recent acquisition.
func (fl *FileLock) LastMetrics() LockMetrics {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.last
}

// record stores metrics and notifies the monitor if one is registered.
func (fl *FileLock) record(metrics LockMetrics) {
	fl.mu.Lock()
	fl.last = metrics
	monitor := fl.monitor
	fl.mu.Unlock()

	if monitor != nil {
		monitor(fl.path, metrics)
	}
}

// Lock acquires an exclusive lock on the file, blocking until the lock is available.
func (fl *FileLock) Lock() error {
	start := time.Now()
	err := fl.flock.Lock()
	fl.record(LockMetrics{Attempts: 1, Wait: time.Since(start)})

	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// LockWithTimeout acquires an exclusive lock, polling a contended lock until
// the timeout elapses. Returns an error wrapping ErrLockTimeout if the lock
// could not be acquired in time.
func (fl *FileLock) LockWithTimeout(timeout time.Duration) error {
	start := time.Now()
	deadline := start.Add(timeout)
	metrics := LockMetrics{}

	for {
		metrics.Attempts++

		acquired, err := fl.flock.TryLock()
		if err != nil {
			metrics.Wait = time.Since(start)
			fl.record(metrics)
			return fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
		}
		if acquired {
			metrics.Wait = time.Since(start)
			fl.record(metrics)
			return nil
		}

		if time.Now().After(deadline) {
			metrics.TimedOut = true
			metrics.Wait = time.Since(start)
			fl.record(metrics)
			return fmt.Errorf("failed to acquire lock on %s within %s: %w", fl.path, timeout, ErrLockTimeout)
		}

		time.Sleep(lockRetryInterval)
	}
}

// TryLock attempts to acquire an exclusive lock on the file without blocking.
// Returns true if the lock was acquired, false if the lock is held by another process.
func (fl *FileLock) TryLock() (bool, error) {
	start := time.Now()
	acquired, err := fl.flock.TryLock()
	fl.record(LockMetrics{Attempts: 1, Wait: time.Since(start)})

	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// AtomicWrite writes data to a file atomically using a temp file and rename
// strategy, so readers never see a half-written summary even if a run is
// interrupted.
//
// The temp file is created in the same directory as the target to keep the
// rename on one filesystem, where it is atomic. If the operation fails at any
// point, the original file (if it exists) remains unchanged.
func AtomicWrite(path string, data []byte) error {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	// Ensure temp file is cleaned up on error
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	// Sync to ensure data is written to disk
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Set correct permissions (0644 = rw-r--r--)
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	// Success - prevent cleanup of temp file since it's now renamed
	tempFile = nil

	return nil
}

// LockAndWrite acquires a lock, performs an atomic write, releases the lock
// and removes the lock file. This is the pattern batch runs use when several
// of them may target the same summary file.
//
// The lock path is derived by appending ".lock" to the target path.
// Example: writing to "a01_summary.txt" uses lock file "a01_summary.txt.lock"
func LockAndWrite(path string, data []byte) error {
	lockPath := path + ".lock"
	lock := NewFileLock(lockPath)

	if err := lock.Lock(); err != nil {
		return err
	}
	defer func() {
		lock.Unlock()
		os.Remove(lockPath)
	}()

	// Perform atomic write while holding lock
	return AtomicWrite(path, data)
}
