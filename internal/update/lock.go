// Package update replaces one party's shares in an existing container
// without disturbing any other position, guarded by a file-scoped advisory
// lock and a write-ahead log so that any failure - including a killed
// process - leaves the container either untouched or fully updated.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"
)

const lockSuffix = ".lock"

var (
	// ErrLockTimeout is returned when the advisory lock cannot be acquired
	// within the configured budget.
	ErrLockTimeout = errors.New("timed out acquiring container lock")

	// ErrRollbackFailed marks the one unrecoverable condition: an update
	// failed and the pre-update state could not be restored. Callers must
	// stop automated retries when they see it.
	ErrRollbackFailed = errors.New("rollback failed")
)

// lockInfo identifies the owner of an advisory lock file.
type lockInfo struct {
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	CreatedAt time.Time `json:"created_at"`
}

// FileLock is an exclusive advisory lock scoped to one container file,
// implemented as an O_EXCL sidecar so it needs no platform locking
// primitives and survives for post-crash inspection.
type FileLock struct {
	path      string
	container string
	held      bool
}

// NewFileLock creates a lock handle for the given container path.
func NewFileLock(containerPath string) *FileLock {
	return &FileLock{
		path:      containerPath + lockSuffix,
		container: containerPath,
	}
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// Acquire takes the lock, retrying with paced backoff until timeout. Locks
// whose owner is no longer alive, or which have outlived staleAfter, are
// broken and reacquired.
func (l *FileLock) Acquire(ctx context.Context, timeout, staleAfter time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Paced retry rather than a tight spin; first attempt is immediate.
	limiter := rate.NewLimiter(rate.Every(50*time.Millisecond), 1)

	for {
		if err := l.tryAcquire(); err == nil {
			l.held = true
			return nil
		}

		if l.breakIfStale(staleAfter) {
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %s", ErrLockTimeout, l.container)
		}
	}
}

// tryAcquire attempts a single O_EXCL creation of the lock file.
func (l *FileLock) tryAcquire() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	hostname, _ := os.Hostname()
	info := lockInfo{
		PID:       os.Getpid(),
		Hostname:  hostname,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(info)
	if err == nil {
		_, err = f.Write(data)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(l.path)
		return err
	}
	return nil
}

// breakIfStale removes the lock file when its owner is provably gone.
// Returns true when the lock was broken and an immediate retry is worthwhile.
func (l *FileLock) breakIfStale(staleAfter time.Duration) bool {
	info, err := readLockInfo(l.path)
	if err != nil {
		// Unreadable or vanished mid-check; let the retry loop sort it out.
		return false
	}
	if !lockStale(info, staleAfter) {
		return false
	}
	return os.Remove(l.path) == nil
}

// Release drops the lock. Safe to call when not held.
func (l *FileLock) Release() {
	if !l.held {
		return
	}
	_ = os.Remove(l.path)
	l.held = false
}

func readLockInfo(path string) (lockInfo, error) {
	var info lockInfo
	data, err := os.ReadFile(path) //nolint:gosec // G304: sidecar path derived from container path
	if err != nil {
		return info, err
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return info, err
	}
	return info, nil
}

// lockStale reports whether a lock's owner is dead or the lock has outlived
// its maximum age. Liveness is only meaningful for locks taken on this host.
func lockStale(info lockInfo, staleAfter time.Duration) bool {
	if staleAfter > 0 && time.Since(info.CreatedAt) > staleAfter {
		return true
	}
	hostname, _ := os.Hostname()
	if info.Hostname != hostname {
		return false
	}
	return !processAlive(info.PID)
}
