package update

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mrz1836/palimpsest/internal/metrics"
)

// Config tunes the update engine's locking and staleness behavior.
type Config struct {
	// LockTimeout bounds how long Apply waits for the advisory lock.
	LockTimeout time.Duration

	// StaleAfter is the age beyond which abandoned lock and WAL artifacts
	// are considered reclaimable regardless of owner liveness.
	StaleAfter time.Duration
}

// DefaultConfig returns conservative lock and staleness budgets.
func DefaultConfig() Config {
	return Config{
		LockTimeout: 10 * time.Second,
		StaleAfter:  5 * time.Minute,
	}
}

// MergeFunc produces the fully merged container bytes from the current
// container bytes. It must replace only the caller's positions and leave
// every other byte-equivalent position intact.
type MergeFunc func(current []byte) ([]byte, error)

// VerifyFunc checks that the merged state decrypts back to the document
// just written. A verification failure aborts the commit.
type VerifyFunc func(merged []byte) error

// Engine drives the Idle -> Locked -> WAL-Start -> WAL-Ready -> Committed
// state machine, with rollback reachable from any post-lock failure.
type Engine struct {
	cfg Config
}

// NewEngine creates an update engine.
func NewEngine(cfg Config) *Engine {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultConfig().LockTimeout
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultConfig().StaleAfter
	}
	return &Engine{cfg: cfg}
}

// Apply runs one atomic update against the container at path. On any error
// after the WAL has started, the container is rolled back to its pre-update
// state and the triggering error is surfaced unchanged; only a failed
// rollback adds its own marker.
func (e *Engine) Apply(ctx context.Context, path string, merge MergeFunc, verify VerifyFunc) error {
	lock := NewFileLock(path)

	lockStart := time.Now()
	if err := lock.Acquire(ctx, e.cfg.LockTimeout, e.cfg.StaleAfter); err != nil {
		return err
	}
	metrics.Global.RecordLockWait(time.Since(lockStart))
	defer lock.Release()

	// A leftover WAL under a fresh lock means a previous update died here.
	// Recover it before layering a new update on top.
	wal := NewWAL(path)
	if wal.Exists() {
		if err := recoverWAL(path, wal); err != nil {
			return err
		}
	}

	original, err := os.ReadFile(path) //nolint:gosec // G304: path comes from validated CLI input
	if err != nil {
		return fmt.Errorf("reading container: %w", err)
	}

	if err := e.apply(wal, original, merge, verify); err != nil {
		metrics.Global.RecordRollback()
		if rbErr := wal.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (original error: %w)", rbErr, err)
		}
		return err
	}

	metrics.Global.RecordUpdate()
	return nil
}

// apply performs the WAL transitions; the caller owns rollback.
func (e *Engine) apply(wal *WAL, original []byte, merge MergeFunc, verify VerifyFunc) error {
	if err := wal.Begin(original); err != nil {
		return err
	}

	merged, err := merge(original)
	if err != nil {
		return err
	}

	if err := wal.Stage(merged); err != nil {
		return err
	}

	// Self-verification: the merged state must decrypt with the credentials
	// that produced it before it is allowed to become durable.
	if err := verify(merged); err != nil {
		return fmt.Errorf("self-verification failed: %w", err)
	}

	if err := wal.Commit(); err != nil {
		return err
	}
	return wal.Discard()
}
