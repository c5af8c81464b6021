package update

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrz1836/palimpsest/internal/metrics"
)

// ReclaimResult describes what a reclamation pass did.
type ReclaimResult struct {
	LocksRemoved   int
	WALsRolledBack int
	WALsCompleted  int
}

// Reclaim scans a directory for lock and WAL artifacts whose owner is dead
// or whose age exceeds staleAfter, and recovers each one through the same
// rollback path a live update would use. It is safe to run at startup or
// periodically; artifacts with living owners are left alone.
func Reclaim(dir string, staleAfter time.Duration) (ReclaimResult, error) {
	var result ReclaimResult

	entries, err := os.ReadDir(dir)
	if err != nil {
		return result, fmt.Errorf("reading directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		full := filepath.Join(dir, name)

		switch {
		case strings.HasSuffix(name, lockSuffix) && !entry.IsDir():
			info, err := readLockInfo(full)
			if err != nil || lockStale(info, staleAfter) {
				if os.Remove(full) == nil {
					result.LocksRemoved++
					metrics.Global.RecordReclaimedArtifact()
				}
			}

		case strings.HasSuffix(name, walSuffix) && entry.IsDir():
			containerPath := strings.TrimSuffix(full, walSuffix)
			wal := NewWAL(containerPath)
			rec, err := wal.Load()
			if err != nil {
				// Unreadable record: the WAL never got past creation.
				_ = wal.Discard()
				result.WALsRolledBack++
				metrics.Global.RecordReclaimedArtifact()
				continue
			}
			if !walStale(rec, staleAfter) {
				continue
			}
			completed, err := recoverStale(containerPath, wal, rec)
			if err != nil {
				return result, err
			}
			if completed {
				result.WALsCompleted++
			} else {
				result.WALsRolledBack++
			}
			metrics.Global.RecordReclaimedArtifact()
		}
	}

	return result, nil
}

// walStale mirrors lock staleness: dead owner, or too old.
func walStale(rec Record, staleAfter time.Duration) bool {
	if staleAfter > 0 && time.Since(rec.UpdatedAt) > staleAfter {
		return true
	}
	hostname, _ := os.Hostname()
	if rec.Hostname != hostname {
		return false
	}
	return !processAlive(rec.PID)
}

// recoverWAL finishes or rolls back a WAL found under a freshly acquired
// lock, where staleness is already implied.
func recoverWAL(containerPath string, wal *WAL) error {
	rec, err := wal.Load()
	if err != nil {
		return wal.Discard()
	}
	_, err = recoverStale(containerPath, wal, rec)
	return err
}

// recoverStale decides between finishing and undoing an interrupted update.
// The commit rename is atomic, so the container on disk matches either the
// original hash or the staged hash; that comparison tells us which side of
// the commit point the dead update was on.
func recoverStale(containerPath string, wal *WAL, rec Record) (completed bool, err error) {
	switch rec.Status {
	case StatusComplete:
		// Commit landed; only cleanup was interrupted.
		return true, wal.Discard()

	case StatusReady:
		current, readErr := os.ReadFile(containerPath) //nolint:gosec // G304: reclamation path
		if readErr == nil && rec.StagedHash != "" && ContentHash(current) == rec.StagedHash {
			// Crashed between rename and the complete marker.
			return true, wal.Discard()
		}
		return false, wal.Rollback()

	case StatusStart:
		return false, wal.Rollback()

	default:
		return false, wal.Discard()
	}
}
