// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
// For production observability, consider integrating with Prometheus or similar.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Container operation metrics
	encryptsTotal   atomic.Int64
	decryptsTotal   atomic.Int64
	decryptFailures atomic.Int64

	// Update-path metrics
	updatesTotal   atomic.Int64
	rollbacksTotal atomic.Int64
	lockWaitNanos  atomic.Int64
	lockWaits      atomic.Int64

	// Reclamation metrics
	reclaimedArtifacts atomic.Int64
}

// Global is the global metrics instance.
// Use this for recording metrics throughout the application.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordEncrypt records a completed encryption.
func (m *Metrics) RecordEncrypt() {
	m.encryptsTotal.Add(1)
}

// RecordDecrypt records a decryption attempt and whether it failed.
// Failure here is the single undifferentiated outcome; the counter never
// distinguishes causes.
func (m *Metrics) RecordDecrypt(failed bool) {
	m.decryptsTotal.Add(1)
	if failed {
		m.decryptFailures.Add(1)
	}
}

// RecordUpdate records a committed atomic update.
func (m *Metrics) RecordUpdate() {
	m.updatesTotal.Add(1)
}

// RecordRollback records an update that was rolled back.
func (m *Metrics) RecordRollback() {
	m.rollbacksTotal.Add(1)
}

// RecordLockWait records time spent waiting for the container lock.
func (m *Metrics) RecordLockWait(d time.Duration) {
	m.lockWaits.Add(1)
	m.lockWaitNanos.Add(d.Nanoseconds())
}

// RecordReclaimedArtifact records one stale lock or WAL reclaimed.
func (m *Metrics) RecordReclaimedArtifact() {
	m.reclaimedArtifacts.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	EncryptsTotal      int64
	DecryptsTotal      int64
	DecryptFailures    int64
	UpdatesTotal       int64
	RollbacksTotal     int64
	LockWaits          int64
	LockWaitNanos      int64
	ReclaimedArtifacts int64
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		EncryptsTotal:      m.encryptsTotal.Load(),
		DecryptsTotal:      m.decryptsTotal.Load(),
		DecryptFailures:    m.decryptFailures.Load(),
		UpdatesTotal:       m.updatesTotal.Load(),
		RollbacksTotal:     m.rollbacksTotal.Load(),
		LockWaits:          m.lockWaits.Load(),
		LockWaitNanos:      m.lockWaitNanos.Load(),
		ReclaimedArtifacts: m.reclaimedArtifacts.Load(),
	}
}

// LockWaitAvgMs returns the average lock wait in milliseconds.
// Returns 0 if no lock has been taken.
func (m *Metrics) LockWaitAvgMs() float64 {
	waits := m.lockWaits.Load()
	if waits == 0 {
		return 0
	}
	return float64(m.lockWaitNanos.Load()) / float64(waits) / 1e6
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.encryptsTotal.Store(0)
	m.decryptsTotal.Store(0)
	m.decryptFailures.Store(0)
	m.updatesTotal.Store(0)
	m.rollbacksTotal.Store(0)
	m.lockWaits.Store(0)
	m.lockWaitNanos.Store(0)
	m.reclaimedArtifacts.Store(0)
}
