package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordDecrypt(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordDecrypt(false)
	m.RecordDecrypt(true)
	m.RecordDecrypt(false)

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.DecryptsTotal)
	assert.Equal(t, int64(1), snap.DecryptFailures)
}

func TestMetrics_UpdatePath(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordUpdate()
	m.RecordUpdate()
	m.RecordRollback()
	m.RecordReclaimedArtifact()

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.UpdatesTotal)
	assert.Equal(t, int64(1), snap.RollbacksTotal)
	assert.Equal(t, int64(1), snap.ReclaimedArtifacts)
}

func TestMetrics_LockWaitAvg(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	// No waits
	assert.InDelta(t, 0.0, m.LockWaitAvgMs(), 0.001)

	// Two waits: 100ms and 200ms = 150ms avg
	m.RecordLockWait(100 * time.Millisecond)
	m.RecordLockWait(200 * time.Millisecond)

	assert.InDelta(t, 150.0, m.LockWaitAvgMs(), 1.0)
}

func TestMetrics_Snapshot(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordEncrypt()
	m.RecordDecrypt(false)
	m.RecordLockWait(time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.EncryptsTotal)
	assert.Equal(t, int64(1), snap.DecryptsTotal)
	assert.Equal(t, int64(1), snap.LockWaits)
}

func TestMetrics_Reset(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordEncrypt()
	m.RecordUpdate()
	m.RecordDecrypt(true)

	m.Reset()

	snap := m.Snapshot()
	assert.Equal(t, int64(0), snap.EncryptsTotal)
	assert.Equal(t, int64(0), snap.UpdatesTotal)
	assert.Equal(t, int64(0), snap.DecryptsTotal)
}

func TestGlobal(t *testing.T) {
	// Test that Global is initialized
	assert.NotNil(t, Global)

	// Reset to not affect other tests
	Global.Reset()
}
