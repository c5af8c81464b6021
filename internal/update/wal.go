package update

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	walSuffix = ".wal"

	recordFile = "record.json"
	stagedFile = "staged"
	backupFile = "backup"
)

// WAL statuses, in transition order.
const (
	StatusStart    = "start"
	StatusReady    = "ready"
	StatusComplete = "complete"
)

// Record is the durable description of one in-flight update. Everything a
// later process needs to finish a rollback lives here; no in-memory state is
// required.
type Record struct {
	Status       string    `json:"status"`
	OriginalHash string    `json:"original_hash"`
	StagedHash   string    `json:"staged_hash,omitempty"`
	PID          int       `json:"pid"`
	Hostname     string    `json:"hostname"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WAL is the write-ahead log directory for one container. It is exclusively
// owned by the update that created it; the file lock guarantees no two
// updates share one.
type WAL struct {
	dir       string
	container string
	record    Record
}

// NewWAL creates a WAL handle for the given container path.
func NewWAL(containerPath string) *WAL {
	return &WAL{
		dir:       containerPath + walSuffix,
		container: containerPath,
	}
}

// Dir returns the WAL directory path.
func (w *WAL) Dir() string {
	return w.dir
}

// ContentHash returns the Keccak-256 digest of container bytes, hex encoded.
func ContentHash(data []byte) string {
	return hex.EncodeToString(ethcrypto.Keccak256(data))
}

// Begin records WAL-start with the hash of the unmodified container.
func (w *WAL) Begin(original []byte) error {
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return fmt.Errorf("creating WAL directory: %w", err)
	}

	hostname, _ := os.Hostname()
	now := time.Now().UTC()
	w.record = Record{
		Status:       StatusStart,
		OriginalHash: ContentHash(original),
		PID:          os.Getpid(),
		Hostname:     hostname,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := w.writeRecord(); err != nil {
		return err
	}

	// Snapshot the initial state so rollback never depends on the live file.
	return writeFileSync(filepath.Join(w.dir, backupFile), original)
}

// Stage persists the merged state and advances to WAL-ready.
func (w *WAL) Stage(merged []byte) error {
	if err := writeFileSync(filepath.Join(w.dir, stagedFile), merged); err != nil {
		return err
	}
	w.record.Status = StatusReady
	w.record.StagedHash = ContentHash(merged)
	w.record.UpdatedAt = time.Now().UTC()
	return w.writeRecord()
}

// Commit atomically replaces the container with the staged state and marks
// the WAL complete. The rename is the commit point: a reader racing the
// commit sees either the old or the new container, never a mixture.
func (w *WAL) Commit() error {
	staged := filepath.Join(w.dir, stagedFile)
	if err := os.Rename(staged, w.container); err != nil {
		return fmt.Errorf("committing staged container: %w", err)
	}

	w.record.Status = StatusComplete
	w.record.UpdatedAt = time.Now().UTC()
	if err := w.writeRecord(); err != nil {
		// The commit itself landed; a failed status write only delays
		// cleanup until the next reclamation pass.
		return nil //nolint:nilerr // commit is durable at this point
	}
	return nil
}

// Discard removes all WAL artifacts after a completed commit or rollback.
func (w *WAL) Discard() error {
	return os.RemoveAll(w.dir)
}

// Rollback restores the container from the WAL's backup snapshot and
// removes the artifacts. It reports ErrRollbackFailed when the snapshot
// cannot be restored.
func (w *WAL) Rollback() error {
	backup := filepath.Join(w.dir, backupFile)
	data, err := os.ReadFile(backup) //nolint:gosec // G304: WAL-internal path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Begin never snapshotted; the container was never touched.
			return w.Discard()
		}
		return fmt.Errorf("%w: reading backup: %w", ErrRollbackFailed, err)
	}

	if err := writeFileSync(w.container+".restore", data); err != nil {
		return fmt.Errorf("%w: staging restore: %w", ErrRollbackFailed, err)
	}
	if err := os.Rename(w.container+".restore", w.container); err != nil {
		return fmt.Errorf("%w: replacing container: %w", ErrRollbackFailed, err)
	}
	return w.Discard()
}

// Load reads a WAL record from disk, for reclamation.
func (w *WAL) Load() (Record, error) {
	data, err := os.ReadFile(filepath.Join(w.dir, recordFile)) //nolint:gosec // G304: WAL-internal path
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	w.record = rec
	return rec, nil
}

// Exists reports whether WAL artifacts are present for the container.
func (w *WAL) Exists() bool {
	_, err := os.Stat(filepath.Join(w.dir, recordFile))
	return err == nil
}

func (w *WAL) writeRecord() error {
	data, err := json.MarshalIndent(w.record, "", "  ")
	if err != nil {
		return err
	}
	return writeFileSync(filepath.Join(w.dir, recordFile), data)
}

// writeFileSync writes data and fsyncs before close so the WAL's ordering
// guarantees hold across power loss, not just process death.
func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600) //nolint:gosec // G304: WAL-internal path
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
