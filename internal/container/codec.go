package container

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/mrz1836/palimpsest/internal/fileutil"
)

// The on-disk format has two layouts. The original verbose layout (v1)
// spells out every record as an object; the current layout (v2) stores a
// flat value array addressed by chunk*spaceSize + (id-1). Readers accept
// both and normalize to the in-memory Container before any other component
// sees the data; writers always emit v2.

// headerJSON is the serialized header shared by both layouts.
type headerJSON struct {
	Version     int    `json:"version,omitempty"`
	Salt        string `json:"salt"`
	Threshold   int    `json:"threshold"`
	TotalChunks int    `json:"total_chunks"`
	Prime       string `json:"prime"`
}

// shareJSON is a v1 record.
type shareJSON struct {
	ChunkIndex int    `json:"chunk_index"`
	ShareID    int    `json:"share_id"`
	Value      string `json:"value"`
}

// fileShape is the union of both layouts, used to sniff the version.
type fileShape struct {
	Header headerJSON  `json:"header"`
	Shares []shareJSON `json:"shares,omitempty"`
	Values []string    `json:"values,omitempty"`
}

// Marshal serializes a container in the current (v2) layout.
func Marshal(c *Container) ([]byte, error) {
	if !c.Complete() {
		return nil, fmt.Errorf("%w: container has unfilled positions", ErrFormat)
	}

	values := make([]string, len(c.values))
	for i, v := range c.values {
		values[i] = v.String()
	}

	shape := fileShape{
		Header: headerJSON{
			Version:     2,
			Salt:        base64.StdEncoding.EncodeToString(c.Header.Salt),
			Threshold:   c.Header.Threshold,
			TotalChunks: c.Header.TotalChunks,
			Prime:       c.Header.Prime.String(),
		},
		Values: values,
	}
	return json.MarshalIndent(shape, "", "  ")
}

// Unmarshal parses either layout and normalizes it to a Container.
func Unmarshal(data []byte) (*Container, error) {
	var shape fileShape
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	header, err := parseHeader(shape.Header)
	if err != nil {
		return nil, err
	}

	switch {
	case len(shape.Values) > 0:
		return unmarshalFlat(header, shape.Values)
	case len(shape.Shares) > 0:
		return unmarshalRecords(header, shape.Shares)
	default:
		return nil, fmt.Errorf("%w: neither values nor shares present", ErrFormat)
	}
}

func parseHeader(h headerJSON) (Header, error) {
	salt, err := base64.StdEncoding.DecodeString(h.Salt)
	if err != nil {
		return Header{}, fmt.Errorf("%w: bad salt encoding", ErrFormat)
	}
	prime, ok := new(big.Int).SetString(h.Prime, 10)
	if !ok || prime.Sign() <= 0 {
		return Header{}, fmt.Errorf("%w: bad prime", ErrFormat)
	}
	if h.Threshold < 2 || h.TotalChunks < 1 {
		return Header{}, fmt.Errorf("%w: bad header geometry", ErrFormat)
	}
	return Header{
		Salt:        salt,
		Threshold:   h.Threshold,
		TotalChunks: h.TotalChunks,
		Prime:       prime,
	}, nil
}

// unmarshalFlat reads the v2 layout. The ID-space size is implied by the
// value count, which must divide evenly into chunks.
func unmarshalFlat(header Header, values []string) (*Container, error) {
	if len(values)%header.TotalChunks != 0 {
		return nil, fmt.Errorf("%w: value count %d not divisible by %d chunks", ErrFormat, len(values), header.TotalChunks)
	}
	spaceSize := len(values) / header.TotalChunks

	c := New(header, spaceSize)
	for i, s := range values {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok || v.Sign() < 0 || v.Cmp(header.Prime) >= 0 {
			return nil, fmt.Errorf("%w: value %d out of field range", ErrFormat, i)
		}
		c.values[i] = v
	}
	return c, nil
}

// unmarshalRecords reads the legacy v1 layout. Legacy containers are also
// dense, so the space size is the record count divided by the chunk count.
func unmarshalRecords(header Header, records []shareJSON) (*Container, error) {
	if len(records)%header.TotalChunks != 0 {
		return nil, fmt.Errorf("%w: record count %d not divisible by %d chunks", ErrFormat, len(records), header.TotalChunks)
	}
	spaceSize := len(records) / header.TotalChunks

	c := New(header, spaceSize)
	for _, r := range records {
		v, ok := new(big.Int).SetString(r.Value, 10)
		if !ok || v.Sign() < 0 || v.Cmp(header.Prime) >= 0 {
			return nil, fmt.Errorf("%w: record (%d,%d) out of field range", ErrFormat, r.ChunkIndex, r.ShareID)
		}
		if _, exists := c.Get(r.ChunkIndex, r.ShareID); exists {
			return nil, fmt.Errorf("%w: duplicate record (%d,%d)", ErrFormat, r.ChunkIndex, r.ShareID)
		}
		if err := c.Set(r.ChunkIndex, r.ShareID, v); err != nil {
			return nil, fmt.Errorf("%w: record (%d,%d) outside geometry", ErrFormat, r.ChunkIndex, r.ShareID)
		}
	}
	if !c.Complete() {
		return nil, fmt.Errorf("%w: sparse legacy container", ErrFormat)
	}
	return c, nil
}

// Load reads and parses a container file.
func Load(path string) (*Container, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from validated CLI input
	if err != nil {
		return nil, fmt.Errorf("reading container file: %w", err)
	}
	return Unmarshal(data)
}

// Save writes a container atomically so a crashed write never leaves a
// half-serialized container behind.
func Save(path string, c *Container) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		return fmt.Errorf("creating container directory: %w", err)
	}

	if err := fileutil.WriteAtomic(path, data, FilePermissions); err != nil {
		return fmt.Errorf("replacing container file: %w", err)
	}
	return nil
}
