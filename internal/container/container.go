// Package container defines the on-disk encrypted container and its
// versioned codecs. A container is a minimal header plus one field value for
// every (chunk, share ID) position; unowned positions hold uniform random
// filler so the share table carries no structure an observer could read.
package container

import (
	"errors"
	"math/big"
)

const (
	// FilePermissions is the permission mode for container files.
	FilePermissions = 0o600

	// DirPermissions is the permission mode for container directories.
	DirPermissions = 0o750
)

var (
	// ErrFormat indicates an unsupported or unrecognized container layout.
	ErrFormat = errors.New("unrecognized container format")

	// ErrPositionOutOfRange indicates a (chunk, id) position outside the
	// container's geometry.
	ErrPositionOutOfRange = errors.New("share position out of range")
)

// Header is the container's public metadata. The prime travels as a decimal
// string so no JSON number precision is ever in play.
type Header struct {
	Salt        []byte
	Threshold   int
	TotalChunks int
	Prime       *big.Int
}

// Share is one (chunk, ID, value) record. Within one chunk, IDs are unique.
type Share struct {
	ChunkIndex int
	ShareID    int
	Value      *big.Int
}

// Container is the in-memory representation every codec version normalizes
// to. Values are stored densely: position (chunk, id) lives at
// chunk*spaceSize + (id-1).
type Container struct {
	Header    Header
	spaceSize int
	values    []*big.Int
}

// New creates an empty container covering totalChunks chunks over an ID
// space of spaceSize. All positions start nil; callers must fill them (see
// FillRandom) before the container is written anywhere.
func New(header Header, spaceSize int) *Container {
	return &Container{
		Header:    header,
		spaceSize: spaceSize,
		values:    make([]*big.Int, header.TotalChunks*spaceSize),
	}
}

// SpaceSize returns the size of the share-ID space.
func (c *Container) SpaceSize() int {
	return c.spaceSize
}

// index converts a (chunk, id) position to a flat offset.
func (c *Container) index(chunk, id int) (int, bool) {
	if chunk < 0 || chunk >= c.Header.TotalChunks || id < 1 || id > c.spaceSize {
		return 0, false
	}
	return chunk*c.spaceSize + (id - 1), true
}

// Get returns the value at (chunk, id).
func (c *Container) Get(chunk, id int) (*big.Int, bool) {
	i, ok := c.index(chunk, id)
	if !ok || c.values[i] == nil {
		return nil, false
	}
	return c.values[i], true
}

// Set stores a value at (chunk, id).
func (c *Container) Set(chunk, id int, value *big.Int) error {
	i, ok := c.index(chunk, id)
	if !ok {
		return ErrPositionOutOfRange
	}
	c.values[i] = value
	return nil
}

// Shares returns every populated position as a flat record list, ordered by
// (chunk, id).
func (c *Container) Shares() []Share {
	shares := make([]Share, 0, len(c.values))
	for i, v := range c.values {
		if v == nil {
			continue
		}
		shares = append(shares, Share{
			ChunkIndex: i / c.spaceSize,
			ShareID:    i%c.spaceSize + 1,
			Value:      v,
		})
	}
	return shares
}

// Clone returns a deep copy. The update engine mutates only clones so a
// failed merge can never leak into the loaded state.
func (c *Container) Clone() *Container {
	dup := &Container{
		Header: Header{
			Salt:        append([]byte(nil), c.Header.Salt...),
			Threshold:   c.Header.Threshold,
			TotalChunks: c.Header.TotalChunks,
			Prime:       new(big.Int).Set(c.Header.Prime),
		},
		spaceSize: c.spaceSize,
		values:    make([]*big.Int, len(c.values)),
	}
	for i, v := range c.values {
		if v != nil {
			dup.values[i] = new(big.Int).Set(v)
		}
	}
	return dup
}

// Grow extends the container to totalChunks chunks. New positions are nil
// and must be filled by the caller before the container is persisted.
func (c *Container) Grow(totalChunks int) {
	if totalChunks <= c.Header.TotalChunks {
		return
	}
	grown := make([]*big.Int, totalChunks*c.spaceSize)
	copy(grown, c.values)
	c.values = grown
	c.Header.TotalChunks = totalChunks
}

// Complete reports whether every position holds a value. Containers on disk
// are always complete; a hole means a codec or filler bug.
func (c *Container) Complete() bool {
	for _, v := range c.values {
		if v == nil {
			return false
		}
	}
	return true
}
