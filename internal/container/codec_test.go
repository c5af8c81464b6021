package container

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2^521 - 1, the same Mersenne prime the default configuration ships. The
// default 32-byte chunk width needs a prime wider than 256 bits.
var testPrime = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 521), big.NewInt(1))

func testHeader(chunks int) Header {
	return Header{
		Salt:        []byte("0123456789abcdef"),
		Threshold:   3,
		TotalChunks: chunks,
		Prime:       new(big.Int).Set(testPrime),
	}
}

func filledContainer(t *testing.T, chunks, spaceSize int) *Container {
	t.Helper()
	c := New(testHeader(chunks), spaceSize)
	require.NoError(t, FillRandom(c))
	return c
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	c := filledContainer(t, 4, 25)
	require.NoError(t, c.Set(2, 7, big.NewInt(424242)))

	data, err := Marshal(c)
	require.NoError(t, err)

	parsed, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, c.Header.Salt, parsed.Header.Salt)
	assert.Equal(t, c.Header.Threshold, parsed.Header.Threshold)
	assert.Equal(t, c.Header.TotalChunks, parsed.Header.TotalChunks)
	assert.Zero(t, c.Header.Prime.Cmp(parsed.Header.Prime))
	assert.Equal(t, 25, parsed.SpaceSize())

	v, ok := parsed.Get(2, 7)
	require.True(t, ok)
	assert.Zero(t, v.Cmp(big.NewInt(424242)))

	for _, s := range c.Shares() {
		got, ok := parsed.Get(s.ChunkIndex, s.ShareID)
		require.True(t, ok)
		assert.Zero(t, got.Cmp(s.Value))
	}
}

func TestUnmarshalLegacyRecordLayout(t *testing.T) {
	// Build a v1-shaped document by hand: explicit record objects, no
	// version field, no flat array.
	c := filledContainer(t, 2, 5)

	type legacyFile struct {
		Header struct {
			Salt        string `json:"salt"`
			Threshold   int    `json:"threshold"`
			TotalChunks int    `json:"total_chunks"`
			Prime       string `json:"prime"`
		} `json:"header"`
		Shares []shareJSON `json:"shares"`
	}

	var legacy legacyFile
	legacy.Header.Salt = "MDEyMzQ1Njc4OWFiY2RlZg==" // base64("0123456789abcdef")
	legacy.Header.Threshold = 3
	legacy.Header.TotalChunks = 2
	legacy.Header.Prime = testPrime.String()
	for _, s := range c.Shares() {
		legacy.Shares = append(legacy.Shares, shareJSON{
			ChunkIndex: s.ChunkIndex,
			ShareID:    s.ShareID,
			Value:      s.Value.String(),
		})
	}

	data, err := json.Marshal(legacy)
	require.NoError(t, err)

	parsed, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, 5, parsed.SpaceSize())

	for _, s := range c.Shares() {
		got, ok := parsed.Get(s.ChunkIndex, s.ShareID)
		require.True(t, ok)
		assert.Zero(t, got.Cmp(s.Value))
	}

	// Re-serializing a normalized legacy container emits the current layout.
	reencoded, err := Marshal(parsed)
	require.NoError(t, err)
	assert.Contains(t, string(reencoded), `"values"`)
	assert.NotContains(t, string(reencoded), `"shares"`)
}

func TestUnmarshalFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"NotJSON", "definitely not json"},
		{"EmptyObject", "{}"},
		{"BadSalt", `{"header":{"salt":"!!","threshold":3,"total_chunks":1,"prime":"7"},"values":["1"]}`},
		{"BadPrime", `{"header":{"salt":"","threshold":3,"total_chunks":1,"prime":"abc"},"values":["1"]}`},
		{"BadThreshold", `{"header":{"salt":"","threshold":1,"total_chunks":1,"prime":"7"},"values":["1"]}`},
		{"ValueAbovePrime", `{"header":{"salt":"","threshold":2,"total_chunks":1,"prime":"7"},"values":["9"]}`},
		{"UnevenValues", `{"header":{"salt":"","threshold":2,"total_chunks":2,"prime":"7"},"values":["1","2","3"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.plm")

	c := filledContainer(t, 3, 10)
	require.NoError(t, Save(path, c))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePermissions), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.Header.TotalChunks, loaded.Header.TotalChunks)
	assert.True(t, loaded.Complete())

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMarshalRejectsIncomplete(t *testing.T) {
	c := New(testHeader(1), 5)
	_, err := Marshal(c)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestGrowAndClone(t *testing.T) {
	c := filledContainer(t, 2, 8)
	dup := c.Clone()

	c.Grow(4)
	assert.Equal(t, 4, c.Header.TotalChunks)
	assert.False(t, c.Complete(), "grown chunks start empty")
	require.NoError(t, FillRandom(c))
	assert.True(t, c.Complete())

	// The clone is unaffected by growth or mutation of the original.
	assert.Equal(t, 2, dup.Header.TotalChunks)
	orig, ok := dup.Get(0, 1)
	require.True(t, ok)
	require.NoError(t, c.Set(0, 1, big.NewInt(1)))
	after, ok := dup.Get(0, 1)
	require.True(t, ok)
	assert.Zero(t, orig.Cmp(after))
}
