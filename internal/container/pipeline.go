package container

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
	"math/big"
)

// DefaultChunkBytes is the plaintext chunk width. With a several-hundred-bit
// prime every 32-byte chunk maps into a single field element with headroom.
const DefaultChunkBytes = 32

// EncodeDocument runs the preprocessing pipeline: transport-safe base64,
// gzip, then fixed-size zero-padded chunking into field elements. Every
// chunk is exactly chunkBytes wide, so chunk byte-length never leaks
// anything about the document and is always recoverable without a length
// field.
func EncodeDocument(doc []byte, chunkBytes int, prime *big.Int) ([]*big.Int, error) {
	if chunkBytes <= 0 {
		chunkBytes = DefaultChunkBytes
	}
	if chunkBytes*8 >= prime.BitLen() {
		return nil, fmt.Errorf("%w: chunk width %d too wide for prime", ErrFormat, chunkBytes)
	}

	encoded := base64.StdEncoding.EncodeToString(doc)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(encoded)); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	packed := buf.Bytes()
	if pad := len(packed) % chunkBytes; pad != 0 {
		packed = append(packed, make([]byte, chunkBytes-pad)...)
	}

	chunks := make([]*big.Int, 0, len(packed)/chunkBytes)
	for off := 0; off < len(packed); off += chunkBytes {
		chunks = append(chunks, new(big.Int).SetBytes(packed[off:off+chunkBytes]))
	}
	return chunks, nil
}

// DecodeDocument reverses the pipeline. The gzip reader runs with
// Multistream(false), which stops cleanly at the end of the compressed
// member and ignores the zero padding, so no pad-stripping heuristic is
// needed. Callers must fold any error into their single decryption-failure
// outcome; the distinct internal causes here must never reach a user.
func DecodeDocument(chunks []*big.Int, chunkBytes int, prime *big.Int) ([]byte, error) {
	if chunkBytes <= 0 {
		chunkBytes = DefaultChunkBytes
	}

	packed := make([]byte, 0, len(chunks)*chunkBytes)
	fixed := make([]byte, chunkBytes)
	for _, c := range chunks {
		if c.Sign() < 0 || c.BitLen() > chunkBytes*8 {
			// Chunks past the document's compressed stream are other
			// parties' territory and can hold arbitrary field elements.
			// The gzip member boundary below decides whether enough of
			// the stream was recovered before this point.
			break
		}
		c.FillBytes(fixed)
		packed = append(packed, fixed...)
	}

	zr, err := gzip.NewReader(bytes.NewReader(packed))
	if err != nil {
		return nil, err
	}
	zr.Multistream(false)
	encoded, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	if err := zr.Close(); err != nil {
		return nil, err
	}

	return base64.StdEncoding.DecodeString(string(encoded))
}
