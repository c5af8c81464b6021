package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_Struct(t *testing.T) {
	t.Parallel()

	type status struct {
		Path   string `json:"path"`
		Chunks int    `json:"chunks"`
	}

	var buf bytes.Buffer
	err := writeJSON(&buf, status{Path: "/tmp/vault.plm", Chunks: 16})
	require.NoError(t, err)

	// Indented output
	output := buf.String()
	assert.Contains(t, output, "\n")
	assert.Contains(t, output, "  ")

	var result status
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "/tmp/vault.plm", result.Path)
	assert.Equal(t, 16, result.Chunks)
}

func TestWriteJSON_Map(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"status":    "created",
		"threshold": 3,
		"complete":  true,
	}

	var buf bytes.Buffer
	err := writeJSON(&buf, data)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "created", result["status"])
	assert.InDelta(t, float64(3), result["threshold"], 0.0)
	assert.Equal(t, true, result["complete"])
}

func TestWriteJSON_WriterError(t *testing.T) {
	t.Parallel()

	errWriter := &errorWriter{err: errors.New("write failed")} //nolint:err113 // test error

	err := writeJSON(errWriter, map[string]string{"key": "value"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write failed")
}

// errorWriter is a writer that always returns an error.
type errorWriter struct {
	err error
}

func (w *errorWriter) Write(_ []byte) (n int, err error) {
	return 0, w.err
}

var _ io.Writer = (*errorWriter)(nil)
