package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/palimpsest/internal/output"
)

func TestCanRenderQR(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	assert.False(t, output.CanRenderQR(&buf))
	assert.False(t, output.CanRenderQR(nil))
}

func TestRenderQRNonTerminal(t *testing.T) {
	t.Parallel()
	// Piped output gets the text form only; a QR code in a pipe is noise.
	var buf bytes.Buffer
	err := output.RenderQR(&buf, "plm1.k5On1fXAnJremZabn1CYmJ3W1aieoA")
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}
