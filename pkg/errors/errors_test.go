package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plmerr "github.com/mrz1836/palimpsest/pkg/errors"
)

var (
	errInner     = errors.New("inner")
	errRootCause = errors.New("root cause")
	errPlain     = errors.New("plain error")
)

func TestExitCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"success", nil, plmerr.ExitSuccess},
		{"general error", plmerr.ErrGeneral, plmerr.ExitGeneral},
		{"input error", plmerr.ErrInvalidInput, plmerr.ExitInput},
		{"decryption error", plmerr.ErrDecryptionFailed, plmerr.ExitAuth},
		{"not found error", plmerr.ErrContainerNotFound, plmerr.ExitNotFound},
		{"lock timeout", plmerr.ErrLockTimeout, plmerr.ExitContention},
		{"rollback failed", plmerr.ErrRollbackFailed, plmerr.ExitContention},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code := plmerr.ExitCode(tt.err)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestExitCodeWrappedError(t *testing.T) {
	t.Parallel()
	wrapped := plmerr.Wrap(plmerr.ErrContainerNotFound, "vault.plm")
	code := plmerr.ExitCode(wrapped)
	assert.Equal(t, plmerr.ExitNotFound, code)
}

func TestSentinelErrors(t *testing.T) {
	t.Parallel()
	// Verify that wrapping preserves error identity
	wrapped := plmerr.Wrap(plmerr.ErrGeneral, "wrapped")
	require.ErrorIs(t, wrapped, plmerr.ErrGeneral)

	wrapped = plmerr.Wrap(plmerr.ErrInvalidInput, "wrapped")
	require.ErrorIs(t, wrapped, plmerr.ErrInvalidInput)

	wrapped = plmerr.Wrap(plmerr.ErrDecryptionFailed, "wrapped")
	require.ErrorIs(t, wrapped, plmerr.ErrDecryptionFailed)

	wrapped = plmerr.Wrap(plmerr.ErrLockTimeout, "wrapped")
	require.ErrorIs(t, wrapped, plmerr.ErrLockTimeout)

	wrapped = plmerr.Wrap(plmerr.ErrFormat, "wrapped")
	require.ErrorIs(t, wrapped, plmerr.ErrFormat)
}

func TestErrorCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err      error
		expected string
	}{
		{plmerr.ErrGeneral, "GENERAL_ERROR"},
		{plmerr.ErrInvalidInput, "INVALID_INPUT"},
		{plmerr.ErrDecryptionFailed, "DECRYPTION_FAILED"},
		{plmerr.ErrContainerNotFound, "CONTAINER_NOT_FOUND"},
		{plmerr.ErrLockTimeout, "LOCK_TIMEOUT"},
		{plmerr.ErrRollbackFailed, "ROLLBACK_FAILED"},
		{plmerr.ErrFormat, "FORMAT_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			t.Parallel()
			var pe *plmerr.PalimpsestError
			require.ErrorAs(t, tt.err, &pe)
			assert.Equal(t, tt.expected, pe.Code)
		})
	}
}

func TestDecryptionErrorCarriesNoDetail(t *testing.T) {
	t.Parallel()
	// The message must not hint at which stage failed.
	assert.Equal(t, "decryption failed", plmerr.ErrDecryptionFailed.Error())
	assert.Empty(t, plmerr.ErrDecryptionFailed.Details)
}

func TestWithDetails(t *testing.T) {
	t.Parallel()
	details := map[string]string{
		"path":   "/home/user/.palimpsest/vault.plm",
		"holder": "pid 4242",
	}

	err := plmerr.WithDetails(plmerr.ErrLockTimeout, details)

	var pe *plmerr.PalimpsestError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, details, pe.Details)
	assert.Equal(t, "LOCK_TIMEOUT", pe.Code)

	// Details render sorted for deterministic output.
	assert.Contains(t, err.Error(), "(holder: pid 4242) (path: /home/user/.palimpsest/vault.plm)")
}

func TestWithDetailsPlainError(t *testing.T) {
	t.Parallel()
	err := plmerr.WithDetails(errPlain, map[string]string{"k": "v"})

	var pe *plmerr.PalimpsestError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "GENERAL_ERROR", pe.Code)
	assert.Equal(t, "v", pe.Details["k"])
}

func TestWithSuggestion(t *testing.T) {
	t.Parallel()
	err := plmerr.WithSuggestion(plmerr.ErrLockTimeout, "run 'palimpsest reclaim' to clear stale locks")

	var pe *plmerr.PalimpsestError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "run 'palimpsest reclaim' to clear stale locks", pe.Suggestion)
	assert.Equal(t, plmerr.ExitContention, pe.ExitCode)
}

func TestWrapNil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, plmerr.Wrap(nil, "context"))
	assert.NoError(t, plmerr.WithDetails(nil, nil))
	assert.NoError(t, plmerr.WithSuggestion(nil, "hint"))
}

func TestWrapPreservesChain(t *testing.T) {
	t.Parallel()
	wrapped := plmerr.Wrap(errRootCause, "opening container")
	require.ErrorIs(t, wrapped, errRootCause)
	assert.Contains(t, wrapped.Error(), "opening container")
	assert.Contains(t, wrapped.Error(), "root cause")
}

func TestWrapStructuredKeepsCode(t *testing.T) {
	t.Parallel()
	inner := plmerr.Wrap(errInner, "inner context")
	outer := plmerr.Wrap(plmerr.ErrFormat, "outer context")

	assert.Equal(t, "GENERAL_ERROR", plmerr.Code(inner))
	assert.Equal(t, "FORMAT_ERROR", plmerr.Code(outer))
	assert.Equal(t, plmerr.ExitInput, plmerr.ExitCode(outer))
}

func TestNew(t *testing.T) {
	t.Parallel()
	err := plmerr.New("CUSTOM_CODE", "custom message")
	assert.Equal(t, "CUSTOM_CODE", err.Code)
	assert.Equal(t, "custom message", err.Message)
	assert.Equal(t, plmerr.ExitGeneral, err.ExitCode)
}

func TestIsAndAs(t *testing.T) {
	t.Parallel()
	wrapped := plmerr.Wrap(plmerr.ErrConfigNotFound, "loading")
	assert.True(t, plmerr.Is(wrapped, plmerr.ErrConfigNotFound))

	var pe *plmerr.PalimpsestError
	assert.True(t, plmerr.As(wrapped, &pe))
	assert.Equal(t, "CONFIG_NOT_FOUND", pe.Code)
}

func TestCodePlainError(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "GENERAL_ERROR", plmerr.Code(errPlain))
}
