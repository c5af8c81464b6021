package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/palimpsest/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected config.LogLevel
	}{
		{"off", config.LogLevelOff},
		{"OFF", config.LogLevelOff},
		{"none", config.LogLevelOff},
		{"error", config.LogLevelError},
		{"ERROR", config.LogLevelError},
		{"debug", config.LogLevelDebug},
		{"  debug  ", config.LogLevelDebug},
		{"warn", config.LogLevelError},
		{"", config.LogLevelError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, config.ParseLogLevel(tt.input), "input %q", tt.input)
	}
}

func TestLogLevelString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "off", config.LogLevelOff.String())
	assert.Equal(t, "error", config.LogLevelError.String())
	assert.Equal(t, "debug", config.LogLevelDebug.String())
	assert.Equal(t, "error", config.LogLevel(99).String())
}

// newFileLogger builds a logger writing to a fresh temp file and returns
// both the logger and a reader for what it wrote.
func newFileLogger(t *testing.T, level config.LogLevel) (*config.Logger, func() string) {
	t.Helper()

	logPath := filepath.Join(t.TempDir(), "palimpsest.log")
	logger, err := config.NewLogger(level, logPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = logger.Close() })

	return logger, func() string {
		content, readErr := os.ReadFile(logPath) // #nosec G304 -- path from t.TempDir()
		require.NoError(t, readErr)
		return string(content)
	}
}

func TestLoggerWritesLeveledLines(t *testing.T) {
	t.Parallel()
	logger, read := newFileLogger(t, config.LogLevelDebug)

	logger.Debug("selected %d candidate IDs", 18)
	logger.Error("lock contention on %s", "vault.plm")

	content := read()
	assert.Contains(t, content, "[DEBUG] selected 18 candidate IDs")
	assert.Contains(t, content, "[ERROR] lock contention on vault.plm")

	// timestamp [LEVEL] message, one line per record
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
}

func TestLoggerLevelFiltering(t *testing.T) {
	t.Parallel()
	logger, read := newFileLogger(t, config.LogLevelError)

	logger.Debug("window walk details")
	logger.Error("update failed")

	content := read()
	assert.NotContains(t, content, "window walk details")
	assert.Contains(t, content, "update failed")

	logger.SetLevel(config.LogLevelDebug)
	assert.Equal(t, config.LogLevelDebug, logger.Level())
	logger.Debug("now visible")
	assert.Contains(t, read(), "now visible")
}

func TestLoggerLevelOffCreatesNoFile(t *testing.T) {
	t.Parallel()
	logPath := filepath.Join(t.TempDir(), "palimpsest.log")

	logger, err := config.NewLogger(config.LogLevelOff, logPath)
	require.NoError(t, err)
	defer func() { _ = logger.Close() }()

	logger.Debug("dropped")
	logger.Error("dropped")

	_, err = os.Stat(logPath)
	assert.True(t, os.IsNotExist(err))
}

func TestLoggerCreatesParentDirectories(t *testing.T) {
	t.Parallel()
	logPath := filepath.Join(t.TempDir(), "state", "logs", "palimpsest.log")

	logger, err := config.NewLogger(config.LogLevelDebug, logPath)
	require.NoError(t, err)
	defer func() { _ = logger.Close() }()

	info, err := os.Stat(filepath.Dir(logPath))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoggerInvalidPath(t *testing.T) {
	t.Parallel()
	_, err := config.NewLogger(config.LogLevelDebug, "/proc/nonexistent/palimpsest.log")
	assert.Error(t, err)
}

func TestNullLogger(t *testing.T) {
	t.Parallel()
	logger := config.NullLogger()

	assert.Equal(t, config.LogLevelOff, logger.Level())
	logger.Debug("dropped")
	logger.Error("dropped")
	logger.DebugAttrs("dropped", slog.String("k", "v"))
	logger.ErrorAttrs("dropped", slog.String("k", "v"))
	assert.Nil(t, logger.Structured())
	assert.NoError(t, logger.Close())
}

func TestLoggerWriter(t *testing.T) {
	t.Parallel()
	logger, read := newFileLogger(t, config.LogLevelError)

	_, err := logger.Writer(config.LogLevelError).Write([]byte("piped error output\n"))
	require.NoError(t, err)
	assert.Contains(t, read(), "piped error output")

	// A writer below the configured level swallows its input.
	_, err = logger.Writer(config.LogLevelDebug).Write([]byte("piped debug output\n"))
	require.NoError(t, err)
	assert.NotContains(t, read(), "piped debug output")
}

func TestLoggerStructuredText(t *testing.T) {
	t.Parallel()
	logger, read := newFileLogger(t, config.LogLevelDebug)

	logger.DebugAttrs("candidate window",
		slog.Int("start", 4),
		slog.String("container", "vault.plm"),
	)
	logger.ErrorAttrs("rollback", slog.Bool("restored", true))

	content := read()
	assert.Contains(t, content, "candidate window")
	assert.Contains(t, content, "start=4")
	assert.Contains(t, content, "container=vault.plm")
	assert.Contains(t, content, "restored=true")
}

func TestLoggerStructuredAttrsFiltered(t *testing.T) {
	t.Parallel()
	logger, read := newFileLogger(t, config.LogLevelError)

	logger.DebugAttrs("candidate window", slog.Int("start", 4))
	assert.NotContains(t, read(), "candidate window")
}

func TestLoggerStructuredJSON(t *testing.T) {
	t.Parallel()
	logger, read := newFileLogger(t, config.LogLevelDebug)
	logger.SetJSONOutput(true)

	slogger := logger.Structured()
	require.NotNil(t, slogger)
	slogger.Info("update committed", "bytes", 512)

	content := read()
	assert.Contains(t, content, `"msg":"update committed"`)
	assert.Contains(t, content, `"bytes":512`)
}

func TestNewStructuredLogger(t *testing.T) {
	t.Parallel()
	logPath := filepath.Join(t.TempDir(), "palimpsest.log")

	logger, err := config.NewStructuredLogger(config.LogLevelDebug, logPath)
	require.NoError(t, err)
	defer func() { _ = logger.Close() }()

	slogger := logger.Structured()
	require.NotNil(t, slogger)
	slogger.Info("reclaimed journals", "count", 2)

	content, err := os.ReadFile(logPath) // #nosec G304 -- path from t.TempDir()
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"reclaimed journals"`)

	_, err = config.NewStructuredLogger(config.LogLevelDebug, "/proc/nonexistent/palimpsest.log")
	assert.Error(t, err)
}

func TestLoggerConcurrent(t *testing.T) {
	t.Parallel()
	logger, read := newFileLogger(t, config.LogLevelDebug)

	done := make(chan struct{}, 8)
	for i := 0; i < 8; i++ {
		go func(n int) {
			logger.Debug("worker %d", n)
			logger.ErrorAttrs("worker attrs", slog.Int("n", n))
			_ = logger.Level()
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.NotEmpty(t, read())
}
