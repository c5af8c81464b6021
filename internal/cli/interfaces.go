package cli

import (
	"github.com/mrz1836/palimpsest/internal/config"
	"github.com/mrz1836/palimpsest/internal/output"
)

// Compile-time interface checks.
var (
	_ ConfigProvider = (*config.Config)(nil)
	_ LogWriter      = (*config.Logger)(nil)
	_ FormatProvider = (*output.Formatter)(nil)
)

// ConfigProvider is the read surface commands need from configuration.
// Tests substitute a stub to run commands against fixed settings.
type ConfigProvider interface {
	GetHome() string

	// Container returns the container file path, honoring overrides.
	Container() string

	GetLoggingLevel() string
	GetLoggingFile() string
	GetOutputFormat() string
	IsVerbose() bool
}

// LogWriter is the logging surface commands depend on.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
	Close() error
}

// FormatProvider exposes the resolved output format.
type FormatProvider interface {
	Format() output.Format
}
