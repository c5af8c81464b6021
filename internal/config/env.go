package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/mrz1836/go-sanitize"
)

// Environment variable names.
const (
	EnvHome         = "PALIMPSEST_HOME"
	EnvContainer    = "PALIMPSEST_CONTAINER"
	EnvOutputFormat = "PALIMPSEST_OUTPUT_FORMAT"
	EnvVerbose      = "PALIMPSEST_VERBOSE"
	EnvLogLevel     = "PALIMPSEST_LOG_LEVEL"
	EnvKDF          = "PALIMPSEST_KDF"
	EnvLockTimeout  = "PALIMPSEST_LOCK_TIMEOUT"
	EnvNoColor      = "NO_COLOR"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = SanitizeOption(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = SanitizeOption(v)
	}

	if v := os.Getenv(EnvKDF); v != "" {
		cfg.Crypto.KDF = SanitizeOption(v)
	}

	// PALIMPSEST_LOCK_TIMEOUT sets the lock wait budget in seconds
	if v := os.Getenv(EnvLockTimeout); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Update.LockTimeoutSeconds = secs
		}
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

// Container returns the container file path, honoring the environment
// override.
func (c *Config) Container() string {
	if v := os.Getenv(EnvContainer); v != "" {
		return v
	}
	return ContainerPath(c.Home)
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeOption normalizes an enumerated option value such as an output
// format or log level, removing copy-paste artifacts before comparison.
func SanitizeOption(v string) string {
	return strings.ToLower(sanitize.SingleLine(strings.TrimSpace(v)))
}
