package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"1", "1", true},
		{"true", "true", true},
		{"TRUE", "TRUE", true},
		{"yes", "yes", true},
		{"YES", "YES", true},
		{"on", "on", true},
		{"ON", "ON", true},
		{"with spaces", "  true  ", true},
		{"0", "0", false},
		{"false", "false", false},
		{"FALSE", "FALSE", false},
		{"no", "no", false},
		{"off", "off", false},
		{"empty", "", false},
		{"random", "random", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := parseBool(tc.input)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestSanitizeOption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean value", "json", "json"},
		{"uppercase", "JSON", "json"},
		{"spaces", "  argon2id  ", "argon2id"},
		{"embedded newline", "debug\n", "debug"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, SanitizeOption(tc.input))
		})
	}
}

func TestApplyEnvironment(t *testing.T) {
	t.Setenv(EnvHome, "/custom/home")
	t.Setenv(EnvOutputFormat, "JSON")
	t.Setenv(EnvVerbose, "yes")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvKDF, "Argon2id")
	t.Setenv(EnvLockTimeout, "30")
	t.Setenv(EnvNoColor, "1")

	cfg := Defaults()
	ApplyEnvironment(cfg)

	assert.Equal(t, "/custom/home", cfg.Home)
	assert.Equal(t, "json", cfg.Output.DefaultFormat)
	assert.True(t, cfg.Output.Verbose)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "argon2id", cfg.Crypto.KDF)
	assert.Equal(t, 30, cfg.Update.LockTimeoutSeconds)
	assert.Equal(t, "never", cfg.Output.Color)
}

func TestApplyEnvironmentIgnoresInvalid(t *testing.T) {
	t.Setenv(EnvLockTimeout, "not-a-number")

	cfg := Defaults()
	ApplyEnvironment(cfg)

	assert.Equal(t, 10, cfg.Update.LockTimeoutSeconds)
}

func TestContainerPathOverride(t *testing.T) {
	cfg := Defaults()
	cfg.Home = "/custom/home"

	assert.Equal(t, filepath.Join("/custom/home", "vault.plm"), cfg.Container())

	t.Setenv(EnvContainer, "/elsewhere/other.plm")
	assert.Equal(t, "/elsewhere/other.plm", cfg.Container())
}
