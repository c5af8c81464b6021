package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/palimpsest/internal/config"
)

func TestGetConfigValue(t *testing.T) {
	testCfg := config.Defaults()
	testCfg.Home = "/test/home"
	testCfg.Space.Size = 2048
	testCfg.Crypto.Threshold = 4
	testCfg.Crypto.KDF = "argon2id"
	testCfg.Update.LockTimeoutSeconds = 30
	testCfg.Output.DefaultFormat = "json"
	testCfg.Output.Verbose = true
	testCfg.Logging.Level = "debug"
	testCfg.Logging.File = "/var/log/palimpsest.log"

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		// Single-part paths
		{name: "home", path: "home", want: "/test/home"},
		{name: "unknown single key", path: "unknown", wantErr: true},

		// Space section
		{name: "space.size", path: "space.size", want: "2048"},
		{name: "space.prime", path: "space.prime", want: config.DefaultPrime},
		{name: "space.unknown", path: "space.unknown", wantErr: true},

		// Crypto section
		{name: "crypto.threshold", path: "crypto.threshold", want: "4"},
		{name: "crypto.kdf", path: "crypto.kdf", want: "argon2id"},
		{name: "crypto.unknown", path: "crypto.unknown", wantErr: true},

		// Update section
		{name: "update.lock_timeout_seconds", path: "update.lock_timeout_seconds", want: "30"},
		{name: "update.unknown", path: "update.unknown", wantErr: true},

		// Output section
		{name: "output.default_format", path: "output.default_format", want: "json"},
		{name: "output.verbose true", path: "output.verbose", want: "true"},
		{name: "output.unknown", path: "output.unknown", wantErr: true},

		// Logging section
		{name: "logging.level", path: "logging.level", want: "debug"},
		{name: "logging.file", path: "logging.file", want: "/var/log/palimpsest.log"},
		{name: "logging.unknown", path: "logging.unknown", wantErr: true},

		// Unknown sections
		{name: "unknown.key", path: "unknown.key", wantErr: true},

		// Too many parts
		{name: "too many parts", path: "a.b.c.d", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := getConfigValue(testCfg, tc.path)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		value   string
		wantErr bool
		check   func(t *testing.T, c *config.Config)
	}{
		{
			name: "crypto.threshold", path: "crypto.threshold", value: "5",
			check: func(t *testing.T, c *config.Config) { assert.Equal(t, 5, c.Crypto.Threshold) },
		},
		{
			name: "crypto.threshold below minimum", path: "crypto.threshold", value: "1",
			wantErr: true,
		},
		{
			name: "crypto.kdf argon2id", path: "crypto.kdf", value: "argon2id",
			check: func(t *testing.T, c *config.Config) { assert.Equal(t, "argon2id", c.Crypto.KDF) },
		},
		{
			name: "crypto.kdf invalid", path: "crypto.kdf", value: "scrypt",
			wantErr: true,
		},
		{
			name: "crypto.subset_ratio", path: "crypto.subset_ratio", value: "0.4",
			check: func(t *testing.T, c *config.Config) { assert.InDelta(t, 0.4, c.Crypto.SubsetRatio, 1e-9) },
		},
		{
			name: "crypto.subset_ratio out of range", path: "crypto.subset_ratio", value: "1.5",
			wantErr: true,
		},
		{
			name: "space.size", path: "space.size", value: "4096",
			check: func(t *testing.T, c *config.Config) { assert.Equal(t, 4096, c.Space.Size) },
		},
		{
			name: "space.ratio_a", path: "space.ratio_a", value: "0.4",
			check: func(t *testing.T, c *config.Config) { assert.InDelta(t, 0.4, c.Space.RatioA, 1e-9) },
		},
		{
			name: "update.lock_timeout_seconds", path: "update.lock_timeout_seconds", value: "20",
			check: func(t *testing.T, c *config.Config) { assert.Equal(t, 20, c.Update.LockTimeoutSeconds) },
		},
		{
			name: "update.lock_timeout_seconds non-numeric", path: "update.lock_timeout_seconds", value: "soon",
			wantErr: true,
		},
		{
			name: "output.default_format json", path: "output.default_format", value: "json",
			check: func(t *testing.T, c *config.Config) { assert.Equal(t, "json", c.Output.DefaultFormat) },
		},
		{
			name: "output.default_format invalid", path: "output.default_format", value: "xml",
			wantErr: true,
		},
		{
			name: "logging.level debug", path: "logging.level", value: "debug",
			check: func(t *testing.T, c *config.Config) { assert.Equal(t, "debug", c.Logging.Level) },
		},
		{
			name: "logging.level invalid", path: "logging.level", value: "trace",
			wantErr: true,
		},
		{
			name: "unknown section", path: "nowhere.key", value: "x",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := config.Defaults()
			err := setConfigValue(c, tc.path, tc.value)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.check != nil {
				tc.check(t, c)
			}
		})
	}
}

func TestDisplayConfigText(t *testing.T) {
	c := config.Defaults()
	c.Home = "/test/home"

	var buf bytes.Buffer
	require.NoError(t, displayConfigText(&buf, c))

	out := buf.String()
	assert.Contains(t, out, "/test/home")
	assert.Contains(t, out, "threshold: 3")
	assert.Contains(t, out, "kdf: pbkdf2")
	// Full prime is 157 digits; only a prefix is shown.
	assert.NotContains(t, out, config.DefaultPrime)
	assert.Contains(t, out, config.DefaultPrime[:16])
}

func TestDisplayConfigJSON(t *testing.T) {
	c := config.Defaults()

	var buf bytes.Buffer
	require.NoError(t, displayConfigJSON(&buf, c))

	out := buf.String()
	assert.Contains(t, out, `"threshold": 3`)
	assert.Contains(t, out, `"kdf": "pbkdf2"`)
	assert.Contains(t, out, config.DefaultPrime)
}
