// Package config provides configuration management for palimpsest.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Version int           `yaml:"version"`
	Home    string        `yaml:"home"`
	Space   SpaceConfig   `yaml:"space"`
	Crypto  CryptoConfig  `yaml:"crypto"`
	Update  UpdateConfig  `yaml:"update"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// SpaceConfig defines the share ID space and its partition.
type SpaceConfig struct {
	// Prime is the field modulus as a decimal string. YAML numbers cannot
	// carry a 521-bit integer.
	Prime string `yaml:"prime"`

	// Size is the number of share IDs per chunk.
	Size int `yaml:"size"`

	// RatioA and RatioB size the two partition regions created at setup.
	RatioA float64 `yaml:"ratio_a"`
	RatioB float64 `yaml:"ratio_b"`
}

// CryptoConfig defines secret-sharing and key-derivation settings.
type CryptoConfig struct {
	Threshold   int     `yaml:"threshold"`
	ChunkBytes  int     `yaml:"chunk_bytes"`
	SubsetRatio float64 `yaml:"subset_ratio"`

	KDF        string `yaml:"kdf"`
	Iterations int    `yaml:"iterations"`
}

// UpdateConfig defines locking and reclamation settings.
type UpdateConfig struct {
	LockTimeoutSeconds int `yaml:"lock_timeout_seconds"`
	StaleAfterMinutes  int `yaml:"stale_after_minutes"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// ContainerPath returns the default container file path.
func ContainerPath(home string) string {
	return filepath.Join(home, "vault.plm")
}

// GetHome returns the palimpsest home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// DefaultHome returns the default palimpsest home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".palimpsest"
	}
	return filepath.Join(home, ".palimpsest")
}
