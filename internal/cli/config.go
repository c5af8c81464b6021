package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/palimpsest/internal/config"
	"github.com/mrz1836/palimpsest/internal/output"
	plmerr "github.com/mrz1836/palimpsest/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify palimpsest configuration settings.`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.palimpsest/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.

Example:
  palimpsest config init
  palimpsest config init --force`,
	RunE: runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the current configuration settings.

Example:
  palimpsest config show
  palimpsest config show -o json`,
	RunE: runConfigShow,
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree.

Examples:
  palimpsest config get crypto.threshold
  palimpsest config get output.default_format
  palimpsest config get logging.level`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree.
The configuration file will be updated immediately.

Geometry values (space.*, crypto.threshold, crypto.chunk_bytes) only apply
to containers created after the change; an existing container keeps the
geometry it was created with.

Examples:
  palimpsest config set crypto.kdf argon2id
  palimpsest config set output.default_format json
  palimpsest config set logging.level debug`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath := config.Path(cfg.Home)

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return plmerr.WithSuggestion(
			plmerr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	// Ensure directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Create default config
	defaultCfg := config.Defaults()
	defaultCfg.Home = cfg.Home

	// Write config file
	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - space.size: Share IDs per chunk (fixed per container)")
	outln(w, "  - crypto.threshold: Shares needed to reconstruct a document")
	outln(w, "  - crypto.kdf: Key derivation function (pbkdf2/argon2id)")
	outln(w, "  - output.default_format: Output format (text/json)")
	outln(w, "  - logging.level: Log level (off/error/debug)")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	format := formatter.Format()

	if format == output.FormatJSON {
		return displayConfigJSON(w, cfg)
	}

	return displayConfigText(w, cfg)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	path := args[0]

	value, err := getConfigValue(cfg, path)
	if err != nil {
		return plmerr.WithSuggestion(
			err,
			fmt.Sprintf("configuration path '%s' not found", path),
		)
	}

	w := cmd.OutOrStdout()
	outln(w, value)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := args[0]
	value := args[1]

	// Validate the path exists
	if _, err := getConfigValue(cfg, path); err != nil {
		return plmerr.WithSuggestion(
			err,
			fmt.Sprintf("configuration path '%s' not found", path),
		)
	}

	// Load current config from file
	configPath := config.Path(cfg.Home)
	currentCfg, err := config.Load(configPath)
	if err != nil {
		// If file doesn't exist, start with defaults
		currentCfg = config.Defaults()
	}

	// Update the value
	if err := setConfigValue(currentCfg, path, value); err != nil {
		return fmt.Errorf("setting config value: %w", err)
	}

	// Save updated config
	if err := config.Save(currentCfg, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Set %s = %s\n", path, value)

	return nil
}

// getConfigValue retrieves a value from the config using dot notation.
func getConfigValue(c *config.Config, path string) (string, error) {
	parts := strings.Split(path, ".")

	if len(parts) == 1 {
		if parts[0] == "home" {
			return c.Home, nil
		}
		return "", plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"key": parts[0]},
		)
	}
	if len(parts) != 2 {
		return "", plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"path": path},
		)
	}

	switch parts[0] {
	case "space":
		return getSpaceValue(c, parts[1])
	case "crypto":
		return getCryptoValue(c, parts[1])
	case "update":
		return getUpdateValue(c, parts[1])
	case "output":
		return getOutputValue(c, parts[1])
	case "logging":
		return getLoggingValue(c, parts[1])
	default:
		return "", plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"section": parts[0]},
		)
	}
}

func getSpaceValue(c *config.Config, key string) (string, error) {
	switch key {
	case "prime":
		return c.Space.Prime, nil
	case "size":
		return strconv.Itoa(c.Space.Size), nil
	case "ratio_a":
		return strconv.FormatFloat(c.Space.RatioA, 'g', -1, 64), nil
	case "ratio_b":
		return strconv.FormatFloat(c.Space.RatioB, 'g', -1, 64), nil
	default:
		return "", plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"section": "space", "key": key},
		)
	}
}

func getCryptoValue(c *config.Config, key string) (string, error) {
	switch key {
	case "threshold":
		return strconv.Itoa(c.Crypto.Threshold), nil
	case "chunk_bytes":
		return strconv.Itoa(c.Crypto.ChunkBytes), nil
	case "subset_ratio":
		return strconv.FormatFloat(c.Crypto.SubsetRatio, 'g', -1, 64), nil
	case "kdf":
		return c.Crypto.KDF, nil
	case "iterations":
		return strconv.Itoa(c.Crypto.Iterations), nil
	default:
		return "", plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"section": "crypto", "key": key},
		)
	}
}

func getUpdateValue(c *config.Config, key string) (string, error) {
	switch key {
	case "lock_timeout_seconds":
		return strconv.Itoa(c.Update.LockTimeoutSeconds), nil
	case "stale_after_minutes":
		return strconv.Itoa(c.Update.StaleAfterMinutes), nil
	default:
		return "", plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"section": "update", "key": key},
		)
	}
}

func getOutputValue(c *config.Config, key string) (string, error) {
	switch key {
	case "default_format":
		return c.Output.DefaultFormat, nil
	case "verbose":
		return fmt.Sprintf("%t", c.Output.Verbose), nil
	case "color":
		return c.Output.Color, nil
	default:
		return "", plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"section": "output", "key": key},
		)
	}
}

func getLoggingValue(c *config.Config, key string) (string, error) {
	switch key {
	case "level":
		return c.Logging.Level, nil
	case "file":
		return c.Logging.File, nil
	default:
		return "", plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"section": "logging", "key": key},
		)
	}
}

// setConfigValue sets a value in the config using dot notation.
func setConfigValue(c *config.Config, path, value string) error {
	parts := strings.Split(path, ".")

	if len(parts) == 1 {
		if parts[0] == "home" {
			c.Home = value
			return nil
		}
		return plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"key": parts[0]},
		)
	}
	if len(parts) != 2 {
		return plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"path": path},
		)
	}

	switch parts[0] {
	case "space":
		return setSpaceValue(c, parts[1], value)
	case "crypto":
		return setCryptoValue(c, parts[1], value)
	case "update":
		return setUpdateValue(c, parts[1], value)
	case "output":
		return setOutputValue(c, parts[1], value)
	case "logging":
		return setLoggingValue(c, parts[1], value)
	default:
		return plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"section": parts[0]},
		)
	}
}

func setSpaceValue(c *config.Config, key, value string) error {
	switch key {
	case "prime":
		c.Space.Prime = value
		return nil
	case "size":
		n, err := strconv.Atoi(value)
		if err != nil || n < 2 {
			return invalidConfigValue(value, "a positive integer")
		}
		c.Space.Size = n
		return nil
	case "ratio_a", "ratio_b":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 || f >= 1 {
			return invalidConfigValue(value, "a fraction in (0, 1)")
		}
		if key == "ratio_a" {
			c.Space.RatioA = f
		} else {
			c.Space.RatioB = f
		}
		return nil
	default:
		return plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"section": "space", "key": key},
		)
	}
}

func setCryptoValue(c *config.Config, key, value string) error {
	switch key {
	case "threshold":
		n, err := strconv.Atoi(value)
		if err != nil || n < 2 {
			return invalidConfigValue(value, "an integer of at least 2")
		}
		c.Crypto.Threshold = n
		return nil
	case "chunk_bytes":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return invalidConfigValue(value, "a positive integer")
		}
		c.Crypto.ChunkBytes = n
		return nil
	case "subset_ratio":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 || f >= 1 {
			return invalidConfigValue(value, "a fraction in (0, 1)")
		}
		c.Crypto.SubsetRatio = f
		return nil
	case "kdf":
		if value != "pbkdf2" && value != "argon2id" {
			return invalidConfigValue(value, "pbkdf2 or argon2id")
		}
		c.Crypto.KDF = value
		return nil
	case "iterations":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return invalidConfigValue(value, "a positive integer")
		}
		c.Crypto.Iterations = n
		return nil
	default:
		return plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"section": "crypto", "key": key},
		)
	}
}

func setUpdateValue(c *config.Config, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return invalidConfigValue(value, "a positive integer")
	}

	switch key {
	case "lock_timeout_seconds":
		c.Update.LockTimeoutSeconds = n
		return nil
	case "stale_after_minutes":
		c.Update.StaleAfterMinutes = n
		return nil
	default:
		return plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"section": "update", "key": key},
		)
	}
}

func setOutputValue(c *config.Config, key, value string) error {
	switch key {
	case "default_format":
		if value != "text" && value != "json" && value != "auto" {
			return invalidConfigValue(value, "text, json, or auto")
		}
		c.Output.DefaultFormat = value
		return nil
	case "verbose":
		c.Output.Verbose = value == "true"
		return nil
	case "color":
		if value != "auto" && value != "always" && value != "never" {
			return invalidConfigValue(value, "auto, always, or never")
		}
		c.Output.Color = value
		return nil
	default:
		return plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"section": "output", "key": key},
		)
	}
}

func setLoggingValue(c *config.Config, key, value string) error {
	switch key {
	case "level":
		validLevels := []string{"off", "error", "debug"}
		for _, l := range validLevels {
			if value == l {
				c.Logging.Level = value
				return nil
			}
		}
		return invalidConfigValue(value, "off, error, or debug")
	case "file":
		c.Logging.File = value
		return nil
	default:
		return plmerr.WithDetails(
			plmerr.ErrUnknownConfigKey,
			map[string]string{"section": "logging", "key": key},
		)
	}
}

func invalidConfigValue(value, valid string) error {
	return plmerr.WithDetails(
		plmerr.ErrConfigInvalid,
		map[string]string{"value": value, "valid": valid},
	)
}

// displayConfigText shows the config in text format.
func displayConfigText(w io.Writer, c *config.Config) error {
	outln(w, "Configuration:")
	outln(w)
	out(w, "  Home: %s\n", c.Home)
	outln(w)
	outln(w, "  Space:")
	out(w, "    size: %d\n", c.Space.Size)
	out(w, "    ratio_a: %g\n", c.Space.RatioA)
	out(w, "    ratio_b: %g\n", c.Space.RatioB)
	out(w, "    prime: %s...\n", shortPrime(c.Space.Prime))
	outln(w)
	outln(w, "  Crypto:")
	out(w, "    threshold: %d\n", c.Crypto.Threshold)
	out(w, "    chunk_bytes: %d\n", c.Crypto.ChunkBytes)
	out(w, "    subset_ratio: %g\n", c.Crypto.SubsetRatio)
	out(w, "    kdf: %s\n", c.Crypto.KDF)
	out(w, "    iterations: %d\n", c.Crypto.Iterations)
	outln(w)
	outln(w, "  Update:")
	out(w, "    lock_timeout_seconds: %d\n", c.Update.LockTimeoutSeconds)
	out(w, "    stale_after_minutes: %d\n", c.Update.StaleAfterMinutes)
	outln(w)
	outln(w, "  Output:")
	out(w, "    default_format: %s\n", c.Output.DefaultFormat)
	out(w, "    verbose: %t\n", c.Output.Verbose)
	out(w, "    color: %s\n", c.Output.Color)
	outln(w)
	outln(w, "  Logging:")
	out(w, "    level: %s\n", c.Logging.Level)
	out(w, "    file: %s\n", c.Logging.File)

	return nil
}

// shortPrime abbreviates the prime's decimal form for display.
func shortPrime(p string) string {
	if len(p) <= 16 {
		return p
	}
	return p[:16]
}

// displayConfigJSON shows the config in JSON format.
func displayConfigJSON(w io.Writer, c *config.Config) error {
	type configJSON struct {
		Version int    `json:"version"`
		Home    string `json:"home"`
		Space   struct {
			Prime  string  `json:"prime"`
			Size   int     `json:"size"`
			RatioA float64 `json:"ratio_a"`
			RatioB float64 `json:"ratio_b"`
		} `json:"space"`
		Crypto struct {
			Threshold   int     `json:"threshold"`
			ChunkBytes  int     `json:"chunk_bytes"`
			SubsetRatio float64 `json:"subset_ratio"`
			KDF         string  `json:"kdf"`
			Iterations  int     `json:"iterations"`
		} `json:"crypto"`
		Update struct {
			LockTimeoutSeconds int `json:"lock_timeout_seconds"`
			StaleAfterMinutes  int `json:"stale_after_minutes"`
		} `json:"update"`
		Output struct {
			DefaultFormat string `json:"default_format"`
			Color         string `json:"color"`
			Verbose       bool   `json:"verbose"`
		} `json:"output"`
		Logging struct {
			Level string `json:"level"`
			File  string `json:"file"`
		} `json:"logging"`
	}

	outCfg := configJSON{
		Version: c.Version,
		Home:    c.Home,
	}
	outCfg.Space.Prime = c.Space.Prime
	outCfg.Space.Size = c.Space.Size
	outCfg.Space.RatioA = c.Space.RatioA
	outCfg.Space.RatioB = c.Space.RatioB
	outCfg.Crypto.Threshold = c.Crypto.Threshold
	outCfg.Crypto.ChunkBytes = c.Crypto.ChunkBytes
	outCfg.Crypto.SubsetRatio = c.Crypto.SubsetRatio
	outCfg.Crypto.KDF = c.Crypto.KDF
	outCfg.Crypto.Iterations = c.Crypto.Iterations
	outCfg.Update.LockTimeoutSeconds = c.Update.LockTimeoutSeconds
	outCfg.Update.StaleAfterMinutes = c.Update.StaleAfterMinutes
	outCfg.Output.DefaultFormat = c.Output.DefaultFormat
	outCfg.Output.Color = c.Output.Color
	outCfg.Output.Verbose = c.Output.Verbose
	outCfg.Logging.Level = c.Logging.Level
	outCfg.Logging.File = c.Logging.File

	return writeJSON(w, outCfg)
}
