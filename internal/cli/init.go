package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrz1836/palimpsest/internal/config"
	"github.com/mrz1836/palimpsest/internal/container"
	"github.com/mrz1836/palimpsest/internal/output"
	plmerr "github.com/mrz1836/palimpsest/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// initChunks is the initial container capacity in chunks.
	initChunks int
	// initForce overwrites an existing container.
	initForce bool
)

// initCmd creates a new container.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new empty container",
	Long: `Create a new container filled entirely with random values.

A freshly initialized container holds no documents, but it is byte-for-byte
indistinguishable from one that does. The container's geometry (ID space,
threshold, chunk capacity) comes from the configuration.

Example:
  palimpsest init
  palimpsest init --chunks 64 --container /secure/vault.plm`,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().IntVar(&initChunks, "chunks", 16, "initial container capacity in chunks")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing container")
}

func runInit(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cfg, logger, formatter)
	if err != nil {
		return err
	}

	path := containerFile()
	if _, statErr := os.Stat(path); statErr == nil && !initForce {
		return plmerr.WithSuggestion(
			plmerr.ErrContainerExists,
			fmt.Sprintf("container %s already exists; use --force to overwrite", path),
		)
	}

	if err := os.MkdirAll(filepath.Dir(path), container.DirPermissions); err != nil {
		return plmerr.Wrap(err, "creating container directory")
	}

	// Write the default config alongside a first-time container so later
	// runs reuse the same geometry.
	configPath := config.Path(cmdCtx.Config.Home)
	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		if saveErr := config.Save(cmdCtx.Config, configPath); saveErr != nil {
			cmdCtx.Logger.Error("saving config: %v", saveErr)
			output.Warnf(cmd.ErrOrStderr(), "could not write %s; later runs will fall back to defaults", configPath)
		}
	}

	c, err := cmdCtx.Engine.Init(initChunks)
	if err != nil {
		return err
	}

	if err := container.Save(path, c); err != nil {
		return plmerr.Wrap(err, "writing container")
	}

	cmdCtx.Logger.Debug("initialized container %s with %d chunks over %d IDs",
		path, initChunks, c.SpaceSize())

	if cmdCtx.Formatter.IsJSON() {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"status":    "created",
			"path":      path,
			"chunks":    c.Header.TotalChunks,
			"space":     c.SpaceSize(),
			"threshold": c.Header.Threshold,
		})
	}

	output.Successf(cmd.OutOrStdout(), "Created container %s (%d chunks, %d share IDs)",
		path, c.Header.TotalChunks, c.SpaceSize())
	return nil
}
