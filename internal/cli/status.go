package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/palimpsest/internal/container"
	"github.com/mrz1836/palimpsest/internal/output"
	plmerr "github.com/mrz1836/palimpsest/pkg/errors"
)

// statusCmd reports container geometry and fill state.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show container status",
	Long: `Display the container's geometry and fill state.

Status reveals only public structure: chunk count, ID-space size, threshold,
and field width. It cannot reveal how many documents the container holds or
whether it holds any at all.

Examples:
  palimpsest status
  palimpsest status -o json`,
	RunE: runStatus,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	path := containerFile()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return plmerr.WithSuggestion(
			plmerr.ErrContainerNotFound,
			fmt.Sprintf("no container at %s; run 'palimpsest init' first", path),
		)
	}

	c, err := container.Load(path)
	if err != nil {
		return plmerr.Wrap(plmerr.ErrFormat, "%v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return plmerr.Wrap(err, "reading container")
	}

	w := cmd.OutOrStdout()

	if formatter.IsJSON() {
		return writeJSON(w, map[string]any{
			"path":       path,
			"size_bytes": info.Size(),
			"chunks":     c.Header.TotalChunks,
			"space":      c.SpaceSize(),
			"threshold":  c.Header.Threshold,
			"prime_bits": c.Header.Prime.BitLen(),
			"complete":   c.Complete(),
		})
	}

	table := output.NewTable("Property", "Value")
	table.AddRow("Path", path)
	table.AddRow("Size", fmt.Sprintf("%d bytes", info.Size()))
	table.AddRow("Chunks", strconv.Itoa(c.Header.TotalChunks))
	table.AddRow("Share IDs", strconv.Itoa(c.SpaceSize()))
	table.AddRow("Threshold", strconv.Itoa(c.Header.Threshold))
	table.AddRow("Field width", fmt.Sprintf("%d bits", c.Header.Prime.BitLen()))
	table.AddRow("Complete", fmt.Sprintf("%t", c.Complete()))

	return table.Render(w)
}
