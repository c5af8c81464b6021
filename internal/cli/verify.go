package cli

import (
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/palimpsest/internal/container"
	"github.com/mrz1836/palimpsest/internal/output"
	plmerr "github.com/mrz1836/palimpsest/pkg/errors"
)

// verifyCmd checks container structural integrity.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check container integrity",
	Long: `Verify the container's structure: the file parses, every position holds
a value, and every value is a canonical field element.

Verification needs no credential and learns nothing about the container's
contents; it checks the same properties an attacker could check.

Examples:
  palimpsest verify
  palimpsest verify -c /backups/vault.plm`,
	RunE: runVerify,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	path := containerFile()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return plmerr.WithSuggestion(
			plmerr.ErrContainerNotFound,
			fmt.Sprintf("no container at %s", path),
		)
	}

	c, err := container.Load(path)
	if err != nil {
		return plmerr.Wrap(plmerr.ErrFormat, "%v", err)
	}

	problems := verifyContainer(c)

	w := cmd.OutOrStdout()

	if formatter.IsJSON() {
		return writeJSON(w, map[string]any{
			"path":     path,
			"ok":       len(problems) == 0,
			"problems": problems,
		})
	}

	if len(problems) == 0 {
		output.Successf(w, "Container %s is structurally sound.", path)
		return nil
	}

	for _, p := range problems {
		out(w, "Problem: %s\n", p)
	}
	return plmerr.WithDetails(plmerr.ErrFormat, map[string]string{
		"path":     path,
		"problems": fmt.Sprintf("%d", len(problems)),
	})
}

// verifyContainer returns human-readable descriptions of every structural
// defect found.
func verifyContainer(c *container.Container) []string {
	var problems []string

	if c.Header.Prime == nil || c.Header.Prime.Sign() <= 0 {
		problems = append(problems, "header prime is missing or non-positive")
		return problems
	}
	if c.Header.Threshold < 2 {
		problems = append(problems, fmt.Sprintf("threshold %d is below the minimum of 2", c.Header.Threshold))
	}
	if len(c.Header.Salt) == 0 {
		problems = append(problems, "header salt is empty")
	}
	if !c.Complete() {
		problems = append(problems, "container has unfilled positions")
	}

	zero := new(big.Int)
	for _, s := range c.Shares() {
		if s.ShareID < 1 || s.ShareID > c.SpaceSize() {
			problems = append(problems, fmt.Sprintf("chunk %d has share ID %d outside [1, %d]", s.ChunkIndex, s.ShareID, c.SpaceSize()))
			continue
		}
		if s.Value == nil || s.Value.Cmp(zero) < 0 || s.Value.Cmp(c.Header.Prime) >= 0 {
			problems = append(problems, fmt.Sprintf("chunk %d ID %d holds a non-canonical field element", s.ChunkIndex, s.ShareID))
		}
	}
	return problems
}
