package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/palimpsest/internal/crypto"
	"github.com/mrz1836/palimpsest/internal/output"
	plmerr "github.com/mrz1836/palimpsest/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// encryptIn is the document file to encrypt ("-" for stdin).
	encryptIn string
)

// encryptCmd stores a document in the container.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var encryptCmd = &cobra.Command{
	Use:     "encrypt",
	Aliases: []string{"update"},
	Short:   "Store a document under a credential and password",
	Long: `Encrypt a document into the container.

The document is split into secret shares placed at positions selected by your
credential and password. Storing a new document under the same pair replaces
the old one. The write is atomic: a crash mid-write leaves the previous
container intact.

Example:
  palimpsest encrypt --in notes.json
  cat notes.json | palimpsest encrypt --in -`,
	RunE: runEncrypt,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(encryptCmd)

	encryptCmd.Flags().StringVar(&encryptIn, "in", "-", "document file to encrypt (- for stdin)")
}

func runEncrypt(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cfg, logger, formatter)
	if err != nil {
		return err
	}

	path := containerFile()
	if _, statErr := os.Stat(path); statErr != nil {
		return plmerr.WithSuggestion(
			plmerr.ErrContainerNotFound,
			fmt.Sprintf("no container at %s; create one with 'palimpsest init'", path),
		)
	}

	doc, err := readDocument(encryptIn)
	if err != nil {
		return plmerr.Wrap(err, "reading document")
	}

	credential, err := promptCredentialFn("Credential: ")
	if err != nil {
		return err
	}

	password, err := promptNewPasswordFn()
	if err != nil {
		return err
	}

	// Move the password into mlocked memory for the duration of the
	// update; the prompt's own copy is scrubbed immediately.
	secret, err := crypto.SecureBytesFromSlice(password)
	crypto.ZeroBytes(password)
	if err != nil {
		return err
	}
	defer secret.Destroy()

	lockBudget := cmdCtx.Engine.Params().Update.LockTimeout + 30*time.Second
	ctx, cancel := contextWithTimeout(cmd, lockBudget)
	defer cancel()

	start := time.Now()
	if err := cmdCtx.Engine.Update(ctx, path, doc, credential, string(secret.Bytes())); err != nil {
		return translateUpdateErr(err, path)
	}
	cmdCtx.Logger.Debug("encrypted %d bytes into %s in %s", len(doc), path, time.Since(start))

	if cmdCtx.Formatter.IsJSON() {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"status": "stored",
			"path":   path,
			"bytes":  len(doc),
		})
	}

	output.Successf(cmd.OutOrStdout(), "Stored %d bytes in %s", len(doc), path)
	return nil
}
