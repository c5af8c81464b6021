package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/palimpsest/internal/container"
	"github.com/mrz1836/palimpsest/internal/crypto"
	plmerr "github.com/mrz1836/palimpsest/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// decryptOut is the destination for the recovered document ("-" for stdout).
	decryptOut string
)

// decryptCmd recovers a document from the container.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Recover a document with a credential and password",
	Long: `Decrypt a document from the container.

A wrong password, a wrong credential, and a document that was never stored
all produce the same error. Nothing distinguishes the three from outside.

Example:
  palimpsest decrypt --out notes.json
  palimpsest decrypt > notes.json`,
	RunE: runDecrypt,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(decryptCmd)

	decryptCmd.Flags().StringVar(&decryptOut, "out", "-", "destination file (- for stdout)")
}

func runDecrypt(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cfg, logger, formatter)
	if err != nil {
		return err
	}

	path := containerFile()
	if _, statErr := os.Stat(path); statErr != nil {
		return plmerr.WithSuggestion(
			plmerr.ErrContainerNotFound,
			fmt.Sprintf("no container at %s", path),
		)
	}

	c, err := container.Load(path)
	if err != nil {
		return plmerr.WithDetails(plmerr.ErrFormat, map[string]string{"path": path})
	}

	credential, err := promptCredentialFn("Credential: ")
	if err != nil {
		return err
	}

	password, err := promptPasswordFn("Password: ")
	if err != nil {
		return err
	}

	secret, err := crypto.SecureBytesFromSlice(password)
	crypto.ZeroBytes(password)
	if err != nil {
		return err
	}
	defer secret.Destroy()

	start := time.Now()
	doc, err := cmdCtx.Engine.Decrypt(c, credential, string(secret.Bytes()))
	if err != nil {
		cmdCtx.Logger.Debug("decrypt failed after %s", time.Since(start))
		return plmerr.ErrDecryptionFailed
	}
	cmdCtx.Logger.Debug("decrypted %d bytes in %s", len(doc), time.Since(start))

	// Keep the plaintext in mlocked memory until it leaves the process.
	recovered, err := crypto.SecureBytesFromSlice(doc)
	if err != nil {
		return err
	}
	crypto.ZeroBytes(doc)
	defer recovered.Destroy()

	return writeDocument(decryptOut, recovered.Bytes())
}
