package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/palimpsest/internal/crypto"
	"github.com/mrz1836/palimpsest/internal/output"
	"github.com/mrz1836/palimpsest/internal/partition"
	plmerr "github.com/mrz1836/palimpsest/pkg/errors"
)

// credentialCmd is the parent command for credential operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var credentialCmd = &cobra.Command{
	Use:     "credential",
	Aliases: []string{"cred"},
	Short:   "Generate and derive access credentials",
	Long: `Create mnemonic seeds, derive per-document credentials from them, and
seal credentials over partitioned share-ID regions for multi-party setups.`,
}

// credentialNewCmd generates a fresh mnemonic seed.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var credentialNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new mnemonic seed",
	Long: `Generate a new BIP-39 mnemonic seed phrase.

The mnemonic is the root of a credential family: derive per-document
credentials from it with 'palimpsest credential derive'.

Write it down. It is displayed once and never stored.

Examples:
  palimpsest credential new
  palimpsest credential new --words 24
  palimpsest credential new --qr`,
	RunE: runCredentialNew,
}

// credentialDeriveCmd derives a child credential from a mnemonic.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var credentialDeriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive a credential from a mnemonic",
	Long: `Derive a deterministic child credential from a mnemonic seed.

The same mnemonic and index always produce the same credential, so a
credential lost from memory can be re-derived from the seed phrase.
Different indexes produce unrelated credentials.

Examples:
  palimpsest credential derive
  palimpsest credential derive --index 3 --qr`,
	RunE: runCredentialDerive,
}

// credentialPartitionCmd seals two credentials over disjoint ID regions.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var credentialPartitionCmd = &cobra.Command{
	Use:     "partition",
	Aliases: []string{"seal"},
	Short:   "Seal two credentials over disjoint share-ID regions",
	Long: `Split the share-ID space into two disjoint regions and seal one
credential per region.

This is the setup step for a shared container: each party receives one
sealed credential and chooses their own password. The sealed form encodes
the party's region, so two parties sealed from the same master seed can
never collide inside the container. The master seed itself is not needed
again after setup and should be destroyed.

The regions are drawn by a keyed shuffle and verified to be statistically
indistinguishable before the credentials are emitted.

Examples:
  palimpsest credential partition
  palimpsest credential partition --qr`,
	RunE: runCredentialPartition,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	credentialWords int
	credentialIndex uint32
	credentialQR    bool
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(credentialCmd)
	credentialCmd.AddCommand(credentialNewCmd)
	credentialCmd.AddCommand(credentialDeriveCmd)
	credentialCmd.AddCommand(credentialPartitionCmd)

	credentialNewCmd.Flags().IntVar(&credentialWords, "words", 12, "mnemonic length (12 or 24 words)")
	credentialNewCmd.Flags().BoolVar(&credentialQR, "qr", false, "render the mnemonic as a QR code")

	credentialDeriveCmd.Flags().Uint32Var(&credentialIndex, "index", 0, "derivation index")
	credentialDeriveCmd.Flags().BoolVar(&credentialQR, "qr", false, "render the credential as a QR code")

	credentialPartitionCmd.Flags().BoolVar(&credentialQR, "qr", false, "render the sealed credentials as QR codes")
}

func runCredentialNew(cmd *cobra.Command, _ []string) error {
	mnemonic, err := partition.GenerateMnemonic(credentialWords)
	if err != nil {
		return plmerr.Wrap(err, "generating mnemonic")
	}

	w := cmd.OutOrStdout()

	if formatter.IsJSON() {
		return writeJSON(w, map[string]any{
			"mnemonic": mnemonic,
			"words":    credentialWords,
		})
	}

	outln(w, "Mnemonic seed (write this down, it is shown once):")
	outln(w)
	out(w, "  %s\n", mnemonic)
	outln(w)
	outln(w, "Derive document credentials with 'palimpsest credential derive'.")

	if credentialQR {
		return renderCredentialQR(w, mnemonic)
	}
	return nil
}

func runCredentialDerive(cmd *cobra.Command, _ []string) error {
	mnemonic, err := promptMnemonicFn()
	if err != nil {
		return err
	}

	credential, err := partition.DeriveChildCredential(mnemonic, credentialIndex)
	if err != nil {
		return plmerr.Wrap(plmerr.ErrInvalidMnemonic, "%v", err)
	}

	w := cmd.OutOrStdout()

	if formatter.IsJSON() {
		return writeJSON(w, map[string]any{
			"credential": credential,
			"index":      credentialIndex,
		})
	}

	out(w, "Credential (index %d): %s\n", credentialIndex, credential)

	if credentialQR {
		return renderCredentialQR(w, credential)
	}
	return nil
}

func runCredentialPartition(cmd *cobra.Command, _ []string) error {
	seed, err := promptCredentialFn("Master seed for partitioning: ")
	if err != nil {
		return err
	}

	part, err := partition.New(seed, cfg.Space.Size, cfg.Space.RatioA, cfg.Space.RatioB)
	if err != nil {
		return plmerr.Wrap(err, "partitioning ID space")
	}

	if !partition.VerifyIndistinguishability(part.A, part.B, part.Unassigned, 0.25) {
		return plmerr.WithSuggestion(
			plmerr.ErrGeneral,
			"partition regions are statistically skewed; choose a different master seed",
		)
	}

	w := cmd.OutOrStdout()
	sealed := make([]string, 2)
	for i, region := range [][]int{part.A, part.B} {
		out(w, "Password for party %d:\n", i+1)
		password, pwErr := promptNewPasswordFn()
		if pwErr != nil {
			return pwErr
		}
		sealed[i], err = partition.SealCredential(region, string(password))
		crypto.ZeroBytes(password)
		if err != nil {
			return plmerr.Wrap(err, "sealing credential")
		}
	}

	if formatter.IsJSON() {
		return writeJSON(w, map[string]any{
			"space_size":  part.SpaceSize,
			"credentials": sealed,
		})
	}

	outln(w)
	for i, s := range sealed {
		out(w, "Party %d credential: %s\n", i+1, s)
		if credentialQR {
			if qrErr := renderCredentialQR(w, s); qrErr != nil {
				return qrErr
			}
		}
	}
	outln(w)
	outln(w, "Hand each party their credential.")
	output.Warn(cmd.ErrOrStderr(), "Destroy the master seed. Anyone holding it can re-derive both regions.")
	return nil
}

// renderCredentialQR prints a terminal QR code below the text form.
func renderCredentialQR(w io.Writer, data string) error {
	if !output.CanRenderQR(w) {
		return nil
	}
	fmt.Fprintln(w)
	return output.RenderQR(w, data)
}
