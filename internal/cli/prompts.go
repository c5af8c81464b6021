package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/mrz1836/palimpsest/internal/crypto"
	"github.com/mrz1836/palimpsest/internal/partition"
	plmerr "github.com/mrz1836/palimpsest/pkg/errors"
)

// Prompt indirection so tests can stub interactive input.
//
//nolint:gochecknoglobals // swapped out in tests
var (
	promptPasswordFn    = promptPassword
	promptNewPasswordFn = promptNewPassword
	promptCredentialFn  = promptCredential
	promptMnemonicFn    = promptMnemonic
	promptConfirmFn     = promptConfirmation
)

// promptPassword prompts for a password with hidden input.
// The caller is responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	password, err := term.ReadPassword(syscall.Stdin)
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	return password, nil
}

// promptNewPassword prompts for a new password with confirmation.
// The caller is responsible for zeroing the returned bytes after use.
func promptNewPassword() ([]byte, error) {
	password, err := promptPasswordFn("Enter password: ")
	if err != nil {
		return nil, err
	}

	if len(password) < 8 {
		crypto.ZeroBytes(password)
		return nil, plmerr.WithSuggestion(
			plmerr.ErrInvalidInput,
			"password must be at least 8 characters",
		)
	}

	confirm, err := promptPasswordFn("Confirm password: ")
	if err != nil {
		crypto.ZeroBytes(password)
		return nil, err
	}
	defer crypto.ZeroBytes(confirm)

	if string(password) != string(confirm) {
		crypto.ZeroBytes(password)
		return nil, plmerr.WithSuggestion(
			plmerr.ErrInvalidInput,
			"passwords do not match",
		)
	}

	return password, nil
}

// promptCredential prompts for a credential with hidden input. A credential
// can be a sealed blob, a seed phrase, or any other string the holder chose.
func promptCredential(prompt string) (string, error) {
	cred, err := promptPasswordFn(prompt)
	if err != nil {
		return "", err
	}
	defer crypto.ZeroBytes(cred)

	trimmed := strings.TrimSpace(string(cred))
	if trimmed == "" {
		return "", plmerr.WithSuggestion(plmerr.ErrInvalidInput, "credential cannot be empty")
	}
	return trimmed, nil
}

// promptMnemonic prompts for a multi-word mnemonic on one line, offering a
// wordlist suggestion when a word looks mistyped.
func promptMnemonic() (string, error) {
	out(os.Stderr, "Enter mnemonic (all words on one line): ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", plmerr.WithSuggestion(plmerr.ErrInvalidInput, "no input provided")
	}

	mnemonic := partition.NormalizeMnemonicInput(line)
	if mnemonic == "" {
		return "", plmerr.WithSuggestion(plmerr.ErrInvalidInput, "no input provided")
	}

	for _, word := range strings.Fields(mnemonic) {
		if suggestion := partition.SuggestWord(word); suggestion != "" && suggestion != word {
			outln(os.Stderr, fmt.Sprintf("Note: %q is not a wordlist word. Did you mean %q?", word, suggestion))
		}
	}

	return mnemonic, nil
}

// promptConfirmation asks the user to confirm a destructive action.
func promptConfirmation(question string) bool {
	out(os.Stderr, "%s [y/N]: ", question)

	var response string
	_, err := fmt.Scanln(&response)
	if err != nil {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
