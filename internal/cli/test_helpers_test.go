package cli

import "testing"

// withMockPrompts replaces prompt functions for testing and restores on cleanup.
func withMockPrompts(t *testing.T, credential string, password []byte, confirm bool) {
	t.Helper()
	origPW := promptPasswordFn
	origNewPW := promptNewPasswordFn
	origCred := promptCredentialFn
	origMnemonic := promptMnemonicFn
	origConfirm := promptConfirmFn
	t.Cleanup(func() {
		promptPasswordFn = origPW
		promptNewPasswordFn = origNewPW
		promptCredentialFn = origCred
		promptMnemonicFn = origMnemonic
		promptConfirmFn = origConfirm
	})
	promptPasswordFn = func(_ string) ([]byte, error) {
		cp := make([]byte, len(password))
		copy(cp, password)
		return cp, nil
	}
	promptNewPasswordFn = func() ([]byte, error) {
		cp := make([]byte, len(password))
		copy(cp, password)
		return cp, nil
	}
	promptCredentialFn = func(_ string) (string, error) {
		return credential, nil
	}
	promptMnemonicFn = func() (string, error) {
		return "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", nil
	}
	promptConfirmFn = func(_ string) bool { return confirm }
}
