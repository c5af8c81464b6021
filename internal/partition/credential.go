package partition

import (
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"

	"github.com/mrz1836/palimpsest/internal/crypto"
)

// sealedPrefix marks a credential that carries an encrypted ID list rather
// than a bare seed string.
const sealedPrefix = "plm1."

// sealedPayload is the serialized form inside a sealed credential.
type sealedPayload struct {
	Version int   `json:"version"`
	IDs     []int `json:"ids"`
}

// SealCredential encrypts an explicit ID list under a password and encodes
// it as an opaque string. The holder of the credential plus the password can
// recover exactly the IDs assigned at partition time; anyone else sees an
// opaque blob indistinguishable from random.
func SealCredential(ids []int, password string) (string, error) {
	sorted := make([]int, len(ids))
	copy(sorted, ids)
	sort.Ints(sorted)

	payload, err := json.Marshal(sealedPayload{Version: 1, IDs: sorted})
	if err != nil {
		return "", err
	}

	sealed, err := crypto.Encrypt(payload, password)
	if err != nil {
		return "", err
	}

	return sealedPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// OpenCredential attempts to recover the ID list from a sealed credential.
// The second return value is false when the credential is not sealed or the
// password does not open it. Callers must treat false as "fall back to
// seed-string derivation", never as an error: surfacing the distinction
// would hand an attacker a credential-validity oracle.
func OpenCredential(credential, password string) ([]int, bool) {
	if !strings.HasPrefix(credential, sealedPrefix) {
		return nil, false
	}

	sealed, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(credential, sealedPrefix))
	if err != nil {
		return nil, false
	}

	// The opened payload reveals the holder's ID region, so it stays in
	// mlocked memory and is scrubbed as soon as the list is parsed.
	payload, err := crypto.DecryptSecure(sealed, password)
	if err != nil {
		return nil, false
	}
	defer payload.Destroy()

	var p sealedPayload
	if err := json.Unmarshal(payload.Bytes(), &p); err != nil {
		return nil, false
	}
	if p.Version != 1 || len(p.IDs) == 0 {
		return nil, false
	}
	for _, id := range p.IDs {
		if id < 1 {
			return nil, false
		}
	}
	return p.IDs, true
}

// IsSealed reports whether a credential carries the sealed-format prefix.
// Note that a sealed credential that fails to open is still fed to the
// seed-string path, so this is a formatting hint, not a validity check.
func IsSealed(credential string) bool {
	return strings.HasPrefix(credential, sealedPrefix)
}
