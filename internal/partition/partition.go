// Package partition maps the share-ID space [1, N] onto reproducible,
// statistically indistinguishable subsets. A subset is derived entirely from
// a credential string; no owner label ever touches a share. Malformed
// credentials are normalized instead of rejected, so a wrong credential
// yields a plausible subset rather than an error.
package partition

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

var (
	// ErrSpaceTooSmall is returned when the ID space cannot hold the
	// requested subsets.
	ErrSpaceTooSmall = errors.New("ID space too small for requested partition")

	// ErrInvalidRatio is returned when the configured ratios do not leave an
	// unassigned region.
	ErrInvalidRatio = errors.New("partition ratios must sum to less than 1")
)

// Partition is a disjoint split of [1, N] into two party regions and an
// unassigned remainder. It exists only at container-initialization time; the
// on-disk container never records it.
type Partition struct {
	A          []int
	B          []int
	Unassigned []int
	SpaceSize  int
}

// New splits [1, spaceSize] into disjoint A/B/Unassigned regions using a
// single keyed shuffle seeded from masterSeed. Disjointness holds by
// construction: the shuffled space is sliced, never resampled.
func New(masterSeed string, spaceSize int, ratioA, ratioB float64) (*Partition, error) {
	if ratioA <= 0 || ratioB <= 0 || ratioA+ratioB >= 1 {
		return nil, ErrInvalidRatio
	}
	sizeA := int(float64(spaceSize) * ratioA)
	sizeB := int(float64(spaceSize) * ratioB)
	// A one-ID region cannot seat a threshold of shares; two is the floor
	// for a region to be worth handing to a party at all.
	if sizeA < 2 || sizeB < 2 || sizeA+sizeB >= spaceSize {
		return nil, ErrSpaceTooSmall
	}

	ids := identitySpace(spaceSize)
	rng := newPRNG(sha256.Sum256([]byte(NormalizeCredential(masterSeed))))
	rng.shuffle(ids)

	return &Partition{
		A:          ids[:sizeA],
		B:          ids[sizeA : sizeA+sizeB],
		Unassigned: ids[sizeA+sizeB:],
		SpaceSize:  spaceSize,
	}, nil
}

// NormalizeCredential maps any string to a canonical credential encoding.
// Input that is already canonical (URL-safe base64 of at least 16 bytes) is
// returned unchanged; anything else is hashed and re-encoded. This function
// never fails: every credential, however malformed, must map to some
// deterministic subset so that wrong input cannot be told apart from right
// input at this layer.
func NormalizeCredential(raw string) string {
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err == nil && len(decoded) >= 16 {
		return raw
	}
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// DeriveSubset deterministically selects count IDs from [1, spaceSize] by
// shuffling the whole space under a key derived from the credential and
// taking the leading run. Derivation never fails; downstream layers detect a
// wrong credential by share-count shortfall, not by an error from here.
func DeriveSubset(credential string, spaceSize, count int) []int {
	if count > spaceSize {
		count = spaceSize
	}
	if count < 0 {
		count = 0
	}

	ids := identitySpace(spaceSize)
	rng := newPRNG(sha256.Sum256([]byte(NormalizeCredential(credential))))
	rng.shuffle(ids)
	return ids[:count]
}

// SelectionCount returns the size of the stage-1 candidate superset:
// max(3*threshold, ratio*spaceSize). The superset is deliberately larger than
// anything stage 2 will use, providing decoy redundancy.
func SelectionCount(threshold int, ratio float64, spaceSize int) int {
	count := 3 * threshold
	if byRatio := int(ratio * float64(spaceSize)); byRatio > count {
		count = byRatio
	}
	if count > spaceSize {
		count = spaceSize
	}
	return count
}

// Disjoint reports whether two ID sets share no members.
func Disjoint(a, b []int) bool {
	seen := make(map[int]bool, len(a))
	for _, id := range a {
		seen[id] = true
	}
	for _, id := range b {
		if seen[id] {
			return false
		}
	}
	return true
}

func identitySpace(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}
