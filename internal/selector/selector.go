// Package selector implements the two-stage share selection protocol.
//
// Stage 1 asks the partition layer for the credential's candidate ID
// superset. Stage 2 derives a ranking key from the password and the
// container salt, scores every candidate with HMAC-SHA256, and narrows the
// superset to the shares actually used. Nothing about the selection is ever
// persisted; both sides recompute it independently, so a wrong credential or
// password silently lands on the wrong IDs rather than producing an error.
//
// Decryption keeps up to three times the threshold of ranked candidates.
// The redundancy tolerates partially overwritten regions while the ranking
// keeps the reconstruction input deterministic: the encrypting side's IDs
// are by construction the leading threshold entries of the same ordering.
package selector

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"math/big"
	"sort"
	"strconv"

	"github.com/mrz1836/palimpsest/internal/kdf"
	"github.com/mrz1836/palimpsest/internal/partition"
)

// ErrTooFewCandidates is returned when the candidate superset cannot cover
// the threshold. This can only happen through misconfiguration (threshold
// larger than the partition region), never through a wrong credential.
var ErrTooFewCandidates = errors.New("candidate set smaller than threshold")

// Selector narrows a credential's candidate superset to the exact share IDs
// for one operation.
type Selector struct {
	kdfParams kdf.Params
}

// New creates a Selector with the given KDF parameters.
func New(params kdf.Params) *Selector {
	return &Selector{kdfParams: params}
}

// Candidates resolves stage 1: the credential's candidate ID superset.
// A sealed credential that opens under the password contributes its explicit
// ID list; any other credential goes through seed-string subset derivation.
// Both paths produce a plausible subset for any input.
func (s *Selector) Candidates(credential, password string, spaceSize, threshold int, ratio float64) []int {
	if ids, ok := partition.OpenCredential(credential, password); ok {
		return ids
	}
	count := partition.SelectionCount(threshold, ratio, spaceSize)
	return partition.DeriveSubset(credential, spaceSize, count)
}

// RankingKey derives the stage-2 ranking key from the password and the
// container salt.
func (s *Selector) RankingKey(password string, salt []byte) ([]byte, error) {
	return kdf.DeriveKey([]byte(password), salt, s.kdfParams)
}

// Rank orders candidate IDs by their HMAC-SHA256 score under the ranking
// key, ascending. The score is the digest interpreted as a big-endian
// integer; ties (which require a digest collision) fall back to ID order so
// the ranking is a total order.
func Rank(key []byte, ids []int) []int {
	type scored struct {
		id    int
		score *big.Int
	}

	scores := make([]scored, len(ids))
	for i, id := range ids {
		mac := hmac.New(sha256.New, key)
		mac.Write([]byte(strconv.Itoa(id)))
		scores[i] = scored{id: id, score: new(big.Int).SetBytes(mac.Sum(nil))}
	}

	sort.Slice(scores, func(i, j int) bool {
		switch scores[i].score.Cmp(scores[j].score) {
		case -1:
			return true
		case 1:
			return false
		default:
			return scores[i].id < scores[j].id
		}
	})

	ranked := make([]int, len(ids))
	for i, sc := range scores {
		ranked[i] = sc.id
	}
	return ranked
}

// ForEncrypt returns the exact threshold-sized ID set used to generate real
// shares.
func (s *Selector) ForEncrypt(credential, password string, salt []byte, spaceSize, threshold int, ratio float64) ([]int, error) {
	candidates := s.Candidates(credential, password, spaceSize, threshold, ratio)
	if len(candidates) < threshold {
		return nil, ErrTooFewCandidates
	}

	key, err := s.RankingKey(password, salt)
	if err != nil {
		return nil, err
	}
	return Rank(key, candidates)[:threshold], nil
}

// ForDecrypt returns up to 3*threshold ranked candidate IDs. The caller
// hands the leading threshold entries per chunk to reconstruction and keeps
// the rest as decoy-resilience margin.
func (s *Selector) ForDecrypt(credential, password string, salt []byte, spaceSize, threshold int, ratio float64) ([]int, error) {
	candidates := s.Candidates(credential, password, spaceSize, threshold, ratio)

	key, err := s.RankingKey(password, salt)
	if err != nil {
		return nil, err
	}

	ranked := Rank(key, candidates)
	limit := 3 * threshold
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
