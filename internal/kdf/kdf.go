// Package kdf derives ranking and sealing keys from passwords.
// Two algorithms are supported: PBKDF2-SHA256 with a fixed iteration floor,
// and Argon2id for installs that prefer a memory-hard function. The derived
// key feeds the share selector's HMAC ranking, so derivation must be fully
// deterministic for a given (password, salt, params) triple.
package kdf

import (
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// Algorithm names accepted in Params.
const (
	AlgorithmPBKDF2   = "pbkdf2"
	AlgorithmArgon2id = "argon2id"
)

const (
	// MinIterations is the minimum PBKDF2 iteration count.
	MinIterations = 100000

	// MinSaltLength is the minimum salt length in bytes.
	MinSaltLength = 16

	// DefaultKeyLength is the derived key length in bytes.
	DefaultKeyLength = 32
)

var (
	// ErrEmptySecret is returned when the password is empty.
	ErrEmptySecret = errors.New("secret cannot be empty")

	// ErrInvalidSalt is returned when the salt is too short.
	ErrInvalidSalt = errors.New("salt must be at least 16 bytes")

	// ErrInvalidIterations is returned when the PBKDF2 iteration count is
	// below the minimum.
	ErrInvalidIterations = errors.New("iteration count below minimum")

	// ErrUnsupportedAlgorithm is returned for unknown algorithm names.
	ErrUnsupportedAlgorithm = errors.New("unsupported KDF algorithm")
)

// Params selects and tunes the key derivation function.
type Params struct {
	Algorithm  string
	Iterations int    // PBKDF2 only
	Memory     uint32 // Argon2id only, KiB
	Time       uint32 // Argon2id only
	Threads    uint8  // Argon2id only
	KeyLength  int
}

// DefaultParams returns PBKDF2-SHA256 parameters with the iteration floor.
func DefaultParams() Params {
	return Params{
		Algorithm:  AlgorithmPBKDF2,
		Iterations: MinIterations,
		KeyLength:  DefaultKeyLength,
	}
}

// Argon2Params returns Argon2id parameters suitable for interactive use.
func Argon2Params() Params {
	return Params{
		Algorithm: AlgorithmArgon2id,
		Memory:    64 * 1024,
		Time:      1,
		Threads:   4,
		KeyLength: DefaultKeyLength,
	}
}

// DeriveKey derives a key from a password and salt.
func DeriveKey(secret, salt []byte, p Params) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if len(salt) < MinSaltLength {
		return nil, ErrInvalidSalt
	}
	keyLen := p.KeyLength
	if keyLen <= 0 {
		keyLen = DefaultKeyLength
	}

	switch p.Algorithm {
	case AlgorithmPBKDF2, "":
		iterations := p.Iterations
		if iterations == 0 {
			iterations = MinIterations
		}
		if iterations < MinIterations {
			return nil, ErrInvalidIterations
		}
		return pbkdf2.Key(secret, salt, iterations, keyLen, sha256.New), nil

	case AlgorithmArgon2id:
		memory := p.Memory
		if memory == 0 {
			memory = 64 * 1024
		}
		time := p.Time
		if time == 0 {
			time = 1
		}
		threads := p.Threads
		if threads == 0 {
			threads = 4
		}
		return argon2.IDKey(secret, salt, time, memory, threads, uint32(keyLen)), nil //nolint:gosec // keyLen validated positive

	default:
		return nil, ErrUnsupportedAlgorithm
	}
}
