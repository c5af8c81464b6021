// Package field implements Shamir's Secret Sharing over the prime field GF(p).
// Unlike byte-oriented schemes, shares are evaluated at caller-supplied IDs so
// that the set of x-coordinates carries no positional information about who
// owns a share.
package field

import (
	"crypto/rand"
	"math/big"
)

// Share is a single evaluation point (ID, Value) of a secret polynomial.
type Share struct {
	ID    int
	Value *big.Int
}

// Polynomial is a polynomial over GF(p) with the secret as its constant term.
// Polynomials are transient: they exist only while shares are being generated
// and are never persisted.
type Polynomial struct {
	coeffs []*big.Int
	prime  *big.Int
}

// NewPolynomial builds a random polynomial of the given degree whose constant
// term is secret. The remaining coefficients are drawn uniformly from [0, p)
// using crypto/rand.
func NewPolynomial(secret *big.Int, degree int, prime *big.Int) (*Polynomial, error) {
	if degree < 0 {
		return nil, ErrInvalidDegree
	}
	if secret.Sign() < 0 || secret.Cmp(prime) >= 0 {
		return nil, ErrInvalidSecret
	}

	coeffs := make([]*big.Int, degree+1)
	coeffs[0] = new(big.Int).Set(secret)
	for i := 1; i <= degree; i++ {
		c, err := rand.Int(rand.Reader, prime)
		if err != nil {
			return nil, err
		}
		coeffs[i] = c
	}

	return &Polynomial{coeffs: coeffs, prime: prime}, nil
}

// Evaluate computes the polynomial at x using Horner's method mod p.
// Evaluating at x = 0 returns the secret; callers must never use 0 as a
// share ID.
func (p *Polynomial) Evaluate(x *big.Int) *big.Int {
	result := new(big.Int)
	tmp := new(big.Int)
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, tmp.Set(p.coeffs[i]))
		result.Mod(result, p.prime)
	}
	return result
}

// Degree returns the degree of the polynomial.
func (p *Polynomial) Degree() int {
	return len(p.coeffs) - 1
}

// Split generates one share per ID from a single polynomial of degree
// threshold-1. IDs come from the partition and selection layers; they are
// never the sequential 1..n of textbook Shamir.
func Split(secret *big.Int, threshold int, ids []int, prime *big.Int) ([]Share, error) {
	if threshold < 2 {
		return nil, ErrThresholdInvalid
	}
	if len(ids) == 0 {
		return nil, ErrNoShareIDs
	}
	for _, id := range ids {
		if id < 1 {
			return nil, ErrInvalidShareID
		}
	}

	poly, err := NewPolynomial(secret, threshold-1, prime)
	if err != nil {
		return nil, err
	}

	shares := make([]Share, len(ids))
	x := new(big.Int)
	for i, id := range ids {
		x.SetInt64(int64(id))
		shares[i] = Share{ID: id, Value: poly.Evaluate(x)}
	}
	return shares, nil
}

// Reconstruct recovers the secret from shares via Lagrange interpolation at
// x = 0. All arithmetic is exact modular big-integer arithmetic; inverses are
// computed with the extended Euclidean algorithm via (*big.Int).ModInverse.
func Reconstruct(shares []Share, prime *big.Int) (*big.Int, error) {
	if len(shares) < 2 {
		return nil, ErrInsufficientShares
	}

	seen := make(map[int]bool, len(shares))
	for _, s := range shares {
		if seen[s.ID] {
			return nil, ErrDuplicateXCoordinate
		}
		seen[s.ID] = true
	}

	secret := new(big.Int)
	num := new(big.Int)
	den := new(big.Int)
	term := new(big.Int)

	for i, si := range shares {
		// weight_i = prod_{j != i} x_j / (x_j - x_i) evaluated at x = 0
		num.SetInt64(1)
		den.SetInt64(1)
		xi := big.NewInt(int64(si.ID))

		for j, sj := range shares {
			if i == j {
				continue
			}
			xj := big.NewInt(int64(sj.ID))
			num.Mul(num, xj)
			num.Mod(num, prime)

			term.Sub(xj, xi)
			term.Mod(term, prime)
			den.Mul(den, term)
			den.Mod(den, prime)
		}

		// den is non-zero because IDs are unique
		den.ModInverse(den, prime)
		term.Mul(num, den)
		term.Mod(term, prime)
		term.Mul(term, si.Value)
		term.Mod(term, prime)

		secret.Add(secret, term)
		secret.Mod(secret, prime)
	}

	return secret, nil
}
