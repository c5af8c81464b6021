package partition

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
)

// prng is a deterministic keyed pseudorandom generator. It produces an
// HMAC-SHA256 counter stream from a 32-byte seed and is threaded as a value,
// never shared through package state, so concurrent derivations cannot
// interfere with each other's determinism.
type prng struct {
	key     []byte
	counter uint64
	buf     []byte
	off     int
}

func newPRNG(seed [32]byte) *prng {
	return &prng{key: seed[:]}
}

// next returns the next byte of the keyed stream.
func (p *prng) next() byte {
	if p.off >= len(p.buf) {
		var block [8]byte
		binary.BigEndian.PutUint64(block[:], p.counter)
		p.counter++

		mac := hmac.New(sha256.New, p.key)
		mac.Write(block[:])
		p.buf = mac.Sum(nil)
		p.off = 0
	}
	b := p.buf[p.off]
	p.off++
	return b
}

// uint64n returns a uniform value in [0, n) using rejection sampling so the
// shuffle has no modulo bias.
func (p *prng) uint64n(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	max := ^uint64(0) - (^uint64(0) % n)
	for {
		var v uint64
		for i := 0; i < 8; i++ {
			v = v<<8 | uint64(p.next())
		}
		if v < max {
			return v % n
		}
	}
}

// intn returns a uniform int in [0, n).
func (p *prng) intn(n int) int {
	return int(p.uint64n(uint64(n))) //nolint:gosec // n is a small positive space size
}

// shuffle performs a Fisher-Yates shuffle of ids in place.
func (p *prng) shuffle(ids []int) {
	for i := len(ids) - 1; i > 0; i-- {
		j := p.intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}
