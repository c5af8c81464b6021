package container

import (
	"crypto/rand"
	"math/big"
)

// FillRandom fills every empty position with an independently drawn uniform
// field element. Real shares of a random polynomial are themselves uniform
// over [0, p), so filled positions carry no statistical marker; the
// partition layer's indistinguishability check must pass against a filled
// container.
func FillRandom(c *Container) error {
	for i, v := range c.values {
		if v != nil {
			continue
		}
		f, err := rand.Int(rand.Reader, c.Header.Prime)
		if err != nil {
			return err
		}
		c.values[i] = f
	}
	return nil
}

// RefillPositions overwrites the given (chunk, id) positions with fresh
// uniform filler. Used when a party's old shares must be retired without
// leaving stale-but-valid points in place.
func RefillPositions(c *Container, chunk int, ids []int) error {
	for _, id := range ids {
		f, err := rand.Int(rand.Reader, c.Header.Prime)
		if err != nil {
			return err
		}
		if err := c.Set(chunk, id, f); err != nil {
			return err
		}
	}
	return nil
}

// SampleValues gathers the values at the given IDs across all chunks,
// normalized to floats in [0, 1) for statistical comparison. Test-time
// helper for the indistinguishability property.
func SampleValues(c *Container, ids []int) []float64 {
	primeFloat := new(big.Float).SetInt(c.Header.Prime)
	samples := make([]float64, 0, len(ids)*c.Header.TotalChunks)
	for chunk := 0; chunk < c.Header.TotalChunks; chunk++ {
		for _, id := range ids {
			v, ok := c.Get(chunk, id)
			if !ok {
				continue
			}
			ratio, _ := new(big.Float).Quo(new(big.Float).SetInt(v), primeFloat).Float64()
			samples = append(samples, ratio)
		}
	}
	return samples
}
