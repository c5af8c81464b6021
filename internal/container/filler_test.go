package container

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/palimpsest/internal/field"
	"github.com/mrz1836/palimpsest/internal/partition"
)

func TestFillRandomCompletes(t *testing.T) {
	c := New(testHeader(3), 20)
	assert.False(t, c.Complete())
	require.NoError(t, FillRandom(c))
	assert.True(t, c.Complete())

	for _, s := range c.Shares() {
		assert.True(t, s.Value.Sign() >= 0 && s.Value.Cmp(testPrime) < 0)
	}
}

func TestFillRandomPreservesExisting(t *testing.T) {
	c := New(testHeader(2), 10)
	shares, err := field.Split(big.NewInt(12345), 3, []int{2, 5, 9}, testPrime)
	require.NoError(t, err)
	for _, s := range shares {
		require.NoError(t, c.Set(0, s.ID, s.Value))
	}

	require.NoError(t, FillRandom(c))

	for _, s := range shares {
		got, ok := c.Get(0, s.ID)
		require.True(t, ok)
		assert.Zero(t, got.Cmp(s.Value), "filler must not disturb real shares")
	}
}

// TestFillerIndistinguishability verifies that real shares and filler drawn
// for the A/B/Unassigned regions cannot be told apart by their first two
// moments. Uniform values over [0,1) have mean 0.5 and variance 1/12.
func TestFillerIndistinguishability(t *testing.T) {
	part, err := partition.New("fill-seed", 120, 0.35, 0.35)
	require.NoError(t, err)

	const chunks = 40
	c := New(testHeader(chunks), 120)

	// Real shares for region A on every chunk, everything else filler.
	for chunk := 0; chunk < chunks; chunk++ {
		secret := big.NewInt(int64(chunk)*7919 + 17)
		shares, err := field.Split(secret, 3, part.A, testPrime)
		require.NoError(t, err)
		for _, s := range shares {
			require.NoError(t, c.Set(chunk, s.ID, s.Value))
		}
	}
	require.NoError(t, FillRandom(c))

	regions := map[string][]float64{
		"A":          SampleValues(c, part.A),
		"B":          SampleValues(c, part.B),
		"Unassigned": SampleValues(c, part.Unassigned),
	}

	for name, samples := range regions {
		require.NotEmpty(t, samples)
		mean, variance := moments(samples)
		assert.InDelta(t, 0.5, mean, 0.05, "region %s mean", name)
		assert.InDelta(t, 1.0/12.0, variance, 0.015, "region %s variance", name)
	}

	meanA, varA := moments(regions["A"])
	meanU, varU := moments(regions["Unassigned"])
	assert.Less(t, math.Abs(meanA-meanU)/0.5, 0.10, "real vs filler mean skew")
	assert.Less(t, math.Abs(varA-varU)/(1.0/12.0), 0.10, "real vs filler variance skew")
}

func moments(samples []float64) (mean, variance float64) {
	for _, s := range samples {
		mean += s
	}
	mean /= float64(len(samples))
	for _, s := range samples {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(samples))
	return mean, variance
}
