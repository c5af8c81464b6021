package partition

import "math"

// Tolerances and sample statistics are build-time and test-time sanity
// checks only. They are never consulted on a security-sensitive path.

// DefaultTolerance is the default relative tolerance for the
// indistinguishability checks.
const DefaultTolerance = 0.10

// Mean returns the arithmetic mean of an ID set.
func Mean(ids []int) float64 {
	if len(ids) == 0 {
		return 0
	}
	sum := 0.0
	for _, id := range ids {
		sum += float64(id)
	}
	return sum / float64(len(ids))
}

// Variance returns the population variance of an ID set.
func Variance(ids []int) float64 {
	if len(ids) == 0 {
		return 0
	}
	mean := Mean(ids)
	sum := 0.0
	for _, id := range ids {
		d := float64(id) - mean
		sum += d * d
	}
	return sum / float64(len(ids))
}

// VerifyIndistinguishability checks that the three regions of a partition
// are statistically similar: their means and variances are within tolerance
// of each other, and the A/B cardinality ratio is close to 1. A skewed
// region would let an observer guess which IDs carry real shares.
func VerifyIndistinguishability(a, b, unassigned []int, tolerance float64) bool {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if len(a) == 0 || len(b) == 0 || len(unassigned) == 0 {
		return false
	}

	if !withinTolerance(float64(len(a)), float64(len(b)), tolerance) {
		return false
	}

	sets := [][]int{a, b, unassigned}
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			if !withinTolerance(Mean(sets[i]), Mean(sets[j]), tolerance) {
				return false
			}
			if !withinTolerance(Variance(sets[i]), Variance(sets[j]), tolerance) {
				return false
			}
		}
	}
	return true
}

// withinTolerance reports whether x and y differ by less than tol relative
// to the larger magnitude.
func withinTolerance(x, y, tol float64) bool {
	larger := math.Max(math.Abs(x), math.Abs(y))
	if larger == 0 {
		return true
	}
	return math.Abs(x-y)/larger <= tol
}
