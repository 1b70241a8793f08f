package rules

import "math"

// sigmoid is the numerically stable logistic function. It branches on
// the sign of x so the exponential argument is always non-positive,
// avoiding overflow for large |x| (spec.md §4.2).
func sigmoid(x float64) float64 {
	if x >= 0 {
		z := math.Exp(-x)
		return 1 / (1 + z)
	}
	z := math.Exp(x)
	return z / (1 + z)
}

// sqrt2OverPi is √(2/π), the normalizing constant in the exact erf-based
// GELU derivative (spec.md §4.2 table, column A).
const sqrt2OverPi = 0.7978845608028654

const invSqrt2 = 0.7071067811865476

// geluA is the A(x) term from spec.md's GELU row: A = √(2/π)·exp(-x²/2).
func geluA(x float64) float64 {
	return sqrt2OverPi * math.Exp(-0.5*x*x)
}
