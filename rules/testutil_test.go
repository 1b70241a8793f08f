package rules_test

import (
	"gonum.org/v1/gonum/diff/fd"
)

// centralDiff1 approximates f'(x) using gonum's central-difference
// formula, matching spec.md §8's "central differences at step 1e-5"
// testable property.
func centralDiff1(f func(float64) float64, x, step float64) float64 {
	return fd.Derivative(f, x, &fd.Settings{Formula: fd.Central, Step: step})
}

// centralDiff2 approximates f''(x) by central-differencing the
// central-difference approximation of f', matching spec.md §8's
// "twice-differentiated central differences at 1e-4" property.
func centralDiff2(f func(float64) float64, x, step float64) float64 {
	g := func(y float64) float64 {
		return centralDiff1(f, y, step)
	}
	return fd.Derivative(g, x, &fd.Settings{Formula: fd.Central, Step: step})
}
