package rules_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atomic-adgraph/adgraph/graph"
	"github.com/atomic-adgraph/adgraph/rules"
)

// TestSoftmaxConcreteScenario is spec.md §8.3 scenario 5:
// y = softmax([1,2,3])[0].
func TestSoftmaxConcreteScenario(t *testing.T) {
	g := graph.New()
	x0 := g.Variable(1)
	x1 := g.Variable(2)
	x2 := g.Variable(3)
	n := g.Softmax(x0, x1, x2)

	g.CurValEpoch++
	rules.Forward(g, g.Node(n))

	e0 := math.Exp(1.0)
	e1 := math.Exp(2.0)
	e2 := math.Exp(3.0)
	want := e0 / (e0 + e1 + e2)
	assert.InDelta(t, want, g.Node(n).Value, 1e-7)
	assert.InDelta(t, 0.0900306, g.Node(n).Value, 1e-6)

	g.CurGradEpoch++
	out := g.Node(n)
	out.Gradient, out.GradEpoch = 1, g.CurGradEpoch
	rules.Backward(g, out)

	y0 := g.Node(n).Value
	assert.InDelta(t, y0*(1-y0), g.Node(x0).Gradient, 1e-9)
	y1 := e1 / (e0 + e1 + e2)
	y2 := e2 / (e0 + e1 + e2)
	assert.InDelta(t, -y0*y1, g.Node(x1).Gradient, 1e-9)
	assert.InDelta(t, -y0*y2, g.Node(x2).Gradient, 1e-9)
}

// TestSoftmaxVectorSumsToOne checks the builder's multi-component
// convenience produces a valid probability vector.
func TestSoftmaxVectorSumsToOne(t *testing.T) {
	g := graph.New()
	xs := []graph.NodeID{g.Variable(0.1), g.Variable(-2), g.Variable(3), g.Variable(0)}
	ys := g.SoftmaxVector(xs...)

	g.CurValEpoch++
	for _, y := range ys {
		rules.Forward(g, g.Node(y))
	}
	sum := 0.0
	for _, y := range ys {
		sum += g.Node(y).Value
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

// TestSoftmaxDegenerateDenominatorGuard checks the smallest case, a
// single input, where Z = exp(0) = 1: the forward pass must not panic
// and must yield 1. The Z<=0 clamp itself is not reached here; for
// finite inputs Z is always at least 1 after the max shift.
func TestSoftmaxDegenerateDenominatorGuard(t *testing.T) {
	g := graph.New()
	n := g.Softmax(g.Variable(0))
	g.CurValEpoch++
	assert.NotPanics(t, func() { rules.Forward(g, g.Node(n)) })
	assert.InDelta(t, 1.0, g.Node(n).Value, 1e-9)
}

func TestSoftmaxJVPMatchesFiniteDifference(t *testing.T) {
	xs := []float64{1, 2, 3}
	softmax0 := func(v []float64) float64 {
		xmax := v[0]
		for _, x := range v {
			if x > xmax {
				xmax = x
			}
		}
		z := 0.0
		e0 := math.Exp(v[0] - xmax)
		for _, x := range v {
			z += math.Exp(x - xmax)
		}
		return e0 / z
	}
	dir := []float64{1, 0, 0}
	eps := 1e-5
	plus := []float64{xs[0] + eps*dir[0], xs[1] + eps*dir[1], xs[2] + eps*dir[2]}
	minus := []float64{xs[0] - eps*dir[0], xs[1] - eps*dir[1], xs[2] - eps*dir[2]}
	want := (softmax0(plus) - softmax0(minus)) / (2 * eps)

	g := graph.New()
	x0 := g.Variable(xs[0])
	x1 := g.Variable(xs[1])
	x2 := g.Variable(xs[2])
	g.Node(x0).Dot = dir[0]
	g.Node(x1).Dot = dir[1]
	g.Node(x2).Dot = dir[2]
	n := g.Softmax(x0, x1, x2)

	g.CurValEpoch++
	rules.Forward(g, g.Node(n))
	g.CurDotEpoch++
	rules.ForwardDot(g, g.Node(n))

	assert.InDelta(t, want, g.Node(n).Dot, 1e-6)
}
