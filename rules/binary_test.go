package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atomic-adgraph/adgraph/graph"
	"github.com/atomic-adgraph/adgraph/rules"
)

func buildBinary(op graph.Operator, A, B, Adot, Bdot float64) (*graph.Graph, graph.NodeID, graph.NodeID, graph.NodeID) {
	g := graph.New()
	a := g.Variable(A)
	b := g.Variable(B)
	g.Node(a).Dot = Adot
	g.Node(b).Dot = Bdot
	var n graph.NodeID
	switch op {
	case graph.OpSubtract:
		n = g.Subtract(a, b)
	case graph.OpDivide:
		n = g.Divide(a, b)
	}
	return g, a, b, n
}

func runForwardBackward(g *graph.Graph, n graph.NodeID) {
	g.CurValEpoch++
	rules.Forward(g, g.Node(n))
	g.CurDotEpoch++
	rules.ForwardDot(g, g.Node(n))
	g.CurGradEpoch++
	out := g.Node(n)
	out.Gradient, out.GradEpoch = 1, g.CurGradEpoch
	rules.Backward(g, out)
}

func TestSubtractForwardBackward(t *testing.T) {
	g, a, b, n := buildBinary(graph.OpSubtract, 5, 2, 1, 1)
	runForwardBackward(g, n)
	assert.Equal(t, 3.0, g.Node(n).Value)
	assert.Equal(t, 0.0, g.Node(n).Dot) // 1 - 1
	assert.Equal(t, 1.0, g.Node(a).Gradient)
	assert.Equal(t, -1.0, g.Node(b).Gradient)
}

func TestDivideForwardBackward(t *testing.T) {
	g, a, b, n := buildBinary(graph.OpDivide, 6, 3, 1, 0)
	runForwardBackward(g, n)
	assert.Equal(t, 2.0, g.Node(n).Value)
	assert.InDelta(t, 1.0/3, g.Node(n).Dot, 1e-12)
	assert.InDelta(t, 1.0/3, g.Node(a).Gradient, 1e-12)
	assert.InDelta(t, -6.0/9, g.Node(b).Gradient, 1e-12)
}

func TestDivideByZeroGuarded(t *testing.T) {
	g, a, b, n := buildBinary(graph.OpDivide, 6, 0, 1, 1)
	runForwardBackward(g, n)
	assert.Equal(t, 0.0, g.Node(n).Value)
	assert.Equal(t, 0.0, g.Node(a).Gradient)
	assert.Equal(t, 0.0, g.Node(b).Gradient)
}

func TestBinaryDerivativeMatchesFiniteDifference(t *testing.T) {
	A, B := 1.3, 0.8
	div := func(x float64) float64 { return x / B }
	g, a, _, n := buildBinary(graph.OpDivide, A, B, 1, 0)
	runForwardBackward(g, n)
	want := centralDiff1(div, A, 1e-5)
	assert.InDelta(t, want, g.Node(a).Gradient, 1e-6)
}
