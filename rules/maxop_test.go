package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atomic-adgraph/adgraph/graph"
	"github.com/atomic-adgraph/adgraph/rules"
)

// TestMaxTieBreaksToFirstInput is spec.md §8.3 scenario 6: max(3,3).
func TestMaxTieBreaksToFirstInput(t *testing.T) {
	g := graph.New()
	a := g.Variable(3)
	b := g.Variable(3)
	g.Node(a).Dot, g.Node(b).Dot = 1, 2
	n := g.Max(a, b)
	runFourPasses(g, n)

	assert.Equal(t, 3.0, g.Node(n).Value)
	assert.Equal(t, 1.0, g.Node(n).Dot) // routes a's tangent on tie
	assert.Equal(t, 1.0, g.Node(a).Gradient)
	assert.Equal(t, 0.0, g.Node(b).Gradient)
}

func TestMaxRoutesToLargerInput(t *testing.T) {
	g := graph.New()
	a := g.Variable(1)
	b := g.Variable(9)
	n := g.Max(a, b)
	runFourPasses(g, n)

	assert.Equal(t, 9.0, g.Node(n).Value)
	assert.Equal(t, 0.0, g.Node(a).Gradient)
	assert.Equal(t, 1.0, g.Node(b).Gradient)
}
