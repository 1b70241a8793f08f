package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomic-adgraph/adgraph/graph"
)

func TestConstantAndVariable(t *testing.T) {
	g := graph.New()
	c := g.Constant(2.5)
	v := g.Variable(1.0)
	require.Equal(t, graph.OpConst, g.Node(c).Op)
	require.Equal(t, graph.OpVar, g.Node(v).Op)
	assert.Equal(t, 2.5, g.Node(c).Value)
	assert.Equal(t, 1.0, g.Node(v).Value)
}

func TestUnaryBuildersSetInputs(t *testing.T) {
	g := graph.New()
	a := g.Variable(1)
	n := g.Sin(a)
	require.Len(t, g.Node(n).Inputs, 1)
	assert.Equal(t, a, g.Node(n).Inputs[0])
	assert.Equal(t, graph.OpSin, g.Node(n).Op)
}

func TestAddAndMultiplyRequireAtLeastOneInput(t *testing.T) {
	g := graph.New()
	assert.Panics(t, func() { g.Add() })
	assert.Panics(t, func() { g.Multiply() })
}

func TestBuilderPanicsOnForeignNode(t *testing.T) {
	g1 := graph.New()
	g2 := graph.New()
	foreign := g1.Variable(1)
	assert.Panics(t, func() { g2.Sin(foreign) })
}

func TestSoftmaxVectorIndexesComponents(t *testing.T) {
	g := graph.New()
	xs := []graph.NodeID{g.Variable(1), g.Variable(2), g.Variable(3)}
	ys := g.SoftmaxVector(xs...)
	require.Len(t, ys, 3)
	for i, y := range ys {
		assert.Equal(t, i, g.Node(y).Index)
		assert.Equal(t, graph.OpSoftmax, g.Node(y).Op)
	}
}

func TestWithCapacityPreallocates(t *testing.T) {
	g := graph.NewWithOptions(graph.WithCapacity(16))
	assert.Equal(t, 0, g.Len())
	g.Variable(1)
	assert.Equal(t, 1, g.Len())
}
