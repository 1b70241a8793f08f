package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atomic-adgraph/adgraph/graph"
	"github.com/atomic-adgraph/adgraph/rules"
)

// TestEpochLaziness covers spec.md §8's epoch-laziness property:
// bumping cur_grad_epoch without touching a node, then reading it via
// ensure_zero, must yield 0 before the first +=.
func TestEpochLaziness(t *testing.T) {
	g := graph.New()
	a := g.Variable(2)
	b := g.Variable(3)
	n := g.Add(a, b)

	// Run one full backward pass so a.Gradient is live and non-zero.
	g.CurGradEpoch++
	out := g.Node(n)
	out.Gradient, out.GradEpoch = 1, g.CurGradEpoch
	rules.Backward(g, out)
	assert.Equal(t, 1.0, g.Node(a).Gradient)

	// Bump the epoch again without touching anything; a stale read
	// through a fresh backward pass must start from zero, not the
	// previous pass's leftover value.
	g.CurGradEpoch++
	out2 := g.Node(n)
	out2.Gradient, out2.GradEpoch = 5, g.CurGradEpoch
	rules.Backward(g, out2)
	assert.Equal(t, 5.0, g.Node(a).Gradient, "stale slot must read as zero before accumulating this epoch's contribution")
}

// TestUnknownOperatorIsNoOp covers spec.md §4.9/§6: dispatch on an
// unrecognized tag must not read or write any slot.
func TestUnknownOperatorIsNoOp(t *testing.T) {
	unknown := graph.Operator(250)

	// Build a node with the unknown tag directly (bypassing the typed
	// builder, which never emits unrecognized tags itself).
	g := graph.New()
	id := g.Variable(1)
	raw := g.Node(id)
	raw.Op = unknown
	raw.Value = 42

	g.CurValEpoch++
	rules.Forward(g, raw)
	assert.Equal(t, 42.0, raw.Value, "unknown op must not overwrite Value")
	assert.Equal(t, "unknown", rules.Name(unknown))
}

func TestConstAndVarNamesMatchSpec(t *testing.T) {
	cases := map[graph.Operator]string{
		graph.OpConst:    "cte",
		graph.OpVar:      "Var",
		graph.OpAdd:      "Add",
		graph.OpSubtract: "Subtract",
		graph.OpMultiply: "Multiply",
		graph.OpDivide:   "Divide",
		graph.OpSin:      "Sin",
		graph.OpCos:      "Cos",
		graph.OpTan:      "Tan",
		graph.OpExp:      "Exp",
		graph.OpLog:      "Log",
		graph.OpMax:      "Max",
		graph.OpTanh:     "Tanh",
		graph.OpSilu:     "Silu",
		graph.OpGelu:     "Gelu",
		graph.OpRelu:     "Relu",
		graph.OpSoftmax:  "Softmax",
	}
	for op, want := range cases {
		assert.Equal(t, want, rules.Name(op))
	}
}
