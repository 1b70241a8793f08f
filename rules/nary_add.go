package rules

import (
	"gonum.org/v1/gonum/floats"

	"github.com/atomic-adgraph/adgraph/graph"
)

// AddForward sums every input's Value (spec.md §4.4). Uses gonum/floats
// for the reduction rather than a hand-rolled loop, the same way the
// n-ary reducers in this file are the only place spec.md calls out a
// genuine "sum over many" shape worth reaching for a vector-math helper.
func AddForward(g *graph.Graph, n *graph.Node) {
	if len(n.Inputs) == 0 {
		return
	}
	vals := make([]float64, len(n.Inputs))
	for i, id := range n.Inputs {
		vals[i] = g.Node(id).Value
	}
	set(&n.Value, &n.ValEpoch, g.CurValEpoch, floats.Sum(vals))
}

// AddForwardDot sums every input's Dot.
func AddForwardDot(g *graph.Graph, n *graph.Node) {
	if len(n.Inputs) == 0 {
		return
	}
	dots := make([]float64, len(n.Inputs))
	for i, id := range n.Inputs {
		dots[i] = g.Node(id).Dot
	}
	set(&n.Dot, &n.DotEpoch, g.CurDotEpoch, floats.Sum(dots))
}

// AddBackward broadcasts n.Gradient to every input unchanged (∂(Σxᵢ)/∂xᵢ = 1).
func AddBackward(g *graph.Graph, n *graph.Node) {
	if len(n.Inputs) == 0 {
		return
	}
	w := n.Gradient
	for _, id := range n.Inputs {
		a := g.Node(id)
		*ensureZero(&a.Gradient, &a.GradEpoch, g.CurGradEpoch) += w
	}
}

// AddHVPBackward additionally broadcasts n.GradDot to every input's
// GradDot; Add is linear, so no second-order cross terms arise.
func AddHVPBackward(g *graph.Graph, n *graph.Node) {
	if len(n.Inputs) == 0 {
		return
	}
	w, wdot := n.Gradient, n.GradDot
	for _, id := range n.Inputs {
		a := g.Node(id)
		*ensureZero(&a.Gradient, &a.GradEpoch, g.CurGradEpoch) += w
		*ensureZero(&a.GradDot, &a.GDotEpoch, g.CurGDotEpoch) += wdot
	}
}
