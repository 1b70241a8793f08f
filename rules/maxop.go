package rules

import "github.com/atomic-adgraph/adgraph/graph"

// MaxForward returns max(a,b); exact ties break to the first input
// (spec.md §4.7). This is a subgradient choice, not an approximation —
// no smoothing is applied anywhere in this file.
func MaxForward(g *graph.Graph, n *graph.Node) {
	if len(n.Inputs) != 2 {
		return
	}
	a, b := g.Node(n.Inputs[0]), g.Node(n.Inputs[1])
	v := a.Value
	if b.Value > v {
		v = b.Value
	}
	set(&n.Value, &n.ValEpoch, g.CurValEpoch, v)
}

// winner reports whether the first input is the winning branch (ties go
// to a), so every pass routes its contribution through the same branch
// consistently.
func winner(a, b *graph.Node) bool {
	return a.Value >= b.Value
}

// MaxForwardDot routes ẋ of the winning branch straight through.
func MaxForwardDot(g *graph.Graph, n *graph.Node) {
	if len(n.Inputs) != 2 {
		return
	}
	a, b := g.Node(n.Inputs[0]), g.Node(n.Inputs[1])
	dot := b.Dot
	if winner(a, b) {
		dot = a.Dot
	}
	set(&n.Dot, &n.DotEpoch, g.CurDotEpoch, dot)
}

// MaxBackward routes n.Gradient entirely to the winning branch; the
// loser receives no contribution.
func MaxBackward(g *graph.Graph, n *graph.Node) {
	if len(n.Inputs) != 2 {
		return
	}
	a, b := g.Node(n.Inputs[0]), g.Node(n.Inputs[1])
	w := n.Gradient
	if winner(a, b) {
		*ensureZero(&a.Gradient, &a.GradEpoch, g.CurGradEpoch) += w
	} else {
		*ensureZero(&b.Gradient, &b.GradEpoch, g.CurGradEpoch) += w
	}
}

// MaxHVPBackward routes both n.Gradient and n.GradDot to the winning
// branch; same routing rule as MaxBackward.
func MaxHVPBackward(g *graph.Graph, n *graph.Node) {
	if len(n.Inputs) != 2 {
		return
	}
	a, b := g.Node(n.Inputs[0]), g.Node(n.Inputs[1])
	w, wdot := n.Gradient, n.GradDot
	if winner(a, b) {
		*ensureZero(&a.Gradient, &a.GradEpoch, g.CurGradEpoch) += w
		*ensureZero(&a.GradDot, &a.GDotEpoch, g.CurGDotEpoch) += wdot
	} else {
		*ensureZero(&b.Gradient, &b.GradEpoch, g.CurGradEpoch) += w
		*ensureZero(&b.GradDot, &b.GDotEpoch, g.CurGDotEpoch) += wdot
	}
}
