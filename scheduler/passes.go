package scheduler

import (
	"github.com/atomic-adgraph/adgraph/graph"
	"github.com/atomic-adgraph/adgraph/rules"
)

// Forward bumps the graph's value epoch and runs the primal pass over
// order, which must be a topological order of every node the caller
// cares about (spec.md §5: "visit a node only after every input has
// been evaluated in this pass").
func Forward(g *graph.Graph, order []graph.NodeID) {
	g.CurValEpoch++
	for _, id := range order {
		rules.Forward(g, g.Node(id))
	}
}

// ForwardDot bumps the dot epoch and runs the JVP pass over order.
func ForwardDot(g *graph.Graph, order []graph.NodeID) {
	g.CurDotEpoch++
	for _, id := range order {
		rules.ForwardDot(g, g.Node(id))
	}
}

// Backward bumps the gradient epoch, seeds output.Gradient = 1, and
// runs the VJP pass over reverseOrder (reverse topological order of the
// same nodes Forward used).
func Backward(g *graph.Graph, output graph.NodeID, reverseOrder []graph.NodeID) {
	g.CurGradEpoch++
	out := g.Node(output)
	out.Gradient = 1
	out.GradEpoch = g.CurGradEpoch
	for _, id := range reverseOrder {
		rules.Backward(g, g.Node(id))
	}
}

// HVPBackward computes the Hessian-vector product in a single combined
// reverse sweep: it bumps both the gradient and grad-dot epochs, seeds
// output.Gradient = 1 and output.GradDot = 0, then runs the
// forward-over-reverse pass over reverseOrder. Every hvp_backward rule
// body accumulates into both a node's Gradient and GradDot in the same
// visit (spec.md §4.1-§4.7), so HVP does not need a preceding plain
// Backward call — it recomputes the VJP and the HVP together. Callers
// must have already run Forward and ForwardDot (with leaf Dot values
// seeded) so Value/Dot are live for this pass to read.
func HVPBackward(g *graph.Graph, output graph.NodeID, reverseOrder []graph.NodeID) {
	g.CurGradEpoch++
	g.CurGDotEpoch++
	out := g.Node(output)
	out.Gradient = 1
	out.GradEpoch = g.CurGradEpoch
	out.GradDot = 0
	out.GDotEpoch = g.CurGDotEpoch
	for _, id := range reverseOrder {
		rules.HVPBackward(g, g.Node(id))
	}
}
