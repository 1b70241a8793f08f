package rules

import "github.com/atomic-adgraph/adgraph/graph"

// ConstVarForward and ConstVarForwardDot just assert liveness: the
// stored Value (and Dot, for variables) is set by the external builder
// or the caller's input-feeding step, never by the engine itself
// (spec.md §4.8).
func ConstVarForward(g *graph.Graph, n *graph.Node) {
	touch(&n.ValEpoch, g.CurValEpoch)
}

func ConstVarForwardDot(g *graph.Graph, n *graph.Node) {
	touch(&n.DotEpoch, g.CurDotEpoch)
}

// ConstVarBackward and ConstVarHVPBackward are no-ops: gradients that
// arrive at a leaf stay there for the caller to read.
func ConstVarBackward(g *graph.Graph, n *graph.Node)    {}
func ConstVarHVPBackward(g *graph.Graph, n *graph.Node) {}
