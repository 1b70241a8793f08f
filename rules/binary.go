package rules

import "github.com/atomic-adgraph/adgraph/graph"

// Binary rule table (spec.md §4.3). A rule supplies f and its five
// partials; the pass bodies are generic except where a rule overrides
// forward_dot to avoid redundant work (Divide, below).

type binaryRule struct {
	f                      func(a, b float64) float64
	dfa, dfb               func(a, b float64) float64
	d2aa, d2ab, d2bb       func(a, b float64) float64
	forwardDot             func(A, B, Adot, Bdot float64) float64 // nil => generic dfa*Adot+dfb*Bdot
}

func subF(a, b float64) float64   { return a - b }
func subDFA(a, b float64) float64 { return 1 }
func subDFB(a, b float64) float64 { return -1 }
func zero2(a, b float64) float64  { return 0 }

var subRule = binaryRule{
	f: subF, dfa: subDFA, dfb: subDFB,
	d2aa: zero2, d2ab: zero2, d2bb: zero2,
}

func divF(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
func divDFA(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return 1 / b
}
func divDFB(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return -a / (b * b)
}
func divD2AA(a, b float64) float64 { return 0 }
func divD2AB(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return -1 / (b * b)
}
func divD2BB(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return 2 * a / (b * b * b)
}

var divRule = binaryRule{
	f: divF, dfa: divDFA, dfb: divDFB,
	d2aa: divD2AA, d2ab: divD2AB, d2bb: divD2BB,
	forwardDot: func(A, B, Adot, Bdot float64) float64 {
		if B == 0 {
			return 0
		}
		return (Adot*B - A*Bdot) / (B * B)
	},
}

var binaryTable = map[graph.Operator]binaryRule{
	graph.OpSubtract: subRule,
	graph.OpDivide:   divRule,
}

func binaryForward(g *graph.Graph, n *graph.Node, r binaryRule) {
	if len(n.Inputs) != 2 {
		return
	}
	a, b := g.Node(n.Inputs[0]), g.Node(n.Inputs[1])
	set(&n.Value, &n.ValEpoch, g.CurValEpoch, r.f(a.Value, b.Value))
}

func binaryForwardDot(g *graph.Graph, n *graph.Node, r binaryRule) {
	if len(n.Inputs) != 2 {
		return
	}
	a, b := g.Node(n.Inputs[0]), g.Node(n.Inputs[1])
	var dot float64
	if r.forwardDot != nil {
		dot = r.forwardDot(a.Value, b.Value, a.Dot, b.Dot)
	} else {
		dot = r.dfa(a.Value, b.Value)*a.Dot + r.dfb(a.Value, b.Value)*b.Dot
	}
	set(&n.Dot, &n.DotEpoch, g.CurDotEpoch, dot)
}

func binaryBackward(g *graph.Graph, n *graph.Node, r binaryRule) {
	if len(n.Inputs) != 2 {
		return
	}
	a, b := g.Node(n.Inputs[0]), g.Node(n.Inputs[1])
	w := n.Gradient
	A, B := a.Value, b.Value
	*ensureZero(&a.Gradient, &a.GradEpoch, g.CurGradEpoch) += w * r.dfa(A, B)
	*ensureZero(&b.Gradient, &b.GradEpoch, g.CurGradEpoch) += w * r.dfb(A, B)
}

func binaryHVPBackward(g *graph.Graph, n *graph.Node, r binaryRule) {
	if len(n.Inputs) != 2 {
		return
	}
	a, b := g.Node(n.Inputs[0]), g.Node(n.Inputs[1])
	A, B := a.Value, b.Value
	Adot, Bdot := a.Dot, b.Dot
	w, wdot := n.Gradient, n.GradDot

	*ensureZero(&a.Gradient, &a.GradEpoch, g.CurGradEpoch) += w * r.dfa(A, B)
	*ensureZero(&b.Gradient, &b.GradEpoch, g.CurGradEpoch) += w * r.dfb(A, B)

	*ensureZero(&a.GradDot, &a.GDotEpoch, g.CurGDotEpoch) +=
		wdot*r.dfa(A, B) + w*(r.d2aa(A, B)*Adot+r.d2ab(A, B)*Bdot)
	*ensureZero(&b.GradDot, &b.GDotEpoch, g.CurGDotEpoch) +=
		wdot*r.dfb(A, B) + w*(r.d2ab(A, B)*Adot+r.d2bb(A, B)*Bdot)
}
