package rules

import (
	"math"

	"github.com/atomic-adgraph/adgraph/graph"
)

// Unary rule table (spec.md §4.2). Each rule is a pure (f, df, d2) triple
// of the primal, its first derivative, and its second derivative, all
// guarded against the domain singularities spec.md calls out. The four
// pass bodies below are the generic "unary rule template"; Log and Tan
// plug their branchy df/d2 straight into that template rather than
// recomputing the primal, which is what spec.md's "custom forward_dot
// avoids recomputing ln/tan" note is protecting against.

func sinF(x float64) float64  { return math.Sin(x) }
func sinDF(x float64) float64 { return math.Cos(x) }
func sinD2(x float64) float64 { return -math.Sin(x) }

func cosF(x float64) float64  { return math.Cos(x) }
func cosDF(x float64) float64 { return -math.Sin(x) }
func cosD2(x float64) float64 { return -math.Cos(x) }

func expF(x float64) float64  { return math.Exp(x) }
func expDF(x float64) float64 { return math.Exp(x) }
func expD2(x float64) float64 { return math.Exp(x) }

func logF(x float64) float64 { return math.Log(x) }
func logDF(x float64) float64 {
	if x == 0 {
		return 0
	}
	return 1 / x
}
func logD2(x float64) float64 {
	if x == 0 {
		return 0
	}
	return -1 / (x * x)
}

func tanF(x float64) float64 { return math.Tan(x) }
func tanDF(x float64) float64 {
	c := math.Cos(x)
	if c == 0 {
		return 0
	}
	return 1 / (c * c)
}
func tanD2(x float64) float64 {
	c := math.Cos(x)
	if c == 0 {
		return 0
	}
	return 2 * math.Sin(x) / (c * c * c)
}

func tanhF(x float64) float64 { return math.Tanh(x) }
func tanhDF(x float64) float64 {
	t := math.Tanh(x)
	return 1 - t*t
}
func tanhD2(x float64) float64 {
	t := math.Tanh(x)
	return -2 * t * (1 - t*t)
}

func reluF(x float64) float64 { return math.Max(x, 0) }
func reluDF(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}
func reluD2(float64) float64 { return 0 }

func siluF(x float64) float64 { return x * sigmoid(x) }
func siluDF(x float64) float64 {
	s := sigmoid(x)
	return s * (1 + x*(1-s))
}
func siluD2(x float64) float64 {
	s := sigmoid(x)
	return s * (1 - s) * (2 + x*(1-2*s))
}

func geluF(x float64) float64 {
	return 0.5 * x * (1 + math.Erf(x*invSqrt2))
}
func geluDF(x float64) float64 {
	return 0.5*(1+math.Erf(x*invSqrt2)) + 0.5*x*geluA(x)
}
func geluD2(x float64) float64 {
	return geluA(x) * (1 - 0.5*x*x)
}

type unaryRule struct {
	f, df, d2 func(float64) float64
}

var unaryTable = map[graph.Operator]unaryRule{
	graph.OpSin:  {sinF, sinDF, sinD2},
	graph.OpCos:  {cosF, cosDF, cosD2},
	graph.OpExp:  {expF, expDF, expD2},
	graph.OpLog:  {logF, logDF, logD2},
	graph.OpTan:  {tanF, tanDF, tanD2},
	graph.OpTanh: {tanhF, tanhDF, tanhD2},
	graph.OpRelu: {reluF, reluDF, reluD2},
	graph.OpSilu: {siluF, siluDF, siluD2},
	graph.OpGelu: {geluF, geluDF, geluD2},
}

func unaryForward(g *graph.Graph, n *graph.Node, r unaryRule) {
	if len(n.Inputs) != 1 {
		return
	}
	a := g.Node(n.Inputs[0])
	set(&n.Value, &n.ValEpoch, g.CurValEpoch, r.f(a.Value))
}

func unaryForwardDot(g *graph.Graph, n *graph.Node, r unaryRule) {
	if len(n.Inputs) != 1 {
		return
	}
	a := g.Node(n.Inputs[0])
	set(&n.Dot, &n.DotEpoch, g.CurDotEpoch, r.df(a.Value)*a.Dot)
}

func unaryBackward(g *graph.Graph, n *graph.Node, r unaryRule) {
	if len(n.Inputs) != 1 {
		return
	}
	a := g.Node(n.Inputs[0])
	w := n.Gradient
	*ensureZero(&a.Gradient, &a.GradEpoch, g.CurGradEpoch) += w * r.df(a.Value)
}

func unaryHVPBackward(g *graph.Graph, n *graph.Node, r unaryRule) {
	if len(n.Inputs) != 1 {
		return
	}
	a := g.Node(n.Inputs[0])
	x, xdot := a.Value, a.Dot
	w, wdot := n.Gradient, n.GradDot
	*ensureZero(&a.Gradient, &a.GradEpoch, g.CurGradEpoch) += w * r.df(x)
	*ensureZero(&a.GradDot, &a.GDotEpoch, g.CurGDotEpoch) += wdot*r.df(x) + w*r.d2(x)*xdot
}
