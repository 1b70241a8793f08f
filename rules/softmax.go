package rules

import (
	"math"

	"github.com/atomic-adgraph/adgraph/graph"
	"github.com/atomic-adgraph/adgraph/scratch"
)

// SoftmaxForward computes y_i = softmax(x)[n.Index] using the
// max-shift-stabilized formula from spec.md §4.6. A denominator Z<=0 is
// replaced by 1 as a domain protection for degenerate all-zero-weight
// inputs; in practice Z>=1 always holds because the largest input's
// exp term equals 1 after the max shift.
func SoftmaxForward(g *graph.Graph, n *graph.Node) {
	m := len(n.Inputs)
	if m == 0 {
		return
	}
	buf := scratch.Get()
	defer scratch.Put(buf)

	xmax := math.Inf(-1)
	for _, id := range n.Inputs {
		if v := g.Node(id).Value; v > xmax {
			xmax = v
		}
	}

	buf.Y = scratch.Grow(buf.Y, m)
	z := 0.0
	for i, id := range n.Inputs {
		e := math.Exp(g.Node(id).Value - xmax)
		buf.Y[i] = e
		z += e
	}
	if z <= 0 {
		z = 1
	}
	for i := range buf.Y {
		buf.Y[i] /= z
	}

	idx := n.Index
	if idx < 0 || idx >= m {
		idx = 0
	}
	set(&n.Value, &n.ValEpoch, g.CurValEpoch, buf.Y[idx])
}

// softmaxWeights recomputes the stabilized softmax weight vector for
// n.Inputs. Every pass that needs y reruns this rather than reading
// n.Value, because n only stores its own component — the vector is
// needed in full to evaluate the cross terms below.
func softmaxWeights(g *graph.Graph, inputs []graph.NodeID, y []float64) []float64 {
	xmax := math.Inf(-1)
	for _, id := range inputs {
		if v := g.Node(id).Value; v > xmax {
			xmax = v
		}
	}
	z := 0.0
	for i, id := range inputs {
		e := math.Exp(g.Node(id).Value - xmax)
		y[i] = e
		z += e
	}
	if z <= 0 {
		z = 1
	}
	for i := range y {
		y[i] /= z
	}
	return y
}

// SoftmaxForwardDot implements n.dot = y_idx·(ẋ_idx − s), s = Σⱼ yⱼ·ẋⱼ.
func SoftmaxForwardDot(g *graph.Graph, n *graph.Node) {
	m := len(n.Inputs)
	if m == 0 {
		return
	}
	buf := scratch.Get()
	defer scratch.Put(buf)
	buf.Y = scratch.Grow(buf.Y, m)
	softmaxWeights(g, n.Inputs, buf.Y)

	s := 0.0
	for i, id := range n.Inputs {
		s += buf.Y[i] * g.Node(id).Dot
	}

	idx := n.Index
	if idx < 0 || idx >= m {
		idx = 0
	}
	xdotIdx := g.Node(n.Inputs[idx]).Dot
	set(&n.Dot, &n.DotEpoch, g.CurDotEpoch, buf.Y[idx]*(xdotIdx-s))
}

// SoftmaxBackward accumulates w·∂y_idx/∂xₖ into each inputₖ.Gradient,
// where ∂y_idx/∂xₖ = y_idx·(δ_{idx,k} − yₖ).
func SoftmaxBackward(g *graph.Graph, n *graph.Node) {
	m := len(n.Inputs)
	if m == 0 {
		return
	}
	buf := scratch.Get()
	defer scratch.Put(buf)
	buf.Y = scratch.Grow(buf.Y, m)
	softmaxWeights(g, n.Inputs, buf.Y)

	idx := n.Index
	if idx < 0 || idx >= m {
		idx = 0
	}
	yIdx := buf.Y[idx]
	w := n.Gradient

	for k, id := range n.Inputs {
		delta := 0.0
		if k == idx {
			delta = 1
		}
		dydx := yIdx * (delta - buf.Y[k])
		a := g.Node(id)
		*ensureZero(&a.Gradient, &a.GradEpoch, g.CurGradEpoch) += w * dydx
	}
}

// SoftmaxHVPBackward adds the Hessian-vector column from spec.md §4.6:
//
//	k=idx:  (H·ẋ)_idx = y_idx(1−2y_idx)(ẋ_idx − s)
//	k≠idx:  (H·ẋ)_k   = y_idx·y_k(2s − ẋ_idx − ẋ_k)
func SoftmaxHVPBackward(g *graph.Graph, n *graph.Node) {
	m := len(n.Inputs)
	if m == 0 {
		return
	}
	buf := scratch.Get()
	defer scratch.Put(buf)
	buf.Y = scratch.Grow(buf.Y, m)
	softmaxWeights(g, n.Inputs, buf.Y)

	idx := n.Index
	if idx < 0 || idx >= m {
		idx = 0
	}
	yIdx := buf.Y[idx]
	xdotIdx := g.Node(n.Inputs[idx]).Dot

	s := 0.0
	for i, id := range n.Inputs {
		s += buf.Y[i] * g.Node(id).Dot
	}

	w, wdot := n.Gradient, n.GradDot

	for k, id := range n.Inputs {
		delta := 0.0
		if k == idx {
			delta = 1
		}
		dydx := yIdx * (delta - buf.Y[k])

		var hv float64
		if k == idx {
			hv = yIdx * (1 - 2*yIdx) * (xdotIdx - s)
		} else {
			xdotK := g.Node(id).Dot
			hv = yIdx * buf.Y[k] * (2*s - xdotIdx - xdotK)
		}

		a := g.Node(id)
		*ensureZero(&a.Gradient, &a.GradEpoch, g.CurGradEpoch) += w * dydx
		*ensureZero(&a.GradDot, &a.GDotEpoch, g.CurGDotEpoch) += wdot*dydx + w*hv
	}
}
