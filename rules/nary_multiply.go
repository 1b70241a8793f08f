package rules

import (
	"github.com/atomic-adgraph/adgraph/graph"
	"github.com/atomic-adgraph/adgraph/scratch"
)

// MultiplyForward computes the product of every input's Value (spec.md
// §4.5).
func MultiplyForward(g *graph.Graph, n *graph.Node) {
	if len(n.Inputs) == 0 {
		return
	}
	p := 1.0
	for _, id := range n.Inputs {
		p *= g.Node(id).Value
	}
	set(&n.Value, &n.ValEpoch, g.CurValEpoch, p)
}

// prefixSuffix fills pre[0..m] and suf[0..m] such that pre[i] =
// Πⱼ<ᵢ vⱼ and suf[i] = Πⱼ≥ᵢ vⱼ, so that Πⱼ≠ᵢ vⱼ = pre[i]·suf[i+1]
// without ever dividing by vᵢ (spec.md §4.5).
func prefixSuffix(b *scratch.Buffers, vals []float64) {
	m := len(vals)
	b.Pre = scratch.Grow(b.Pre, m+1)
	b.Suf = scratch.Grow(b.Suf, m+1)
	b.Pre[0] = 1
	for i := 0; i < m; i++ {
		b.Pre[i+1] = b.Pre[i] * vals[i]
	}
	b.Suf[m] = 1
	for i := m - 1; i >= 0; i-- {
		b.Suf[i] = b.Suf[i+1] * vals[i]
	}
}

// MultiplyForwardDot computes ż = Σᵢ ẋᵢ·Πⱼ≠ᵢ vⱼ via the prefix/suffix
// tables above.
func MultiplyForwardDot(g *graph.Graph, n *graph.Node) {
	m := len(n.Inputs)
	if m == 0 {
		return
	}
	b := scratch.Get()
	defer scratch.Put(b)

	b.Vals = scratch.Grow(b.Vals, m)
	b.Dots = scratch.Grow(b.Dots, m)
	for i, id := range n.Inputs {
		in := g.Node(id)
		b.Vals[i] = in.Value
		b.Dots[i] = in.Dot
	}
	prefixSuffix(b, b.Vals)

	zdot := 0.0
	for i := 0; i < m; i++ {
		zdot += b.Dots[i] * b.Pre[i] * b.Suf[i+1]
	}
	set(&n.Dot, &n.DotEpoch, g.CurDotEpoch, zdot)
}

// MultiplyBackward accumulates inputᵢ.Gradient += n.Gradient·pre[i]·suf[i+1].
func MultiplyBackward(g *graph.Graph, n *graph.Node) {
	m := len(n.Inputs)
	if m == 0 {
		return
	}
	w := n.Gradient

	if m == 2 {
		a, bNode := g.Node(n.Inputs[0]), g.Node(n.Inputs[1])
		*ensureZero(&a.Gradient, &a.GradEpoch, g.CurGradEpoch) += w * bNode.Value
		*ensureZero(&bNode.Gradient, &bNode.GradEpoch, g.CurGradEpoch) += w * a.Value
		return
	}

	buf := scratch.Get()
	defer scratch.Put(buf)
	buf.Vals = scratch.Grow(buf.Vals, m)
	for i, id := range n.Inputs {
		buf.Vals[i] = g.Node(id).Value
	}
	prefixSuffix(buf, buf.Vals)

	for i, id := range n.Inputs {
		a := g.Node(id)
		*ensureZero(&a.Gradient, &a.GradEpoch, g.CurGradEpoch) += w * buf.Pre[i] * buf.Suf[i+1]
	}
}

// MultiplyHVPBackward implements spec.md §4.5's binary fast path for
// m=2 and the division-free general case for m≥3: the excluded-pair
// product Πℓ∉{i,k} vℓ is built from pre[min]·(mid run)·suf[max+1] so a
// zero anywhere among the inputs never produces a 0/0 the way a naive
// total_product/vᵢ/vₖ would.
func MultiplyHVPBackward(g *graph.Graph, n *graph.Node) {
	m := len(n.Inputs)
	if m == 0 {
		return
	}
	w, wdot := n.Gradient, n.GradDot

	if m == 2 {
		a, bNode := g.Node(n.Inputs[0]), g.Node(n.Inputs[1])
		A, B := a.Value, bNode.Value
		Adot, Bdot := a.Dot, bNode.Dot
		*ensureZero(&a.Gradient, &a.GradEpoch, g.CurGradEpoch) += w * B
		*ensureZero(&bNode.Gradient, &bNode.GradEpoch, g.CurGradEpoch) += w * A
		*ensureZero(&a.GradDot, &a.GDotEpoch, g.CurGDotEpoch) += wdot*B + w*Bdot
		*ensureZero(&bNode.GradDot, &bNode.GDotEpoch, g.CurGDotEpoch) += wdot*A + w*Adot
		return
	}

	buf := scratch.Get()
	defer scratch.Put(buf)
	buf.Vals = scratch.Grow(buf.Vals, m)
	buf.Dots = scratch.Grow(buf.Dots, m)
	for i, id := range n.Inputs {
		in := g.Node(id)
		buf.Vals[i] = in.Value
		buf.Dots[i] = in.Dot
	}
	prefixSuffix(buf, buf.Vals)

	for i, idI := range n.Inputs {
		ai := g.Node(idI)
		firstOrder := buf.Pre[i] * buf.Suf[i+1]

		cross := 0.0
		for k := 0; k < m; k++ {
			if k == i {
				continue
			}
			cross += buf.Dots[k] * excludedPairProduct(buf, i, k)
		}

		*ensureZero(&ai.Gradient, &ai.GradEpoch, g.CurGradEpoch) += w * firstOrder
		*ensureZero(&ai.GradDot, &ai.GDotEpoch, g.CurGDotEpoch) += wdot*firstOrder + w*cross
	}
}

// excludedPairProduct computes Πℓ∉{i,k} v_ℓ without division, using the
// prefix/suffix tables plus a direct mid-run multiply between the two
// excluded indices. Early-exits once the running mid product hits zero.
func excludedPairProduct(b *scratch.Buffers, i, k int) float64 {
	lo, hi := i, k
	if lo > hi {
		lo, hi = hi, lo
	}
	mid := 1.0
	for l := lo + 1; l < hi; l++ {
		mid *= b.Vals[l]
		if mid == 0 {
			break
		}
	}
	return b.Pre[lo] * mid * b.Suf[hi+1]
}
