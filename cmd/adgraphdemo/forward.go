package main

import (
	"fmt"
	"math"

	"github.com/atomic-adgraph/adgraph/graph"
)

// wired holds every weight matrix's NodeIDs for one training/inference
// graph, so forward-pass code references weights the same way it
// references activations — grounded on
// zautner-Atomic-GPT-explorer/forward.go's Model.Forward, adapted from
// a *Value chain to graph.Graph node construction.
type wired struct {
	m   *Model
	ids map[string][][]graph.NodeID
}

func wireModel(g *graph.Graph, m *Model) *wired {
	w := &wired{m: m, ids: make(map[string][][]graph.NodeID, len(m.Matrices))}
	for name, pm := range m.Matrices {
		w.ids[name] = wireMatrix(g, pm)
	}
	return w
}

func linear(g *graph.Graph, x []graph.NodeID, w [][]graph.NodeID) []graph.NodeID {
	out := make([]graph.NodeID, len(w))
	for i, row := range w {
		terms := make([]graph.NodeID, len(x))
		for j, xi := range x {
			terms[j] = g.Multiply(row[j], xi)
		}
		out[i] = g.Add(terms...)
	}
	return out
}

// rmsNorm normalizes x by its root-mean-square magnitude, expressed
// entirely with the spec's closed operator set: x^-0.5 has no direct
// Pow operator, so the scale is built as exp(-0.5*log(ms+eps)).
func rmsNorm(g *graph.Graph, x []graph.NodeID) []graph.NodeID {
	sq := make([]graph.NodeID, len(x))
	for i, xi := range x {
		sq[i] = g.Multiply(xi, xi)
	}
	sumSq := g.Add(sq...)
	invN := g.Constant(1.0 / float64(len(x)))
	ms := g.Multiply(sumSq, invN)
	msEps := g.Add(ms, g.Constant(1e-5))

	logMs := g.Log(msEps)
	halfNegLog := g.Multiply(logMs, g.Constant(-0.5))
	scale := g.Exp(halfNegLog)

	out := make([]graph.NodeID, len(x))
	for i, xi := range x {
		out[i] = g.Multiply(xi, scale)
	}
	return out
}

func addVec(g *graph.Graph, a, b []graph.NodeID) []graph.NodeID {
	out := make([]graph.NodeID, len(a))
	for i := range a {
		out[i] = g.Add(a[i], b[i])
	}
	return out
}

func reluVec(g *graph.Graph, x []graph.NodeID) []graph.NodeID {
	out := make([]graph.NodeID, len(x))
	for i, xi := range x {
		out[i] = g.Relu(xi)
	}
	return out
}

// forwardStep runs one autoregressive step: it consumes a single token
// + position and returns logits for the next token, appending this
// step's keys/values onto keys/values so later positions can attend to
// it. Grounded on forward.go's (*Model).Forward.
func (w *wired) forwardStep(g *graph.Graph, tokenID, posID int, keys, values [][][]graph.NodeID) []graph.NodeID {
	cfg := w.m.Config
	tokEmb := w.ids["wte"][tokenID]
	posEmb := w.ids["wpe"][posID]
	x := addVec(g, tokEmb, posEmb)
	x = rmsNorm(g, x)

	headDim := cfg.NEmbd / cfg.NHead
	invSqrtHeadDim := g.Constant(1.0 / math.Sqrt(float64(headDim)))

	for li := 0; li < cfg.NLayer; li++ {
		xResidual := x
		x = rmsNorm(g, x)

		q := linear(g, x, w.ids[fmt.Sprintf("layer%d.attn_wq", li)])
		k := linear(g, x, w.ids[fmt.Sprintf("layer%d.attn_wk", li)])
		v := linear(g, x, w.ids[fmt.Sprintf("layer%d.attn_wv", li)])
		keys[li] = append(keys[li], k)
		values[li] = append(values[li], v)

		xAttn := make([]graph.NodeID, 0, cfg.NEmbd)
		for h := 0; h < cfg.NHead; h++ {
			hs := h * headDim
			qH := q[hs : hs+headDim]

			attnLogits := make([]graph.NodeID, len(keys[li]))
			for t := range keys[li] {
				kH := keys[li][t][hs : hs+headDim]
				terms := make([]graph.NodeID, headDim)
				for j := 0; j < headDim; j++ {
					terms[j] = g.Multiply(qH[j], kH[j])
				}
				dot := g.Add(terms...)
				attnLogits[t] = g.Multiply(dot, invSqrtHeadDim)
			}
			attnWeights := g.SoftmaxVector(attnLogits...)

			headOut := make([]graph.NodeID, headDim)
			for j := 0; j < headDim; j++ {
				terms := make([]graph.NodeID, len(values[li]))
				for t := range values[li] {
					vH := values[li][t][hs : hs+headDim]
					terms[t] = g.Multiply(attnWeights[t], vH[j])
				}
				headOut[j] = g.Add(terms...)
			}
			xAttn = append(xAttn, headOut...)
		}

		x = linear(g, xAttn, w.ids[fmt.Sprintf("layer%d.attn_wo", li)])
		x = addVec(g, x, xResidual)

		xResidual = x
		x = rmsNorm(g, x)
		x = linear(g, x, w.ids[fmt.Sprintf("layer%d.mlp_fc1", li)])
		x = reluVec(g, x)
		x = linear(g, x, w.ids[fmt.Sprintf("layer%d.mlp_fc2", li)])
		x = addVec(g, x, xResidual)
	}

	return linear(g, x, w.ids["lm_head"])
}
