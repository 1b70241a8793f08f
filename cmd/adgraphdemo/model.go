package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/golang/glog"

	"github.com/atomic-adgraph/adgraph/graph"
)

// ParamMatrix is one trainable weight matrix: Data is the parameter
// source of truth across training steps, Grad accumulates gradients
// read back out of a graph.Graph after a backward pass, and M/V are the
// Adam moving averages. Grounded on
// zautner-Atomic-GPT-explorer/model.go's Model.Params/AdamM/AdamV,
// generalized from a flat []*Value slice to per-matrix storage since
// this engine rebuilds a fresh graph.Graph every training step instead
// of keeping one permanent *Value per weight.
type ParamMatrix struct {
	Name string
	Data [][]float64
	Grad [][]float64
	M, V [][]float64
}

func newParamMatrix(name string, rows, cols int) *ParamMatrix {
	mk := func() [][]float64 {
		m := make([][]float64, rows)
		for i := range m {
			m[i] = make([]float64, cols)
		}
		return m
	}
	pm := &ParamMatrix{Name: name, Data: mk(), Grad: mk(), M: mk(), V: mk()}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			// Small Gaussian initialization keeps activations stable
			// initially, same choice as the teacher's createMatrix.
			pm.Data[i][j] = rand.NormFloat64() * 0.02
		}
	}
	return pm
}

func (pm *ParamMatrix) resetGrad() {
	for i := range pm.Grad {
		for j := range pm.Grad[i] {
			pm.Grad[i][j] = 0
		}
	}
}

// Model stores every trainable weight matrix and the Adam state needed
// to update them, plus vocabulary bookkeeping. Grounded on
// zautner-Atomic-GPT-explorer/model.go's Model/NewModel.
type Model struct {
	Config    Config
	VocabSize int
	Chars     []string
	BOS       int

	Matrices map[string]*ParamMatrix
	Steps    int
}

// NewModel builds the vocabulary from docs and allocates every weight
// matrix the transformer needs (embeddings, per-layer attention/MLP
// projections, output head).
func NewModel(config Config, docs []string) *Model {
	charSet := make(map[rune]bool)
	for _, doc := range docs {
		for _, r := range doc {
			charSet[r] = true
		}
	}
	chars := make([]string, 0, len(charSet))
	for r := range charSet {
		chars = append(chars, string(r))
	}
	sort.Strings(chars)

	vocabSize := len(chars) + 1
	bos := len(chars)

	m := &Model{
		Config:    config,
		VocabSize: vocabSize,
		Chars:     chars,
		BOS:       bos,
		Matrices:  make(map[string]*ParamMatrix),
	}

	m.Matrices["wte"] = newParamMatrix("wte", vocabSize, config.NEmbd)
	m.Matrices["wpe"] = newParamMatrix("wpe", config.BlockSize, config.NEmbd)
	m.Matrices["lm_head"] = newParamMatrix("lm_head", vocabSize, config.NEmbd)

	for i := 0; i < config.NLayer; i++ {
		m.Matrices[fmt.Sprintf("layer%d.attn_wq", i)] = newParamMatrix("attn_wq", config.NEmbd, config.NEmbd)
		m.Matrices[fmt.Sprintf("layer%d.attn_wk", i)] = newParamMatrix("attn_wk", config.NEmbd, config.NEmbd)
		m.Matrices[fmt.Sprintf("layer%d.attn_wv", i)] = newParamMatrix("attn_wv", config.NEmbd, config.NEmbd)
		m.Matrices[fmt.Sprintf("layer%d.attn_wo", i)] = newParamMatrix("attn_wo", config.NEmbd, config.NEmbd)
		m.Matrices[fmt.Sprintf("layer%d.mlp_fc1", i)] = newParamMatrix("mlp_fc1", 4*config.NEmbd, config.NEmbd)
		m.Matrices[fmt.Sprintf("layer%d.mlp_fc2", i)] = newParamMatrix("mlp_fc2", config.NEmbd, 4*config.NEmbd)
	}

	glog.Infof("model: vocab=%d n_embd=%d n_layer=%d n_head=%d", vocabSize, config.NEmbd, config.NLayer, config.NHead)
	return m
}

// wireMatrix builds one graph.Variable per entry of pm.Data in the live
// graph g, returning the NodeID grid so forward-pass code can reference
// weights the same way it references activations.
func wireMatrix(g *graph.Graph, pm *ParamMatrix) [][]graph.NodeID {
	ids := make([][]graph.NodeID, len(pm.Data))
	for i, row := range pm.Data {
		ids[i] = make([]graph.NodeID, len(row))
		for j, v := range row {
			ids[i][j] = g.Variable(v)
		}
	}
	return ids
}

// collectGradients reads Gradient back out of every NodeID in ids into
// pm.Grad, accumulating (a matrix used more than once in one graph —
// e.g. across token positions sharing weights — already accumulated
// within the graph via the epoch protocol; this step just copies the
// final per-node totals out before the graph is discarded).
func collectGradients(g *graph.Graph, ids [][]graph.NodeID, pm *ParamMatrix) {
	for i := range ids {
		for j := range ids[i] {
			pm.Grad[i][j] += g.Node(ids[i][j]).Gradient
		}
	}
}

// adamUpdate applies one Adam step to every matrix using its
// accumulated Grad, the same hyperparameters and bias-correction as
// zautner-Atomic-GPT-explorer/model.go's Update.
func (m *Model) adamUpdate() {
	m.Steps++
	lr := m.Config.LearningRate
	const beta1, beta2, eps = 0.85, 0.99, 1e-8

	bc1 := 1 - math.Pow(beta1, float64(m.Steps))
	bc2 := 1 - math.Pow(beta2, float64(m.Steps))

	for _, pm := range m.Matrices {
		for i := range pm.Data {
			for j := range pm.Data[i] {
				grad := pm.Grad[i][j]
				pm.M[i][j] = beta1*pm.M[i][j] + (1-beta1)*grad
				pm.V[i][j] = beta2*pm.V[i][j] + (1-beta2)*grad*grad

				mHat := pm.M[i][j] / bc1
				vHat := pm.V[i][j] / bc2

				pm.Data[i][j] -= lr * mHat / (math.Sqrt(vHat) + eps)
			}
		}
		pm.resetGrad()
	}
}
