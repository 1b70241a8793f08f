package main

import (
	"fmt"
	"math/rand"

	"github.com/golang/glog"

	"github.com/atomic-adgraph/adgraph/graph"
	"github.com/atomic-adgraph/adgraph/scheduler"
)

// tokenLabel converts a token ID to a human-readable label. Grounded on
// zautner-Atomic-GPT-explorer/inference_and_training.go's tokenLabel;
// this project uses one shared control token for BOS and END.
func tokenLabel(tokenID, bos int, chars []string) string {
	if tokenID == bos {
		return "<END>"
	}
	return chars[tokenID]
}

// encodeDoc turns a string into token IDs wrapped with BOS at both ends.
func encodeDoc(doc string, chars []string, bos int) []int {
	tokens := []int{bos}
	for _, char := range doc {
		for idx, c := range chars {
			if c == string(char) {
				tokens = append(tokens, idx)
				break
			}
		}
	}
	tokens = append(tokens, bos)
	return tokens
}

func nodeValues(g *graph.Graph, ids []graph.NodeID) []float64 {
	out := make([]float64, len(ids))
	for i, id := range ids {
		out[i] = g.Node(id).Value
	}
	return out
}

// trainOneExample builds one fresh graph.Graph for a random training
// document, wires every weight matrix into it once, runs forwardStep
// across the document's positions (teacher forcing), evaluates the
// averaged cross-entropy loss through one topological Forward +
// Backward sweep, and reads accumulated gradients back into the
// model's matrices. It does not update parameters itself. Grounded on
// inference_and_training.go's trainOneExample, generalized from an
// eager *Value chain to one symbolic graph.Graph evaluated in passes.
func trainOneExample(model *Model, docs []string) (TrainResponse, error) {
	doc := docs[rand.Intn(len(docs))]
	tokens := encodeDoc(doc, model.Chars, model.BOS)

	n := len(tokens) - 1
	if n > model.Config.BlockSize {
		n = model.Config.BlockSize
	}
	if n <= 0 {
		return TrainResponse{}, fmt.Errorf("training sequence is empty")
	}

	g := graph.NewWithOptions(graph.WithCapacity(4096))
	w := wireModel(g, model)

	keys := make([][][]graph.NodeID, model.Config.NLayer)
	values := make([][][]graph.NodeID, model.Config.NLayer)
	losses := make([]graph.NodeID, 0, n)

	var lastProbs []graph.NodeID
	var lastPos, lastTarget int

	for pos := 0; pos < n; pos++ {
		logits := w.forwardStep(g, tokens[pos], pos, keys, values)
		probs := g.SoftmaxVector(logits...)
		targetLogProb := g.Log(probs[tokens[pos+1]])
		loss := g.Multiply(targetLogProb, g.Constant(-1))
		losses = append(losses, loss)

		if pos == n-1 {
			lastProbs = probs
			lastPos = pos
			lastTarget = tokens[pos+1]
		}
	}

	avgLoss := g.Multiply(g.Add(losses...), g.Constant(1.0/float64(n)))

	order, err := scheduler.TopoOrder(g, []graph.NodeID{avgLoss})
	if err != nil {
		return TrainResponse{}, err
	}
	scheduler.Forward(g, order)
	scheduler.Backward(g, avgLoss, scheduler.Reverse(order))

	for name, ids := range w.ids {
		collectGradients(g, ids, model.Matrices[name])
	}

	probVals := nodeValues(g, lastProbs)
	bestIdx, bestProb := 0, probVals[0]
	for idx, p := range probVals {
		if p > bestProb {
			bestIdx, bestProb = idx, p
		}
	}

	return TrainResponse{
		Step:          model.Steps,
		Loss:          g.Node(avgLoss).Value,
		ContextChar:   tokenLabel(tokens[lastPos], model.BOS, model.Chars),
		TargetChar:    tokenLabel(lastTarget, model.BOS, model.Chars),
		PredictedChar: tokenLabel(bestIdx, model.BOS, model.Chars),
		TargetProb:    probVals[lastTarget],
		PredictedProb: bestProb,
	}, nil
}

// TrainBatchedSteps runs multiple optimizer steps, each with gradient
// accumulation over a mini-batch of random documents. Grounded on
// inference_and_training.go's TrainBatchedSteps.
func TrainBatchedSteps(model *Model, docs []string, stepsPerCall, batchSize int) (TrainResponse, error) {
	if stepsPerCall < 1 {
		stepsPerCall = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}

	lastResp := TrainResponse{}
	avgLossAcrossSteps := 0.0

	for step := 0; step < stepsPerCall; step++ {
		for _, pm := range model.Matrices {
			pm.resetGrad()
		}

		batchLoss := 0.0
		for b := 0; b < batchSize; b++ {
			docResp, err := trainOneExample(model, docs)
			if err != nil {
				return TrainResponse{}, err
			}
			batchLoss += docResp.Loss
			lastResp = docResp
		}

		scale := 1.0 / float64(batchSize)
		for _, pm := range model.Matrices {
			for i := range pm.Grad {
				for j := range pm.Grad[i] {
					pm.Grad[i][j] *= scale
				}
			}
		}

		model.adamUpdate()
		avgLossAcrossSteps += batchLoss / float64(batchSize)
	}

	lastResp.Step = model.Steps
	lastResp.Loss = avgLossAcrossSteps / float64(stepsPerCall)
	glog.V(1).Infof("train: step=%d loss=%.4f", lastResp.Step, lastResp.Loss)
	return lastResp, nil
}
