package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/atomic-adgraph/adgraph/graph"
	"github.com/atomic-adgraph/adgraph/scheduler"
)

// samplingConfig returns validated generation defaults/options. Grounded
// on inference_and_training.go's samplingConfig.
func samplingConfig(opts GenerateOptions, vocabSize int) GenerateOptions {
	if opts.Temperature <= 0 {
		opts.Temperature = 0.7
	}
	if opts.TopK < 0 {
		opts.TopK = 0
	}
	if opts.TopK > vocabSize {
		opts.TopK = vocabSize
	}
	if opts.MinLen < 0 {
		opts.MinLen = 0
	}
	return opts
}

// toProbVector applies temperature, optional top-k filtering, and
// optional temporary suppression of <END>, then returns final sampling
// probabilities alongside the raw (temperature-scaled) logits.
func toProbVector(logits []float64, opts GenerateOptions, bosTokenID int, suppressEnd bool) ([]float64, []float64) {
	raw := make([]float64, len(logits))
	maxLogit := -math.MaxFloat64
	for i := range logits {
		raw[i] = logits[i] / opts.Temperature
		if raw[i] > maxLogit {
			maxLogit = raw[i]
		}
	}

	probs := make([]float64, len(raw))
	sumExp := 0.0
	for i := range raw {
		v := math.Exp(raw[i] - maxLogit)
		probs[i] = v
		sumExp += v
	}
	if sumExp > 0 {
		for i := range probs {
			probs[i] /= sumExp
		}
	}

	if opts.TopK > 0 && opts.TopK < len(probs) {
		indices := make([]int, len(probs))
		for i := range probs {
			indices[i] = i
		}
		sort.Slice(indices, func(i, j int) bool {
			return probs[indices[i]] > probs[indices[j]]
		})

		mask := make([]bool, len(probs))
		for i := 0; i < opts.TopK; i++ {
			mask[indices[i]] = true
		}
		for i := range probs {
			if !mask[i] {
				probs[i] = 0
			}
		}
	}

	if suppressEnd && bosTokenID >= 0 && bosTokenID < len(probs) {
		probs[bosTokenID] = 0
	}

	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	if sum > 0 {
		for i := range probs {
			probs[i] /= sum
		}
	} else {
		uniform := 1.0 / float64(len(probs))
		for i := range probs {
			probs[i] = uniform
		}
		if suppressEnd && len(probs) > 1 {
			probs[bosTokenID] = 0
			rest := 1.0 / float64(len(probs)-1)
			for i := range probs {
				if i != bosTokenID {
					probs[i] = rest
				}
			}
		}
	}

	return raw, probs
}

// sampleFromProbVector picks one token using inverse transform sampling.
func sampleFromProbVector(probs []float64, fallbackTokenID int) (chosen int, u, cumBefore, cumAfter, chosenProb float64) {
	u = rand.Float64()
	cumulative := 0.0
	chosen = fallbackTokenID

	for idx, p := range probs {
		prev := cumulative
		cumulative += p
		if u < cumulative {
			return idx, u, prev, cumulative, p
		}
	}

	cumAfter = cumulative
	return
}

// topKCandidates selects the K highest-probability tokens for debugging
// display.
func topKCandidates(logits, probs []float64, chars []string, bos, k int) []TraceCandidate {
	indices := make([]int, len(probs))
	for i := range probs {
		indices[i] = i
	}
	sort.Slice(indices, func(i, j int) bool {
		return probs[indices[i]] > probs[indices[j]]
	})
	if len(indices) > k {
		indices = indices[:k]
	}

	out := make([]TraceCandidate, 0, len(indices))
	for _, idx := range indices {
		out = append(out, TraceCandidate{
			Char:    tokenLabel(idx, bos, chars),
			TokenID: idx,
			Logit:   logits[idx],
			Prob:    probs[idx],
		})
	}
	return out
}

// evalLogits wires the model once into a fresh graph, replays
// forwardStep across positions 0..len(history), and returns the logits
// at the final position as plain float64s. Regenerating the whole
// prefix each call keeps generation's graph lifecycle as simple as
// training's (one graph per evaluation, discarded after); the teacher's
// original engine instead kept one permanently growing *Value chain,
// which this demo's arena-based graph.Graph does not need for
// correctness, only for peak throughput.
func evalLogits(model *Model, history []int) []float64 {
	g := graph.NewWithOptions(graph.WithCapacity(2048))
	w := wireModel(g, model)

	keys := make([][][]graph.NodeID, model.Config.NLayer)
	values := make([][][]graph.NodeID, model.Config.NLayer)

	var logits []graph.NodeID
	for pos, tok := range history {
		logits = w.forwardStep(g, tok, pos, keys, values)
	}

	order, err := scheduler.TopoOrder(g, logits)
	if err != nil {
		panic(fmt.Errorf("adgraphdemo: generation graph is malformed: %w", err))
	}
	scheduler.Forward(g, order)
	return nodeValues(g, logits)
}

// GenerateSample creates one sampled text without a detailed trace.
// Grounded on inference_and_training.go's GenerateSample.
func GenerateSample(model *Model, opts GenerateOptions) string {
	opts = samplingConfig(opts, model.VocabSize)
	tokenID := model.BOS
	history := []int{}
	sample := []string{}

	for pos := 0; pos < model.Config.BlockSize; pos++ {
		history = append(history, tokenID)
		logits := evalLogits(model, history)
		suppressEnd := len(sample) < opts.MinLen
		_, probs := toProbVector(logits, opts, model.BOS, suppressEnd)
		newTokenID, _, _, _, _ := sampleFromProbVector(probs, model.BOS)

		if newTokenID == model.BOS {
			break
		}
		sample = append(sample, model.Chars[newTokenID])
		tokenID = newTokenID
	}

	return strings.Join(sample, "")
}

// GenerateSampleWithTrace creates sampled text and explains each
// choice. Grounded on inference_and_training.go's
// GenerateSampleWithTrace.
func GenerateSampleWithTrace(model *Model, opts GenerateOptions) GenerateTraceResponse {
	opts = samplingConfig(opts, model.VocabSize)
	tokenID := model.BOS
	history := []int{}
	sample := []string{}
	steps := []TraceStep{}
	stopReason := "Reached block size limit"

	for pos := 0; pos < model.Config.BlockSize; pos++ {
		history = append(history, tokenID)
		logits := evalLogits(model, history)
		suppressEnd := len(sample) < opts.MinLen
		rawLogits, probs := toProbVector(logits, opts, model.BOS, suppressEnd)
		topK := topKCandidates(rawLogits, probs, model.Chars, model.BOS, 5)

		newTokenID, rnd, cumBefore, cumAfter, chosenProb := sampleFromProbVector(probs, model.BOS)

		chosenRank := len(probs)
		for rank, cand := range topK {
			if cand.TokenID == newTokenID {
				chosenRank = rank + 1
				break
			}
		}

		reason := fmt.Sprintf(
			"Chosen '%s' because draw %.4f fell inside cumulative interval [%.4f, %.4f) in vocabulary index order.",
			tokenLabel(newTokenID, model.BOS, model.Chars), rnd, cumBefore, cumAfter,
		)
		if len(topK) > 0 && topK[0].TokenID != newTokenID {
			reason += fmt.Sprintf(
				" Highest-probability option was '%s' at %.4f, but stochastic sampling can still pick lower-ranked valid options.",
				topK[0].Char, topK[0].Prob,
			)
		}

		steps = append(steps, TraceStep{
			Position:   pos,
			Context:    strings.Join(sample, ""),
			TopK:       topK,
			RandomU:    rnd,
			ChosenChar: tokenLabel(newTokenID, model.BOS, model.Chars),
			ChosenProb: chosenProb,
			ChosenRank: chosenRank,
			CumBefore:  cumBefore,
			CumAfter:   cumAfter,
			Reason:     reason,
		})

		if newTokenID == model.BOS {
			stopReason = "Model selected <END> token"
			break
		}
		sample = append(sample, model.Chars[newTokenID])
		tokenID = newTokenID
	}

	return GenerateTraceResponse{
		Text:       strings.Join(sample, ""),
		Steps:      steps,
		StopReason: stopReason,
	}
}
