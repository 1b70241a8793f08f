package main

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/atomic-adgraph/adgraph/graph"
	"github.com/atomic-adgraph/adgraph/scheduler"
)

// gradcheckBuilders maps a name to a small graph it exercises, one per
// interesting rule family (n-ary multiply's division-free cross terms,
// softmax's shared-denominator weights, the nonsmooth max tie-break).
// /api/gradcheck uses these to cross-check rules package math against
// gonum's finite-difference gradient, the same role gonum/diff/fd plays
// in the rules package's own *_test.go property tests.
var gradcheckBuilders = map[string]func(g *graph.Graph, at []float64) (graph.NodeID, []graph.NodeID){
	"multiply3": func(g *graph.Graph, at []float64) (graph.NodeID, []graph.NodeID) {
		vars := make([]graph.NodeID, len(at))
		for i, v := range at {
			vars[i] = g.Variable(v)
		}
		return g.Multiply(vars...), vars
	},
	"softmax3": func(g *graph.Graph, at []float64) (graph.NodeID, []graph.NodeID) {
		vars := make([]graph.NodeID, len(at))
		for i, v := range at {
			vars[i] = g.Variable(v)
		}
		ys := g.SoftmaxVector(vars...)
		return g.Log(ys[0]), vars
	},
	"max3": func(g *graph.Graph, at []float64) (graph.NodeID, []graph.NodeID) {
		vars := make([]graph.NodeID, len(at))
		for i, v := range at {
			vars[i] = g.Variable(v)
		}
		m := vars[0]
		for _, v := range vars[1:] {
			m = g.Max(m, v)
		}
		return m, vars
	},
}

// evalAt builds expr's graph at point x, runs Forward+Backward, and
// returns (value, analytic gradient).
func evalAt(expr string, x []float64) (float64, []float64, error) {
	build, ok := gradcheckBuilders[expr]
	if !ok {
		return 0, nil, fmt.Errorf("adgraphdemo: unknown gradcheck expression %q", expr)
	}

	g := graph.New()
	y, vars := build(g, x)

	order, err := scheduler.TopoOrder(g, []graph.NodeID{y})
	if err != nil {
		return 0, nil, err
	}
	scheduler.Forward(g, order)
	scheduler.Backward(g, y, scheduler.Reverse(order))

	grad := make([]float64, len(vars))
	for i, v := range vars {
		grad[i] = g.Node(v).Gradient
	}
	return g.Node(y).Value, grad, nil
}

// gradcheckExpr compares the rules package's analytic VJP against
// gonum/diff/fd's central-difference gradient at the requested point,
// the same property gradcheck tooling in the rules package itself
// verifies per-operator.
func gradcheckExpr(expr string, at []float64) (GradcheckResponse, error) {
	value, analytic, err := evalAt(expr, at)
	if err != nil {
		return GradcheckResponse{}, err
	}

	numeric := make([]float64, len(at))
	for i := range at {
		idx := i
		f := func(xi float64) float64 {
			probe := append([]float64(nil), at...)
			probe[idx] = xi
			v, _, err := evalAt(expr, probe)
			if err != nil {
				panic(err)
			}
			return v
		}
		numeric[i] = fd.Derivative(f, at[i], &fd.Settings{Formula: fd.Central, Step: 1e-5})
	}

	maxAbsErr := 0.0
	for i := range analytic {
		if d := math.Abs(analytic[i] - numeric[i]); d > maxAbsErr {
			maxAbsErr = d
		}
	}

	return GradcheckResponse{
		Expr:            expr,
		Value:           value,
		AnalyticGrad:    analytic,
		FiniteDiff:      numeric,
		MaxAbsError:     maxAbsErr,
		WithinTolerance: maxAbsErr < 1e-4,
	}, nil
}
