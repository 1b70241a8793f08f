// Package scheduler drives the four differentiation passes over a
// graph.Graph by visiting nodes in (reverse) topological order and
// dispatching each one through package rules. It is the "external
// scheduler" spec.md's core deliberately leaves out: topological
// ordering and epoch bookkeeping are a graph-traversal concern, not a
// per-operator math concern.
//
// Grounded on katalvlaran/lvlath's dfs.TopologicalSort: a white/gray/
// black DFS that returns ErrCycleDetected on a back-edge, adapted here
// from string vertex ids to graph.NodeID.
package scheduler

import (
	"github.com/golang/glog"

	"github.com/atomic-adgraph/adgraph/graph"
)

const (
	white = 0
	gray  = 1
	black = 2
)

// topoSorter holds the DFS state for one TopoOrder call.
type topoSorter struct {
	g     *graph.Graph
	state []uint8
	order []graph.NodeID
}

// TopoOrder computes a linear ordering of every node reachable from
// roots such that for every edge u->v (v an input of u), v appears
// before u. Returns graph.ErrCycleDetected if the inputs do not form a
// DAG, matching spec.md §3 invariant 4 (cycles are a caller-side
// error).
func TopoOrder(g *graph.Graph, roots []graph.NodeID) ([]graph.NodeID, error) {
	if g == nil {
		return nil, graph.ErrNilGraph
	}
	s := &topoSorter{
		g:     g,
		state: make([]uint8, g.Len()),
		order: make([]graph.NodeID, 0, g.Len()),
	}
	for _, r := range roots {
		if !g.Valid(r) {
			return nil, graph.ErrUnknownNode
		}
		if s.state[r] == white {
			if err := s.visit(r); err != nil {
				return nil, err
			}
		}
	}
	return s.order, nil
}

func (s *topoSorter) visit(id graph.NodeID) error {
	if s.state[id] == gray {
		return graph.ErrCycleDetected
	}
	if s.state[id] == black {
		return nil
	}
	s.state[id] = gray

	n := s.g.Node(id)
	for _, in := range n.Inputs {
		if !s.g.Valid(in) {
			glog.Warningf("scheduler: node %d references unknown input %d", id, in)
			continue
		}
		if err := s.visit(in); err != nil {
			return err
		}
	}

	s.state[id] = black
	s.order = append(s.order, id)
	return nil
}

// Reverse returns a new slice holding order reversed; used to turn a
// forward topological order into the reverse-topological order the
// backward passes require (spec.md §5).
func Reverse(order []graph.NodeID) []graph.NodeID {
	out := make([]graph.NodeID, len(order))
	for i, id := range order {
		out[len(order)-1-i] = id
	}
	return out
}
