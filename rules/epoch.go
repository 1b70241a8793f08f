// Package rules implements the per-operator differentiation rule table
// and the epoch-indexed scratch-state protocol described in spec.md.
// Every function here is a pure, total, panic-free transformation over a
// *graph.Graph — it is the "core" spec.md scopes to roughly 500-900
// lines, and it intentionally knows nothing about how nodes got built or
// in what order they are visited; that is package graph/scheduler's job.
package rules

// touch marks a slot live for the current pass without writing any
// other state. Used for nullary nodes, whose Value/Dot are set outside
// the engine (see constvar.go).
func touch(epoch *uint64, current uint64) {
	*epoch = current
}

// set unconditionally writes v into slot and marks it live for the
// current pass. Used for every *produced* (non-accumulated) output:
// value and dot.
func set(slot *float64, epoch *uint64, current uint64, v float64) {
	*slot = v
	*epoch = current
}

// ensureZero returns a pointer to slot ready to accumulate into: if the
// slot's epoch tag doesn't match current, it is lazily zeroed and
// stamped live first. This is the entire mechanism that replaces
// whole-graph clearing between passes (spec.md §4.1) — at most one
// lazy clear per (node, accumulator, pass), so pass cost is
// proportional to nodes touched, not graph size.
func ensureZero(slot *float64, epoch *uint64, current uint64) *float64 {
	if *epoch != current {
		*slot = 0
		*epoch = current
	}
	return slot
}
