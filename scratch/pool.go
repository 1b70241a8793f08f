// Package scratch provides per-thread reusable scalar buffers for the
// n-ary rules in package rules (Multiply's value/tangent copies and
// prefix/suffix tables, Softmax's exponentiated-input vector). Add does
// not use them.
//
// Buffers are never shared across goroutines: each call to Get pulls a
// *Buffers from a sync.Pool (or allocates a fresh one), the caller uses
// it for exactly one rule invocation, and Put returns it. sync.Pool
// already guarantees a value handed to one goroutine is never handed to
// another concurrently, which is the idiomatic Go shape of spec.md §5's
// "process-local to the calling thread, reused across invocations,
// never aliased between threads" requirement — no explicit
// thread-local storage or per-worker context plumbing needed.
package scratch

import "sync"

// Buffers holds the growable scalar slices an n-ary rule needs for one
// invocation. Slices grow monotonically to the largest arity seen by
// the goroutine that owns this value, matching spec.md §5's "grow
// monotonically" requirement.
type Buffers struct {
	Vals []float64
	Dots []float64
	Pre  []float64
	Suf  []float64
	Y    []float64
}

// reset truncates every slice to zero length, keeping the backing array
// (and its capacity) for reuse.
func (b *Buffers) reset() {
	b.Vals = b.Vals[:0]
	b.Dots = b.Dots[:0]
	b.Pre = b.Pre[:0]
	b.Suf = b.Suf[:0]
	b.Y = b.Y[:0]
}

var pool = sync.Pool{
	New: func() any { return new(Buffers) },
}

// Get returns a *Buffers ready for use, with every slice truncated to
// length 0 (capacity preserved from a prior, possibly larger, call).
func Get() *Buffers {
	b := pool.Get().(*Buffers)
	b.reset()
	return b
}

// Put returns b to the pool for reuse by a later Get call on (possibly)
// another goroutine — safe because the caller must not touch b again
// after calling Put.
func Put(b *Buffers) {
	pool.Put(b)
}

// Grow ensures s has length n, reusing s's backing array when it has
// enough capacity and allocating a fresh one otherwise.
func Grow(s []float64, n int) []float64 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]float64, n)
}
