package graph

import "errors"

// Sentinel errors for graph construction and traversal, in the style of
// katalvlaran/lvlath's core package: package-prefixed, checkable with
// errors.Is.
var (
	// ErrNilGraph indicates an operation was attempted on a nil Graph.
	ErrNilGraph = errors.New("graph: nil graph")

	// ErrUnknownNode indicates a NodeID outside the arena's bounds.
	ErrUnknownNode = errors.New("graph: unknown node id")

	// ErrCycleDetected indicates the node's Inputs do not form a DAG.
	ErrCycleDetected = errors.New("graph: cycle detected")

	// ErrEmptyArity indicates a builder call with no input nodes where
	// at least one is required.
	ErrEmptyArity = errors.New("graph: operator requires at least one input")
)
