package graph

// Option configures a Graph at construction time. Following
// katalvlaran/lvlath's builder.BuilderOption convention, option
// constructors validate and panic on meaningless inputs (a negative
// capacity); the graph/rules runtime itself never panics on data.
type Option func(*Graph)

// WithCapacity preallocates room for n nodes, avoiding arena growth
// churn for callers that know their graph size up front.
func WithCapacity(n int) Option {
	if n < 0 {
		panic("graph: WithCapacity negative")
	}
	return func(g *Graph) {
		g.nodes = make([]Node, 0, n)
	}
}

// NewWithOptions creates an empty Graph and applies opts in order.
func NewWithOptions(opts ...Option) *Graph {
	g := New()
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Constant creates a nullary node whose Value is fixed at construction
// time and never recomputed by Forward (OpConst's forward pass only
// asserts liveness; see rules.ConstVarForward).
func (g *Graph) Constant(v float64) NodeID {
	return g.push(Node{Op: OpConst, Value: v})
}

// Variable creates a nullary leaf whose Value/Dot are expected to be set
// by the caller before each pass (the external "input-feeding step" from
// spec.md §4.8).
func (g *Graph) Variable(v float64) NodeID {
	return g.push(Node{Op: OpVar, Value: v})
}

// unary builds a single-input node for the given operator. Arity is
// correct by construction here; the silent no-op guard in package rules
// exists to protect against *corrupted* graphs, not against this
// builder.
func (g *Graph) unary(op Operator, a NodeID) NodeID {
	if !g.Valid(a) {
		panic("graph: unary operand is not a node in this graph")
	}
	return g.push(Node{Op: op, Inputs: []NodeID{a}})
}

// binary builds a two-input node for the given operator.
func (g *Graph) binary(op Operator, a, b NodeID) NodeID {
	if !g.Valid(a) || !g.Valid(b) {
		panic("graph: binary operand is not a node in this graph")
	}
	return g.push(Node{Op: op, Inputs: []NodeID{a, b}})
}

func (g *Graph) Sin(a NodeID) NodeID  { return g.unary(OpSin, a) }
func (g *Graph) Cos(a NodeID) NodeID  { return g.unary(OpCos, a) }
func (g *Graph) Tan(a NodeID) NodeID  { return g.unary(OpTan, a) }
func (g *Graph) Exp(a NodeID) NodeID  { return g.unary(OpExp, a) }
func (g *Graph) Log(a NodeID) NodeID  { return g.unary(OpLog, a) }
func (g *Graph) Tanh(a NodeID) NodeID { return g.unary(OpTanh, a) }
func (g *Graph) Silu(a NodeID) NodeID { return g.unary(OpSilu, a) }
func (g *Graph) Gelu(a NodeID) NodeID { return g.unary(OpGelu, a) }
func (g *Graph) Relu(a NodeID) NodeID { return g.unary(OpRelu, a) }

func (g *Graph) Subtract(a, b NodeID) NodeID { return g.binary(OpSubtract, a, b) }
func (g *Graph) Divide(a, b NodeID) NodeID   { return g.binary(OpDivide, a, b) }

// Max is the nonsmooth binary max; ties route to a (spec.md §4.7).
func (g *Graph) Max(a, b NodeID) NodeID { return g.binary(OpMax, a, b) }

// Add is the n-ary sum reducer. It requires at least one input.
func (g *Graph) Add(inputs ...NodeID) NodeID {
	if len(inputs) == 0 {
		panic("graph: Add requires at least one input")
	}
	for _, id := range inputs {
		if !g.Valid(id) {
			panic("graph: Add operand is not a node in this graph")
		}
	}
	ins := append([]NodeID(nil), inputs...)
	return g.push(Node{Op: OpAdd, Inputs: ins})
}

// Multiply is the n-ary product reducer (prefix/suffix product, spec.md
// §4.5). Requires at least one input; two inputs take the binary fast
// path at evaluation time.
func (g *Graph) Multiply(inputs ...NodeID) NodeID {
	if len(inputs) == 0 {
		panic("graph: Multiply requires at least one input")
	}
	for _, id := range inputs {
		if !g.Valid(id) {
			panic("graph: Multiply operand is not a node in this graph")
		}
	}
	ins := append([]NodeID(nil), inputs...)
	return g.push(Node{Op: OpMultiply, Inputs: ins})
}

// SoftmaxVector builds one node per component of softmax(xs), each
// producing y_i = softmax(xs)[i]. spec.md §4.6 specifies a single
// component per node; this is the vector convenience the demo model
// needs, built by stamping Node.Index on each component node (see
// SPEC_FULL.md §4.6 expansion note).
func (g *Graph) SoftmaxVector(xs ...NodeID) []NodeID {
	if len(xs) == 0 {
		panic("graph: SoftmaxVector requires at least one input")
	}
	for _, id := range xs {
		if !g.Valid(id) {
			panic("graph: SoftmaxVector operand is not a node in this graph")
		}
	}
	ins := append([]NodeID(nil), xs...)
	out := make([]NodeID, len(xs))
	for i := range xs {
		out[i] = g.push(Node{Op: OpSoftmax, Inputs: ins, Index: i})
	}
	return out
}

// Softmax returns the single-component node y_0 = softmax(xs)[0], the
// exact shape spec.md §4.6 describes. It is built through SoftmaxVector,
// so the nodes for the other components are added to the arena as well;
// they are evaluated only if a pass order reaches them.
func (g *Graph) Softmax(xs ...NodeID) NodeID {
	return g.SoftmaxVector(xs...)[0]
}
