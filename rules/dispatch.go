package rules

import "github.com/atomic-adgraph/adgraph/graph"

// Name maps an Operator tag to a stable, human-readable name. Unknown
// tags return "unknown" rather than panicking — dispatch on an
// unrecognized tag must always be a harmless no-op (spec.md §4.9, §6).
func Name(op graph.Operator) string {
	switch op {
	case graph.OpConst:
		return "cte"
	case graph.OpVar:
		return "Var"
	case graph.OpAdd:
		return "Add"
	case graph.OpSubtract:
		return "Subtract"
	case graph.OpMultiply:
		return "Multiply"
	case graph.OpDivide:
		return "Divide"
	case graph.OpSin:
		return "Sin"
	case graph.OpCos:
		return "Cos"
	case graph.OpTan:
		return "Tan"
	case graph.OpExp:
		return "Exp"
	case graph.OpLog:
		return "Log"
	case graph.OpMax:
		return "Max"
	case graph.OpTanh:
		return "Tanh"
	case graph.OpSilu:
		return "Silu"
	case graph.OpGelu:
		return "Gelu"
	case graph.OpRelu:
		return "Relu"
	case graph.OpSoftmax:
		return "Softmax"
	default:
		return "unknown"
	}
}

// Forward dispatches node's primal-evaluation pass body on its
// Operator. Unknown tags fall through to the base no-op template,
// reading or writing nothing.
func Forward(g *graph.Graph, n *graph.Node) {
	switch n.Op {
	case graph.OpConst, graph.OpVar:
		ConstVarForward(g, n)
	case graph.OpAdd:
		AddForward(g, n)
	case graph.OpMultiply:
		MultiplyForward(g, n)
	case graph.OpSoftmax:
		SoftmaxForward(g, n)
	case graph.OpMax:
		MaxForward(g, n)
	case graph.OpSubtract, graph.OpDivide:
		binaryForward(g, n, binaryTable[n.Op])
	default:
		if r, ok := unaryTable[n.Op]; ok {
			unaryForward(g, n, r)
		}
	}
}

// ForwardDot dispatches the forward-tangent (JVP) pass body.
func ForwardDot(g *graph.Graph, n *graph.Node) {
	switch n.Op {
	case graph.OpConst, graph.OpVar:
		ConstVarForwardDot(g, n)
	case graph.OpAdd:
		AddForwardDot(g, n)
	case graph.OpMultiply:
		MultiplyForwardDot(g, n)
	case graph.OpSoftmax:
		SoftmaxForwardDot(g, n)
	case graph.OpMax:
		MaxForwardDot(g, n)
	case graph.OpSubtract, graph.OpDivide:
		binaryForwardDot(g, n, binaryTable[n.Op])
	default:
		if r, ok := unaryTable[n.Op]; ok {
			unaryForwardDot(g, n, r)
		}
	}
}

// Backward dispatches the reverse-gradient (VJP) pass body, accumulating
// into each input's Gradient slot.
func Backward(g *graph.Graph, n *graph.Node) {
	switch n.Op {
	case graph.OpConst, graph.OpVar:
		ConstVarBackward(g, n)
	case graph.OpAdd:
		AddBackward(g, n)
	case graph.OpMultiply:
		MultiplyBackward(g, n)
	case graph.OpSoftmax:
		SoftmaxBackward(g, n)
	case graph.OpMax:
		MaxBackward(g, n)
	case graph.OpSubtract, graph.OpDivide:
		binaryBackward(g, n, binaryTable[n.Op])
	default:
		if r, ok := unaryTable[n.Op]; ok {
			unaryBackward(g, n, r)
		}
	}
}

// HVPBackward dispatches the forward-over-reverse (HVP) pass body,
// accumulating into each input's Gradient and GradDot slots.
func HVPBackward(g *graph.Graph, n *graph.Node) {
	switch n.Op {
	case graph.OpConst, graph.OpVar:
		ConstVarHVPBackward(g, n)
	case graph.OpAdd:
		AddHVPBackward(g, n)
	case graph.OpMultiply:
		MultiplyHVPBackward(g, n)
	case graph.OpSoftmax:
		SoftmaxHVPBackward(g, n)
	case graph.OpMax:
		MaxHVPBackward(g, n)
	case graph.OpSubtract, graph.OpDivide:
		binaryHVPBackward(g, n, binaryTable[n.Op])
	default:
		if r, ok := unaryTable[n.Op]; ok {
			unaryHVPBackward(g, n, r)
		}
	}
}
