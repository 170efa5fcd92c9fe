package rewrite

import "github.com/gogpu/dxdec/ir"

// Rule rewrites one node shape. Apply returns the replacement handle and
// true when the rule matched; it must not add nodes when it does not match.
type Rule struct {
	Name  string
	Apply func(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool)
}

// NodeRules returns the single-node rules in application order.
func NodeRules() []Rule {
	return []Rule{
		{"AddConstants", addConstants},
		{"AddZero", addZero},
		{"SubtractZero", subtractZero},
		{"SubtractConstants", subtractConstants},
		{"MultiplyOne", multiplyOne},
		{"MultiplyZero", multiplyZero},
		{"MultiplyConstants", multiplyConstants},
		{"NegateNegate", negateNegate},
		{"NegateConstant", negateConstant},
		{"SaturateConstant", saturateConstant},
		{"CompareConstant", compareConstant},
		{"MultiplyAddExpand", multiplyAddExpand},
	}
}

// binary returns the operands of h when it is a Binary node with op.
func binary(g *ir.Graph, h ir.NodeHandle, op ir.BinaryOp) (a, b ir.NodeHandle, ok bool) {
	k, isBinary := g.Kind(h).(ir.Binary)
	if !isBinary || k.Op != op {
		return 0, 0, false
	}
	return g.Input(h, 0), g.Input(h, 1), true
}

func unary(g *ir.Graph, h ir.NodeHandle, op ir.UnaryOp) (ir.NodeHandle, bool) {
	k, ok := g.Kind(h).(ir.Unary)
	if !ok || k.Op != op {
		return 0, false
	}
	return g.Input(h, 0), true
}

// foldBinary folds op over two constant operands.
func foldBinary(g *ir.Graph, h ir.NodeHandle, op ir.BinaryOp, fn func(x, y float32) float32) (ir.NodeHandle, bool) {
	a, b, ok := binary(g, h, op)
	if !ok {
		return 0, false
	}
	x, okA := g.ConstantValue(a)
	y, okB := g.ConstantValue(b)
	if !okA || !okB {
		return 0, false
	}
	return g.Constant(fn(x, y)), true
}

func addConstants(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool) {
	return foldBinary(g, h, ir.BinaryAdd, func(x, y float32) float32 { return x + y })
}

func addZero(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool) {
	a, b, ok := binary(g, h, ir.BinaryAdd)
	switch {
	case !ok:
		return 0, false
	case g.IsConstant(b, 0):
		return a, true
	case g.IsConstant(a, 0):
		return b, true
	}
	return 0, false
}

func subtractZero(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool) {
	a, b, ok := binary(g, h, ir.BinarySubtract)
	switch {
	case !ok:
		return 0, false
	case g.IsConstant(b, 0):
		return a, true
	case g.IsConstant(a, 0):
		return g.Unary(ir.UnaryNegate, b), true
	}
	return 0, false
}

func subtractConstants(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool) {
	return foldBinary(g, h, ir.BinarySubtract, func(x, y float32) float32 { return x - y })
}

func multiplyOne(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool) {
	a, b, ok := binary(g, h, ir.BinaryMultiply)
	switch {
	case !ok:
		return 0, false
	case g.IsConstant(b, 1):
		return a, true
	case g.IsConstant(a, 1):
		return b, true
	}
	return 0, false
}

func multiplyZero(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool) {
	a, b, ok := binary(g, h, ir.BinaryMultiply)
	if ok && (g.IsConstant(a, 0) || g.IsConstant(b, 0)) {
		return g.Constant(0), true
	}
	return 0, false
}

func multiplyConstants(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool) {
	return foldBinary(g, h, ir.BinaryMultiply, func(x, y float32) float32 { return x * y })
}

func negateNegate(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool) {
	x, ok := unary(g, h, ir.UnaryNegate)
	if !ok {
		return 0, false
	}
	return unary(g, x, ir.UnaryNegate)
}

func negateConstant(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool) {
	x, ok := unary(g, h, ir.UnaryNegate)
	if !ok {
		return 0, false
	}
	v, ok := g.ConstantValue(x)
	if !ok {
		return 0, false
	}
	return g.Constant(-v), true
}

func saturateConstant(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool) {
	x, ok := unary(g, h, ir.UnarySaturate)
	if !ok {
		return 0, false
	}
	v, ok := g.ConstantValue(x)
	if !ok || v != v {
		return 0, false
	}
	return g.Constant(min(max(v, 0), 1)), true
}

// compareConstant resolves a >= 0 ? b : c, sge and slt with constant
// operands.
func compareConstant(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool) {
	switch k := g.Kind(h).(type) {
	case ir.Ternary:
		if k.Op != ir.TernaryCompare {
			return 0, false
		}
		v, ok := g.ConstantValue(g.Input(h, 0))
		if !ok || v != v {
			return 0, false
		}
		if v >= 0 {
			return g.Input(h, 1), true
		}
		return g.Input(h, 2), true
	case ir.Binary:
		if k.Op != ir.BinarySignGreaterEqual && k.Op != ir.BinarySignLessThan {
			return 0, false
		}
		x, okA := g.ConstantValue(g.Input(h, 0))
		y, okB := g.ConstantValue(g.Input(h, 1))
		if !okA || !okB {
			return 0, false
		}
		holds := x >= y
		if k.Op == ir.BinarySignLessThan {
			holds = x < y
		}
		if holds {
			return g.Constant(1), true
		}
		return g.Constant(0), true
	}
	return 0, false
}

func multiplyAddExpand(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool) {
	k, ok := g.Kind(h).(ir.Ternary)
	if !ok || k.Op != ir.TernaryMultiplyAdd {
		return 0, false
	}
	mul := g.Binary(ir.BinaryMultiply, g.Input(h, 0), g.Input(h, 1))
	return g.Binary(ir.BinaryAdd, mul, g.Input(h, 2)), true
}
