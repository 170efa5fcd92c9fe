package rewrite

import "github.com/gogpu/dxdec/ir"

// finalize moves constant operands of add, multiply and dot to the right
// so the emitted text reads naturally. Every node reachable from roots is
// visited once.
func finalize(g *ir.Graph, roots []ir.NodeHandle) {
	visited := make(map[ir.NodeHandle]struct{})
	stack := append([]ir.NodeHandle(nil), roots...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[h]; ok || !g.Valid(h) {
			continue
		}
		visited[h] = struct{}{}
		stack = append(stack, g.Inputs(h)...)

		switch k := g.Kind(h).(type) {
		case ir.Binary:
			if k.Op != ir.BinaryAdd && k.Op != ir.BinaryMultiply {
				continue
			}
			if constantLike(g, g.Input(h, 0)) && !constantLike(g, g.Input(h, 1)) {
				swap(g, h)
			}
		case ir.DotProduct:
			if allConstant(g, g.Input(h, 0)) && !allConstant(g, g.Input(h, 1)) {
				swap(g, h)
			}
		}
	}
}

// constantLike reports whether h is a literal or a plain constant register
// lane.
func constantLike(g *ir.Graph, h ir.NodeHandle) bool {
	switch k := g.Kind(h).(type) {
	case ir.Constant:
		return true
	case ir.RegisterInput:
		return k.Relative == nil && k.Key.Register.IsConstant()
	}
	return false
}

func allConstant(g *ir.Graph, group ir.NodeHandle) bool {
	for _, in := range g.Inputs(group) {
		if !constantLike(g, in) {
			return false
		}
	}
	return true
}

// swap exchanges the two operands of h in place. The user lists hold one
// entry per slot, so they stay consistent.
func swap(g *ir.Graph, h ir.NodeHandle) {
	in := g.Nodes[h].Inputs
	in[0], in[1] = in[1], in[0]
}
