package rewrite

import (
	"github.com/gogpu/dxdec/ir"
	"github.com/gogpu/dxdec/shader"
)

// maxDotLanes is the widest dot product HLSL offers.
const maxDotLanes = 4

// GroupRules returns the multi-node rules in application order.
func GroupRules() []Rule {
	return []Rule{
		{"DotProduct2", dotProduct2},
		{"DotProductExtend", dotProductExtend},
	}
}

// lane returns the register lane read by h when h is a plain register
// input.
func lane(g *ir.Graph, h ir.NodeHandle) (shader.RegisterComponentKey, bool) {
	in, ok := g.Kind(h).(ir.RegisterInput)
	if !ok || in.Relative != nil || in.IsSampler() {
		return shader.RegisterComponentKey{}, false
	}
	return in.Key, true
}

// sameRegister reports whether every handle reads a distinct lane of one
// register.
func sameRegister(g *ir.Graph, hs ...ir.NodeHandle) bool {
	var reg shader.RegisterKey
	seen := 0
	for i, h := range hs {
		l, ok := lane(g, h)
		if !ok {
			return false
		}
		if i == 0 {
			reg = l.Register
		} else if l.Register != reg {
			return false
		}
		bit := 1 << uint(l.Component)
		if seen&bit != 0 {
			return false
		}
		seen |= bit
	}
	return true
}

// factors returns the operands of a multiply.
func factors(g *ir.Graph, h ir.NodeHandle) (a, b ir.NodeHandle, ok bool) {
	return binary(g, h, ir.BinaryMultiply)
}

// dotProduct2 fuses a.x*b.x + a.y*b.y into dot(a.xy, b.xy).
func dotProduct2(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool) {
	left, right, ok := binary(g, h, ir.BinaryAdd)
	if !ok {
		return 0, false
	}
	a1, b1, ok1 := factors(g, left)
	a2, b2, ok2 := factors(g, right)
	if !ok1 || !ok2 {
		return 0, false
	}
	for _, swap := range []bool{false, true} {
		p, q := a2, b2
		if swap {
			p, q = b2, a2
		}
		if sameRegister(g, a1, p) && sameRegister(g, b1, q) {
			return g.Dot(g.Group(a1, p), g.Group(b1, q)), true
		}
	}
	return 0, false
}

// dotProductExtend folds dot(g1, g2) + p*q into one dot product over the
// extended groups.
func dotProductExtend(g *ir.Graph, h ir.NodeHandle) (ir.NodeHandle, bool) {
	left, right, ok := binary(g, h, ir.BinaryAdd)
	if !ok {
		return 0, false
	}
	for _, pair := range [][2]ir.NodeHandle{{left, right}, {right, left}} {
		dot, product := pair[0], pair[1]
		if _, isDot := g.Kind(dot).(ir.DotProduct); !isDot {
			continue
		}
		p, q, ok := factors(g, product)
		if !ok {
			continue
		}
		ga, gb := g.Inputs(g.Input(dot, 0)), g.Inputs(g.Input(dot, 1))
		if len(ga) >= maxDotLanes {
			continue
		}
		for _, swap := range []bool{false, true} {
			x, y := p, q
			if swap {
				x, y = q, p
			}
			if !sameRegister(g, append(clone(ga), x)...) || !sameRegister(g, append(clone(gb), y)...) {
				continue
			}
			return g.Dot(g.Group(append(clone(ga), x)...), g.Group(append(clone(gb), y)...)), true
		}
	}
	return 0, false
}

func clone(hs []ir.NodeHandle) []ir.NodeHandle {
	return append([]ir.NodeHandle(nil), hs...)
}
