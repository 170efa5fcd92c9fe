package lower

import (
	"github.com/gogpu/dxdec/ir"
	"github.com/gogpu/dxdec/shader"
)

// read returns the node currently defining lane, synthesizing and
// memoizing a register input for lanes never written or declared.
func (b *builder) read(lane shader.RegisterComponentKey) ir.NodeHandle {
	if h, ok := b.state.Lookup(lane); ok {
		return h
	}
	h := b.g.RegisterInput(lane)
	b.state.Set(lane, h)
	return h
}

// source resolves source operand n for logical lane i through the
// operand swizzle and applies its modifier.
func (b *builder) source(inst *shader.Instruction, n, i int) ir.NodeHandle {
	src := inst.Source(n)
	if src == nil {
		// Validate rejects programs without operands for these opcodes;
		// a zero keeps hand-built programs from panicking.
		return b.g.Constant(0)
	}
	return b.operand(src, src.Register, i)
}

// operand reads lane i of key as addressed by src: swizzled, relative
// when src is, and modified.
func (b *builder) operand(src *shader.SourceOperand, key shader.RegisterKey, i int) ir.NodeHandle {
	lane := key.Lane(src.Swizzle.Component(i))
	var h ir.NodeHandle
	if src.Relative != nil {
		index := b.read(src.Relative.Register.Lane(src.Relative.Component))
		h = b.g.RelativeInput(lane, *src.Relative, index)
	} else {
		h = b.read(lane)
	}
	return b.modify(h, src.Modifier)
}

// sourceGroup gathers lanes 0..n-1 of source operand s into a group.
func (b *builder) sourceGroup(inst *shader.Instruction, s, n int) ir.NodeHandle {
	lanes := make([]ir.NodeHandle, n)
	for i := range lanes {
		lanes[i] = b.source(inst, s, i)
	}
	return b.g.Group(lanes...)
}

// registerGroup gathers lanes 0..n-1 of key as addressed by src.
func (b *builder) registerGroup(src *shader.SourceOperand, key shader.RegisterKey, n int) ir.NodeHandle {
	lanes := make([]ir.NodeHandle, n)
	for i := range lanes {
		lanes[i] = b.operand(src, key, i)
	}
	return b.g.Group(lanes...)
}

// modify applies a source modifier.
func (b *builder) modify(x ir.NodeHandle, m shader.SourceModifier) ir.NodeHandle {
	g := b.g
	switch m {
	case shader.ModNegate, shader.ModNot:
		return g.Unary(ir.UnaryNegate, x)
	case shader.ModAbs:
		return g.Unary(ir.UnaryAbs, x)
	case shader.ModAbsNegate:
		return g.Unary(ir.UnaryNegate, g.Unary(ir.UnaryAbs, x))
	case shader.ModBias:
		return g.Binary(ir.BinarySubtract, x, g.Constant(0.5))
	case shader.ModBiasNegate:
		return g.Unary(ir.UnaryNegate, g.Binary(ir.BinarySubtract, x, g.Constant(0.5)))
	case shader.ModSign:
		return g.Unary(ir.UnarySign, x)
	case shader.ModSignNegate:
		return g.Unary(ir.UnaryNegate, g.Unary(ir.UnarySign, x))
	case shader.ModComplement:
		return g.Binary(ir.BinarySubtract, g.Constant(1), x)
	case shader.ModX2:
		return g.Binary(ir.BinaryMultiply, x, g.Constant(2))
	case shader.ModX2Negate:
		return g.Unary(ir.UnaryNegate, g.Binary(ir.BinaryMultiply, x, g.Constant(2)))
	}
	// none, divide-by-z and divide-by-w
	return x
}
