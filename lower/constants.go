package lower

import (
	"github.com/gogpu/dxdec/ir"
	"github.com/gogpu/dxdec/shader"
)

// legacyStages is the number of texture stages of ps_1_x.
const legacyStages = 6

// loadConstants allocates input nodes for every constant table entry.
func (b *builder) loadConstants() error {
	g := b.g
	for i := range b.prog.Constants {
		c := &b.prog.Constants[i]
		if !representable(c.Type) {
			return newError(ErrUnsupportedConstant, -1, 0,
				"constant %q has unsupported type %s", c.Name, c.Type)
		}
		count := max(c.RegisterCount, 1)
		switch {
		case c.RegisterSet == shader.SetSampler || c.Type.IsSampler():
			dim := c.Type.SamplerDimension()
			for r := range count {
				key := shader.Sampler(c.RegisterIndex + r)
				b.state.SetSampler(key, g.SamplerInput(key, dim))
			}
		case c.RegisterSet == shader.SetFloat4:
			for r := range count {
				key := shader.ConstantRegister(c.RegisterIndex + r)
				for lane := range 4 {
					b.read(key.Lane(lane))
				}
			}
		case c.RegisterSet == shader.SetInt4:
			for r := range count {
				key := shader.RegisterKey{Type: shader.RegisterConstInt, Number: c.RegisterIndex + r}
				for lane := range 4 {
					b.read(key.Lane(lane))
				}
			}
		case c.RegisterSet == shader.SetBool:
			for r := range count {
				b.read(shader.RegisterKey{Type: shader.RegisterConstBool, Number: c.RegisterIndex + r}.Lane(0))
			}
		default:
			return newError(ErrUnsupportedConstant, -1, 0,
				"constant %q has unsupported register set %s", c.Name, c.RegisterSet)
		}
	}

	if b.prog.Type == shader.ProgramPixel && b.prog.Major == 1 {
		for n := range uint32(legacyStages) {
			key := shader.Sampler(n)
			if _, ok := b.state.Sampler(key); !ok {
				b.state.SetSampler(key, g.SamplerInput(key, 2))
			}
		}
	}
	return nil
}

func representable(t shader.ParameterType) bool {
	switch t {
	case shader.ParamBool, shader.ParamInt, shader.ParamFloat:
		return true
	}
	return t.IsSampler()
}

// declare handles dcl. Only sampler declarations change the state.
func (b *builder) declare(index int, inst *shader.Instruction) error {
	if inst.Dest == nil || inst.Dest.Register.Type != shader.RegisterSampler {
		return nil
	}
	key := inst.Dest.Register
	if _, ok := b.state.Sampler(key); ok {
		return nil
	}
	dim := 2
	if inst.Decl != nil {
		dim = inst.Decl.Texture.Dimension()
	}
	b.state.SetSampler(key, b.g.SamplerInput(key, dim))
	return nil
}

// define binds def and defi literals to constant nodes.
func (b *builder) define(index int, inst *shader.Instruction) error {
	if inst.Opcode == shader.OpDefB {
		return newError(ErrUnsupportedOpcode, index, inst.Opcode, "boolean constant definitions are not supported")
	}
	if inst.Dest == nil {
		return nil
	}
	key := inst.Dest.Register
	for lane := range 4 {
		var v float32
		switch inst.Opcode {
		case shader.OpDef:
			if lane < len(inst.Float) {
				v = inst.Float[lane]
			}
		case shader.OpDefI:
			if lane < len(inst.Int) {
				v = float32(inst.Int[lane])
			}
		}
		b.state.Set(key.Lane(lane), b.g.Constant(v))
	}
	return nil
}

// texkill discards the pixel when any masked lane of the operand is
// negative.
func (b *builder) texkill(index int, inst *shader.Instruction) error {
	if inst.Dest == nil {
		return nil
	}
	lanes := inst.Dest.Mask.Components()
	if len(lanes) == 0 {
		return nil
	}
	values := make([]ir.NodeHandle, len(lanes))
	for i, c := range lanes {
		values[i] = b.read(inst.Dest.Register.Lane(c))
	}
	clip := ir.StmtClip{Value: b.g.Unary(ir.UnaryClip, b.g.Group(values...)), Instruction: index}
	if b.structured {
		b.emit(clip)
		return nil
	}
	b.clips = append(b.clips, ir.Statement{Kind: clip})
	return nil
}
