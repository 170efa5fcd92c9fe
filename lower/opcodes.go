package lower

import (
	"github.com/gogpu/dxdec/ir"
	"github.com/gogpu/dxdec/shader"
)

var unaryOps = map[shader.Opcode]ir.UnaryOp{
	shader.OpAbs: ir.UnaryAbs,
	shader.OpFrc: ir.UnaryFrac,
	shader.OpSgn: ir.UnarySign,
	shader.OpDsx: ir.UnaryDdx,
	shader.OpDsy: ir.UnaryDdy,
}

// scalarUnaryOps read one replicated source component.
var scalarUnaryOps = map[shader.Opcode]ir.UnaryOp{
	shader.OpRcp:  ir.UnaryReciprocal,
	shader.OpRsq:  ir.UnaryReciprocalSqrt,
	shader.OpExp:  ir.UnaryExp2,
	shader.OpExpP: ir.UnaryExp2,
	shader.OpLog:  ir.UnaryLog2,
	shader.OpLogP: ir.UnaryLog2,
}

var binaryOps = map[shader.Opcode]ir.BinaryOp{
	shader.OpAdd: ir.BinaryAdd,
	shader.OpSub: ir.BinarySubtract,
	shader.OpMul: ir.BinaryMultiply,
	shader.OpMax: ir.BinaryMax,
	shader.OpMin: ir.BinaryMin,
	shader.OpSge: ir.BinarySignGreaterEqual,
	shader.OpSlt: ir.BinarySignLessThan,
}

var ternaryOps = map[shader.Opcode]ir.TernaryOp{
	shader.OpMad: ir.TernaryMultiplyAdd,
	shader.OpCmp: ir.TernaryCompare,
	shader.OpLrp: ir.TernaryLerp,
}

// matrixShapes gives the vector width and row count of the mNxM macros.
var matrixShapes = map[shader.Opcode][2]int{
	shader.OpM4x4: {4, 4},
	shader.OpM4x3: {4, 3},
	shader.OpM3x4: {3, 4},
	shader.OpM3x3: {3, 3},
	shader.OpM3x2: {3, 2},
}

// instValues holds the nodes an instruction produces per destination lane.
type instValues struct {
	nodes    [4]ir.NodeHandle
	produced shader.WriteMask
}

func (v *instValues) set(c int, h ir.NodeHandle) {
	v.nodes[c] = h
	v.produced |= 1 << uint(c)
}

// values builds the node of every written destination lane.
func (b *builder) values(index int, inst *shader.Instruction) (*instValues, error) {
	g := b.g
	out := &instValues{}
	lanes := inst.Dest.Mask.Components()
	each := func(fn func(c int) ir.NodeHandle) {
		for _, c := range lanes {
			out.set(c, fn(c))
		}
	}
	all := func(h ir.NodeHandle) {
		for _, c := range lanes {
			out.set(c, h)
		}
	}
	op := inst.Opcode

	if u, ok := unaryOps[op]; ok {
		each(func(c int) ir.NodeHandle { return g.Unary(u, b.source(inst, 0, c)) })
		return out, nil
	}
	if u, ok := scalarUnaryOps[op]; ok {
		all(g.Unary(u, b.source(inst, 0, 0)))
		return out, nil
	}
	if bop, ok := binaryOps[op]; ok {
		each(func(c int) ir.NodeHandle { return g.Binary(bop, b.source(inst, 0, c), b.source(inst, 1, c)) })
		return out, nil
	}
	if top, ok := ternaryOps[op]; ok {
		each(func(c int) ir.NodeHandle {
			return g.Ternary(top, b.source(inst, 0, c), b.source(inst, 1, c), b.source(inst, 2, c))
		})
		return out, nil
	}
	if shape, ok := matrixShapes[op]; ok {
		b.matrix(inst, shape[0], shape[1], out)
		return out, nil
	}

	switch op {
	case shader.OpMov, shader.OpMovA:
		each(func(c int) ir.NodeHandle { return b.source(inst, 0, c) })

	case shader.OpPow:
		all(g.Binary(ir.BinaryPower, b.source(inst, 0, 0), b.source(inst, 1, 0)))

	case shader.OpCnd:
		// cnd: a > 0.5 ? b : c, which is cmp(0.5 - a, c, b).
		each(func(c int) ir.NodeHandle {
			cond := g.Binary(ir.BinarySubtract, g.Constant(0.5), b.source(inst, 0, c))
			return g.Ternary(ir.TernaryCompare, cond, b.source(inst, 2, c), b.source(inst, 1, c))
		})

	case shader.OpSinCos:
		x := b.source(inst, 0, 0)
		for _, c := range lanes {
			switch c {
			case 0:
				out.set(c, g.Unary(ir.UnaryCos, x))
			case 1:
				out.set(c, g.Unary(ir.UnarySin, x))
			}
		}

	case shader.OpDp3, shader.OpDp4:
		n := 3
		if op == shader.OpDp4 {
			n = 4
		}
		all(g.Dot(b.sourceGroup(inst, 0, n), b.sourceGroup(inst, 1, n)))

	case shader.OpDp2Add:
		dot := g.Dot(b.sourceGroup(inst, 0, 2), b.sourceGroup(inst, 1, 2))
		all(g.Binary(ir.BinaryAdd, dot, b.source(inst, 2, 0)))

	case shader.OpNrm:
		v := b.sourceGroup(inst, 0, 3)
		for _, c := range lanes {
			if c < 3 {
				out.set(c, g.Add(ir.Normalize{Component: c}, v))
			}
		}

	case shader.OpCrs:
		b.cross(inst, lanes, out)

	case shader.OpLit:
		b.lit(inst, lanes, out)

	case shader.OpDst:
		each(func(c int) ir.NodeHandle {
			switch c {
			case 0:
				return g.Constant(1)
			case 1:
				return g.Binary(ir.BinaryMultiply, b.source(inst, 0, 1), b.source(inst, 1, 1))
			case 2:
				return b.source(inst, 0, 2)
			}
			return b.source(inst, 1, 3)
		})

	case shader.OpTexCoord:
		each(func(c int) ir.NodeHandle {
			if len(inst.Src) > 0 {
				return b.source(inst, 0, c)
			}
			return b.read(inst.Dest.Register.Lane(c))
		})

	case shader.OpTex, shader.OpTexLdl, shader.OpTexReg2AR, shader.OpTexReg2GB:
		sampler, coords, variant, err := b.texture(index, inst)
		if err != nil {
			return nil, err
		}
		each(func(c int) ir.NodeHandle {
			return g.Add(ir.TextureLoad{Component: c, Variant: variant}, sampler, coords)
		})

	default:
		return nil, newError(ErrUnsupportedOpcode, index, op, "opcode %s is not supported", op)
	}
	return out, nil
}

// matrix expands mNxM into one dot product per row register.
func (b *builder) matrix(inst *shader.Instruction, width, rows int, out *instValues) {
	src := inst.Source(1)
	if src == nil {
		return
	}
	v := b.sourceGroup(inst, 0, width)
	for _, c := range inst.Dest.Mask.Components() {
		if c >= rows {
			continue
		}
		row := src.Register
		row.Number += uint32(c)
		out.set(c, b.g.Dot(v, b.registerGroup(src, row, width)))
	}
}

func (b *builder) cross(inst *shader.Instruction, lanes []int, out *instValues) {
	g := b.g
	term := func(i, j int) ir.NodeHandle {
		return g.Binary(ir.BinaryMultiply, b.source(inst, 0, i), b.source(inst, 1, j))
	}
	for _, c := range lanes {
		if c > 2 {
			continue
		}
		i, j := (c+1)%3, (c+2)%3
		out.set(c, g.Binary(ir.BinarySubtract, term(i, j), term(j, i)))
	}
}

// lit computes (1, max(x, 0), x > 0 ? pow(max(y, 0), w) : 0, 1).
func (b *builder) lit(inst *shader.Instruction, lanes []int, out *instValues) {
	g := b.g
	zero := g.Constant(0)
	for _, c := range lanes {
		switch c {
		case 0, 3:
			out.set(c, g.Constant(1))
		case 1:
			out.set(c, g.Binary(ir.BinaryMax, b.source(inst, 0, 0), zero))
		case 2:
			x := b.source(inst, 0, 0)
			spec := g.Binary(ir.BinaryPower, g.Binary(ir.BinaryMax, b.source(inst, 0, 1), zero), b.source(inst, 0, 3))
			out.set(c, g.Ternary(ir.TernaryCompare, g.Unary(ir.UnaryNegate, x), zero, spec))
		}
	}
}

// texture resolves the sampler and coordinate group of a texture load.
func (b *builder) texture(index int, inst *shader.Instruction) (sampler, coords ir.NodeHandle, variant ir.TextureVariant, err error) {
	g := b.g
	variant = ir.TexturePlain
	var samplerKey shader.RegisterKey
	coordSource := -1
	var fixed []shader.RegisterComponentKey

	switch inst.Opcode {
	case shader.OpTexLdl:
		variant = ir.TextureLod
		coordSource = 0
		samplerKey = sourceRegister(inst, 1)
	case shader.OpTexReg2AR, shader.OpTexReg2GB:
		samplerKey = shader.Sampler(inst.Dest.Register.Number)
		src := sourceRegister(inst, 0)
		if inst.Opcode == shader.OpTexReg2AR {
			fixed = []shader.RegisterComponentKey{src.Lane(3), src.Lane(0)}
		} else {
			fixed = []shader.RegisterComponentKey{src.Lane(1), src.Lane(2)}
		}
	default:
		switch inst.Control {
		case shader.SampleProject:
			variant = ir.TextureProject
		case shader.SampleBias:
			variant = ir.TextureBias
		}
		switch len(inst.Src) {
		case 0:
			// ps_1_0..1_3 tex t#: stage n sampled at texcoord n.
			samplerKey = shader.Sampler(inst.Dest.Register.Number)
		case 1:
			// ps_1_4 texld r#, t#: the destination names the stage.
			samplerKey = shader.Sampler(inst.Dest.Register.Number)
			coordSource = 0
		default:
			coordSource = 0
			samplerKey = sourceRegister(inst, 1)
		}
	}

	sampler, ok := b.state.Sampler(samplerKey)
	if !ok {
		return 0, 0, 0, newError(ErrInvalidSamplerReference, index, inst.Opcode,
			"register %s is not a declared sampler", samplerKey)
	}

	if fixed != nil {
		lanes := make([]ir.NodeHandle, len(fixed))
		for i, lane := range fixed {
			lanes[i] = b.read(lane)
		}
		return sampler, g.Group(lanes...), variant, nil
	}

	n := 2
	if in, ok := g.Kind(sampler).(ir.RegisterInput); ok && in.SamplerDimension > 0 {
		n = in.SamplerDimension
	}
	if variant != ir.TexturePlain {
		n = 4
	}
	if coordSource >= 0 {
		return sampler, b.sourceGroup(inst, coordSource, n), variant, nil
	}
	texcoord := shader.RegisterKey{Type: shader.RegisterTexture, Number: inst.Dest.Register.Number}
	lanes := make([]ir.NodeHandle, n)
	for i := range lanes {
		lanes[i] = b.read(texcoord.Lane(i))
	}
	return sampler, g.Group(lanes...), variant, nil
}

func sourceRegister(inst *shader.Instruction, n int) shader.RegisterKey {
	if src := inst.Source(n); src != nil {
		return src.Register
	}
	return shader.RegisterKey{}
}
