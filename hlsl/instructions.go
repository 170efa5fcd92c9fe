// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/dxdec/shader"
)

// block is an open flow-control construct of the direct strategy.
type block struct {
	op       shader.Opcode
	index    int
	hasElse  bool
	loopBody bool
}

// writeInstructions translates the instruction stream one instruction at
// a time, keeping every register as a variable.
func (w *Writer) writeInstructions() error {
	w.writeTemps(w.temps)

	var stack []block
	inLoop := func() bool {
		for _, b := range stack {
			if b.loopBody {
				return true
			}
		}
		return false
	}

	for i := range w.prog.Instructions {
		inst := &w.prog.Instructions[i]
		op := inst.Opcode
		if op.IsDeclaration() || op == shader.OpNop || op == shader.OpComment ||
			op == shader.OpPhase || op == shader.OpEnd {
			continue
		}

		switch op {
		case shader.OpIf, shader.OpIfC:
			w.writeComment(i)
			cond := w.branchCondition(inst)
			w.writeLine("if (%s) {", cond)
			w.pushIndent()
			stack = append(stack, block{op: op, index: i})

		case shader.OpElse:
			if len(stack) == 0 || !isIf(stack[len(stack)-1].op) || stack[len(stack)-1].hasElse {
				return errorAt(ErrUnbalancedFlow, i, "else without matching if")
			}
			stack[len(stack)-1].hasElse = true
			w.popIndent()
			w.writeLine("} else {")
			w.pushIndent()
			continue

		case shader.OpEndIf:
			if len(stack) == 0 || !isIf(stack[len(stack)-1].op) {
				return errorAt(ErrUnbalancedFlow, i, "endif without matching if")
			}
			stack = stack[:len(stack)-1]
			w.popIndent()
			w.writeLine("}")
			continue

		case shader.OpRep, shader.OpLoop:
			if w.loopDepth >= maxLoopDepth {
				return errorAt(ErrUnbalancedFlow, i, "loops nested deeper than %d", maxLoopDepth)
			}
			w.writeComment(i)
			count, start, step := w.loopBounds(inst)
			w.writeLine("%s {", w.loopHeader(count, start, step, op == shader.OpLoop))
			w.loopDepth++
			w.pushIndent()
			stack = append(stack, block{op: op, index: i, loopBody: true})

		case shader.OpEndRep, shader.OpEndLoop:
			want := shader.OpRep
			if op == shader.OpEndLoop {
				want = shader.OpLoop
			}
			if len(stack) == 0 || stack[len(stack)-1].op != want {
				return errorAt(ErrUnbalancedFlow, i, "%s without matching %s", op, want)
			}
			stack = stack[:len(stack)-1]
			w.loopDepth--
			w.popIndent()
			w.writeLine("}")
			continue

		case shader.OpBreak:
			if !inLoop() {
				return errorAt(ErrUnbalancedFlow, i, "break outside a loop")
			}
			w.writeComment(i)
			w.writeLine("break;")

		case shader.OpBreakC:
			if !inLoop() {
				return errorAt(ErrUnbalancedFlow, i, "break_%s outside a loop", inst.Control.Operator())
			}
			w.writeComment(i)
			w.writeLine("if (%s) break;", w.branchCondition(inst))

		case shader.OpRet:
			if len(stack) == 0 {
				continue
			}
			w.writeComment(i)
			w.writeLine("%s", w.returnStatement())

		case shader.OpTexKill:
			if inst.Dest == nil {
				continue
			}
			w.writeComment(i)
			mask := inst.Dest.Mask
			if w.model < ShaderModel2_0 {
				mask &= shader.MaskX | shader.MaskY | shader.MaskZ
			}
			ref := w.operandLanes(inst.Dest.Register, "", mask.Components())
			w.writeLine("clip(%s);", ref)

		default:
			w.writeComment(i)
			if err := w.writeOperation(i, inst); err != nil {
				return err
			}
			continue
		}
		if err := w.count(i); err != nil {
			return err
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return errorAt(ErrUnbalancedFlow, top.index, "%s is never closed", top.op)
	}
	return nil
}

func isIf(op shader.Opcode) bool {
	return op == shader.OpIf || op == shader.OpIfC
}

// branchCondition renders the condition of if, ifc and breakc.
func (w *Writer) branchCondition(inst *shader.Instruction) string {
	if inst.Opcode == shader.OpIf {
		return w.operand(inst, 0, firstLanes(1))
	}
	return fmt.Sprintf("%s %s %s",
		w.operand(inst, 0, firstLanes(1)),
		comparisonOperator(inst.Control),
		w.operand(inst, 1, firstLanes(1)))
}

// loopBounds renders the iteration count, start and step of rep and loop.
// Both read the integer constant operand: .x count, .y start, .z step.
func (w *Writer) loopBounds(inst *shader.Instruction) (count, start, step string) {
	var key shader.RegisterKey
	for n := range inst.Src {
		if inst.Src[n].Register.Type == shader.RegisterConstInt {
			key = inst.Src[n].Register
			break
		}
	}
	lane := func(c int) string { return w.operandLanes(key, "", []int{c}) }
	return lane(0), lane(1), lane(2)
}

// =============================================================================
// Operands
// =============================================================================

// operand renders lanes of source n through its swizzle and modifier.
func (w *Writer) operand(inst *shader.Instruction, n int, lanes []int) string {
	src := inst.Source(n)
	if src == nil {
		return "0.0"
	}
	components := make([]int, len(lanes))
	for i, l := range lanes {
		components[i] = src.Swizzle.Component(l)
	}
	text := w.operandLanes(src.Register, w.relativeIndex(src.Relative), components)
	return modify(text, src.Modifier)
}

// modify applies a source modifier to rendered operand text.
func modify(x string, m shader.SourceModifier) string {
	switch m {
	case shader.ModNegate:
		if strings.HasPrefix(x, "-") {
			return "-(" + x + ")"
		}
		return "-" + x
	case shader.ModAbs:
		return "abs(" + x + ")"
	case shader.ModAbsNegate:
		return "-abs(" + x + ")"
	case shader.ModBias:
		return "(" + x + " - 0.5)"
	case shader.ModBiasNegate:
		return "-(" + x + " - 0.5)"
	case shader.ModSign:
		return "sign(" + x + ")"
	case shader.ModSignNegate:
		return "-sign(" + x + ")"
	case shader.ModComplement:
		return "(1.0 - " + x + ")"
	case shader.ModX2:
		return "(2.0 * " + x + ")"
	case shader.ModX2Negate:
		return "-(2.0 * " + x + ")"
	case shader.ModNot:
		return "!" + x
	}
	return x
}

// =============================================================================
// Operations
// =============================================================================

// writeOperation writes the assignment of an arithmetic or texture
// instruction.
func (w *Writer) writeOperation(index int, inst *shader.Instruction) error {
	if inst.Dest == nil {
		return unsupported(index, inst.Opcode)
	}
	lanes := inst.Dest.Mask.Components()
	if len(lanes) == 0 || inst.Dest.Register.Type == shader.RegisterSampler {
		return nil
	}

	value, natural, err := w.operation(index, inst, lanes)
	if err != nil {
		return err
	}
	switch {
	case natural == 1 && len(lanes) > 1:
		// Scalar results replicate into every written lane.
		value = swizzle(value, make([]int, len(lanes)))
	case natural > 1:
		keep := lanes[:0:0]
		for _, c := range lanes {
			if c < natural {
				keep = append(keep, c)
			}
		}
		if len(keep) == 0 {
			return nil
		}
		if !isPrefix(keep, natural) {
			value = swizzle(value, keep)
		}
		lanes = keep
	}
	if inst.Dest.Result.Has(shader.ResultSaturate) {
		value = "saturate(" + value + ")"
	}

	target := w.reference(inst.Dest.Register, "").lanes(lanes)
	w.writeLine("%s = %s;", target, value)
	return w.count(index)
}

// operation renders the value of an instruction. natural is zero for
// per-lane results already matching lanes, one for scalars and otherwise
// the width of the vector the expression produces.
func (w *Writer) operation(index int, inst *shader.Instruction, lanes []int) (value string, natural int, err error) {
	par := func(n int) string { return w.operand(inst, n, lanes) }
	first := func(n int) string { return w.operand(inst, n, firstLanes(1)) }
	vec := func(n, width int) string { return w.operand(inst, n, firstLanes(width)) }

	switch inst.Opcode {
	case shader.OpMov, shader.OpMovA:
		return par(0), 0, nil
	case shader.OpAdd:
		return par(0) + " + " + par(1), 0, nil
	case shader.OpSub:
		return par(0) + " - " + par(1), 0, nil
	case shader.OpMul:
		return par(0) + " * " + par(1), 0, nil
	case shader.OpMad:
		return par(0) + " * " + par(1) + " + " + par(2), 0, nil
	case shader.OpMin:
		return fmt.Sprintf("min(%s, %s)", par(0), par(1)), 0, nil
	case shader.OpMax:
		return fmt.Sprintf("max(%s, %s)", par(0), par(1)), 0, nil
	case shader.OpSlt:
		return fmt.Sprintf("1.0 - step(%s, %s)", par(1), par(0)), 0, nil
	case shader.OpSge:
		return fmt.Sprintf("step(%s, %s)", par(1), par(0)), 0, nil
	case shader.OpAbs:
		return "abs(" + par(0) + ")", 0, nil
	case shader.OpFrc:
		return "frac(" + par(0) + ")", 0, nil
	case shader.OpSgn:
		return "sign(" + par(0) + ")", 0, nil
	case shader.OpDsx:
		return "ddx(" + par(0) + ")", 0, nil
	case shader.OpDsy:
		return "ddy(" + par(0) + ")", 0, nil
	case shader.OpLrp:
		return fmt.Sprintf("lerp(%s, %s, %s)", par(2), par(1), par(0)), 0, nil
	case shader.OpCmp:
		return fmt.Sprintf("%s >= 0.0 ? %s : %s", par(0), par(1), par(2)), 0, nil
	case shader.OpCnd:
		return fmt.Sprintf("%s > 0.5 ? %s : %s", par(0), par(1), par(2)), 0, nil

	case shader.OpRcp:
		return "1.0 / " + first(0), 1, nil
	case shader.OpRsq:
		return "rsqrt(" + first(0) + ")", 1, nil
	case shader.OpExp, shader.OpExpP:
		return "exp2(" + first(0) + ")", 1, nil
	case shader.OpLog, shader.OpLogP:
		return "log2(" + first(0) + ")", 1, nil
	case shader.OpPow:
		return fmt.Sprintf("pow(%s, %s)", first(0), first(1)), 1, nil
	case shader.OpDp3:
		return fmt.Sprintf("dot(%s, %s)", vec(0, 3), vec(1, 3)), 1, nil
	case shader.OpDp4:
		return fmt.Sprintf("dot(%s, %s)", vec(0, 4), vec(1, 4)), 1, nil
	case shader.OpDp2Add:
		return fmt.Sprintf("dot(%s, %s) + %s", vec(0, 2), vec(1, 2), first(2)), 1, nil

	case shader.OpNrm:
		return "normalize(" + vec(0, 3) + ")", 3, nil
	case shader.OpCrs:
		return fmt.Sprintf("cross(%s, %s)", vec(0, 3), vec(1, 3)), 3, nil
	case shader.OpSinCos:
		x := first(0)
		return fmt.Sprintf("float2(cos(%s), sin(%s))", x, x), 2, nil
	case shader.OpLit:
		lane := func(c int) string { return w.operand(inst, 0, []int{c}) }
		return fmt.Sprintf("lit(%s, %s, %s)", lane(0), lane(1), lane(3)), 4, nil
	case shader.OpDst:
		a := func(c int) string { return w.operand(inst, 0, []int{c}) }
		b := func(c int) string { return w.operand(inst, 1, []int{c}) }
		return fmt.Sprintf("float4(1.0, %s * %s, %s, %s)", a(1), b(1), a(2), b(3)), 4, nil

	case shader.OpM4x4, shader.OpM4x3, shader.OpM3x4, shader.OpM3x3, shader.OpM3x2:
		text, rows := w.matrixProduct(inst)
		return text, rows, nil

	case shader.OpTex, shader.OpTexLdl, shader.OpTexLdd, shader.OpTexReg2AR, shader.OpTexReg2GB:
		return w.textureLoad(inst), 4, nil

	case shader.OpTexCoord:
		if len(inst.Src) > 0 {
			return par(0), 0, nil
		}
		t := shader.RegisterKey{Type: shader.RegisterTexture, Number: inst.Dest.Register.Number}
		return fmt.Sprintf("float4(saturate(%s), 1.0)", w.operandLanes(t, "", firstLanes(3))), 4, nil
	}
	return "", 0, unsupported(index, inst.Opcode)
}

// matrixShape returns the vector width and row count of a matrix macro.
func matrixShape(op shader.Opcode) (width, rows int) {
	switch op {
	case shader.OpM4x4:
		return 4, 4
	case shader.OpM4x3:
		return 4, 3
	case shader.OpM3x4:
		return 3, 4
	case shader.OpM3x3:
		return 3, 3
	case shader.OpM3x2:
		return 3, 2
	}
	return 0, 0
}

// matrixProduct renders mNxM as mul() when the row registers are exactly
// one declared matrix, as one dot product per row otherwise.
func (w *Writer) matrixProduct(inst *shader.Instruction) (string, int) {
	width, rows := matrixShape(inst.Opcode)
	v := w.operand(inst, 0, firstLanes(width))
	src := inst.Source(1)
	if src == nil {
		return "0.0", 1
	}
	if src.Relative == nil && src.Modifier == shader.ModNone && src.Swizzle.IsIdentity() {
		if i, ok := w.constantIndex(src.Register); ok {
			c := &w.prog.Constants[i]
			regs, elements := constantShape(c)
			if elements == 1 && int(regs) == rows && constantWidth(c) == width &&
				c.RegisterIndex == src.Register.ConstantIndex() {
				return fmt.Sprintf("mul(%s, %s)", w.constants[i], v), rows
			}
		}
	}

	index := w.relativeIndex(src.Relative)
	parts := make([]string, rows)
	for r := range parts {
		row := src.Register
		row.Number += uint32(r)
		components := make([]int, width)
		for l := range components {
			components[l] = src.Swizzle.Component(l)
		}
		text := modify(w.operandLanes(row, index, components), src.Modifier)
		parts[r] = fmt.Sprintf("dot(%s, %s)", v, text)
	}
	return constructor("float", parts), rows
}

// textureLoad renders the sample of a texture instruction.
func (w *Writer) textureLoad(inst *shader.Instruction) string {
	key := textureSampler(inst)
	kind := w.samplerKind(key.Number)
	sampler := w.reference(key, "").base
	width := w.coordinateWidth(inst)

	switch inst.Opcode {
	case shader.OpTexReg2AR, shader.OpTexReg2GB:
		coords := []int{3, 0}
		if inst.Opcode == shader.OpTexReg2GB {
			coords = []int{1, 2}
		}
		return fmt.Sprintf("%s(%s, %s)", textureFunction(kind, ""), sampler, w.operand(inst, 0, coords))
	case shader.OpTexLdl:
		return fmt.Sprintf("%s(%s, %s)", textureFunction(kind, "lod"), sampler, w.operand(inst, 0, firstLanes(4)))
	case shader.OpTexLdd:
		dim := kind.Dimension()
		return fmt.Sprintf("%s(%s, %s, %s, %s)", textureFunction(kind, "grad"), sampler,
			w.operand(inst, 0, firstLanes(dim)), w.operand(inst, 2, firstLanes(dim)), w.operand(inst, 3, firstLanes(dim)))
	}

	suffix := ""
	switch inst.Control {
	case shader.SampleProject:
		suffix = "proj"
	case shader.SampleBias:
		suffix = "bias"
	}
	var coords string
	if len(inst.Src) == 0 {
		t := shader.RegisterKey{Type: shader.RegisterTexture, Number: inst.Dest.Register.Number}
		coords = w.operandLanes(t, "", firstLanes(width))
	} else {
		coords = w.operand(inst, 0, firstLanes(width))
	}
	return fmt.Sprintf("%s(%s, %s)", textureFunction(kind, suffix), sampler, coords)
}
