// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/gogpu/dxdec/diag"
	"github.com/gogpu/dxdec/shader"
)

// registerUsage records how the program touches one register.
type registerUsage struct {
	read     shader.WriteMask
	written  shader.WriteMask
	declared shader.WriteMask
	decl     *shader.Declaration

	// relative is set when the register is the base of a c[a0.x + n] read.
	relative bool
}

// width returns the highest lane touched plus one.
func (u *registerUsage) width() int {
	m := u.read | u.written | u.declared
	for i := 3; i >= 0; i-- {
		if m.Has(i) {
			return i + 1
		}
	}
	return 0
}

// literal holds the lanes of a def, defi or defb register.
type literal struct {
	base   string
	values [4]string
}

// registerRef is how a register is spelled in the output.
type registerRef struct {
	base  string
	width int
}

// lanes renders components of the register. A full-width prefix drops
// the swizzle and single-lane registers never carry one. Lanes past the
// width of a narrow register repeat its last lane.
func (r registerRef) lanes(components []int) string {
	if r.width > 1 && r.width < 4 {
		components = clampLanes(components, r.width-1)
	}
	switch {
	case r.width <= 1 && len(components) == 1:
		return r.base
	case r.width <= 1:
		return swizzle(r.base, make([]int, len(components)))
	case isPrefix(components, r.width):
		return r.base
	}
	return swizzle(r.base, components)
}

func clampLanes(components []int, last int) []int {
	for i, c := range components {
		if c > last {
			out := slices.Clone(components)
			for j := i; j < len(out); j++ {
				out[j] = min(out[j], last)
			}
			return out
		}
	}
	return components
}

func (r registerRef) lane(c int) string {
	return r.lanes([]int{c})
}

var allLanes = []int{0, 1, 2, 3}

func firstLanes(n int) []int {
	return allLanes[:min(max(n, 1), 4)]
}

// =============================================================================
// Usage Analysis
// =============================================================================

func (w *Writer) use(key shader.RegisterKey) *registerUsage {
	u, ok := w.usage[key]
	if !ok {
		u = &registerUsage{}
		w.usage[key] = u
	}
	return u
}

// analyze collects declarations, literals and the lanes each register is
// read or written through.
func (w *Writer) analyze() {
	for i := range w.prog.Constants {
		c := &w.prog.Constants[i]
		if !c.Type.IsSampler() {
			continue
		}
		for r := uint32(0); r < max(c.RegisterCount, 1); r++ {
			w.samplers[c.RegisterIndex+r] = textureFromParameter(c.Type)
		}
	}

	for i := range w.prog.Instructions {
		inst := &w.prog.Instructions[i]
		if inst.Dest == nil {
			continue
		}
		key := inst.Dest.Register
		switch inst.Opcode {
		case shader.OpDcl:
			if key.Type == shader.RegisterSampler {
				t := shader.Texture2D
				if inst.Decl != nil && inst.Decl.Texture != shader.TextureUnknown {
					t = inst.Decl.Texture
				}
				w.samplers[key.Number] = t
				continue
			}
			u := w.use(key)
			u.declared |= inst.Dest.Mask
			u.decl = inst.Decl
		case shader.OpDef, shader.OpDefI, shader.OpDefB:
			w.literals[key] = defineLiteral(inst)
		}
	}

	for i := range w.prog.Instructions {
		w.scan(i, &w.prog.Instructions[i])
	}
}

func defineLiteral(inst *shader.Instruction) *literal {
	lit := &literal{base: "float"}
	for i := range lit.values {
		switch inst.Opcode {
		case shader.OpDefI:
			lit.base = "int"
			v := 0
			if i < len(inst.Int) {
				v = int(inst.Int[i])
			}
			lit.values[i] = strconv.Itoa(v)
		case shader.OpDefB:
			lit.base = "bool"
			lit.values[i] = "false"
			if inst.Bool != nil && *inst.Bool {
				lit.values[i] = "true"
			}
		default:
			var v float32
			if i < len(inst.Float) {
				v = inst.Float[i]
			}
			lit.values[i] = FormatFloat(v)
		}
	}
	return lit
}

// scan records the register lanes one instruction touches.
func (w *Writer) scan(index int, inst *shader.Instruction) {
	op := inst.Opcode
	if op.IsDeclaration() || op == shader.OpComment || op == shader.OpPhase || op == shader.OpEnd {
		return
	}

	for n := range inst.Src {
		src := &inst.Src[n]
		if src.Register.Type == shader.RegisterSampler {
			w.use(src.Register).read |= shader.MaskX
			continue
		}
		var mask shader.WriteMask
		for _, l := range w.sourceLanes(inst, n) {
			mask |= 1 << src.Swizzle.Component(l)
		}
		for r := 0; r < matrixRows(inst, n); r++ {
			key := src.Register
			key.Number += uint32(r)
			u := w.use(key)
			u.read |= mask
			u.relative = u.relative || src.Relative != nil
		}
		if src.Relative != nil {
			w.use(src.Relative.Register).read |= 1 << src.Relative.Component
			if !src.Register.IsConstant() {
				diag.Warnf(w.diags, diag.GenRelativeIgnored, index,
					"relative index %s on %s is ignored", src.Relative.Register, src.Register)
			}
		}
	}

	if !inst.HasDestination() {
		return
	}
	dest := inst.Dest
	switch {
	case dest.Register.Type == shader.RegisterSampler:
	case op == shader.OpTexKill:
		w.use(dest.Register).read |= dest.Mask
	default:
		w.use(dest.Register).written |= dest.Mask
	}

	// ps_1_x texture instructions address their stage through the
	// destination register number.
	switch op {
	case shader.OpTex:
		if len(inst.Src) < 2 {
			w.use(shader.Sampler(dest.Register.Number)).read |= shader.MaskX
		}
		if len(inst.Src) == 0 {
			t := shader.RegisterKey{Type: shader.RegisterTexture, Number: dest.Register.Number}
			w.use(t).read |= shader.MaskFromComponents(firstLanes(w.coordinateWidth(inst))...)
		}
	case shader.OpTexReg2AR, shader.OpTexReg2GB:
		w.use(shader.Sampler(dest.Register.Number)).read |= shader.MaskX
	case shader.OpTexCoord:
		if len(inst.Src) == 0 {
			t := shader.RegisterKey{Type: shader.RegisterTexture, Number: dest.Register.Number}
			w.use(t).read |= shader.MaskX | shader.MaskY | shader.MaskZ
		}
	}
}

// sourceLanes returns the logical lanes of source n an instruction
// consumes, before the operand swizzle.
func (w *Writer) sourceLanes(inst *shader.Instruction, n int) []int {
	op := inst.Opcode
	if op.IsParallel() {
		if m := inst.WriteMask(); m != shader.MaskNone {
			return m.Components()
		}
		return allLanes
	}
	switch op {
	case shader.OpRcp, shader.OpRsq, shader.OpExp, shader.OpExpP, shader.OpLog, shader.OpLogP,
		shader.OpPow, shader.OpSinCos, shader.OpIf, shader.OpIfC, shader.OpBreakC, shader.OpRep:
		return firstLanes(1)
	case shader.OpDp2Add:
		if n < 2 {
			return firstLanes(2)
		}
		return firstLanes(1)
	case shader.OpDp3, shader.OpNrm, shader.OpCrs, shader.OpLoop:
		return firstLanes(3)
	case shader.OpM3x4, shader.OpM3x3, shader.OpM3x2:
		return firstLanes(3)
	case shader.OpLit:
		return []int{0, 1, 3}
	case shader.OpDst:
		if n == 0 {
			return []int{1, 2}
		}
		return []int{1, 3}
	case shader.OpTex, shader.OpTexLdl:
		if n == 0 {
			return firstLanes(w.coordinateWidth(inst))
		}
	case shader.OpTexCoord:
		return inst.WriteMask().Components()
	case shader.OpTexReg2AR:
		return []int{0, 3}
	case shader.OpTexReg2GB:
		return []int{1, 2}
	}
	return allLanes
}

// matrixRows returns the number of consecutive registers source n of a
// matrix macro spans, one for every other operand.
func matrixRows(inst *shader.Instruction, n int) int {
	if n != 1 {
		return 1
	}
	switch inst.Opcode {
	case shader.OpM4x4, shader.OpM3x4:
		return 4
	case shader.OpM4x3, shader.OpM3x3:
		return 3
	case shader.OpM3x2:
		return 2
	}
	return 1
}

// textureSampler returns the sampler register a texture instruction reads.
func textureSampler(inst *shader.Instruction) shader.RegisterKey {
	if src := inst.Source(1); src != nil && src.Register.Type == shader.RegisterSampler {
		return src.Register
	}
	if inst.Dest != nil {
		return shader.Sampler(inst.Dest.Register.Number)
	}
	return shader.Sampler(0)
}

// coordinateWidth returns the coordinate lanes a texture load consumes.
func (w *Writer) coordinateWidth(inst *shader.Instruction) int {
	if inst.Opcode == shader.OpTexLdl || inst.Control == shader.SampleProject || inst.Control == shader.SampleBias {
		return 4
	}
	return w.samplerKind(textureSampler(inst).Number).Dimension()
}

// samplerKind returns the texture kind of sampler n, 2D when undeclared.
func (w *Writer) samplerKind(n uint32) shader.TextureType {
	if t, ok := w.samplers[n]; ok && t != shader.TextureUnknown {
		return t
	}
	return shader.Texture2D
}

// =============================================================================
// Register Roles
// =============================================================================

func (w *Writer) isInput(key shader.RegisterKey) bool {
	switch key.Type {
	case shader.RegisterInput, shader.RegisterMiscType:
		return true
	case shader.RegisterTexture:
		return w.prog.Type == shader.ProgramPixel
	}
	return false
}

func (w *Writer) isOutput(key shader.RegisterKey) bool {
	return key.IsOutput(w.prog.Type, w.prog.Major)
}

func (w *Writer) isTemp(key shader.RegisterKey) bool {
	switch key.Type {
	case shader.RegisterTemp:
		return true
	case shader.RegisterAddr:
		return w.prog.Type == shader.ProgramVertex
	}
	return false
}

// legacyOutput reports whether key is the r0 color result of ps_1_x.
func (w *Writer) legacyOutput(key shader.RegisterKey) bool {
	return w.prog.Type == shader.ProgramPixel && w.model.LegacyPixelOutput() &&
		key.Type == shader.RegisterTemp && key.Number == 0
}

// =============================================================================
// Layout
// =============================================================================

// maxLoopDepth is the number of loop counter names reserved up front.
const maxLoopDepth = 8

// layout sorts the used registers into roles and names them.
func (w *Writer) layout() error {
	keys := maps.Keys(w.usage)
	slices.SortFunc(keys, shader.RegisterKey.Compare)

	var inputs, outputs []shader.RegisterKey
	var maxConstant uint32
	relative := false
	for _, key := range keys {
		u := w.usage[key]
		if w.isOutput(key) {
			if u.written != 0 {
				outputs = append(outputs, key)
			}
			if !w.legacyOutput(key) {
				continue
			}
		}
		switch {
		case w.isInput(key):
			inputs = append(inputs, key)
		case w.isTemp(key):
			if !w.legacyOutput(key) {
				w.temps = append(w.temps, key)
			}
		case key.IsConstant() || key.Type == shader.RegisterSampler:
			if _, ok := w.literals[key]; ok || w.prog.ConstantFor(key) != nil {
				continue
			}
			w.implicit = append(w.implicit, key)
			if isFloatConstant(key) {
				maxConstant = max(maxConstant, key.ConstantIndex())
				relative = relative || u.relative
			}
		}
	}
	if len(inputs) == 0 && len(outputs) == 0 && len(w.prog.Instructions) == 0 {
		return NewError(ErrInvalidProgram, "program has no instructions")
	}
	if relative {
		w.cArray = max(maxConstant+1, w.floatConstantCount())
	}

	// Register names cannot be taken by constants or interface names.
	for _, name := range []string{w.entry, "i", "o", "a0", "aL"} {
		w.names.reserve(name)
	}
	for d := 0; d < maxLoopDepth; d++ {
		w.names.reserve(loopCounterName(d))
	}
	for _, key := range w.temps {
		name := key.Format(w.prog.Type, w.prog.Major)
		w.names.reserve(name)
		w.refs[key] = registerRef{base: name, width: max(w.usage[key].width(), 1)}
	}
	if w.cArray > 0 {
		w.names.reserve("c")
	}
	for _, key := range w.implicit {
		w.names.reserve(key.String())
		w.refs[key] = w.implicitRef(key)
	}

	if len(inputs) > 1 {
		w.inputStruct = w.names.call(w.entry + "_Input")
	}
	if len(outputs) > 1 {
		w.outputStruct = w.names.call(w.entry + "_Output")
	}

	for _, name := range w.opts.CommonDeclarations {
		w.common[name] = struct{}{}
		w.names.reserve(name)
	}
	w.constants = make([]string, len(w.prog.Constants))
	for i := range w.prog.Constants {
		name := w.prog.Constants[i].Name
		if _, ok := w.common[name]; ok {
			w.constants[i] = name
			continue
		}
		w.constants[i] = w.names.call(name)
	}

	w.inputs = w.bindInputs(inputs)
	w.outputs = w.bindOutputs(outputs)
	return nil
}

func loopCounterName(depth int) string {
	return fmt.Sprintf("it%d", depth)
}

func isFloatConstant(key shader.RegisterKey) bool {
	switch key.Type {
	case shader.RegisterConst, shader.RegisterConst2, shader.RegisterConst3, shader.RegisterConst4:
		return true
	}
	return false
}

// floatConstantCount returns the float constant registers a profile
// guarantees, the size of the implicit c[] array.
func (w *Writer) floatConstantCount() uint32 {
	if w.prog.Type == shader.ProgramVertex {
		if w.model < ShaderModel2_0 {
			return 96
		}
		return 256
	}
	switch {
	case w.model >= ShaderModel3_0:
		return 224
	case w.model >= ShaderModel2_0:
		return 32
	}
	return 8
}

// implicitRef names a constant register the constant table does not cover.
func (w *Writer) implicitRef(key shader.RegisterKey) registerRef {
	switch key.Type {
	case shader.RegisterConstInt:
		return registerRef{base: key.String(), width: 4}
	case shader.RegisterConstBool:
		return registerRef{base: key.String(), width: 1}
	case shader.RegisterSampler:
		return registerRef{base: key.String()}
	}
	if w.cArray > 0 {
		return registerRef{base: fmt.Sprintf("c[%d]", key.ConstantIndex()), width: 4}
	}
	return registerRef{base: key.String(), width: 4}
}

// =============================================================================
// References
// =============================================================================

// reference returns the spelling of register key. index is the rendered
// relative address of c[a0.x + n] reads, empty otherwise.
func (w *Writer) reference(key shader.RegisterKey, index string) registerRef {
	if key.IsConstant() || key.Type == shader.RegisterSampler {
		return w.constantReference(key, index)
	}
	if ref, ok := w.refs[key]; ok {
		return ref
	}
	if key.Type == shader.RegisterLoop {
		return registerRef{base: "aL", width: 1}
	}
	return registerRef{base: key.Format(w.prog.Type, w.prog.Major), width: 4}
}

// operandLanes renders lanes of a register, spelling literal registers
// as constructors.
func (w *Writer) operandLanes(key shader.RegisterKey, index string, components []int) string {
	if lit, ok := w.literals[key]; ok && index == "" {
		parts := make([]string, len(components))
		for i, c := range components {
			parts[i] = lit.values[c&3]
		}
		return constructor(lit.base, parts)
	}
	return w.reference(key, index).lanes(components)
}

// relativeIndex renders the address lane of a relative operand.
func (w *Writer) relativeIndex(rel *shader.RelativeAddress) string {
	if rel == nil {
		return ""
	}
	return w.reference(rel.Register, "").lane(rel.Component)
}

func offsetIndex(index string, offset uint32) string {
	if offset == 0 {
		return index
	}
	return fmt.Sprintf("%s + %d", index, offset)
}
