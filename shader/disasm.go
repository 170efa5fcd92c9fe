package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// Listing renders the whole program as assembly text, one instruction per line.
func (p *Program) Listing() string {
	var b strings.Builder
	b.WriteString(p.Profile())
	b.WriteByte('\n')
	for i := range p.Instructions {
		if p.Instructions[i].Opcode == OpEnd {
			continue
		}
		b.WriteString(p.FormatInstruction(&p.Instructions[i]))
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatInstruction renders one instruction in assembly syntax.
func (p *Program) FormatInstruction(inst *Instruction) string {
	var b strings.Builder
	b.WriteString(p.mnemonic(inst))

	var operands []string
	if inst.Dest != nil {
		operands = append(operands, p.formatDestination(inst))
	}
	for i := range inst.Src {
		operands = append(operands, p.formatSource(&inst.Src[i]))
	}
	switch inst.Opcode {
	case OpDef:
		for _, f := range inst.Float {
			operands = append(operands, strconv.FormatFloat(float64(f), 'g', -1, 32))
		}
	case OpDefI:
		for _, v := range inst.Int {
			operands = append(operands, strconv.Itoa(int(v)))
		}
	case OpDefB:
		if inst.Bool != nil {
			operands = append(operands, strconv.FormatBool(*inst.Bool))
		}
	case OpComment:
		return "// " + inst.Comment
	}
	if len(operands) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(operands, ", "))
	}
	return b.String()
}

func (p *Program) mnemonic(inst *Instruction) string {
	name := inst.Opcode.String()
	switch inst.Opcode {
	case OpTex:
		if p.Major == 1 {
			name = "tex"
		}
		switch inst.Control {
		case SampleProject:
			name += "p"
		case SampleBias:
			name += "b"
		}
	case OpIfC, OpBreakC, OpSetP:
		if op := comparisonNames[inst.Control]; op != "" {
			name += "_" + op
		}
	case OpDcl:
		if inst.Decl != nil {
			name += p.declSuffix(inst)
		}
	}
	if inst.Dest != nil {
		if inst.Dest.Result.Has(ResultSaturate) {
			name += "_sat"
		}
		if inst.Dest.Result.Has(ResultPartialPrecision) {
			name += "_pp"
		}
		if inst.Dest.Result.Has(ResultCentroid) {
			name += "_centroid"
		}
	}
	return name
}

func (p *Program) declSuffix(inst *Instruction) string {
	if inst.Dest != nil && inst.Dest.Register.Type == RegisterSampler {
		if inst.Decl.Texture == TextureUnknown {
			return ""
		}
		return "_" + inst.Decl.Texture.String()
	}
	// Pixel shaders before 3.0 declare inputs without usage.
	if p.Type == ProgramPixel && p.Major < 3 {
		return ""
	}
	suffix := "_" + inst.Decl.Usage.String()
	if inst.Decl.Index != 0 || inst.Decl.Usage == UsageTexCoord || inst.Decl.Usage == UsageColor {
		suffix += strconv.FormatUint(uint64(inst.Decl.Index), 10)
	}
	return suffix
}

func (p *Program) formatDestination(inst *Instruction) string {
	d := inst.Dest
	name := d.Register.Format(p.Type, p.Major)
	if d.Mask != MaskAll && d.Mask != MaskNone {
		name += "." + d.Mask.String()
	}
	return name
}

func (p *Program) formatSource(s *SourceOperand) string {
	name := s.Register.Format(p.Type, p.Major)
	if s.Relative != nil {
		base := strings.TrimRight(name, "0123456789")
		index := s.Relative.Register.Format(p.Type, p.Major)
		if s.Relative.Register.Type != RegisterLoop {
			index += "." + string(ComponentName(s.Relative.Component))
		}
		name = fmt.Sprintf("%s[%s + %d]", base, index, s.Register.Number)
	}
	if sw := FormatSwizzle(s.Swizzle); sw != "" {
		name += "." + sw
	}
	switch s.Modifier {
	case ModNegate:
		return "-" + name
	case ModBias:
		return name + "_bias"
	case ModBiasNegate:
		return "-" + name + "_bias"
	case ModSign:
		return name + "_bx2"
	case ModSignNegate:
		return "-" + name + "_bx2"
	case ModComplement:
		return "1-" + name
	case ModX2:
		return name + "_x2"
	case ModX2Negate:
		return "-" + name + "_x2"
	case ModDivideZ:
		return name + "_dz"
	case ModDivideW:
		return name + "_dw"
	case ModAbs:
		return name + "_abs"
	case ModAbsNegate:
		return "-" + name + "_abs"
	case ModNot:
		return "!" + name
	}
	return name
}

// FormatSwizzle returns the short assembly form of a swizzle: empty for
// .xyzw, one letter for replicates, and trailing repeats trimmed otherwise.
func FormatSwizzle(s Swizzle) string {
	if s.IsIdentity() {
		return ""
	}
	if s.IsReplicate() {
		return string(ComponentName(int(s[0])))
	}
	full := s.String()
	n := 4
	for n > 1 && full[n-1] == full[n-2] {
		n--
	}
	return full[:n]
}
