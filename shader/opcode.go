package shader

import "fmt"

// Opcode is a Direct3D 9 instruction opcode (D3DSIO_* values).
type Opcode uint16

const (
	OpNop        Opcode = 0
	OpMov        Opcode = 1
	OpAdd        Opcode = 2
	OpSub        Opcode = 3
	OpMad        Opcode = 4
	OpMul        Opcode = 5
	OpRcp        Opcode = 6
	OpRsq        Opcode = 7
	OpDp3        Opcode = 8
	OpDp4        Opcode = 9
	OpMin        Opcode = 10
	OpMax        Opcode = 11
	OpSlt        Opcode = 12
	OpSge        Opcode = 13
	OpExp        Opcode = 14
	OpLog        Opcode = 15
	OpLit        Opcode = 16
	OpDst        Opcode = 17
	OpLrp        Opcode = 18
	OpFrc        Opcode = 19
	OpM4x4       Opcode = 20
	OpM4x3       Opcode = 21
	OpM3x4       Opcode = 22
	OpM3x3       Opcode = 23
	OpM3x2       Opcode = 24
	OpCall       Opcode = 25
	OpCallNZ     Opcode = 26
	OpLoop       Opcode = 27
	OpRet        Opcode = 28
	OpEndLoop    Opcode = 29
	OpLabel      Opcode = 30
	OpDcl        Opcode = 31
	OpPow        Opcode = 32
	OpCrs        Opcode = 33
	OpSgn        Opcode = 34
	OpAbs        Opcode = 35
	OpNrm        Opcode = 36
	OpSinCos     Opcode = 37
	OpRep        Opcode = 38
	OpEndRep     Opcode = 39
	OpIf         Opcode = 40
	OpIfC        Opcode = 41
	OpElse       Opcode = 42
	OpEndIf      Opcode = 43
	OpBreak      Opcode = 44
	OpBreakC     Opcode = 45
	OpMovA       Opcode = 46
	OpDefB       Opcode = 47
	OpDefI       Opcode = 48
	OpTexCoord   Opcode = 64
	OpTexKill    Opcode = 65
	OpTex        Opcode = 66
	OpTexBem     Opcode = 67
	OpTexBemL    Opcode = 68
	OpTexReg2AR  Opcode = 69
	OpTexReg2GB  Opcode = 70
	OpTexM3x2Pad Opcode = 71
	OpTexM3x2Tex Opcode = 72
	OpTexM3x3Pad Opcode = 73
	OpTexM3x3Tex Opcode = 74
	OpExpP       Opcode = 78
	OpLogP       Opcode = 79
	OpCnd        Opcode = 80
	OpDef        Opcode = 81
	OpTexReg2RGB Opcode = 82
	OpTexDp3Tex  Opcode = 83
	OpTexDp3     Opcode = 85
	OpTexM3x3    Opcode = 86
	OpTexDepth   Opcode = 87
	OpCmp        Opcode = 88
	OpBem        Opcode = 89
	OpDp2Add     Opcode = 90
	OpDsx        Opcode = 91
	OpDsy        Opcode = 92
	OpTexLdd     Opcode = 93
	OpSetP       Opcode = 94
	OpTexLdl     Opcode = 95
	OpBreakP     Opcode = 96
	OpPhase      Opcode = 0xFFFD
	OpComment    Opcode = 0xFFFE
	OpEnd        Opcode = 0xFFFF
)

var opcodeNames = map[Opcode]string{
	OpNop: "nop", OpMov: "mov", OpAdd: "add", OpSub: "sub", OpMad: "mad",
	OpMul: "mul", OpRcp: "rcp", OpRsq: "rsq", OpDp3: "dp3", OpDp4: "dp4",
	OpMin: "min", OpMax: "max", OpSlt: "slt", OpSge: "sge", OpExp: "exp",
	OpLog: "log", OpLit: "lit", OpDst: "dst", OpLrp: "lrp", OpFrc: "frc",
	OpM4x4: "m4x4", OpM4x3: "m4x3", OpM3x4: "m3x4", OpM3x3: "m3x3", OpM3x2: "m3x2",
	OpCall: "call", OpCallNZ: "callnz", OpLoop: "loop", OpRet: "ret",
	OpEndLoop: "endloop", OpLabel: "label", OpDcl: "dcl", OpPow: "pow",
	OpCrs: "crs", OpSgn: "sgn", OpAbs: "abs", OpNrm: "nrm", OpSinCos: "sincos",
	OpRep: "rep", OpEndRep: "endrep", OpIf: "if", OpIfC: "ifc", OpElse: "else",
	OpEndIf: "endif", OpBreak: "break", OpBreakC: "breakc", OpMovA: "mova",
	OpDefB: "defb", OpDefI: "defi", OpTexCoord: "texcoord", OpTexKill: "texkill",
	OpTex: "texld", OpTexBem: "texbem", OpTexBemL: "texbeml",
	OpTexReg2AR: "texreg2ar", OpTexReg2GB: "texreg2gb",
	OpTexM3x2Pad: "texm3x2pad", OpTexM3x2Tex: "texm3x2tex",
	OpTexM3x3Pad: "texm3x3pad", OpTexM3x3Tex: "texm3x3tex",
	OpExpP: "expp", OpLogP: "logp", OpCnd: "cnd", OpDef: "def",
	OpTexReg2RGB: "texreg2rgb", OpTexDp3Tex: "texdp3tex", OpTexDp3: "texdp3",
	OpTexM3x3: "texm3x3", OpTexDepth: "texdepth", OpCmp: "cmp", OpBem: "bem",
	OpDp2Add: "dp2add", OpDsx: "dsx", OpDsy: "dsy", OpTexLdd: "texldd",
	OpSetP: "setp", OpTexLdl: "texldl", OpBreakP: "breakp", OpPhase: "phase",
	OpComment: "comment", OpEnd: "end",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return fmt.Sprintf("op%d", uint16(op))
}

// MarshalText implements encoding.TextMarshaler.
func (op Opcode) MarshalText() ([]byte, error) { return []byte(op.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. "tex" is accepted
// as the pixel shader 1.x spelling of texld.
func (op *Opcode) UnmarshalText(text []byte) error {
	if string(text) == "tex" {
		*op = OpTex
		return nil
	}
	v, err := parseEnum("opcode", opcodeNames, string(text))
	*op = v
	return err
}

// HasDestination reports whether the instruction encodes a destination operand.
// texkill carries its register in the destination slot.
func (op Opcode) HasDestination() bool {
	switch op {
	case OpNop, OpCall, OpCallNZ, OpLoop, OpRet, OpEndLoop, OpLabel,
		OpRep, OpEndRep, OpIf, OpIfC, OpElse, OpEndIf, OpBreak, OpBreakC,
		OpBreakP, OpPhase, OpComment, OpEnd:
		return false
	}
	return true
}

// IsParallel reports whether each result lane depends only on the same
// lane of the sources, so a write mask can be pushed into source swizzles.
func (op Opcode) IsParallel() bool {
	switch op {
	case OpAbs, OpAdd, OpCmp, OpCnd, OpFrc, OpLrp, OpMad, OpMax, OpMin,
		OpMov, OpMovA, OpMul, OpSge, OpSlt, OpSub, OpSgn, OpDsx, OpDsy:
		return true
	}
	return false
}

// ReturnsScalar reports whether the instruction computes one scalar that is
// replicated into every written lane.
func (op Opcode) ReturnsScalar() bool {
	switch op {
	case OpDp2Add, OpDp3, OpDp4, OpExp, OpExpP, OpLog, OpLogP, OpPow, OpRcp, OpRsq:
		return true
	}
	return false
}

// IsFlowControl reports whether the opcode opens, closes or exits a block.
func (op Opcode) IsFlowControl() bool {
	switch op {
	case OpIf, OpIfC, OpElse, OpEndIf, OpRep, OpEndRep, OpLoop, OpEndLoop,
		OpBreak, OpBreakC:
		return true
	}
	return false
}

// IsDeclaration reports whether the opcode only declares registers.
func (op Opcode) IsDeclaration() bool {
	switch op {
	case OpDcl, OpDef, OpDefI, OpDefB:
		return true
	}
	return false
}
