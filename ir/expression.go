package ir

import (
	"fmt"

	"github.com/gogpu/dxdec/shader"
)

// NodeKind is the operation a node performs.
type NodeKind interface {
	nodeKind()
}

// Constant is a literal scalar.
type Constant struct {
	Value float32
}

func (Constant) nodeKind() {}

// RegisterInput reads one lane of a register as it was on entry, or a
// register variable in structured programs.
type RegisterInput struct {
	Key shader.RegisterComponentKey

	// SamplerDimension is the coordinate width of a sampler register, zero
	// for every other register.
	SamplerDimension int

	// Relative is set for c[a0.x + n] style reads. Such nodes have one
	// input, the index value, and are never shared between reads.
	Relative *shader.RelativeAddress
}

func (RegisterInput) nodeKind() {}

// IsSampler reports whether the input reads a sampler register.
func (r RegisterInput) IsSampler() bool {
	return r.SamplerDimension > 0
}

// UnaryOp is the operation of a Unary node.
type UnaryOp uint8

const (
	UnaryAbs UnaryOp = iota
	UnaryNegate
	UnarySign
	UnaryFrac
	UnaryReciprocal
	UnaryReciprocalSqrt
	UnarySin
	UnaryCos
	UnaryExp2
	UnaryExp
	UnaryLog2
	UnarySaturate
	UnaryDdx
	UnaryDdy
	// UnaryClip discards the pixel when any input lane is negative. Its
	// input is a Group of the tested lanes.
	UnaryClip
)

var unaryNames = [...]string{
	UnaryAbs:            "abs",
	UnaryNegate:         "neg",
	UnarySign:           "sign",
	UnaryFrac:           "frac",
	UnaryReciprocal:     "rcp",
	UnaryReciprocalSqrt: "rsqrt",
	UnarySin:            "sin",
	UnaryCos:            "cos",
	UnaryExp2:           "exp2",
	UnaryExp:            "exp",
	UnaryLog2:           "log2",
	UnarySaturate:       "saturate",
	UnaryDdx:            "ddx",
	UnaryDdy:            "ddy",
	UnaryClip:           "clip",
}

func (op UnaryOp) String() string {
	if int(op) < len(unaryNames) {
		return unaryNames[op]
	}
	return fmt.Sprintf("unary(%d)", uint8(op))
}

// Unary applies Op to its single input.
type Unary struct {
	Op UnaryOp
}

func (Unary) nodeKind() {}

// BinaryOp is the operation of a Binary node.
type BinaryOp uint8

const (
	BinaryAdd BinaryOp = iota
	BinarySubtract
	BinaryMultiply
	BinaryMax
	BinaryMin
	BinaryPower
	// BinarySignGreaterEqual is sge: 1 when a >= b, else 0.
	BinarySignGreaterEqual
	// BinarySignLessThan is slt: 1 when a < b, else 0.
	BinarySignLessThan

	// Comparisons produce booleans and only appear as flow-control conditions.
	BinaryGreater
	BinaryGreaterEqual
	BinaryEqual
	BinaryNotEqual
	BinaryLess
	BinaryLessEqual
)

var binaryNames = [...]string{
	BinaryAdd:              "add",
	BinarySubtract:         "sub",
	BinaryMultiply:         "mul",
	BinaryMax:              "max",
	BinaryMin:              "min",
	BinaryPower:            "pow",
	BinarySignGreaterEqual: "sge",
	BinarySignLessThan:     "slt",
	BinaryGreater:          "gt",
	BinaryGreaterEqual:     "ge",
	BinaryEqual:            "eq",
	BinaryNotEqual:         "ne",
	BinaryLess:             "lt",
	BinaryLessEqual:        "le",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryNames) {
		return binaryNames[op]
	}
	return fmt.Sprintf("binary(%d)", uint8(op))
}

// IsComparison reports whether op yields a boolean condition.
func (op BinaryOp) IsComparison() bool {
	return op >= BinaryGreater && op <= BinaryLessEqual
}

// IsCommutative reports whether the operands of op may be swapped.
func (op BinaryOp) IsCommutative() bool {
	switch op {
	case BinaryAdd, BinaryMultiply, BinaryMax, BinaryMin, BinaryEqual, BinaryNotEqual:
		return true
	}
	return false
}

// ComparisonOp maps an ifc/breakc control to a comparison operation.
func ComparisonOp(c shader.Control) (BinaryOp, bool) {
	switch c {
	case shader.CompareGT:
		return BinaryGreater, true
	case shader.CompareEQ:
		return BinaryEqual, true
	case shader.CompareGE:
		return BinaryGreaterEqual, true
	case shader.CompareLT:
		return BinaryLess, true
	case shader.CompareNE:
		return BinaryNotEqual, true
	case shader.CompareLE:
		return BinaryLessEqual, true
	}
	return 0, false
}

// Binary applies Op to its two inputs.
type Binary struct {
	Op BinaryOp
}

func (Binary) nodeKind() {}

// TernaryOp is the operation of a Ternary node.
type TernaryOp uint8

const (
	// TernaryCompare is cmp: a >= 0 ? b : c.
	TernaryCompare TernaryOp = iota
	// TernaryLerp is lrp: a*b + (1-a)*c.
	TernaryLerp
	// TernaryMultiplyAdd is mad: a*b + c.
	TernaryMultiplyAdd
)

func (op TernaryOp) String() string {
	switch op {
	case TernaryCompare:
		return "cmp"
	case TernaryLerp:
		return "lrp"
	case TernaryMultiplyAdd:
		return "mad"
	}
	return fmt.Sprintf("ternary(%d)", uint8(op))
}

// Ternary applies Op to its three inputs.
type Ternary struct {
	Op TernaryOp
}

func (Ternary) nodeKind() {}

// DotProduct is the dot product of two Group inputs of equal length.
type DotProduct struct{}

func (DotProduct) nodeKind() {}

// Normalize is one lane of normalize(v) for a three-lane Group input.
type Normalize struct {
	Component int
}

func (Normalize) nodeKind() {}

// TextureVariant selects the sampling function of a TextureLoad.
type TextureVariant uint8

const (
	TexturePlain TextureVariant = iota
	TextureLod
	TextureBias
	TextureProject
)

func (v TextureVariant) String() string {
	switch v {
	case TextureLod:
		return "lod"
	case TextureBias:
		return "bias"
	case TextureProject:
		return "project"
	}
	return "plain"
}

// TextureLoad is one lane of a texture sample. Inputs are the sampler
// register input and a Group of coordinates.
type TextureLoad struct {
	Component int
	Variant   TextureVariant
}

func (TextureLoad) nodeKind() {}

// Group bundles lanes for vector consumers.
type Group struct{}

func (Group) nodeKind() {}

// KindName returns a short name of a node kind for logs and errors.
func KindName(k NodeKind) string {
	switch k := k.(type) {
	case Constant:
		return "constant"
	case RegisterInput:
		return "input"
	case Unary:
		return k.Op.String()
	case Binary:
		return k.Op.String()
	case Ternary:
		return k.Op.String()
	case DotProduct:
		return "dot"
	case Normalize:
		return "normalize"
	case TextureLoad:
		return "tex"
	case Group:
		return "group"
	case nil:
		return "nil"
	}
	return fmt.Sprintf("%T", k)
}
