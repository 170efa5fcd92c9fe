package shader

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// RegisterType identifies a Direct3D 9 register file.
// Values follow the D3DSPR_* numbering of the bytecode.
type RegisterType uint8

const (
	RegisterTemp        RegisterType = iota // r#
	RegisterInput                           // v#
	RegisterConst                           // c#
	RegisterAddr                            // a0 in vertex programs, t# in pixel programs
	RegisterRastOut                         // oPos, oFog, oPts
	RegisterAttrOut                         // oD#
	RegisterOutput                          // oT# before vs_3_0, o# from vs_3_0
	RegisterConstInt                        // i#
	RegisterColorOut                        // oC#
	RegisterDepthOut                        // oDepth
	RegisterSampler                         // s#
	RegisterConst2                          // c2048..c4095
	RegisterConst3                          // c4096..c6143
	RegisterConst4                          // c6144..c8191
	RegisterConstBool                       // b#
	RegisterLoop                            // aL
	RegisterTempFloat16                     // half#
	RegisterMiscType                        // vPos, vFace
	RegisterLabel                           // l#
	RegisterPredicate                       // p0
)

// Aliases for register files that share a numeric type.
const (
	RegisterTexture   = RegisterAddr
	RegisterTexCrdOut = RegisterOutput
)

// Rasterizer output register numbers.
const (
	RastOutPosition  = 0
	RastOutFog       = 1
	RastOutPointSize = 2
)

// Misc register numbers.
const (
	MiscPosition = 0
	MiscFace     = 1
)

// IsConstant reports whether registers of this type are read-only constants.
func (t RegisterType) IsConstant() bool {
	switch t {
	case RegisterConst, RegisterConst2, RegisterConst3, RegisterConst4,
		RegisterConstInt, RegisterConstBool:
		return true
	default:
		return false
	}
}

// RegisterKey identifies one hardware register.
type RegisterKey struct {
	Type   RegisterType
	Number uint32
}

// Temp returns the key of temporary register n.
func Temp(n uint32) RegisterKey { return RegisterKey{Type: RegisterTemp, Number: n} }

// Const returns the key of float constant register n.
func Const(n uint32) RegisterKey { return RegisterKey{Type: RegisterConst, Number: n} }

// Input returns the key of input register n.
func Input(n uint32) RegisterKey { return RegisterKey{Type: RegisterInput, Number: n} }

// Sampler returns the key of sampler register n.
func Sampler(n uint32) RegisterKey { return RegisterKey{Type: RegisterSampler, Number: n} }

// IsConstant reports whether the register is a constant register.
func (k RegisterKey) IsConstant() bool { return k.Type.IsConstant() }

// IsOutput reports whether the register is a program output for the given stage.
// Pixel shaders 1.x write their color result to r0.
func (k RegisterKey) IsOutput(t ProgramType, major uint8) bool {
	if t == ProgramPixel {
		switch k.Type {
		case RegisterColorOut, RegisterDepthOut:
			return true
		case RegisterTemp:
			return major == 1 && k.Number == 0
		}
		return false
	}
	switch k.Type {
	case RegisterRastOut, RegisterAttrOut, RegisterOutput:
		return true
	}
	return false
}

// Compare orders registers by type, then number.
func (k RegisterKey) Compare(o RegisterKey) int {
	switch {
	case k.Type != o.Type:
		return int(k.Type) - int(o.Type)
	case k.Number < o.Number:
		return -1
	case k.Number > o.Number:
		return 1
	}
	return 0
}

// Lane returns the key of one component of the register.
func (k RegisterKey) Lane(component int) RegisterComponentKey {
	return RegisterComponentKey{Register: k, Component: component}
}

// constantBase returns the flat float-constant index offset of the
// extended constant files.
func (k RegisterKey) constantBase() uint32 {
	switch k.Type {
	case RegisterConst2:
		return 2048
	case RegisterConst3:
		return 4096
	case RegisterConst4:
		return 6144
	}
	return 0
}

// ConstantIndex returns the flat float-constant index for c, c2, c3 and c4 registers.
func (k RegisterKey) ConstantIndex() uint32 {
	return k.constantBase() + k.Number
}

// Format returns the assembly name of the register as it appears in
// programs of the given stage and major version.
func (k RegisterKey) Format(t ProgramType, major uint8) string {
	switch k.Type {
	case RegisterAddr:
		if t == ProgramPixel {
			return fmt.Sprintf("t%d", k.Number)
		}
		return fmt.Sprintf("a%d", k.Number)
	case RegisterOutput:
		if t == ProgramVertex && major < 3 {
			return fmt.Sprintf("oT%d", k.Number)
		}
		return fmt.Sprintf("o%d", k.Number)
	}
	return k.String()
}

// String returns a stage-neutral assembly name. Register type 3 prints as
// t# and type 6 as o#; use Format for stage-aware names.
func (k RegisterKey) String() string {
	switch k.Type {
	case RegisterTemp:
		return fmt.Sprintf("r%d", k.Number)
	case RegisterInput:
		return fmt.Sprintf("v%d", k.Number)
	case RegisterConst, RegisterConst2, RegisterConst3, RegisterConst4:
		return fmt.Sprintf("c%d", k.ConstantIndex())
	case RegisterAddr:
		return fmt.Sprintf("t%d", k.Number)
	case RegisterRastOut:
		switch k.Number {
		case RastOutPosition:
			return "oPos"
		case RastOutFog:
			return "oFog"
		case RastOutPointSize:
			return "oPts"
		}
		return fmt.Sprintf("oRast%d", k.Number)
	case RegisterAttrOut:
		return fmt.Sprintf("oD%d", k.Number)
	case RegisterOutput:
		return fmt.Sprintf("o%d", k.Number)
	case RegisterConstInt:
		return fmt.Sprintf("i%d", k.Number)
	case RegisterColorOut:
		return fmt.Sprintf("oC%d", k.Number)
	case RegisterDepthOut:
		return "oDepth"
	case RegisterSampler:
		return fmt.Sprintf("s%d", k.Number)
	case RegisterConstBool:
		return fmt.Sprintf("b%d", k.Number)
	case RegisterLoop:
		return "aL"
	case RegisterTempFloat16:
		return fmt.Sprintf("half%d", k.Number)
	case RegisterMiscType:
		switch k.Number {
		case MiscPosition:
			return "vPos"
		case MiscFace:
			return "vFace"
		}
		return fmt.Sprintf("misc%d", k.Number)
	case RegisterLabel:
		return fmt.Sprintf("l%d", k.Number)
	case RegisterPredicate:
		return fmt.Sprintf("p%d", k.Number)
	}
	return fmt.Sprintf("reg%d_%d", k.Type, k.Number)
}

// MarshalText implements encoding.TextMarshaler.
func (k RegisterKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *RegisterKey) UnmarshalText(text []byte) error {
	parsed, err := ParseRegister(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

var namedRegisters = map[string]RegisterKey{
	"oPos":   {Type: RegisterRastOut, Number: RastOutPosition},
	"oFog":   {Type: RegisterRastOut, Number: RastOutFog},
	"oPts":   {Type: RegisterRastOut, Number: RastOutPointSize},
	"oDepth": {Type: RegisterDepthOut},
	"vPos":   {Type: RegisterMiscType, Number: MiscPosition},
	"vFace":  {Type: RegisterMiscType, Number: MiscFace},
	"aL":     {Type: RegisterLoop},
}

// registerPrefixes is ordered so that longer prefixes win.
var registerPrefixes = []struct {
	prefix string
	typ    RegisterType
}{
	{"half", RegisterTempFloat16},
	{"oC", RegisterColorOut},
	{"oD", RegisterAttrOut},
	{"oT", RegisterOutput},
	{"o", RegisterOutput},
	{"r", RegisterTemp},
	{"v", RegisterInput},
	{"c", RegisterConst},
	{"a", RegisterAddr},
	{"t", RegisterTexture},
	{"i", RegisterConstInt},
	{"b", RegisterConstBool},
	{"s", RegisterSampler},
	{"p", RegisterPredicate},
	{"l", RegisterLabel},
}

// ParseRegister parses an assembly register name such as "r0", "oC1" or "vFace".
// Float constants above c2047 map to the extended constant files.
func ParseRegister(text string) (RegisterKey, error) {
	text = strings.TrimSpace(text)
	if key, ok := namedRegisters[text]; ok {
		return key, nil
	}
	for _, p := range registerPrefixes {
		rest, ok := strings.CutPrefix(text, p.prefix)
		if !ok || rest == "" {
			continue
		}
		n, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			continue
		}
		number, err := safecast.Conv[uint32](n)
		if err != nil {
			return RegisterKey{}, fmt.Errorf("register %q: %w", text, err)
		}
		key := RegisterKey{Type: p.typ, Number: number}
		if key.Type == RegisterConst {
			key = ConstantRegister(number)
		}
		return key, nil
	}
	return RegisterKey{}, fmt.Errorf("unknown register %q", text)
}

// ConstantRegister returns the key of flat float constant index, mapping
// indices above c2047 to the extended constant files.
func ConstantRegister(index uint32) RegisterKey {
	switch {
	case index >= 6144:
		return RegisterKey{Type: RegisterConst4, Number: index - 6144}
	case index >= 4096:
		return RegisterKey{Type: RegisterConst3, Number: index - 4096}
	case index >= 2048:
		return RegisterKey{Type: RegisterConst2, Number: index - 2048}
	}
	return RegisterKey{Type: RegisterConst, Number: index}
}

// RegisterComponentKey identifies one scalar lane of a register.
type RegisterComponentKey struct {
	Register  RegisterKey
	Component int
}

// String returns the lane in "r0.x" form.
func (k RegisterComponentKey) String() string {
	return k.Register.String() + "." + string(ComponentName(k.Component))
}

// Compare orders lanes by register type, number and component.
func (k RegisterComponentKey) Compare(o RegisterComponentKey) int {
	if c := k.Register.Compare(o.Register); c != 0 {
		return c
	}
	return k.Component - o.Component
}

// ComponentName returns the swizzle letter of a component index.
func ComponentName(component int) byte {
	if component < 0 || component > 3 {
		return '?'
	}
	return "xyzw"[component]
}
