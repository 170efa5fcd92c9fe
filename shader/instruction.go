package shader

// Control holds the opcode-specific control bits of an instruction:
// the comparison of ifc/breakc/setp, or the texld sampling variant.
type Control uint8

// Comparison controls.
const (
	CompareNone Control = iota
	CompareGT
	CompareEQ
	CompareGE
	CompareLT
	CompareNE
	CompareLE
)

// Sampling controls for OpTex.
const (
	SampleProject Control = 1
	SampleBias    Control = 2
)

var comparisonNames = map[Control]string{
	CompareNone: "",
	CompareGT:   "gt",
	CompareEQ:   "eq",
	CompareGE:   "ge",
	CompareLT:   "lt",
	CompareNE:   "ne",
	CompareLE:   "le",
}

var samplingNames = map[Control]string{
	SampleProject: "project",
	SampleBias:    "bias",
}

// Operator returns the HLSL operator of a comparison control.
func (c Control) Operator() string {
	switch c {
	case CompareGT:
		return ">"
	case CompareEQ:
		return "=="
	case CompareGE:
		return ">="
	case CompareLT:
		return "<"
	case CompareNE:
		return "!="
	case CompareLE:
		return "<="
	}
	return "?"
}

// MarshalText implements encoding.TextMarshaler. Comparison names win for
// values shared with sampling variants; the opcode decides the meaning.
func (c Control) MarshalText() ([]byte, error) {
	return []byte(enumName(comparisonNames, c)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Control) UnmarshalText(text []byte) error {
	if v, err := parseEnum("sampling control", samplingNames, string(text)); err == nil {
		*c = v
		return nil
	}
	v, err := parseEnum("comparison", comparisonNames, string(text))
	*c = v
	return err
}

// Usage is a dcl usage semantic.
type Usage uint8

const (
	UsagePosition Usage = iota
	UsageBlendWeight
	UsageBlendIndices
	UsageNormal
	UsagePointSize
	UsageTexCoord
	UsageTangent
	UsageBinormal
	UsageTessFactor
	UsagePositionT
	UsageColor
	UsageFog
	UsageDepth
	UsageSample
)

var usageNames = map[Usage]string{
	UsagePosition:     "position",
	UsageBlendWeight:  "blendweight",
	UsageBlendIndices: "blendindices",
	UsageNormal:       "normal",
	UsagePointSize:    "psize",
	UsageTexCoord:     "texcoord",
	UsageTangent:      "tangent",
	UsageBinormal:     "binormal",
	UsageTessFactor:   "tessfactor",
	UsagePositionT:    "positiont",
	UsageColor:        "color",
	UsageFog:          "fog",
	UsageDepth:        "depth",
	UsageSample:       "sample",
}

func (u Usage) String() string { return enumName(usageNames, u) }

// MarshalText implements encoding.TextMarshaler.
func (u Usage) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Usage) UnmarshalText(text []byte) error {
	v, err := parseEnum("usage", usageNames, string(text))
	*u = v
	return err
}

// TextureType is the sampler kind declared by dcl_* on an s# register.
type TextureType uint8

const (
	TextureUnknown TextureType = iota
	Texture1D
	Texture2D
	TextureCube
	TextureVolume
)

var textureTypeNames = map[TextureType]string{
	TextureUnknown: "",
	Texture1D:      "1d",
	Texture2D:      "2d",
	TextureCube:    "cube",
	TextureVolume:  "volume",
}

func (t TextureType) String() string { return enumName(textureTypeNames, t) }

// Dimension returns the number of coordinate lanes the sampler consumes.
func (t TextureType) Dimension() int {
	switch t {
	case Texture1D:
		return 1
	case TextureCube, TextureVolume:
		return 3
	}
	return 2
}

// MarshalText implements encoding.TextMarshaler.
func (t TextureType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TextureType) UnmarshalText(text []byte) error {
	v, err := parseEnum("texture type", textureTypeNames, string(text))
	*t = v
	return err
}

// Declaration is the payload of a dcl instruction.
type Declaration struct {
	Usage   Usage       `yaml:"usage,omitempty" msgpack:"usage"`
	Index   uint32      `yaml:"index,omitempty" msgpack:"index"`
	Texture TextureType `yaml:"texture,omitempty" msgpack:"texture"`
}

// Instruction is one decoded instruction token.
type Instruction struct {
	Opcode  Opcode              `yaml:"op" msgpack:"op"`
	Control Control             `yaml:"control,omitempty" msgpack:"control"`
	Dest    *DestinationOperand `yaml:"dest,omitempty" msgpack:"dest,omitempty"`
	Src     []SourceOperand     `yaml:"src,omitempty" msgpack:"src,omitempty"`

	// Literal payloads of def, defi and defb.
	Float []float32 `yaml:"float,omitempty" msgpack:"float,omitempty"`
	Int   []int32   `yaml:"int,omitempty" msgpack:"int,omitempty"`
	Bool  *bool     `yaml:"bool,omitempty" msgpack:"bool,omitempty"`

	Decl    *Declaration `yaml:"decl,omitempty" msgpack:"decl,omitempty"`
	Comment string       `yaml:"comment,omitempty" msgpack:"comment,omitempty"`
}

// HasDestination reports whether the instruction carries a destination operand.
func (i *Instruction) HasDestination() bool {
	return i.Dest != nil && i.Opcode.HasDestination()
}

// Source returns source operand n, or nil when the instruction has fewer sources.
func (i *Instruction) Source(n int) *SourceOperand {
	if n < 0 || n >= len(i.Src) {
		return nil
	}
	return &i.Src[n]
}

// WriteMask returns the destination write mask, or MaskNone without a destination.
func (i *Instruction) WriteMask() WriteMask {
	if i.Dest == nil {
		return MaskNone
	}
	return i.Dest.Mask
}
