package shader

import "fmt"

// ProgramType is the pipeline stage of a program.
type ProgramType uint8

const (
	ProgramVertex ProgramType = iota
	ProgramPixel
)

var programTypeNames = map[ProgramType]string{
	ProgramVertex: "vertex",
	ProgramPixel:  "pixel",
}

func (t ProgramType) String() string { return enumName(programTypeNames, t) }

// Title returns the capitalized stage name ("Vertex", "Pixel").
func (t ProgramType) Title() string {
	if t == ProgramPixel {
		return "Pixel"
	}
	return "Vertex"
}

// MarshalText implements encoding.TextMarshaler.
func (t ProgramType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ProgramType) UnmarshalText(text []byte) error {
	v, err := parseEnum("program type", programTypeNames, string(text))
	*t = v
	return err
}

// RegisterSet is the register file a constant table entry binds to.
type RegisterSet uint8

const (
	SetBool RegisterSet = iota
	SetInt4
	SetFloat4
	SetSampler
)

var registerSetNames = map[RegisterSet]string{
	SetBool:    "bool",
	SetInt4:    "int4",
	SetFloat4:  "float4",
	SetSampler: "sampler",
}

func (s RegisterSet) String() string { return enumName(registerSetNames, s) }

// RegisterType returns the register file type of the set.
func (s RegisterSet) RegisterType() RegisterType {
	switch s {
	case SetBool:
		return RegisterConstBool
	case SetInt4:
		return RegisterConstInt
	case SetSampler:
		return RegisterSampler
	}
	return RegisterConst
}

// MarshalText implements encoding.TextMarshaler.
func (s RegisterSet) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *RegisterSet) UnmarshalText(text []byte) error {
	v, err := parseEnum("register set", registerSetNames, string(text))
	*s = v
	return err
}

// ParameterClass is the shape class of a constant.
type ParameterClass uint8

const (
	ClassScalar ParameterClass = iota
	ClassVector
	ClassMatrixRows
	ClassMatrixColumns
	ClassObject
	ClassStruct
)

var parameterClassNames = map[ParameterClass]string{
	ClassScalar:        "scalar",
	ClassVector:        "vector",
	ClassMatrixRows:    "matrix_rows",
	ClassMatrixColumns: "matrix_columns",
	ClassObject:        "object",
	ClassStruct:        "struct",
}

func (c ParameterClass) String() string { return enumName(parameterClassNames, c) }

// MarshalText implements encoding.TextMarshaler.
func (c ParameterClass) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ParameterClass) UnmarshalText(text []byte) error {
	v, err := parseEnum("parameter class", parameterClassNames, string(text))
	*c = v
	return err
}

// ParameterType is the element type of a constant.
type ParameterType uint8

const (
	ParamVoid ParameterType = iota
	ParamBool
	ParamInt
	ParamFloat
	ParamString
	ParamTexture
	ParamTexture1D
	ParamTexture2D
	ParamTexture3D
	ParamTextureCube
	ParamSampler
	ParamSampler1D
	ParamSampler2D
	ParamSampler3D
	ParamSamplerCube
)

var parameterTypeNames = map[ParameterType]string{
	ParamVoid:        "void",
	ParamBool:        "bool",
	ParamInt:         "int",
	ParamFloat:       "float",
	ParamString:      "string",
	ParamTexture:     "texture",
	ParamTexture1D:   "texture1d",
	ParamTexture2D:   "texture2d",
	ParamTexture3D:   "texture3d",
	ParamTextureCube: "texturecube",
	ParamSampler:     "sampler",
	ParamSampler1D:   "sampler1d",
	ParamSampler2D:   "sampler2d",
	ParamSampler3D:   "sampler3d",
	ParamSamplerCube: "samplercube",
}

func (t ParameterType) String() string { return enumName(parameterTypeNames, t) }

// IsSampler reports whether the type is one of the sampler kinds.
func (t ParameterType) IsSampler() bool {
	return t >= ParamSampler && t <= ParamSamplerCube
}

// SamplerDimension returns the coordinate width of a sampler type.
// The untyped sampler is treated as 2D.
func (t ParameterType) SamplerDimension() int {
	switch t {
	case ParamSampler1D:
		return 1
	case ParamSampler3D, ParamSamplerCube:
		return 3
	}
	return 2
}

// MarshalText implements encoding.TextMarshaler.
func (t ParameterType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ParameterType) UnmarshalText(text []byte) error {
	v, err := parseEnum("parameter type", parameterTypeNames, string(text))
	*t = v
	return err
}

// ConstantDeclaration is one entry of the constant table.
type ConstantDeclaration struct {
	Name          string         `yaml:"name" msgpack:"name"`
	RegisterSet   RegisterSet    `yaml:"set" msgpack:"set"`
	RegisterIndex uint32         `yaml:"index" msgpack:"index"`
	RegisterCount uint32         `yaml:"count" msgpack:"count"`
	Class         ParameterClass `yaml:"class" msgpack:"class"`
	Type          ParameterType  `yaml:"type" msgpack:"type"`
	Rows          uint32         `yaml:"rows,omitempty" msgpack:"rows"`
	Columns       uint32         `yaml:"columns,omitempty" msgpack:"columns"`
	Elements      uint32         `yaml:"elements,omitempty" msgpack:"elements"`
	DefaultValue  []float32      `yaml:"default,omitempty" msgpack:"default,omitempty"`
}

// Contains reports whether register number n of the declaration's file is
// covered by this constant.
func (c *ConstantDeclaration) Contains(t RegisterType, n uint32) bool {
	if c.RegisterSet.RegisterType() != t {
		return false
	}
	count := max(c.RegisterCount, 1)
	return n >= c.RegisterIndex && n < c.RegisterIndex+count
}

// Program is a decoded shader program as produced by a bytecode reader.
type Program struct {
	Type         ProgramType           `yaml:"type" msgpack:"type"`
	Major        uint8                 `yaml:"major" msgpack:"major"`
	Minor        uint8                 `yaml:"minor" msgpack:"minor"`
	Constants    []ConstantDeclaration `yaml:"constants,omitempty" msgpack:"constants,omitempty"`
	Instructions []Instruction         `yaml:"instructions" msgpack:"instructions"`

	// Preshader is pre-rendered HLSL for the effect preshader, if any.
	Preshader string `yaml:"preshader,omitempty" msgpack:"preshader,omitempty"`
}

// Profile returns the compiler profile name, e.g. "ps_3_0".
func (p *Program) Profile() string {
	prefix := "vs"
	if p.Type == ProgramPixel {
		prefix = "ps"
	}
	return fmt.Sprintf("%s_%d_%d", prefix, p.Major, p.Minor)
}

// ConstantFor returns the constant table entry covering register key, if any.
func (p *Program) ConstantFor(key RegisterKey) *ConstantDeclaration {
	t, n := key.Type, key.Number
	switch t {
	case RegisterConst2, RegisterConst3, RegisterConst4:
		t, n = RegisterConst, key.ConstantIndex()
	}
	for i := range p.Constants {
		if p.Constants[i].Contains(t, n) {
			return &p.Constants[i]
		}
	}
	return nil
}
