package shader

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const texturedPixelYAML = `
type: pixel
major: 2
minor: 0
constants:
  - name: Tint
    set: float4
    index: 0
    count: 1
    class: vector
    type: float
    rows: 1
    columns: 4
  - name: Diffuse
    set: sampler
    index: 0
    count: 1
    class: object
    type: sampler2d
instructions:
  - op: dcl
    dest: {reg: t0, mask: xy}
  - op: dcl
    dest: {reg: s0}
    decl: {texture: 2d}
  - op: def
    dest: {reg: c1}
    float: [1, 0.5, 0, 0]
  - op: texld
    dest: {reg: r0}
    src: [{reg: t0}, {reg: s0}]
  - op: mul
    dest: {reg: r0, mask: xyz, result: sat}
    src: [{reg: r0}, {reg: c0, swizzle: x, mod: neg}]
  - op: mov
    dest: {reg: oC0}
    src: [{reg: r0}]
  - op: end
`

func decodeString(t *testing.T, text string) *Program {
	t.Helper()
	p, err := Decode(strings.NewReader(text), FormatYAML)
	require.NoError(t, err)
	return p
}

func TestDecode_YAML(t *testing.T) {
	p := decodeString(t, texturedPixelYAML)

	assert.Equal(t, ProgramPixel, p.Type)
	assert.Equal(t, "ps_2_0", p.Profile())
	require.Len(t, p.Constants, 2)
	assert.Equal(t, SetSampler, p.Constants[1].RegisterSet)
	assert.Equal(t, ParamSampler2D, p.Constants[1].Type)
	require.Len(t, p.Instructions, 7)

	dcl := p.Instructions[0]
	assert.Equal(t, OpDcl, dcl.Opcode)
	assert.Equal(t, MaskX|MaskY, dcl.Dest.Mask)

	tex := p.Instructions[3]
	assert.Equal(t, OpTex, tex.Opcode)
	assert.Equal(t, MaskAll, tex.Dest.Mask, "omitted mask defaults to xyzw")
	assert.Equal(t, IdentitySwizzle, tex.Src[0].Swizzle, "omitted swizzle defaults to xyzw")

	mul := p.Instructions[4]
	assert.True(t, mul.Dest.Result.Has(ResultSaturate))
	assert.Equal(t, ReplicateSwizzle(0), mul.Src[1].Swizzle)
	assert.Equal(t, ModNegate, mul.Src[1].Modifier)

	assert.Equal(t, []float32{1, 0.5, 0, 0}, p.Instructions[2].Float)
}

func TestDecode_UnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader("type: pixel\nmajor: 2\nbogus: 1\n"), FormatYAML)
	assert.Error(t, err)
}

func TestDecode_Validate(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"version", "type: pixel\nmajor: 4\ninstructions: []\n"},
		{"missing destination", "type: vertex\nmajor: 2\ninstructions:\n  - op: mov\n    src: [{reg: v0}]\n"},
		{"unknown opcode", "type: vertex\nmajor: 2\ninstructions:\n  - op: frobnicate\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.text), FormatYAML)
			assert.Error(t, err)
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	want := decodeString(t, texturedPixelYAML)
	for _, format := range []Format{FormatYAML, FormatMsgPack} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, want, format))
			got, err := Decode(&buf, format)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a/b/shader.yaml", FormatYAML, false},
		{"shader.yml", FormatYAML, false},
		{"dump.msgpack", FormatMsgPack, false},
		{"dump.mpk", FormatMsgPack, false},
		{"shader.fxo", 0, true},
		{"shader", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgram_ConstantFor(t *testing.T) {
	p := &Program{
		Type:  ProgramVertex,
		Major: 2,
		Constants: []ConstantDeclaration{
			{Name: "WorldViewProj", RegisterSet: SetFloat4, RegisterIndex: 4, RegisterCount: 4, Class: ClassMatrixColumns, Type: ParamFloat, Rows: 4, Columns: 4},
			{Name: "UseFog", RegisterSet: SetBool, RegisterIndex: 0, RegisterCount: 1, Class: ClassScalar, Type: ParamBool},
		},
	}
	c := p.ConstantFor(Const(6))
	require.NotNil(t, c)
	assert.Equal(t, "WorldViewProj", c.Name)
	assert.Nil(t, p.ConstantFor(Const(8)))
	assert.Nil(t, p.ConstantFor(Const(0)))
	b := p.ConstantFor(RegisterKey{Type: RegisterConstBool, Number: 0})
	require.NotNil(t, b)
	assert.Equal(t, "UseFog", b.Name)
}
