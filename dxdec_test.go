package dxdec

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/dxdec/diag"
	"github.com/gogpu/dxdec/hlsl"
	"github.com/gogpu/dxdec/lower"
	"github.com/gogpu/dxdec/shader"
)

func readProgram(t *testing.T, name string) *shader.Program {
	t.Helper()
	prog, err := shader.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return prog
}

func TestDecompile_Graph(t *testing.T) {
	bag := diag.NewBag(0)
	opts := DefaultOptions()
	opts.Diagnostics = bag
	opts.VerifyGraph = true

	code, info, err := Decompile(readProgram(t, "transform.yaml"), opts)
	require.NoError(t, err)

	assert.Equal(t, hlsl.StrategyGraph, info.Strategy)
	assert.Empty(t, info.Failed)
	assert.Equal(t, "vs_2_0", info.Profile)
	assert.Equal(t, "VertexMain", info.EntryPoint)
	assert.Contains(t, code, "row_major float4x4 WorldViewProj : register(c0);")
	assert.Contains(t, code, "WorldViewProj[3]")
	assert.False(t, bag.HasErrors())
}

func TestDecompile_SkipAnalysis(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipAnalysis = true

	code, info, err := Decompile(readProgram(t, "transform.yaml"), opts)
	require.NoError(t, err)

	assert.Equal(t, hlsl.StrategyDirect, info.Strategy)
	assert.Contains(t, code, "o.position = mul(WorldViewProj, i.position);")
}

func TestDecompile_Loop(t *testing.T) {
	prog := readProgram(t, "repeat.yaml")

	code, info, err := Decompile(prog, nil)
	require.NoError(t, err)
	assert.Equal(t, hlsl.StrategyGraph, info.Strategy)
	assert.Contains(t, code, "for (int it0 = 0; it0 < ")

	code, info, err = Decompile(prog, &Options{SkipAnalysis: true})
	require.NoError(t, err)
	assert.Equal(t, hlsl.StrategyDirect, info.Strategy)
	assert.Contains(t, code, "    for (int it0 = 0; it0 < 4; ++it0) {\n        r0 = r0 + position;\n    }\n")
}

func TestDecompile_UnbalancedFlowDegrades(t *testing.T) {
	bag := diag.NewBag(0)
	opts := DefaultOptions()
	opts.Diagnostics = bag

	code, info, err := Decompile(readProgram(t, "unbalanced.yaml"), opts)
	require.NoError(t, err)

	assert.Equal(t, hlsl.StrategyPassthrough, info.Strategy)
	assert.Equal(t, []hlsl.Strategy{hlsl.StrategyDirect}, info.Failed)
	assert.Contains(t, code, "position_1 = position;")
	assert.Equal(t, 1, bag.Count(diag.BuildUnbalancedFlow))
}

func TestDecompile_FatalConstructionError(t *testing.T) {
	bag := diag.NewBag(0)
	opts := DefaultOptions()
	opts.Diagnostics = bag

	code, info, err := Decompile(readProgram(t, "defb.yaml"), opts)
	require.Error(t, err)
	assert.True(t, lower.IsKind(err, lower.ErrUnsupportedOpcode), "error = %v", err)
	assert.Contains(t, err.Error(), "lowering: ")
	assert.Empty(t, code)
	assert.Nil(t, info)
	assert.True(t, bag.HasErrors())
}

func TestDecompile_NilProgram(t *testing.T) {
	_, _, err := Decompile(nil, nil)
	assert.Error(t, err)
}

func TestDecompile_Options(t *testing.T) {
	opts := DefaultOptions()
	opts.EntryPoint = "main"
	opts.AddComments = true
	opts.Header = true

	code, info, err := Decompile(readProgram(t, "transform.yaml"), opts)
	require.NoError(t, err)

	assert.Equal(t, "main", info.EntryPoint)
	assert.Regexp(t, `^// vs_2_0\n`, code)
	assert.Contains(t, code, " main(")
	assert.Contains(t, code, "// m4x4 oPos, v0, c0\n")
}

func TestDecompileFile(t *testing.T) {
	_, info, err := DecompileFile(filepath.Join("testdata", "repeat.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, "vs_2_0", info.Profile)

	_, _, err = DecompileFile(filepath.Join("testdata", "missing.yaml"), nil)
	assert.Error(t, err)

	_, _, err = DecompileFile(filepath.Join("testdata", "defb.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defb.yaml")
}

func TestLoadOptions(t *testing.T) {
	opts, err := LoadOptions(filepath.Join("testdata", "options.toml"))
	require.NoError(t, err)

	want := DefaultOptions()
	want.EntryPoint = "main"
	want.OutputDefaultValues = true
	want.AddComments = true
	want.MaxStatements = 512
	want.MaxReductions = 10000
	want.CommonDeclarations = []string{"Time", "ViewProj"}
	want.VerifyGraph = true
	assert.Equal(t, want, opts)
}

func TestLoadOptions_UnknownKey(t *testing.T) {
	_, err := LoadOptions(filepath.Join("testdata", "unknown_key.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "emit_comments")
}

func TestLoadOptions_MissingFile(t *testing.T) {
	_, err := LoadOptions(filepath.Join("testdata", "missing.toml"))
	assert.Error(t, err)
}

func TestLift(t *testing.T) {
	module, err := Lift(readProgram(t, "repeat.yaml"), &Options{VerifyGraph: true})
	require.NoError(t, err)
	assert.True(t, module.Structured)

	stats := Simplify(module, nil)
	assert.False(t, stats.Truncated)

	_, err = Lift(readProgram(t, "unbalanced.yaml"), nil)
	assert.True(t, lower.IsKind(err, lower.ErrUnbalancedFlow))
}
