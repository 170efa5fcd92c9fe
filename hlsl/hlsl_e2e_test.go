// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gogpu/dxdec/diag"
	"github.com/gogpu/dxdec/hlsl"
	"github.com/gogpu/dxdec/ir"
	"github.com/gogpu/dxdec/lower"
	"github.com/gogpu/dxdec/rewrite"
	"github.com/gogpu/dxdec/shader"
)

// decode parses a program written in the YAML interchange format.
func decode(t *testing.T, source string) *shader.Program {
	t.Helper()
	prog, err := shader.Decode(strings.NewReader(source), shader.FormatYAML)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return prog
}

// lift builds and simplifies the expression graph of prog.
func lift(t *testing.T, prog *shader.Program) *ir.Program {
	t.Helper()
	module, err := lower.Build(prog, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	rewrite.New(nil).Run(module)
	return module
}

// compileGraph decompiles source through the lifted graph.
func compileGraph(t *testing.T, source string, opts *hlsl.Options) (string, *hlsl.TranslationInfo) {
	t.Helper()
	prog := decode(t, source)
	code, info, err := hlsl.Compile(prog, lift(t, prog), opts)
	if err != nil {
		t.Fatalf("HLSL Compile failed: %v", err)
	}
	return code, info
}

// compileDirect decompiles source one instruction at a time.
func compileDirect(t *testing.T, source string, opts *hlsl.Options) (string, *hlsl.TranslationInfo) {
	t.Helper()
	if opts == nil {
		opts = hlsl.DefaultOptions()
	}
	opts.SkipGraph = true
	code, info, err := hlsl.Compile(decode(t, source), nil, opts)
	if err != nil {
		t.Fatalf("HLSL Compile failed: %v", err)
	}
	return code, info
}

// assertContains checks that the HLSL output contains the expected substring.
func assertContains(t *testing.T, code, expected string) {
	t.Helper()
	if !strings.Contains(code, expected) {
		t.Errorf("expected HLSL output to contain %q\n\nGot:\n%s", expected, code)
	}
}

// assertNotContains checks that the HLSL output does NOT contain the given substring.
func assertNotContains(t *testing.T, code, unexpected string) {
	t.Helper()
	if strings.Contains(code, unexpected) {
		t.Errorf("expected HLSL output NOT to contain %q\n\nGot:\n%s", unexpected, code)
	}
}

func assertStrategy(t *testing.T, info *hlsl.TranslationInfo, want hlsl.Strategy, failed ...hlsl.Strategy) {
	t.Helper()
	if info.Strategy != want {
		t.Errorf("Strategy = %v, want %v", info.Strategy, want)
	}
	if len(info.Failed) != len(failed) {
		t.Fatalf("Failed = %v, want %v", info.Failed, failed)
	}
	for i := range failed {
		if info.Failed[i] != failed[i] {
			t.Errorf("Failed = %v, want %v", info.Failed, failed)
		}
	}
}

// =============================================================================
// Arithmetic
// =============================================================================

const movPartial = `
type: pixel
major: 2
instructions:
  - op: dcl
    dest: {reg: t0}
  - op: mov
    dest: {reg: r0, mask: xyz}
    src: [{reg: t0}]
  - op: mov
    dest: {reg: oC0}
    src: [{reg: r0}]
`

func TestE2E_MovWriteMask(t *testing.T) {
	code, info := compileDirect(t, movPartial, nil)
	assertStrategy(t, info, hlsl.StrategyDirect)
	assertContains(t, code, "float4 PixelMain(float4 texcoord : TEXCOORD0) : COLOR0")
	assertContains(t, code, "float4 color = 0;")
	assertContains(t, code, "float4 r0;")
	assertContains(t, code, "r0.xyz = texcoord.xyz;")
	assertContains(t, code, "color = r0;")
	assertContains(t, code, "return color;")
}

func TestE2E_MovWriteMaskGraph(t *testing.T) {
	code, info := compileGraph(t, movPartial, nil)
	assertStrategy(t, info, hlsl.StrategyGraph)
	assertContains(t, code, "color.x = texcoord.x;")
	assertContains(t, code, "color.z = texcoord.z;")
	// The w lane was never written, so r0 is still read and declared.
	assertContains(t, code, "color.w = r0.w;")
	assertContains(t, code, "float4 r0;")
}

func TestE2E_DotProduct(t *testing.T) {
	source := `
type: vertex
major: 2
instructions:
  - op: dcl
    dest: {reg: v0}
    decl: {usage: position}
  - op: dcl
    dest: {reg: v1}
    decl: {usage: normal}
  - op: dp3
    dest: {reg: oPos}
    src: [{reg: v0}, {reg: v1}]
`
	for name, compile := range map[string]func(*testing.T, string, *hlsl.Options) (string, *hlsl.TranslationInfo){
		"graph":  compileGraph,
		"direct": compileDirect,
	} {
		t.Run(name, func(t *testing.T) {
			code, _ := compile(t, source, nil)
			assertContains(t, code, "struct VertexMain_Input {")
			assertContains(t, code, "float4 normal : NORMAL;")
			assertContains(t, code, "dot(")
			assertContains(t, code, "i.normal")
		})
	}
}

const multiplyAdd = `
type: pixel
major: 2
instructions:
  - op: dcl
    dest: {reg: t0}
  - op: mad
    dest: {reg: r0}
    src: [{reg: t0}, {reg: c0}, {reg: c1}]
  - op: mov
    dest: {reg: oC0}
    src: [{reg: r0}]
`

func TestE2E_MultiplyAddPathsAgree(t *testing.T) {
	graph, info := compileGraph(t, multiplyAdd, nil)
	assertStrategy(t, info, hlsl.StrategyGraph)
	assertContains(t, graph, "color = texcoord * c0 + c1;")

	direct, _ := compileDirect(t, multiplyAdd, nil)
	assertContains(t, direct, "r0 = texcoord * c0 + c1;")
	assertContains(t, direct, "color = r0;")

	for _, code := range []string{graph, direct} {
		assertContains(t, code, "float4 c0 : register(c0);")
		assertContains(t, code, "float4 c1 : register(c1);")
	}
}

func TestE2E_MultiplyAddKept(t *testing.T) {
	prog := decode(t, multiplyAdd)
	module, err := lower.Build(prog, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	rewrite.New(&rewrite.Options{KeepMultiplyAdd: true}).Run(module)
	code, _, err := hlsl.Compile(prog, module, nil)
	if err != nil {
		t.Fatalf("HLSL Compile failed: %v", err)
	}
	assertContains(t, code, "color = texcoord * c0 + c1;")
}

const scalarMultiply = `
type: pixel
major: 2
instructions:
  - op: dcl
    dest: {reg: t0}
  - op: mul
    dest: {reg: r0, mask: x}
    src: [{reg: t0}, {reg: c0}]
  - op: mov
    dest: {reg: oC0}
    src: [{reg: r0}]
`

func TestE2E_ScalarWrite(t *testing.T) {
	direct, _ := compileDirect(t, scalarMultiply, nil)
	assertContains(t, direct, "r0.x = texcoord.x * c0.x;")

	graph, _ := compileGraph(t, scalarMultiply, nil)
	assertContains(t, graph, "color.x = texcoord.x * c0.x;")
	assertContains(t, graph, "color.y = r0.y;")
}

func TestE2E_SaturateAndModifiers(t *testing.T) {
	source := `
type: pixel
major: 2
instructions:
  - op: dcl
    dest: {reg: t0}
  - op: add
    dest: {reg: oC0, result: sat}
    src: [{reg: t0, mod: neg}, {reg: c0, swizzle: x, mod: abs}]
`
	code, _ := compileDirect(t, source, nil)
	assertContains(t, code, "color = saturate(-texcoord + abs(c0.xxxx));")
}

func TestE2E_ScalarReplicates(t *testing.T) {
	source := `
type: vertex
major: 2
instructions:
  - op: dcl
    dest: {reg: v0}
    decl: {usage: position}
  - op: rcp
    dest: {reg: r0, mask: xy}
    src: [{reg: v0, swizzle: w}]
  - op: mul
    dest: {reg: oPos}
    src: [{reg: v0}, {reg: r0, swizzle: x}]
`
	code, _ := compileDirect(t, source, nil)
	// r0 is only ever touched through .xy, so it is declared float2.
	assertContains(t, code, "float2 r0;")
	assertContains(t, code, "r0 = (1.0 / position.w).xx;")
	assertContains(t, code, "position_1 = position * r0.xxxx;")
}

// =============================================================================
// Constants
// =============================================================================

const transform = `
type: vertex
major: 2
constants:
  - name: WorldViewProj
    set: float4
    index: 0
    count: 4
    class: matrix_columns
    type: float
    rows: 4
    columns: 4
instructions:
  - op: dcl
    dest: {reg: v0}
    decl: {usage: position}
  - op: m4x4
    dest: {reg: oPos}
    src: [{reg: v0}, {reg: c0}]
`

func TestE2E_ConstantTable(t *testing.T) {
	direct, _ := compileDirect(t, transform, nil)
	assertContains(t, direct, "row_major float4x4 WorldViewProj : register(c0);")
	assertContains(t, direct, "position_1 = mul(WorldViewProj, position);")
	assertNotContains(t, direct, "float4 c0")

	graph, _ := compileGraph(t, transform, nil)
	assertContains(t, graph, "row_major float4x4 WorldViewProj : register(c0);")
	assertContains(t, graph, "WorldViewProj[3]")
	assertNotContains(t, graph, "float4 c3")
}

const scaled = `
type: vertex
major: 2
constants:
  - name: Scale
    set: float4
    index: 0
    count: 1
    class: scalar
    type: float
    default: [2]
instructions:
  - op: dcl
    dest: {reg: v0}
    decl: {usage: position}
  - op: mul
    dest: {reg: oPos}
    src: [{reg: v0}, {reg: c0, swizzle: x}]
`

func TestE2E_ScalarConstant(t *testing.T) {
	graph, _ := compileGraph(t, scaled, nil)
	assertContains(t, graph, "float Scale : register(c0);")
	assertContains(t, graph, "position_1 = position * Scale;")

	direct, _ := compileDirect(t, scaled, nil)
	assertContains(t, direct, "position_1 = position * Scale.xxxx;")
}

// offset declares a vector constant of the given width and reads it
// through the full .xyzw swizzle.
func offset(columns int) string {
	return fmt.Sprintf(`
type: vertex
major: 2
constants:
  - name: Offset
    set: float4
    index: 0
    count: 1
    class: vector
    type: float
    rows: 1
    columns: %d
instructions:
  - op: dcl
    dest: {reg: v0}
    decl: {usage: position}
  - op: add
    dest: {reg: oPos}
    src: [{reg: v0}, {reg: c0}]
`, columns)
}

func TestE2E_NarrowVectorConstant(t *testing.T) {
	tests := []struct {
		columns int
		decl    string
		read    string
	}{
		{2, "float2 Offset : register(c0);", "position_1 = position + Offset.xyyy;"},
		{3, "float3 Offset : register(c0);", "position_1 = position + Offset.xyzz;"},
		{4, "float4 Offset : register(c0);", "position_1 = position + Offset;"},
	}
	for _, tt := range tests {
		source := offset(tt.columns)
		graph, info := compileGraph(t, source, nil)
		assertStrategy(t, info, hlsl.StrategyGraph)
		assertContains(t, graph, tt.decl)
		assertContains(t, graph, tt.read)
		assertNotContains(t, graph, "Offset.xyzw")

		direct, _ := compileDirect(t, source, nil)
		assertContains(t, direct, tt.decl)
		assertContains(t, direct, tt.read)
		assertNotContains(t, direct, "Offset.xyzw")
	}
}

func TestE2E_RelativeInputReported(t *testing.T) {
	const source = `
type: vertex
major: 2
instructions:
  - op: dcl
    dest: {reg: v0}
    decl: {usage: position}
  - op: mov
    dest: {reg: oPos}
    src: [{reg: v0, rel: a0.x}]
`
	for _, graph := range []bool{true, false} {
		bag := diag.NewBag(0)
		opts := hlsl.DefaultOptions()
		opts.Diagnostics = bag
		var code string
		if graph {
			code, _ = compileGraph(t, source, opts)
		} else {
			code, _ = compileDirect(t, source, opts)
			assertContains(t, code, "position_1 = position;")
		}
		if got := bag.Count(diag.GenRelativeIgnored); got != 1 {
			t.Errorf("graph=%v: relative index reported %d times, want 1", graph, got)
		}
		if !bag.HasWarnings() {
			t.Errorf("graph=%v: ignored relative index is not a warning", graph)
		}
	}
}

func TestE2E_DefaultValues(t *testing.T) {
	opts := hlsl.DefaultOptions()
	opts.OutputDefaultValues = true
	code, _ := compileGraph(t, scaled, opts)
	assertContains(t, code, "float Scale : register(c0) = 2.0;")
}

func TestE2E_CommonDeclarations(t *testing.T) {
	opts := hlsl.DefaultOptions()
	opts.CommonDeclarations = []string{"Scale"}
	code, _ := compileGraph(t, scaled, opts)
	assertNotContains(t, code, "register(c0)")
	assertContains(t, code, "position * Scale;")
}

func TestE2E_Literals(t *testing.T) {
	source := `
type: pixel
major: 2
instructions:
  - op: def
    dest: {reg: c3}
    float: [0.5, 1, 0, 0.25]
  - op: mul
    dest: {reg: oC0}
    src: [{reg: c3}, {reg: c3, swizzle: x}]
`
	code, _ := compileDirect(t, source, nil)
	assertContains(t, code, "color = float4(0.5, 1.0, 0.0, 0.25) * float4(0.5, 0.5, 0.5, 0.5);")
	assertNotContains(t, code, "register(c3)")
}

// =============================================================================
// Pixel Shader 1.x
// =============================================================================

func TestE2E_PixelShader1Output(t *testing.T) {
	source := `
type: pixel
major: 1
minor: 1
instructions:
  - op: tex
    dest: {reg: t0}
  - op: mul
    dest: {reg: r0}
    src: [{reg: t0}, {reg: v0}]
`
	code, info := compileGraph(t, source, nil)
	assertStrategy(t, info, hlsl.StrategyGraph)
	assertContains(t, code, "sampler2D s0 : register(s0);")
	assertContains(t, code, "struct PixelMain_Input {")
	assertContains(t, code, "float4 PixelMain(PixelMain_Input i) : COLOR0")
	assertContains(t, code, "float4 r0 = 0;")
	assertContains(t, code, "tex2D(s0, ")
	assertContains(t, code, "return r0;")
}

func TestE2E_TextureSampling(t *testing.T) {
	source := `
type: pixel
major: 2
instructions:
  - op: dcl
    dest: {reg: t0, mask: xy}
  - op: dcl
    dest: {reg: s0}
    decl: {texture: 2d}
  - op: texld
    dest: {reg: oC0}
    src: [{reg: t0}, {reg: s0}]
`
	for name, compile := range map[string]func(*testing.T, string, *hlsl.Options) (string, *hlsl.TranslationInfo){
		"graph":  compileGraph,
		"direct": compileDirect,
	} {
		t.Run(name, func(t *testing.T) {
			code, _ := compile(t, source, nil)
			assertContains(t, code, "sampler2D s0 : register(s0);")
			assertContains(t, code, "float4 PixelMain(float2 texcoord : TEXCOORD0) : COLOR0")
			assertContains(t, code, "color = tex2D(s0, texcoord);")
		})
	}
}

// =============================================================================
// Flow Control
// =============================================================================

const repeat = `
type: vertex
major: 2
instructions:
  - op: dcl
    dest: {reg: v0}
    decl: {usage: position}
  - op: defi
    dest: {reg: i0}
    int: [4, 0, 1, 0]
  - op: mov
    dest: {reg: r0}
    src: [{reg: v0}]
  - op: rep
    src: [{reg: i0}]
  - op: add
    dest: {reg: r0}
    src: [{reg: r0}, {reg: v0}]
  - op: endrep
  - op: mov
    dest: {reg: oPos}
    src: [{reg: r0}]
`

func TestE2E_DirectLoop(t *testing.T) {
	code, info := compileDirect(t, repeat, nil)
	assertStrategy(t, info, hlsl.StrategyDirect)
	assertContains(t, code, "float4 r0;")
	assertContains(t, code, "    for (int it0 = 0; it0 < 4; ++it0) {\n        r0 = r0 + position;\n    }\n")
	assertContains(t, code, "position_1 = r0;")
}

func TestE2E_GraphLoop(t *testing.T) {
	code, info := compileGraph(t, repeat, nil)
	assertStrategy(t, info, hlsl.StrategyGraph)
	assertContains(t, code, "for (int it0 = 0; it0 < ")
	assertContains(t, code, "float4 r0;")
}

func TestE2E_DirectBranch(t *testing.T) {
	source := `
type: pixel
major: 2
minor: 1
instructions:
  - op: dcl
    dest: {reg: t0}
  - op: ifc
    control: gt
    src: [{reg: t0, swizzle: x}, {reg: c0, swizzle: x}]
  - op: mov
    dest: {reg: oC0}
    src: [{reg: t0}]
  - op: else
  - op: mov
    dest: {reg: oC0}
    src: [{reg: c0}]
  - op: endif
`
	code, info := compileDirect(t, source, nil)
	assertStrategy(t, info, hlsl.StrategyDirect)
	assertContains(t, code, "    if (texcoord.x > c0.x) {\n        color = texcoord;\n    } else {\n        color = c0;\n    }\n")
}

func TestE2E_UnbalancedFlowFallsBack(t *testing.T) {
	source := `
type: vertex
major: 2
instructions:
  - op: dcl
    dest: {reg: v0}
    decl: {usage: position}
  - op: rep
    src: [{reg: i0}]
  - op: mov
    dest: {reg: oPos}
    src: [{reg: v0}]
`
	bag := diag.NewBag(0)
	opts := hlsl.DefaultOptions()
	opts.Diagnostics = bag
	code, info := compileDirect(t, source, opts)
	assertStrategy(t, info, hlsl.StrategyPassthrough, hlsl.StrategyDirect)
	assertContains(t, code, "position_1 = position;")
	if bag.Count(diag.GenStrategyFailed) != 1 {
		t.Errorf("strategy failures reported = %d, want 1", bag.Count(diag.GenStrategyFailed))
	}
}

// =============================================================================
// Fallbacks and Guards
// =============================================================================

func TestE2E_PassthroughZeroesUnmatchedOutput(t *testing.T) {
	source := `
type: pixel
major: 1
minor: 1
instructions:
  - op: tex
    dest: {reg: t0}
  - op: texbem
    dest: {reg: t1}
    src: [{reg: t0}]
  - op: mov
    dest: {reg: r0}
    src: [{reg: t1}]
`
	bag := diag.NewBag(0)
	opts := hlsl.DefaultOptions()
	opts.Diagnostics = bag
	code, info, err := hlsl.Compile(decode(t, source), nil, opts)
	if err != nil {
		t.Fatalf("HLSL Compile failed: %v", err)
	}
	assertStrategy(t, info, hlsl.StrategyPassthrough, hlsl.StrategyDirect)
	assertContains(t, code, "// Warning: no input matches output COLOR0")
	assertContains(t, code, "r0 = 0; // unmapped output")
	assertContains(t, code, "return r0;")
	if bag.Count(diag.GenUnsupportedOpcode) != 1 {
		t.Errorf("unsupported opcode reported %d times, want 1", bag.Count(diag.GenUnsupportedOpcode))
	}
	if bag.Count(diag.GenPassthroughZero) != 1 {
		t.Errorf("zeroed outputs reported %d times, want 1", bag.Count(diag.GenPassthroughZero))
	}
}

func TestE2E_StubWithoutInputs(t *testing.T) {
	source := `
type: vertex
major: 2
instructions:
  - op: texbem
    dest: {reg: oPos}
    src: [{reg: c0}]
`
	bag := diag.NewBag(0)
	opts := hlsl.DefaultOptions()
	opts.Diagnostics = bag
	opts.AddComments = true
	code, info, err := hlsl.Compile(decode(t, source), nil, opts)
	if err != nil {
		t.Fatalf("HLSL Compile failed: %v", err)
	}
	assertStrategy(t, info, hlsl.StrategyStub, hlsl.StrategyDirect, hlsl.StrategyPassthrough)
	assertContains(t, code, "float4 VertexMain() : POSITION")
	assertContains(t, code, "// WARNING: No code could be decompiled. Output is a stub.")
	assertContains(t, code, "// passthrough emission failed, using stub")
	assertContains(t, code, "float4 position = 0;")
	assertContains(t, code, "return position;")
	if bag.Count(diag.GenStubEmitted) != 1 {
		t.Errorf("stub reported %d times, want 1", bag.Count(diag.GenStubEmitted))
	}
}

func TestE2E_StatementBudget(t *testing.T) {
	source := `
type: vertex
major: 2
instructions:
  - op: dcl
    dest: {reg: v0}
    decl: {usage: position}
  - op: mov
    dest: {reg: r0}
    src: [{reg: v0}]
  - op: mov
    dest: {reg: oPos}
    src: [{reg: r0}]
`
	bag := diag.NewBag(0)
	opts := hlsl.DefaultOptions()
	opts.MaxStatements = 1
	opts.Diagnostics = bag
	code, info := compileDirect(t, source, opts)
	assertStrategy(t, info, hlsl.StrategyPassthrough, hlsl.StrategyDirect)
	assertContains(t, code, "position_1 = position;")
	assertNotContains(t, code, "r0")
	if bag.Count(diag.GenStatementBudget) != 1 {
		t.Errorf("budget overruns reported %d times, want 1", bag.Count(diag.GenStatementBudget))
	}
}

const passthrough = `
type: vertex
major: 2
instructions:
  - op: dcl
    dest: {reg: v0}
    decl: {usage: position}
  - op: mov
    dest: {reg: oPos}
    src: [{reg: v0}]
`

// corrupt replaces the value of the first assignment with a node built by
// wrap over the original value.
func corrupt(t *testing.T, wrap func(g *ir.Graph, value ir.NodeHandle) ir.NodeHandle) (*shader.Program, *ir.Program) {
	t.Helper()
	prog := decode(t, passthrough)
	module, err := lower.Build(prog, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	first, ok := module.Body[0].Kind.(ir.StmtAssign)
	if !ok {
		t.Fatalf("first statement is %T, want an assignment", module.Body[0].Kind)
	}
	first.Value = wrap(module.Graph, first.Value)
	module.Body[0] = ir.Statement{Kind: first}
	return prog, module
}

func TestE2E_CycleGuard(t *testing.T) {
	prog, module := corrupt(t, func(g *ir.Graph, value ir.NodeHandle) ir.NodeHandle {
		h := g.Binary(ir.BinaryAdd, value, g.Constant(1))
		g.Nodes[h].Inputs[1] = h
		return h
	})

	bag := diag.NewBag(0)
	opts := hlsl.DefaultOptions()
	opts.Verbose = true
	opts.Diagnostics = bag
	code, info, err := hlsl.Compile(prog, module, opts)
	if err != nil {
		t.Fatalf("HLSL Compile failed: %v", err)
	}
	assertStrategy(t, info, hlsl.StrategyGraph)
	if info.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", info.Skipped)
	}
	assertContains(t, code, "position_1.y = position.y;")
	assertContains(t, code, "// Skipped assignments:")
	assertContains(t, code, "Cycle detected at node")
	for _, line := range strings.Split(code, "\n") {
		if strings.Contains(line, "ERROR") && !strings.HasPrefix(strings.TrimSpace(line), "//") {
			t.Errorf("error marker outside a comment: %q", line)
		}
	}
	if bag.Count(diag.GenRenderingDegraded) == 0 {
		t.Error("degraded rendering not reported")
	}
}

func TestE2E_NoValidAssignmentsFallsToDirect(t *testing.T) {
	prog := decode(t, passthrough)
	module, err := lower.Build(prog, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	g := module.Graph
	assigned := 0
	for i, st := range module.Body {
		a, ok := st.Kind.(ir.StmtAssign)
		if !ok {
			continue
		}
		h := g.Binary(ir.BinaryAdd, a.Value, g.Constant(1))
		g.Nodes[h].Inputs[1] = h
		a.Value = h
		module.Body[i] = ir.Statement{Kind: a}
		assigned++
	}
	if assigned == 0 {
		t.Fatal("program has no assignments")
	}

	code, info, err := hlsl.Compile(prog, module, nil)
	if err != nil {
		t.Fatalf("HLSL Compile failed: %v", err)
	}
	assertStrategy(t, info, hlsl.StrategyDirect, hlsl.StrategyGraph)
	assertContains(t, code, "position_1 = position;")
	assertNotContains(t, code, "Cycle detected")
}

func TestE2E_DepthGuard(t *testing.T) {
	prog, module := corrupt(t, func(g *ir.Graph, value ir.NodeHandle) ir.NodeHandle {
		for i := 0; i < 1500; i++ {
			value = g.Unary(ir.UnaryNegate, value)
		}
		return value
	})

	code, info, err := hlsl.Compile(prog, module, nil)
	if err != nil {
		t.Fatalf("HLSL Compile failed: %v", err)
	}
	assertStrategy(t, info, hlsl.StrategyGraph)
	if info.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", info.Skipped)
	}
	assertNotContains(t, code, "ERROR")
	assertContains(t, code, "position_1.w = position.w;")
}

func TestE2E_AddComments(t *testing.T) {
	opts := hlsl.DefaultOptions()
	opts.AddComments = true
	code, _ := compileGraph(t, passthrough, opts)
	assertContains(t, code, "// mov oPos, v0\n")
	assertContains(t, code, "position_1 = position;")
}

func TestE2E_Preshader(t *testing.T) {
	source := passthrough + "preshader: |\n  mul c4, c0, c1\n"
	code, _ := compileGraph(t, source, nil)
	assertContains(t, code, "    // preshader\n    mul c4, c0, c1\n")

	opts := hlsl.DefaultOptions()
	opts.IgnorePreshader = true
	code, _ = compileGraph(t, source, opts)
	assertNotContains(t, code, "preshader")
}
