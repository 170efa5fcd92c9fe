// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/dxdec/shader"
)

// =============================================================================
// Literals
// =============================================================================

// FormatFloat formats a float32 literal: the shortest decimal that reads
// back to the same value, always carrying a decimal point or exponent.
// NaN and the infinities use the tokens the Direct3D compiler prints.
func FormatFloat(f float32) string {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return "(0.0/0.0)"
	case math.IsInf(v, 1):
		return "1.#INF"
	case math.IsInf(v, -1):
		return "-1.#INF"
	}
	s := strconv.FormatFloat(v, 'g', -1, 32)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// formatInt formats an integer constant lane. Values that are not whole
// numbers fall back to float syntax.
func formatInt(f float32) string {
	if f == float32(math.Trunc(float64(f))) && math.Abs(float64(f)) < 1<<31 {
		return strconv.Itoa(int(f))
	}
	return FormatFloat(f)
}

func formatBool(f float32) string {
	if f != 0 {
		return "true"
	}
	return "false"
}

// vectorType returns float, float2, float3 or float4.
func vectorType(base string, width int) string {
	if width <= 1 {
		return base
	}
	return fmt.Sprintf("%s%d", base, width)
}

// constructor renders a typeN(...) value, or the lone element for width 1.
func constructor(base string, parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return fmt.Sprintf("%s(%s)", vectorType(base, len(parts)), strings.Join(parts, ", "))
}

// swizzleText renders the letters of a component list.
func swizzleText(components []int) string {
	b := make([]byte, len(components))
	for i, c := range components {
		b[i] = shader.ComponentName(c)
	}
	return string(b)
}

// isPrefix reports whether components is 0, 1, ..., n-1.
func isPrefix(components []int, n int) bool {
	if len(components) != n {
		return false
	}
	for i, c := range components {
		if c != i {
			return false
		}
	}
	return true
}

// isAtom reports whether expr can take a swizzle suffix without
// parentheses: an identifier, member access, index, or a single call.
func isAtom(expr string) bool {
	if expr == "" {
		return false
	}
	depth := 0
	for i, r := range expr {
		switch {
		case r == '(' || r == '[':
			if depth == 0 && i == 0 {
				return false
			}
			depth++
		case r == ')' || r == ']':
			depth--
			if depth == 0 && i != len(expr)-1 && expr[i+1] != '.' && expr[i+1] != '[' {
				return false
			}
		case depth > 0:
		case r == '_' || r == '.' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return depth == 0 && !(expr[0] >= '0' && expr[0] <= '9') && expr[0] != '.'
}

// swizzle appends a component suffix to expr.
func swizzle(expr string, components []int) string {
	if isAtom(expr) {
		return expr + "." + swizzleText(components)
	}
	return "(" + expr + ")." + swizzleText(components)
}

// =============================================================================
// Semantics
// =============================================================================

// usageSemantic returns the semantic name of a dcl usage.
func usageSemantic(u shader.Usage) string {
	switch u {
	case shader.UsagePosition:
		return "POSITION"
	case shader.UsageBlendWeight:
		return "BLENDWEIGHT"
	case shader.UsageBlendIndices:
		return "BLENDINDICES"
	case shader.UsageNormal:
		return "NORMAL"
	case shader.UsagePointSize:
		return "PSIZE"
	case shader.UsageTexCoord:
		return "TEXCOORD"
	case shader.UsageTangent:
		return "TANGENT"
	case shader.UsageBinormal:
		return "BINORMAL"
	case shader.UsageTessFactor:
		return "TESSFACTOR"
	case shader.UsagePositionT:
		return "POSITIONT"
	case shader.UsageColor:
		return "COLOR"
	case shader.UsageFog:
		return "FOG"
	case shader.UsageDepth:
		return "DEPTH"
	case shader.UsageSample:
		return "SAMPLE"
	default:
		return "TEXCOORD"
	}
}

// semantic joins a semantic name and index. TEXCOORD and COLOR always
// carry their index; other names only above zero.
func semantic(name string, index uint32) string {
	if index > 0 || name == "TEXCOORD" || name == "COLOR" {
		return fmt.Sprintf("%s%d", name, index)
	}
	return name
}

// memberName derives a struct member name from a semantic: COLOR0 becomes
// color and TEXCOORD1 becomes texcoord1.
func memberName(sem string) string {
	name := strings.ToLower(sem)
	n := len(name)
	if n > 1 && name[n-1] == '0' && (name[n-2] < '0' || name[n-2] > '9') {
		return name[:n-1]
	}
	return name
}

// =============================================================================
// Operators
// =============================================================================

// comparisonOperator returns the HLSL operator of an ifc/breakc control.
func comparisonOperator(c shader.Control) string {
	return c.Operator()
}

// samplerType returns the HLSL sampler object type of a declared texture.
func samplerType(t shader.TextureType) string {
	switch t {
	case shader.Texture1D:
		return "sampler1D"
	case shader.TextureCube:
		return "samplerCUBE"
	case shader.TextureVolume:
		return "sampler3D"
	}
	return "sampler2D"
}

// textureFunction returns the sampling intrinsic for a sampler kind:
// tex2D, texCUBEproj, tex3Dlod and so on. suffix is "", "proj", "bias",
// "lod" or "grad".
func textureFunction(t shader.TextureType, suffix string) string {
	base := "tex2D"
	switch t {
	case shader.Texture1D:
		base = "tex1D"
	case shader.TextureCube:
		base = "texCUBE"
	case shader.TextureVolume:
		base = "tex3D"
	}
	return base + suffix
}

// textureFromParameter maps a constant table sampler type to a texture kind.
func textureFromParameter(t shader.ParameterType) shader.TextureType {
	switch t {
	case shader.ParamSampler1D:
		return shader.Texture1D
	case shader.ParamSampler3D:
		return shader.TextureVolume
	case shader.ParamSamplerCube:
		return shader.TextureCube
	}
	return shader.Texture2D
}
