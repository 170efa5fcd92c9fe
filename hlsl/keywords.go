// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "strings"

// UnnamedIdentifier is the default name for empty identifiers.
const UnnamedIdentifier = "_unnamed"

// reservedKeywords contains the HLSL keywords, reserved words and
// intrinsic function names understood by the Direct3D 9 era compilers.
// Constant table names that collide with one of them are escaped.
var reservedKeywords = map[string]struct{}{
	// =========================================================================
	// Keywords
	// =========================================================================
	"asm":               {},
	"asm_fragment":      {},
	"BlendState":        {},
	"bool":              {},
	"break":             {},
	"Buffer":            {},
	"case":              {},
	"cbuffer":           {},
	"centroid":          {},
	"class":             {},
	"column_major":      {},
	"compile":           {},
	"compile_fragment":  {},
	"CompileShader":     {},
	"const":             {},
	"continue":          {},
	"default":           {},
	"DepthStencilState": {},
	"discard":           {},
	"do":                {},
	"double":            {},
	"dword":             {},
	"else":              {},
	"export":            {},
	"extern":            {},
	"false":             {},
	"float":             {},
	"for":               {},
	"half":              {},
	"if":                {},
	"in":                {},
	"inline":            {},
	"inout":             {},
	"int":               {},
	"interface":         {},
	"linear":            {},
	"matrix":            {},
	"namespace":         {},
	"nointerpolation":   {},
	"noperspective":     {},
	"NULL":              {},
	"out":               {},
	"packoffset":        {},
	"pass":              {},
	"pixelfragment":     {},
	"PixelShader":       {},
	"precise":           {},
	"RasterizerState":   {},
	"return":            {},
	"register":          {},
	"row_major":         {},
	"sample":            {},
	"sampler":           {},
	"sampler1D":         {},
	"sampler2D":         {},
	"sampler3D":         {},
	"samplerCUBE":       {},
	"sampler_state":     {},
	"SamplerState":      {},
	"shared":            {},
	"snorm":             {},
	"stateblock":        {},
	"stateblock_state":  {},
	"static":            {},
	"string":            {},
	"struct":            {},
	"switch":            {},
	"tbuffer":           {},
	"technique":         {},
	"technique10":       {},
	"texture":           {},
	"Texture1D":         {},
	"Texture2D":         {},
	"Texture3D":         {},
	"TextureCube":       {},
	"true":              {},
	"typedef":           {},
	"uint":              {},
	"uniform":           {},
	"unorm":             {},
	"unsigned":          {},
	"vector":            {},
	"vertexfragment":    {},
	"VertexShader":      {},
	"void":              {},
	"volatile":          {},
	"while":             {},

	// =========================================================================
	// Reserved Words
	// =========================================================================
	"auto":             {},
	"catch":            {},
	"char":             {},
	"const_cast":       {},
	"delete":           {},
	"dynamic_cast":     {},
	"enum":             {},
	"explicit":         {},
	"friend":           {},
	"goto":             {},
	"long":             {},
	"mutable":          {},
	"new":              {},
	"operator":         {},
	"private":          {},
	"protected":        {},
	"public":           {},
	"reinterpret_cast": {},
	"short":            {},
	"signed":           {},
	"sizeof":           {},
	"static_cast":      {},
	"template":         {},
	"this":             {},
	"throw":            {},
	"try":              {},
	"typename":         {},
	"union":            {},
	"using":            {},
	"virtual":          {},

	// =========================================================================
	// Intrinsics emitted by the generator
	// =========================================================================
	"abs":         {},
	"clip":        {},
	"cos":         {},
	"cross":       {},
	"ddx":         {},
	"ddy":         {},
	"dot":         {},
	"exp":         {},
	"exp2":        {},
	"frac":        {},
	"lerp":        {},
	"lit":         {},
	"log2":        {},
	"max":         {},
	"min":         {},
	"mul":         {},
	"normalize":   {},
	"pow":         {},
	"rsqrt":       {},
	"saturate":    {},
	"sign":        {},
	"sin":         {},
	"step":        {},
	"tex1D":       {},
	"tex1Dbias":   {},
	"tex1Dgrad":   {},
	"tex1Dlod":    {},
	"tex1Dproj":   {},
	"tex2D":       {},
	"tex2Dbias":   {},
	"tex2Dgrad":   {},
	"tex2Dlod":    {},
	"tex2Dproj":   {},
	"tex3D":       {},
	"tex3Dbias":   {},
	"tex3Dgrad":   {},
	"tex3Dlod":    {},
	"tex3Dproj":   {},
	"texCUBE":     {},
	"texCUBEbias": {},
	"texCUBEgrad": {},
	"texCUBElod":  {},
	"texCUBEproj": {},
}

// caseInsensitiveKeywords contains keywords that are case-insensitive in HLSL.
// These need special handling to avoid conflicts.
var caseInsensitiveKeywords = map[string]struct{}{
	"asm":         {},
	"decl":        {},
	"pass":        {},
	"technique":   {},
	"texture1d":   {},
	"texture2d":   {},
	"texture3d":   {},
	"texturecube": {},
}

// typeShorthands contains all scalar, vector, and matrix type shorthands.
// Generated programmatically from base types.
var typeShorthands = func() map[string]struct{} {
	result := make(map[string]struct{})

	bases := []string{"bool", "int", "uint", "dword", "half", "float", "double"}
	for _, base := range bases {
		result[base] = struct{}{}
		for i := 1; i <= 4; i++ {
			result[base+string(rune('0'+i))] = struct{}{}
			for c := 1; c <= 4; c++ {
				result[base+string(rune('0'+i))+"x"+string(rune('0'+c))] = struct{}{}
			}
		}
	}
	return result
}()

// IsReserved checks if a name is an HLSL reserved keyword.
func IsReserved(name string) bool {
	if _, ok := reservedKeywords[name]; ok {
		return true
	}
	if _, ok := typeShorthands[name]; ok {
		return true
	}
	return false
}

// IsCaseInsensitiveReserved checks if a name conflicts with case-insensitive keywords.
// HLSL has some keywords that are case-insensitive (legacy behavior).
func IsCaseInsensitiveReserved(name string) bool {
	lower := strings.ToLower(name)
	_, ok := caseInsensitiveKeywords[lower]
	return ok
}

// Escape returns a safe identifier name.
// If the name is reserved or empty, it's prefixed with underscore.
// Characters that cannot appear in an identifier become underscores.
func Escape(name string) string {
	if name == "" {
		return UnnamedIdentifier
	}
	name = sanitize(name)
	if IsReserved(name) || IsCaseInsensitiveReserved(name) {
		return "_" + name
	}
	return name
}

// sanitize maps constant table names such as "$Light[0]" or "g.world" to
// identifiers.
func sanitize(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
