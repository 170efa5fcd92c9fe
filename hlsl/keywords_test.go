// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "testing"

func TestIsReserved(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		// Keywords
		{"keyword_bool", "bool", true},
		{"keyword_float", "float", true},
		{"keyword_struct", "struct", true},
		{"keyword_sampler2D", "sampler2D", true},
		{"keyword_samplerCUBE", "samplerCUBE", true},
		{"keyword_register", "register", true},
		{"keyword_row_major", "row_major", true},
		{"keyword_technique", "technique", true},

		// Reserved words
		{"reserved_auto", "auto", true},
		{"reserved_class", "class", true},
		{"reserved_delete", "delete", true},

		// Intrinsics the generator emits
		{"intrinsic_abs", "abs", true},
		{"intrinsic_dot", "dot", true},
		{"intrinsic_lerp", "lerp", true},
		{"intrinsic_saturate", "saturate", true},
		{"intrinsic_tex2D", "tex2D", true},
		{"intrinsic_texCUBEproj", "texCUBEproj", true},
		{"intrinsic_tex2Dgrad", "tex2Dgrad", true},
		{"intrinsic_clip", "clip", true},

		// Type shorthands
		{"type_float4", "float4", true},
		{"type_int4", "int4", true},
		{"type_half3", "half3", true},
		{"type_float4x4", "float4x4", true},
		{"type_float3x4", "float3x4", true},

		// Not reserved
		{"non_reserved_WorldViewProj", "WorldViewProj", false},
		{"non_reserved_position", "position", false},
		{"non_reserved_color", "color", false},
		{"non_reserved_texcoord", "texcoord", false},
		{"non_reserved_r0", "r0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsReserved(tt.input)
			if got != tt.expected {
				t.Errorf("IsReserved(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsCaseInsensitiveReserved(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"asm_lower", "asm", true},
		{"asm_upper", "ASM", true},
		{"pass_mixed", "Pass", true},
		{"technique_upper", "TECHNIQUE", true},
		{"texture2d_mixed", "Texture2D", true},
		{"texturecube_lower", "texturecube", true},

		{"float_not_case_insensitive", "float", false},
		{"struct_not_case_insensitive", "struct", false},
		{"random_word", "Diffuse", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsCaseInsensitiveReserved(tt.input)
			if got != tt.expected {
				t.Errorf("IsCaseInsensitiveReserved(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", UnnamedIdentifier},

		{"escape_float", "float", "_float"},
		{"escape_sampler", "sampler", "_sampler"},
		{"escape_dot", "dot", "_dot"},
		{"escape_float4x4", "float4x4", "_float4x4"},
		{"escape_ASM_upper", "ASM", "_ASM"},
		{"escape_Technique", "Technique", "_Technique"},

		// Table names with punctuation
		{"sanitize_array", "$Light[2]", "_Light_2_"},
		{"sanitize_member", "Material.Diffuse", "Material_Diffuse"},
		{"sanitize_digit", "4way", "_4way"},
		{"sanitize_to_keyword", "pow", "_pow"},

		{"pass_WorldViewProj", "WorldViewProj", "WorldViewProj"},
		{"pass_underscore", "_private", "_private"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Escape(tt.input)
			if got != tt.expected {
				t.Errorf("Escape(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTypeShorthandsGeneration(t *testing.T) {
	for _, base := range []string{"bool", "int", "uint", "dword", "half", "float", "double"} {
		for i := 1; i <= 4; i++ {
			name := base + string(rune('0'+i))
			if !IsReserved(name) {
				t.Errorf("expected %q to be reserved", name)
			}
			for c := 1; c <= 4; c++ {
				m := name + "x" + string(rune('0'+c))
				if !IsReserved(m) {
					t.Errorf("expected %q to be reserved", m)
				}
			}
		}
	}
	if IsReserved("float5") {
		t.Error("float5 is not a type")
	}
}

func TestGeneratedIntrinsicsReserved(t *testing.T) {
	// Every function the generator can emit must be escaped in table names.
	for _, dim := range []string{"1D", "2D", "3D", "CUBE"} {
		for _, suffix := range []string{"", "bias", "lod", "proj", "grad"} {
			name := "tex" + dim + suffix
			if _, ok := reservedKeywords[name]; !ok {
				t.Errorf("sampling intrinsic %q not found in reservedKeywords", name)
			}
		}
	}
	for _, name := range []string{"rsqrt", "exp2", "log2", "frac", "step", "normalize", "lit", "mul", "ddx", "ddy"} {
		if _, ok := reservedKeywords[name]; !ok {
			t.Errorf("intrinsic %q not found in reservedKeywords", name)
		}
	}
}

func BenchmarkEscape(b *testing.B) {
	testCases := []string{
		"",              // Empty
		"float",         // Reserved
		"WorldViewProj", // Not reserved
		"ASM",           // Case-insensitive
		"$Light[0]",     // Needs sanitizing
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			_ = Escape(tc)
		}
	}
}
