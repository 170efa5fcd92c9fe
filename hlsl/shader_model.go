// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "fmt"

// ShaderModel represents a Direct3D 9 shader model version.
// The model decides how registers map to semantics.
type ShaderModel uint8

// Supported Shader Model versions.
const (
	// ShaderModel1_1 covers vs_1_1 and ps_1_1.
	ShaderModel1_1 ShaderModel = iota

	// ShaderModel1_2 is ps_1_2.
	ShaderModel1_2

	// ShaderModel1_3 is ps_1_3.
	ShaderModel1_3

	// ShaderModel1_4 is ps_1_4, which samples with texld r#, t#.
	ShaderModel1_4

	// ShaderModel2_0 adds static flow control and dcl on inputs.
	ShaderModel2_0

	// ShaderModel2_x is the extended 2.0 profile (vs_2_x, ps_2_x).
	ShaderModel2_x

	// ShaderModel3_0 declares every input and output with a usage.
	ShaderModel3_0
)

// ModelOf returns the shader model of a major.minor program version.
// Unknown versions map to the closest known model.
func ModelOf(major, minor uint8) ShaderModel {
	switch {
	case major >= 3:
		return ShaderModel3_0
	case major == 2 && minor > 0:
		return ShaderModel2_x
	case major == 2:
		return ShaderModel2_0
	case minor >= 4:
		return ShaderModel1_4
	case minor == 3:
		return ShaderModel1_3
	case minor == 2:
		return ShaderModel1_2
	}
	return ShaderModel1_1
}

// String returns a human-readable representation of the shader model.
// Example: "SM 1.4", "SM 3.0"
func (sm ShaderModel) String() string {
	if sm == ShaderModel2_x {
		return "SM 2.x"
	}
	major, minor := sm.version()
	return fmt.Sprintf("SM %d.%d", major, minor)
}

func (sm ShaderModel) version() (major, minor uint8) {
	switch sm {
	case ShaderModel1_1:
		return 1, 1
	case ShaderModel1_2:
		return 1, 2
	case ShaderModel1_3:
		return 1, 3
	case ShaderModel1_4:
		return 1, 4
	case ShaderModel2_0:
		return 2, 0
	case ShaderModel2_x:
		return 2, 1
	default:
		return 3, 0
	}
}

// DeclaresSemantics reports whether dcl usages name pixel inputs and
// vertex outputs. Earlier models imply semantics from the register file.
func (sm ShaderModel) DeclaresSemantics() bool {
	return sm >= ShaderModel3_0
}

// LegacyPixelOutput reports whether pixel shaders of this model return
// their color in r0.
func (sm ShaderModel) LegacyPixelOutput() bool {
	return sm < ShaderModel2_0
}
