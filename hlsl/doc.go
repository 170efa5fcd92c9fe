// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl generates HLSL source for Direct3D 9 shader programs.
//
// The generator reads a decoded [shader.Program] and, optionally, the
// expression graph the lower and rewrite packages built from it. It
// writes a single entry point compatible with the legacy FXC compiler
// for the program's profile (vs_1_1 through ps_3_0).
//
// # Emission Strategies
//
// The function body is produced by the first strategy that emits at least
// one statement:
//
//   - graph: renders the reduced expression graph. Straight-line programs
//     inline every value into the output assignments; structured programs
//     keep registers as variables and emit if, for and break.
//   - direct: translates each instruction on its own.
//   - passthrough: copies inputs to outputs with matching semantics.
//   - stub: leaves the zeroed outputs and a warning comment.
//
// A strategy that fails, or runs past Options.MaxStatements, is recorded
// as a diagnostic and the next one is tried. TranslationInfo reports the
// strategy that was used.
//
// # Usage
//
//	module, err := lower.Build(prog, nil)
//	if err != nil {
//	    return err
//	}
//	options := hlsl.DefaultOptions()
//	options.AddComments = true
//
//	source, info, err := hlsl.Compile(prog, module, options)
//
// # Register Binding
//
// Constant table entries keep their registers:
//
//	float4x4 WorldViewProj : register(c0);
//	sampler2D DiffuseSampler : register(s0);
//
// Constant registers the table does not describe are declared under their
// register names, or as one c[] array when they are indexed relatively.
package hlsl
