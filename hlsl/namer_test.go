// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "testing"

func TestNamer_Call(t *testing.T) {
	n := newNamer()

	got := n.call("WorldViewProj")
	if got != "WorldViewProj" {
		t.Errorf("call(\"WorldViewProj\") = %q, want \"WorldViewProj\"", got)
	}

	// Second call with same base gets a suffix
	got = n.call("WorldViewProj")
	if got != "WorldViewProj_1" {
		t.Errorf("second call = %q, want \"WorldViewProj_1\"", got)
	}

	got = n.call("LightDir")
	if got != "LightDir" {
		t.Errorf("call(\"LightDir\") = %q, want \"LightDir\"", got)
	}
}

func TestNamer_CaseInsensitivity(t *testing.T) {
	n := newNamer()

	got1 := n.call("diffuse")
	if got1 != "diffuse" {
		t.Errorf("first call = %q, want \"diffuse\"", got1)
	}

	// Constant names collide regardless of case
	got2 := n.call("DIFFUSE")
	if got2 == "DIFFUSE" {
		t.Error("DIFFUSE should conflict with diffuse")
	}

	got3 := n.call("Diffuse")
	if got3 == "Diffuse" {
		t.Error("Diffuse should conflict with diffuse")
	}
}

func TestNamer_ReservedKeywords(t *testing.T) {
	n := newNamer()

	tests := []struct {
		input string
		want  string
	}{
		{"float", "_float"},
		{"sampler", "_sampler"},
		{"texture", "_texture"},
		{"struct", "_struct"},
		{"lerp", "_lerp"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := n.call(tt.input)
			if got != tt.want {
				t.Errorf("call(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNamer_EmptyBase(t *testing.T) {
	n := newNamer()

	got := n.call("")
	if got != UnnamedIdentifier {
		t.Errorf("call(\"\") = %q, want %q", got, UnnamedIdentifier)
	}
}

func TestNamer_SanitizesTableNames(t *testing.T) {
	n := newNamer()

	tests := []struct {
		input string
		want  string
	}{
		{"$Light[0]", "_Light_0_"},
		{"g.world", "g_world"},
		{"2sided", "_2sided"},
	}
	for _, tt := range tests {
		if got := n.call(tt.input); got != tt.want {
			t.Errorf("call(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNamer_CallMarksUsed(t *testing.T) {
	n := newNamer()
	n.call("color")

	if got := n.call("COLOR"); got != "COLOR_1" {
		t.Errorf("call(\"COLOR\") = %q, want \"COLOR_1\"", got)
	}
}

func TestNamer_Reserve(t *testing.T) {
	n := newNamer()

	// Register names are reserved before constants are named
	n.reserve("r0")
	n.reserve("c")

	if got := n.call("R0"); got != "R0_1" {
		t.Errorf("call(\"R0\") = %q, want \"R0_1\"", got)
	}
	if got := n.call("r0"); got != "r0_2" {
		t.Errorf("call(\"r0\") = %q, want \"r0_2\"", got)
	}
	if got := n.call("c"); got == "c" {
		t.Error("call should not return reserved name")
	}
}

func TestNamer_SuffixIsPerBase(t *testing.T) {
	n := newNamer()
	n.call("Scale")
	n.call("Scale")
	n.call("Scale")
	n.call("position")

	if got := n.call("position"); got != "position_1" {
		t.Errorf("call(\"position\") = %q, want \"position_1\"", got)
	}
}

func TestNamer_Semantic(t *testing.T) {
	n := newNamer()

	tests := []struct {
		semantic string
		want     string
	}{
		{"POSITION", "position"},
		{"TEXCOORD0", "texcoord"},
		{"TEXCOORD1", "texcoord1"},
		{"COLOR0", "color"},
		{"POSITION", "position_1"},
	}
	for _, tt := range tests {
		if got := n.semantic(tt.semantic); got != tt.want {
			t.Errorf("semantic(%q) = %q, want %q", tt.semantic, got, tt.want)
		}
	}
}

func TestNamer_UniqueSequence(t *testing.T) {
	n := newNamer()

	names := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		name := n.call("texcoord")
		if _, exists := names[name]; exists {
			t.Errorf("duplicate name generated: %q", name)
		}
		names[name] = struct{}{}
	}

	if len(names) != 100 {
		t.Errorf("expected 100 unique names, got %d", len(names))
	}
}

func TestNamer_SuffixDoesNotCollide(t *testing.T) {
	n := newNamer()

	// A table name that already looks like a generated suffix
	n.call("color_1")
	n.call("color")
	if got := n.call("color"); got == "color_1" {
		t.Errorf("call(\"color\") returned taken name %q", got)
	}
}
