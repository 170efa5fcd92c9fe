// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/dxdec/diag"
)

// writePassthrough copies every output from the input with the same
// semantic, or failing that the same name. Outputs with no source are
// zeroed and flagged.
func (w *Writer) writePassthrough() error {
	if len(w.inputs) == 0 || len(w.outputs) == 0 {
		return nil
	}

	bySemantic := make(map[string]*ioRegister, len(w.inputs))
	byName := make(map[string]*ioRegister, len(w.inputs))
	for _, in := range w.inputs {
		if _, ok := bySemantic[in.semantic]; !ok {
			bySemantic[in.semantic] = in
		}
		if _, ok := byName[in.name]; !ok {
			byName[in.name] = in
		}
	}

	for _, out := range w.outputs {
		target := w.refs[out.key].base
		in, ok := bySemantic[out.semantic]
		if !ok {
			in, ok = byName[out.name]
		}
		if !ok {
			w.writeLine("// Warning: no input matches output %s", out.semantic)
			w.writeLine("%s = 0; // unmapped output", target)
			diag.Warnf(w.diags, diag.GenPassthroughZero, diag.NoInstruction,
				"output %s (%s) has no matching input and is zeroed", target, out.semantic)
			if err := w.count(-1); err != nil {
				return err
			}
			continue
		}
		if err := w.assign(target, resize(w.refs[in.key].base, in.width, out.width), -1); err != nil {
			return err
		}
	}
	return nil
}

// resize adapts a vector of width from to width to, truncating with a
// swizzle or padding with zeros.
func resize(value string, from, to int) string {
	switch {
	case from == to:
		return value
	case from > to:
		return swizzle(value, firstLanes(to))
	}
	parts := []string{value}
	for n := from; n < to; n++ {
		parts = append(parts, "0.0")
	}
	return fmt.Sprintf("%s(%s)", vectorType("float", to), strings.Join(parts, ", "))
}

// writeStub marks the body as a stub. The output local is zeroed on
// declaration, so the function stays valid.
func (w *Writer) writeStub() {
	w.writeLine("// WARNING: No code could be decompiled. Output is a stub.")
	diag.Warnf(w.diags, diag.GenStubEmitted, diag.NoInstruction,
		"no strategy produced code for %s", w.prog.Profile())
}
