// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/dxdec/diag"
	"github.com/gogpu/dxdec/shader"
)

// =============================================================================
// Global Declarations
// =============================================================================

// writeGlobals declares the constant table entries and every constant
// register the program reads without a table entry.
func (w *Writer) writeGlobals() {
	written := 0
	for i := range w.prog.Constants {
		c := &w.prog.Constants[i]
		if _, ok := w.common[c.Name]; ok {
			continue
		}
		w.writeLine("%s;", w.constantDeclaration(i))
		written++
	}

	if w.cArray > 0 {
		w.writeLine("float4 c[%d] : %s;", w.cArray, DefaultBindTarget())
		written++
	}
	for _, key := range w.implicit {
		if w.cArray > 0 && isFloatConstant(key) {
			continue
		}
		rt, _ := registerTypeOfKey(key)
		bind := BindTarget{Type: rt}.WithRegister(key.Number)
		if isFloatConstant(key) {
			bind = bind.WithRegister(key.ConstantIndex())
		}
		w.writeLine("%s %s : %s;", w.implicitType(key), w.refs[key].base, bind)
		diag.Infof(w.diags, diag.GenUndeclaredRegister, diag.NoInstruction,
			"register %s has no constant table entry", key)
		written++
	}

	if written > 0 {
		w.writeLine("")
	}
}

func (w *Writer) implicitType(key shader.RegisterKey) string {
	switch key.Type {
	case shader.RegisterConstInt:
		return "int4"
	case shader.RegisterConstBool:
		return "bool"
	case shader.RegisterSampler:
		return samplerType(w.samplerKind(key.Number))
	}
	return "float4"
}

// =============================================================================
// Constant References
// =============================================================================

// constantIndex returns the constant table entry covering key.
func (w *Writer) constantIndex(key shader.RegisterKey) (int, bool) {
	c := w.prog.ConstantFor(key)
	if c == nil {
		return 0, false
	}
	for i := range w.prog.Constants {
		if &w.prog.Constants[i] == c {
			return i, true
		}
	}
	return 0, false
}

// constantReference spells a constant or sampler register through the
// constant table: Name, Name[k] or Name[e][row], offset from the first
// register of the entry.
func (w *Writer) constantReference(key shader.RegisterKey, index string) registerRef {
	i, ok := w.constantIndex(key)
	if !ok {
		if index != "" && isFloatConstant(key) {
			return registerRef{base: fmt.Sprintf("c[%s]", offsetIndex(index, key.ConstantIndex())), width: 4}
		}
		if ref, ok := w.refs[key]; ok {
			return ref
		}
		return w.implicitRef(key)
	}

	c := &w.prog.Constants[i]
	name := w.constants[i]
	n := key.Number
	if isFloatConstant(key) {
		n = key.ConstantIndex()
	}
	offset := n - c.RegisterIndex
	regs, elements := constantShape(c)
	ref := registerRef{base: name, width: constantWidth(c)}

	switch {
	case index != "" && (regs > 1 || elements > 1):
		ref.base = fmt.Sprintf("%s[%s]", name, offsetIndex(index, offset))
	case regs > 1 && elements > 1:
		ref.base = fmt.Sprintf("%s[%d][%d]", name, offset/regs, offset%regs)
	case regs > 1 || elements > 1:
		ref.base = fmt.Sprintf("%s[%d]", name, offset)
	}
	return ref
}
