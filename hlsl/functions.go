// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/dxdec/shader"
)

// ioRegister is one member of the entry point input or output.
type ioRegister struct {
	key      shader.RegisterKey
	semantic string
	name     string
	width    int
}

// typeName returns the declared type of the member.
func (r *ioRegister) typeName() string {
	return vectorType("float", r.width)
}

// =============================================================================
// Semantics
// =============================================================================

// inputSemantic returns the semantic of an input register. Vertex inputs
// always carry their dcl usage; pixel inputs only from shader model 3.
func (w *Writer) inputSemantic(key shader.RegisterKey, u *registerUsage) string {
	switch key.Type {
	case shader.RegisterMiscType:
		if key.Number == shader.MiscFace {
			return "VFACE"
		}
		return "VPOS"
	case shader.RegisterTexture:
		return semantic("TEXCOORD", key.Number)
	}
	if u.decl != nil && (w.prog.Type == shader.ProgramVertex || w.model.DeclaresSemantics()) {
		return semantic(usageSemantic(u.decl.Usage), u.decl.Index)
	}
	if w.prog.Type == shader.ProgramPixel {
		return semantic("COLOR", key.Number)
	}
	return semantic("TEXCOORD", key.Number)
}

// outputSemantic returns the semantic of an output register.
func (w *Writer) outputSemantic(key shader.RegisterKey, u *registerUsage) string {
	switch key.Type {
	case shader.RegisterRastOut:
		switch key.Number {
		case shader.RastOutFog:
			return "FOG"
		case shader.RastOutPointSize:
			return "PSIZE"
		}
		return "POSITION"
	case shader.RegisterAttrOut, shader.RegisterColorOut:
		return semantic("COLOR", key.Number)
	case shader.RegisterDepthOut:
		return "DEPTH"
	case shader.RegisterTemp:
		return semantic("COLOR", 0)
	}
	if u.decl != nil && w.model.DeclaresSemantics() {
		return semantic(usageSemantic(u.decl.Usage), u.decl.Index)
	}
	return semantic("TEXCOORD", key.Number)
}

// inputWidth returns the declared width of an input register.
func (w *Writer) inputWidth(key shader.RegisterKey, u *registerUsage) int {
	if key.Type == shader.RegisterMiscType {
		if key.Number == shader.MiscFace {
			return 1
		}
		return 2
	}
	if n := u.width(); n > 0 {
		return n
	}
	return 4
}

// outputWidth returns the declared width of an output register. Position
// and colors are always float4; depth, fog and point size are scalars.
func (w *Writer) outputWidth(key shader.RegisterKey, u *registerUsage) int {
	switch key.Type {
	case shader.RegisterRastOut:
		if key.Number == shader.RastOutPosition {
			return 4
		}
		return 1
	case shader.RegisterAttrOut, shader.RegisterColorOut, shader.RegisterTemp:
		return 4
	case shader.RegisterDepthOut:
		return 1
	}
	if n := u.width(); n > 0 {
		return n
	}
	return 4
}

// =============================================================================
// Binding
// =============================================================================

func (w *Writer) bindInputs(keys []shader.RegisterKey) []*ioRegister {
	members := newNamer()
	out := make([]*ioRegister, 0, len(keys))
	for _, key := range keys {
		u := w.usage[key]
		r := &ioRegister{
			key:      key,
			semantic: w.inputSemantic(key, u),
			width:    w.inputWidth(key, u),
		}
		if len(keys) > 1 {
			r.name = members.semantic(r.semantic)
			w.refs[key] = registerRef{base: "i." + r.name, width: r.width}
		} else {
			r.name = w.names.semantic(r.semantic)
			w.refs[key] = registerRef{base: r.name, width: r.width}
		}
		out = append(out, r)
	}
	return out
}

func (w *Writer) bindOutputs(keys []shader.RegisterKey) []*ioRegister {
	members := newNamer()
	out := make([]*ioRegister, 0, len(keys))
	for _, key := range keys {
		u := w.usage[key]
		r := &ioRegister{
			key:      key,
			semantic: w.outputSemantic(key, u),
			width:    w.outputWidth(key, u),
		}
		switch {
		case len(keys) > 1:
			r.name = members.semantic(r.semantic)
			w.refs[key] = registerRef{base: "o." + r.name, width: r.width}
		case w.legacyOutput(key):
			r.name = key.String()
			w.refs[key] = registerRef{base: r.name, width: r.width}
		default:
			r.name = w.names.semantic(r.semantic)
			w.refs[key] = registerRef{base: r.name, width: r.width}
		}
		out = append(out, r)
	}
	switch {
	case len(out) > 1:
		w.output = "o"
	case len(out) == 1:
		w.output = out[0].name
	}
	return out
}

// =============================================================================
// Entry Point
// =============================================================================

// writeStructs writes the input and output structs of the entry point.
func (w *Writer) writeStructs() {
	w.writeStruct(w.inputStruct, w.inputs)
	w.writeStruct(w.outputStruct, w.outputs)
}

func (w *Writer) writeStruct(name string, members []*ioRegister) {
	if name == "" {
		return
	}
	w.writeLine("struct %s {", name)
	w.pushIndent()
	for _, m := range members {
		w.writeLine("%s %s : %s;", m.typeName(), m.name, m.semantic)
	}
	w.popIndent()
	w.writeLine("};")
	w.writeLine("")
}

// writeSignature writes the entry point declaration.
func (w *Writer) writeSignature() {
	w.writeIndent()
	returnType := "void"
	switch {
	case w.outputStruct != "":
		returnType = w.outputStruct
	case len(w.outputs) == 1:
		returnType = w.outputs[0].typeName()
	}
	fmt.Fprintf(&w.out, "%s %s(", returnType, w.entry)
	switch {
	case w.inputStruct != "":
		fmt.Fprintf(&w.out, "%s i", w.inputStruct)
	case len(w.inputs) == 1:
		in := w.inputs[0]
		fmt.Fprintf(&w.out, "%s %s : %s", in.typeName(), in.name, in.semantic)
	}
	w.out.WriteString(")")
	if w.outputStruct == "" && len(w.outputs) == 1 {
		fmt.Fprintf(&w.out, " : %s", w.outputs[0].semantic)
	}
	w.out.WriteByte('\n')
}

// writePreshader copies the preshader text of effect programs.
func (w *Writer) writePreshader() {
	text := strings.TrimSpace(w.prog.Preshader)
	if text == "" || w.opts.IgnorePreshader {
		return
	}
	w.writeLine("// preshader")
	for _, line := range strings.Split(text, "\n") {
		w.writeLine("%s", strings.TrimRight(line, " \t\r"))
	}
	w.writeLine("")
}

// writeLocals declares the zeroed output local.
func (w *Writer) writeLocals() {
	switch {
	case w.outputStruct != "":
		w.writeLine("%s o = (%s)0;", w.outputStruct, w.outputStruct)
	case len(w.outputs) == 1:
		out := w.outputs[0]
		w.writeLine("%s %s = 0;", out.typeName(), out.name)
	}
}

// writeTemps declares temporary registers, grouped by width.
func (w *Writer) writeTemps(keys []shader.RegisterKey) {
	var groups []string
	byType := make(map[string][]string)
	for _, key := range keys {
		ref := w.refs[key]
		base := "float"
		if key.Type == shader.RegisterAddr {
			base = "int"
		}
		typ := vectorType(base, ref.width)
		if _, ok := byType[typ]; !ok {
			groups = append(groups, typ)
		}
		byType[typ] = append(byType[typ], ref.base)
	}
	for _, typ := range groups {
		w.writeLine("%s %s;", typ, strings.Join(byType[typ], ", "))
	}
}

// returnStatement returns the statement ending the entry point.
func (w *Writer) returnStatement() string {
	if w.output == "" {
		return "return;"
	}
	return fmt.Sprintf("return %s;", w.output)
}

func (w *Writer) writeReturn() {
	if w.output == "" {
		return
	}
	w.writeLine("")
	w.writeLine("%s", w.returnStatement())
}
