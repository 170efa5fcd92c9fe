// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/dxdec/shader"
)

// Type name constants.
const (
	hlslTypeFloat = "float"
	hlslTypeInt   = "int"
	hlslTypeBool  = "bool"
)

// dimension returns a declared row or column count, four when absent.
func dimension(v uint32) uint32 {
	if v == 0 {
		return 4
	}
	return v
}

// scalarTypeName returns the element type of a constant.
func scalarTypeName(c *shader.ConstantDeclaration) string {
	switch c.Type {
	case shader.ParamBool:
		return hlslTypeBool
	case shader.ParamInt:
		return hlslTypeInt
	}
	return hlslTypeFloat
}

// constantShape returns the registers per element and the element count
// of a constant. A row-major matrix spans one register per row, a
// column-major one per column.
func constantShape(c *shader.ConstantDeclaration) (regs, elements uint32) {
	elements = max(c.Elements, 1)
	switch c.Class {
	case shader.ClassMatrixRows:
		return dimension(c.Rows), elements
	case shader.ClassMatrixColumns:
		return dimension(c.Columns), elements
	case shader.ClassStruct:
		return 1, max(c.RegisterCount, 1)
	}
	return 1, elements
}

// constantWidth returns the lanes one register of a constant holds.
func constantWidth(c *shader.ConstantDeclaration) int {
	if c.Type.IsSampler() || c.RegisterSet == shader.SetSampler {
		return 0
	}
	if c.RegisterSet == shader.SetBool {
		return 1
	}
	switch c.Class {
	case shader.ClassScalar:
		return 1
	case shader.ClassVector, shader.ClassMatrixRows:
		return int(dimension(c.Columns))
	case shader.ClassMatrixColumns:
		return int(dimension(c.Rows))
	}
	return 4
}

// constantType returns the declared type and array suffix of constant c.
// Column-major matrices are declared transposed so every register is a
// row of the declared matrix.
func (w *Writer) constantType(c *shader.ConstantDeclaration) (string, string) {
	regs, elements := constantShape(c)
	suffix := ""
	if elements > 1 {
		suffix = fmt.Sprintf("[%d]", elements)
	}
	if c.Type.IsSampler() || c.RegisterSet == shader.SetSampler {
		return samplerType(w.samplerKind(c.RegisterIndex)), suffix
	}

	base := scalarTypeName(c)
	switch c.Class {
	case shader.ClassScalar:
		return base, suffix
	case shader.ClassVector:
		return vectorType(base, int(dimension(c.Columns))), suffix
	case shader.ClassMatrixRows, shader.ClassMatrixColumns:
		return fmt.Sprintf("row_major %s%dx%d", base, regs, constantWidth(c)), suffix
	}
	return "float4", suffix
}

// constantDeclaration renders the global declaration of constant i.
func (w *Writer) constantDeclaration(i int) string {
	c := &w.prog.Constants[i]
	typ, suffix := w.constantType(c)
	decl := fmt.Sprintf("%s %s%s : %s", typ, w.constants[i], suffix, bindTargetFor(c))
	if w.opts.OutputDefaultValues {
		if v := constantDefault(c); v != "" {
			decl += " = " + v
		}
	}
	return decl
}

// componentCount returns the number of scalars in a constant's type.
func componentCount(c *shader.ConstantDeclaration) int {
	regs, elements := constantShape(c)
	width := max(constantWidth(c), 1)
	return int(regs*elements) * width
}

// constantDefault renders the initializer of a constant with a default
// value: a scalar literal or a brace list padded with zeros.
func constantDefault(c *shader.ConstantDeclaration) string {
	if len(c.DefaultValue) == 0 || c.Type.IsSampler() || c.RegisterSet == shader.SetSampler {
		return ""
	}
	format := FormatFloat
	switch scalarTypeName(c) {
	case hlslTypeBool:
		format = formatBool
	case hlslTypeInt:
		format = formatInt
	}

	n := componentCount(c)
	parts := make([]string, n)
	for i := range parts {
		var v float32
		if i < len(c.DefaultValue) {
			v = c.DefaultValue[i]
		}
		parts[i] = format(v)
	}
	if n == 1 {
		return parts[0]
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
