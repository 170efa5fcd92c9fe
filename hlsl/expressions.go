// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/dxdec/diag"
	"github.com/gogpu/dxdec/ir"
)

// Rendering limits. Exceeding one replaces the offending subexpression
// with an error marker; assignments containing a marker are skipped.
const (
	maxRenderDepth    = 1024
	maxExpressionSize = 64 << 10
)

// Error markers embedded in rendered text.
const (
	markerCycle    = "/* ERROR: Cycle detected at node %d */"
	markerDepth    = "/* ERROR: Max recursion depth exceeded */"
	markerTooLarge = "/* ERROR: Expression too large */"
	markerInvalid  = "/* ERROR: Invalid node %d */"
)

// Operator precedence of rendered expressions, loosest first.
const (
	precTernary = iota + 1
	precCompare
	precAdditive
	precMultiplicative
	precUnary
	precAtom
)

// operand is a rendered expression and the precedence of its top operator.
type operand struct {
	text string
	prec int
}

// wrap parenthesizes x when its operator binds looser than minPrec.
func wrap(x operand, minPrec int) string {
	if x.prec < minPrec {
		return "(" + x.text + ")"
	}
	return x.text
}

func atom(text string) operand {
	return operand{text: text, prec: precAtom}
}

func call(name string, args ...operand) operand {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.text
	}
	return atom(name + "(" + strings.Join(parts, ", ") + ")")
}

// =============================================================================
// Renderer
// =============================================================================

// renderer turns graph nodes into HLSL expressions. It is guarded
// against cycles, runaway depth and exponential growth of shared nodes.
type renderer struct {
	w        *Writer
	g        *ir.Graph
	onStack  map[ir.NodeHandle]struct{}
	depth    int
	tooLarge bool
	degraded bool
}

func (w *Writer) newRenderer() *renderer {
	return &renderer{
		w:       w,
		g:       w.module.Graph,
		onStack: make(map[ir.NodeHandle]struct{}),
	}
}

// expression renders a scalar node.
func (w *Writer) expression(h ir.NodeHandle, inst int) string {
	r := w.newRenderer()
	text := r.node(h).text
	return r.finish(text, inst)
}

// vectorExpression renders lanes as one vector expression, if the lanes
// line up.
func (w *Writer) vectorExpression(lanes []ir.NodeHandle, inst int) (string, bool) {
	r := w.newRenderer()
	v, _, ok := r.vector(lanes)
	if !ok {
		return "", false
	}
	return r.finish(v.text, inst), true
}

func (r *renderer) finish(text string, inst int) string {
	if r.tooLarge {
		text = markerTooLarge
	}
	if r.degraded {
		diag.Warnf(r.w.diags, diag.GenRenderingDegraded, inst, "expression rendered with error markers")
	}
	return text
}

func (r *renderer) fail(format string, args ...any) operand {
	r.degraded = true
	return atom(fmt.Sprintf(format, args...))
}

// node renders h with the recursion guards applied.
func (r *renderer) node(h ir.NodeHandle) operand {
	switch {
	case r.tooLarge:
		return atom(markerTooLarge)
	case !r.g.Valid(h):
		return r.fail(markerInvalid, h)
	case r.depth >= maxRenderDepth:
		return r.fail(markerDepth)
	}
	if _, ok := r.onStack[h]; ok {
		return r.fail(markerCycle, h)
	}

	r.onStack[h] = struct{}{}
	r.depth++
	op := r.render(h)
	r.depth--
	delete(r.onStack, h)

	if len(op.text) > maxExpressionSize {
		r.tooLarge = true
		r.degraded = true
		return atom(markerTooLarge)
	}
	return op
}

// arity checks that h has at least n inputs.
func (r *renderer) arity(h ir.NodeHandle, n int) bool {
	return len(r.g.Inputs(h)) >= n
}

func (r *renderer) render(h ir.NodeHandle) operand {
	g := r.g
	switch k := g.Kind(h).(type) {
	case ir.Constant:
		return constant(k.Value)

	case ir.RegisterInput:
		return r.input(h, k, []int{k.Key.Component})

	case ir.Unary:
		if !r.arity(h, 1) {
			break
		}
		return unary(k.Op, r.node(g.Input(h, 0)))

	case ir.Binary:
		if !r.arity(h, 2) {
			break
		}
		return binary(k.Op, r.node(g.Input(h, 0)), r.node(g.Input(h, 1)))

	case ir.Ternary:
		if !r.arity(h, 3) {
			break
		}
		return ternary(k.Op, r.node(g.Input(h, 0)), r.node(g.Input(h, 1)), r.node(g.Input(h, 2)))

	case ir.DotProduct:
		if !r.arity(h, 2) {
			break
		}
		return call("dot", r.group(g.Input(h, 0)), r.group(g.Input(h, 1)))

	case ir.Normalize:
		if !r.arity(h, 1) {
			break
		}
		v := call("normalize", r.group(g.Input(h, 0)))
		return atom(swizzle(v.text, []int{k.Component}))

	case ir.TextureLoad:
		if !r.arity(h, 2) {
			break
		}
		return atom(swizzle(r.texture(h, k).text, []int{k.Component}))

	case ir.Group:
		return r.group(h)
	}
	return r.fail(markerInvalid, h)
}

// constant renders a literal lane.
func constant(v float32) operand {
	text := FormatFloat(v)
	if strings.HasPrefix(text, "-") {
		return operand{text: text, prec: precUnary}
	}
	return atom(text)
}

// input renders components of a register input node.
func (r *renderer) input(h ir.NodeHandle, k ir.RegisterInput, components []int) operand {
	key := k.Key.Register
	index := ""
	if k.Relative != nil {
		if r.arity(h, 1) {
			index = r.node(r.g.Input(h, 0)).text
		} else {
			index = r.w.relativeIndex(k.Relative)
		}
	}
	ref := r.w.reference(key, index)
	if k.IsSampler() {
		return atom(ref.base)
	}
	return atom(ref.lanes(components))
}

// group renders a Group node as a vector, falling back to a constructor
// of its lanes.
func (r *renderer) group(h ir.NodeHandle) operand {
	if !r.g.Valid(h) {
		return r.fail(markerInvalid, h)
	}
	if _, ok := r.g.Kind(h).(ir.Group); !ok {
		return r.node(h)
	}
	lanes := r.g.Inputs(h)
	switch len(lanes) {
	case 0:
		return r.fail(markerInvalid, h)
	case 1:
		return r.node(lanes[0])
	}
	if v, scalar, ok := r.vector(lanes); ok {
		if scalar {
			return atom(swizzle(v.text, make([]int, len(lanes))))
		}
		return v
	}
	parts := make([]string, len(lanes))
	for i, l := range lanes {
		parts[i] = r.node(l).text
	}
	return atom(constructor(hlslTypeFloat, parts))
}

// texture renders the sampling call of a TextureLoad without its
// component selection.
func (r *renderer) texture(h ir.NodeHandle, k ir.TextureLoad) operand {
	sampler := r.g.Input(h, 0)
	if !r.g.Valid(sampler) {
		return r.fail(markerInvalid, sampler)
	}
	in, ok := r.g.Kind(sampler).(ir.RegisterInput)
	if !ok {
		return r.fail(markerInvalid, sampler)
	}
	key := in.Key.Register
	fn := textureFunction(r.w.samplerKind(key.Number), textureSuffix(k.Variant))
	return call(fn, atom(r.w.reference(key, "").base), r.group(r.g.Input(h, 1)))
}

func textureSuffix(v ir.TextureVariant) string {
	switch v {
	case ir.TextureLod:
		return "lod"
	case ir.TextureBias:
		return "bias"
	case ir.TextureProject:
		return "proj"
	}
	return ""
}

// =============================================================================
// Vectorization
// =============================================================================

// vector renders lanes as one expression when they are the same operation
// over lined-up inputs. scalar reports a single value standing for every
// lane.
func (r *renderer) vector(lanes []ir.NodeHandle) (v operand, scalar, ok bool) {
	if len(lanes) == 0 || r.tooLarge || r.depth >= maxRenderDepth {
		return operand{}, false, false
	}
	for _, h := range lanes {
		if !r.g.Valid(h) {
			return operand{}, false, false
		}
	}
	if same(lanes) {
		return r.node(lanes[0]), true, true
	}

	r.depth++
	defer func() { r.depth-- }()

	g := r.g
	first := lanes[0]
	switch k := g.Kind(first).(type) {
	case ir.Constant:
		parts := make([]string, len(lanes))
		for i, h := range lanes {
			c, isConst := g.Kind(h).(ir.Constant)
			if !isConst {
				return operand{}, false, false
			}
			parts[i] = FormatFloat(c.Value)
		}
		return atom(constructor(hlslTypeFloat, parts)), false, true

	case ir.RegisterInput:
		components := make([]int, len(lanes))
		for i, h := range lanes {
			in, isInput := g.Kind(h).(ir.RegisterInput)
			if !isInput || !sameRegister(g, first, k, h, in) {
				return operand{}, false, false
			}
			components[i] = in.Key.Component
		}
		return r.input(first, k, components), false, true

	case ir.Unary, ir.Binary, ir.Ternary:
		n := len(g.Inputs(first))
		for _, h := range lanes[1:] {
			if g.Kind(h) != g.Kind(first) || len(g.Inputs(h)) != n {
				return operand{}, false, false
			}
		}
		args := make([]operand, n)
		allScalar := true
		column := make([]ir.NodeHandle, len(lanes))
		for i := range args {
			for j, h := range lanes {
				column[j] = g.Input(h, i)
			}
			a, s, ok := r.vector(column)
			if !ok {
				return operand{}, false, false
			}
			args[i] = a
			allScalar = allScalar && s
		}
		return combine(g.Kind(first), args), allScalar, true

	case ir.TextureLoad:
		components := make([]int, len(lanes))
		for i, h := range lanes {
			t, isLoad := g.Kind(h).(ir.TextureLoad)
			if !isLoad || t.Variant != k.Variant || !sameInputs(g, first, h) {
				return operand{}, false, false
			}
			components[i] = t.Component
		}
		text := r.texture(first, k).text
		if isPrefix(components, 4) {
			return atom(text), false, true
		}
		return atom(swizzle(text, components)), false, true

	case ir.Normalize:
		components := make([]int, len(lanes))
		for i, h := range lanes {
			nrm, isNormalize := g.Kind(h).(ir.Normalize)
			if !isNormalize || !sameInputs(g, first, h) {
				return operand{}, false, false
			}
			components[i] = nrm.Component
		}
		text := call("normalize", r.group(g.Input(first, 0))).text
		if isPrefix(components, 3) {
			return atom(text), false, true
		}
		return atom(swizzle(text, components)), false, true
	}
	return operand{}, false, false
}

func same(lanes []ir.NodeHandle) bool {
	for _, h := range lanes[1:] {
		if h != lanes[0] {
			return false
		}
	}
	return true
}

// sameInputs reports whether two nodes read the same input handles.
func sameInputs(g *ir.Graph, a, b ir.NodeHandle) bool {
	x, y := g.Inputs(a), g.Inputs(b)
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// sameRegister reports whether two register inputs read lanes of one
// register through the same address.
func sameRegister(g *ir.Graph, ha ir.NodeHandle, a ir.RegisterInput, hb ir.NodeHandle, b ir.RegisterInput) bool {
	if a.Key.Register != b.Key.Register || a.IsSampler() || b.IsSampler() {
		return false
	}
	switch {
	case a.Relative == nil && b.Relative == nil:
		return true
	case a.Relative == nil || b.Relative == nil:
		return false
	}
	return *a.Relative == *b.Relative && sameInputs(g, ha, hb)
}

// =============================================================================
// Operators
// =============================================================================

func combine(kind ir.NodeKind, args []operand) operand {
	switch k := kind.(type) {
	case ir.Unary:
		return unary(k.Op, args[0])
	case ir.Binary:
		return binary(k.Op, args[0], args[1])
	case ir.Ternary:
		return ternary(k.Op, args[0], args[1], args[2])
	}
	return atom(fmt.Sprintf(markerInvalid, -1))
}

var unaryFunctions = map[ir.UnaryOp]string{
	ir.UnaryAbs:            "abs",
	ir.UnarySign:           "sign",
	ir.UnaryFrac:           "frac",
	ir.UnaryReciprocalSqrt: "rsqrt",
	ir.UnarySin:            "sin",
	ir.UnaryCos:            "cos",
	ir.UnaryExp2:           "exp2",
	ir.UnaryExp:            "exp",
	ir.UnaryLog2:           "log2",
	ir.UnarySaturate:       "saturate",
	ir.UnaryDdx:            "ddx",
	ir.UnaryDdy:            "ddy",
	ir.UnaryClip:           "clip",
}

func unary(op ir.UnaryOp, x operand) operand {
	switch op {
	case ir.UnaryNegate:
		return negate(x)
	case ir.UnaryReciprocal:
		return operand{text: "1.0 / " + wrap(x, precUnary), prec: precMultiplicative}
	}
	if name, ok := unaryFunctions[op]; ok {
		return call(name, x)
	}
	return atom(fmt.Sprintf("/* ERROR: unary %s */", op))
}

// negate renders -x without producing "--".
func negate(x operand) operand {
	text := wrap(x, precUnary)
	if strings.HasPrefix(text, "-") {
		text = "(" + text + ")"
	}
	return operand{text: "-" + text, prec: precUnary}
}

func binary(op ir.BinaryOp, a, b operand) operand {
	switch op {
	case ir.BinaryAdd:
		return operand{text: wrap(a, precAdditive) + " + " + wrap(b, precAdditive), prec: precAdditive}
	case ir.BinarySubtract:
		return operand{text: wrap(a, precAdditive) + " - " + wrap(b, precMultiplicative), prec: precAdditive}
	case ir.BinaryMultiply:
		return operand{text: wrap(a, precMultiplicative) + " * " + wrap(b, precUnary), prec: precMultiplicative}
	case ir.BinaryMax:
		return call("max", a, b)
	case ir.BinaryMin:
		return call("min", a, b)
	case ir.BinaryPower:
		return call("pow", a, b)
	case ir.BinarySignGreaterEqual:
		return call("step", b, a)
	case ir.BinarySignLessThan:
		return operand{text: "1.0 - " + call("step", b, a).text, prec: precAdditive}
	}
	if op.IsComparison() {
		return operand{
			text: wrap(a, precAdditive) + " " + comparisonSymbol(op) + " " + wrap(b, precAdditive),
			prec: precCompare,
		}
	}
	return atom(fmt.Sprintf("/* ERROR: binary %s */", op))
}

func comparisonSymbol(op ir.BinaryOp) string {
	switch op {
	case ir.BinaryGreater:
		return ">"
	case ir.BinaryGreaterEqual:
		return ">="
	case ir.BinaryEqual:
		return "=="
	case ir.BinaryNotEqual:
		return "!="
	case ir.BinaryLess:
		return "<"
	}
	return "<="
}

func ternary(op ir.TernaryOp, a, b, c operand) operand {
	switch op {
	case ir.TernaryCompare:
		return operand{
			text: wrap(a, precAdditive) + " >= 0.0 ? " + wrap(b, precCompare) + " : " + wrap(c, precTernary),
			prec: precTernary,
		}
	case ir.TernaryLerp:
		return call("lerp", c, b, a)
	case ir.TernaryMultiplyAdd:
		product := wrap(a, precMultiplicative) + " * " + wrap(b, precUnary)
		return operand{text: product + " + " + wrap(c, precAdditive), prec: precAdditive}
	}
	return atom(fmt.Sprintf("/* ERROR: ternary %s */", op))
}
