// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slog"

	"github.com/gogpu/dxdec/diag"
	"github.com/gogpu/dxdec/ir"
	"github.com/gogpu/dxdec/shader"
)

// Writer generates HLSL source code for one shader program.
type Writer struct {
	prog   *shader.Program
	module *ir.Program
	opts   *Options
	model  ShaderModel
	log    *slog.Logger
	diags  diag.Reporter

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Name management
	names *namer
	entry string

	// Register analysis, read-only once layout has run
	usage     map[shader.RegisterKey]*registerUsage
	literals  map[shader.RegisterKey]*literal
	samplers  map[uint32]shader.TextureType
	refs      map[shader.RegisterKey]registerRef
	constants []string // names of prog.Constants entries
	common    map[string]struct{}
	implicit  []shader.RegisterKey
	cArray    uint32 // size of the implicit c[] array, zero when unused
	temps     []shader.RegisterKey

	// Entry point signature
	inputs       []*ioRegister
	outputs      []*ioRegister
	inputStruct  string
	outputStruct string
	output       string // name of the returned local, empty for void

	// Emission state of the current strategy
	loopDepth int
	emitted   int
	skipped   []string

	strategy Strategy
	failed   []Strategy
}

func newWriter(prog *shader.Program, module *ir.Program, opts *Options) *Writer {
	return &Writer{
		prog:     prog,
		module:   module,
		opts:     opts,
		model:    ModelOf(prog.Major, prog.Minor),
		log:      opts.Logger,
		diags:    opts.Diagnostics,
		names:    newNamer(),
		entry:    opts.EntryPoint,
		usage:    make(map[shader.RegisterKey]*registerUsage),
		literals: make(map[shader.RegisterKey]*literal),
		samplers: make(map[uint32]shader.TextureType),
		refs:     make(map[shader.RegisterKey]registerRef),
		common:   make(map[string]struct{}),
	}
}

// String returns the generated HLSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeModule generates the whole translation unit.
func (w *Writer) writeModule() error {
	// 1. Collect register usage and lay out the signature
	w.analyze()
	if err := w.layout(); err != nil {
		return err
	}

	// 2. Header
	if w.opts.Header {
		w.writeLine("// %s", w.prog.Profile())
		w.writeLine("")
	}

	// 3. Globals and interface structs
	w.writeGlobals()
	w.writeStructs()

	// 4. Entry point
	w.writeSignature()
	w.writeLine("{")
	w.pushIndent()
	w.writePreshader()
	w.writeLocals()
	w.writeBody()
	w.writeReturn()
	w.popIndent()
	w.writeLine("}")
	return nil
}

// =============================================================================
// Strategy Selection
// =============================================================================

type attempt struct {
	strategy Strategy
	run      func(*Writer) error
}

// writeBody tries each emission strategy on a scratch writer and keeps the
// first one that produces statements.
func (w *Writer) writeBody() {
	attempts := []attempt{
		{StrategyGraph, (*Writer).writeGraph},
		{StrategyDirect, (*Writer).writeInstructions},
		{StrategyPassthrough, (*Writer).writePassthrough},
	}
	for _, a := range attempts {
		if a.strategy == StrategyGraph && (w.module == nil || w.opts.SkipGraph) {
			continue
		}
		sub := w.fork()
		err := a.run(sub)
		if err == nil && sub.emitted > 0 {
			w.adopt(sub, a.strategy)
			return
		}
		w.reject(a.strategy, err)
	}

	sub := w.fork()
	sub.writeStub()
	w.adopt(sub, StrategyStub)
}

// fork returns a writer sharing the analysis of w with an empty buffer.
func (w *Writer) fork() *Writer {
	sub := *w
	sub.out = strings.Builder{}
	sub.loopDepth = 0
	sub.emitted = 0
	sub.skipped = nil
	sub.failed = nil
	return &sub
}

func (w *Writer) adopt(sub *Writer, s Strategy) {
	if w.opts.AddComments && len(w.failed) > 0 {
		w.writeLine("// %s emission failed, using %s", w.failed[len(w.failed)-1], s)
	}
	w.out.WriteString(sub.out.String())
	w.emitted = sub.emitted
	w.skipped = sub.skipped
	w.strategy = s
	w.log.Debug("hlsl strategy selected",
		slog.String("strategy", s.String()),
		slog.Int("emitted", sub.emitted),
		slog.Int("skipped", len(sub.skipped)))

	if w.opts.Verbose && len(w.skipped) > 0 {
		w.writeLine("")
		w.writeLine("// Skipped assignments:")
		for _, text := range w.skipped {
			w.writeLine("// %s", text)
		}
	}
}

func (w *Writer) reject(s Strategy, err error) {
	w.failed = append(w.failed, s)
	if err == nil {
		w.log.Debug("hlsl strategy produced no statements", slog.String("strategy", s.String()))
		diag.Infof(w.diags, diag.GenStrategyFailed, diag.NoInstruction, "%s emission produced no statements", s)
		return
	}
	w.log.Debug("hlsl strategy failed", slog.String("strategy", s.String()), slog.Any("error", err))
	code, inst := diag.GenStrategyFailed, diag.NoInstruction
	var e *Error
	if errors.As(err, &e) {
		code, inst = e.code(), e.Instruction
		if e.IsInternalError() {
			w.log.Error("hlsl generator fault", slog.String("strategy", s.String()), slog.Any("error", err))
		}
	}
	diag.Warnf(w.diags, code, inst, "%s emission failed: %v", s, err)
}

// =============================================================================
// Statement Accounting
// =============================================================================

// count records one emitted statement.
func (w *Writer) count(inst int) error {
	w.emitted++
	if w.emitted > w.opts.MaxStatements {
		return errorAt(ErrStatementBudgetExceeded, inst,
			"more than %d statements", w.opts.MaxStatements)
	}
	return nil
}

// skip records an assignment that could not be rendered.
func (w *Writer) skip(text string, inst int) error {
	const maxSkipText = 160
	if len(text) > maxSkipText {
		text = text[:maxSkipText] + "..."
	}
	text = strings.ReplaceAll(text, "\n", " ")
	w.skipped = append(w.skipped, text)
	diag.Warnf(w.diags, diag.GenSkippedAssignment, inst, "skipped %s", text)
	if len(w.skipped) > w.opts.MaxStatements/2 {
		return errorAt(ErrStatementBudgetExceeded, inst,
			"%d assignments skipped", len(w.skipped))
	}
	return nil
}

// assign writes target = value, dropping identities and invalid values.
func (w *Writer) assign(target, value string, inst int) error {
	if !validExpression(target) || !validExpression(value) {
		return w.skip(target+" = "+value, inst)
	}
	if target == value {
		return nil
	}
	w.writeLine("%s = %s;", target, value)
	return w.count(inst)
}

// validExpression rejects empty text, error markers and bare integers.
func validExpression(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "/* ERROR") {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}

// writeComment writes the disassembly of instruction index as a comment.
func (w *Writer) writeComment(index int) {
	if !w.opts.AddComments || index < 0 || index >= len(w.prog.Instructions) {
		return
	}
	w.writeLine("// %s", w.prog.FormatInstruction(&w.prog.Instructions[index]))
}

// =============================================================================
// Output Helpers
// =============================================================================

// writeLine writes an indented line with newline.
func (w *Writer) writeLine(format string, args ...any) {
	if format != "" {
		w.writeIndent()
	}
	fmt.Fprintf(&w.out, format, args...)
	w.out.WriteByte('\n')
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}
