// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/dxdec/ir"
	"github.com/gogpu/dxdec/shader"
)

// writeGraph renders the lifted program. Straight-line programs inline
// everything into their output assignments; structured programs keep
// registers as variables.
func (w *Writer) writeGraph() error {
	if w.module == nil || w.module.Graph == nil {
		return NewError(ErrInvalidProgram, "no expression graph")
	}
	if w.module.Structured {
		w.writeTemps(w.temps)
	} else {
		w.writeTemps(w.readTemps())
	}
	return w.writeBlock(w.module.Body)
}

// readTemps returns the temporaries a straight-line graph reads before
// writing them. Every other register value is inlined.
func (w *Writer) readTemps() []shader.RegisterKey {
	g := w.module.Graph
	seen := make(map[ir.NodeHandle]struct{})
	read := make(map[shader.RegisterKey]struct{})
	var visit func(h ir.NodeHandle)
	visit = func(h ir.NodeHandle) {
		if !g.Valid(h) {
			return
		}
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		if in, ok := g.Kind(h).(ir.RegisterInput); ok {
			read[in.Key.Register] = struct{}{}
		}
		for _, x := range g.Inputs(h) {
			visit(x)
		}
	}
	for _, s := range w.module.Body {
		switch k := s.Kind.(type) {
		case ir.StmtAssign:
			visit(k.Value)
		case ir.StmtClip:
			visit(k.Value)
		}
	}

	var keys []shader.RegisterKey
	for _, key := range w.temps {
		if _, ok := read[key]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// writeBlock writes a list of statements. Consecutive lane assignments
// of one register from one instruction are written together.
func (w *Writer) writeBlock(block ir.Block) error {
	for i := 0; i < len(block); {
		a, ok := block[i].Kind.(ir.StmtAssign)
		if !ok {
			if err := w.writeStatement(block[i].Kind); err != nil {
				return err
			}
			i++
			continue
		}
		run := []ir.StmtAssign{a}
		j := i + 1
		for ; j < len(block); j++ {
			next, ok := block[j].Kind.(ir.StmtAssign)
			if !ok || !continues(run[len(run)-1], next) {
				break
			}
			run = append(run, next)
		}
		if err := w.writeAssignments(run); err != nil {
			return err
		}
		i = j
	}
	return nil
}

func continues(prev, next ir.StmtAssign) bool {
	return next.Instruction == prev.Instruction &&
		next.Target.Register == prev.Target.Register &&
		next.Target.Component > prev.Target.Component
}

// writeStatement writes a single statement.
func (w *Writer) writeStatement(kind ir.StatementKind) error {
	switch s := kind.(type) {
	case ir.StmtAssign:
		return w.writeAssignments([]ir.StmtAssign{s})
	case ir.StmtIf:
		return w.writeIfStatement(s)
	case ir.StmtLoop:
		return w.writeLoopStatement(s)
	case ir.StmtBreak:
		return w.writeBreakStatement(s)
	case ir.StmtClip:
		return w.writeClipStatement(s)
	case ir.StmtReturn:
		w.writeLine("%s", w.returnStatement())
		return w.count(-1)
	case ir.StmtPhi:
		w.writePhi(s)
		return nil
	default:
		return NewError(ErrInternalError, fmt.Sprintf("unsupported statement type: %T", kind))
	}
}

// =============================================================================
// Assignments
// =============================================================================

// writeAssignments writes lane assignments of one register, vectorized
// when the values line up.
func (w *Writer) writeAssignments(run []ir.StmtAssign) error {
	inst := run[0].Instruction
	ref := w.reference(run[0].Target.Register, "")
	w.writeComment(inst)

	if len(run) > 1 {
		values := make([]ir.NodeHandle, len(run))
		components := make([]int, len(run))
		for i, a := range run {
			values[i] = a.Value
			components[i] = a.Target.Component
		}
		if value, ok := w.vectorExpression(values, inst); ok {
			return w.assign(ref.lanes(components), value, inst)
		}
	}

	for _, a := range run {
		value := w.expression(a.Value, a.Instruction)
		if err := w.assign(ref.lane(a.Target.Component), value, a.Instruction); err != nil {
			return err
		}
	}
	return nil
}

// condition renders a branch condition. Conditions cannot be skipped, so
// a degraded one abandons the strategy.
func (w *Writer) condition(h ir.NodeHandle, inst int) (string, error) {
	text := w.expression(h, inst)
	if !validExpression(text) {
		return "", errorAt(ErrInternalError, inst, "condition cannot be rendered: %s", text)
	}
	return text, nil
}

// =============================================================================
// Control Flow Statements
// =============================================================================

// writeIfStatement writes an if statement.
func (w *Writer) writeIfStatement(s ir.StmtIf) error {
	cond, err := w.condition(s.Condition, s.Instruction)
	if err != nil {
		return err
	}
	w.writeComment(s.Instruction)
	w.writeLine("if (%s) {", cond)
	if err := w.count(s.Instruction); err != nil {
		return err
	}

	w.pushIndent()
	if err := w.writeBlock(s.Accept); err != nil {
		w.popIndent()
		return fmt.Errorf("if accept block: %w", err)
	}
	w.popIndent()

	if len(s.Reject) > 0 {
		w.writeLine("} else {")
		w.pushIndent()
		if err := w.writeBlock(s.Reject); err != nil {
			w.popIndent()
			return fmt.Errorf("if reject block: %w", err)
		}
		w.popIndent()
	}

	w.writeLine("}")
	return nil
}

// writeLoopStatement writes rep and loop as counted for loops.
func (w *Writer) writeLoopStatement(s ir.StmtLoop) error {
	count, err := w.condition(s.Count, s.Instruction)
	if err != nil {
		return err
	}
	var start, step string
	if s.Kind == ir.LoopCounter {
		if start, err = w.condition(s.Start, s.Instruction); err != nil {
			return err
		}
		if step, err = w.condition(s.Step, s.Instruction); err != nil {
			return err
		}
	}

	w.writeComment(s.Instruction)
	w.writeLine("%s {", w.loopHeader(count, start, step, s.Kind == ir.LoopCounter))
	if err := w.count(s.Instruction); err != nil {
		return err
	}

	w.loopDepth++
	w.pushIndent()
	err = w.writeBlock(s.Body)
	w.popIndent()
	w.loopDepth--
	if err != nil {
		return fmt.Errorf("loop body: %w", err)
	}

	w.writeLine("}")
	return nil
}

// loopHeader renders the for header of the loop at the current depth.
func (w *Writer) loopHeader(count, start, step string, counter bool) string {
	it := loopCounterName(w.loopDepth)
	if !counter {
		return fmt.Sprintf("for (int %s = 0; %s < %s; ++%s)", it, it, count, it)
	}
	return fmt.Sprintf("for (int %s = 0, aL = %s; %s < %s; ++%s, aL += %s)",
		it, start, it, count, it, step)
}

// writeBreakStatement writes a break statement.
func (w *Writer) writeBreakStatement(s ir.StmtBreak) error {
	w.writeComment(s.Instruction)
	if s.Condition == nil {
		w.writeLine("break;")
		return w.count(s.Instruction)
	}
	cond, err := w.condition(*s.Condition, s.Instruction)
	if err != nil {
		return err
	}
	w.writeLine("if (%s) break;", cond)
	return w.count(s.Instruction)
}

// writeClipStatement writes a texkill as clip().
func (w *Writer) writeClipStatement(s ir.StmtClip) error {
	w.writeComment(s.Instruction)
	text := w.expression(s.Value, s.Instruction)
	if !validExpression(text) {
		return w.skip(text, s.Instruction)
	}
	w.writeLine("%s;", text)
	return w.count(s.Instruction)
}

// writePhi lists the values merging into a lane when verbose.
func (w *Writer) writePhi(s ir.StmtPhi) {
	if !w.opts.Verbose {
		return
	}
	parts := make([]string, len(s.Candidates))
	for i, h := range s.Candidates {
		parts[i] = w.expression(h, -1)
	}
	target := w.reference(s.Target.Register, "").lane(s.Target.Component)
	w.writeLine("// phi %s = {%s}", target, strings.Join(parts, ", "))
}
