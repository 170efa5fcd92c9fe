// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"golang.org/x/exp/slog"

	"github.com/gogpu/dxdec/diag"
	"github.com/gogpu/dxdec/internal/logging"
	"github.com/gogpu/dxdec/ir"
	"github.com/gogpu/dxdec/shader"
)

// DefaultMaxStatements is the statement budget of graph emission.
const DefaultMaxStatements = 8192

// Options configures HLSL code generation.
type Options struct {
	// EntryPoint names the generated function.
	// Defaults to "VertexMain" or "PixelMain".
	EntryPoint string

	// Header prefixes the output with a comment naming the profile.
	Header bool

	// AddComments writes the disassembly of each instruction above the
	// statements generated from it.
	AddComments bool

	// Verbose lists skipped assignments and merge points as comments.
	Verbose bool

	// OutputDefaultValues writes constant table defaults as initializers.
	OutputDefaultValues bool

	// IgnorePreshader drops the preshader text of effect programs.
	IgnorePreshader bool

	// CommonDeclarations lists constants declared by an enclosing effect.
	// They are referenced by name but not declared again.
	CommonDeclarations []string

	// MaxStatements bounds graph emission. More than half of it in
	// skipped assignments, or more than all of it in emitted statements,
	// abandons the graph strategy.
	MaxStatements int

	// SkipGraph goes straight to direct instruction emission.
	SkipGraph bool

	// Logger receives debug records about strategy selection.
	Logger *slog.Logger

	// Diagnostics receives generation diagnostics.
	Diagnostics diag.Reporter
}

// DefaultOptions returns sensible default options for HLSL generation.
func DefaultOptions() *Options {
	return &Options{
		MaxStatements: DefaultMaxStatements,
	}
}

// Strategy identifies how the function body was produced.
type Strategy uint8

const (
	// StrategyGraph renders the lifted and simplified expression graph.
	StrategyGraph Strategy = iota

	// StrategyDirect translates instructions one at a time.
	StrategyDirect

	// StrategyPassthrough copies inputs to outputs with matching semantics.
	StrategyPassthrough

	// StrategyStub returns zeroed outputs.
	StrategyStub
)

// String returns a human-readable strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyGraph:
		return "graph"
	case StrategyDirect:
		return "direct"
	case StrategyPassthrough:
		return "passthrough"
	case StrategyStub:
		return "stub"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// TranslationInfo contains metadata about the HLSL translation.
type TranslationInfo struct {
	// Strategy is the emission strategy that produced the body.
	Strategy Strategy

	// Failed lists the strategies tried before Strategy, in order.
	Failed []Strategy

	// Emitted is the number of statements written by Strategy.
	Emitted int

	// Skipped is the number of assignments dropped as invalid.
	Skipped int

	// Profile is the compiler profile of the program, e.g. "ps_2_0".
	Profile string

	// EntryPoint is the name of the generated function.
	EntryPoint string

	// ShaderModel is the model the program was written for.
	ShaderModel ShaderModel
}

// Compile generates HLSL source code for prog. module is the lifted
// program; when it is nil the graph strategy is not attempted.
// Returns the HLSL source, translation info, or an error.
func Compile(prog *shader.Program, module *ir.Program, options *Options) (string, *TranslationInfo, error) {
	if prog == nil {
		return "", nil, NewError(ErrInvalidProgram, "program is nil")
	}

	// Apply defaults for nil options
	if options == nil {
		options = DefaultOptions()
	}
	opts := *options
	if opts.MaxStatements <= 0 {
		opts.MaxStatements = DefaultMaxStatements
	}
	if opts.EntryPoint == "" {
		opts.EntryPoint = prog.Type.Title() + "Main"
	}
	opts.Logger = logging.Or(opts.Logger)
	if opts.Diagnostics == nil {
		opts.Diagnostics = diag.Nop
	}
	if module != nil && module.Graph == nil {
		module = nil
	}

	w := newWriter(prog, module, &opts)
	if err := w.writeModule(); err != nil {
		return "", nil, fmt.Errorf("hlsl: %w", err)
	}

	info := &TranslationInfo{
		Strategy:    w.strategy,
		Failed:      w.failed,
		Emitted:     w.emitted,
		Skipped:     len(w.skipped),
		Profile:     prog.Profile(),
		EntryPoint:  w.entry,
		ShaderModel: w.model,
	}
	return w.String(), info, nil
}
