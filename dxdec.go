// Package dxdec decompiles Direct3D 9 shader programs to HLSL.
//
// A program is an already-decoded instruction stream plus its constant
// table (see the shader package). Decompilation runs in stages:
//   - Lift: build the node graph and statement list (lower)
//   - Simplify: rewrite the graph to a fixed point (rewrite)
//   - Generate: emit HLSL, falling back from the graph to direct
//     instruction translation, input passthrough and finally a stub (hlsl)
//
// Example usage:
//
//	prog, err := shader.ReadFile("water.ps.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	code, info, err := dxdec.Decompile(prog, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("// %s via %s\n%s", info.Profile, info.Strategy, code)
//
// Options can be loaded from a TOML file with LoadOptions.
package dxdec

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"

	"github.com/gogpu/dxdec/diag"
	"github.com/gogpu/dxdec/hlsl"
	"github.com/gogpu/dxdec/internal/logging"
	"github.com/gogpu/dxdec/ir"
	"github.com/gogpu/dxdec/lower"
	"github.com/gogpu/dxdec/rewrite"
	"github.com/gogpu/dxdec/shader"
)

// Options configures decompilation.
type Options struct {
	// EntryPoint names the generated function.
	// Defaults to "VertexMain" or "PixelMain".
	EntryPoint string `toml:"entry_point"`

	// SkipAnalysis translates instructions one at a time without building
	// the node graph.
	SkipAnalysis bool `toml:"skip_analysis"`

	// OutputDefaultValues writes constant table defaults as initializers.
	OutputDefaultValues bool `toml:"default_values"`

	// AddComments writes the disassembly above each translated instruction.
	AddComments bool `toml:"comments"`

	// Verbose lists suppressed assignments as comments.
	Verbose bool `toml:"verbose"`

	// Header starts the output with a comment naming the profile.
	Header bool `toml:"header"`

	// IgnorePreshader drops the preshader text.
	IgnorePreshader bool `toml:"ignore_preshader"`

	// MaxStatements bounds graph emission (default: hlsl.DefaultMaxStatements).
	MaxStatements int `toml:"max_statements"`

	// MaxReductions and MaxRewriteDepth bound the rewrite engine.
	// Zero selects the engine defaults.
	MaxReductions   int `toml:"max_reductions"`
	MaxRewriteDepth int `toml:"max_rewrite_depth"`

	// CommonDeclarations names constants declared by an enclosing effect.
	CommonDeclarations []string `toml:"common_declarations"`

	// VerifyGraph checks the structural invariants of the lifted and the
	// rewritten graph. A violation is an error.
	VerifyGraph bool `toml:"verify_graph"`

	Logger      *slog.Logger  `toml:"-"`
	Diagnostics diag.Reporter `toml:"-"`
}

// DefaultOptions returns sensible default options.
func DefaultOptions() *Options {
	return &Options{
		MaxStatements: hlsl.DefaultMaxStatements,
	}
}

// LoadOptions reads options from a TOML file. Keys that do not name an
// option are an error.
func LoadOptions(path string) (*Options, error) {
	opts := DefaultOptions()
	md, err := toml.DecodeFile(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "load options %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("load options %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return opts, nil
}

// Decompile translates program to HLSL.
//
// Construction errors (an opcode or constant the graph builder cannot lift)
// are fatal and return no text. Anything that goes wrong while emitting is
// recovered: the result is still valid HLSL and the problems are reported
// through Options.Diagnostics.
func Decompile(program *shader.Program, options *Options) (string, *hlsl.TranslationInfo, error) {
	if program == nil {
		return "", nil, errors.New("dxdec: program is nil")
	}
	if options == nil {
		options = DefaultOptions()
	}
	log := logging.Or(options.Logger)

	var module *ir.Program
	if !options.SkipAnalysis {
		lifted, err := Lift(program, options)
		switch {
		case lower.IsKind(err, lower.ErrUnbalancedFlow):
			log.Debug("flow control does not nest, skipping the graph", slog.Any("error", err))
		case err != nil:
			return "", nil, err
		default:
			module = lifted
			stats := Simplify(module, options)
			log.Debug("simplified graph",
				slog.Int("visited", stats.Visited),
				slog.Int("rewrites", stats.Rewrites),
				slog.Bool("truncated", stats.Truncated))
			if err := verify(module, options, "rewrite"); err != nil {
				return "", nil, err
			}
		}
	}

	code, info, err := Generate(program, module, options)
	if err != nil {
		return "", nil, errors.Wrap(err, "generation")
	}
	return code, info, nil
}

// DecompileFile reads a program dump and decompiles it.
func DecompileFile(path string, options *Options) (string, *hlsl.TranslationInfo, error) {
	prog, err := shader.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	code, info, err := Decompile(prog, options)
	if err != nil {
		return "", nil, errors.Wrap(err, path)
	}
	return code, info, nil
}

// Lift builds the node graph of program.
func Lift(program *shader.Program, options *Options) (*ir.Program, error) {
	if options == nil {
		options = DefaultOptions()
	}
	module, err := lower.Build(program, &lower.Options{
		Logger:      options.Logger,
		Diagnostics: options.Diagnostics,
	})
	if err != nil {
		return nil, errors.Wrap(err, "lowering")
	}
	if err := verify(module, options, "lowering"); err != nil {
		return nil, err
	}
	return module, nil
}

// Simplify rewrites module in place.
func Simplify(module *ir.Program, options *Options) rewrite.Stats {
	if options == nil {
		options = DefaultOptions()
	}
	return rewrite.New(&rewrite.Options{
		MaxDepth:      options.MaxRewriteDepth,
		MaxReductions: options.MaxReductions,
		Logger:        options.Logger,
		Diagnostics:   options.Diagnostics,
	}).Run(module)
}

// Generate emits HLSL for program. A nil module skips the graph strategy.
func Generate(program *shader.Program, module *ir.Program, options *Options) (string, *hlsl.TranslationInfo, error) {
	if options == nil {
		options = DefaultOptions()
	}
	return hlsl.Compile(program, module, &hlsl.Options{
		EntryPoint:          options.EntryPoint,
		Header:              options.Header,
		AddComments:         options.AddComments,
		Verbose:             options.Verbose,
		OutputDefaultValues: options.OutputDefaultValues,
		IgnorePreshader:     options.IgnorePreshader,
		CommonDeclarations:  options.CommonDeclarations,
		MaxStatements:       options.MaxStatements,
		SkipGraph:           module == nil,
		Logger:              options.Logger,
		Diagnostics:         options.Diagnostics,
	})
}

func verify(module *ir.Program, options *Options, stage string) error {
	if !options.VerifyGraph {
		return nil
	}
	problems, err := ir.Verify(module)
	if err != nil {
		return errors.Wrapf(err, "%s: verification", stage)
	}
	if len(problems) > 0 {
		return errors.Wrapf(&problems[0], "%s: verification failed with %d problems", stage, len(problems))
	}
	return nil
}
