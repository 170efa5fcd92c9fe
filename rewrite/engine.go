package rewrite

import (
	"context"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"

	"github.com/gogpu/dxdec/diag"
	"github.com/gogpu/dxdec/internal/logging"
	"github.com/gogpu/dxdec/ir"
)

// Default bounds of a run.
const (
	DefaultMaxDepth      = 128
	DefaultMaxReductions = 10000
)

// Options configures an Engine.
type Options struct {
	// MaxDepth bounds the recursion of one reduction. Zero means
	// DefaultMaxDepth.
	MaxDepth int

	// MaxReductions bounds the nodes visited in one run. Zero means
	// DefaultMaxReductions.
	MaxReductions int

	// KeepMultiplyAdd disables the MultiplyAddExpand rule.
	KeepMultiplyAdd bool

	Logger      *slog.Logger
	Diagnostics diag.Reporter
}

// Stats summarizes one run.
type Stats struct {
	// Visited is the number of nodes reduced.
	Visited int
	// Rewrites is the number of rule applications.
	Rewrites int
	// Fired counts applications per rule name.
	Fired map[string]int
	// Truncated is set when a bound stopped the run early.
	Truncated bool
}

// Engine reduces node graphs with ordered rule lists.
type Engine struct {
	nodes  []Rule
	groups []Rule

	maxDepth      int
	maxReductions int
	log           *slog.Logger
	diags         diag.Reporter

	// per-run state
	memo  map[ir.NodeHandle]ir.NodeHandle
	stats Stats
}

// New returns an engine with the default rule lists.
func New(opts *Options) *Engine {
	if opts == nil {
		opts = &Options{}
	}
	e := &Engine{
		nodes:         NodeRules(),
		groups:        GroupRules(),
		maxDepth:      opts.MaxDepth,
		maxReductions: opts.MaxReductions,
		log:           logging.Or(opts.Logger),
		diags:         opts.Diagnostics,
	}
	if e.maxDepth <= 0 {
		e.maxDepth = DefaultMaxDepth
	}
	if e.maxReductions <= 0 {
		e.maxReductions = DefaultMaxReductions
	}
	if opts.KeepMultiplyAdd {
		e.nodes = slices.DeleteFunc(e.nodes, func(r Rule) bool { return r.Name == "MultiplyAddExpand" })
	}
	return e
}

// WithRules replaces the rule lists. It is meant for tests and tools that
// experiment with rule sets.
func (e *Engine) WithRules(nodes, groups []Rule) *Engine {
	e.nodes, e.groups = nodes, groups
	return e
}

func (e *Engine) reset() {
	e.memo = make(map[ir.NodeHandle]ir.NodeHandle)
	e.stats = Stats{Fired: make(map[string]int)}
}

// Run reduces every node referenced by the statements of p, rewrites the
// statements to the reduced handles and normalizes operand order.
func (e *Engine) Run(p *ir.Program) Stats {
	e.reset()
	g := p.Graph
	p.RewriteRoots(func(h ir.NodeHandle) ir.NodeHandle {
		return e.reduce(g, h, 0)
	})
	finalize(g, p.Roots())
	e.report()
	return e.stats
}

// Reduce reduces the subtree rooted at h and returns the handle that now
// computes its value.
func (e *Engine) Reduce(g *ir.Graph, h ir.NodeHandle) ir.NodeHandle {
	e.reset()
	out := e.reduce(g, h, 0)
	e.report()
	return out
}

func (e *Engine) reduce(g *ir.Graph, h ir.NodeHandle, depth int) ir.NodeHandle {
	if out, ok := e.memo[h]; ok {
		return out
	}
	if depth > e.maxDepth {
		e.truncate("recursion depth %d reached at node %d", e.maxDepth, h)
		return h
	}
	if e.stats.Visited >= e.maxReductions {
		e.truncate("reduction budget of %d nodes spent", e.maxReductions)
		return h
	}
	e.stats.Visited++
	// Mark before descending so a malformed cyclic graph terminates.
	e.memo[h] = h

	if isLeaf(g, h) {
		return h
	}
	for i, in := range g.Inputs(h) {
		out := e.reduce(g, in, depth+1)
		if out == in {
			continue
		}
		if err := g.SetInput(h, i, out); err != nil {
			e.reject(h, err)
		}
	}

	if out, ok := e.apply(g, h, e.nodes, depth); ok {
		return out
	}
	if out, ok := e.apply(g, h, e.groups, depth); ok {
		return out
	}
	return h
}

// apply tries rules in order. The first replacement takes over the
// consumers of h and is reduced in turn.
func (e *Engine) apply(g *ir.Graph, h ir.NodeHandle, rules []Rule, depth int) (ir.NodeHandle, bool) {
	for _, rule := range rules {
		with, ok := rule.Apply(g, h)
		if !ok || with == h {
			continue
		}
		if err := g.Replace(h, with); err != nil {
			e.reject(h, err)
			continue
		}
		e.stats.Rewrites++
		e.stats.Fired[rule.Name]++
		e.log.Log(context.Background(), logging.LevelTrace, "rule fired",
			slog.String("rule", rule.Name),
			slog.Int("node", int(h)),
			slog.Int("replacement", int(with)),
			slog.Int("depth", depth))
		out := e.reduce(g, with, depth+1)
		e.memo[h] = out
		return out, true
	}
	return 0, false
}

// isLeaf reports whether h is a constant or a plain register input.
// Relative inputs are reduced through their index operand.
func isLeaf(g *ir.Graph, h ir.NodeHandle) bool {
	switch k := g.Kind(h).(type) {
	case ir.Constant:
		return true
	case ir.RegisterInput:
		return k.Relative == nil
	}
	return false
}

func (e *Engine) truncate(format string, args ...any) {
	if e.stats.Truncated {
		return
	}
	e.stats.Truncated = true
	diag.Warnf(e.diags, diag.RewriteBoundHit, diag.NoInstruction, format, args...)
	e.log.Warn("rewrite stopped early", slog.Int("visited", e.stats.Visited))
}

func (e *Engine) reject(h ir.NodeHandle, err error) {
	diag.Warnf(e.diags, diag.RewriteRejected, diag.NoInstruction, "rewrite of node %d rejected: %v", h, err)
	e.log.Debug("rewrite rejected", slog.Int("node", int(h)), slog.Any("error", err))
}

func (e *Engine) report() {
	names := maps.Keys(e.stats.Fired)
	slices.Sort(names)
	for _, name := range names {
		diag.Infof(e.diags, diag.RewriteRuleFired, diag.NoInstruction, "%s applied %d times", name, e.stats.Fired[name])
	}
	e.log.Debug("rewrite finished",
		slog.Int("visited", e.stats.Visited),
		slog.Int("rewrites", e.stats.Rewrites),
		slog.Bool("truncated", e.stats.Truncated))
}
