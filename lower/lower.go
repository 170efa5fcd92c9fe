package lower

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"

	"github.com/gogpu/dxdec/diag"
	"github.com/gogpu/dxdec/internal/logging"
	"github.com/gogpu/dxdec/ir"
	"github.com/gogpu/dxdec/shader"
)

// Options configures Build.
type Options struct {
	// Logger receives debug events. Nil discards them.
	Logger *slog.Logger

	// Diagnostics receives a diagnostic for every fatal error. Nil discards.
	Diagnostics diag.Reporter
}

// Build lifts prog into a node graph and statement list.
func Build(prog *shader.Program, opts *Options) (*ir.Program, error) {
	if opts == nil {
		opts = &Options{}
	}
	b := newBuilder(prog, opts)
	out, err := b.build()
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			diag.Errorf(b.diags, e.code(), e.Instruction, "%s", e.Message)
		}
		return nil, err
	}
	b.log.Debug("lowered program",
		slog.String("profile", prog.Profile()),
		slog.Bool("structured", out.Structured),
		slog.Int("nodes", out.Graph.Len()),
		slog.Int("statements", len(out.Body)),
		slog.Int("outputs", len(out.Outputs)))
	return out, nil
}

type builder struct {
	prog  *shader.Program
	g     *ir.Graph
	state *RegisterState
	log   *slog.Logger
	diags diag.Reporter

	structured bool
	frames     []*frame

	// Straight-line bookkeeping.
	clips     ir.Block
	lastWrite map[shader.RegisterComponentKey]int

	outputs map[shader.RegisterComponentKey]struct{}
}

func newBuilder(prog *shader.Program, opts *Options) *builder {
	diags := opts.Diagnostics
	if diags == nil {
		diags = diag.Nop
	}
	return &builder{
		prog:       prog,
		g:          ir.NewGraph(),
		state:      NewRegisterState(),
		log:        logging.Or(opts.Logger),
		diags:      diags,
		structured: isStructured(prog),
		lastWrite:  make(map[shader.RegisterComponentKey]int),
		outputs:    make(map[shader.RegisterComponentKey]struct{}),
	}
}

func isStructured(prog *shader.Program) bool {
	for i := range prog.Instructions {
		if prog.Instructions[i].Opcode.IsFlowControl() {
			return true
		}
	}
	return false
}

func (b *builder) build() (*ir.Program, error) {
	if err := b.loadConstants(); err != nil {
		return nil, err
	}
	b.frames = []*frame{{kind: frameRoot, assigned: newLaneValues()}}

	for i := range b.prog.Instructions {
		if err := b.instruction(i, &b.prog.Instructions[i]); err != nil {
			return nil, err
		}
	}

	out := &ir.Program{
		Graph:      b.g,
		Structured: b.structured,
		Outputs:    sortedLanes(b.outputs),
	}
	if b.structured {
		if len(b.frames) != 1 {
			top := b.frames[len(b.frames)-1]
			return nil, newError(ErrUnbalancedFlow, top.inst, b.prog.Instructions[top.inst].Opcode,
				"block is never closed")
		}
		out.Body = b.frames[0].block
		return out, nil
	}

	body := make(ir.Block, 0, len(b.clips)+len(out.Outputs))
	body = append(body, b.clips...)
	for _, lane := range out.Outputs {
		h, _ := b.state.Lookup(lane)
		body = append(body, ir.Statement{Kind: ir.StmtAssign{
			Target:      lane,
			Value:       h,
			Instruction: b.lastWrite[lane],
			Writes:      []shader.RegisterComponentKey{lane},
		}})
	}
	out.Body = body
	return out, nil
}

// instruction dispatches one instruction.
func (b *builder) instruction(index int, inst *shader.Instruction) error {
	switch inst.Opcode {
	case shader.OpNop, shader.OpComment, shader.OpPhase, shader.OpEnd:
		return nil
	case shader.OpRet:
		return b.ret(index)
	case shader.OpDcl:
		return b.declare(index, inst)
	case shader.OpDef, shader.OpDefI, shader.OpDefB:
		return b.define(index, inst)
	case shader.OpTexKill:
		return b.texkill(index, inst)
	}
	if inst.Opcode.IsFlowControl() {
		return b.flow(index, inst)
	}
	if !inst.HasDestination() {
		return newError(ErrUnsupportedOpcode, index, inst.Opcode, "opcode %s is not supported", inst.Opcode)
	}
	if inst.Dest.Register.Type == shader.RegisterSampler {
		return nil
	}

	vals, err := b.values(index, inst)
	if err != nil {
		return err
	}
	pending := make([]pendingWrite, 0, 4)
	for _, c := range vals.produced.Components() {
		h := vals.nodes[c]
		if inst.Dest.Result.Has(shader.ResultSaturate) {
			h = b.g.Unary(ir.UnarySaturate, h)
		}
		pending = append(pending, pendingWrite{lane: inst.Dest.Register.Lane(c), value: h})
	}
	b.commit(index, inst, pending)
	return nil
}

type pendingWrite struct {
	lane  shader.RegisterComponentKey
	value ir.NodeHandle
}

// commit publishes the writes of one instruction.
func (b *builder) commit(index int, inst *shader.Instruction, writes []pendingWrite) {
	if len(writes) == 0 {
		return
	}
	var written []shader.RegisterComponentKey
	if b.structured {
		written = make([]shader.RegisterComponentKey, len(writes))
		for i, w := range writes {
			written[i] = w.lane
		}
	}
	reads := b.reads(inst)
	for _, w := range writes {
		if w.lane.Register.IsOutput(b.prog.Type, b.prog.Major) {
			b.outputs[w.lane] = struct{}{}
		}
		if !b.structured {
			b.state.Set(w.lane, w.value)
			b.lastWrite[w.lane] = index
			continue
		}
		b.emit(ir.StmtAssign{
			Target:      w.lane,
			Value:       w.value,
			Instruction: index,
			Reads:       reads,
			Writes:      written,
		})
		b.top().assigned[w.lane] = w.value
		b.state.Set(w.lane, b.g.RegisterInput(w.lane))
	}
}

// reads lists the source lanes an instruction consumes.
func (b *builder) reads(inst *shader.Instruction) []shader.RegisterComponentKey {
	if !b.structured {
		return nil
	}
	set := make(map[shader.RegisterComponentKey]struct{})
	for i := range inst.Src {
		src := &inst.Src[i]
		if src.Register.Type == shader.RegisterSampler {
			continue
		}
		if inst.Opcode.IsParallel() {
			for _, c := range inst.WriteMask().Components() {
				set[src.Register.Lane(src.Swizzle.Component(c))] = struct{}{}
			}
			continue
		}
		for c := range 4 {
			set[src.Register.Lane(src.Swizzle.Component(c))] = struct{}{}
		}
	}
	return sortedLanes(set)
}

func sortedLanes(set map[shader.RegisterComponentKey]struct{}) []shader.RegisterComponentKey {
	lanes := maps.Keys(set)
	slices.SortFunc(lanes, shader.RegisterComponentKey.Compare)
	return lanes
}
