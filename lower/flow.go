package lower

import (
	"github.com/gogpu/dxdec/ir"
	"github.com/gogpu/dxdec/shader"
)

type frameKind uint8

const (
	frameRoot frameKind = iota
	frameIf
	frameLoop
)

// laneValues records the value last assigned to each lane in a block.
type laneValues map[shader.RegisterComponentKey]ir.NodeHandle

func newLaneValues() laneValues { return make(laneValues) }

// frame is one open block of a structured program.
type frame struct {
	kind frameKind
	inst int

	// block receives emitted statements: the body of the root or a loop,
	// or the active branch of an if.
	block ir.Block

	// assigned is the active branch's lane map.
	assigned laneValues

	// if state
	cond     ir.NodeHandle
	accept   ir.Block
	inReject bool
	branches [2]laneValues
	before   *RegisterState

	// loop state
	loop ir.StmtLoop
}

func (b *builder) top() *frame { return b.frames[len(b.frames)-1] }

func (b *builder) emit(kind ir.StatementKind) {
	f := b.top()
	f.block = append(f.block, ir.Statement{Kind: kind})
}

func (b *builder) push(f *frame) { b.frames = append(b.frames, f) }

func (b *builder) pop() *frame {
	f := b.top()
	b.frames = b.frames[:len(b.frames)-1]
	// Lanes written inside the block now live in their register variables.
	parent := b.top()
	for lane := range f.branches[0] {
		parent.assigned[lane] = b.g.RegisterInput(lane)
	}
	for lane := range f.branches[1] {
		parent.assigned[lane] = b.g.RegisterInput(lane)
	}
	return f
}

// inLoop reports whether any open frame is a loop.
func (b *builder) inLoop() bool {
	for _, f := range b.frames {
		if f.kind == frameLoop {
			return true
		}
	}
	return false
}

// flow handles the flow-control opcodes of structured programs.
func (b *builder) flow(index int, inst *shader.Instruction) error {
	op := inst.Opcode
	switch op {
	case shader.OpIf, shader.OpIfC:
		cond, err := b.condition(index, inst)
		if err != nil {
			return err
		}
		f := &frame{kind: frameIf, inst: index, cond: cond, before: b.state.Snapshot()}
		f.branches = [2]laneValues{newLaneValues(), newLaneValues()}
		f.assigned = f.branches[0]
		b.push(f)

	case shader.OpElse:
		f := b.top()
		if f.kind != frameIf || f.inReject {
			return newError(ErrUnbalancedFlow, index, op, "else without matching if")
		}
		f.accept, f.block = f.block, nil
		f.inReject = true
		f.assigned = f.branches[1]

	case shader.OpEndIf:
		if b.top().kind != frameIf {
			return newError(ErrUnbalancedFlow, index, op, "endif without matching if")
		}
		f := b.pop()
		stmt := ir.StmtIf{Condition: f.cond, Instruction: f.inst}
		if f.inReject {
			stmt.Accept, stmt.Reject = f.accept, f.block
		} else {
			stmt.Accept = f.block
		}
		b.emit(stmt)
		b.phis(f)

	case shader.OpRep, shader.OpLoop:
		loop := ir.StmtLoop{Kind: ir.LoopRepeat, Instruction: index}
		counter, ok := loopCounter(inst)
		if !ok {
			return newError(ErrUnbalancedFlow, index, op, "%s has no integer counter operand", op)
		}
		loop.Count = b.read(counter.Lane(0))
		if op == shader.OpLoop {
			loop.Kind = ir.LoopCounter
			loop.Start = b.read(counter.Lane(1))
			loop.Step = b.read(counter.Lane(2))
		}
		f := &frame{kind: frameLoop, inst: index, loop: loop}
		f.branches = [2]laneValues{newLaneValues(), newLaneValues()}
		f.assigned = f.branches[0]
		b.push(f)

	case shader.OpEndRep, shader.OpEndLoop:
		f := b.top()
		if f.kind != frameLoop {
			return newError(ErrUnbalancedFlow, index, op, "%s without an open loop", op)
		}
		opener := b.prog.Instructions[f.inst].Opcode
		if (op == shader.OpEndRep) != (opener == shader.OpRep) {
			return newError(ErrUnbalancedFlow, index, op, "%s closes %s", op, opener)
		}
		f = b.pop()
		f.loop.Body = f.block
		b.emit(f.loop)

	case shader.OpBreak, shader.OpBreakC:
		if !b.inLoop() {
			return newError(ErrUnbalancedFlow, index, op, "%s outside a loop", op)
		}
		stmt := ir.StmtBreak{Instruction: index}
		if op == shader.OpBreakC {
			cond, err := b.condition(index, inst)
			if err != nil {
				return err
			}
			stmt.Condition = &cond
		}
		b.emit(stmt)

	default:
		return newError(ErrUnsupportedOpcode, index, op, "opcode %s is not supported", op)
	}
	return nil
}

// condition builds the boolean of if b#, ifc and breakc.
func (b *builder) condition(index int, inst *shader.Instruction) (ir.NodeHandle, error) {
	if inst.Opcode == shader.OpIf {
		return b.source(inst, 0, 0), nil
	}
	op, ok := ir.ComparisonOp(inst.Control)
	if !ok {
		return 0, newError(ErrUnsupportedOpcode, index, inst.Opcode, "missing comparison")
	}
	return b.g.Binary(op, b.source(inst, 0, 0), b.source(inst, 1, 0)), nil
}

func loopCounter(inst *shader.Instruction) (shader.RegisterKey, bool) {
	for i := range inst.Src {
		if inst.Src[i].Register.Type == shader.RegisterConstInt {
			return inst.Src[i].Register, true
		}
	}
	return shader.RegisterKey{}, false
}

// phis appends a merge record for every lane assigned in either branch
// of a closed if.
func (b *builder) phis(f *frame) {
	set := make(map[shader.RegisterComponentKey]struct{})
	for lane := range f.branches[0] {
		set[lane] = struct{}{}
	}
	for lane := range f.branches[1] {
		set[lane] = struct{}{}
	}
	for _, lane := range sortedLanes(set) {
		prior, ok := f.before.Lookup(lane)
		if !ok {
			prior = b.g.RegisterInput(lane)
		}
		candidates := make([]ir.NodeHandle, 2)
		for i, branch := range f.branches {
			if v, ok := branch[lane]; ok {
				candidates[i] = v
			} else {
				candidates[i] = prior
			}
		}
		b.emit(ir.StmtPhi{Target: lane, Candidates: candidates})
	}
}

// ret ends the program early from inside a block.
func (b *builder) ret(index int) error {
	if b.structured && len(b.frames) > 1 {
		b.emit(ir.StmtReturn{})
	}
	return nil
}
