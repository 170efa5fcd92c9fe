package ir

import "github.com/gogpu/dxdec/shader"

// Statement is one entry of a program body.
type Statement struct {
	Kind StatementKind
}

// StatementKind represents the different kinds of statements.
type StatementKind interface {
	statementKind()
}

// Block is a sequence of statements executed in order.
type Block []Statement

// StmtAssign stores a value into one register lane.
type StmtAssign struct {
	Target shader.RegisterComponentKey
	Value  NodeHandle

	// Instruction is the index of the instruction that produced the write.
	Instruction int

	// Reads and Writes are the lanes the instruction read and wrote.
	Reads  []shader.RegisterComponentKey
	Writes []shader.RegisterComponentKey
}

func (StmtAssign) statementKind() {}

// StmtBreak leaves the innermost loop. A nil Condition breaks unconditionally.
type StmtBreak struct {
	Condition   *NodeHandle
	Instruction int
}

func (StmtBreak) statementKind() {}

// StmtClip discards the pixel. Value is a UnaryClip node.
type StmtClip struct {
	Value       NodeHandle
	Instruction int
}

func (StmtClip) statementKind() {}

// StmtIf executes Accept when Condition holds, otherwise Reject.
type StmtIf struct {
	Condition   NodeHandle
	Accept      Block
	Reject      Block
	Instruction int
}

func (StmtIf) statementKind() {}

// LoopKind distinguishes rep from loop.
type LoopKind uint8

const (
	// LoopRepeat is rep i#: Count iterations.
	LoopRepeat LoopKind = iota
	// LoopCounter is loop aL, i#: Count iterations with aL starting at
	// Start and advancing by Step.
	LoopCounter
)

// StmtLoop repeats Body.
type StmtLoop struct {
	Kind        LoopKind
	Count       NodeHandle
	Start       NodeHandle
	Step        NodeHandle
	Body        Block
	Instruction int
}

func (StmtLoop) statementKind() {}

// StmtReturn ends the program.
type StmtReturn struct{}

func (StmtReturn) statementKind() {}

// StmtPhi records the values that may reach a lane where branches merge.
// The register variable already carries the merged value; the statement is
// informational.
type StmtPhi struct {
	Target     shader.RegisterComponentKey
	Candidates []NodeHandle
}

func (StmtPhi) statementKind() {}

// Walk calls fn for every statement of b, descending into nested blocks.
func (b Block) Walk(fn func(s *Statement)) {
	for i := range b {
		fn(&b[i])
		switch s := b[i].Kind.(type) {
		case StmtIf:
			s.Accept.Walk(fn)
			s.Reject.Walk(fn)
		case StmtLoop:
			s.Body.Walk(fn)
		}
	}
}

// Roots returns every node referenced directly by a statement, in
// statement order. Handles may repeat.
func (p *Program) Roots() []NodeHandle {
	var roots []NodeHandle
	p.Body.Walk(func(s *Statement) {
		switch s := s.Kind.(type) {
		case StmtAssign:
			roots = append(roots, s.Value)
		case StmtBreak:
			if s.Condition != nil {
				roots = append(roots, *s.Condition)
			}
		case StmtClip:
			roots = append(roots, s.Value)
		case StmtIf:
			roots = append(roots, s.Condition)
		case StmtLoop:
			roots = append(roots, s.Count)
			if s.Kind == LoopCounter {
				roots = append(roots, s.Start, s.Step)
			}
		case StmtPhi:
			roots = append(roots, s.Candidates...)
		}
	})
	return roots
}

// RewriteRoots replaces every statement root h with fn(h).
func (p *Program) RewriteRoots(fn func(NodeHandle) NodeHandle) {
	p.Body.rewriteRoots(fn)
}

func (b Block) rewriteRoots(fn func(NodeHandle) NodeHandle) {
	for i := range b {
		switch s := b[i].Kind.(type) {
		case StmtAssign:
			s.Value = fn(s.Value)
			b[i].Kind = s
		case StmtBreak:
			if s.Condition != nil {
				c := fn(*s.Condition)
				s.Condition = &c
			}
			b[i].Kind = s
		case StmtClip:
			s.Value = fn(s.Value)
			b[i].Kind = s
		case StmtIf:
			s.Condition = fn(s.Condition)
			s.Accept.rewriteRoots(fn)
			s.Reject.rewriteRoots(fn)
			b[i].Kind = s
		case StmtLoop:
			s.Count = fn(s.Count)
			if s.Kind == LoopCounter {
				s.Start = fn(s.Start)
				s.Step = fn(s.Step)
			}
			s.Body.rewriteRoots(fn)
			b[i].Kind = s
		case StmtPhi:
			for j, c := range s.Candidates {
				s.Candidates[j] = fn(c)
			}
			b[i].Kind = s
		}
	}
}

// Assignments returns the number of assignment statements in b, nested
// blocks included.
func (b Block) Assignments() int {
	n := 0
	b.Walk(func(s *Statement) {
		if _, ok := s.Kind.(StmtAssign); ok {
			n++
		}
	})
	return n
}
