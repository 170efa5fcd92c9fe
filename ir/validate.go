package ir

import (
	"fmt"

	"github.com/yourbasic/graph"
)

// ValidationError describes one inconsistency found by Verify.
type ValidationError struct {
	Message string
	// Node is the offending node, if any.
	Node *NodeHandle
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("node %d: %s", *e.Node, e.Message)
	}
	return e.Message
}

// Acyclic reports whether the graph has no cycles.
func (g *Graph) Acyclic() bool {
	dg := graph.New(len(g.Nodes))
	for i := range g.Nodes {
		for _, in := range g.Nodes[i].Inputs {
			if g.Valid(in) {
				dg.Add(i, int(in))
			}
		}
	}
	return graph.Acyclic(dg)
}

// Verify checks the structural invariants of a program: handles in range,
// input arity per kind, consistent user lists, an acyclic graph and
// statements that reference valid nodes.
func Verify(p *Program) ([]ValidationError, error) {
	if p == nil || p.Graph == nil {
		return nil, fmt.Errorf("program is nil")
	}
	v := verifier{g: p.Graph}
	v.verifyNodes()
	if len(v.errors) == 0 && !p.Graph.Acyclic() {
		v.addError(nil, "graph contains a cycle")
	}
	v.verifyBlock(p.Body, 0)
	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

type verifier struct {
	g      *Graph
	errors []ValidationError
}

func (v *verifier) addError(h *NodeHandle, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{Message: fmt.Sprintf(format, args...), Node: h})
}

func (v *verifier) verifyNodes() {
	g := v.g
	counted := make(map[[2]NodeHandle]int)
	for i := range g.Nodes {
		h := NodeHandle(i)
		n := &g.Nodes[i]
		for _, in := range n.Inputs {
			if !g.Valid(in) {
				v.addError(&h, "input %d out of range", in)
				continue
			}
			counted[[2]NodeHandle{in, h}]++
		}
		v.verifyArity(h, n)
	}
	for i := range g.Nodes {
		h := NodeHandle(i)
		users := make(map[NodeHandle]int)
		for _, u := range g.Nodes[i].users {
			users[u]++
		}
		for u, c := range users {
			if counted[[2]NodeHandle{h, u}] != c {
				v.addError(&h, "user list disagrees with inputs of node %d", u)
			}
		}
	}
}

func (v *verifier) verifyArity(h NodeHandle, n *Node) {
	want := -1
	switch k := n.Kind.(type) {
	case Constant:
		want = 0
	case RegisterInput:
		want = 0
		if k.Relative != nil {
			want = 1
		}
	case Unary:
		want = 1
	case Binary:
		want = 2
	case Ternary:
		want = 3
	case DotProduct:
		want = 2
		if len(n.Inputs) == 2 && v.g.Valid(n.Inputs[0]) && v.g.Valid(n.Inputs[1]) {
			a, b := n.Inputs[0], n.Inputs[1]
			if !v.isGroup(a) || !v.isGroup(b) || v.g.Lanes(a) != v.g.Lanes(b) {
				v.addError(&h, "dot product needs two groups of equal length")
			}
		}
	case Normalize:
		want = 1
		if k.Component < 0 || k.Component > 2 {
			v.addError(&h, "normalize component %d out of range", k.Component)
		}
	case TextureLoad:
		want = 2
	case Group:
		if len(n.Inputs) == 0 {
			v.addError(&h, "empty group")
		}
	case nil:
		v.addError(&h, "node has no kind")
	}
	if want >= 0 && len(n.Inputs) != want {
		v.addError(&h, "%s takes %d inputs, has %d", KindName(n.Kind), want, len(n.Inputs))
	}
}

func (v *verifier) isGroup(h NodeHandle) bool {
	_, ok := v.g.Nodes[h].Kind.(Group)
	return ok
}

func (v *verifier) verifyRoot(h NodeHandle, what string, stmt int) {
	if !v.g.Valid(h) {
		v.addError(nil, "statement %d: %s references node %d out of range", stmt, what, h)
	}
}

func (v *verifier) verifyBlock(b Block, depth int) {
	for i, s := range b {
		switch s := s.Kind.(type) {
		case StmtAssign:
			v.verifyRoot(s.Value, "assignment", i)
		case StmtBreak:
			if depth == 0 {
				v.addError(nil, "statement %d: break outside a loop", i)
			}
			if s.Condition != nil {
				v.verifyRoot(*s.Condition, "break condition", i)
			}
		case StmtClip:
			v.verifyRoot(s.Value, "clip", i)
		case StmtIf:
			v.verifyRoot(s.Condition, "if condition", i)
			v.verifyBlock(s.Accept, depth)
			v.verifyBlock(s.Reject, depth)
		case StmtLoop:
			v.verifyRoot(s.Count, "loop count", i)
			if s.Kind == LoopCounter {
				v.verifyRoot(s.Start, "loop start", i)
				v.verifyRoot(s.Step, "loop step", i)
			}
			v.verifyBlock(s.Body, depth+1)
		case StmtPhi:
			for _, c := range s.Candidates {
				v.verifyRoot(c, "phi candidate", i)
			}
		case StmtReturn:
		case nil:
			v.addError(nil, "statement %d has no kind", i)
		}
	}
}
