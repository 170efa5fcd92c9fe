package ir

import (
	"errors"
	"testing"

	"github.com/gogpu/dxdec/shader"
)

func TestGraph_AddLinksUsers(t *testing.T) {
	g := NewGraph()
	x := g.RegisterInput(shader.Temp(0).Lane(0))
	m := g.Binary(BinaryMultiply, x, x)

	if got := g.UserCount(x); got != 2 {
		t.Errorf("UserCount(x) = %d, want 2", got)
	}
	if users := g.Users(x); len(users) != 1 || users[0] != m {
		t.Errorf("Users(x) = %v, want [%d]", users, m)
	}
}

func TestGraph_AddInputRejectsCycle(t *testing.T) {
	g := NewGraph()
	a := g.Constant(1)
	b := g.Unary(UnaryNegate, a)
	c := g.Unary(UnarySaturate, b)
	_ = g.Group(c)

	before := len(g.Nodes[a].Inputs)
	err := g.AddInput(a, c)
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("AddInput(a, c) error = %v, want *CycleError", err)
	}
	if cycle.Parent != a || cycle.Child != c {
		t.Errorf("CycleError = %+v, want parent %d child %d", cycle, a, c)
	}
	if len(g.Nodes[a].Inputs) != before {
		t.Error("rejected AddInput mutated the graph")
	}
	if err := g.AddInput(a, a); err == nil {
		t.Error("self loop accepted")
	}
}

func TestGraph_AddInputAcceptsDAG(t *testing.T) {
	g := NewGraph()
	x := g.RegisterInput(shader.Input(0).Lane(0))
	y := g.RegisterInput(shader.Input(0).Lane(1))
	grp := g.Group(x)
	if err := g.AddInput(grp, y); err != nil {
		t.Fatalf("AddInput: %v", err)
	}
	if got := g.Lanes(grp); got != 2 {
		t.Errorf("Lanes = %d, want 2", got)
	}
	if !g.Acyclic() {
		t.Error("graph reported cyclic")
	}
}

func TestGraph_AddInputOutOfRange(t *testing.T) {
	g := NewGraph()
	a := g.Constant(0)
	var herr *HandleError
	if err := g.AddInput(a, 42); !errors.As(err, &herr) {
		t.Errorf("error = %v, want *HandleError", err)
	}
}

func TestGraph_Replace(t *testing.T) {
	g := NewGraph()
	x := g.RegisterInput(shader.Temp(1).Lane(0))
	neg := g.Unary(UnaryNegate, x)
	negneg := g.Unary(UnaryNegate, neg)
	sum := g.Binary(BinaryAdd, negneg, negneg)

	if err := g.Replace(negneg, x); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if in := g.Inputs(sum); in[0] != x || in[1] != x {
		t.Errorf("inputs of sum = %v, want [%d %d]", in, x, x)
	}
	if g.UserCount(negneg) != 0 {
		t.Error("replaced node still has users")
	}
	// x is used by neg and twice by sum.
	if got := g.UserCount(x); got != 3 {
		t.Errorf("UserCount(x) = %d, want 3", got)
	}
	if users := g.Users(neg); len(users) != 0 {
		t.Errorf("Users(neg) = %v, want none once negneg is gone", users)
	}
	if errs, err := Verify(&Program{Graph: g}); err != nil || len(errs) > 0 {
		t.Errorf("Verify after Replace: %v %v", errs, err)
	}
}

func TestGraph_ReplaceRejectsCycle(t *testing.T) {
	g := NewGraph()
	x := g.RegisterInput(shader.Temp(0).Lane(0))
	sat := g.Unary(UnarySaturate, x)
	out := g.Binary(BinaryAdd, sat, x)

	// sat consumes x, so redirecting x's users to sat would make sat its own input.
	err := g.Replace(x, sat)
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("Replace error = %v, want *CycleError", err)
	}
	if g.Input(out, 1) != x || g.Input(sat, 0) != x {
		t.Error("rejected Replace mutated the graph")
	}
}

func TestGraph_SetInput(t *testing.T) {
	g := NewGraph()
	a := g.Constant(1)
	b := g.Constant(2)
	sum := g.Binary(BinaryAdd, a, a)
	if err := g.SetInput(sum, 1, b); err != nil {
		t.Fatalf("SetInput: %v", err)
	}
	if g.UserCount(a) != 1 || g.UserCount(b) != 1 {
		t.Errorf("user counts = %d, %d, want 1, 1", g.UserCount(a), g.UserCount(b))
	}
	if err := g.SetInput(a, 0, sum); err == nil {
		t.Error("SetInput on a missing slot succeeded")
	}
}

func TestGraph_ForcedCycleDetected(t *testing.T) {
	g := NewGraph()
	a := g.Unary(UnaryAbs, g.Constant(1))
	b := g.Unary(UnaryNegate, a)
	g.Nodes[a].Inputs[0] = b

	if g.Acyclic() {
		t.Fatal("Acyclic() = true for a forced cycle")
	}
	errs, err := Verify(&Program{Graph: g})
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) == 0 {
		t.Error("Verify found no errors in a cyclic graph")
	}
	if !g.Reaches(a, b) || !g.Reaches(b, a) {
		t.Error("Reaches should terminate and find both directions")
	}
}

func TestGraph_Equivalent(t *testing.T) {
	g := NewGraph()
	r0x := g.RegisterInput(shader.Temp(0).Lane(0))
	c0x := g.RegisterInput(shader.Const(0).Lane(0))
	a := g.Binary(BinaryMultiply, r0x, c0x)
	b := g.Binary(BinaryMultiply, r0x, c0x)
	c := g.Binary(BinaryMultiply, c0x, r0x)
	addr := shader.RelativeAddress{Register: shader.RegisterKey{Type: shader.RegisterAddr}}
	a0x := g.RegisterInput(addr.Register.Lane(0))
	rel := g.RelativeInput(shader.Const(4).Lane(0), addr, a0x)
	rel2 := g.RelativeInput(shader.Const(4).Lane(0), addr, a0x)

	if !g.Equivalent(a, b) {
		t.Error("identical products not equivalent")
	}
	if g.Equivalent(a, c) {
		t.Error("operand order ignored")
	}
	if g.Equivalent(rel, rel2) {
		t.Error("relative inputs must not be equivalent")
	}
}
