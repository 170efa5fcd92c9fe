package ir

import (
	"errors"
	"testing"

	"github.com/gogpu/dxdec/shader"
)

func TestReduce_DoubleNegation(t *testing.T) {
	g := NewGraph()
	x := g.RegisterInput(shader.Temp(0).Lane(0))
	nn := g.Unary(UnaryNegate, g.Unary(UnaryNegate, x))
	if got, err := g.Reduce(nn, false); err != nil || got != x {
		t.Errorf("Reduce(-(-x)) = %d, %v, want %d", got, err, x)
	}
}

func TestReduce_NegatedConstant(t *testing.T) {
	g := NewGraph()
	n := g.Unary(UnaryNegate, g.Constant(2))
	got, _ := g.Reduce(n, false)
	if v, ok := g.ConstantValue(got); !ok || v != -2 {
		t.Errorf("Reduce(-2) = %#v", g.Kind(got))
	}
}

func TestReduce_NestedInputsRewritten(t *testing.T) {
	g := NewGraph()
	x := g.RegisterInput(shader.Temp(0).Lane(0))
	y := g.RegisterInput(shader.Temp(0).Lane(1))
	sum := g.Binary(BinaryAdd, g.Unary(UnaryNegate, g.Unary(UnaryNegate, x)), y)

	if got, _ := g.Reduce(sum, false); got != sum {
		t.Fatalf("Reduce changed the root to %d", got)
	}
	if g.Input(sum, 0) != x {
		t.Errorf("input 0 = %d (%s), want %d", g.Input(sum, 0), KindName(g.Kind(g.Input(sum, 0))), x)
	}
}

func TestReduce_MultiplyAdd(t *testing.T) {
	g := NewGraph()
	a := g.RegisterInput(shader.Temp(0).Lane(0))
	b := g.RegisterInput(shader.Temp(1).Lane(0))
	c := g.RegisterInput(shader.Temp(2).Lane(0))
	mad := g.Ternary(TernaryMultiplyAdd, a, b, c)

	if got, _ := g.Reduce(mad, false); got != mad {
		t.Error("mad expanded without being asked")
	}
	got, err := g.Reduce(mad, true)
	if err != nil {
		t.Fatalf("Reduce(mad): %v", err)
	}
	add, ok := g.Kind(got).(Binary)
	if !ok || add.Op != BinaryAdd {
		t.Fatalf("Reduce(mad) kind = %s, want add", KindName(g.Kind(got)))
	}
	mul := g.Input(got, 0)
	if k, ok := g.Kind(mul).(Binary); !ok || k.Op != BinaryMultiply {
		t.Errorf("first operand = %s, want mul", KindName(g.Kind(mul)))
	}
	if g.Input(got, 1) != c {
		t.Error("addend lost")
	}
}

func TestReduce_SharedSubtreeOnce(t *testing.T) {
	g := NewGraph()
	x := g.RegisterInput(shader.Input(0).Lane(0))
	nn := g.Unary(UnaryNegate, g.Unary(UnaryNegate, x))
	a := g.Binary(BinaryMultiply, nn, nn)
	before := g.Len()
	if _, err := g.Reduce(a, false); err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if g.Input(a, 0) != x || g.Input(a, 1) != x {
		t.Errorf("inputs = %v, want both %d", g.Inputs(a), x)
	}
	if g.Len() != before {
		t.Errorf("Reduce allocated %d nodes", g.Len()-before)
	}
}

func TestReduce_RejectedSlotReported(t *testing.T) {
	g := NewGraph()
	x := g.RegisterInput(shader.Temp(0).Lane(0))
	q := g.Unary(UnaryAbs, x)
	nn := g.Unary(UnaryNegate, g.Unary(UnaryNegate, q))
	root := g.Binary(BinaryAdd, nn, x)

	// Close root -> nn -> q -> root behind the graph's back. Folding nn
	// into q would make q an input of root again.
	g.Nodes[q].Inputs[0] = root
	g.Nodes[root].users = append(g.Nodes[root].users, q)

	got, err := g.Reduce(root, false)
	if got != root {
		t.Errorf("Reduce = %d, want the root %d", got, root)
	}
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("Reduce error = %v, want *CycleError", err)
	}
	if g.Input(root, 0) != nn {
		t.Errorf("rejected slot holds %d, want the original %d", g.Input(root, 0), nn)
	}
}
