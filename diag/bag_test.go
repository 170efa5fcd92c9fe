package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBag_Capacity(t *testing.T) {
	b := NewBag(2)
	assert.True(t, b.Add(Diagnostic{Code: GenSkippedAssignment, Instruction: 1}))
	assert.True(t, b.Add(Diagnostic{Code: GenSkippedAssignment, Instruction: 2}))
	assert.False(t, b.Add(Diagnostic{Code: GenSkippedAssignment, Instruction: 3}))
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 1, b.Dropped())
}

func TestBag_Unlimited(t *testing.T) {
	b := NewBag(0)
	for i := range 100 {
		require.True(t, b.Add(Diagnostic{Instruction: i}))
	}
	assert.Equal(t, 100, b.Len())
}

func TestBag_Severity(t *testing.T) {
	b := NewBag(10)
	Infof(b, RewriteRuleFired, NoInstruction, "rule %s", "AddZero")
	assert.False(t, b.HasWarnings())
	assert.False(t, b.HasErrors())

	Warnf(b, GenPassthroughZero, NoInstruction, "output %s", "o.color")
	assert.True(t, b.HasWarnings())
	assert.False(t, b.HasErrors())

	Errorf(b, BuildUnsupportedOpcode, 4, "opcode %s", "texbem")
	assert.True(t, b.HasErrors())
	assert.Equal(t, 1, b.Count(BuildUnsupportedOpcode))
	assert.Equal(t, "ERROR DX1001: instruction 4: opcode texbem", b.Items()[2].String())
}

func TestBag_Sort(t *testing.T) {
	b := NewBag(0)
	Infof(b, RewriteRuleFired, 3, "c")
	Warnf(b, GenSkippedAssignment, 1, "b")
	Errorf(b, BuildUnsupportedOpcode, 1, "a")
	Infof(b, RewriteBoundHit, NoInstruction, "first")
	b.Sort()

	var got []string
	for _, d := range b.Items() {
		got = append(got, d.Message)
	}
	assert.Equal(t, []string{"first", "a", "b", "c"}, got)
}

func TestMulti(t *testing.T) {
	a, c := NewBag(0), NewBag(0)
	m := Multi{a, nil, c}
	Warnf(m, GenStubEmitted, NoInstruction, "stub")
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, c.Len())
	Warnf(Nop, GenStubEmitted, NoInstruction, "dropped")
	Warnf(nil, GenStubEmitted, NoInstruction, "dropped")
}

func TestCode(t *testing.T) {
	assert.Equal(t, "DX2001", GenStatementBudget.ID())
	assert.Equal(t, "statement budget exceeded", GenStatementBudget.Title())
	assert.Equal(t, "unknown", Code(9999).Title())
}
