package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/dxdec/ir"
	"github.com/gogpu/dxdec/shader"
)

func TestDotProduct2(t *testing.T) {
	g := ir.NewGraph()
	a, b := shader.Temp(0), shader.Const(3)
	sum := g.Binary(ir.BinaryAdd,
		g.Binary(ir.BinaryMultiply, reg(g, a, 0), reg(g, b, 0)),
		g.Binary(ir.BinaryMultiply, reg(g, b, 1), reg(g, a, 1)))

	got := New(nil).Reduce(g, sum)
	require.IsType(t, ir.DotProduct{}, g.Kind(got))
	assert.Equal(t, []ir.NodeHandle{reg(g, a, 0), reg(g, a, 1)}, g.Inputs(g.Input(got, 0)))
	assert.Equal(t, []ir.NodeHandle{reg(g, b, 0), reg(g, b, 1)}, g.Inputs(g.Input(got, 1)))
}

func TestDotProduct2_MixedRegisters(t *testing.T) {
	g := ir.NewGraph()
	sum := g.Binary(ir.BinaryAdd,
		g.Binary(ir.BinaryMultiply, reg(g, shader.Temp(0), 0), reg(g, shader.Temp(1), 0)),
		g.Binary(ir.BinaryMultiply, reg(g, shader.Temp(2), 1), reg(g, shader.Temp(1), 1)))
	assert.Equal(t, sum, New(nil).Reduce(g, sum))
}

func TestDotProductExtend(t *testing.T) {
	g := ir.NewGraph()
	a, b := shader.Temp(0), shader.Temp(1)
	// a.x*b.x + a.y*b.y + a.z*b.z, as mad chains produce it.
	sum := g.Binary(ir.BinaryAdd,
		g.Binary(ir.BinaryAdd,
			g.Binary(ir.BinaryMultiply, reg(g, a, 0), reg(g, b, 0)),
			g.Binary(ir.BinaryMultiply, reg(g, a, 1), reg(g, b, 1))),
		g.Binary(ir.BinaryMultiply, reg(g, a, 2), reg(g, b, 2)))

	got := New(nil).Reduce(g, sum)
	require.IsType(t, ir.DotProduct{}, g.Kind(got))
	assert.Equal(t, 3, g.Lanes(g.Input(got, 0)))
	assert.Equal(t, reg(g, b, 2), g.Inputs(g.Input(got, 1))[2])
}
