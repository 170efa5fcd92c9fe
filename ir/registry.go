package ir

import (
	"math"

	"github.com/gogpu/dxdec/shader"
)

type inputKey struct {
	lane shader.RegisterComponentKey
	dim  int
}

// Constant returns the node for value v, creating it on first use.
// Constants are compared bitwise, so 0 and -0 are distinct nodes.
func (g *Graph) Constant(v float32) NodeHandle {
	bits := math.Float32bits(v)
	if h, ok := g.constants[bits]; ok {
		return h
	}
	if g.constants == nil {
		g.constants = make(map[uint32]NodeHandle)
	}
	h := g.Add(Constant{Value: v})
	g.constants[bits] = h
	return h
}

// RegisterInput returns the shared input node of a register lane.
func (g *Graph) RegisterInput(lane shader.RegisterComponentKey) NodeHandle {
	return g.input(lane, 0)
}

// SamplerInput returns the shared input node of a sampler register with
// the given coordinate dimension.
func (g *Graph) SamplerInput(key shader.RegisterKey, dimension int) NodeHandle {
	return g.input(key.Lane(0), dimension)
}

func (g *Graph) input(lane shader.RegisterComponentKey, dim int) NodeHandle {
	k := inputKey{lane: lane, dim: dim}
	if h, ok := g.inputs[k]; ok {
		return h
	}
	if g.inputs == nil {
		g.inputs = make(map[inputKey]NodeHandle)
	}
	h := g.Add(RegisterInput{Key: lane, SamplerDimension: dim})
	g.inputs[k] = h
	return h
}

// RelativeInput returns a new relative-addressed input node whose single
// input is the current value of the index register lane. Relative reads
// are never shared.
func (g *Graph) RelativeInput(lane shader.RegisterComponentKey, rel shader.RelativeAddress, index NodeHandle) NodeHandle {
	return g.Add(RegisterInput{Key: lane, Relative: &rel}, index)
}
