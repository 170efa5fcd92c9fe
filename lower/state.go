package lower

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/gogpu/dxdec/ir"
	"github.com/gogpu/dxdec/shader"
)

// RegisterState maps register lanes to the node currently defining them.
// Writes are last-write-wins.
type RegisterState struct {
	lanes    map[shader.RegisterComponentKey]ir.NodeHandle
	samplers map[shader.RegisterKey]ir.NodeHandle
}

// NewRegisterState returns an empty state.
func NewRegisterState() *RegisterState {
	return &RegisterState{
		lanes:    make(map[shader.RegisterComponentKey]ir.NodeHandle),
		samplers: make(map[shader.RegisterKey]ir.NodeHandle),
	}
}

// Lookup returns the node defining lane.
func (s *RegisterState) Lookup(lane shader.RegisterComponentKey) (ir.NodeHandle, bool) {
	h, ok := s.lanes[lane]
	return h, ok
}

// Set records h as the value of lane.
func (s *RegisterState) Set(lane shader.RegisterComponentKey, h ir.NodeHandle) {
	s.lanes[lane] = h
}

// Sampler returns the input node of a declared sampler register.
func (s *RegisterState) Sampler(key shader.RegisterKey) (ir.NodeHandle, bool) {
	h, ok := s.samplers[key]
	return h, ok
}

// SetSampler declares a sampler register.
func (s *RegisterState) SetSampler(key shader.RegisterKey, h ir.NodeHandle) {
	s.samplers[key] = h
}

// Len returns the number of tracked lanes.
func (s *RegisterState) Len() int {
	return len(s.lanes)
}

// Lanes returns the tracked lanes in register order.
func (s *RegisterState) Lanes() []shader.RegisterComponentKey {
	keys := maps.Keys(s.lanes)
	slices.SortFunc(keys, shader.RegisterComponentKey.Compare)
	return keys
}

// Samplers returns the declared sampler registers in register order.
func (s *RegisterState) Samplers() []shader.RegisterKey {
	keys := maps.Keys(s.samplers)
	slices.SortFunc(keys, shader.RegisterKey.Compare)
	return keys
}

// Snapshot returns an independent copy of the state.
func (s *RegisterState) Snapshot() *RegisterState {
	return &RegisterState{
		lanes:    maps.Clone(s.lanes),
		samplers: maps.Clone(s.samplers),
	}
}
