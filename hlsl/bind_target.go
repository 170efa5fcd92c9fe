// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/dxdec/shader"
)

// RegisterType represents the HLSL register class of a global.
type RegisterType uint8

const (
	// RegisterTypeC is for float4 constants.
	RegisterTypeC RegisterType = iota

	// RegisterTypeI is for int4 loop constants.
	RegisterTypeI

	// RegisterTypeB is for boolean constants.
	RegisterTypeB

	// RegisterTypeS is for samplers.
	RegisterTypeS
)

// String returns the single-character register prefix.
func (rt RegisterType) String() string {
	switch rt {
	case RegisterTypeI:
		return "i"
	case RegisterTypeB:
		return "b"
	case RegisterTypeS:
		return "s"
	default:
		return "c"
	}
}

// registerTypeOf returns the register class of a constant table set.
func registerTypeOf(set shader.RegisterSet) RegisterType {
	switch set {
	case shader.SetBool:
		return RegisterTypeB
	case shader.SetInt4:
		return RegisterTypeI
	case shader.SetSampler:
		return RegisterTypeS
	default:
		return RegisterTypeC
	}
}

// registerTypeOfKey returns the register class of a bytecode register.
func registerTypeOfKey(key shader.RegisterKey) (RegisterType, bool) {
	switch key.Type {
	case shader.RegisterConst, shader.RegisterConst2, shader.RegisterConst3, shader.RegisterConst4:
		return RegisterTypeC, true
	case shader.RegisterConstInt:
		return RegisterTypeI, true
	case shader.RegisterConstBool:
		return RegisterTypeB, true
	case shader.RegisterSampler:
		return RegisterTypeS, true
	}
	return 0, false
}

// BindTarget specifies the register binding of a global.
type BindTarget struct {
	Type RegisterType

	// Register is the first register index.
	Register uint32
}

// String returns the binding annotation, e.g. "register(c4)".
func (bt BindTarget) String() string {
	return fmt.Sprintf("register(%s%d)", bt.Type, bt.Register)
}

// DefaultBindTarget returns a BindTarget with default values:
// the first float constant register.
func DefaultBindTarget() BindTarget {
	return BindTarget{Type: RegisterTypeC}
}

// WithRegister returns a copy of the BindTarget with the specified register.
func (bt BindTarget) WithRegister(register uint32) BindTarget {
	bt.Register = register
	return bt
}

// bindTargetFor returns the binding of a constant table entry.
func bindTargetFor(c *shader.ConstantDeclaration) BindTarget {
	set := c.RegisterSet
	if c.Type.IsSampler() {
		set = shader.SetSampler
	}
	return BindTarget{Type: registerTypeOf(set), Register: c.RegisterIndex}
}
