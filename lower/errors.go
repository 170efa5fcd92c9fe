package lower

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/gogpu/dxdec/diag"
	"github.com/gogpu/dxdec/shader"
)

// ErrorKind categorizes graph construction failures.
type ErrorKind uint8

const (
	// ErrUnsupportedOpcode indicates an opcode the builder cannot lift.
	ErrUnsupportedOpcode ErrorKind = iota

	// ErrInvalidSamplerReference indicates a texture operation on a register
	// that was never declared as a sampler.
	ErrInvalidSamplerReference

	// ErrUnsupportedConstant indicates a constant table entry of a kind the
	// builder cannot represent.
	ErrUnsupportedConstant

	// ErrUnbalancedFlow indicates mismatched flow-control markers.
	ErrUnbalancedFlow
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedOpcode:
		return "UnsupportedOpcode"
	case ErrInvalidSamplerReference:
		return "InvalidSamplerReference"
	case ErrUnsupportedConstant:
		return "UnsupportedConstant"
	case ErrUnbalancedFlow:
		return "UnbalancedFlow"
	default:
		return "Unknown"
	}
}

// Error is a fatal graph construction error.
type Error struct {
	Kind    ErrorKind
	Message string

	// Instruction is the index of the offending instruction, or -1.
	Instruction int
	Opcode      shader.Opcode
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Instruction >= 0 {
		return fmt.Sprintf("lower %s at instruction %d (%s): %s", e.Kind, e.Instruction, e.Opcode, e.Message)
	}
	return fmt.Sprintf("lower %s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, index int, op shader.Opcode, format string, args ...any) *Error {
	return &Error{
		Kind:        kind,
		Message:     fmt.Sprintf(format, args...),
		Instruction: index,
		Opcode:      op,
	}
}

// IsKind reports whether err, or any error it wraps, is an *Error of kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func (e *Error) code() diag.Code {
	switch e.Kind {
	case ErrInvalidSamplerReference:
		return diag.BuildInvalidSampler
	case ErrUnsupportedConstant:
		return diag.BuildUnsupportedConstant
	case ErrUnbalancedFlow:
		return diag.BuildUnbalancedFlow
	}
	return diag.BuildUnsupportedOpcode
}
