// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/gogpu/dxdec/diag"
	"github.com/gogpu/dxdec/shader"
)

// ErrorKind categorizes HLSL generation errors.
type ErrorKind uint8

const (
	// ErrUnsupportedOpcode indicates an instruction the direct emitter has
	// no translation for.
	ErrUnsupportedOpcode ErrorKind = iota

	// ErrStatementBudgetExceeded indicates graph emission skipped or
	// emitted more statements than Options.MaxStatements allows.
	ErrStatementBudgetExceeded

	// ErrUnbalancedFlow indicates flow-control markers that do not nest.
	ErrUnbalancedFlow

	// ErrInvalidProgram indicates the input program is missing or malformed.
	ErrInvalidProgram

	// ErrInternalError indicates an internal generator error.
	ErrInternalError
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedOpcode:
		return "UnsupportedOpcode"
	case ErrStatementBudgetExceeded:
		return "StatementBudgetExceeded"
	case ErrUnbalancedFlow:
		return "UnbalancedFlow"
	case ErrInvalidProgram:
		return "InvalidProgram"
	case ErrInternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// Error represents an HLSL generation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string

	// Instruction is the index of the offending instruction, or -1.
	Instruction int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Instruction >= 0 {
		return fmt.Sprintf("hlsl %s at instruction %d: %s", e.Kind, e.Instruction, e.Message)
	}
	return fmt.Sprintf("hlsl %s: %s", e.Kind, e.Message)
}

// NewError creates a new HLSL error that is not tied to an instruction.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:        kind,
		Message:     message,
		Instruction: diag.NoInstruction,
	}
}

func errorAt(kind ErrorKind, index int, format string, args ...any) *Error {
	return &Error{
		Kind:        kind,
		Message:     fmt.Sprintf(format, args...),
		Instruction: index,
	}
}

func unsupported(index int, op shader.Opcode) *Error {
	return errorAt(ErrUnsupportedOpcode, index, "opcode %s has no direct translation", op)
}

// IsUnsupportedOpcode returns true if the error is ErrUnsupportedOpcode.
func (e *Error) IsUnsupportedOpcode() bool {
	return e.Kind == ErrUnsupportedOpcode
}

// IsStatementBudgetExceeded returns true if the error is ErrStatementBudgetExceeded.
func (e *Error) IsStatementBudgetExceeded() bool {
	return e.Kind == ErrStatementBudgetExceeded
}

// IsInternalError returns true if the error is ErrInternalError.
func (e *Error) IsInternalError() bool {
	return e.Kind == ErrInternalError
}

// IsKind reports whether err, or any error it wraps, is an *Error of kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// code maps a strategy failure to its diagnostic code.
func (e *Error) code() diag.Code {
	switch {
	case e.IsStatementBudgetExceeded():
		return diag.GenStatementBudget
	case e.IsUnsupportedOpcode():
		return diag.GenUnsupportedOpcode
	}
	return diag.GenStrategyFailed
}
