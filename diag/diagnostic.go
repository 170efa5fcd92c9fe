package diag

import "fmt"

// NoInstruction marks a diagnostic that is not tied to an instruction.
const NoInstruction = -1

// Diagnostic is one message produced while decompiling a program.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string

	// Instruction is the index of the instruction the message refers to,
	// or NoInstruction.
	Instruction int
}

func (d Diagnostic) String() string {
	if d.Instruction != NoInstruction {
		return fmt.Sprintf("%s %s: instruction %d: %s", d.Severity, d.Code, d.Instruction, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)
}
