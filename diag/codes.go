package diag

import "fmt"

// Code identifies a class of diagnostic.
type Code uint16

const (
	UnknownCode Code = 0

	// Graph construction.
	BuildUnsupportedOpcode   Code = 1001
	BuildInvalidSampler      Code = 1002
	BuildUnsupportedConstant Code = 1003
	BuildUnbalancedFlow      Code = 1004

	// Code generation.
	GenStatementBudget    Code = 2001
	GenSkippedAssignment  Code = 2002
	GenPassthroughZero    Code = 2003
	GenStubEmitted        Code = 2004
	GenStrategyFailed     Code = 2005
	GenRenderingDegraded  Code = 2006
	GenUnsupportedOpcode  Code = 2007
	GenUndeclaredRegister Code = 2008
	GenRelativeIgnored    Code = 2009

	// Rewriting.
	RewriteBoundHit  Code = 3001
	RewriteRuleFired Code = 3002
	RewriteRejected  Code = 3003
)

var codeDescription = map[Code]string{
	UnknownCode:              "unknown",
	BuildUnsupportedOpcode:   "unsupported opcode",
	BuildInvalidSampler:      "invalid sampler reference",
	BuildUnsupportedConstant: "unsupported constant",
	BuildUnbalancedFlow:      "unbalanced flow control",
	GenStatementBudget:       "statement budget exceeded",
	GenSkippedAssignment:     "assignment skipped",
	GenPassthroughZero:       "output without matching input",
	GenStubEmitted:           "stub emitted",
	GenStrategyFailed:        "emission strategy failed",
	GenRenderingDegraded:     "rendering degraded",
	GenUnsupportedOpcode:     "opcode not emitted",
	GenUndeclaredRegister:    "undeclared register",
	GenRelativeIgnored:       "relative index ignored",
	RewriteBoundHit:          "rewrite bound hit",
	RewriteRuleFired:         "rewrite rule applied",
	RewriteRejected:          "rewrite rejected",
}

// ID returns the code in "DX1001" form.
func (c Code) ID() string {
	return fmt.Sprintf("DX%04d", uint16(c))
}

func (c Code) String() string {
	return c.ID()
}

// Title returns a short human readable description of the code.
func (c Code) Title() string {
	if s, ok := codeDescription[c]; ok {
		return s
	}
	return codeDescription[UnknownCode]
}
