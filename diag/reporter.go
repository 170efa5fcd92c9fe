package diag

import "fmt"

// Reporter receives diagnostics from the pipeline stages.
type Reporter interface {
	Report(d Diagnostic)
}

// Nop discards every diagnostic.
var Nop Reporter = nopReporter{}

type nopReporter struct{}

func (nopReporter) Report(Diagnostic) {}

// Multi fans a diagnostic out to several reporters.
type Multi []Reporter

// Report implements Reporter.
func (m Multi) Report(d Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}

// Errorf reports an error diagnostic.
func Errorf(r Reporter, code Code, inst int, format string, args ...any) {
	report(r, SevError, code, inst, format, args...)
}

// Warnf reports a warning diagnostic.
func Warnf(r Reporter, code Code, inst int, format string, args ...any) {
	report(r, SevWarning, code, inst, format, args...)
}

// Infof reports an informational diagnostic.
func Infof(r Reporter, code Code, inst int, format string, args ...any) {
	report(r, SevInfo, code, inst, format, args...)
}

func report(r Reporter, sev Severity, code Code, inst int, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{
		Severity:    sev,
		Code:        code,
		Message:     fmt.Sprintf(format, args...),
		Instruction: inst,
	})
}
