package diag

import (
	"golang.org/x/exp/slices"
)

// Bag collects diagnostics up to a fixed capacity.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// NewBag creates a bag that keeps at most max diagnostics.
// A non-positive max means no limit.
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Add appends d unless the bag is full. It returns false if d was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Report implements Reporter.
func (b *Bag) Report(d Diagnostic) {
	b.Add(d)
}

// HasErrors reports whether any diagnostic has error severity.
func (b *Bag) HasErrors() bool {
	return b.has(SevError)
}

// HasWarnings reports whether any diagnostic is a warning or worse.
func (b *Bag) HasWarnings() bool {
	return b.has(SevWarning)
}

func (b *Bag) has(sev Severity) bool {
	for i := range b.items {
		if b.items[i].Severity >= sev {
			return true
		}
	}
	return false
}

// Len returns the number of kept diagnostics.
func (b *Bag) Len() int {
	return len(b.items)
}

// Dropped returns how many diagnostics were discarded at capacity.
func (b *Bag) Dropped() int {
	return b.dropped
}

// Items returns the kept diagnostics. The slice aliases the bag.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Count returns the number of diagnostics with the given code.
func (b *Bag) Count(code Code) int {
	n := 0
	for i := range b.items {
		if b.items[i].Code == code {
			n++
		}
	}
	return n
}

// Sort orders diagnostics by instruction, severity (descending) and code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		if x.Instruction != y.Instruction {
			return x.Instruction - y.Instruction
		}
		if x.Severity != y.Severity {
			return int(y.Severity) - int(x.Severity)
		}
		return int(x.Code) - int(y.Code)
	})
}
