// Package diag collects diagnostics produced while decompiling a program.
//
// Each pipeline stage receives a Reporter instead of logging to the
// process output, so callers and tests can inspect what was skipped,
// degraded or rejected. Bag is the usual collector.
package diag
