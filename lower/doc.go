// Package lower lifts a decoded Direct3D 9 program into an ir.Program.
//
// Build scans the instruction stream once. Each written destination lane
// gets a node built from the resolved, modified source lanes; the writes
// of an instruction are committed together after it is processed, so an
// instruction never observes its own partial result.
//
// Programs without flow control are inlined: register state maps every
// lane to the expression that last wrote it, and the body is one
// assignment per live output lane. Programs with if/rep/loop/break are
// reconstructed as nested statements over register variables.
package lower
