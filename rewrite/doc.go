// Package rewrite drives a node graph to a normal form before code
// generation.
//
// An Engine holds two ordered rule lists. Node rules match a single node
// shape, such as an add of two constants or a multiply by one. Group rules
// match shapes spanning several nodes, such as a two-term sum of products
// that is really a dot product. Every root of a program is reduced
// depth-first, post-order: inputs first, then the node itself. When a rule
// fires its replacement takes over every consumer of the node and is
// reduced again before the walk moves on.
//
// The walk is bounded by a recursion depth and a total reduction budget.
// Hitting either leaves the graph partially reduced and records a
// diagnostic; it never fails.
//
// Reducing an already reduced program changes nothing.
package rewrite
