// Package ir defines the node graph a Direct3D 9 program is lifted into.
//
// # Structure
//
// A Program holds:
//   - Graph: an arena of scalar value nodes addressed by NodeHandle
//   - Body: the statement list that roots the graph
//   - Outputs: the output lanes live at the end of the program
//
// Every node is one scalar lane. Vector operations such as dot products and
// texture loads take Group nodes whose inputs are the individual lanes.
// The graph is a DAG: sub-expressions are shared, and the mutation
// primitives AddInput and Replace refuse edits that would close a cycle.
//
// # Pipeline
//
//	shader.Program → lower.Build → ir.Program → rewrite.Engine → hlsl.Compile
//
// Nodes carry no source text. Rendering lives in the hlsl package.
package ir
