package interpreter

import "lyra/ast"

// Array is Lyra's reference-semantics array value: a pointer to a backing
// slice. Copying the *Array (assignment, parameter passing, return values)
// shares the backing slice, so indexed writes through any alias are visible
// to every holder of the pointer.
type Array struct {
	Elements []any
}

// Function is a user-defined proc/fn value, closing over the environment
// active at its definition site.
type Function struct {
	Decl    ast.FuncDef
	Closure *Environment
}

// returnSignal carries a function's return value up through the panic/recover
// unwinding used to implement non-local control flow.
type returnSignal struct {
	value any
}

// breakSignal/continueSignal mark loop-control flow; they carry no payload.
type breakSignal struct{}
type continueSignal struct{}
