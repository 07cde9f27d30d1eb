package compiler

// FunctionValue is the compiled representation of a proc/fn declaration: a
// self-contained instruction buffer with its own local-slot numbering
// (parameters occupy slots 0..Arity-1), stored as an ordinary constant-pool
// entry so OP_CALL can fetch it the same way any other global is fetched.
type FunctionValue struct {
	Name         string
	Arity        int
	Instructions Instructions
}
