package main

// Both execution backends (the tree-walk interpreter and the compiler+VM
// pair) are supposed to be observationally equivalent for any program that
// doesn't touch backend-specific diagnostics. These tests run the same
// source through both and compare stdout, catching divergence in control
// flow (CALL/RETURN) and array opcodes that the per-package unit tests don't
// exercise together.

import (
	"io"
	"os"
	"testing"

	"lyra/compiler"
	"lyra/interpreter"
	"lyra/lexer"
	"lyra/parser"
	"lyra/vm"

	"github.com/stretchr/testify/require"
)

// runInterpreted lexes, parses and interprets source, capturing everything
// written to stdout by PRINT/PRINTLN statements.
func runInterpreted(t *testing.T, source string) string {
	t.Helper()

	lex := lexer.New(source)
	tokens, err := lex.Scan()
	require.NoError(t, err)

	p := parser.Make(tokens)
	statements, errs := p.Parse()
	require.Empty(t, errs)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	origStdout := os.Stdout
	os.Stdout = w

	interp := interpreter.Make()
	runErr := interp.Interpret(statements)

	w.Close()
	os.Stdout = origStdout
	require.NoError(t, runErr)

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

// runCompiled lexes, parses, compiles and runs source on the VM, capturing
// its printed output via vm.CaptureOutput.
func runCompiled(t *testing.T, source string) string {
	t.Helper()

	lex := lexer.New(source)
	tokens, err := lex.Scan()
	require.NoError(t, err)

	p := parser.Make(tokens)
	statements, errs := p.Parse()
	require.Empty(t, errs)

	astCompiler := compiler.NewASTCompiler()
	bytecode, err := astCompiler.CompileAST(statements)
	require.NoError(t, err)

	machine := vm.New()
	captured := machine.CaptureOutput()
	require.NoError(t, machine.Run(bytecode))
	return captured.String()
}

func TestBackendEquivalence(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{
			name: "function call and return",
			source: `
fn add(a, b) {
	return a + b;
}
print(add(2, 3));
`,
		},
		{
			name: "recursive function",
			source: `
fn fact(n) {
	if (n <= 1) {
		return 1;
	}
	return n * fact(n - 1);
}
print(fact(5));
`,
		},
		{
			name: "array literal, index get and set",
			source: `
var xs = [1, 2, 3];
xs[1] = 99;
print(xs[0]);
print(xs[1]);
print(xs[2]);
`,
		},
		{
			name: "array passed through a function",
			source: `
fn first(xs) {
	return xs[0];
}
var xs = [10, 20, 30];
print(first(xs));
`,
		},
		{
			name: "logical and/or settle to Number 1.0/0.0",
			source: `
print(5 && 3);
print(0 && 3);
print(0 || 7);
print(0 || 0);
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interpreted := runInterpreted(t, tt.source)
			compiled := runCompiled(t, tt.source)
			require.Equal(t, interpreted, compiled, "interpreter and VM output diverged")
		})
	}
}
