package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"lyra/interpreter"
	"lyra/lexer"
	"lyra/parser"
)

// runCmd implements the run command
type runCmd struct {
	lenient bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute Lyra code from a source file" }
func (*runCmd) Usage() string {
	return `run:
  Execute Lyra code.
`
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {
	cfg := loadConfig()
	f.BoolVar(&r.lenient, "lenient", cfg.Lenient, "restore pre-strict scanning: unterminated strings and unknown characters are silently absorbed instead of raising a ScanFault")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	interpreter := interpreter.Make()
	var lex *lexer.Lexer
	if r.lenient {
		lex = lexer.New(string(data), lexer.WithLenientLexing())
	} else {
		lex = lexer.New(string(data))
	}
	tokens, err := lex.Scan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lexing error: %v\n", err)
		return subcommands.ExitFailure
	}
	parser := parser.Make(tokens)
	ast, errors := parser.Parse()
	if len(errors) > 0 {
		for _, error := range errors {
			fmt.Fprintln(os.Stderr, error)
		}
		return subcommands.ExitFailure
	}
	if err := interpreter.Interpret(ast); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
