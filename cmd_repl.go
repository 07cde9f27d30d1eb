package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
	"lyra/interpreter"
	"lyra/lexer"
	"lyra/parser"
)

// replCmd implements the REPL command
type replCmd struct {
	lenient bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start REPL session" }
func (*replCmd) Usage() string {
	return `repl:
  Start interactive REPL session.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {
	cfg := loadConfig()
	f.BoolVar(&r.lenient, "lenient", cfg.Lenient, "restore pre-strict scanning: unterminated strings and unknown characters are silently absorbed instead of raising a ScanFault")
}

// repl runs the line-at-a-time REPL loop, reading from in and writing
// prompts/output to out via a readline.Instance (history, arrow-key line
// editing) rather than a bare bufio.Scanner.
func repl(in io.Reader, out io.Writer, lenient bool) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      ">>> ",
		Stdin:       io.NopCloser(in),
		Stdout:      out,
		HistoryFile: loadConfig().HistoryFile,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	defer rl.Close()

	interpreter := interpreter.Make()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF (ctrl-D) or readline.ErrInterrupt (ctrl-C)
			return
		}
		if line == "exit" {
			os.Exit(0)
		}
		if line == "" {
			continue
		}
		var lex *lexer.Lexer
		if lenient {
			lex = lexer.New(line, lexer.WithLenientLexing())
		} else {
			lex = lexer.New(line)
		}
		tokens, err := lex.Scan()
		if err != nil {
			fmt.Println(err)
			continue
		}
		parser := parser.Make(tokens)
		ast, errors := parser.Parse()
		if len(errors) > 0 {
			for _, error := range errors {
				fmt.Fprintln(os.Stderr, error)
			}
			continue
		}
		parser.Print(ast)
		if err := interpreter.Interpret(ast); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\n\nWelcome to Lyra!")
	repl(os.Stdin, os.Stdout, r.lenient)
	return subcommands.ExitSuccess
}
