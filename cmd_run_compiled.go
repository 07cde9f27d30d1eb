package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"lyra/compiler"
	"lyra/lexer"
	"lyra/parser"
	"lyra/vm"

	"github.com/fsnotify/fsnotify"
	"github.com/google/subcommands"
)

// runCompiledCmd implements the "runC" command: compile a source file to
// bytecode and execute it on the VM, optionally caching the bytecode,
// optimizing it, or watching the file for changes.
type runCompiledCmd struct {
	lenient  bool
	optimize bool
	watch    bool
	cache    bool
	debug    bool
}

func (*runCompiledCmd) Name() string     { return "runC" }
func (*runCompiledCmd) Synopsis() string { return "Execute Lyra code from a source file" }
func (*runCompiledCmd) Usage() string {
	return `runC:
  Execute Lyra code.
`
}
func (r *runCompiledCmd) SetFlags(f *flag.FlagSet) {
	cfg := loadConfig()
	f.BoolVar(&r.lenient, "lenient", cfg.Lenient, "restore pre-strict scanning: unterminated strings and unknown characters are silently absorbed instead of raising a ScanFault")
	f.BoolVar(&r.optimize, "optimize", cfg.Optimize, "run the peephole optimizer over compiled bytecode before executing it")
	f.BoolVar(&r.watch, "watch", false, "recompile and re-run whenever the source file changes on disk")
	f.BoolVar(&r.cache, "cache", false, "cache compiled bytecode alongside the source file (.lyrc) and reuse it when the source hasn't changed")
	f.BoolVar(&r.debug, "debug", false, "trace each executed instruction to stderr")
}

// compileFile lexes, parses and compiles filename, serving a fresh .lyrc
// cache entry instead of recompiling when r.cache is set and the cache is
// at least as new as the source. The bytecode is optimized afterward when
// r.optimize is set, regardless of whether it came from cache.
func (r *runCompiledCmd) compileFile(filename string) (compiler.Bytecode, error) {
	cachePath := compiler.CachePath(filename)
	if r.cache && compiler.CacheFresh(cachePath, filename) {
		if bc, err := compiler.LoadCache(cachePath); err == nil {
			if r.optimize {
				bc = compiler.Optimize(bc)
			}
			return bc, nil
		}
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return compiler.Bytecode{}, fmt.Errorf("💥 Failed to read file: %w", err)
	}

	var lex *lexer.Lexer
	if r.lenient {
		lex = lexer.New(string(data), lexer.WithLenientLexing())
	} else {
		lex = lexer.New(string(data))
	}
	tokens, err := lex.Scan()
	if err != nil {
		return compiler.Bytecode{}, err
	}
	p := parser.Make(tokens)
	ast, errors := p.Parse()
	if len(errors) > 0 {
		for _, e := range errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return compiler.Bytecode{}, fmt.Errorf("parse failed")
	}
	astCompiler := compiler.NewASTCompiler()
	bytecode, err := astCompiler.CompileAST(ast)
	if err != nil {
		return compiler.Bytecode{}, err
	}

	if r.cache {
		if err := compiler.SaveCache(cachePath, bytecode); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  failed to write bytecode cache %s: %v\n", cachePath, err)
		}
	}
	if r.optimize {
		bytecode = compiler.Optimize(bytecode)
	}
	return bytecode, nil
}

func (r *runCompiledCmd) runOnce(filename string) subcommands.ExitStatus {
	bytecode, err := r.compileFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		return subcommands.ExitFailure
	}
	machine := vm.New()
	machine.SetDebug(r.debug)
	if err := machine.Run(bytecode); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// watchAndRun re-runs filename every time fsnotify reports a write to it,
// until the watcher itself errors out or the process is interrupted.
func (r *runCompiledCmd) watchAndRun(filename string) subcommands.ExitStatus {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start file watcher: %v\n", err)
		return subcommands.ExitFailure
	}
	defer watcher.Close()

	if err := watcher.Add(filename); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to watch %s: %v\n", filename, err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(os.Stderr, "watching %s for changes (ctrl-C to stop)...\n", filename)
	r.runOnce(filename)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return subcommands.ExitSuccess
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Fprintf(os.Stderr, "\n--- %s changed, re-running ---\n", filename)
			r.runOnce(filename)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return subcommands.ExitSuccess
			}
			fmt.Fprintf(os.Stderr, "💥 watcher error: %v\n", watchErr)
			return subcommands.ExitFailure
		}
	}
}

func (r *runCompiledCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	if r.watch {
		return r.watchAndRun(filename)
	}
	return r.runOnce(filename)
}
