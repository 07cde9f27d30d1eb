package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCompiledCmd{}, "")
	subcommands.Register(&runCompiledCmd{}, "")
	subcommands.Register(&emitBytecodeCmd{}, "")

	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("\n\nWelcome to Lyra!")
		repl(os.Stdin, os.Stdout, false)
		return
	}

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
