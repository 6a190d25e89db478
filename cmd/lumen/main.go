// Command lumen drives the compiler from the command line: compile a file,
// disassemble what was emitted, or drop into an interactive REPL that
// compiles (but does not execute — the bytecode interpreter is a separate
// component) each line you type.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&compileCmd{}, "")
	subcommands.Register(&disasmCmd{}, "")
	subcommands.Register(&replCmd{}, "")

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
