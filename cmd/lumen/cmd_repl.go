package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
	"github.com/mattn/go-isatty"

	"lumen/internal/compiler"
	"lumen/internal/debug"
	"lumen/internal/diag"
	"lumen/internal/object"
	"lumen/internal/vm"
)

// replCmd starts an interactive session: each line is compiled on its own
// (CompileREPL, so a bare expression's result isn't silently discarded) and
// its disassembly is printed. There is no execution engine wired in here —
// that's a separate component — so the REPL shows what the line compiled
// to rather than what it evaluates to.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive Lumen session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive session that compiles (but does not run) each line.
`
}

func (*replCmd) SetFlags(*flag.FlagSet) {}

func (*replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	interactive := isatty.IsTerminal(os.Stdin.Fd())

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lumen> ",
		HistoryFile:     historyFilePath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "repl: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	if interactive {
		fmt.Println("Lumen interactive session. Ctrl-D to exit.")
	}

	collaborator := vm.New()
	module := object.NewModule("<repl>", "<repl>")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "repl: %v\n", err)
			return subcommands.ExitFailure
		}
		if line == "" {
			continue
		}

		fn, compErr := compiler.CompileREPL(collaborator, module, []byte(line))
		if compErr != nil {
			diag.Render(os.Stderr, compErr)
			continue
		}
		fmt.Print(debug.Disassemble(fn.Chunk, "<repl>"))
	}
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lumen_history"
	}
	return home + "/.lumen_history"
}
