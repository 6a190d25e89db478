package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"lumen/internal/compiler"
	"lumen/internal/config"
	"lumen/internal/debug"
	"lumen/internal/diag"
	"lumen/internal/object"
	"lumen/internal/vm"
)

// compileCmd implements the compile command: read a source file, compile
// it, report success or the diagnostics, and optionally disassemble it.
type compileCmd struct {
	configPath  string
	disassemble bool
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile a Lumen source file" }
func (*compileCmd) Usage() string {
	return `compile <file.lm>:
  Compile Lumen source and report any diagnostics.
`
}

func (c *compileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "lumen.yaml", "path to a compiler config file")
	f.BoolVar(&c.disassemble, "disasm", false, "print a disassembly of the compiled chunk")
}

func (c *compileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "compile: no source file given")
		return subcommands.ExitUsageError
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	logrus.StandardLogger().SetLevel(cfg.Logger().GetLevel())

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile: %v\n", err)
		return subcommands.ExitFailure
	}

	collaborator := vm.New()
	module := object.NewModule(args[0], args[0])
	fn, compErr := compiler.Compile(collaborator, module, data)
	if compErr != nil {
		diag.Render(os.Stderr, compErr)
		return subcommands.ExitFailure
	}

	fmt.Printf("compiled %s: %d bytes, %d constants\n", args[0], len(fn.Chunk.Code), len(fn.Chunk.Constants))
	if c.disassemble || cfg.Disassemble {
		fmt.Print(debug.Disassemble(fn.Chunk, module.Name))
	}
	return subcommands.ExitSuccess
}
