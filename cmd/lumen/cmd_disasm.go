package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"lumen/internal/bytecode"
	"lumen/internal/compiler"
	"lumen/internal/debug"
	"lumen/internal/diag"
	"lumen/internal/object"
	"lumen/internal/value"
	"lumen/internal/vm"
)

// disasmCmd compiles a file and prints a disassembly of every chunk it
// produced, walking into nested functions found in each chunk's constant
// pool so closures and methods are shown alongside the top-level script.
type disasmCmd struct{}

func (*disasmCmd) Name() string     { return "disasm" }
func (*disasmCmd) Synopsis() string { return "Disassemble a compiled Lumen source file" }
func (*disasmCmd) Usage() string {
	return `disasm <file.lm>:
  Compile and print a full bytecode disassembly, including nested functions.
`
}

func (*disasmCmd) SetFlags(*flag.FlagSet) {}

func (*disasmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "disasm: no source file given")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "disasm: %v\n", err)
		return subcommands.ExitFailure
	}

	collaborator := vm.New()
	module := object.NewModule(args[0], args[0])
	fn, compErr := compiler.Compile(collaborator, module, data)
	if compErr != nil {
		diag.Render(os.Stderr, compErr)
		return subcommands.ExitFailure
	}

	walkChunks(fn.Name, fn.Chunk, map[*bytecode.Chunk]bool{})
	return subcommands.ExitSuccess
}

// walkChunks prints chunk's disassembly then recurses into any *object.Function
// found among its constants, skipping chunks already visited (a nested
// function's chunk is only ever reached through its own OP_CLOSURE site, so
// the visited set is mostly a defense against accidental re-emission).
func walkChunks(name string, chunk *bytecode.Chunk, seen map[*bytecode.Chunk]bool) {
	if seen[chunk] {
		return
	}
	seen[chunk] = true

	fmt.Print(debug.Disassemble(chunk, name))

	for _, c := range chunk.Constants {
		if c.Kind != value.Obj {
			continue
		}
		if nested, ok := c.Obj.(*object.Function); ok && nested.Chunk != nil {
			walkChunks(nested.Name, nested.Chunk, seen)
		}
	}
}
