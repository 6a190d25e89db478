package debug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumen/internal/compiler"
	"lumen/internal/debug"
	"lumen/internal/object"
	"lumen/internal/vm"
)

func TestDisassembleRendersOpcodeNames(t *testing.T) {
	collaborator := vm.New()
	module := object.NewModule("test", "test.lm")
	fn, err := compiler.Compile(collaborator, module, []byte("1+2;"))
	require.NoError(t, err)

	out := debug.Disassemble(fn.Chunk, "test")
	assert.True(t, strings.Contains(out, "OP_CONSTANT"))
	assert.True(t, strings.Contains(out, "OP_POP"))
	assert.True(t, strings.Contains(out, "OP_RETURN"))
	assert.True(t, strings.Contains(out, "constants --"))
}
