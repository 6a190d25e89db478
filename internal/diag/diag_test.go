package diag_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumen/internal/compiler"
	"lumen/internal/diag"
	"lumen/internal/object"
	"lumen/internal/vm"
)

func TestRenderAndCountMultipleErrors(t *testing.T) {
	collaborator := vm.New()
	module := object.NewModule("test", "test.lm")
	_, err := compiler.Compile(collaborator, module, []byte("break; return 1;"))
	require.Error(t, err)

	assert.Equal(t, 2, diag.Count(err))

	var b strings.Builder
	diag.Render(&b, err)
	assert.NotEmpty(t, b.String())
}

func TestRenderNilIsNoop(t *testing.T) {
	var b strings.Builder
	diag.Render(&b, nil)
	assert.Empty(t, b.String())
}
