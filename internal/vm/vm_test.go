package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"lumen/internal/object"
	"lumen/internal/value"
)

func TestInternStringIsIdempotent(t *testing.T) {
	v := New()
	a := v.InternString("hello")
	b := v.InternString("hello")
	assert.Same(t, a, b)
}

func TestBuiltinGlobals(t *testing.T) {
	v := New("print", "len")
	assert.True(t, v.IsBuiltinGlobal("print"))
	assert.False(t, v.IsBuiltinGlobal("notBuiltin"))
}

func TestConstantsTablePerModule(t *testing.T) {
	v := New()
	m := object.NewModule("main", "main.lm")
	assert.False(t, v.IsConstant(m, "X"))
	v.MarkConstant(m, "X")
	assert.True(t, v.IsConstant(m, "X"))
}

func TestStackPushPopIsLIFO(t *testing.T) {
	v := New()
	v.PushValue(value.NumberValue(1))
	v.PushValue(value.NumberValue(2))
	top, ok := v.PopValue()
	assert.True(t, ok)
	assert.Equal(t, 2.0, top.Num)
}
