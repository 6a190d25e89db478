package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lumen/internal/value"
)

func TestWriteKeepsCodeAndLinesInSync(t *testing.T) {
	c := NewChunk()
	c.WriteOpcode(OP_NIL, 1)
	c.WriteOpcode(OP_RETURN, 1)
	assert.Equal(t, len(c.Code), len(c.Lines))
	assert.Equal(t, []byte{byte(OP_NIL), byte(OP_RETURN)}, c.Code)
}

func TestAddConstantCapsAt256(t *testing.T) {
	c := NewChunk()
	for i := 0; i < MaxConstants; i++ {
		idx, err := c.AddConstant(value.NumberValue(float64(i)))
		require.NoError(t, err)
		assert.Equal(t, byte(i), idx)
	}
	_, err := c.AddConstant(value.NumberValue(999))
	assert.ErrorIs(t, err, ErrTooManyConstants)
}

func TestJumpPatchLandsOnBoundary(t *testing.T) {
	c := NewChunk()
	c.WriteOpcode(OP_TRUE, 1)
	jump := c.EmitJump(OP_JUMP_IF_FALSE, 1)
	c.WriteOpcode(OP_POP, 1)
	require.NoError(t, c.PatchJump(jump))

	offset := jump + 2 + int(c.Code[jump])<<8 + int(c.Code[jump+1])
	assert.Equal(t, len(c.Code), offset)
}

func TestLoopJumpsBackward(t *testing.T) {
	c := NewChunk()
	start := len(c.Code)
	c.WriteOpcode(OP_NIL, 1)
	require.NoError(t, c.EmitLoop(start, 1))

	pc := len(c.Code)
	back := int(c.Code[pc-2])<<8 | int(c.Code[pc-1])
	assert.Equal(t, start, pc-back)
}

func TestEmitLoopTooLarge(t *testing.T) {
	c := NewChunk()
	c.Code = make([]byte, 0x10000)
	c.Lines = make([]int, 0x10000)
	err := c.EmitLoop(0, 1)
	assert.ErrorIs(t, err, ErrLoopBodyTooLarge)
}

func TestShrinkAndTruncateUndoPeepholeEmission(t *testing.T) {
	c := NewChunk()
	idx1, _ := c.AddConstant(value.NumberValue(1))
	idx2, _ := c.AddConstant(value.NumberValue(2))
	c.WriteOpcode(OP_CONSTANT, 1)
	c.Write(idx1, 1)
	c.WriteOpcode(OP_CONSTANT, 1)
	c.Write(idx2, 1)

	c.TruncateCode(4)
	c.ShrinkConstants(2)
	assert.Empty(t, c.Code)
	assert.Empty(t, c.Constants)
}
