package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumen/internal/bytecode"
	"lumen/internal/compiler"
	"lumen/internal/object"
	"lumen/internal/value"
	"lumen/internal/vm"
)

func compileSource(t *testing.T, src string) *object.Function {
	t.Helper()
	collaborator := vm.New()
	module := object.NewModule("test", "test.lm")
	fn, err := compiler.Compile(collaborator, module, []byte(src))
	require.NoError(t, err)
	require.NotNil(t, fn)
	return fn
}

func compileSourceExpectError(t *testing.T, src string) error {
	t.Helper()
	collaborator := vm.New()
	module := object.NewModule("test", "test.lm")
	_, err := compiler.Compile(collaborator, module, []byte(src))
	return err
}

func TestEmptyProgramCompilesToImplicitReturn(t *testing.T) {
	fn := compileSource(t, "")
	assert.Equal(t, []byte{byte(bytecode.OP_NIL), byte(bytecode.OP_RETURN)}, fn.Chunk.Code)
}

func TestExpressionStatementFoldsAndPops(t *testing.T) {
	fn := compileSource(t, "1+2;")
	want := []byte{
		byte(bytecode.OP_CONSTANT), 0,
		byte(bytecode.OP_POP),
		byte(bytecode.OP_NIL), byte(bytecode.OP_RETURN),
	}
	assert.Equal(t, want, fn.Chunk.Code)
	require.Len(t, fn.Chunk.Constants, 1)
	assert.True(t, fn.Chunk.Constants[0].IsNumber())
	assert.Equal(t, float64(3), fn.Chunk.Constants[0].Num)
}

func TestVarDeclarationFoldsInitializer(t *testing.T) {
	fn := compileSource(t, "var x = 1+2;")
	require.Len(t, fn.Chunk.Constants, 2) // name "x", folded 3
	want := []byte{
		byte(bytecode.OP_CONSTANT), 1,
		byte(bytecode.OP_DEFINE_MODULE), 0,
		byte(bytecode.OP_NIL), byte(bytecode.OP_RETURN),
	}
	assert.Equal(t, want, fn.Chunk.Code)
}

func TestCompoundAssignmentOnGlobal(t *testing.T) {
	fn := compileSource(t, "var a = 1; a += 2;")
	want := []byte{
		// var a = 1;
		byte(bytecode.OP_CONSTANT), 1,
		byte(bytecode.OP_DEFINE_MODULE), 0,
		// a += 2;
		byte(bytecode.OP_GET_MODULE), 0,
		byte(bytecode.OP_CONSTANT), 2,
		byte(bytecode.OP_ADD),
		byte(bytecode.OP_SET_MODULE), 0,
		byte(bytecode.OP_POP),
		byte(bytecode.OP_NIL), byte(bytecode.OP_RETURN),
	}
	assert.Equal(t, want, fn.Chunk.Code)
}

func TestIfElseEmitsJumpPattern(t *testing.T) {
	fn := compileSource(t, "if (true) 1; else 2;")
	code := fn.Chunk.Code
	require.True(t, len(code) > 0)
	assert.Equal(t, byte(bytecode.OP_TRUE), code[0])
	assert.Equal(t, byte(bytecode.OP_JUMP_IF_FALSE), code[1])
	assert.Equal(t, byte(bytecode.OP_POP), code[4])
	assert.Equal(t, byte(bytecode.OP_CONSTANT), code[5])
	assert.Equal(t, byte(bytecode.OP_POP), code[7])
	assert.Equal(t, byte(bytecode.OP_JUMP), code[8])
}

func TestClosureCapturesEnclosingLocalAsUpvalue(t *testing.T) {
	fn := compileSource(t, "def f(){ var x = 1; def g(){ return x; } return g; }")
	require.Len(t, fn.Chunk.Constants, 2) // the module global name "f", then the function object f

	// Find the CLOSURE instruction for f in the top-level chunk.
	found := false
	for i := 0; i < len(fn.Chunk.Code); i++ {
		if bytecode.Opcode(fn.Chunk.Code[i]) == bytecode.OP_CLOSURE {
			found = true
			break
		}
	}
	assert.True(t, found, "expected OP_CLOSURE for top-level def f")

	f, ok := fn.Chunk.Constants[1].Obj.(*object.Function)
	require.True(t, ok)
	require.Len(t, f.Chunk.Constants, 2) // the literal 1, then the function object g
	g, ok := f.Chunk.Constants[1].Obj.(*object.Function)
	require.True(t, ok)

	// g reads x through its upvalue 0 ...
	assert.Equal(t, 1, g.UpvalueCount)
	assert.Equal(t, []byte{byte(bytecode.OP_GET_UPVALUE), 0, byte(bytecode.OP_RETURN)}, g.Chunk.Code[:3])
	// ... and f's OP_CLOSURE for g captures x as (isLocal=1, slot 1).
	assert.Equal(t, []byte{byte(bytecode.OP_CLOSURE), 1, 1, 1}, f.Chunk.Code[2:6])
}

func TestBreakOutsideLoopFails(t *testing.T) {
	err := compileSourceExpectError(t, "break;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot utilise 'break' outside of a loop.")
}

func TestForLoopBreakPatchesToJump(t *testing.T) {
	fn := compileSource(t, "for (var i=0; i<3; i=i+1) break;")
	code := fn.Chunk.Code
	jumps := 0
	for i := 0; i < len(code); {
		op := bytecode.Opcode(code[i])
		assert.NotEqual(t, bytecode.OP_BREAK, op)
		if op == bytecode.OP_JUMP {
			jumps++
		}
		width, _ := op.OperandWidth()
		i += 1 + width
	}
	// One OP_JUMP skips the increment clause on loop entry; the other is
	// the patched break.
	assert.Equal(t, 2, jumps)
}

func TestOptionalAfterRequiredFails(t *testing.T) {
	err := compileSourceExpectError(t, "def f(a=1, b){}")
	require.Error(t, err)
}

func TestSpreadMustBeLast(t *testing.T) {
	err := compileSourceExpectError(t, "def f(...rest, x){}")
	require.Error(t, err)
}

// Each uninitialized top-level `var` spends exactly one constant-pool entry
// (its name); 256 of them fill the chunk's pool exactly to capacity, 257
// overflows it.
func namesProgram(n int) string {
	src := ""
	for i := 0; i < n; i++ {
		src += "var a" + itoa(i) + ";\n"
	}
	return src
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func Test256ConstantsSucceed(t *testing.T) {
	collaborator := vm.New()
	module := object.NewModule("test", "test.lm")
	fn, err := compiler.Compile(collaborator, module, []byte(namesProgram(256)))
	require.NoError(t, err)
	assert.Len(t, fn.Chunk.Constants, 256)
}

func Test257ConstantsFail(t *testing.T) {
	err := compileSourceExpectError(t, namesProgram(257))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too many constants in one chunk.")
}

func TestAssignToConstantFails(t *testing.T) {
	err := compileSourceExpectError(t, "const x = 1; x = 2;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot assign to a constant")
}

func TestReturnAtTopLevelFails(t *testing.T) {
	err := compileSourceExpectError(t, "return 1;")
	require.Error(t, err)
}

func TestClassWithInitPropertyParam(t *testing.T) {
	fn := compileSource(t, `class A { init(var x){} }`)
	foundMethod := false
	for _, b := range fn.Chunk.Code {
		if bytecode.Opcode(b) == bytecode.OP_METHOD {
			foundMethod = true
		}
	}
	assert.True(t, foundMethod)
}

func TestUnaryNotFoldsLiterals(t *testing.T) {
	fn := compileSource(t, "not true;")
	want := []byte{
		byte(bytecode.OP_FALSE),
		byte(bytecode.OP_POP),
		byte(bytecode.OP_NIL), byte(bytecode.OP_RETURN),
	}
	assert.Equal(t, want, fn.Chunk.Code)
}

func TestNegateFoldsLiteral(t *testing.T) {
	fn := compileSource(t, "-5;")
	require.Len(t, fn.Chunk.Constants, 1)
	assert.Equal(t, value.NumberValue(-5), fn.Chunk.Constants[0])
}
