// Package debug renders a compiled Chunk back into a human-readable
// instruction listing, the way a disassembler inspects what a single-pass
// compiler actually emitted.
package debug

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"lumen/internal/bytecode"
	"lumen/internal/object"
)

// Disassemble renders every instruction in c under a "== name ==" header,
// plus a one-line summary of the chunk's size.
func Disassemble(c *bytecode.Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)

	for offset := 0; offset < len(c.Code); {
		next, line := Instruction(c, offset)
		b.WriteString(line)
		b.WriteByte('\n')
		offset = next
	}

	fmt.Fprintf(&b, "-- %s bytes, %s constants --\n",
		humanize.Comma(int64(len(c.Code))), humanize.Comma(int64(len(c.Constants))))
	return b.String()
}

// Instruction renders the single instruction starting at offset, returning
// the offset of the next instruction and the rendered line.
func Instruction(c *bytecode.Chunk, offset int) (next int, line string) {
	var b strings.Builder
	fmt.Fprintf(&b, "%04d ", offset)

	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		b.WriteString("   | ")
	} else {
		fmt.Fprintf(&b, "%4d ", c.Lines[offset])
	}

	op := bytecode.Opcode(c.Code[offset])
	width, composite := op.OperandWidth()

	switch {
	case composite:
		next = compositeInstruction(c, op, offset, &b)
	case width == 0:
		fmt.Fprintf(&b, "%s", op)
		next = offset + 1
	case width == 1:
		operand := c.Code[offset+1]
		fmt.Fprintf(&b, "%-22s %4d", op, operand)
		if op == bytecode.OP_CONSTANT && int(operand) < len(c.Constants) {
			fmt.Fprintf(&b, " '%s'", c.Constants[operand])
		}
		next = offset + 2
	case width == 2:
		hi, lo := c.Code[offset+1], c.Code[offset+2]
		jump := int(hi)<<8 | int(lo)
		target := offset + 3
		if op == bytecode.OP_LOOP {
			target -= jump
		} else {
			target += jump
		}
		fmt.Fprintf(&b, "%-22s %4d -> %d", op, jump, target)
		next = offset + 3
	default:
		fmt.Fprintf(&b, "%s (unknown width)", op)
		next = offset + 1
	}

	return next, b.String()
}

// compositeInstruction renders the opcodes whose total length depends on a
// preceding operand (call argument counts, closure upvalue pairs, and so
// on), per the ABI in bytecode.Opcode.OperandWidth.
func compositeInstruction(c *bytecode.Chunk, op bytecode.Opcode, offset int, b *strings.Builder) int {
	switch op {
	case bytecode.OP_CALL:
		argc, unpack := c.Code[offset+1], c.Code[offset+2]
		fmt.Fprintf(b, "%-22s argc=%d unpack=%d", op, argc, unpack)
		return offset + 3

	case bytecode.OP_INVOKE, bytecode.OP_SUPER:
		argc, nameIdx, unpack := c.Code[offset+1], c.Code[offset+2], c.Code[offset+3]
		name := "?"
		if int(nameIdx) < len(c.Constants) {
			name = c.Constants[nameIdx].String()
		}
		fmt.Fprintf(b, "%-22s argc=%d name=%s unpack=%d", op, argc, name, unpack)
		return offset + 4

	case bytecode.OP_DEFINE_OPTIONAL:
		required, optional := c.Code[offset+1], c.Code[offset+2]
		fmt.Fprintf(b, "%-22s required=%d optional=%d", op, required, optional)
		return offset + 3

	case bytecode.OP_CLOSURE:
		fnIdx := c.Code[offset+1]
		name := "?"
		if int(fnIdx) < len(c.Constants) {
			name = c.Constants[fnIdx].String()
		}
		fmt.Fprintf(b, "%-22s %4d '%s'", op, fnIdx, name)
		next := offset + 2

		upvalueCount := 0
		if int(fnIdx) < len(c.Constants) {
			if fn, ok := c.Constants[fnIdx].Obj.(*object.Function); ok {
				upvalueCount = fn.UpvalueCount
			}
		}
		for i := 0; i < upvalueCount; i++ {
			isLocal, index := c.Code[next], c.Code[next+1]
			kind := "upvalue"
			if isLocal == 1 {
				kind = "local"
			}
			fmt.Fprintf(b, "\n%04d      |                     %s %d", next, kind, index)
			next += 2
		}
		return next

	case bytecode.OP_IMPORT_FROM:
		count := c.Code[offset+1]
		fmt.Fprintf(b, "%-22s count=%d", op, count)
		next := offset + 2
		for i := byte(0); i < count; i++ {
			nameIdx := c.Code[next]
			name := "?"
			if int(nameIdx) < len(c.Constants) {
				name = c.Constants[nameIdx].String()
			}
			fmt.Fprintf(b, " %s", name)
			next++
		}
		return next

	default:
		fmt.Fprintf(b, "%s (unhandled composite)", op)
		return offset + 1
	}
}
