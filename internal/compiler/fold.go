package compiler

import (
	"lumen/internal/bytecode"
	"lumen/internal/token"
	"lumen/internal/value"
)

// Peephole constant folding. It only ever looks at the tail of the chunk
// just emitted for the expression it's folding, and only fires when that
// tail is an immediate constant/literal with no other code interleaved —
// `2 + 3` folds, `a + 3` does not, because by the time binary() runs the
// left operand's bytecode (a variable read, a call, whatever) already sits
// between the two operands in the stream.

// tryFoldBinary attempts to collapse the two-operand arithmetic/comparison
// instruction sequence [OP_CONSTANT i1] [OP_CONSTANT i2] [op] into a single
// folded [OP_CONSTANT iNew], trimming the now-dead pool entries and code.
func (p *Parser) tryFoldBinary(op token.Kind) {
	c := p.chunk()
	n := len(c.Code)
	if n < 5 {
		return
	}
	// Layout: [OP_CONSTANT i1][OP_CONSTANT i2][binaryOp]
	if bytecode.Opcode(c.Code[n-5]) != bytecode.OP_CONSTANT || bytecode.Opcode(c.Code[n-3]) != bytecode.OP_CONSTANT {
		return
	}
	lhs := c.Constants[c.Code[n-4]]
	rhs := c.Constants[c.Code[n-2]]
	if !lhs.IsNumber() || !rhs.IsNumber() {
		return
	}

	folded, ok := foldNumberBinary(op, lhs.Num, rhs.Num)
	if !ok {
		return
	}

	// Drop the just-emitted result opcode plus the two OP_CONSTANT pairs,
	// then drop the two literal pool entries they pointed at.
	c.TruncateCode(5)
	c.ShrinkConstants(2)
	p.emitConstant(folded)
}

func foldNumberBinary(op token.Kind, a, b float64) (value.Value, bool) {
	switch op {
	case token.PLUS:
		return value.NumberValue(a + b), true
	case token.MINUS:
		return value.NumberValue(a - b), true
	case token.STAR:
		return value.NumberValue(a * b), true
	case token.SLASH:
		if b == 0 {
			return value.Value{}, false
		}
		return value.NumberValue(a / b), true
	case token.EQUAL_EQUAL:
		return value.BoolValue(a == b), true
	case token.BANG_EQUAL:
		return value.BoolValue(a != b), true
	case token.GREATER:
		return value.BoolValue(a > b), true
	case token.GREATER_EQUAL:
		return value.BoolValue(a >= b), true
	case token.LESS:
		return value.BoolValue(a < b), true
	case token.LESS_EQUAL:
		return value.BoolValue(a <= b), true
	default:
		return value.Value{}, false
	}
}

// tryFoldUnaryNegate collapses [OP_CONSTANT i][OP_NEGATE] into the negated
// literal.
func (p *Parser) tryFoldUnaryNegate(_ int) {
	c := p.chunk()
	n := len(c.Code)
	if n < 3 || bytecode.Opcode(c.Code[n-3]) != bytecode.OP_CONSTANT {
		return
	}
	operand := c.Constants[c.Code[n-2]]
	if !operand.IsNumber() {
		return
	}
	c.TruncateCode(3)
	c.ShrinkConstants(1)
	p.emitConstant(value.NumberValue(-operand.Num))
}

// tryFoldUnaryNot collapses a literal boolean/nil negation: [OP_TRUE|OP_FALSE|OP_NIL][OP_NOT].
func (p *Parser) tryFoldUnaryNot(_ int) {
	c := p.chunk()
	n := len(c.Code)
	if n < 2 {
		return
	}
	switch bytecode.Opcode(c.Code[n-2]) {
	case bytecode.OP_TRUE:
		c.TruncateCode(2)
		p.emitOp(bytecode.OP_FALSE)
	case bytecode.OP_FALSE:
		c.TruncateCode(2)
		p.emitOp(bytecode.OP_TRUE)
	case bytecode.OP_NIL:
		c.TruncateCode(2)
		p.emitOp(bytecode.OP_TRUE)
	}
}
