package compiler

import (
	"strconv"

	"lumen/internal/bytecode"
	"lumen/internal/lexer"
	"lumen/internal/token"
	"lumen/internal/value"
)

func (p *Parser) expression() { p.parsePrecedence(PrecAssignment) }

// parsePrecedence is the Pratt parser loop: consume one token, dispatch its
// prefix rule with canAssign = (min <= PrecAssignment), then keep consuming
// infix operators whose precedence is >= min. If, after the loop,
// canAssign is still true and an unconsumed '=' remains, the LHS refused it
// (no prefix/infix rule matched it), which is how `a + b = c` is caught.
func (p *Parser) parsePrecedence(min Precedence) {
	p.advance()
	prefix := ruleFor(p.previous.Kind).prefix
	if prefix == nil {
		p.error("expect expression")
		return
	}
	canAssign := min <= PrecAssignment
	prefix(p, canAssign)

	for min <= ruleFor(p.current.Kind).precedence {
		p.advance()
		infix := ruleFor(p.previous.Kind).infix
		infix(p, canAssign)
	}

	if canAssign && p.isAssignmentOp(p.current.Kind) {
		p.error("invalid assignment target")
		p.advance()
	}
}

func (p *Parser) isAssignmentOp(k token.Kind) bool {
	switch k {
	case token.EQUAL, token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_EQUAL,
		token.SLASH_EQUAL, token.AMP_EQUAL, token.CARET_EQUAL, token.PIPE_EQUAL:
		return true
	default:
		return false
	}
}

// --- literals -------------------------------------------------------------

func (p *Parser) number(_ bool) {
	text := lexer.StripNumericSeparators(p.previous.Lexeme)
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.error("invalid number literal '" + p.previous.Lexeme + "'")
		return
	}
	p.emitConstant(value.NumberValue(n))
}

func (p *Parser) stringLiteral(_ bool) {
	text, _ := lexer.Unquote(p.previous.Lexeme)
	str := p.vm.InternString(text)
	p.emitConstant(value.ObjValue(str))
}

func (p *Parser) literal(_ bool) {
	switch p.previous.Kind {
	case token.TRUE:
		p.emitOp(bytecode.OP_TRUE)
	case token.FALSE:
		p.emitOp(bytecode.OP_FALSE)
	case token.NIL:
		p.emitOp(bytecode.OP_NIL)
	}
}

func (p *Parser) grouping(_ bool) {
	p.expression()
	p.consume(token.RPAREN, "expect ')' after expression")
}

func (p *Parser) unary(_ bool) {
	op := p.previous.Kind
	line := p.previous.Line
	p.parsePrecedence(PrecUnary)
	switch op {
	case token.MINUS:
		p.emitOp(bytecode.OP_NEGATE)
		p.tryFoldUnaryNegate(line)
	case token.NOT:
		p.emitOp(bytecode.OP_NOT)
		p.tryFoldUnaryNot(line)
	}
}

func (p *Parser) binary(_ bool) {
	op := p.previous.Kind
	r := ruleFor(op)
	p.parsePrecedence(r.precedence + 1)

	switch op {
	case token.PLUS:
		p.emitOp(bytecode.OP_ADD)
	case token.MINUS:
		p.emitOp(bytecode.OP_SUBTRACT)
	case token.STAR:
		p.emitOp(bytecode.OP_MULTIPLY)
	case token.SLASH:
		p.emitOp(bytecode.OP_DIVIDE)
	case token.PERCENT:
		p.emitOp(bytecode.OP_MOD)
	case token.STAR_STAR:
		p.emitOp(bytecode.OP_POW)
	case token.AMP:
		p.emitOp(bytecode.OP_BITWISE_AND)
	case token.CARET:
		p.emitOp(bytecode.OP_BITWISE_XOR)
	case token.PIPE:
		p.emitOp(bytecode.OP_BITWISE_OR)
	case token.EQUAL_EQUAL:
		p.emitOp(bytecode.OP_EQUAL)
	case token.BANG_EQUAL:
		p.emitOp(bytecode.OP_EQUAL)
		p.emitOp(bytecode.OP_NOT)
	case token.GREATER:
		p.emitOp(bytecode.OP_GREATER)
	case token.GREATER_EQUAL:
		p.emitOp(bytecode.OP_LESS)
		p.emitOp(bytecode.OP_NOT)
	case token.LESS:
		p.emitOp(bytecode.OP_LESS)
	case token.LESS_EQUAL:
		p.emitOp(bytecode.OP_GREATER)
		p.emitOp(bytecode.OP_NOT)
	default:
		return
	}
	p.tryFoldBinary(op)
}

func (p *Parser) and_(_ bool) {
	endJump := p.emitJump(bytecode.OP_JUMP_IF_FALSE)
	p.emitOp(bytecode.OP_POP)
	p.parsePrecedence(PrecAnd)
	p.patchJump(endJump)
}

func (p *Parser) or_(_ bool) {
	elseJump := p.emitJump(bytecode.OP_JUMP_IF_FALSE)
	endJump := p.emitJump(bytecode.OP_JUMP)
	p.patchJump(elseJump)
	p.emitOp(bytecode.OP_POP)
	p.parsePrecedence(PrecOr)
	p.patchJump(endJump)
}

// --- named variables & assignment targets ---------------------------------

func (p *Parser) variable(canAssign bool) { p.namedVariable(p.previous, canAssign) }

func (p *Parser) namedVariable(name token.Token, canAssign bool) {
	if slot := p.resolveLocal(p.frame, name, true); slot != Unresolved {
		local := p.frame.Locals[slot]
		p.compileAssignableAccess(canAssign, bytecode.OP_GET_LOCAL, bytecode.OP_SET_LOCAL, byte(slot), local.Constant, false)
		return
	}
	if up := p.resolveUpvalue(p.frame, name); up != Unresolved {
		upv := p.frame.Upvalues[up]
		p.compileAssignableAccess(canAssign, bytecode.OP_GET_UPVALUE, bytecode.OP_SET_UPVALUE, byte(up), upv.Constant, false)
		return
	}

	nameConst := p.identifierConstant(name.Lexeme)
	if p.vm.IsBuiltinGlobal(name.Lexeme) {
		// True VM globals are read-only, regardless of operator.
		p.emitOpByte(bytecode.OP_GET_GLOBAL, nameConst)
		if canAssign && p.isAssignmentOp(p.current.Kind) {
			p.error("cannot assign to built-in global '" + name.Lexeme + "'")
		}
		return
	}
	constant := p.vm.IsConstant(p.module, name.Lexeme)
	p.compileAssignableAccess(canAssign, bytecode.OP_GET_MODULE, bytecode.OP_SET_MODULE, nameConst, constant, false)
}

// compileAssignableAccess implements the shared read/write/compound-write
// shape for any assignable target whose get/set opcodes both take the same
// one-byte operand (locals, upvalues and module globals). Property targets
// are compiled by dot, not here; viaProperty is not read.
func (p *Parser) compileAssignableAccess(canAssign bool, get, set bytecode.Opcode, operand byte, constant bool, viaProperty bool) {
	if !canAssign {
		p.emitOpByte(get, operand)
		return
	}
	switch {
	case p.match(token.EQUAL):
		if constant {
			p.error(errAssignToConstant.Error())
		}
		p.expression()
		p.emitOpByte(set, operand)
	case p.matchCompoundAssign():
		arith := p.compoundArithOp(p.previous.Kind)
		if constant {
			p.error(errAssignToConstant.Error())
		}
		p.emitOpByte(get, operand)
		p.expression()
		p.emitOp(arith)
		p.emitOpByte(set, operand)
	default:
		p.emitOpByte(get, operand)
	}
}

func (p *Parser) matchCompoundAssign() bool {
	switch p.current.Kind {
	case token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_EQUAL, token.SLASH_EQUAL,
		token.AMP_EQUAL, token.CARET_EQUAL, token.PIPE_EQUAL:
		p.advance()
		return true
	default:
		return false
	}
}

func (p *Parser) compoundArithOp(op token.Kind) bytecode.Opcode {
	switch op {
	case token.PLUS_EQUAL:
		return bytecode.OP_ADD
	case token.MINUS_EQUAL:
		return bytecode.OP_SUBTRACT
	case token.STAR_EQUAL:
		return bytecode.OP_MULTIPLY
	case token.SLASH_EQUAL:
		return bytecode.OP_DIVIDE
	case token.AMP_EQUAL:
		return bytecode.OP_BITWISE_AND
	case token.CARET_EQUAL:
		return bytecode.OP_BITWISE_XOR
	case token.PIPE_EQUAL:
		return bytecode.OP_BITWISE_OR
	default:
		return bytecode.OP_ADD
	}
}

// --- this / super ----------------------------------------------------------

func (p *Parser) this_(_ bool) {
	if p.frame.Class == nil {
		p.error(errThisOutsideClass.Error())
		return
	}
	p.namedVariable(token.Token{Kind: token.IDENTIFIER, Lexeme: "this"}, false)
}

func (p *Parser) super_(_ bool) {
	if p.frame.Class == nil {
		p.error(errSuperOutsideClass.Error())
		return
	}
	if !p.frame.Class.HasSuperclass {
		p.error(errSuperWithoutParent.Error())
	}
	p.consume(token.DOT, "expect '.' after 'super'")
	p.consume(token.IDENTIFIER, "expect superclass method name")
	nameConst := p.identifierConstant(p.previous.Lexeme)

	p.namedVariable(token.Token{Kind: token.IDENTIFIER, Lexeme: "this"}, false)
	if p.match(token.LPAREN) {
		argc, unpack := p.argumentList()
		p.namedVariable(token.Token{Kind: token.IDENTIFIER, Lexeme: "super"}, false)
		p.emitOp(bytecode.OP_SUPER)
		p.emitByte(argc)
		p.emitByte(nameConst)
		p.emitByte(unpack)
		return
	}
	p.namedVariable(token.Token{Kind: token.IDENTIFIER, Lexeme: "super"}, false)
	p.emitOpByte(bytecode.OP_GET_SUPER, nameConst)
}

// --- calls, properties, subscript -------------------------------------------

func (p *Parser) call(_ bool) {
	argc, unpack := p.argumentList()
	p.emitOp(bytecode.OP_CALL)
	p.emitByte(argc)
	p.emitByte(unpack)
}

// argumentList parses a parenthesized call's arguments, already past the
// '('. unpack is 1 when any argument is prefixed with `...`; the position of
// that argument in the list is not checked.
func (p *Parser) argumentList() (argc byte, unpack byte) {
	count := 0
	if !p.check(token.RPAREN) {
		for {
			if p.match(token.ELLIPSIS) {
				unpack = 1
			}
			p.expression()
			count++
			if count > MaxParameters {
				p.error(errTooManyArguments.Error())
			}
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "expect ')' after arguments")
	return byte(count), unpack
}

func (p *Parser) dot(canAssign bool) {
	p.consume(token.IDENTIFIER, "expect property name after '.'")
	nameConst := p.identifierConstant(p.previous.Lexeme)

	if canAssign && p.match(token.EQUAL) {
		p.expression()
		p.emitOpByte(bytecode.OP_SET_PROPERTY, nameConst)
		return
	}
	if canAssign && p.matchCompoundAssign() {
		arith := p.compoundArithOp(p.previous.Kind)
		p.emitOpByte(bytecode.OP_GET_PROPERTY_NO_POP, nameConst)
		p.expression()
		p.emitOp(arith)
		p.emitOpByte(bytecode.OP_SET_PROPERTY, nameConst)
		return
	}
	if p.match(token.LPAREN) {
		argc, unpack := p.argumentList()
		p.emitOp(bytecode.OP_INVOKE)
		p.emitByte(argc)
		p.emitByte(nameConst)
		p.emitByte(unpack)
		return
	}
	p.emitOpByte(bytecode.OP_GET_PROPERTY, nameConst)
}

// subscript desugars `a[i]` to an OP_INVOKE of a well-known method name.
// The bytecode ABI (spec.md §6) defines no dedicated index opcodes, and has
// no stack-duplication primitive either, so compound assignment through a
// subscript (`a[i] += 1`) is rejected rather than silently miscompiled —
// see DESIGN.md.
func (p *Parser) subscript(canAssign bool) {
	p.expression()
	p.consume(token.RBRACKET, "expect ']' after index")

	if canAssign && p.match(token.EQUAL) {
		p.expression()
		nameConst := p.identifierConstant("__setindex__")
		p.emitOp(bytecode.OP_INVOKE)
		p.emitByte(2)
		p.emitByte(nameConst)
		p.emitByte(0)
		return
	}
	if canAssign && p.matchCompoundAssign() {
		p.error("compound assignment through a subscript is not supported")
		return
	}
	nameConst := p.identifierConstant("__getindex__")
	p.emitOp(bytecode.OP_INVOKE)
	p.emitByte(1)
	p.emitByte(nameConst)
	p.emitByte(0)
}
