package compiler

import (
	"strings"

	"lumen/internal/bytecode"
	"lumen/internal/object"
	"lumen/internal/token"
	"lumen/internal/value"
)

func accessFor(name string) object.AccessLevel {
	if strings.HasPrefix(name, "_") {
		return object.Private
	}
	return object.Public
}

// function compiles one function/method body: a fresh CompilerFrame, its
// parameter list, and its block, finishing with the enclosing-chunk
// OP_CLOSURE emission described in spec.md §4.E.
func (p *Parser) function(name string, kind object.FunctionKind) {
	fn := p.vm.NewFunction(p.module, kind, accessFor(name))
	fn.Name = name

	enclosing := p.frame
	p.frame = newFrame(enclosing, fn)
	p.frame.Class = enclosing.Class
	p.beginScope()

	p.consume(token.LPAREN, "expect '(' after function name")
	sawOptional := false
	if !p.check(token.RPAREN) {
		for {
			p.parameter(kind, &sawOptional)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "expect ')' after parameters")

	if sawOptional {
		p.emitOp(bytecode.OP_DEFINE_OPTIONAL)
		p.emitByte(byte(fn.Arity))
		p.emitByte(byte(fn.ArityOptional))
	}

	p.consume(token.LBRACE, "expect '{' before function body")
	p.block()

	childFrame := p.frame
	compiled := p.endCompiler() // restores p.frame to enclosing

	fnConst := p.makeConstant(value.ObjValue(compiled))
	p.emitOpByte(bytecode.OP_CLOSURE, fnConst)
	for _, up := range childFrame.Upvalues {
		isLocal := byte(0)
		if up.IsLocal {
			isLocal = 1
		}
		p.emitByte(isLocal)
		p.emitByte(up.Index)
	}
}

// parameter consumes one parameter in a function's signature: an optional
// `var` prefix (property params, `init` only), an optional `...` prefix
// (variadic, must be last), a name, and an optional `= default`.
func (p *Parser) parameter(kind object.FunctionKind, sawOptional *bool) {
	fn := p.frame.Function

	isProperty := p.match(token.VAR)
	if isProperty && kind != object.KindInitializer {
		p.error(errVarParamOutsideInit.Error())
	}

	isVariadic := p.match(token.ELLIPSIS)
	if isVariadic && kind == object.KindInitializer {
		p.error(errSpreadInInit.Error())
	}

	p.consume(token.IDENTIFIER, "expect parameter name")
	name := p.previous

	if fn.IsVariadic {
		// A previous parameter already claimed the variadic slot; anything
		// after it (including another `...`) is an error.
		p.error(errSpreadMustBeLast.Error())
	}
	if isVariadic {
		fn.IsVariadic = true
	}

	hasDefault := false
	if p.match(token.EQUAL) {
		if isVariadic {
			p.error(errSpreadCannotBeOptional.Error())
		}
		hasDefault = true
		*sawOptional = true
		p.expression()
	} else if *sawOptional && !isVariadic {
		p.error(errOptionalThenRequired.Error())
	}

	p.declareVariable(name, false)
	p.frame.markInitialized()

	if hasDefault {
		fn.ArityOptional++
	} else if !isVariadic {
		fn.Arity++
	}
	if fn.Arity+fn.ArityOptional > MaxParameters {
		p.error(errTooManyParameters.Error())
	}

	if isProperty {
		fn.PropertyCount++
		fn.PropertyNames = append(fn.PropertyNames, name.Lexeme)
	}
}

// block compiles declarations until the closing brace, assuming the opening
// brace has already been consumed and the caller has opened the scope.
func (p *Parser) block() {
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RBRACE, "expect '}' after block")
}
