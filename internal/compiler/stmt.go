package compiler

import (
	"lumen/internal/bytecode"
	"lumen/internal/lexer"
	"lumen/internal/object"
	"lumen/internal/token"
	"lumen/internal/value"
)

// declaration is the statement-level entry point: one call compiles exactly
// one top-level-or-block construct, then resynchronizes if it panicked.
func (p *Parser) declaration() {
	switch {
	case p.match(token.VAR):
		p.varDeclaration(false)
	case p.match(token.CONST):
		p.varDeclaration(true)
	case p.match(token.DEF):
		p.defDeclaration()
	case p.match(token.CLASS):
		p.classDeclaration()
	default:
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *Parser) statement() {
	switch {
	case p.match(token.LBRACE):
		p.beginScope()
		p.block()
		p.endScope()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.BREAK):
		p.breakStatement()
	case p.match(token.CONTINUE):
		p.continueStatement()
	case p.match(token.RETURN):
		p.returnStatement()
	case p.match(token.IMPORT):
		p.importStatement()
	case p.match(token.FROM):
		p.fromImportStatement()
	default:
		p.expressionStatement()
	}
}

// --- bindings ---------------------------------------------------------------

func (p *Parser) varDeclaration(constant bool) {
	for {
		nameConst, isGlobal := p.parseVariable("expect variable name", constant)
		nameLexeme := p.previous.Lexeme

		if p.match(token.EQUAL) {
			p.expression()
		} else {
			if constant {
				p.error(errConstWithoutInit.Error())
			}
			p.emitOp(bytecode.OP_NIL)
		}
		p.defineVariable(nameConst, isGlobal, constant, nameLexeme)

		if !p.match(token.COMMA) {
			break
		}
	}
	p.consume(token.SEMICOLON, "expect ';' after variable declaration")
}

func (p *Parser) defDeclaration() {
	nameConst, isGlobal := p.parseVariable("expect function name", false)
	nameLexeme := p.previous.Lexeme
	// Mark the local initialized before compiling its body so a function can
	// call itself by name.
	p.frame.markInitialized()
	p.function(nameLexeme, object.KindFunction)
	p.defineVariable(nameConst, isGlobal, false, nameLexeme)
}

func (p *Parser) classDeclaration() {
	p.consume(token.IDENTIFIER, "expect class name")
	nameTok := p.previous
	nameConst := p.identifierConstant(nameTok.Lexeme)
	p.declareVariable(nameTok, false)

	p.emitOpByte(bytecode.OP_CLASS, nameConst)
	isGlobal := p.frame.ScopeDepth == 0
	p.defineVariable(nameConst, isGlobal, false, nameTok.Lexeme)

	classRec := &ClassRecord{Name: nameTok, Enclosing: p.frame.Class}
	p.frame.Class = classRec

	if p.match(token.LESS) {
		p.consume(token.IDENTIFIER, "expect superclass name")
		superTok := p.previous
		if superTok.Lexeme == nameTok.Lexeme {
			p.error("a class cannot inherit from itself")
		}
		p.namedVariable(superTok, false)

		p.beginScope()
		if err := p.frame.addLocal(token.Token{Lexeme: "super"}, false); err != nil {
			p.error(err.Error())
		}
		p.frame.markInitialized()

		p.namedVariable(nameTok, false)
		p.emitOp(bytecode.OP_SUBCLASS)
		classRec.HasSuperclass = true
	}

	p.namedVariable(nameTok, false)
	p.consume(token.LBRACE, "expect '{' before class body")
	p.classBody()
	p.consume(token.RBRACE, "expect '}' after class body")
	p.emitOp(bytecode.OP_END_CLASS)

	if classRec.HasSuperclass {
		p.endScope()
	}
	p.frame.Class = classRec.Enclosing
}

func (p *Parser) classBody() {
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		if p.match(token.VAR) {
			p.consume(token.IDENTIFIER, "expect class variable name")
			nameConst := p.identifierConstant(p.previous.Lexeme)
			if p.match(token.EQUAL) {
				p.expression()
			} else {
				p.emitOp(bytecode.OP_NIL)
			}
			p.consume(token.SEMICOLON, "expect ';' after class variable")
			p.emitOpByte(bytecode.OP_SET_CLASS_VAR, nameConst)
			continue
		}
		p.method()
	}
}

func (p *Parser) method() {
	p.consume(token.IDENTIFIER, "expect method name")
	name := p.previous.Lexeme
	kind := object.KindMethod
	if name == "init" {
		kind = object.KindInitializer
	}
	nameConst := p.identifierConstant(name)
	p.function(name, kind)
	p.emitOpByte(bytecode.OP_METHOD, nameConst)
}

// --- control flow ------------------------------------------------------------

func (p *Parser) ifStatement() {
	p.consume(token.LPAREN, "expect '(' after 'if'")
	p.expression()
	p.consume(token.RPAREN, "expect ')' after condition")

	thenJump := p.emitJump(bytecode.OP_JUMP_IF_FALSE)
	p.emitOp(bytecode.OP_POP)
	p.statement()

	elseJump := p.emitJump(bytecode.OP_JUMP)
	p.patchJump(thenJump)
	p.emitOp(bytecode.OP_POP)

	if p.match(token.ELSE) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *Parser) whileStatement() {
	loop := &LoopRecord{Start: len(p.chunk().Code), ScopeDepth: p.frame.ScopeDepth, End: -1, Enclosing: p.frame.Loop}
	p.frame.Loop = loop

	p.consume(token.LPAREN, "expect '(' after 'while'")
	p.expression()
	p.consume(token.RPAREN, "expect ')' after condition")

	exitJump := p.emitJump(bytecode.OP_JUMP_IF_FALSE)
	p.emitOp(bytecode.OP_POP)
	loop.Body = len(p.chunk().Code)
	p.statement()
	p.emitLoop(loop.Start)

	p.patchJump(exitJump)
	p.emitOp(bytecode.OP_POP)

	p.finishLoop(loop)
}

// forStatement desugars the three-clause form the way a single-pass
// compiler must: the condition and increment are compiled in source order,
// but the increment's code is skipped on the loop's first pass with a
// forward jump and revisited by looping back to it, so at runtime it still
// runs after the body, once per iteration.
func (p *Parser) forStatement() {
	p.beginScope()
	p.consume(token.LPAREN, "expect '(' after 'for'")

	switch {
	case p.match(token.SEMICOLON):
	case p.match(token.VAR):
		p.varDeclaration(false)
	default:
		p.expressionStatement()
	}

	loop := &LoopRecord{ScopeDepth: p.frame.ScopeDepth, End: -1, Enclosing: p.frame.Loop}
	loop.Start = len(p.chunk().Code)
	p.frame.Loop = loop

	exitJump := -1
	if !p.check(token.SEMICOLON) {
		p.expression()
		exitJump = p.emitJump(bytecode.OP_JUMP_IF_FALSE)
		p.emitOp(bytecode.OP_POP)
	}
	p.consume(token.SEMICOLON, "expect ';' after loop condition")

	if !p.check(token.RPAREN) {
		bodyJump := p.emitJump(bytecode.OP_JUMP)
		incrStart := len(p.chunk().Code)
		p.expression()
		p.emitOp(bytecode.OP_POP)
		p.consume(token.RPAREN, "expect ')' after for clauses")

		p.emitLoop(loop.Start)
		loop.Start = incrStart
		p.patchJump(bodyJump)
	} else {
		p.consume(token.RPAREN, "expect ')' after for clauses")
	}

	loop.Body = len(p.chunk().Code)
	p.statement()
	p.emitLoop(loop.Start)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(bytecode.OP_POP)
	}

	p.finishLoop(loop)
	p.endScope()
}

func (p *Parser) finishLoop(loop *LoopRecord) {
	loop.End = len(p.chunk().Code)
	for _, offset := range loop.breakJumps {
		if err := p.chunk().PatchBreak(offset); err != nil {
			p.chunkErrorAt(p.previous, err)
		}
	}
	p.frame.Loop = loop.Enclosing
}

// emitLoopScopeCleanup pops (or closes, if captured) every local declared
// deeper than loop's scope, without touching the frame's Locals bookkeeping
// itself — break/continue only clean the runtime stack before jumping; the
// block that owns those locals closes its own scope normally afterward.
func (p *Parser) emitLoopScopeCleanup(loop *LoopRecord) {
	for i := len(p.frame.Locals) - 1; i >= 0; i-- {
		local := p.frame.Locals[i]
		if local.Depth <= loop.ScopeDepth {
			break
		}
		if local.IsCaptured {
			p.emitOp(bytecode.OP_CLOSE_UPVALUE)
		} else {
			p.emitOp(bytecode.OP_POP)
		}
	}
}

func (p *Parser) breakStatement() {
	if p.frame.Loop == nil {
		p.error(errBreakOutsideLoop.Error())
		p.consume(token.SEMICOLON, "expect ';' after 'break'")
		return
	}
	p.emitLoopScopeCleanup(p.frame.Loop)
	offset := p.emitJump(bytecode.OP_BREAK)
	p.frame.Loop.breakJumps = append(p.frame.Loop.breakJumps, offset)
	p.consume(token.SEMICOLON, "expect ';' after 'break'")
}

func (p *Parser) continueStatement() {
	if p.frame.Loop == nil {
		p.error(errContinueOutsideLoop.Error())
		p.consume(token.SEMICOLON, "expect ';' after 'continue'")
		return
	}
	p.emitLoopScopeCleanup(p.frame.Loop)
	p.emitLoop(p.frame.Loop.Start)
	p.consume(token.SEMICOLON, "expect ';' after 'continue'")
}

func (p *Parser) returnStatement() {
	if p.frame.Function.Kind == object.KindScript {
		p.error(errReturnAtTopLevel.Error())
	}
	if p.match(token.SEMICOLON) {
		p.emitReturn()
		return
	}
	if p.frame.Function.Kind == object.KindInitializer {
		p.error(errReturnValueFromInit.Error())
	}
	p.expression()
	p.consume(token.SEMICOLON, "expect ';' after return value")
	p.emitOp(bytecode.OP_RETURN)
}

func (p *Parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMICOLON, "expect ';' after expression")
	if p.replMode {
		p.emitOp(bytecode.OP_POP_REPL)
	} else {
		p.emitOp(bytecode.OP_POP)
	}
}

// --- imports -----------------------------------------------------------------

func (p *Parser) declareImportTarget(name token.Token) (nameConst byte, isGlobal bool) {
	p.declareVariable(name, false)
	if p.frame.ScopeDepth > 0 {
		return 0, false
	}
	return p.identifierConstant(name.Lexeme), true
}

func (p *Parser) importStatement() {
	p.consume(token.STRING, "expect module path string")
	path, _ := lexer.Unquote(p.previous.Lexeme)
	pathConst := p.identifierConstant(path)
	p.emitOpByte(bytecode.OP_IMPORT, pathConst)

	if p.match(token.AS) {
		p.consume(token.IDENTIFIER, "expect binding name after 'as'")
		name := p.previous
		p.emitOp(bytecode.OP_IMPORT_VARIABLE)
		nameConst, isGlobal := p.declareImportTarget(name)
		p.defineVariable(nameConst, isGlobal, false, name.Lexeme)
	}
	p.emitOp(bytecode.OP_IMPORT_END)
	p.consume(token.SEMICOLON, "expect ';' after import")
}

// fromImportStatement compiles `from "path" import a, b, c;`. The path is
// pushed as an ordinary string constant (OP_IMPORT_FROM's operand list
// carries only the name count and name indices, per the bytecode ABI), and
// names are declared as locals in forward order but defined as module
// globals in reverse order, so that the last name's OP_DEFINE_MODULE is the
// first one popped off the values the import pushed.
func (p *Parser) fromImportStatement() {
	p.consume(token.STRING, "expect module path string")
	path, _ := lexer.Unquote(p.previous.Lexeme)
	pathStr := p.vm.InternString(path)
	p.vm.PushValue(value.ObjValue(pathStr))
	p.emitConstant(value.ObjValue(pathStr))
	p.vm.PopValue()

	p.consume(token.IMPORT, "expect 'import' after module path")

	type importedName struct {
		tok      token.Token
		isGlobal bool
	}
	var names []importedName
	for {
		if !p.check(token.IDENTIFIER) {
			p.error(errImportNameExpected.Error())
			break
		}
		p.advance()
		name := p.previous
		p.declareVariable(name, false)
		entry := importedName{tok: name, isGlobal: p.frame.ScopeDepth == 0}
		if !entry.isGlobal {
			p.frame.markInitialized()
		}
		names = append(names, entry)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.consume(token.SEMICOLON, "expect ';' after import list")

	if len(names) > 255 {
		p.error("too many names in a single import")
		return
	}

	p.emitOp(bytecode.OP_IMPORT_FROM)
	p.emitByte(byte(len(names)))
	nameConsts := make([]byte, len(names))
	for i, n := range names {
		nameConsts[i] = p.identifierConstant(n.tok.Lexeme)
		p.emitByte(nameConsts[i])
	}

	for i := len(names) - 1; i >= 0; i-- {
		if names[i].isGlobal {
			p.emitOpByte(bytecode.OP_DEFINE_MODULE, nameConsts[i])
		}
	}
}
