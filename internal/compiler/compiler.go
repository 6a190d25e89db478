// Package compiler implements the single-pass bytecode compiler: it fuses
// scanning, Pratt-style expression parsing, lexical scope/closure
// resolution, and bytecode emission into one pass over the token stream,
// with no intermediate AST, per spec.md.
package compiler

import (
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"lumen/internal/bytecode"
	"lumen/internal/lexer"
	"lumen/internal/object"
	"lumen/internal/token"
	"lumen/internal/value"
	"lumen/internal/vm"
)

// Parser is the component E driver's state: current/previous token, the
// panic/hadError sticky bits, and the collaborators it talks to (the
// scanner and the VM/heap).
type Parser struct {
	lex *lexer.Lexer

	previous token.Token
	current  token.Token

	panicMode bool
	hadError  bool
	errors    *multierror.Error

	module *object.Module
	vm     vm.Collaborator
	log    *logrus.Entry

	frame *Frame

	// replMode swaps the expression-statement result opcode from OP_POP to
	// OP_POP_REPL, which the execution engine uses to print/retain the
	// interactive session's last value instead of discarding it.
	replMode bool
}

// Compile is the compiler's entry point (spec.md §6):
// compile(vm, module, sourceBytes) -> Function | failure. The caller owns
// sourceBytes for the duration of the call.
func Compile(collaborator vm.Collaborator, module *object.Module, source []byte) (*object.Function, error) {
	return compile(collaborator, module, source, false)
}

// CompileREPL compiles one interactive input the same way Compile does,
// except bare expression statements emit OP_POP_REPL instead of OP_POP so
// the read-eval-print loop can surface the result.
func CompileREPL(collaborator vm.Collaborator, module *object.Module, source []byte) (*object.Function, error) {
	return compile(collaborator, module, source, true)
}

func compile(collaborator vm.Collaborator, module *object.Module, source []byte, repl bool) (*object.Function, error) {
	p := &Parser{
		lex:      lexer.New(source),
		module:   module,
		vm:       collaborator,
		log:      logrus.WithField("module", module.Name),
		replMode: repl,
	}

	fn := collaborator.NewFunction(module, object.KindScript, object.Public)
	p.frame = newFrame(nil, fn)

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}

	script := p.endCompiler()
	if p.hadError {
		return nil, p.errors.ErrorOrNil()
	}
	return script, nil
}

// --- token stream -----------------------------------------------------

func (p *Parser) advance() {
	p.previous = p.current
	for {
		p.current = p.lex.Next()
		if p.current.Kind != token.ERROR {
			break
		}
		p.errorCur(p.current.Message)
	}
}

func (p *Parser) check(kind token.Kind) bool { return p.current.Kind == kind }

func (p *Parser) match(kind token.Kind) bool {
	if !p.check(kind) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(kind token.Kind, msg string) {
	if p.check(kind) {
		p.advance()
		return
	}
	p.errorCur(msg)
}

// --- emission -----------------------------------------------------------

func (p *Parser) chunk() *bytecode.Chunk { return p.frame.Function.Chunk }

func (p *Parser) emitByte(b byte) {
	p.chunk().Write(b, p.previous.Line)
}

func (p *Parser) emitOp(op bytecode.Opcode) {
	p.chunk().WriteOpcode(op, p.previous.Line)
}

func (p *Parser) emitOpByte(op bytecode.Opcode, operand byte) {
	p.emitOp(op)
	p.emitByte(operand)
}

func (p *Parser) emitReturn() {
	if p.frame.Function.Kind == object.KindInitializer {
		// Bare `return;` inside init() auto-returns `this` (slot 0).
		p.emitOpByte(bytecode.OP_GET_LOCAL, 0)
	} else {
		p.emitOp(bytecode.OP_NIL)
	}
	p.emitOp(bytecode.OP_RETURN)
}

func (p *Parser) emitJump(op bytecode.Opcode) int {
	return p.chunk().EmitJump(op, p.previous.Line)
}

func (p *Parser) patchJump(offset int) {
	if err := p.chunk().PatchJump(offset); err != nil {
		p.chunkErrorAt(p.previous, err)
	}
}

func (p *Parser) emitLoop(start int) {
	if err := p.chunk().EmitLoop(start, p.previous.Line); err != nil {
		p.chunkErrorAt(p.previous, err)
	}
}

// makeConstant appends v to the current chunk's pool, reporting a compile
// error (rather than panicking) if the 256-entry cap is exceeded.
func (p *Parser) makeConstant(v value.Value) byte {
	idx, err := p.chunk().AddConstant(v)
	if err != nil {
		p.chunkErrorAt(p.previous, err)
		return 0
	}
	return idx
}

// emitConstant folds makeConstant + OP_CONSTANT emission, the common case.
func (p *Parser) emitConstant(v value.Value) {
	p.emitOpByte(bytecode.OP_CONSTANT, p.makeConstant(v))
}

// identifierConstant interns name's bytes and caches its constant-pool
// index on the current frame, so repeated references (the same global name
// read and written many times) share one pool entry.
func (p *Parser) identifierConstant(name string) byte {
	idx, err := p.frame.internConstant(name, func() (byte, error) {
		str := p.vm.InternString(name)
		p.vm.PushValue(value.ObjValue(str))
		defer p.vm.PopValue()
		return p.chunk().AddConstant(value.ObjValue(str))
	})
	if err != nil {
		p.chunkErrorAt(p.previous, err)
		return 0
	}
	return idx
}

func (p *Parser) endCompiler() *object.Function {
	p.emitReturn()
	fn := p.frame.Function
	p.log.WithField("function", fn.Name).Debug("compiled function")

	enclosing := p.frame.Enclosing
	p.frame = enclosing
	return fn
}

// --- scope ---------------------------------------------------------------

func (p *Parser) beginScope() { p.frame.ScopeDepth++ }

// endScope pops the block's locals, closing over any that were captured by
// a nested closure (OP_CLOSE_UPVALUE) instead of a plain OP_POP.
func (p *Parser) endScope() {
	p.frame.ScopeDepth--
	locals := p.frame.Locals
	for len(locals) > 0 && locals[len(locals)-1].Depth > p.frame.ScopeDepth {
		if locals[len(locals)-1].IsCaptured {
			p.emitOp(bytecode.OP_CLOSE_UPVALUE)
		} else {
			p.emitOp(bytecode.OP_POP)
		}
		locals = locals[:len(locals)-1]
	}
	p.frame.Locals = locals
}
