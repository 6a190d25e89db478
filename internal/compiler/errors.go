package compiler

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"lumen/internal/bytecode"
	"lumen/internal/token"
)

var (
	errTooManyLocals       = errors.New("too many local variables in function")
	errTooManyUpvalues     = errors.New("too many closure variables in function")
	errTooManyParameters   = errors.New("too many parameters")
	errTooManyArguments    = errors.New("too many arguments")
	errOptionalThenRequired = errors.New("non-optional parameter follows an optional one")
	errSpreadMustBeLast    = errors.New("spread parameter must be last")
	errSpreadCannotBeOptional = errors.New("spread parameter cannot be optional")
	errSpreadInInit        = errors.New("initializers cannot declare a spread parameter")
	errBreakOutsideLoop    = errors.New("Cannot utilise 'break' outside of a loop.")
	errContinueOutsideLoop = errors.New("cannot use 'continue' outside of a loop")
	errReturnAtTopLevel    = errors.New("cannot return from top-level code")
	errReturnValueFromInit = errors.New("cannot return a value from an initializer")
	errAssignToConstant    = errors.New("cannot assign to a constant")
	errInvalidAssignTarget = errors.New("invalid assignment target")
	errThisOutsideClass    = errors.New("cannot use 'this' outside of a class method")
	errSuperOutsideClass   = errors.New("cannot use 'super' outside of a class method")
	errSuperWithoutParent  = errors.New("cannot use 'super' in a class with no superclass")
	errConstWithoutInit    = errors.New("const declaration requires an initializer")
	errVarParamOutsideInit = errors.New("'var' parameters are only allowed in 'init'")
	errImportNameExpected  = errors.New("expect name to import")
)

// CompileError is the user-visible diagnostic: module name, line, offending
// lexeme (or "end" for EOF), and a message, per spec.md §7.
type CompileError struct {
	Module  string
	Line    int
	Lexeme  string
	Message string
}

func (e *CompileError) Error() string {
	where := e.Lexeme
	if where == "" {
		where = "end"
	}
	return fmt.Sprintf("%s:%d: error at '%s': %s", e.Module, e.Line, where, e.Message)
}

// errorAt reports a diagnostic anchored at tok. While panicMode is set,
// further reports are suppressed — this is what stops one bad token from
// cascading into a dozen misleading follow-on errors.
func (p *Parser) errorAt(tok token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	lexeme := tok.Lexeme
	if tok.Kind == token.EOF {
		lexeme = ""
	}
	err := &CompileError{Module: p.module.Name, Line: tok.Line, Lexeme: lexeme, Message: msg}
	p.errors = multierror.Append(p.errors, err)
	p.log.WithField("line", tok.Line).Debug(err.Error())
}

func (p *Parser) error(msg string)    { p.errorAt(p.previous, msg) }
func (p *Parser) errorCur(msg string) { p.errorAt(p.current, msg) }

// synchronize advances past tokens until a statement boundary, clearing
// panicMode so reporting resumes. It is the only place panicMode is reset.
func (p *Parser) synchronize() {
	p.panicMode = false
	for p.current.Kind != token.EOF {
		if p.previous.Kind == token.SEMICOLON {
			return
		}
		if p.current.Kind.IsStatementBoundary() {
			return
		}
		p.advance()
	}
}

// chunkErrorAt reports a bytecode-layer capacity error (constant pool, jump
// distance, loop distance) as a diagnostic anchored at tok.
func (p *Parser) chunkErrorAt(tok token.Token, err error) {
	switch {
	case errors.Is(err, bytecode.ErrTooManyConstants),
		errors.Is(err, bytecode.ErrJumpTooFar),
		errors.Is(err, bytecode.ErrLoopBodyTooLarge):
		p.errorAt(tok, err.Error())
	default:
		p.errorAt(tok, err.Error())
	}
}
