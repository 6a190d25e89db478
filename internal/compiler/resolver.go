package compiler

import (
	"lumen/internal/bytecode"
	"lumen/internal/token"
)

// resolveLocal scans frame's locals from newest to oldest so later
// declarations shadow earlier ones. enforceSameFrame is true only when the
// caller is resolving a name against the frame currently being compiled
// (not a parent lookup made on behalf of resolveUpvalue), matching
// spec.md §4.D primitive 1.
func (p *Parser) resolveLocal(frame *Frame, name token.Token, enforceSameFrame bool) int {
	for i := len(frame.Locals) - 1; i >= 0; i-- {
		local := frame.Locals[i]
		if !local.Name.Eq(name) {
			continue
		}
		if enforceSameFrame && !local.initialized() {
			p.error("cannot read local in its own initializer")
		}
		return i
	}
	return Unresolved
}

// resolveUpvalue implements spec.md §4.D primitive 2: capture flattening.
// It walks the frame chain outward, and for every intermediate frame it
// crosses it records an upvalue descriptor, so a closure nested arbitrarily
// deep can still reach an ancestor's local.
func (p *Parser) resolveUpvalue(frame *Frame, name token.Token) int {
	enclosing := frame.Enclosing
	if enclosing == nil {
		return Unresolved
	}

	if slot := p.resolveLocal(enclosing, name, false); slot != Unresolved {
		enclosing.Locals[slot].IsCaptured = true
		idx, err := addUpvalue(frame, uint8(slot), true, enclosing.Locals[slot].Constant)
		if err != nil {
			p.error(err.Error())
			return Unresolved
		}
		return idx
	}

	if parentUp := p.resolveUpvalue(enclosing, name); parentUp != Unresolved {
		idx, err := addUpvalue(frame, uint8(parentUp), false, enclosing.Upvalues[parentUp].Constant)
		if err != nil {
			p.error(err.Error())
			return Unresolved
		}
		return idx
	}

	return Unresolved
}

// declareVariable registers name as a new local in the current scope,
// rejecting redeclaration at the same or a deeper scope depth. At scope
// depth 0 it's a no-op: top-level bindings live in the module globals
// table, not in a Locals array.
func (p *Parser) declareVariable(name token.Token, constant bool) {
	if p.frame.ScopeDepth == 0 {
		return
	}
	for i := len(p.frame.Locals) - 1; i >= 0; i-- {
		local := p.frame.Locals[i]
		if local.initialized() && local.Depth < p.frame.ScopeDepth {
			break // Shadowing a variable from an enclosing scope is fine.
		}
		if local.Name.Eq(name) {
			p.error("already a variable named '" + name.Lexeme + "' in this scope")
		}
	}
	if err := p.frame.addLocal(name, constant); err != nil {
		p.error(err.Error())
	}
}

// parseVariable consumes an identifier, declares it, and — for module
// globals only — returns its name constant index for a subsequent
// OP_DEFINE_MODULE. Locals return isGlobal=false: they're defined in place on the
// stack, not addressed by name.
func (p *Parser) parseVariable(errMsg string, constant bool) (nameConst byte, isGlobal bool) {
	p.consume(token.IDENTIFIER, errMsg)
	name := p.previous
	p.declareVariable(name, constant)
	if p.frame.ScopeDepth > 0 {
		return 0, false
	}
	return p.identifierConstant(name.Lexeme), true
}

// defineVariable completes a declaration: locals are simply marked
// initialized (they already live on the stack where their initializer left
// them); module globals emit OP_DEFINE_MODULE and, if declared const,
// register the name in the VM-wide constants table.
func (p *Parser) defineVariable(nameConst byte, isGlobal bool, constant bool, name string) {
	if !isGlobal {
		p.frame.markInitialized()
		return
	}
	if constant {
		p.vm.MarkConstant(p.module, name)
	}
	p.emitOpByte(bytecode.OP_DEFINE_MODULE, nameConst)
}
