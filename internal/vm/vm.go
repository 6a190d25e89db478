// Package vm provides the narrow collaborator surface the compiler talks
// to (spec.md §6): string interning, function allocation, GC-root push/pop,
// and the globals/constants tables used to disambiguate bare identifiers.
// The bytecode interpreter loop itself is out of scope for this repository.
package vm

import (
	"lumen/internal/object"
	"lumen/internal/value"
)

// VM is a minimal reference collaborator: enough state to let the compiler
// run end to end and be tested, without implementing execution.
type VM struct {
	strings map[string]*object.String
	stack   Stack

	// builtins are VM-provided read-only globals (e.g. standard-library
	// entry points) distinct from module-level globals.
	builtins map[string]bool

	// constants tracks, per module, which module-global names were
	// declared with `const`.
	constants map[*object.Module]map[string]bool
}

// New creates a VM pre-seeded with the builtin globals every Lumen module
// sees without an import.
func New(builtins ...string) *VM {
	v := &VM{
		strings:   make(map[string]*object.String),
		builtins:  make(map[string]bool, len(builtins)),
		constants: make(map[*object.Module]map[string]bool),
	}
	for _, name := range builtins {
		v.builtins[name] = true
	}
	return v
}

func (v *VM) InternString(s string) *object.String {
	if existing, ok := v.strings[s]; ok {
		return existing
	}
	obj := &object.String{Value: s}
	v.strings[s] = obj
	return obj
}

func (v *VM) NewFunction(module *object.Module, kind object.FunctionKind, access object.AccessLevel) *object.Function {
	return object.NewFunction(module, kind, access)
}

func (v *VM) PushValue(val value.Value) { v.stack.Push(val) }
func (v *VM) PopValue() (value.Value, bool) {
	return v.stack.Pop()
}

func (v *VM) IsBuiltinGlobal(name string) bool { return v.builtins[name] }

func (v *VM) MarkConstant(module *object.Module, name string) {
	set, ok := v.constants[module]
	if !ok {
		set = make(map[string]bool)
		v.constants[module] = set
	}
	set[name] = true
}

func (v *VM) IsConstant(module *object.Module, name string) bool {
	return v.constants[module][name]
}
