package vm

import (
	"lumen/internal/object"
	"lumen/internal/value"
)

// Collaborator is the narrow interface the compiler consumes from its
// external collaborators (the execution engine and the heap/GC), per
// spec.md §6. The compiler never reaches past this interface into VM
// internals.
type Collaborator interface {
	// InternString idempotently interns bytes, returning the same handle
	// for equal content across the whole compile.
	InternString(s string) *object.String

	// NewFunction allocates a Function object for a child frame.
	NewFunction(module *object.Module, kind object.FunctionKind, access object.AccessLevel) *object.Function

	// PushValue/PopValue are GC roots during allocation sequences: any
	// compile-time value that must survive a possible collection between
	// its creation and its insertion into the chunk is pushed here for the
	// duration.
	PushValue(v value.Value)
	PopValue() (value.Value, bool)

	// IsBuiltinGlobal decides, for a bare identifier with no lexical
	// binding, whether it names a VM-provided read-only global (true) or a
	// module-level global the compiler should address with
	// GET_MODULE/SET_MODULE (false).
	IsBuiltinGlobal(name string) bool

	// MarkConstant records that the module-level global `name` was
	// declared with `const`, and IsConstant reports it back so the
	// compiler can reject assignment to it.
	MarkConstant(module *object.Module, name string)
	IsConstant(module *object.Module, name string) bool
}
