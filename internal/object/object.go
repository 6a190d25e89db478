// Package object defines the heap object kinds the compiler can ask the
// collaborator (internal/vm) to allocate: interned strings and function
// objects. Ownership of every object here belongs to the collaborator GC;
// the compiler only holds handles to them.
package object

import (
	"fmt"

	"github.com/google/uuid"
	"lumen/internal/bytecode"
)

// String is an interned string object. Interning is idempotent: asking the
// collaborator to intern the same bytes twice returns the same handle. (The
// compiler's string-constant cache is keyed by the name text itself.)
type String struct {
	Value string
}

func (s *String) ObjectKind() string { return "string" }

// AccessLevel distinguishes public members from private ones declared with
// a leading underscore convention in source. The compiler records it on each
// Function it creates; it does not check it when compiling property access.
type AccessLevel uint8

const (
	Public AccessLevel = iota
	Private
)

// FunctionKind distinguishes the different shapes a compiled Function can
// take; it's needed because methods reserve local slot 0 for "this" while
// plain functions and the top-level script do not name it.
type FunctionKind uint8

const (
	KindScript FunctionKind = iota
	KindFunction
	KindMethod
	KindInitializer
)

// Function is the component C "Function Object": it carries everything the
// driver fills in while compiling one function body, plus the Chunk (B) it
// owns. The collaborator allocates it at frame-init time; the driver
// mutates it during compilation; after endCompiler it is immutable.
type Function struct {
	Name           string
	Kind           FunctionKind
	Arity          int
	ArityOptional  int
	IsVariadic     bool
	UpvalueCount   int
	Access         AccessLevel
	Module         *Module
	Chunk          *bytecode.Chunk
	PropertyCount  int      // number of `var`-prefixed init() params
	PropertyNames  []string // their names, in declaration order
}

func (f *Function) ObjectKind() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}

// NewFunction allocates a fresh Function object for the given module and
// kind. This is the concrete counterpart to the collaborator's
// `newFunction(module, type, accessLevel)` entry point in spec.md §6.
func NewFunction(module *Module, kind FunctionKind, access AccessLevel) *Function {
	return &Function{
		Kind:    kind,
		Access:  access,
		Module:  module,
		Chunk:   bytecode.NewChunk(),
	}
}

// Class is the runtime counterpart of a `class` declaration: its methods
// and the (possibly nil) superclass it inherits from. The compiler never
// instantiates these directly — it only emits the opcodes that cause the
// VM to build one — and Function values hold no reference to a Class.
type Class struct {
	Name          string
	HasSuperclass bool
}

func (c *Class) ObjectKind() string { return fmt.Sprintf("<class %s>", c.Name) }

// Module identifies one compiled source unit. Every NewModule call assigns a
// fresh UUID, so repeated compiles of modules sharing a file name carry
// distinct IDs; rendered diagnostics show the module Name, not the ID.
type Module struct {
	Name string
	Path string
	ID   uuid.UUID
}

// NewModule creates a Module handle with a fresh compile-session id.
func NewModule(name, path string) *Module {
	return &Module{Name: name, Path: path, ID: uuid.New()}
}
