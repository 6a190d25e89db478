package compiler

import (
	"lumen/internal/object"
	"lumen/internal/token"
)

// Frame is one CompilerFrame: the active compilation unit for one function.
// Frames chain through Enclosing to form the nested-closure stack; they are
// never cyclic, and each frame exclusively owns its Locals and Upvalues.
type Frame struct {
	Function  *object.Function
	Enclosing *Frame

	Locals     []Local
	ScopeDepth int

	Upvalues []Upvalue

	Loop  *LoopRecord
	Class *ClassRecord

	// stringConstants caches name -> constant-pool index for this frame's
	// chunk, so repeated references to the same identifier (a global name,
	// a property name) share one pool entry.
	stringConstants map[string]byte
}

// newFrame creates a child frame for compiling one function body. Local
// slot 0 is always reserved: named "this" for methods/initializers (so it
// can be resolved by name inside the body) and left unnamed for plain
// functions and the top-level script (so it exists on the stack but can
// never be referenced).
func newFrame(enclosing *Frame, fn *object.Function) *Frame {
	slotZeroName := ""
	if fn.Kind == object.KindMethod || fn.Kind == object.KindInitializer {
		slotZeroName = "this"
	}
	return &Frame{
		Function:        fn,
		Enclosing:       enclosing,
		Locals:          []Local{{Name: token.Token{Lexeme: slotZeroName}, Depth: 0}},
		stringConstants: make(map[string]byte),
	}
}

// addLocal appends a new local, declared but not yet initialized
// (Depth == uninitializedDepth), enforcing the per-frame capacity.
func (f *Frame) addLocal(name token.Token, constant bool) error {
	if len(f.Locals) >= MaxLocals {
		return errTooManyLocals
	}
	f.Locals = append(f.Locals, Local{Name: name, Depth: uninitializedDepth, Constant: constant})
	return nil
}

// markInitialized sets the most recently added local's depth to the
// current scope depth, completing its declaration. At scope depth 0 this is
// a no-op: top-level bindings are module globals, not locals.
func (f *Frame) markInitialized() {
	if f.ScopeDepth == 0 {
		return
	}
	f.Locals[len(f.Locals)-1].Depth = f.ScopeDepth
}

// internConstant returns the cached constant-pool index for name, or grows
// the pool and caches it. This is the "per-chunk string-to-constant-index
// cache" of spec.md §3/§4.B.
func (f *Frame) internConstant(name string, add func() (byte, error)) (byte, error) {
	if idx, ok := f.stringConstants[name]; ok {
		return idx, nil
	}
	idx, err := add()
	if err != nil {
		return 0, err
	}
	f.stringConstants[name] = idx
	return idx, nil
}
