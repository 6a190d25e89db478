// Package value defines the runtime Value representation the compiler
// constructs for constant-pool entries. The VM (out of scope for this
// component) interprets these at run time; the compiler only ever builds
// and compares them.
package value

import "fmt"

// Kind tags a Value's active representation.
type Kind uint8

const (
	Nil Kind = iota
	Bool
	Number
	Obj
)

// Handle is any heap-allocated object the collaborator GC owns: interned
// strings, function objects. The compiler treats it opaquely.
type Handle interface {
	// ObjectKind is used by Value.String (and so by disassembly); it never
	// drives control flow inside the compiler itself.
	ObjectKind() string
}

// Value is a small tagged union. Nil needs no payload; Bool carries B;
// Number carries the float64 directly so arithmetic constant folding never
// boxes; Obj carries a heap handle owned by the collaborator.
type Value struct {
	Kind Kind
	Num  float64
	B    bool
	Obj  Handle
}

func NilValue() Value          { return Value{Kind: Nil} }
func BoolValue(b bool) Value   { return Value{Kind: Bool, B: b} }
func NumberValue(n float64) Value { return Value{Kind: Number, Num: n} }
func ObjValue(h Handle) Value  { return Value{Kind: Obj, Obj: h} }

func (v Value) IsNil() bool    { return v.Kind == Nil }
func (v Value) IsNumber() bool { return v.Kind == Number }
func (v Value) IsBool() bool   { return v.Kind == Bool }
func (v Value) IsObj() bool    { return v.Kind == Obj }

// Equal reports whether v and o have the same kind and payload; objects
// compare by handle identity. The compiler does not call it: the constant
// pool does not deduplicate literal values (only the string-constant cache
// dedupes, by name).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Nil:
		return true
	case Bool:
		return v.B == o.B
	case Number:
		return v.Num == o.Num
	case Obj:
		return v.Obj == o.Obj
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case Nil:
		return "nil"
	case Bool:
		if v.B {
			return "true"
		}
		return "false"
	case Number:
		return fmt.Sprintf("%g", v.Num)
	case Obj:
		return v.Obj.ObjectKind()
	default:
		return "<invalid value>"
	}
}
