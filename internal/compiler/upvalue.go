package compiler

import "golang.org/x/exp/slices"

// Upvalue is a per-function descriptor of one captured variable. Index
// refers either to a slot in the immediately enclosing frame's locals
// (IsLocal true) or to an upvalue slot of that enclosing frame (IsLocal
// false) — this is what lets capture flatten through intermediate frames.
type Upvalue struct {
	Index    uint8
	IsLocal  bool
	Constant bool
}

// addUpvalue records (or finds) an upvalue descriptor on frame, deduping by
// the (index, isLocal) pair so a variable captured through two different
// paths in the same function still gets a single slot.
func addUpvalue(frame *Frame, index uint8, isLocal bool, constant bool) (int, error) {
	if i := slices.IndexFunc(frame.Upvalues, func(u Upvalue) bool {
		return u.Index == index && u.IsLocal == isLocal
	}); i != Unresolved {
		return i, nil
	}
	if len(frame.Upvalues) >= MaxUpvalues {
		return 0, errTooManyUpvalues
	}
	frame.Upvalues = append(frame.Upvalues, Upvalue{Index: index, IsLocal: isLocal, Constant: constant})
	frame.Function.UpvalueCount = len(frame.Upvalues)
	return len(frame.Upvalues) - 1, nil
}
