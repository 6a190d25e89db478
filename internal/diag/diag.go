// Package diag renders compiler diagnostics for a terminal, separating the
// "what went wrong" (a *multierror.Error of compiler.CompileError values)
// from how it's displayed.
package diag

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
)

// Render writes one line per error in err to w, in the order they occurred.
// A nil err renders nothing. Non-multierror errors are rendered as a single
// line, so Render is safe to call on any error compile returns.
func Render(w io.Writer, err error) {
	if err == nil {
		return
	}
	merr, ok := err.(*multierror.Error)
	if !ok {
		fmt.Fprintln(w, err.Error())
		return
	}
	for _, e := range merr.Errors {
		fmt.Fprintln(w, e.Error())
	}
}

// Count reports how many individual diagnostics err carries.
func Count(err error) int {
	if err == nil {
		return 0
	}
	if merr, ok := err.(*multierror.Error); ok {
		return len(merr.Errors)
	}
	return 1
}
