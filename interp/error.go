package interp

import (
	"errors"
	"fmt"

	"github.com/sergev/pivot/ast"
)

// RuntimeError reports a failure while evaluating a program.
type RuntimeError struct {
	Pos ast.Position
	Msg string
}

func (e *RuntimeError) Error() string {
	if e.Pos.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func runtimeErrorf(pos ast.Position, format string, args ...interface{}) error {
	return &RuntimeError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// returnSignal unwinds the Go stack from a return statement to the
// innermost function call.
type returnSignal struct {
	value Value
}

func (*returnSignal) Error() string { return "return outside of function" }

func asReturn(err error) (*returnSignal, bool) {
	var ret *returnSignal
	if errors.As(err, &ret) {
		return ret, true
	}
	return nil, false
}
