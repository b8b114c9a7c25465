package parser

import (
	"errors"
	"fmt"

	"github.com/sergev/pivot/ast"
)

// Error represents a parser error with optional metadata.
type Error struct {
	Pos        ast.Position
	Msg        string
	Incomplete bool
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func newError(pos ast.Position, format string, args ...interface{}) error {
	return &Error{
		Pos: pos,
		Msg: fmt.Sprintf(format, args...),
	}
}

func newIncompleteError(pos ast.Position, format string, args ...interface{}) error {
	return &Error{
		Pos:        pos,
		Msg:        fmt.Sprintf(format, args...),
		Incomplete: true,
	}
}

// IsIncomplete reports whether the supplied error represents incomplete input.
func IsIncomplete(err error) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Incomplete
	}
	return false
}
