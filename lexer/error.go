package lexer

import (
	"errors"
	"fmt"
)

// LexError reports an unrecognized character or an unterminated literal.
type LexError struct {
	Msg        string
	Loc        Location
	Incomplete bool // more input could complete the source
}

func (e *LexError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Loc, e.Msg)
}

func newLexError(loc Location, format string, args ...interface{}) error {
	return &LexError{
		Msg: fmt.Sprintf(format, args...),
		Loc: loc,
	}
}

func newIncompleteError(loc Location, format string, args ...interface{}) error {
	return &LexError{
		Msg:        fmt.Sprintf(format, args...),
		Loc:        loc,
		Incomplete: true,
	}
}

// IsIncomplete reports whether err is a LexError caused by input ending early.
func IsIncomplete(err error) bool {
	var lerr *LexError
	if errors.As(err, &lerr) {
		return lerr.Incomplete
	}
	return false
}
