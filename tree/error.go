package tree

import (
	"errors"
	"fmt"

	"github.com/sergev/pivot/lexer"
)

// UnbalancedDelimiterError reports delimiters that do not pair up.
type UnbalancedDelimiterError struct {
	Msg   string
	Loc   lexer.Location
	Open  int // opening delimiters seen
	Close int // closing delimiters seen

	unclosed bool
}

func (e *UnbalancedDelimiterError) Error() string {
	return fmt.Sprintf("%s: unbalanced delimiters: %s", e.Loc, e.Msg)
}

// Incomplete reports whether appending closing delimiters could fix the
// input.
func (e *UnbalancedDelimiterError) Incomplete() bool {
	return e.unclosed
}

// SyntaxError reports a construct whose operand is missing or malformed.
type SyntaxError struct {
	Construct Category
	Symbol    string
	Msg       string
	Loc       lexer.Location
}

func (e *SyntaxError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("%s: syntax error in %s: %s", e.Loc, e.Construct, e.Msg)
	}
	return fmt.Sprintf("%s: syntax error in %s %q: %s", e.Loc, e.Construct, e.Symbol, e.Msg)
}

func syntaxErrorf(c Category, sym string, loc lexer.Location, format string, args ...interface{}) error {
	return &SyntaxError{
		Construct: c,
		Symbol:    sym,
		Msg:       fmt.Sprintf(format, args...),
		Loc:       loc,
	}
}

// IsIncomplete reports whether err was caused by the input ending early.
func IsIncomplete(err error) bool {
	if lexer.IsIncomplete(err) {
		return true
	}
	var uerr *UnbalancedDelimiterError
	if errors.As(err, &uerr) {
		return uerr.Incomplete()
	}
	return false
}
