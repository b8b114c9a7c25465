// Package frontend selects between the two Pivot parsing strategies.
package frontend

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/sergev/pivot/ast"
	"github.com/sergev/pivot/parser"
	"github.com/sergev/pivot/tree"
)

// Strategy names a parsing implementation.
type Strategy int

const (
	// Combinator parses with the recursive-descent combinator grammar.
	Combinator Strategy = iota
	// Reducer groups delimiters, folds precedence passes and lowers the
	// result.
	Reducer
)

func (s Strategy) String() string {
	switch s {
	case Combinator:
		return "combinator"
	case Reducer:
		return "reducer"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a strategy name as used in configuration.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "combinator":
		return Combinator, nil
	case "reducer":
		return Reducer, nil
	default:
		return 0, fmt.Errorf("unknown parser strategy %q", name)
	}
}

// Parse turns src into a block of top-level statements.
func Parse(src string, s Strategy) (*ast.Block, error) {
	switch s {
	case Combinator:
		return parser.Parse(src)
	case Reducer:
		nodes, err := tree.Parse(src)
		if err != nil {
			return nil, err
		}
		return tree.Lower(nodes)
	default:
		return nil, fmt.Errorf("unknown parser strategy %d", int(s))
	}
}

// IsIncomplete reports whether err means more input could complete src.
func IsIncomplete(err error) bool {
	return parser.IsIncomplete(err) || tree.IsIncomplete(err)
}

// ReadFile loads a source file. A first line starting with #! is blanked;
// line numbers are unchanged.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if bytes.HasPrefix(data, []byte("#!")) {
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			return string(data[idx:]), nil
		}
		return "", nil
	}
	return string(data), nil
}
