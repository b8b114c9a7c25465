// Package parser implements the Pivot grammar with generic parser
// combinators over a participle token stream.
package parser

import (
	"errors"
	"io"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/sergev/pivot/ast"
)

var program = buildGrammar()

// Parse translates Pivot source text into a block of top-level statements.
func Parse(src string) (*ast.Block, error) {
	tokens, err := tokenize(src)
	if err != nil {
		var lerr *lexer.Error
		if errors.As(err, &lerr) {
			return nil, newError(position(lerr.Pos), "%s", lerr.Msg)
		}
		return nil, err
	}
	return Run(program, tokens)
}

// ParseReader consumes Pivot source from an io.Reader.
func ParseReader(r io.Reader) (*ast.Block, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}
