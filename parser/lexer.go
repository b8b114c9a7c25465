package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// pivotLexer splits source into terminals. Rules are tried in order, so the
// terminated forms of comments and strings win over their open forms.
var pivotLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n\f\v]+`},
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "OpenComment", Pattern: `/\*(?s:.*)`},
	{Name: "Number", Pattern: `[0-9]+(?:\.[0-9]*)?`},
	{Name: "String", Pattern: `'(?:\\(?s:.)|[^'\\])*'|"(?:\\(?s:.)|[^"\\])*"|` + "`(?:\\\\(?s:.)|[^`\\\\])*`"},
	{Name: "OpenString", Pattern: `['"` + "`" + `](?s:.*)`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Operator", Pattern: `\*\*|\+\+|--|==|!=|<=|>=|&&|\|\||[-+*/%]=|[-+*/%=<>!]`},
	{Name: "Punct", Pattern: `[(){}\[\],;.]`},
})

var (
	symbols         = pivotLexer.Symbols()
	whitespaceToken = symbols["Whitespace"]
	commentToken    = symbols["Comment"]
	openComment     = symbols["OpenComment"]
	numberToken     = symbols["Number"]
	stringToken     = symbols["String"]
	openString      = symbols["OpenString"]
	identToken      = symbols["Ident"]
	operatorToken   = symbols["Operator"]
	punctToken      = symbols["Punct"]
)

var reserved = map[string]bool{
	"let":      true,
	"var":      true,
	"return":   true,
	"if":       true,
	"else":     true,
	"while":    true,
	"function": true,
}

// tokenize lexes src and drops whitespace and comments.
func tokenize(src string) ([]lexer.Token, error) {
	lx, err := pivotLexer.LexString("", src)
	if err != nil {
		return nil, err
	}
	all, err := lexer.ConsumeAll(lx)
	if err != nil {
		return nil, err
	}
	tokens := all[:0]
	for _, tok := range all {
		switch tok.Type {
		case whitespaceToken, commentToken:
			continue
		case openComment:
			return nil, newIncompleteError(position(tok.Pos), "unterminated block comment")
		case openString:
			return nil, newIncompleteError(position(tok.Pos), "unterminated string literal")
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// unquote strips the quotes of a string literal and decodes its escapes.
func unquote(lit string) string {
	body := lit[1 : len(lit)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	var b strings.Builder
	escaped := false
	for _, r := range body {
		if !escaped {
			if r == '\\' {
				escaped = true
			} else {
				b.WriteRune(r)
			}
			continue
		}
		escaped = false
		switch r {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
