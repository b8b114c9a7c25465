package lexer

import (
	"strings"
	"unicode/utf8"
)

// unit is one source character after escape combining. An escaped unit
// holds the character that followed the backslash.
type unit struct {
	r       rune
	escaped bool
	loc     Location
}

type charClass int

const (
	classUnrecognized charClass = iota
	classLetter
	classDigit
	classOperator
	classLeftDelimiter
	classRightDelimiter
	classQuote
	classWhitespace
)

// Tokenize converts Pivot source text into a flat sequence of tokens.
func Tokenize(src string) ([]Token, error) {
	units, err := combineEscapes(src)
	if err != nil {
		return nil, err
	}
	units, err = stripComments(units)
	if err != nil {
		return nil, err
	}
	lx := &lexer{}
	if err := lx.run(units); err != nil {
		return nil, err
	}
	tokens := lx.tokens
	promoteKeywords(tokens)
	markPrefixOperators(tokens)
	for i := range tokens {
		tokens[i].Position = i
	}
	return tokens, nil
}

// combineEscapes decodes the source into units, folding each backslash and
// the character after it into a single escaped unit.
func combineEscapes(src string) ([]unit, error) {
	units := make([]unit, 0, len(src))
	loc := Location{Line: 1, Column: 1}
	advance := func(r rune, w int) {
		loc.Offset += w
		if r == '\n' {
			loc.Line++
			loc.Column = 1
		} else {
			loc.Column++
		}
	}
	for loc.Offset < len(src) {
		start := loc
		r, w := utf8.DecodeRuneInString(src[loc.Offset:])
		if r == utf8.RuneError && w == 1 {
			return nil, newLexError(start, "invalid UTF-8 encoding at byte %d", start.Offset)
		}
		advance(r, w)
		if r != '\\' {
			units = append(units, unit{r: r, loc: start})
			continue
		}
		if loc.Offset >= len(src) {
			return nil, newIncompleteError(start, "unterminated escape sequence")
		}
		next, nw := utf8.DecodeRuneInString(src[loc.Offset:])
		if next == utf8.RuneError && nw == 1 {
			return nil, newLexError(loc, "invalid UTF-8 encoding at byte %d", loc.Offset)
		}
		advance(next, nw)
		units = append(units, unit{r: next, escaped: true, loc: start})
	}
	return units, nil
}

// stripComments removes line and block comments outside string literals.
// Newlines ending line comments are kept.
func stripComments(units []unit) ([]unit, error) {
	out := make([]unit, 0, len(units))
	var quote rune
	for i := 0; i < len(units); i++ {
		u := units[i]
		if quote != 0 {
			if !u.escaped && u.r == quote {
				quote = 0
			}
			out = append(out, u)
			continue
		}
		if !u.escaped && isQuote(u.r) {
			quote = u.r
			out = append(out, u)
			continue
		}
		if u.escaped || u.r != '/' || i+1 >= len(units) || units[i+1].escaped {
			out = append(out, u)
			continue
		}
		switch units[i+1].r {
		case '/':
			for i < len(units) && (units[i].escaped || units[i].r != '\n') {
				i++
			}
			if i < len(units) {
				out = append(out, units[i])
			}
		case '*':
			closed := false
			for i += 2; i+1 < len(units); i++ {
				if !units[i].escaped && units[i].r == '*' && !units[i+1].escaped && units[i+1].r == '/' {
					i++
					closed = true
					break
				}
			}
			if !closed {
				return nil, newIncompleteError(u.loc, "unterminated block comment")
			}
		default:
			out = append(out, u)
		}
	}
	return out, nil
}

type lexer struct {
	tokens []Token

	letters   []unit
	digits    []unit
	operators []unit

	inString bool
	quote    rune
	strStart Location
	str      strings.Builder
	strEmpty bool
}

func (lx *lexer) run(units []unit) error {
	for _, u := range units {
		if lx.inString {
			if !u.escaped && u.r == lx.quote {
				lx.closeString()
				continue
			}
			lx.str.WriteRune(decodeEscape(u))
			lx.strEmpty = false
			continue
		}

		switch classify(u) {
		case classLetter:
			lx.flushDigits()
			if err := lx.flushOperators(); err != nil {
				return err
			}
			lx.letters = append(lx.letters, u)
		case classDigit:
			if len(lx.letters) > 0 {
				lx.letters = append(lx.letters, u)
				continue
			}
			if err := lx.flushOperators(); err != nil {
				return err
			}
			lx.digits = append(lx.digits, u)
		case classOperator:
			if u.r == '.' && len(lx.digits) > 0 && !containsDot(lx.digits) {
				lx.digits = append(lx.digits, u)
				continue
			}
			lx.flushLetters()
			lx.flushDigits()
			lx.operators = append(lx.operators, u)
		case classLeftDelimiter, classRightDelimiter:
			if err := lx.flushAll(); err != nil {
				return err
			}
			lx.tokens = append(lx.tokens, delimiterToken(u))
		case classQuote:
			if err := lx.flushAll(); err != nil {
				return err
			}
			lx.inString = true
			lx.quote = u.r
			lx.strStart = u.loc
			lx.str.Reset()
			lx.strEmpty = true
		case classWhitespace:
			if err := lx.flushAll(); err != nil {
				return err
			}
		default:
			if u.escaped {
				return newLexError(u.loc, "unexpected escape sequence \\%c outside string literal", u.r)
			}
			return newLexError(u.loc, "unexpected character %q", u.r)
		}
	}
	if lx.inString {
		return newIncompleteError(lx.strStart, "unterminated string literal")
	}
	return lx.flushAll()
}

func (lx *lexer) closeString() {
	lx.tokens = append(lx.tokens, Token{
		Kind:  String,
		Value: lx.str.String(),
		Null:  lx.strEmpty,
		Loc:   lx.strStart,
	})
	lx.inString = false
	lx.quote = 0
	lx.str.Reset()
}

func (lx *lexer) flushAll() error {
	lx.flushLetters()
	lx.flushDigits()
	return lx.flushOperators()
}

func (lx *lexer) flushLetters() {
	if len(lx.letters) == 0 {
		return
	}
	lx.tokens = append(lx.tokens, Token{
		Kind:    Name,
		Subkind: Variable,
		Value:   unitsText(lx.letters),
		Loc:     lx.letters[0].loc,
	})
	lx.letters = lx.letters[:0]
}

func (lx *lexer) flushDigits() {
	if len(lx.digits) == 0 {
		return
	}
	lx.tokens = append(lx.tokens, Token{
		Kind:  Number,
		Value: unitsText(lx.digits),
		Loc:   lx.digits[0].loc,
	})
	lx.digits = lx.digits[:0]
}

// flushOperators splits the buffered operator run into operators by greedy
// longest match against the operator table.
func (lx *lexer) flushOperators() error {
	buf := lx.operators
	for i := 0; i < len(buf); {
		rest := unitsText(buf[i:])
		matched := ""
		for _, op := range operators {
			if strings.HasPrefix(rest, op) {
				matched = op
				break
			}
		}
		if matched == "" {
			return newLexError(buf[i].loc, "unknown operator %q", rest)
		}
		lx.tokens = append(lx.tokens, Token{
			Kind:    Operator,
			Subkind: operatorSubkind(matched),
			Value:   matched,
			Loc:     buf[i].loc,
		})
		i += utf8.RuneCountInString(matched)
	}
	lx.operators = lx.operators[:0]
	return nil
}

// promoteKeywords turns reserved names into keywords.
func promoteKeywords(tokens []Token) {
	for i := range tokens {
		if tokens[i].Kind == Name && IsKeyword(tokens[i].Value) {
			tokens[i].Subkind = Keyword
		}
	}
}

// markPrefixOperators tags every sign or step operator that does not follow
// a completed operand as a prefix operator.
func markPrefixOperators(tokens []Token) {
	for i := range tokens {
		tok := &tokens[i]
		if tok.Kind != Operator {
			continue
		}
		switch tok.Value {
		case "-", "+", "++", "--":
		default:
			continue
		}
		if i == 0 || !tokens[i-1].IsOperand() {
			tok.Subkind = Prefix
		}
	}
}

func classify(u unit) charClass {
	if u.escaped {
		return classUnrecognized
	}
	r := u.r
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		return classLetter
	case r >= '0' && r <= '9':
		return classDigit
	case strings.ContainsRune("+-*/%=<>!&|^.,;?:", r):
		return classOperator
	case r == '(' || r == '[' || r == '{':
		return classLeftDelimiter
	case r == ')' || r == ']' || r == '}':
		return classRightDelimiter
	case isQuote(r):
		return classQuote
	case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v':
		return classWhitespace
	default:
		return classUnrecognized
	}
}

func isQuote(r rune) bool {
	return r == '\'' || r == '"' || r == '`'
}

func decodeEscape(u unit) rune {
	if !u.escaped {
		return u.r
	}
	switch u.r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return u.r
	}
}

func delimiterToken(u unit) Token {
	tok := Token{Kind: Delimiter, Loc: u.loc}
	switch u.r {
	case '(', ')':
		tok.Family = Parenthesis
	case '[', ']':
		tok.Family = Bracket
	default:
		tok.Family = Brace
	}
	if classify(u) == classLeftDelimiter {
		tok.Subkind = Left
		tok.Value = tok.Family.Open()
	} else {
		tok.Subkind = Right
		tok.Value = tok.Family.Close()
	}
	return tok
}

func unitsText(units []unit) string {
	var b strings.Builder
	for _, u := range units {
		b.WriteRune(u.r)
	}
	return b.String()
}

func containsDot(units []unit) bool {
	for _, u := range units {
		if u.r == '.' {
			return true
		}
	}
	return false
}
