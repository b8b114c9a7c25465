package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// state is shared by every Source of one parse. It remembers the furthest
// position any terminal failed at, for error reporting.
type state struct {
	tokens   []lexer.Token // ends with EOF
	furthest int
	expected []string
}

// Source is an immutable cursor into the token stream. Parsers return a new
// Source instead of advancing a shared one, so alternatives backtrack for
// free.
type Source struct {
	st  *state
	pos int
}

func (s Source) peek() lexer.Token {
	return s.st.tokens[s.pos]
}

func (s Source) next() Source {
	if s.peek().EOF() {
		return s
	}
	return Source{st: s.st, pos: s.pos + 1}
}

func (s Source) fail(what string) {
	st := s.st
	switch {
	case s.pos > st.furthest:
		st.furthest = s.pos
		st.expected = []string{what}
	case s.pos == st.furthest:
		for _, e := range st.expected {
			if e == what {
				return
			}
		}
		st.expected = append(st.expected, what)
	}
}

// Parser consumes a prefix of the source. On failure the returned Source
// is the one passed in.
type Parser[T any] func(Source) (T, Source, bool)

// Constant succeeds without consuming input.
func Constant[T any](v T) Parser[T] {
	return func(s Source) (T, Source, bool) {
		return v, s, true
	}
}

// Fail never succeeds. what describes the expected input.
func Fail[T any](what string) Parser[T] {
	return func(s Source) (T, Source, bool) {
		s.fail(what)
		var zero T
		return zero, s, false
	}
}

// Token matches one terminal of the given type.
func Token(typ lexer.TokenType, what string) Parser[lexer.Token] {
	return func(s Source) (lexer.Token, Source, bool) {
		tok := s.peek()
		if tok.Type != typ {
			s.fail(what)
			return lexer.Token{}, s, false
		}
		return tok, s.next(), true
	}
}

// Punct matches an operator or punctuation terminal spelled text.
func Punct(text string) Parser[lexer.Token] {
	return func(s Source) (lexer.Token, Source, bool) {
		tok := s.peek()
		if (tok.Type != operatorToken && tok.Type != punctToken) || tok.Value != text {
			s.fail("'" + text + "'")
			return lexer.Token{}, s, false
		}
		return tok, s.next(), true
	}
}

// Keyword matches the reserved word.
func Keyword(word string) Parser[lexer.Token] {
	return func(s Source) (lexer.Token, Source, bool) {
		tok := s.peek()
		if tok.Type != identToken || tok.Value != word {
			s.fail(word)
			return lexer.Token{}, s, false
		}
		return tok, s.next(), true
	}
}

// EOF matches the end of input without consuming it.
func EOF() Parser[lexer.Token] {
	return func(s Source) (lexer.Token, Source, bool) {
		tok := s.peek()
		if !tok.EOF() {
			s.fail("end of input")
			return lexer.Token{}, s, false
		}
		return tok, s, true
	}
}

// Bind runs p, then the parser f builds from its result.
func Bind[A, B any](p Parser[A], f func(A) Parser[B]) Parser[B] {
	return func(s Source) (B, Source, bool) {
		a, rest, ok := p(s)
		if !ok {
			var zero B
			return zero, s, false
		}
		b, rest, ok := f(a)(rest)
		if !ok {
			var zero B
			return zero, s, false
		}
		return b, rest, true
	}
}

// And runs p then q and keeps the result of q.
func And[A, B any](p Parser[A], q Parser[B]) Parser[B] {
	return Bind(p, func(A) Parser[B] { return q })
}

// Map transforms the result of p.
func Map[A, B any](p Parser[A], f func(A) B) Parser[B] {
	return func(s Source) (B, Source, bool) {
		a, rest, ok := p(s)
		if !ok {
			var zero B
			return zero, s, false
		}
		return f(a), rest, true
	}
}

// Or returns the result of the first alternative that succeeds.
func Or[T any](alternatives ...Parser[T]) Parser[T] {
	return func(s Source) (T, Source, bool) {
		for _, p := range alternatives {
			if v, rest, ok := p(s); ok {
				return v, rest, true
			}
		}
		var zero T
		return zero, s, false
	}
}

// ZeroOrMore applies p until it fails or stops consuming input.
func ZeroOrMore[T any](p Parser[T]) Parser[[]T] {
	return func(s Source) ([]T, Source, bool) {
		var items []T
		for {
			v, rest, ok := p(s)
			if !ok || rest.pos == s.pos {
				return items, s, true
			}
			items = append(items, v)
			s = rest
		}
	}
}

// Optional applies p, yielding the zero value of T when p fails.
func Optional[T any](p Parser[T]) Parser[T] {
	var zero T
	return Or(p, Constant(zero))
}

// Rule is a named forward reference, so that recursive grammar rules can
// be used before they are defined.
type Rule[T any] struct {
	name string
	p    Parser[T]
}

func NewRule[T any](name string) *Rule[T] {
	return &Rule[T]{name: name}
}

// Define resolves the rule. It panics when called twice.
func (r *Rule[T]) Define(p Parser[T]) {
	if r.p != nil {
		panic("parser: rule " + r.name + " defined twice")
	}
	r.p = p
}

// Parser returns a parser that defers to the definition. Using it before
// Define fails the parse instead of panicking.
func (r *Rule[T]) Parser() Parser[T] {
	return func(s Source) (T, Source, bool) {
		if r.p == nil {
			s.fail(r.name + " (undefined rule)")
			var zero T
			return zero, s, false
		}
		return r.p(s)
	}
}

// Run applies p to tokens and requires it to consume all input.
func Run[T any](p Parser[T], tokens []lexer.Token) (T, error) {
	st := &state{tokens: tokens}
	v, _, ok := Bind(p, func(v T) Parser[T] {
		return Map(EOF(), func(lexer.Token) T { return v })
	})(Source{st: st})
	if ok {
		return v, nil
	}
	var zero T
	return zero, st.err()
}

func (st *state) err() error {
	tok := st.tokens[st.furthest]
	msg := "expected " + strings.Join(st.expected, ", ")
	if tok.EOF() {
		return newIncompleteError(position(tok.Pos), "%s, found end of input", msg)
	}
	return newError(position(tok.Pos), "%s, found %q", msg, tok.Value)
}
