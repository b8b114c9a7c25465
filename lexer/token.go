package lexer

import "fmt"

// Kind enumerates the lexical categories produced by Tokenize.
type Kind int

const (
	Name Kind = iota
	Number
	String
	Operator
	Delimiter
)

func (k Kind) String() string {
	switch k {
	case Name:
		return "name"
	case Number:
		return "number"
	case String:
		return "string"
	case Operator:
		return "operator"
	case Delimiter:
		return "delimiter"
	default:
		return "unknown"
	}
}

// Subkind refines a Kind. Names are variables or keywords, operators carry
// their associativity, delimiters their side.
type Subkind int

const (
	NoSubkind Subkind = iota

	// Names
	Variable
	Keyword

	// Operators
	Prefix
	Postfix
	Dual
	None

	// Delimiters
	Left
	Right
)

func (s Subkind) String() string {
	switch s {
	case NoSubkind:
		return "n/a"
	case Variable:
		return "variable"
	case Keyword:
		return "keyword"
	case Prefix:
		return "prefix"
	case Postfix:
		return "postfix"
	case Dual:
		return "dual"
	case None:
		return "none"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Family identifies the delimiter pair a delimiter token belongs to.
type Family int

const (
	NoFamily Family = iota
	Parenthesis
	Bracket
	Brace
)

func (f Family) String() string {
	switch f {
	case NoFamily:
		return "n/a"
	case Parenthesis:
		return "parenthesis"
	case Bracket:
		return "bracket"
	case Brace:
		return "brace"
	default:
		return "unknown"
	}
}

// Open returns the opening character of the family.
func (f Family) Open() string {
	switch f {
	case Parenthesis:
		return "("
	case Bracket:
		return "["
	case Brace:
		return "{"
	default:
		return ""
	}
}

// Close returns the closing character of the family.
func (f Family) Close() string {
	switch f {
	case Parenthesis:
		return ")"
	case Bracket:
		return "]"
	case Brace:
		return "}"
	default:
		return ""
	}
}

// Location tracks a source location within Pivot source text.
type Location struct {
	Offset int // zero-based byte offset
	Line   int // one-based line number
	Column int // one-based column number (rune count)
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Token is a single lexical unit produced by the lexer.
type Token struct {
	Kind    Kind
	Subkind Subkind
	Family  Family // delimiters only
	Value   string // identifier text, numeric text, string contents or operator symbol
	Null    bool   // set for the empty string literal

	Position int // index in the token sequence
	Level    int // nesting depth, assigned by the tree builder
	Loc      Location
}

func (t Token) String() string {
	switch t.Kind {
	case String:
		if t.Null {
			return "string(null)"
		}
		return fmt.Sprintf("string %q", t.Value)
	case Delimiter:
		if t.Subkind == Left {
			return t.Family.Open()
		}
		return t.Family.Close()
	default:
		return fmt.Sprintf("%s/%s %s", t.Kind, t.Subkind, t.Value)
	}
}

// IsOperand reports whether the token completes an operand, so that an
// operator following it is applied to it rather than to what comes next.
func (t Token) IsOperand() bool {
	switch t.Kind {
	case Name:
		return t.Subkind == Variable
	case Number, String:
		return true
	case Delimiter:
		return t.Subkind == Right
	case Operator:
		return t.Subkind == Postfix
	}
	return false
}

// SameLexeme reports whether two tokens carry the same lexeme, ignoring
// sequence position, nesting level and source location.
func (t Token) SameLexeme(other Token) bool {
	return t.Kind == other.Kind &&
		t.Subkind == other.Subkind &&
		t.Family == other.Family &&
		t.Value == other.Value &&
		t.Null == other.Null
}

var keywords = map[string]bool{
	"let":      true,
	"var":      true,
	"return":   true,
	"if":       true,
	"else":     true,
	"while":    true,
	"function": true,
}

// IsKeyword reports whether word is reserved.
func IsKeyword(word string) bool {
	return keywords[word]
}

// operators lists every operator symbol, longest first so that splitting an
// operator run is a greedy longest match.
var operators = []string{
	"**", "++", "--", "==", "!=", "<=", ">=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=",
	"+", "-", "*", "/", "%", "=", "<", ">", "!",
	"&", "|", "^", ".", ",", ";", "?", ":",
}

// operatorSubkind maps an operator symbol to its lexical associativity.
func operatorSubkind(op string) Subkind {
	switch op {
	case "++", "--":
		return Postfix
	case ";", ",":
		return None
	case "!":
		return Prefix
	default:
		return Dual
	}
}
