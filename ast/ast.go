package ast

import "fmt"

// Position tracks a source location within Pivot source text.
type Position struct {
	Offset int // zero-based byte offset
	Line   int // one-based line number
	Column int // one-based column number (rune count)
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is implemented by every AST variant. The set is closed: only types in
// this package satisfy it.
type Node interface {
	Pos() Position
	Equal(other Node) bool
	Emit(e Emitter) error
	node()
}

// Number is a numeric literal.
type Number struct {
	Value float64
	Posn  Position
}

// Str is a string literal.
type Str struct {
	Value string
	Posn  Position
}

// Ident refers to a variable or function name.
type Ident struct {
	Name string
	Posn Position
}

// UnaryOp enumerates prefix operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNegate
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "!"
	case OpNegate:
		return "-"
	default:
		return "?"
	}
}

// Unary applies a prefix operator.
type Unary struct {
	Op      UnaryOp
	Operand Node
	Posn    Position
}

// BinaryOp enumerates infix operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpPower
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAnd
	OpOr
)

var binarySymbols = [...]string{
	OpAdd:          "+",
	OpSubtract:     "-",
	OpMultiply:     "*",
	OpDivide:       "/",
	OpModulo:       "%",
	OpPower:        "**",
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpAnd:          "&&",
	OpOr:           "||",
}

func (op BinaryOp) String() string {
	if op < 0 || int(op) >= len(binarySymbols) {
		return "?"
	}
	return binarySymbols[op]
}

// BinaryOpFromSymbol maps an operator symbol to its BinaryOp.
func BinaryOpFromSymbol(sym string) (BinaryOp, bool) {
	for op, s := range binarySymbols {
		if s == sym {
			return BinaryOp(op), true
		}
	}
	return 0, false
}

// Binary applies an infix operator.
type Binary struct {
	Op          BinaryOp
	Left, Right Node
	Posn        Position
}

// Call invokes a named function.
type Call struct {
	Callee string
	Args   []Node
	Posn   Position
}

// Return exits the enclosing function. Result may be nil.
type Return struct {
	Result Node
	Posn   Position
}

// Block is an ordered statement list.
type Block struct {
	Stmts []Node
	Posn  Position
}

// If is a conditional. Else may be nil.
type If struct {
	Cond Node
	Then Node
	Else Node
	Posn Position
}

// While repeats Body as long as Cond holds.
type While struct {
	Cond Node
	Body Node
	Posn Position
}

// VarDecl introduces a variable in the current scope.
type VarDecl struct {
	Name  string
	Value Node
	Posn  Position
}

// Assign updates an existing variable.
type Assign struct {
	Name  string
	Value Node
	Posn  Position
}

// FuncDef defines a named function with positional parameters.
type FuncDef struct {
	Name   string
	Params []string
	Body   *Block
	Posn   Position
}

// Main is the program entry point. Its statements are the body of the
// function literally named main.
type Main struct {
	Stmts []Node
	Posn  Position
}

// Assert checks a condition at run time.
type Assert struct {
	Cond Node
	Posn Position
}

func (n *Number) Pos() Position  { return n.Posn }
func (n *Str) Pos() Position     { return n.Posn }
func (n *Ident) Pos() Position   { return n.Posn }
func (n *Unary) Pos() Position   { return n.Posn }
func (n *Binary) Pos() Position  { return n.Posn }
func (n *Call) Pos() Position    { return n.Posn }
func (n *Return) Pos() Position  { return n.Posn }
func (n *Block) Pos() Position   { return n.Posn }
func (n *If) Pos() Position      { return n.Posn }
func (n *While) Pos() Position   { return n.Posn }
func (n *VarDecl) Pos() Position { return n.Posn }
func (n *Assign) Pos() Position  { return n.Posn }
func (n *FuncDef) Pos() Position { return n.Posn }
func (n *Main) Pos() Position    { return n.Posn }
func (n *Assert) Pos() Position  { return n.Posn }

func (*Number) node()  {}
func (*Str) node()     {}
func (*Ident) node()   {}
func (*Unary) node()   {}
func (*Binary) node()  {}
func (*Call) node()    {}
func (*Return) node()  {}
func (*Block) node()   {}
func (*If) node()      {}
func (*While) node()   {}
func (*VarDecl) node() {}
func (*Assign) node()  {}
func (*FuncDef) node() {}
func (*Main) node()    {}
func (*Assert) node()  {}

// Num builds a numeric literal.
func Num(v float64) *Number { return &Number{Value: v} }

// Id builds an identifier reference.
func Id(name string) *Ident { return &Ident{Name: name} }

// Text builds a string literal.
func Text(s string) *Str { return &Str{Value: s} }

func bin(op BinaryOp, l, r Node) *Binary { return &Binary{Op: op, Left: l, Right: r} }

// Add builds l + r.
func Add(l, r Node) *Binary { return bin(OpAdd, l, r) }

// Subtract builds l - r.
func Subtract(l, r Node) *Binary { return bin(OpSubtract, l, r) }

// Multiply builds l * r.
func Multiply(l, r Node) *Binary { return bin(OpMultiply, l, r) }

// Divide builds l / r.
func Divide(l, r Node) *Binary { return bin(OpDivide, l, r) }

// Modulo builds l % r.
func Modulo(l, r Node) *Binary { return bin(OpModulo, l, r) }

// Power builds l ** r.
func Power(l, r Node) *Binary { return bin(OpPower, l, r) }

// Equal builds l == r.
func Equal(l, r Node) *Binary { return bin(OpEqual, l, r) }

// NotEqual builds l != r.
func NotEqual(l, r Node) *Binary { return bin(OpNotEqual, l, r) }

// Less builds l < r.
func Less(l, r Node) *Binary { return bin(OpLess, l, r) }

// LessEqual builds l <= r.
func LessEqual(l, r Node) *Binary { return bin(OpLessEqual, l, r) }

// Greater builds l > r.
func Greater(l, r Node) *Binary { return bin(OpGreater, l, r) }

// GreaterEqual builds l >= r.
func GreaterEqual(l, r Node) *Binary { return bin(OpGreaterEqual, l, r) }

// And builds l && r.
func And(l, r Node) *Binary { return bin(OpAnd, l, r) }

// Or builds l || r.
func Or(l, r Node) *Binary { return bin(OpOr, l, r) }

// Not builds !operand.
func Not(operand Node) *Unary { return &Unary{Op: OpNot, Operand: operand} }

// Negate builds -operand.
func Negate(operand Node) *Unary { return &Unary{Op: OpNegate, Operand: operand} }
