// Package tree folds a token sequence into delimiter groups and reduces the
// groups into operator trees by precedence passes.
package tree

import (
	"strconv"
	"strings"

	"github.com/sergev/pivot/lexer"
)

// Node is a token leaf, a delimiter group or a reduced operator.
type Node interface {
	String() string
	Equal(other Node) bool
	Location() lexer.Location
	node()
}

// Leaf wraps a single token that no pass has folded.
type Leaf struct {
	Token lexer.Token
}

// Group holds the contents of one matched delimiter pair. The delimiters
// themselves are not part of Children.
type Group struct {
	Family   lexer.Family
	Children []Node
	At       lexer.Location // opening delimiter
}

// Operator is a construct recognized by a reducer pass.
type Operator struct {
	Category Category
	Symbol   string
	Operands []Node
	At       lexer.Location
}

func (*Leaf) node()     {}
func (*Group) node()    {}
func (*Operator) node() {}

func (l *Leaf) Location() lexer.Location     { return l.Token.Loc }
func (g *Group) Location() lexer.Location    { return g.At }
func (o *Operator) Location() lexer.Location { return o.At }

func (l *Leaf) String() string {
	if l.Token.Kind == lexer.String {
		return strconv.Quote(l.Token.Value)
	}
	return l.Token.Value
}

func (g *Group) String() string {
	return g.Family.Open() + joinNodes(g.Children) + g.Family.Close()
}

func (o *Operator) String() string {
	if o.Category == Postfix {
		return "(" + joinNodes(o.Operands) + " " + o.Symbol + ")"
	}
	return "(" + o.Symbol + " " + joinNodes(o.Operands) + ")"
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, " ")
}

// Equal compares lexemes, ignoring positions.
func (l *Leaf) Equal(other Node) bool {
	o, ok := other.(*Leaf)
	return ok && l.Token.SameLexeme(o.Token)
}

func (g *Group) Equal(other Node) bool {
	o, ok := other.(*Group)
	return ok && g.Family == o.Family && nodesEqual(g.Children, o.Children)
}

func (op *Operator) Equal(other Node) bool {
	o, ok := other.(*Operator)
	return ok && op.Category == o.Category && op.Symbol == o.Symbol &&
		nodesEqual(op.Operands, o.Operands)
}

func nodesEqual(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Depth reports the maximum group nesting among nodes.
func Depth(nodes []Node) int {
	deepest := 0
	for _, n := range nodes {
		d := 0
		switch n := n.(type) {
		case *Group:
			d = 1 + Depth(n.Children)
		case *Operator:
			d = Depth(n.Operands)
		}
		if d > deepest {
			deepest = d
		}
	}
	return deepest
}

// Parse tokenizes src, groups delimiters and reduces the result.
func Parse(src string) ([]Node, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	nodes, err := Fold(tokens)
	if err != nil {
		return nil, err
	}
	return Reduce(nodes)
}
