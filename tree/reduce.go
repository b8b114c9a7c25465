package tree

import (
	"github.com/sergev/pivot/lexer"
)

// Category identifies the construct an Operator was folded from.
type Category int

const (
	MemberAccess Category = iota
	ComputedMemberAccess
	Call
	KeywordApplication
	FunctionCreation
	Postfix
	Prefix
	Exponent
	Multiplicative
	Additive
	Comparison
	LogicalAnd
	LogicalOr
	Assignment
	Unsupported
)

var categoryNames = [...]string{
	MemberAccess:         "member-access",
	ComputedMemberAccess: "computed-member-access",
	Call:                 "function-call",
	KeywordApplication:   "keyword-application",
	FunctionCreation:     "function-definition",
	Postfix:              "postfix",
	Prefix:               "prefix",
	Exponent:             "exponent",
	Multiplicative:       "multiplicative",
	Additive:             "additive",
	Comparison:           "comparison",
	LogicalAnd:           "logical-and",
	LogicalOr:            "logical-or",
	Assignment:           "assignment",
	Unsupported:          "unsupported",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Binary reports whether operators of this category are infix operators
// with a left and a right operand.
func (c Category) Binary() bool {
	return c >= Exponent && c <= Assignment
}

type pass func([]Node) ([]Node, error)

type binaryTier struct {
	category Category
	symbols  map[string]bool
	right    bool
}

func symbols(syms ...string) map[string]bool {
	m := make(map[string]bool, len(syms))
	for _, s := range syms {
		m[s] = true
	}
	return m
}

var binaryTiers = []binaryTier{
	{Exponent, symbols("**"), true},
	{Multiplicative, symbols("*", "/", "%"), false},
	{Additive, symbols("+", "-"), false},
	{Comparison, symbols("==", "!=", "<", ">", "<=", ">="), false},
	{LogicalAnd, symbols("&&"), false},
	{LogicalOr, symbols("||"), false},
	{Assignment, symbols("=", "+=", "-=", "*=", "/=", "%="), true},
}

var pipeline = buildPipeline()

func buildPipeline() []pass {
	passes := []pass{
		reduceMemberAccess,
		reduceComputedMemberAccess,
		reduceCalls,
		reduceKeywords,
		reduceFunctionCreation,
		reducePostfix,
		reducePrefix,
	}
	for _, tier := range binaryTiers {
		tier := tier
		if tier.right {
			passes = append(passes, func(nodes []Node) ([]Node, error) { return foldBinaryRight(nodes, tier) })
		} else {
			passes = append(passes, func(nodes []Node) ([]Node, error) { return foldBinaryLeft(nodes, tier) })
		}
	}
	return passes
}

// Reduce applies the precedence passes to nodes. Group contents are reduced
// first, so the same precedence applies at every nesting depth. Each pass
// builds a new sequence.
func Reduce(nodes []Node) ([]Node, error) {
	cur := make([]Node, len(nodes))
	for i, n := range nodes {
		g, ok := n.(*Group)
		if !ok {
			cur[i] = n
			continue
		}
		children, err := Reduce(g.Children)
		if err != nil {
			return nil, err
		}
		cur[i] = &Group{Family: g.Family, Children: children, At: g.At}
	}
	for _, p := range pipeline {
		next, err := p(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func leafToken(n Node) (lexer.Token, bool) {
	l, ok := n.(*Leaf)
	if !ok {
		return lexer.Token{}, false
	}
	return l.Token, true
}

func isVariable(n Node) bool {
	tok, ok := leafToken(n)
	return ok && tok.Kind == lexer.Name && tok.Subkind == lexer.Variable
}

func isOperatorLeaf(n Node, subkind lexer.Subkind) bool {
	tok, ok := leafToken(n)
	return ok && tok.Kind == lexer.Operator && tok.Subkind == subkind
}

func isGroup(n Node, family lexer.Family) bool {
	g, ok := n.(*Group)
	return ok && g.Family == family
}

// isOperand reports whether n can fill an operand slot.
func isOperand(n Node) bool {
	switch n := n.(type) {
	case *Leaf:
		switch n.Token.Kind {
		case lexer.Number, lexer.String:
			return true
		case lexer.Name:
			return n.Token.Subkind == lexer.Variable
		}
		return false
	case *Group, *Operator:
		return true
	}
	return false
}

// isAccessor reports whether n can be indexed or called.
func isAccessor(n Node) bool {
	if isVariable(n) {
		return true
	}
	op, ok := n.(*Operator)
	return ok && (op.Category == MemberAccess || op.Category == ComputedMemberAccess || op.Category == Call)
}

func last(nodes []Node) Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[len(nodes)-1]
}

func reverse(nodes []Node) []Node {
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return nodes
}

func reduceMemberAccess(nodes []Node) ([]Node, error) {
	out := make([]Node, 0, len(nodes))
	for i := 0; i < len(nodes); i++ {
		tok, ok := leafToken(nodes[i])
		if !ok || tok.Kind != lexer.Operator || tok.Value != "." {
			out = append(out, nodes[i])
			continue
		}
		left := last(out)
		if left == nil || !isOperand(left) {
			return nil, syntaxErrorf(MemberAccess, ".", tok.Loc, "missing object before '.'")
		}
		if i+1 >= len(nodes) || !isVariable(nodes[i+1]) {
			return nil, syntaxErrorf(MemberAccess, ".", tok.Loc, "expected property name after '.'")
		}
		out[len(out)-1] = &Operator{
			Category: MemberAccess,
			Symbol:   ".",
			Operands: []Node{left, nodes[i+1]},
			At:       tok.Loc,
		}
		i++
	}
	return out, nil
}

// foldAccessor folds an accessor followed by a group of the given family.
func foldAccessor(nodes []Node, family lexer.Family, c Category, sym string) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		left := last(out)
		if isGroup(n, family) && left != nil && isAccessor(left) {
			out[len(out)-1] = &Operator{
				Category: c,
				Symbol:   sym,
				Operands: []Node{left, n},
				At:       left.Location(),
			}
			continue
		}
		out = append(out, n)
	}
	return out
}

func reduceComputedMemberAccess(nodes []Node) ([]Node, error) {
	return foldAccessor(nodes, lexer.Bracket, ComputedMemberAccess, "[]"), nil
}

func reduceCalls(nodes []Node) ([]Node, error) {
	return foldAccessor(nodes, lexer.Parenthesis, Call, "call"), nil
}

// takePrefixed pops the operand nearest the end of a reversed sequence,
// together with any prefix operators applied to it.
func takePrefixed(rev []Node) (Node, []Node, bool) {
	k := len(rev) - 1
	var ops []lexer.Token
	for k >= 0 && isOperatorLeaf(rev[k], lexer.Prefix) {
		tok, _ := leafToken(rev[k])
		ops = append(ops, tok)
		k--
	}
	if k < 0 || !isOperand(rev[k]) {
		return nil, rev, false
	}
	operand := rev[k]
	for j := len(ops) - 1; j >= 0; j-- {
		operand = &Operator{Category: Prefix, Symbol: ops[j].Value, Operands: []Node{operand}, At: ops[j].Loc}
	}
	return operand, rev[:k], true
}

// reduceKeywords applies each keyword to the node after it, right to left.
// A prefix expression right after a keyword is taken whole.
func reduceKeywords(nodes []Node) ([]Node, error) {
	rev := make([]Node, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		tok, ok := leafToken(nodes[i])
		if !ok || tok.Kind != lexer.Name || tok.Subkind != lexer.Keyword {
			rev = append(rev, nodes[i])
			continue
		}
		operand, rest, ok := takePrefixed(rev)
		if !ok {
			return nil, syntaxErrorf(KeywordApplication, tok.Value, tok.Loc, "missing operand after keyword")
		}
		rev = append(rest, &Operator{
			Category: KeywordApplication,
			Symbol:   tok.Value,
			Operands: []Node{operand},
			At:       tok.Loc,
		})
	}
	return reverse(rev), nil
}

func reduceFunctionCreation(nodes []Node) ([]Node, error) {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		left := last(out)
		if isGroup(n, lexer.Brace) && left != nil && isGroup(left, lexer.Parenthesis) {
			out[len(out)-1] = &Operator{
				Category: FunctionCreation,
				Symbol:   "function",
				Operands: []Node{left, n},
				At:       left.Location(),
			}
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func reducePostfix(nodes []Node) ([]Node, error) {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if !isOperatorLeaf(n, lexer.Postfix) {
			out = append(out, n)
			continue
		}
		tok, _ := leafToken(n)
		left := last(out)
		if left == nil || !isOperand(left) {
			return nil, syntaxErrorf(Postfix, tok.Value, tok.Loc, "missing operand before postfix operator")
		}
		out[len(out)-1] = &Operator{Category: Postfix, Symbol: tok.Value, Operands: []Node{left}, At: tok.Loc}
	}
	return out, nil
}

func reducePrefix(nodes []Node) ([]Node, error) {
	rev := make([]Node, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		if !isOperatorLeaf(nodes[i], lexer.Prefix) {
			rev = append(rev, nodes[i])
			continue
		}
		tok, _ := leafToken(nodes[i])
		right := last(rev)
		if right == nil || !isOperand(right) {
			return nil, syntaxErrorf(Prefix, tok.Value, tok.Loc, "missing operand after prefix operator")
		}
		rev[len(rev)-1] = &Operator{Category: Prefix, Symbol: tok.Value, Operands: []Node{right}, At: tok.Loc}
	}
	return reverse(rev), nil
}

func tierOperator(n Node, tier binaryTier) (lexer.Token, bool) {
	tok, ok := leafToken(n)
	if !ok || tok.Kind != lexer.Operator || tok.Subkind != lexer.Dual {
		return lexer.Token{}, false
	}
	return tok, tier.symbols[tok.Value]
}

func foldBinaryLeft(nodes []Node, tier binaryTier) ([]Node, error) {
	out := make([]Node, 0, len(nodes))
	for i := 0; i < len(nodes); i++ {
		tok, ok := tierOperator(nodes[i], tier)
		if !ok {
			out = append(out, nodes[i])
			continue
		}
		left := last(out)
		if left == nil || !isOperand(left) {
			return nil, syntaxErrorf(tier.category, tok.Value, tok.Loc, "missing left operand")
		}
		if i+1 >= len(nodes) || !isOperand(nodes[i+1]) {
			return nil, syntaxErrorf(tier.category, tok.Value, tok.Loc, "missing right operand")
		}
		out[len(out)-1] = &Operator{
			Category: tier.category,
			Symbol:   tok.Value,
			Operands: []Node{left, nodes[i+1]},
			At:       tok.Loc,
		}
		i++
	}
	return out, nil
}

func foldBinaryRight(nodes []Node, tier binaryTier) ([]Node, error) {
	rev := make([]Node, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		tok, ok := tierOperator(nodes[i], tier)
		if !ok {
			rev = append(rev, nodes[i])
			continue
		}
		right := last(rev)
		if right == nil || !isOperand(right) {
			return nil, syntaxErrorf(tier.category, tok.Value, tok.Loc, "missing right operand")
		}
		if i == 0 || !isOperand(nodes[i-1]) {
			return nil, syntaxErrorf(tier.category, tok.Value, tok.Loc, "missing left operand")
		}
		rev[len(rev)-1] = &Operator{
			Category: tier.category,
			Symbol:   tok.Value,
			Operands: []Node{nodes[i-1], right},
			At:       tok.Loc,
		}
		i--
	}
	return reverse(rev), nil
}
