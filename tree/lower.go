package tree

import (
	"strconv"

	"github.com/sergev/pivot/ast"
	"github.com/sergev/pivot/lexer"
)

// Lower converts a reduced program into the typed AST. Statements are
// separated by ';' at the top level and inside braces.
func Lower(nodes []Node) (*ast.Block, error) {
	stmts, err := lowerStatements(nodes)
	if err != nil {
		return nil, err
	}
	block := &ast.Block{Stmts: stmts}
	if len(nodes) > 0 {
		block.Posn = position(nodes[0].Location())
	}
	return block, nil
}

func position(loc lexer.Location) ast.Position {
	return ast.Position{Offset: loc.Offset, Line: loc.Line, Column: loc.Column}
}

func unsupported(n Node, format string, args ...interface{}) error {
	return syntaxErrorf(Unsupported, "", n.Location(), format, args...)
}

func isSeparator(n Node, sep string) bool {
	tok, ok := leafToken(n)
	return ok && tok.Kind == lexer.Operator && tok.Value == sep
}

// split cuts nodes at every separator leaf.
func split(nodes []Node, sep string) [][]Node {
	var parts [][]Node
	start := 0
	for i, n := range nodes {
		if isSeparator(n, sep) {
			parts = append(parts, nodes[start:i])
			start = i + 1
		}
	}
	return append(parts, nodes[start:])
}

func lowerStatements(nodes []Node) ([]ast.Node, error) {
	stmts := []ast.Node{}
	for _, seg := range split(nodes, ";") {
		if len(seg) == 0 {
			continue
		}
		if len(seg) > 1 {
			return nil, unsupported(seg[1], "unexpected %s after %s", seg[1], seg[0])
		}
		stmt, err := lowerStatement(seg[0])
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// liftKeyword finds a keyword application at the leftmost operand of a
// chain of binary operators and moves it to the root, so that
// (+ (return a) b) reads as return (+ a b).
func liftKeyword(n Node) (string, lexer.Location, Node, bool) {
	op, ok := n.(*Operator)
	if !ok {
		return "", lexer.Location{}, nil, false
	}
	if op.Category == KeywordApplication {
		return op.Symbol, op.At, op.Operands[0], true
	}
	if !op.Category.Binary() {
		return "", lexer.Location{}, nil, false
	}
	kw, at, inner, ok := liftKeyword(op.Operands[0])
	if !ok {
		return "", lexer.Location{}, nil, false
	}
	clone := *op
	clone.Operands = []Node{inner, op.Operands[1]}
	return kw, at, &clone, true
}

func lowerStatement(n Node) (ast.Node, error) {
	if g, ok := n.(*Group); ok && g.Family == lexer.Brace {
		stmts, err := lowerStatements(g.Children)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Stmts: stmts, Posn: position(g.At)}, nil
	}

	if kw, at, rest, ok := liftKeyword(n); ok {
		switch kw {
		case "return":
			result, err := lowerExpr(rest)
			if err != nil {
				return nil, err
			}
			return &ast.Return{Result: result, Posn: position(at)}, nil
		case "let", "var":
			op, ok := rest.(*Operator)
			if !ok || op.Category != Assignment || op.Symbol != "=" || !isVariable(op.Operands[0]) {
				return nil, unsupported(n, "%s requires the form %s name = value", kw, kw)
			}
			value, err := lowerExpr(op.Operands[1])
			if err != nil {
				return nil, err
			}
			tok, _ := leafToken(op.Operands[0])
			return &ast.VarDecl{Name: tok.Value, Value: value, Posn: position(at)}, nil
		default:
			return nil, unsupported(n, "keyword %s is not supported here", kw)
		}
	}

	if op, ok := n.(*Operator); ok && op.Category == Assignment {
		return lowerAssignment(op)
	}
	return lowerExpr(n)
}

func lowerAssignment(op *Operator) (ast.Node, error) {
	if !isVariable(op.Operands[0]) {
		return nil, unsupported(op, "cannot assign to %s", op.Operands[0])
	}
	tok, _ := leafToken(op.Operands[0])
	value, err := lowerExpr(op.Operands[1])
	if err != nil {
		return nil, err
	}
	if op.Symbol != "=" {
		binop, ok := ast.BinaryOpFromSymbol(op.Symbol[:len(op.Symbol)-1])
		if !ok {
			return nil, unsupported(op, "unknown assignment operator %s", op.Symbol)
		}
		value = &ast.Binary{
			Op:    binop,
			Left:  &ast.Ident{Name: tok.Value, Posn: position(tok.Loc)},
			Right: value,
			Posn:  position(op.At),
		}
	}
	return &ast.Assign{Name: tok.Value, Value: value, Posn: position(op.At)}, nil
}

func lowerExpr(n Node) (ast.Node, error) {
	switch n := n.(type) {
	case *Leaf:
		return lowerLeaf(n)
	case *Group:
		if n.Family != lexer.Parenthesis || len(n.Children) != 1 {
			return nil, unsupported(n, "unexpected %s", n)
		}
		return lowerExpr(n.Children[0])
	case *Operator:
		return lowerOperator(n)
	case nil:
		return nil, syntaxErrorf(Unsupported, "", lexer.Location{}, "missing expression")
	}
	return nil, unsupported(n, "unexpected %s", n)
}

func lowerLeaf(l *Leaf) (ast.Node, error) {
	tok := l.Token
	pos := position(tok.Loc)
	switch tok.Kind {
	case lexer.Number:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, unsupported(l, "invalid number %s", tok.Value)
		}
		return &ast.Number{Value: v, Posn: pos}, nil
	case lexer.String:
		return &ast.Str{Value: tok.Value, Posn: pos}, nil
	case lexer.Name:
		if tok.Subkind == lexer.Variable {
			return &ast.Ident{Name: tok.Value, Posn: pos}, nil
		}
	}
	return nil, unsupported(l, "unexpected %s", l)
}

func lowerOperator(op *Operator) (ast.Node, error) {
	pos := position(op.At)
	switch {
	case op.Category == Prefix:
		operand, err := lowerExpr(op.Operands[0])
		if err != nil {
			return nil, err
		}
		switch op.Symbol {
		case "-":
			return &ast.Unary{Op: ast.OpNegate, Operand: operand, Posn: pos}, nil
		case "!":
			return &ast.Unary{Op: ast.OpNot, Operand: operand, Posn: pos}, nil
		case "+":
			return operand, nil
		}
	case op.Category == Call:
		return lowerCall(op)
	case op.Category.Binary() && op.Category != Assignment:
		binop, ok := ast.BinaryOpFromSymbol(op.Symbol)
		if !ok {
			break
		}
		left, err := lowerExpr(op.Operands[0])
		if err != nil {
			return nil, err
		}
		right, err := lowerExpr(op.Operands[1])
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Op: binop, Left: left, Right: right, Posn: pos}, nil
	}
	return nil, unsupported(op, "%s %s is not supported", op.Category, op)
}

func lowerCall(op *Operator) (ast.Node, error) {
	if !isVariable(op.Operands[0]) {
		return nil, unsupported(op, "cannot call %s", op.Operands[0])
	}
	tok, _ := leafToken(op.Operands[0])
	group := op.Operands[1].(*Group)

	args := []ast.Node{}
	if len(group.Children) > 0 {
		for _, seg := range split(group.Children, ",") {
			if len(seg) != 1 {
				return nil, syntaxErrorf(Call, tok.Value, op.At, "malformed argument list")
			}
			arg, err := lowerExpr(seg[0])
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
	}

	pos := position(tok.Loc)
	if tok.Value == "assert" && len(args) == 1 {
		return &ast.Assert{Cond: args[0], Posn: pos}, nil
	}
	return &ast.Call{Callee: tok.Value, Args: args, Posn: pos}, nil
}
