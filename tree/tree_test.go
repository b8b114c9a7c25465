package tree

import (
	"errors"
	"strings"
	"testing"

	"github.com/kr/pretty"

	"github.com/sergev/pivot/ast"
	"github.com/sergev/pivot/lexer"
)

func mustTokens(t *testing.T, src string) []lexer.Token {
	t.Helper()
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize %q: %v", src, err)
	}
	return tokens
}

func mustParse(t *testing.T, src string) []Node {
	t.Helper()
	nodes, err := Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return nodes
}

func render(nodes []Node) string {
	return joinNodes(nodes)
}

// sourceDepth counts the maximum delimiter nesting directly from the text.
func sourceDepth(src string) int {
	depth, deepest := 0, 0
	for _, r := range src {
		switch r {
		case '(', '[', '{':
			depth++
			if depth > deepest {
				deepest = depth
			}
		case ')', ']', '}':
			depth--
		}
	}
	return deepest
}

func TestFoldBalancedDepth(t *testing.T) {
	cases := []string{
		"a",
		"(a)",
		"(a)(b)",
		"f(a, [b, {c}])",
		"((((x))))",
		"{ let x = (1 + [2]); } (y)",
		"()",
	}
	for _, src := range cases {
		nodes, err := Fold(mustTokens(t, src))
		if err != nil {
			t.Fatalf("group %q: %v", src, err)
		}
		if got, want := Depth(nodes), sourceDepth(src); got != want {
			t.Fatalf("%q: depth %d, want %d (%s)", src, got, want, render(nodes))
		}
	}
}

func TestFoldStructure(t *testing.T) {
	nodes, err := Fold(mustTokens(t, "(a)(b [c])"))
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if got := render(nodes); got != "(a) (b [c])" {
		t.Fatalf("unexpected grouping %q", got)
	}
	for _, n := range nodes {
		g := n.(*Group)
		for _, child := range g.Children {
			if tok, ok := leafToken(child); ok && tok.Kind == lexer.Delimiter {
				t.Fatalf("group keeps delimiter %v", tok)
			}
		}
	}
}

func TestFoldUnbalanced(t *testing.T) {
	cases := []struct {
		src        string
		incomplete bool
	}{
		{"(a", true},
		{"f(a, [b)", false},
		{"a)", false},
		{"{(}", false},
		{"((a)", true},
		{"]", false},
	}
	for _, tc := range cases {
		_, err := Fold(mustTokens(t, tc.src))
		var uerr *UnbalancedDelimiterError
		if !errors.As(err, &uerr) {
			t.Fatalf("%q: expected UnbalancedDelimiterError, got %v", tc.src, err)
		}
		if uerr.Incomplete() != tc.incomplete || IsIncomplete(err) != tc.incomplete {
			t.Fatalf("%q: incomplete = %v, want %v", tc.src, uerr.Incomplete(), tc.incomplete)
		}
	}
}

func TestAssignLevels(t *testing.T) {
	leveled, deepest, err := AssignLevels(mustTokens(t, "a (b [c]) d"))
	if err != nil {
		t.Fatalf("AssignLevels: %v", err)
	}
	want := []int{0, 1, 1, 2, 2, 2, 1, 0}
	if deepest != 2 || len(leveled) != len(want) {
		t.Fatalf("deepest %d, %d tokens", deepest, len(leveled))
	}
	for i, lvl := range want {
		if leveled[i].Level != lvl {
			t.Fatalf("token %d (%v): level %d, want %d", i, leveled[i], leveled[i].Level, lvl)
		}
	}
}

func TestAssignLevelsIdempotent(t *testing.T) {
	tokens := mustTokens(t, "let x = 1 + 2 * y;")
	once, _, err := AssignLevels(tokens)
	if err != nil {
		t.Fatalf("AssignLevels: %v", err)
	}
	twice, _, err := AssignLevels(once)
	if err != nil {
		t.Fatalf("AssignLevels: %v", err)
	}
	for i := range once {
		if once[i].Level != twice[i].Level {
			t.Fatalf("token %d changed level from %d to %d", i, once[i].Level, twice[i].Level)
		}
	}
}

func TestReduceShapes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"2 + 3 * 4", "(+ 2 (* 3 4))"},
		{"2 * 3 + 4", "(+ (* 2 3) 4)"},
		{"2 ** 3 ** 2", "(** 2 (** 3 2))"},
		{"1 - 2 - 3", "(- (- 1 2) 3)"},
		{"-2 * 3", "(* (- 2) 3)"},
		{"2 - -3", "(- 2 (- 3))"},
		{"!a && b || c", "(|| (&& (! a) b) c)"},
		{"a < b == c", "(== (< a b) c)"},
		{"a = b = 1 + 2", "(= a (= b (+ 1 2)))"},
		{"x += 1", "(+= x 1)"},
		{"a.b.c", "(. (. a b) c)"},
		{"a[1](2)", "(call ([] a [1]) (2))"},
		{"f(1, 2) * 3", "(* (call f (1 , 2)) 3)"},
		{"x++ + 1", "(+ (x ++) 1)"},
		{"(a) {b}", "(function (a) {b})"},
		{"let x = 5;", "(= (let x) 5) ;"},
		{"return -x", "(return (- x))"},
		{"(1 + 2) * 3", "(* ((+ 1 2)) 3)"},
	}
	for _, tc := range tests {
		if got := render(mustParse(t, tc.src)); got != tc.want {
			t.Fatalf("%q: got %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestReducePrecedenceTree(t *testing.T) {
	nodes := mustParse(t, "2 + 3 * 4")
	leaf := func(v string) Node {
		return &Leaf{Token: lexer.Token{Kind: lexer.Number, Value: v}}
	}
	want := &Operator{Category: Additive, Symbol: "+", Operands: []Node{
		leaf("2"),
		&Operator{Category: Multiplicative, Symbol: "*", Operands: []Node{leaf("3"), leaf("4")}},
	}}
	if len(nodes) != 1 || !nodes[0].Equal(want) {
		t.Fatalf("unexpected tree %s", render(nodes))
	}
}

func TestReduceSyntaxErrors(t *testing.T) {
	tests := []struct {
		src       string
		construct Category
	}{
		{"3 +", Additive},
		{"* 3", Multiplicative},
		{"2 **", Exponent},
		{"a ==", Comparison},
		{"x =", Assignment},
		{"return", KeywordApplication},
		{"a.", MemberAccess},
		{"a.1", MemberAccess},
		{"-", Prefix},
		{"(1 +)", Additive},
		{"a && ;", LogicalAnd},
	}
	for _, tc := range tests {
		_, err := Parse(tc.src)
		var serr *SyntaxError
		if !errors.As(err, &serr) {
			t.Fatalf("%q: expected SyntaxError, got %v", tc.src, err)
		}
		if serr.Construct != tc.construct {
			t.Fatalf("%q: construct %s, want %s", tc.src, serr.Construct, tc.construct)
		}
	}
}

func TestSyntaxErrorMessage(t *testing.T) {
	_, err := Parse("3 +")
	if err == nil || !strings.Contains(err.Error(), "additive") {
		t.Fatalf("unexpected error %v", err)
	}
}

func lower(t *testing.T, src string) *ast.Block {
	t.Helper()
	block, err := Lower(mustParse(t, src))
	if err != nil {
		t.Fatalf("lower %q: %v", src, err)
	}
	return block
}

func TestLower(t *testing.T) {
	tests := []struct {
		src  string
		want []ast.Node
	}{
		{"2 + 3 * 4", []ast.Node{ast.Add(ast.Num(2), ast.Multiply(ast.Num(3), ast.Num(4)))}},
		{"2 ** 3 ** 2", []ast.Node{ast.Power(ast.Num(2), ast.Power(ast.Num(3), ast.Num(2)))}},
		{"let x = 1.5; x = x * -2;", []ast.Node{
			&ast.VarDecl{Name: "x", Value: ast.Num(1.5)},
			&ast.Assign{Name: "x", Value: ast.Multiply(ast.Id("x"), ast.Negate(ast.Num(2)))},
		}},
		{"var s = 'hi'; s += '!'", []ast.Node{
			&ast.VarDecl{Name: "s", Value: ast.Text("hi")},
			&ast.Assign{Name: "s", Value: ast.Add(ast.Id("s"), ast.Text("!"))},
		}},
		{"return a + b;", []ast.Node{&ast.Return{Result: ast.Add(ast.Id("a"), ast.Id("b"))}}},
		{"assert(!0); f(1, (2), g())", []ast.Node{
			&ast.Assert{Cond: ast.Not(ast.Num(0))},
			&ast.Call{Callee: "f", Args: []ast.Node{ast.Num(1), ast.Num(2), &ast.Call{Callee: "g", Args: []ast.Node{}}}},
		}},
		{"{ a != b; { c } }", []ast.Node{
			&ast.Block{Stmts: []ast.Node{
				ast.NotEqual(ast.Id("a"), ast.Id("b")),
				&ast.Block{Stmts: []ast.Node{ast.Id("c")}},
			}},
		}},
	}
	for _, tc := range tests {
		got := lower(t, tc.src)
		want := &ast.Block{Stmts: tc.want}
		if !got.Equal(want) {
			ast.ClearPositions(got)
			t.Fatalf("%q: unexpected AST %s\n%s", tc.src, ast.Sprint(got), strings.Join(pretty.Diff(got, want), "\n"))
		}
	}
}

func TestLowerUnsupported(t *testing.T) {
	for _, src := range []string{
		"a.b",
		"x++",
		"if (a) { b }",
		"while (a) { b }",
		"let x",
		"a b",
		"1 = 2",
		"a ? b : c",
		"[1, 2]",
	} {
		nodes, err := Parse(src)
		if err != nil {
			t.Fatalf("parse %q: %v", src, err)
		}
		_, err = Lower(nodes)
		var serr *SyntaxError
		if !errors.As(err, &serr) || serr.Construct != Unsupported {
			t.Fatalf("%q: expected unsupported SyntaxError, got %v", src, err)
		}
	}
}

func TestLowerMissingExpression(t *testing.T) {
	_, err := lowerExpr(nil)
	var serr *SyntaxError
	if !errors.As(err, &serr) || serr.Construct != Unsupported {
		t.Fatalf("expected unsupported SyntaxError, got %v", err)
	}
}

func TestLowerUnaryPlusAndTrailingDot(t *testing.T) {
	got := lower(t, "let y = +3; z = 1. + +y;")
	want := &ast.Block{Stmts: []ast.Node{
		&ast.VarDecl{Name: "y", Value: ast.Num(3)},
		&ast.Assign{Name: "z", Value: ast.Add(ast.Num(1), ast.Id("y"))},
	}}
	if !got.Equal(want) {
		ast.ClearPositions(got)
		t.Fatalf("unexpected AST %s\n%s", ast.Sprint(got), strings.Join(pretty.Diff(got, want), "\n"))
	}
}
