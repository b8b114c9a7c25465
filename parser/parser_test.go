package parser

import (
	"errors"
	"strings"
	"testing"

	plexer "github.com/alecthomas/participle/v2/lexer"
	"github.com/kr/pretty"

	"github.com/sergev/pivot/ast"
)

func mustParse(t *testing.T, src string) *ast.Block {
	t.Helper()
	block, err := Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return block
}

func expectStmts(t *testing.T, src string, want ...ast.Node) {
	t.Helper()
	got := mustParse(t, src)
	expected := &ast.Block{Stmts: want}
	if !got.Equal(expected) {
		ast.ClearPositions(got)
		t.Fatalf("%q:\n got %s\nwant %s\n%s", src, ast.Sprint(got), ast.Sprint(expected),
			strings.Join(pretty.Diff(got, expected), "\n"))
	}
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want ast.Node
	}{
		{"2 + 3 * 4;", ast.Add(ast.Num(2), ast.Multiply(ast.Num(3), ast.Num(4)))},
		{"2 ** 3 ** 2;", ast.Power(ast.Num(2), ast.Power(ast.Num(3), ast.Num(2)))},
		{"1 - 2 - 3;", ast.Subtract(ast.Subtract(ast.Num(1), ast.Num(2)), ast.Num(3))},
		{"(1 + 2) * 3;", ast.Multiply(ast.Add(ast.Num(1), ast.Num(2)), ast.Num(3))},
		{"!a == b;", ast.Equal(ast.Not(ast.Id("a")), ast.Id("b"))},
		{"-x * 2;", ast.Multiply(ast.Negate(ast.Id("x")), ast.Num(2))},
		{"a < b && c >= d || e != f;", ast.Or(
			ast.And(ast.Less(ast.Id("a"), ast.Id("b")), ast.GreaterEqual(ast.Id("c"), ast.Id("d"))),
			ast.NotEqual(ast.Id("e"), ast.Id("f")))},
		{"7 % 3 / 2;", ast.Divide(ast.Modulo(ast.Num(7), ast.Num(3)), ast.Num(2))},
		{"1.5;", ast.Num(1.5)},
		{`'it\'s';`, ast.Text("it's")},
		{`"a\nb";`, ast.Text("a\nb")},
		{"f(1, g(x), 2 + 3);", &ast.Call{Callee: "f", Args: []ast.Node{
			ast.Num(1),
			&ast.Call{Callee: "g", Args: []ast.Node{ast.Id("x")}},
			ast.Add(ast.Num(2), ast.Num(3)),
		}}},
		{"f();", &ast.Call{Callee: "f", Args: []ast.Node{}}},
		{"1 + 2", ast.Add(ast.Num(1), ast.Num(2))},
	}
	for _, tc := range tests {
		expectStmts(t, tc.src, tc.want)
	}
}

func TestParseStatements(t *testing.T) {
	expectStmts(t, `
var x = 1;
let y = x;
x = x + 1;
return x;
return;
{ y; }
`,
		&ast.VarDecl{Name: "x", Value: ast.Num(1)},
		&ast.VarDecl{Name: "y", Value: ast.Id("x")},
		&ast.Assign{Name: "x", Value: ast.Add(ast.Id("x"), ast.Num(1))},
		&ast.Return{Result: ast.Id("x")},
		&ast.Return{},
		&ast.Block{Stmts: []ast.Node{ast.Id("y")}},
	)
}

func TestParseCompoundAssignmentAndUnaryPlus(t *testing.T) {
	expectStmts(t, "x += 1; y %= 2 * z; let w = +3; v = 4.;",
		&ast.Assign{Name: "x", Value: ast.Add(ast.Id("x"), ast.Num(1))},
		&ast.Assign{Name: "y", Value: ast.Modulo(ast.Id("y"), ast.Multiply(ast.Num(2), ast.Id("z")))},
		&ast.VarDecl{Name: "w", Value: ast.Num(3)},
		&ast.Assign{Name: "v", Value: ast.Num(4)},
	)
}

func TestParseControlFlow(t *testing.T) {
	expectStmts(t, `
if (a) b; else { c; }
if (a == 1) { }
while (i < 10) i = i + 1;
`,
		&ast.If{Cond: ast.Id("a"), Then: ast.Id("b"), Else: &ast.Block{Stmts: []ast.Node{ast.Id("c")}}},
		&ast.If{Cond: ast.Equal(ast.Id("a"), ast.Num(1)), Then: &ast.Block{Stmts: []ast.Node{}}},
		&ast.While{Cond: ast.Less(ast.Id("i"), ast.Num(10)), Body: &ast.Assign{Name: "i", Value: ast.Add(ast.Id("i"), ast.Num(1))}},
	)
}

func TestParseFunctionDefinition(t *testing.T) {
	expectStmts(t, `
// adds two numbers
function add(a, b) {
  return a + b; /* sum */
}
function none() {}
`,
		&ast.FuncDef{Name: "add", Params: []string{"a", "b"}, Body: &ast.Block{Stmts: []ast.Node{
			&ast.Return{Result: ast.Add(ast.Id("a"), ast.Id("b"))},
		}}},
		&ast.FuncDef{Name: "none", Params: []string{}, Body: &ast.Block{Stmts: []ast.Node{}}},
	)
}

func TestParseMainAndAssertIntrinsics(t *testing.T) {
	block := mustParse(t, "function main() { assert(1); assert(!0); }")
	want := &ast.Block{Stmts: []ast.Node{
		&ast.Main{Stmts: []ast.Node{
			&ast.Assert{Cond: ast.Num(1)},
			&ast.Assert{Cond: ast.Not(ast.Num(0))},
		}},
	}}
	if !block.Equal(want) {
		t.Fatalf("unexpected tree %s", ast.Sprint(block))
	}
	main := block.Stmts[0].(*ast.Main)
	for _, stmt := range main.Stmts {
		if _, ok := stmt.(*ast.Call); ok {
			t.Fatalf("assert parsed as a generic call")
		}
	}
}

func TestParseKeywordsAreNotIdentifiers(t *testing.T) {
	for _, src := range []string{"var return = 1;", "let if = 2;", "while;"} {
		if _, err := Parse(src); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src        string
		incomplete bool
		msg        string
	}{
		{"1 +", true, "end of input"},
		{"function f(a) {", true, ""},
		{"f(1, 2", true, ""},
		{"'open", true, "unterminated string"},
		{"/* open", true, "unterminated block comment"},
		{"1 + ;", false, "expected"},
		{"a b;", false, `found "b"`},
		{"x = @;", false, "invalid input"},
	}
	for _, tc := range tests {
		_, err := Parse(tc.src)
		if err == nil {
			t.Fatalf("expected error for %q", tc.src)
		}
		var perr *Error
		if !errors.As(err, &perr) {
			t.Fatalf("%q: expected *Error, got %T", tc.src, err)
		}
		if IsIncomplete(err) != tc.incomplete {
			t.Fatalf("%q: IsIncomplete = %v, want %v (%v)", tc.src, IsIncomplete(err), tc.incomplete, err)
		}
		if !strings.Contains(err.Error(), tc.msg) {
			t.Fatalf("%q: error %q does not mention %q", tc.src, err, tc.msg)
		}
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("var x = 1;\nvar y = ;")
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if perr.Pos.Line != 2 || perr.Pos.Column != 9 {
		t.Fatalf("unexpected error position %s", perr.Pos)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestParseReader(t *testing.T) {
	if _, err := ParseReader(failingReader{}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected underlying IO error, got %v", err)
	}
	block, err := ParseReader(strings.NewReader("let value = 5; value;"))
	if err != nil {
		t.Fatalf("ParseReader returned error: %v", err)
	}
	if len(block.Stmts) != 2 {
		t.Fatalf("expected two statements, got %d", len(block.Stmts))
	}
}

func TestRuleUsedBeforeDefinition(t *testing.T) {
	r := NewRule[int]("pending")
	tokens, err := tokenize("x")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if _, err := Run(r.Parser(), tokens); err == nil || !strings.Contains(err.Error(), "undefined rule") {
		t.Fatalf("expected undefined rule error, got %v", err)
	}
	r.Define(Constant(7))
	v, _, ok := r.Parser()(Source{st: &state{tokens: tokens}})
	if !ok || v != 7 {
		t.Fatalf("rule did not resolve: %v %v", v, ok)
	}
}

func TestCombinators(t *testing.T) {
	tokens, err := tokenize("a , b , c ;")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	name := Map(Token(identToken, "name"), func(tok plexer.Token) string { return tok.Value })
	list := Bind(name, func(first string) Parser[[]string] {
		return Map(ZeroOrMore(And(Punct(","), name)), func(rest []string) []string {
			return append([]string{first}, rest...)
		})
	})
	got, rest, ok := list(Source{st: &state{tokens: tokens}})
	if !ok || len(got) != 3 || got[2] != "c" {
		t.Fatalf("unexpected list %v %v", got, ok)
	}
	if rest.peek().Value != ";" {
		t.Fatalf("list consumed the terminator")
	}

	opt, _, ok := Optional(Punct("!"))(rest)
	if !ok || opt.Value != "" {
		t.Fatalf("Optional should succeed with the zero value")
	}
	if _, _, ok := Fail[int]("never")(rest); ok {
		t.Fatalf("Fail succeeded")
	}
	if v, _, ok := Or(Fail[string]("x"), Constant("y"))(rest); !ok || v != "y" {
		t.Fatalf("Or did not fall through to the second alternative")
	}
}
