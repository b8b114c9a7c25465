package interp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sergev/pivot/ast"
	"github.com/sergev/pivot/frontend"
)

func expectNumber(t *testing.T, val Value, want float64) {
	t.Helper()
	if val.Type != TypeNumber {
		t.Fatalf("expected number %v, got %v", want, val)
	}
	if val.Number() != want {
		t.Fatalf("expected %v, got %v", want, val.Number())
	}
}

func expectBool(t *testing.T, val Value, want bool) {
	t.Helper()
	if val.Type != TypeBool {
		t.Fatalf("expected boolean %v, got %v", want, val)
	}
	if val.Bool() != want {
		t.Fatalf("expected %v, got %v", want, val.Bool())
	}
}

func run(t *testing.T, src string) (Value, string) {
	t.Helper()
	var out strings.Builder
	in := New(&out)
	val, err := EvaluateString(in, src, frontend.Combinator)
	if err != nil {
		t.Fatalf("EvaluateString(%q) error: %v", src, err)
	}
	return val, out.String()
}

func TestBinaryOperators(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		assert func(*testing.T, Value)
	}{
		{"addition", "1 + 2;", func(t *testing.T, v Value) { expectNumber(t, v, 3) }},
		{"subtraction", "5 - 8;", func(t *testing.T, v Value) { expectNumber(t, v, -3) }},
		{"multiplication", "6 * 7;", func(t *testing.T, v Value) { expectNumber(t, v, 42) }},
		{"division", "21 / 2;", func(t *testing.T, v Value) { expectNumber(t, v, 10.5) }},
		{"modulo", "123 % 45;", func(t *testing.T, v Value) { expectNumber(t, v, 33) }},
		{"power", "2 ** 3 ** 2;", func(t *testing.T, v Value) { expectNumber(t, v, 512) }},
		{"equals", "1 == 1;", func(t *testing.T, v Value) { expectBool(t, v, true) }},
		{"not-equals", "1 != 2;", func(t *testing.T, v Value) { expectBool(t, v, true) }},
		{"less-than", "3 < 4;", func(t *testing.T, v Value) { expectBool(t, v, true) }},
		{"less-or-equal", "4 <= 3;", func(t *testing.T, v Value) { expectBool(t, v, false) }},
		{"greater-than", "4 > 3;", func(t *testing.T, v Value) { expectBool(t, v, true) }},
		{"greater-or-equal", "3 >= 4;", func(t *testing.T, v Value) { expectBool(t, v, false) }},
		{"string-order", "'abc' < 'abd';", func(t *testing.T, v Value) { expectBool(t, v, true) }},
		{"logical-and", "true && false;", func(t *testing.T, v Value) { expectBool(t, v, false) }},
		{"logical-or", "false || true;", func(t *testing.T, v Value) { expectBool(t, v, true) }},
		{"precedence", "1 + 2 * 3;", func(t *testing.T, v Value) { expectNumber(t, v, 7) }},
		{"negate", "-(2 + 3);", func(t *testing.T, v Value) { expectNumber(t, v, -5) }},
		{"not", "!0;", func(t *testing.T, v Value) { expectBool(t, v, true) }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			val, _ := run(t, tc.src)
			tc.assert(t, val)
		})
	}
}

func TestStringConcatenation(t *testing.T) {
	val, _ := run(t, "'n=' + 4;")
	if val.Type != TypeString || val.Str() != "n=4" {
		t.Fatalf("expected \"n=4\", got %v", val)
	}
}

func TestShortCircuit(t *testing.T) {
	// The right operands refer to an unbound name and must not run.
	val, _ := run(t, "false && missing;")
	expectBool(t, val, false)
	val, _ = run(t, "true || missing;")
	expectBool(t, val, true)
}

func TestVariablesAndScopes(t *testing.T) {
	val, _ := run(t, `
var x = 1;
{ var x = 10; x = x + 1; }
x = x + 1;
x;`)
	expectNumber(t, val, 2)
}

func TestFunctionsAndRecursion(t *testing.T) {
	val, _ := run(t, `
function fact(n) {
  if (n <= 1) return 1;
  return n * fact(n - 1);
}
fact(10);`)
	expectNumber(t, val, 3628800)
}

func TestClosureCapturesDefiningScope(t *testing.T) {
	val, _ := run(t, `
var count = 0;
function bump() { count = count + 1; return count; }
bump(); bump();
count;`)
	expectNumber(t, val, 2)
}

func TestWhileLoop(t *testing.T) {
	val, _ := run(t, `
var i = 0;
var sum = 0;
while (i < 5) { i = i + 1; sum = sum + i; }
sum;`)
	expectNumber(t, val, 15)
}

func TestMainRunsAfterTopLevel(t *testing.T) {
	val, out := run(t, `
function square(x) { return x * x; }
function main() {
  assert(square(3) == 9);
  assert(square(2) == 5);
  print('done', square(4));
  return 7;
}`)
	expectNumber(t, val, 7)
	if out != ".Fdone 16\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestTopLevelReturn(t *testing.T) {
	val, _ := run(t, "return 3; 4;")
	expectNumber(t, val, 3)
}

func TestPrimitives(t *testing.T) {
	val, _ := run(t, "len('héllo');")
	expectNumber(t, val, 5)
	val, _ = run(t, "num('2.5') + 1;")
	expectNumber(t, val, 3.5)
	val, _ = run(t, "str(1.5);")
	if val.Str() != "1.5" {
		t.Fatalf("expected \"1.5\", got %v", val)
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 / 0;", "division by zero"},
		{"5 % 0;", "division by zero"},
		{"missing;", "unbound variable: missing"},
		{"y = 1;", "unbound variable: y"},
		{"-'a';", "cannot negate string"},
		{"1 - 'a';", "expects numbers"},
		{"function f(a) { return a; } f(1, 2);", "expects 1 arguments, got 2"},
		{"var x = 1; x();", "not callable"},
		{"len(1);", "len: expects a string"},
		{"function loop() { return loop(); } loop();", "call depth exceeded"},
		{"function f() { var a = 1; var a = 2; } f();", "a is already declared"},
		{"{ let b = 1; let b = 2; }", "b is already declared"},
	}
	for _, tc := range tests {
		in := New(&strings.Builder{})
		_, err := EvaluateString(in, tc.src, frontend.Combinator)
		if err == nil {
			t.Fatalf("%q: expected error", tc.src)
		}
		var rerr *RuntimeError
		if !errors.As(err, &rerr) {
			t.Fatalf("%q: expected *RuntimeError, got %T", tc.src, err)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%q: error %q lacks %q", tc.src, err, tc.want)
		}
	}
}

func TestGlobalRedeclaration(t *testing.T) {
	val, _ := run(t, "var x = 1; var x = x + 1; x;")
	expectNumber(t, val, 2)
}

func TestPrimitiveErrorKeepsPosition(t *testing.T) {
	in := New(&strings.Builder{})
	inner := &RuntimeError{Pos: ast.Position{Line: 7, Column: 3}, Msg: "inner failure"}
	in.Global.Define("fail", PrimitiveValue(func(*Interpreter, []Value) (Value, error) {
		return Value{}, fmt.Errorf("fail: %w", inner)
	}))
	_, err := EvaluateString(in, "fail();", frontend.Combinator)
	var rerr *RuntimeError
	if !errors.As(err, &rerr) || rerr != inner {
		t.Fatalf("expected the primitive's own error, got %v", err)
	}
	if !strings.Contains(err.Error(), "7:3: inner failure") {
		t.Fatalf("unexpected message %q", err)
	}
}

func TestRuntimeErrorPosition(t *testing.T) {
	in := New(&strings.Builder{})
	_, err := EvaluateString(in, "var a = 1;\nvar b = a / 0;", frontend.Combinator)
	if err == nil || !strings.HasPrefix(err.Error(), "2:") {
		t.Fatalf("expected error on line 2, got %v", err)
	}
}

func TestStrategiesEvaluateAlike(t *testing.T) {
	src := "var x = 2; x = x * 3 + 1; x ** 2;"
	for _, s := range []frontend.Strategy{frontend.Combinator, frontend.Reducer} {
		val, err := EvaluateString(New(&strings.Builder{}), src, s)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		expectNumber(t, val, 49)
	}
}

func TestEvalNilEnvUsesGlobal(t *testing.T) {
	in := New(&strings.Builder{})
	if _, err := in.Eval(&ast.VarDecl{Name: "k", Value: ast.Num(4)}, nil); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	val, err := in.Global.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	expectNumber(t, val, 4)
}

func TestEvaluateFileSkipsShebang(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.pv")
	if err := os.WriteFile(path, []byte("#!/usr/bin/env pivot\nprint(1 + 1);\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	var out strings.Builder
	if _, err := EvaluateFile(New(&out), path, frontend.Reducer); err != nil {
		t.Fatalf("EvaluateFile: %v", err)
	}
	if out.String() != "2\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestValueRendering(t *testing.T) {
	tests := []struct {
		val     Value
		display string
		str     string
	}{
		{Nil, "nil", "nil"},
		{BoolValue(true), "true", "true"},
		{NumberValue(3), "3", "3"},
		{NumberValue(0.5), "0.5", "0.5"},
		{StringValue("a\"b"), "a\"b", `"a\"b"`},
		{FunctionValue(&Function{Name: "f"}), "<function f>", "<function f>"},
	}
	for _, tc := range tests {
		if got := tc.val.Display(); got != tc.display {
			t.Fatalf("Display() = %q, want %q", got, tc.display)
		}
		if got := tc.val.String(); got != tc.str {
			t.Fatalf("String() = %q, want %q", got, tc.str)
		}
	}
}

func TestEnvSetAndParent(t *testing.T) {
	global := NewEnv(nil)
	global.Define("x", NumberValue(1))
	child := NewEnv(global)
	if child.Parent() != global {
		t.Fatalf("unexpected parent")
	}
	if err := child.Set("x", NumberValue(2)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, _ := global.Get("x")
	expectNumber(t, val, 2)
	if err := child.Set("y", Nil); err == nil {
		t.Fatalf("expected unbound error")
	}
}

func TestEnvDeclare(t *testing.T) {
	global := NewEnv(nil)
	if err := global.Declare("x", NumberValue(1)); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if err := global.Declare("x", NumberValue(2)); err != nil {
		t.Fatalf("global redeclaration: %v", err)
	}
	block := NewEnv(global)
	if err := block.Declare("x", NumberValue(3)); err != nil {
		t.Fatalf("shadowing declaration: %v", err)
	}
	if err := block.Declare("x", NumberValue(4)); err == nil || !strings.Contains(err.Error(), "already declared") {
		t.Fatalf("expected redeclaration error, got %v", err)
	}
	val, _ := global.Get("x")
	expectNumber(t, val, 2)
}
