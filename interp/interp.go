// Package interp evaluates Pivot programs directly from the AST.
package interp

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sergev/pivot/ast"
)

const maxCallDepth = 10000

// Interpreter holds the global environment and the output stream used by
// print and assert.
type Interpreter struct {
	Global *Env
	Out    io.Writer

	main  *Function
	depth int
}

// New constructs an interpreter with the builtins installed. A nil out
// writes to standard output.
func New(out io.Writer) *Interpreter {
	if out == nil {
		out = os.Stdout
	}
	in := &Interpreter{Global: NewEnv(nil), Out: out}
	installPrimitives(in)
	return in
}

// Run evaluates the top-level statements in the global environment. When
// the program declares a main function it is invoked afterwards and its
// result returned; otherwise the value of the last statement is returned.
func (in *Interpreter) Run(prog *ast.Block) (Value, error) {
	in.main = nil
	result := Nil
	for _, stmt := range prog.Stmts {
		val, err := in.Eval(stmt, in.Global)
		if err != nil {
			if ret, ok := asReturn(err); ok {
				return ret.value, nil
			}
			return Value{}, err
		}
		result = val
	}
	if in.main != nil {
		return in.apply(in.main, nil, prog.Pos())
	}
	return result, nil
}

// Eval evaluates node in env. A nil env means the global environment.
func (in *Interpreter) Eval(node ast.Node, env *Env) (Value, error) {
	if env == nil {
		env = in.Global
	}
	switch n := node.(type) {
	case *ast.Number:
		return NumberValue(n.Value), nil
	case *ast.Str:
		return StringValue(n.Value), nil
	case *ast.Ident:
		val, err := env.Get(n.Name)
		if err != nil {
			return Value{}, &RuntimeError{Pos: n.Posn, Msg: err.Error()}
		}
		return val, nil
	case *ast.Unary:
		return in.evalUnary(n, env)
	case *ast.Binary:
		return in.evalBinary(n, env)
	case *ast.Call:
		return in.evalCall(n, env)
	case *ast.Return:
		val := Nil
		if n.Result != nil {
			var err error
			if val, err = in.Eval(n.Result, env); err != nil {
				return Value{}, err
			}
		}
		return Value{}, &returnSignal{value: val}
	case *ast.Block:
		return in.evalSequence(n.Stmts, NewEnv(env))
	case *ast.If:
		cond, err := in.Eval(n.Cond, env)
		if err != nil {
			return Value{}, err
		}
		if IsTruthy(cond) {
			return in.Eval(n.Then, env)
		}
		if n.Else != nil {
			return in.Eval(n.Else, env)
		}
		return Nil, nil
	case *ast.While:
		for {
			cond, err := in.Eval(n.Cond, env)
			if err != nil {
				return Value{}, err
			}
			if !IsTruthy(cond) {
				return Nil, nil
			}
			if _, err := in.Eval(n.Body, env); err != nil {
				return Value{}, err
			}
		}
	case *ast.VarDecl:
		val, err := in.Eval(n.Value, env)
		if err != nil {
			return Value{}, err
		}
		if err := env.Declare(n.Name, val); err != nil {
			return Value{}, &RuntimeError{Pos: n.Posn, Msg: err.Error()}
		}
		return val, nil
	case *ast.Assign:
		val, err := in.Eval(n.Value, env)
		if err != nil {
			return Value{}, err
		}
		if err := env.Set(n.Name, val); err != nil {
			return Value{}, &RuntimeError{Pos: n.Posn, Msg: err.Error()}
		}
		return val, nil
	case *ast.FuncDef:
		fn := &Function{Name: n.Name, Params: n.Params, Body: n.Body, Env: env}
		val := FunctionValue(fn)
		env.Define(n.Name, val)
		return val, nil
	case *ast.Main:
		fn := &Function{Name: "main", Body: &ast.Block{Stmts: n.Stmts, Posn: n.Posn}, Env: env}
		env.Define("main", FunctionValue(fn))
		if env == in.Global {
			in.main = fn
		}
		return FunctionValue(fn), nil
	case *ast.Assert:
		cond, err := in.Eval(n.Cond, env)
		if err != nil {
			return Value{}, err
		}
		mark := "F"
		if IsTruthy(cond) {
			mark = "."
		}
		if _, err := io.WriteString(in.Out, mark); err != nil {
			return Value{}, err
		}
		return Nil, nil
	case nil:
		return Nil, nil
	default:
		return Value{}, fmt.Errorf("cannot evaluate %T", node)
	}
}

func (in *Interpreter) evalSequence(stmts []ast.Node, env *Env) (Value, error) {
	result := Nil
	for _, stmt := range stmts {
		val, err := in.Eval(stmt, env)
		if err != nil {
			return Value{}, err
		}
		result = val
	}
	return result, nil
}

func (in *Interpreter) evalUnary(n *ast.Unary, env *Env) (Value, error) {
	val, err := in.Eval(n.Operand, env)
	if err != nil {
		return Value{}, err
	}
	switch n.Op {
	case ast.OpNot:
		return BoolValue(!IsTruthy(val)), nil
	case ast.OpNegate:
		if val.Type != TypeNumber {
			return Value{}, runtimeErrorf(n.Posn, "cannot negate %s", val.Type)
		}
		return NumberValue(-val.Number()), nil
	default:
		return Value{}, runtimeErrorf(n.Posn, "unknown unary operator %s", n.Op)
	}
}

func (in *Interpreter) evalBinary(n *ast.Binary, env *Env) (Value, error) {
	left, err := in.Eval(n.Left, env)
	if err != nil {
		return Value{}, err
	}
	switch n.Op {
	case ast.OpAnd:
		if !IsTruthy(left) {
			return BoolValue(false), nil
		}
		right, err := in.Eval(n.Right, env)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(IsTruthy(right)), nil
	case ast.OpOr:
		if IsTruthy(left) {
			return BoolValue(true), nil
		}
		right, err := in.Eval(n.Right, env)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(IsTruthy(right)), nil
	}
	right, err := in.Eval(n.Right, env)
	if err != nil {
		return Value{}, err
	}
	switch n.Op {
	case ast.OpEqual:
		return BoolValue(Equal(left, right)), nil
	case ast.OpNotEqual:
		return BoolValue(!Equal(left, right)), nil
	case ast.OpAdd:
		if left.Type == TypeString || right.Type == TypeString {
			return StringValue(left.Display() + right.Display()), nil
		}
	case ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual:
		if left.Type == TypeString && right.Type == TypeString {
			return BoolValue(compare(n.Op, stringOrder(left.Str(), right.Str()))), nil
		}
	}
	if left.Type != TypeNumber || right.Type != TypeNumber {
		return Value{}, runtimeErrorf(n.Posn, "operator %s expects numbers, got %s and %s", n.Op, left.Type, right.Type)
	}
	a, b := left.Number(), right.Number()
	switch n.Op {
	case ast.OpAdd:
		return NumberValue(a + b), nil
	case ast.OpSubtract:
		return NumberValue(a - b), nil
	case ast.OpMultiply:
		return NumberValue(a * b), nil
	case ast.OpDivide:
		if b == 0 {
			return Value{}, runtimeErrorf(n.Posn, "division by zero")
		}
		return NumberValue(a / b), nil
	case ast.OpModulo:
		if b == 0 {
			return Value{}, runtimeErrorf(n.Posn, "division by zero")
		}
		return NumberValue(math.Mod(a, b)), nil
	case ast.OpPower:
		return NumberValue(math.Pow(a, b)), nil
	case ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual:
		order := 0
		if a < b {
			order = -1
		} else if a > b {
			order = 1
		}
		return BoolValue(compare(n.Op, order)), nil
	default:
		return Value{}, runtimeErrorf(n.Posn, "unknown binary operator %s", n.Op)
	}
}

func stringOrder(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compare(op ast.BinaryOp, order int) bool {
	switch op {
	case ast.OpLess:
		return order < 0
	case ast.OpLessEqual:
		return order <= 0
	case ast.OpGreater:
		return order > 0
	default:
		return order >= 0
	}
}

func (in *Interpreter) evalCall(n *ast.Call, env *Env) (Value, error) {
	callee, err := env.Get(n.Callee)
	if err != nil {
		return Value{}, &RuntimeError{Pos: n.Posn, Msg: err.Error()}
	}
	args := make([]Value, len(n.Args))
	for i, arg := range n.Args {
		if args[i], err = in.Eval(arg, env); err != nil {
			return Value{}, err
		}
	}
	switch callee.Type {
	case TypePrimitive:
		val, err := callee.Primitive()(in, args)
		if err != nil {
			var rerr *RuntimeError
			if !errors.As(err, &rerr) {
				err = &RuntimeError{Pos: n.Posn, Msg: fmt.Sprintf("%s: %v", n.Callee, err)}
			}
			return Value{}, err
		}
		return val, nil
	case TypeFunction:
		return in.apply(callee.Function(), args, n.Posn)
	default:
		return Value{}, runtimeErrorf(n.Posn, "%s is not callable", n.Callee)
	}
}

func (in *Interpreter) apply(fn *Function, args []Value, pos ast.Position) (Value, error) {
	if len(args) != len(fn.Params) {
		return Value{}, runtimeErrorf(pos, "%s expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	if in.depth >= maxCallDepth {
		return Value{}, runtimeErrorf(pos, "call depth exceeded in %s", fn.Name)
	}
	in.depth++
	defer func() { in.depth-- }()

	frame := NewEnv(fn.Env)
	for i, name := range fn.Params {
		frame.Define(name, args[i])
	}
	if _, err := in.evalSequence(fn.Body.Stmts, frame); err != nil {
		if ret, ok := asReturn(err); ok {
			return ret.value, nil
		}
		return Value{}, err
	}
	return Nil, nil
}
