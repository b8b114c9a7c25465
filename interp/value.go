package interp

import (
	"strconv"

	"github.com/sergev/pivot/ast"
)

// ValueType enumerates the different runtime value categories.
type ValueType int

const (
	TypeNil ValueType = iota
	TypeBool
	TypeNumber
	TypeString
	TypePrimitive
	TypeFunction
)

func (t ValueType) String() string {
	switch t {
	case TypeNil:
		return "nil"
	case TypeBool:
		return "bool"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypePrimitive:
		return "primitive"
	case TypeFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Value represents any runtime object in the interpreter.
type Value struct {
	Type    ValueType
	payload interface{}
}

// Primitive represents a built-in Go function exposed to programs.
type Primitive func(*Interpreter, []Value) (Value, error)

// Function is a user-defined function closing over its defining scope.
type Function struct {
	Name   string
	Params []string
	Body   *ast.Block
	Env    *Env
}

// Nil is the value of statements that produce nothing.
var Nil = Value{Type: TypeNil}

func BoolValue(b bool) Value {
	return Value{Type: TypeBool, payload: b}
}

func NumberValue(f float64) Value {
	return Value{Type: TypeNumber, payload: f}
}

func StringValue(s string) Value {
	return Value{Type: TypeString, payload: s}
}

// PrimitiveValue wraps the primitive function.
func PrimitiveValue(fn Primitive) Value {
	return Value{Type: TypePrimitive, payload: fn}
}

// FunctionValue wraps a user-defined function.
func FunctionValue(fn *Function) Value {
	return Value{Type: TypeFunction, payload: fn}
}

func (v Value) Bool() bool {
	if b, ok := v.payload.(bool); ok {
		return b
	}
	return false
}

func (v Value) Number() float64 {
	if f, ok := v.payload.(float64); ok {
		return f
	}
	return 0
}

func (v Value) Str() string {
	if s, ok := v.payload.(string); ok {
		return s
	}
	return ""
}

func (v Value) Primitive() Primitive {
	if p, ok := v.payload.(Primitive); ok {
		return p
	}
	return nil
}

func (v Value) Function() *Function {
	if f, ok := v.payload.(*Function); ok {
		return f
	}
	return nil
}

// String renders the value as a literal, quoting strings.
func (v Value) String() string {
	if v.Type == TypeString {
		return strconv.Quote(v.Str())
	}
	return v.Display()
}

// Display renders the value the way print shows it.
func (v Value) Display() string {
	switch v.Type {
	case TypeNil:
		return "nil"
	case TypeBool:
		return strconv.FormatBool(v.Bool())
	case TypeNumber:
		return strconv.FormatFloat(v.Number(), 'g', -1, 64)
	case TypeString:
		return v.Str()
	case TypePrimitive:
		return "<primitive>"
	case TypeFunction:
		if fn := v.Function(); fn != nil {
			return "<function " + fn.Name + ">"
		}
		return "<function>"
	default:
		return "<unknown>"
	}
}

// IsTruthy reports whether v counts as true in a condition. Only nil,
// false, zero and the empty string are false.
func IsTruthy(v Value) bool {
	switch v.Type {
	case TypeNil:
		return false
	case TypeBool:
		return v.Bool()
	case TypeNumber:
		return v.Number() != 0
	case TypeString:
		return v.Str() != ""
	default:
		return true
	}
}

// Equal compares two values by type and content. Functions compare by
// identity.
func Equal(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeNil:
		return true
	case TypeBool:
		return a.Bool() == b.Bool()
	case TypeNumber:
		return a.Number() == b.Number()
	case TypeString:
		return a.Str() == b.Str()
	case TypeFunction:
		return a.Function() == b.Function()
	default:
		return false
	}
}
