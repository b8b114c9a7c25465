package interp

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

func installPrimitives(in *Interpreter) {
	prims := map[string]Primitive{
		"print": primPrint,
		"len":   primLen,
		"str":   primStr,
		"num":   primNum,
	}
	for name, fn := range prims {
		in.Global.Define(name, PrimitiveValue(fn))
	}
	in.Global.Define("true", BoolValue(true))
	in.Global.Define("false", BoolValue(false))
	in.Global.Define("nil", Nil)
}

func primPrint(in *Interpreter, args []Value) (Value, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.Display()
	}
	if _, err := fmt.Fprintln(in.Out, strings.Join(parts, " ")); err != nil {
		return Value{}, err
	}
	return Nil, nil
}

func primLen(_ *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("expects 1 argument, got %d", len(args))
	}
	if args[0].Type != TypeString {
		return Value{}, fmt.Errorf("expects a string, got %s", args[0].Type)
	}
	return NumberValue(float64(utf8.RuneCountInString(args[0].Str()))), nil
}

func primStr(_ *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("expects 1 argument, got %d", len(args))
	}
	return StringValue(args[0].Display()), nil
}

func primNum(_ *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("expects 1 argument, got %d", len(args))
	}
	switch args[0].Type {
	case TypeNumber:
		return args[0], nil
	case TypeBool:
		if args[0].Bool() {
			return NumberValue(1), nil
		}
		return NumberValue(0), nil
	case TypeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(args[0].Str()), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q", args[0].Str())
		}
		return NumberValue(f), nil
	default:
		return Value{}, fmt.Errorf("cannot convert %s to number", args[0].Type)
	}
}
