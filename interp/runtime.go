package interp

import (
	"io"

	"github.com/sergev/pivot/frontend"
)

// EvaluateString parses src with the given strategy and runs it.
func EvaluateString(in *Interpreter, src string, s frontend.Strategy) (Value, error) {
	prog, err := frontend.Parse(src, s)
	if err != nil {
		return Value{}, err
	}
	return in.Run(prog)
}

// EvaluateReader consumes all of r and runs it.
func EvaluateReader(in *Interpreter, r io.Reader, s frontend.Strategy) (Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Value{}, err
	}
	return EvaluateString(in, string(data), s)
}

// EvaluateFile loads and runs a source file, allowing a #! first line.
func EvaluateFile(in *Interpreter, path string, s frontend.Strategy) (Value, error) {
	src, err := frontend.ReadFile(path)
	if err != nil {
		return Value{}, err
	}
	return EvaluateString(in, src, s)
}
