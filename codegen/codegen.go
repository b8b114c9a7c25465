// Package codegen writes ARM-style assembly for a Pivot AST.
package codegen

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sergev/pivot/ast"
)

// Assembler implements ast.Emitter on top of an io.Writer. The first write
// error is kept and reported by Err; later output is dropped.
type Assembler struct {
	w      *bufio.Writer
	labels int
	scope  *ast.Scope
	err    error
}

// NewAssembler returns an assembler writing to w.
func NewAssembler(w io.Writer) *Assembler {
	return &Assembler{w: bufio.NewWriter(w)}
}

func (a *Assembler) Emit(format string, args ...interface{}) {
	if a.err != nil {
		return
	}
	if _, err := fmt.Fprintf(a.w, format+"\n", args...); err != nil {
		a.err = err
	}
}

func (a *Assembler) Label(prefix string) string {
	a.labels++
	return fmt.Sprintf(".L%s%d", prefix, a.labels)
}

func (a *Assembler) Scope() *ast.Scope     { return a.scope }
func (a *Assembler) SetScope(s *ast.Scope) { a.scope = s }

// Flush writes buffered output and returns the first error seen.
func (a *Assembler) Flush() error {
	if a.err != nil {
		return a.err
	}
	a.err = a.w.Flush()
	return a.err
}

// Generate emits node as a complete assembly listing.
func Generate(w io.Writer, node ast.Node) error {
	a := NewAssembler(w)
	if err := node.Emit(a); err != nil {
		return err
	}
	return a.Flush()
}
