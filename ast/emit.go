package ast

import (
	"fmt"
	"math"
)

// Emitter receives the instructions produced by Node.Emit. The caller
// supplies the side effect: writing assembly text, collecting lines, etc.
type Emitter interface {
	// Emit writes one formatted instruction or directive.
	Emit(format string, args ...interface{})
	// Label returns a fresh label name starting with prefix.
	Label(prefix string) string
	// Scope returns the frame layout of the function being emitted, or nil
	// at top level.
	Scope() *Scope
	SetScope(s *Scope)
}

// Scope maps the parameters and locals of one function to fp-relative
// offsets. Parameters are spilled right after the frame pointer is set
// up; locals follow them, one word each.
type Scope struct {
	slots  map[string]int
	next   int
	locals int
}

// NewFunctionScope lays out a frame whose first four words hold params.
func NewFunctionScope(params []string) *Scope {
	s := &Scope{slots: make(map[string]int), next: -20}
	for i, p := range params {
		s.slots[p] = -16 + 4*i
	}
	return s
}

// NewMainScope lays out the frame of the program entry point.
func NewMainScope() *Scope {
	return &Scope{slots: make(map[string]int), next: -4}
}

// Lookup returns the fp-relative offset of name.
func (s *Scope) Lookup(name string) (int, bool) {
	off, ok := s.slots[name]
	return off, ok
}

// Declare allocates a slot for name unless it already has one.
func (s *Scope) Declare(name string) int {
	if off, ok := s.slots[name]; ok {
		return off
	}
	off := s.next
	s.slots[name] = off
	s.next -= 4
	s.locals++
	return off
}

// FrameSize is the number of bytes reserved below the spilled parameters,
// kept 8-byte aligned.
func (s *Scope) FrameSize() int {
	n := 4 * s.locals
	return (n + 7) &^ 7
}

// declareLocals reserves slots for every variable declared anywhere in
// stmts, so that locals in loops reuse one slot.
func declareLocals(s *Scope, stmts []Node) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *VarDecl:
			s.Declare(n.Name)
		case *Block:
			declareLocals(s, n.Stmts)
		case *If:
			declareLocals(s, []Node{n.Then})
			if n.Else != nil {
				declareLocals(s, []Node{n.Else})
			}
		case *While:
			declareLocals(s, []Node{n.Body})
		}
	}
}

func emitError(pos Position, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %s", pos, fmt.Sprintf(format, args...))
}

func (n *Number) Emit(e Emitter) error {
	if n.Value != math.Trunc(n.Value) || math.Abs(n.Value) > math.MaxUint32 {
		return emitError(n.Posn, "cannot emit non-integer number %v", n.Value)
	}
	e.Emit("  ldr r0, =%d", int64(n.Value))
	return nil
}

func (n *Str) Emit(e Emitter) error {
	return emitError(n.Posn, "cannot emit string literal %q", n.Value)
}

func (n *Ident) Emit(e Emitter) error {
	off, err := lookup(e, n.Name, n.Posn)
	if err != nil {
		return err
	}
	e.Emit("  ldr r0, [fp, #%d]", off)
	return nil
}

func lookup(e Emitter, name string, pos Position) (int, error) {
	scope := e.Scope()
	if scope == nil {
		return 0, emitError(pos, "variable %s used outside a function", name)
	}
	off, ok := scope.Lookup(name)
	if !ok {
		return 0, emitError(pos, "undefined variable: %s", name)
	}
	return off, nil
}

func (n *Unary) Emit(e Emitter) error {
	if err := n.Operand.Emit(e); err != nil {
		return err
	}
	switch n.Op {
	case OpNot:
		e.Emit("  cmp r0, #0")
		e.Emit("  moveq r0, #1")
		e.Emit("  movne r0, #0")
	case OpNegate:
		e.Emit("  rsb r0, r0, #0")
	default:
		return emitError(n.Posn, "unknown unary operator %s", n.Op)
	}
	return nil
}

// conditions holds the condition code that sets r0 to 1 after cmp r1, r0,
// and its inverse.
var conditions = map[BinaryOp][2]string{
	OpEqual:        {"eq", "ne"},
	OpNotEqual:     {"ne", "eq"},
	OpLess:         {"lt", "ge"},
	OpLessEqual:    {"le", "gt"},
	OpGreater:      {"gt", "le"},
	OpGreaterEqual: {"ge", "lt"},
}

func (n *Binary) Emit(e Emitter) error {
	switch n.Op {
	case OpAnd, OpOr:
		return n.emitLogical(e)
	case OpPower:
		return emitError(n.Posn, "exponentiation is not supported by the code generator")
	}

	if err := n.Left.Emit(e); err != nil {
		return err
	}
	e.Emit("  push {r0, ip}")
	if err := n.Right.Emit(e); err != nil {
		return err
	}
	e.Emit("  pop {r1, ip}")

	switch n.Op {
	case OpAdd:
		e.Emit("  add r0, r1, r0")
	case OpSubtract:
		e.Emit("  sub r0, r1, r0")
	case OpMultiply:
		e.Emit("  mul r0, r1, r0")
	case OpDivide:
		e.Emit("  udiv r0, r1, r0")
	case OpModulo:
		e.Emit("  udiv r2, r1, r0")
		e.Emit("  mls r0, r2, r0, r1")
	default:
		cond, ok := conditions[n.Op]
		if !ok {
			return emitError(n.Posn, "unknown binary operator %s", n.Op)
		}
		e.Emit("  cmp r1, r0")
		e.Emit("  mov%s r0, #1", cond[0])
		e.Emit("  mov%s r0, #0", cond[1])
	}
	return nil
}

func (n *Binary) emitLogical(e Emitter) error {
	short := e.Label("short")
	end := e.Label("end")
	branch, result, other := "beq", 0, 1
	if n.Op == OpOr {
		branch, result, other = "bne", 1, 0
	}
	for _, side := range []Node{n.Left, n.Right} {
		if err := side.Emit(e); err != nil {
			return err
		}
		e.Emit("  cmp r0, #0")
		e.Emit("  %s %s", branch, short)
	}
	e.Emit("  mov r0, #%d", other)
	e.Emit("  b %s", end)
	e.Emit("%s:", short)
	e.Emit("  mov r0, #%d", result)
	e.Emit("%s:", end)
	return nil
}

// maxArgs is the number of arguments passed in registers.
const maxArgs = 4

func (n *Call) Emit(e Emitter) error {
	if len(n.Args) > maxArgs {
		return emitError(n.Posn, "call to %s: more than %d arguments", n.Callee, maxArgs)
	}
	if len(n.Args) == 0 {
		e.Emit("  bl %s", n.Callee)
		return nil
	}
	e.Emit("  sub sp, sp, #16")
	for i, arg := range n.Args {
		if err := arg.Emit(e); err != nil {
			return err
		}
		e.Emit("  str r0, [sp, #%d]", 4*i)
	}
	e.Emit("  pop {r0, r1, r2, r3}")
	e.Emit("  bl %s", n.Callee)
	return nil
}

func (n *Return) Emit(e Emitter) error {
	if e.Scope() == nil {
		return emitError(n.Posn, "return outside a function")
	}
	if n.Result != nil {
		if err := n.Result.Emit(e); err != nil {
			return err
		}
	} else {
		e.Emit("  mov r0, #0")
	}
	e.Emit("  mov sp, fp")
	e.Emit("  pop {fp, pc}")
	return nil
}

func (n *Block) Emit(e Emitter) error {
	return emitAll(e, n.Stmts)
}

func emitAll(e Emitter, stmts []Node) error {
	for _, stmt := range stmts {
		if err := stmt.Emit(e); err != nil {
			return err
		}
	}
	return nil
}

func (n *If) Emit(e Emitter) error {
	elseLabel := e.Label("else")
	endLabel := e.Label("endif")
	if err := n.Cond.Emit(e); err != nil {
		return err
	}
	e.Emit("  cmp r0, #0")
	e.Emit("  beq %s", elseLabel)
	if err := n.Then.Emit(e); err != nil {
		return err
	}
	e.Emit("  b %s", endLabel)
	e.Emit("%s:", elseLabel)
	if n.Else != nil {
		if err := n.Else.Emit(e); err != nil {
			return err
		}
	}
	e.Emit("%s:", endLabel)
	return nil
}

func (n *While) Emit(e Emitter) error {
	loop := e.Label("loop")
	end := e.Label("endloop")
	e.Emit("%s:", loop)
	if err := n.Cond.Emit(e); err != nil {
		return err
	}
	e.Emit("  cmp r0, #0")
	e.Emit("  beq %s", end)
	if err := n.Body.Emit(e); err != nil {
		return err
	}
	e.Emit("  b %s", loop)
	e.Emit("%s:", end)
	return nil
}

func (n *VarDecl) Emit(e Emitter) error {
	scope := e.Scope()
	if scope == nil {
		return emitError(n.Posn, "declaration of %s outside a function", n.Name)
	}
	if err := n.Value.Emit(e); err != nil {
		return err
	}
	e.Emit("  str r0, [fp, #%d]", scope.Declare(n.Name))
	return nil
}

func (n *Assign) Emit(e Emitter) error {
	off, err := lookup(e, n.Name, n.Posn)
	if err != nil {
		return err
	}
	if err := n.Value.Emit(e); err != nil {
		return err
	}
	e.Emit("  str r0, [fp, #%d]", off)
	return nil
}

func (n *FuncDef) Emit(e Emitter) error {
	if e.Scope() != nil {
		return emitError(n.Posn, "nested function %s is not supported", n.Name)
	}
	if len(n.Params) > maxArgs {
		return emitError(n.Posn, "function %s: more than %d parameters", n.Name, maxArgs)
	}
	scope := NewFunctionScope(n.Params)
	var body []Node
	if n.Body != nil {
		body = n.Body.Stmts
	}
	declareLocals(scope, body)

	e.Emit(".global %s", n.Name)
	e.Emit("%s:", n.Name)
	e.Emit("  push {fp, lr}")
	e.Emit("  mov fp, sp")
	e.Emit("  push {r0, r1, r2, r3}")
	return emitFrame(e, scope, body)
}

func (n *Main) Emit(e Emitter) error {
	if e.Scope() != nil {
		return emitError(n.Posn, "main must be defined at top level")
	}
	scope := NewMainScope()
	declareLocals(scope, n.Stmts)

	e.Emit(".global main")
	e.Emit("main:")
	e.Emit("  push {fp, lr}")
	e.Emit("  mov fp, sp")
	return emitFrame(e, scope, n.Stmts)
}

// emitFrame reserves the locals of scope, emits body in it and returns 0.
func emitFrame(e Emitter, scope *Scope, body []Node) error {
	if size := scope.FrameSize(); size > 0 {
		e.Emit("  sub sp, sp, #%d", size)
	}
	e.SetScope(scope)
	defer e.SetScope(nil)
	if err := emitAll(e, body); err != nil {
		return err
	}
	e.Emit("  mov r0, #0")
	e.Emit("  mov sp, fp")
	e.Emit("  pop {fp, pc}")
	return nil
}

func (n *Assert) Emit(e Emitter) error {
	if err := n.Cond.Emit(e); err != nil {
		return err
	}
	e.Emit("  cmp r0, #1")
	e.Emit("  moveq r0, #'.'")
	e.Emit("  movne r0, #'F'")
	e.Emit("  bl putchar")
	return nil
}
