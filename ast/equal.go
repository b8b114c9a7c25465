package ast

// Equal methods compare variant and fields recursively. Source positions are
// ignored.

func nodesEqual(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func listsEqual(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !nodesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (n *Number) Equal(other Node) bool {
	o, ok := other.(*Number)
	return ok && n != nil && o != nil && n.Value == o.Value
}

func (n *Str) Equal(other Node) bool {
	o, ok := other.(*Str)
	return ok && n != nil && o != nil && n.Value == o.Value
}

func (n *Ident) Equal(other Node) bool {
	o, ok := other.(*Ident)
	return ok && n != nil && o != nil && n.Name == o.Name
}

func (n *Unary) Equal(other Node) bool {
	o, ok := other.(*Unary)
	return ok && n != nil && o != nil && n.Op == o.Op && nodesEqual(n.Operand, o.Operand)
}

func (n *Binary) Equal(other Node) bool {
	o, ok := other.(*Binary)
	return ok && n != nil && o != nil && n.Op == o.Op &&
		nodesEqual(n.Left, o.Left) && nodesEqual(n.Right, o.Right)
}

func (n *Call) Equal(other Node) bool {
	o, ok := other.(*Call)
	return ok && n != nil && o != nil && n.Callee == o.Callee && listsEqual(n.Args, o.Args)
}

func (n *Return) Equal(other Node) bool {
	o, ok := other.(*Return)
	return ok && n != nil && o != nil && nodesEqual(n.Result, o.Result)
}

func (n *Block) Equal(other Node) bool {
	o, ok := other.(*Block)
	return ok && n != nil && o != nil && listsEqual(n.Stmts, o.Stmts)
}

func (n *If) Equal(other Node) bool {
	o, ok := other.(*If)
	return ok && n != nil && o != nil &&
		nodesEqual(n.Cond, o.Cond) && nodesEqual(n.Then, o.Then) && nodesEqual(n.Else, o.Else)
}

func (n *While) Equal(other Node) bool {
	o, ok := other.(*While)
	return ok && n != nil && o != nil && nodesEqual(n.Cond, o.Cond) && nodesEqual(n.Body, o.Body)
}

func (n *VarDecl) Equal(other Node) bool {
	o, ok := other.(*VarDecl)
	return ok && n != nil && o != nil && n.Name == o.Name && nodesEqual(n.Value, o.Value)
}

func (n *Assign) Equal(other Node) bool {
	o, ok := other.(*Assign)
	return ok && n != nil && o != nil && n.Name == o.Name && nodesEqual(n.Value, o.Value)
}

func (n *FuncDef) Equal(other Node) bool {
	o, ok := other.(*FuncDef)
	if !ok || n == nil || o == nil || n.Name != o.Name || !stringsEqual(n.Params, o.Params) {
		return false
	}
	if n.Body == nil || o.Body == nil {
		return n.Body == nil && o.Body == nil
	}
	return n.Body.Equal(o.Body)
}

func (n *Main) Equal(other Node) bool {
	o, ok := other.(*Main)
	return ok && n != nil && o != nil && listsEqual(n.Stmts, o.Stmts)
}

func (n *Assert) Equal(other Node) bool {
	o, ok := other.(*Assert)
	return ok && n != nil && o != nil && nodesEqual(n.Cond, o.Cond)
}

// ClearPositions zeroes the source position of n and every node below it, so
// two trees that are Equal also compare identical field by field.
func ClearPositions(n Node) {
	switch n := n.(type) {
	case *Number:
		n.Posn = Position{}
	case *Str:
		n.Posn = Position{}
	case *Ident:
		n.Posn = Position{}
	case *Unary:
		n.Posn = Position{}
		ClearPositions(n.Operand)
	case *Binary:
		n.Posn = Position{}
		ClearPositions(n.Left)
		ClearPositions(n.Right)
	case *Call:
		n.Posn = Position{}
		clearAll(n.Args)
	case *Return:
		n.Posn = Position{}
		ClearPositions(n.Result)
	case *Block:
		n.Posn = Position{}
		clearAll(n.Stmts)
	case *If:
		n.Posn = Position{}
		ClearPositions(n.Cond)
		ClearPositions(n.Then)
		ClearPositions(n.Else)
	case *While:
		n.Posn = Position{}
		ClearPositions(n.Cond)
		ClearPositions(n.Body)
	case *VarDecl:
		n.Posn = Position{}
		ClearPositions(n.Value)
	case *Assign:
		n.Posn = Position{}
		ClearPositions(n.Value)
	case *FuncDef:
		n.Posn = Position{}
		if n.Body != nil {
			ClearPositions(n.Body)
		}
	case *Main:
		n.Posn = Position{}
		clearAll(n.Stmts)
	case *Assert:
		n.Posn = Position{}
		ClearPositions(n.Cond)
	}
}

func clearAll(nodes []Node) {
	for _, n := range nodes {
		ClearPositions(n)
	}
}
