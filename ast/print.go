package ast

import (
	"strconv"
	"strings"
)

// Sprint renders node as an s-expression, e.g. (+ 2 (* 3 4)).
func Sprint(node Node) string {
	var b strings.Builder
	write(&b, node)
	return b.String()
}

func write(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("nil")
	case *Number:
		b.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *Str:
		b.WriteString(strconv.Quote(n.Value))
	case *Ident:
		b.WriteString(n.Name)
	case *Unary:
		list(b, n.Op.String(), n.Operand)
	case *Binary:
		list(b, n.Op.String(), n.Left, n.Right)
	case *Call:
		b.WriteString("(call ")
		b.WriteString(n.Callee)
		for _, arg := range n.Args {
			b.WriteByte(' ')
			write(b, arg)
		}
		b.WriteByte(')')
	case *Return:
		if n.Result == nil {
			b.WriteString("(return)")
			return
		}
		list(b, "return", n.Result)
	case *Block:
		list(b, "block", n.Stmts...)
	case *If:
		if n.Else == nil {
			list(b, "if", n.Cond, n.Then)
			return
		}
		list(b, "if", n.Cond, n.Then, n.Else)
	case *While:
		list(b, "while", n.Cond, n.Body)
	case *VarDecl:
		list(b, "var "+n.Name, n.Value)
	case *Assign:
		list(b, "set "+n.Name, n.Value)
	case *FuncDef:
		b.WriteString("(function ")
		b.WriteString(n.Name)
		b.WriteString(" (")
		b.WriteString(strings.Join(n.Params, " "))
		b.WriteString(") ")
		if n.Body == nil {
			b.WriteString("nil")
		} else {
			write(b, n.Body)
		}
		b.WriteByte(')')
	case *Main:
		list(b, "main", n.Stmts...)
	case *Assert:
		list(b, "assert", n.Cond)
	default:
		b.WriteString("#<unknown>")
	}
}

func list(b *strings.Builder, head string, items ...Node) {
	b.WriteByte('(')
	b.WriteString(head)
	for _, item := range items {
		b.WriteByte(' ')
		write(b, item)
	}
	b.WriteByte(')')
}
