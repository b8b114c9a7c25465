package parser

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/sergev/pivot/ast"
)

func position(p lexer.Position) ast.Position {
	return ast.Position{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

// ident matches a name that is not a reserved word.
func ident(s Source) (lexer.Token, Source, bool) {
	tok := s.peek()
	if tok.Type != identToken || reserved[tok.Value] {
		s.fail("identifier")
		return lexer.Token{}, s, false
	}
	return tok, s.next(), true
}

type operation struct {
	op    lexer.Token
	right ast.Node
}

// infixLeft parses operand (op operand)* and folds it to the left.
func infixLeft(operand Parser[ast.Node], ops ...string) Parser[ast.Node] {
	alternatives := make([]Parser[lexer.Token], len(ops))
	for i, op := range ops {
		alternatives[i] = Punct(op)
	}
	tail := ZeroOrMore(Bind(Or(alternatives...), func(op lexer.Token) Parser[operation] {
		return Map(operand, func(right ast.Node) operation { return operation{op, right} })
	}))
	return Bind(operand, func(first ast.Node) Parser[ast.Node] {
		return Map(tail, func(rest []operation) ast.Node {
			result := first
			for _, o := range rest {
				binop, _ := ast.BinaryOpFromSymbol(o.op.Value)
				result = &ast.Binary{Op: binop, Left: result, Right: o.right, Posn: position(o.op.Pos)}
			}
			return result
		})
	})
}

// commaList parses zero or more items separated by commas.
func commaList[T any](item Parser[T]) Parser[[]T] {
	nonEmpty := Bind(item, func(first T) Parser[[]T] {
		return Map(ZeroOrMore(And(Punct(","), item)), func(rest []T) []T {
			return append([]T{first}, rest...)
		})
	})
	return Or(nonEmpty, Constant([]T{}))
}

// between parses open p close and keeps the result of p.
func between[T any](open string, p Parser[T], close string) Parser[T] {
	return And(Punct(open), Bind(p, func(v T) Parser[T] {
		return And(Punct(close), Constant(v))
	}))
}

func buildGrammar() Parser[*ast.Block] {
	expression := NewRule[ast.Node]("expression")
	statement := NewRule[ast.Node]("statement")
	unary := NewRule[ast.Node]("unary")
	power := NewRule[ast.Node]("power")

	// Expressions.
	number := Map(Token(numberToken, "number"), func(tok lexer.Token) ast.Node {
		v, _ := strconv.ParseFloat(tok.Value, 64)
		return &ast.Number{Value: v, Posn: position(tok.Pos)}
	})
	str := Map(Token(stringToken, "string"), func(tok lexer.Token) ast.Node {
		return &ast.Str{Value: unquote(tok.Value), Posn: position(tok.Pos)}
	})
	identifier := Map(Parser[lexer.Token](ident), func(tok lexer.Token) ast.Node {
		return &ast.Ident{Name: tok.Value, Posn: position(tok.Pos)}
	})
	call := Bind(Parser[lexer.Token](ident), func(callee lexer.Token) Parser[ast.Node] {
		args := between("(", commaList(expression.Parser()), ")")
		return Map(args, func(args []ast.Node) ast.Node {
			pos := position(callee.Pos)
			if callee.Value == "assert" && len(args) == 1 {
				return &ast.Assert{Cond: args[0], Posn: pos}
			}
			return &ast.Call{Callee: callee.Value, Args: args, Posn: pos}
		})
	})
	atom := Or(call, identifier, number, str, between("(", expression.Parser(), ")"))

	prefix := func(sym string, op ast.UnaryOp) Parser[ast.Node] {
		return Bind(Punct(sym), func(tok lexer.Token) Parser[ast.Node] {
			return Map(unary.Parser(), func(operand ast.Node) ast.Node {
				return &ast.Unary{Op: op, Operand: operand, Posn: position(tok.Pos)}
			})
		})
	}
	plus := Bind(Punct("+"), func(lexer.Token) Parser[ast.Node] { return unary.Parser() })
	unary.Define(Or(prefix("!", ast.OpNot), prefix("-", ast.OpNegate), plus, atom))

	power.Define(Bind(unary.Parser(), func(base ast.Node) Parser[ast.Node] {
		raised := Bind(Punct("**"), func(tok lexer.Token) Parser[ast.Node] {
			return Map(power.Parser(), func(exp ast.Node) ast.Node {
				return &ast.Binary{Op: ast.OpPower, Left: base, Right: exp, Posn: position(tok.Pos)}
			})
		})
		return Or(raised, Constant(base))
	}))

	product := infixLeft(power.Parser(), "*", "/", "%")
	sum := infixLeft(product, "+", "-")
	comparison := infixLeft(sum, "==", "!=", "<=", ">=", "<", ">")
	conjunction := infixLeft(comparison, "&&")
	disjunction := infixLeft(conjunction, "||")
	expression.Define(disjunction)

	// Statements. The terminating semicolon may be omitted at end of input.
	terminator := Or(Punct(";"), EOF())
	terminated := func(p Parser[ast.Node]) Parser[ast.Node] {
		return Bind(p, func(n ast.Node) Parser[ast.Node] {
			return And(terminator, Constant(n))
		})
	}

	returnStmt := Bind(Keyword("return"), func(tok lexer.Token) Parser[ast.Node] {
		return terminated(Map(Optional(expression.Parser()), func(result ast.Node) ast.Node {
			return &ast.Return{Result: result, Posn: position(tok.Pos)}
		}))
	})

	blockStmt := Bind(Punct("{"), func(tok lexer.Token) Parser[*ast.Block] {
		return Bind(ZeroOrMore(statement.Parser()), func(stmts []ast.Node) Parser[*ast.Block] {
			if stmts == nil {
				stmts = []ast.Node{}
			}
			return And(Punct("}"), Constant(&ast.Block{Stmts: stmts, Posn: position(tok.Pos)}))
		})
	})

	functionStmt := Bind(Keyword("function"), func(tok lexer.Token) Parser[ast.Node] {
		return Bind(Parser[lexer.Token](ident), func(name lexer.Token) Parser[ast.Node] {
			params := between("(", commaList(Parser[lexer.Token](ident)), ")")
			return Bind(params, func(params []lexer.Token) Parser[ast.Node] {
				return Map(blockStmt, func(body *ast.Block) ast.Node {
					pos := position(tok.Pos)
					if name.Value == "main" {
						return &ast.Main{Stmts: body.Stmts, Posn: pos}
					}
					names := make([]string, len(params))
					for i, p := range params {
						names[i] = p.Value
					}
					return &ast.FuncDef{Name: name.Value, Params: names, Body: body, Posn: pos}
				})
			})
		})
	})

	condition := between("(", expression.Parser(), ")")

	ifStmt := Bind(Keyword("if"), func(tok lexer.Token) Parser[ast.Node] {
		return Bind(condition, func(cond ast.Node) Parser[ast.Node] {
			return Bind(statement.Parser(), func(then ast.Node) Parser[ast.Node] {
				alt := Optional(And(Keyword("else"), statement.Parser()))
				return Map(alt, func(alt ast.Node) ast.Node {
					return &ast.If{Cond: cond, Then: then, Else: alt, Posn: position(tok.Pos)}
				})
			})
		})
	})

	whileStmt := Bind(Keyword("while"), func(tok lexer.Token) Parser[ast.Node] {
		return Bind(condition, func(cond ast.Node) Parser[ast.Node] {
			return Map(statement.Parser(), func(body ast.Node) ast.Node {
				return &ast.While{Cond: cond, Body: body, Posn: position(tok.Pos)}
			})
		})
	})

	binding := func(assign Parser[lexer.Token], build func(name, op lexer.Token, value ast.Node) ast.Node) Parser[ast.Node] {
		return Bind(Parser[lexer.Token](ident), func(name lexer.Token) Parser[ast.Node] {
			return Bind(assign, func(op lexer.Token) Parser[ast.Node] {
				return terminated(Map(expression.Parser(), func(value ast.Node) ast.Node {
					return build(name, op, value)
				}))
			})
		})
	}

	varStmt := Bind(Or(Keyword("var"), Keyword("let")), func(tok lexer.Token) Parser[ast.Node] {
		return binding(Punct("="), func(name, _ lexer.Token, value ast.Node) ast.Node {
			return &ast.VarDecl{Name: name.Value, Value: value, Posn: position(tok.Pos)}
		})
	})

	// Compound assignment x op= v stores x op v.
	assignOp := Or(Punct("="), Punct("+="), Punct("-="), Punct("*="), Punct("/="), Punct("%="))
	assignStmt := binding(assignOp, func(name, op lexer.Token, value ast.Node) ast.Node {
		if op.Value != "=" {
			binop, _ := ast.BinaryOpFromSymbol(strings.TrimSuffix(op.Value, "="))
			value = &ast.Binary{
				Op:    binop,
				Left:  &ast.Ident{Name: name.Value, Posn: position(name.Pos)},
				Right: value,
				Posn:  position(op.Pos),
			}
		}
		return &ast.Assign{Name: name.Value, Value: value, Posn: position(name.Pos)}
	})

	statement.Define(Or(
		returnStmt,
		functionStmt,
		ifStmt,
		whileStmt,
		varStmt,
		assignStmt,
		Map(blockStmt, func(b *ast.Block) ast.Node { return b }),
		terminated(expression.Parser()),
	))

	return Map(ZeroOrMore(statement.Parser()), func(stmts []ast.Node) *ast.Block {
		if stmts == nil {
			stmts = []ast.Node{}
		}
		return &ast.Block{Stmts: stmts}
	})
}
