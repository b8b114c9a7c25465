package tree

import (
	"github.com/sergev/pivot/lexer"
)

// AssignLevels returns a copy of tokens annotated with nesting levels and
// the deepest level seen. Both delimiters of a pair carry the level of the
// contents between them.
func AssignLevels(tokens []lexer.Token) ([]lexer.Token, int, error) {
	out := make([]lexer.Token, len(tokens))
	copy(out, tokens)

	var stack []lexer.Token
	deepest, opens, closes := 0, 0, 0
	for i := range out {
		tok := &out[i]
		if tok.Kind != lexer.Delimiter {
			tok.Level = len(stack)
			continue
		}
		if tok.Subkind == lexer.Left {
			opens++
			stack = append(stack, *tok)
			tok.Level = len(stack)
			if tok.Level > deepest {
				deepest = tok.Level
			}
			continue
		}
		closes++
		if len(stack) == 0 {
			return nil, 0, &UnbalancedDelimiterError{
				Msg:   "unexpected " + tok.Family.Close(),
				Loc:   tok.Loc,
				Open:  opens,
				Close: closes,
			}
		}
		top := stack[len(stack)-1]
		if top.Family != tok.Family {
			return nil, 0, &UnbalancedDelimiterError{
				Msg:   "expected " + top.Family.Close() + " to close " + top.Family.Open() + " at " + top.Loc.String() + ", found " + tok.Family.Close(),
				Loc:   tok.Loc,
				Open:  opens,
				Close: closes,
			}
		}
		tok.Level = len(stack)
		stack = stack[:len(stack)-1]
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return nil, 0, &UnbalancedDelimiterError{
			Msg:      "unclosed " + top.Family.Open(),
			Loc:      top.Loc,
			Open:     opens,
			Close:    closes,
			unclosed: true,
		}
	}
	return out, deepest, nil
}

type item struct {
	node   Node
	level  int
	open   bool
	close  bool
	family lexer.Family
	loc    lexer.Location
}

// Fold folds the tokens between every matched delimiter pair into a Group
// node, deepest level first, so each group's children are already grouped
// when it is formed.
func Fold(tokens []lexer.Token) ([]Node, error) {
	leveled, deepest, err := AssignLevels(tokens)
	if err != nil {
		return nil, err
	}

	items := make([]item, len(leveled))
	for i, tok := range leveled {
		items[i] = item{
			node:   &Leaf{Token: tok},
			level:  tok.Level,
			open:   tok.Kind == lexer.Delimiter && tok.Subkind == lexer.Left,
			close:  tok.Kind == lexer.Delimiter && tok.Subkind == lexer.Right,
			family: tok.Family,
			loc:    tok.Loc,
		}
	}

	for lvl := deepest; lvl >= 1; lvl-- {
		next := make([]item, 0, len(items))
		for i := 0; i < len(items); i++ {
			it := items[i]
			if !it.open || it.level != lvl {
				next = append(next, it)
				continue
			}
			g := &Group{Family: it.family, At: it.loc, Children: []Node{}}
			j := i + 1
			for ; !(items[j].close && items[j].level == lvl); j++ {
				g.Children = append(g.Children, items[j].node)
			}
			next = append(next, item{node: g, level: lvl - 1, loc: it.loc})
			i = j
		}
		items = next
	}

	nodes := make([]Node, len(items))
	for i, it := range items {
		nodes[i] = it.node
	}
	return nodes, nil
}
