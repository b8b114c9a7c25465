package ast

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML serializes node as a YAML document for inspection.
func MarshalYAML(node Node) ([]byte, error) {
	return yaml.Marshal(yamlNode(node))
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}

func mapping(kind string, pos Position, fields ...interface{}) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	m.Content = append(m.Content, scalar("kind"), scalar(kind))
	if pos != (Position{}) {
		m.Content = append(m.Content, scalar("pos"), scalar(pos.String()))
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fields[i].(string)
		var value *yaml.Node
		switch v := fields[i+1].(type) {
		case string:
			value = scalar(v)
		case *yaml.Node:
			value = v
		}
		m.Content = append(m.Content, scalar(key), value)
	}
	return m
}

func sequence(nodes []Node) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, n := range nodes {
		seq.Content = append(seq.Content, yamlNode(n))
	}
	return seq
}

func yamlNode(node Node) *yaml.Node {
	switch n := node.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case *Number:
		return mapping("number", n.Posn, "value", &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!float",
			Value: strconv.FormatFloat(n.Value, 'g', -1, 64),
		})
	case *Str:
		return mapping("string", n.Posn, "value", &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: n.Value,
			Style: yaml.DoubleQuotedStyle,
		})
	case *Ident:
		return mapping("ident", n.Posn, "name", n.Name)
	case *Unary:
		return mapping("unary", n.Posn, "op", n.Op.String(), "operand", yamlNode(n.Operand))
	case *Binary:
		return mapping("binary", n.Posn, "op", n.Op.String(),
			"left", yamlNode(n.Left), "right", yamlNode(n.Right))
	case *Call:
		return mapping("call", n.Posn, "callee", n.Callee, "args", sequence(n.Args))
	case *Return:
		return mapping("return", n.Posn, "result", yamlNode(n.Result))
	case *Block:
		return mapping("block", n.Posn, "stmts", sequence(n.Stmts))
	case *If:
		return mapping("if", n.Posn, "cond", yamlNode(n.Cond),
			"then", yamlNode(n.Then), "else", yamlNode(n.Else))
	case *While:
		return mapping("while", n.Posn, "cond", yamlNode(n.Cond), "body", yamlNode(n.Body))
	case *VarDecl:
		return mapping("var", n.Posn, "name", n.Name, "value", yamlNode(n.Value))
	case *Assign:
		return mapping("assign", n.Posn, "name", n.Name, "value", yamlNode(n.Value))
	case *FuncDef:
		params := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, p := range n.Params {
			params.Content = append(params.Content, scalar(p))
		}
		var body Node
		if n.Body != nil {
			body = n.Body
		}
		return mapping("function", n.Posn, "name", n.Name, "params", params, "body", yamlNode(body))
	case *Main:
		return mapping("main", n.Posn, "stmts", sequence(n.Stmts))
	case *Assert:
		return mapping("assert", n.Posn, "cond", yamlNode(n.Cond))
	default:
		return scalar("unknown")
	}
}
