package extractor

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Expr is a default value kept as source text because it is not a literal,
// e.g. a name or a call. It renders verbatim.
type Expr string

func (e Expr) String() string { return string(e) }

// ParseLiteral decodes a Python-style literal: None, True, False, numbers,
// quoted strings, lists, tuples and dicts. Anything else becomes an Expr.
func ParseLiteral(text string) any {
	text = strings.TrimSpace(text)
	if text == "" {
		return Expr("")
	}
	src := text
	if strings.HasPrefix(src, "(") && strings.HasSuffix(src, ")") {
		src = "[" + src[1:len(src)-1] + "]"
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(src), &node); err != nil || len(node.Content) == 0 {
		return Expr(text)
	}
	v, err := decodeNode(node.Content[0])
	if err != nil {
		return Expr(text)
	}
	return v
}

// ParseValue is ParseLiteral for command-line input, where a bare word is
// taken as a string.
func ParseValue(text string) any {
	v := ParseLiteral(text)
	if e, ok := v.(Expr); ok {
		return string(e)
	}
	return v
}

func decodeNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
			return n.Value, nil
		}
		switch n.Value {
		case "None":
			return nil, nil
		case "True":
			return true, nil
		case "False":
			return false, nil
		}
		if n.Tag == "!!int" || n.Tag == "!!float" {
			var v any
			if err := n.Decode(&v); err != nil {
				return nil, err
			}
			return v, nil
		}
		return Expr(n.Value), nil

	case yaml.SequenceNode:
		if n.Style&yaml.FlowStyle == 0 {
			return nil, fmt.Errorf("block sequence at line %d", n.Line)
		}
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case yaml.MappingNode:
		if n.Style&yaml.FlowStyle == 0 {
			return nil, fmt.Errorf("block mapping at line %d", n.Line)
		}
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := decodeNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[n.Content[i].Value] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported literal node kind %d", n.Kind)
}
