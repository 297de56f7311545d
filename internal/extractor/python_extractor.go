package extractor

import (
	"fmt"
	"strings"

	"funcsig/internal/signature"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"go.uber.org/zap"
)

// PythonExtractor implements LanguageExtractor for Python.
type PythonExtractor struct{}

func (p *PythonExtractor) GetLanguage() *sitter.Language {
	return python.GetLanguage()
}

func (p *PythonExtractor) GetQuery() string {
	return `(function_definition) @func`
}

func (p *PythonExtractor) ExtractUnit(captureName string, node *sitter.Node, sourceCode []byte, filepath string, packageName string) *CodeUnit {
	if captureName != "func" {
		return nil
	}
	unit := p.extractFunctionUnit(node, sourceCode, filepath)
	if unit != nil {
		unit.Package = packageName
		unit.Language = "python"
	}
	return unit
}

func (p *PythonExtractor) extractFunctionUnit(node *sitter.Node, sourceCode []byte, filepath string) *CodeUnit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(sourceCode)

	unit := &CodeUnit{
		ID:          fmt.Sprintf("%s:%s:%d", filepath, name, node.StartPoint().Row+1),
		Filepath:    filepath,
		StartLine:   int(node.StartPoint().Row + 1),
		EndLine:     int(node.EndPoint().Row + 1),
		Content:     node.Content(sourceCode),
		UnitType:    "function",
		Name:        name,
		Description: p.extractDocstring(node, sourceCode),
	}
	if class := enclosingClass(node, sourceCode); class != "" {
		unit.UnitType = "method"
		unit.Receiver = class
	}
	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		unit.Params = p.extractParams(paramsNode, sourceCode)
	}
	if retNode := node.ChildByFieldName("return_type"); retNode != nil {
		unit.Returns = retNode.Content(sourceCode)
	}
	return unit
}

// extractParams walks a parameters node. The bare '*' and '/' markers and the
// splat patterns decide the kind of everything around them.
func (p *PythonExtractor) extractParams(paramsNode *sitter.Node, sourceCode []byte) []signature.Descriptor {
	params := []signature.Descriptor{}
	kind := signature.PositionalOrKeyword

	for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
		child := paramsNode.NamedChild(i)
		d := signature.Descriptor{Kind: kind}

		switch child.Type() {
		case "identifier":
			d.Name = child.Content(sourceCode)

		case "typed_parameter":
			inner := child.NamedChild(0)
			if inner == nil {
				continue
			}
			d.Name, d.Kind = splatName(inner, sourceCode, kind)
			if typeNode := child.ChildByFieldName("type"); typeNode != nil {
				d.Annotation = typeNode.Content(sourceCode)
			}

		case "default_parameter", "typed_default_parameter":
			if n := child.ChildByFieldName("name"); n != nil {
				d.Name = n.Content(sourceCode)
			}
			if typeNode := child.ChildByFieldName("type"); typeNode != nil {
				d.Annotation = typeNode.Content(sourceCode)
			}
			if valueNode := child.ChildByFieldName("value"); valueNode != nil {
				d.Default = ParseLiteral(valueNode.Content(sourceCode))
				d.HasDefault = true
			}

		case "list_splat_pattern", "dictionary_splat_pattern":
			d.Name, d.Kind = splatName(child, sourceCode, kind)

		case "keyword_separator":
			kind = signature.KeywordOnly
			continue

		case "positional_separator":
			for j := range params {
				params[j].Kind = signature.PositionalOnly
			}
			continue

		default:
			Logger().Debug("skipping parameter node",
				zap.String("type", child.Type()),
				zap.String("content", child.Content(sourceCode)),
			)
			continue
		}

		if d.Kind == signature.VarPositional {
			kind = signature.KeywordOnly
		}
		params = append(params, d)
	}
	return params
}

func splatName(node *sitter.Node, sourceCode []byte, kind signature.Kind) (string, signature.Kind) {
	switch node.Type() {
	case "list_splat_pattern":
		kind = signature.VarPositional
	case "dictionary_splat_pattern":
		kind = signature.VarKeyword
	default:
		return node.Content(sourceCode), kind
	}
	if id := node.NamedChild(0); id != nil {
		return id.Content(sourceCode), kind
	}
	return strings.TrimLeft(node.Content(sourceCode), "*"), kind
}

func enclosingClass(node *sitter.Node, sourceCode []byte) string {
	parent := node.Parent()
	if parent != nil && parent.Type() == "decorated_definition" {
		parent = parent.Parent()
	}
	if parent == nil || parent.Type() != "block" {
		return ""
	}
	class := parent.Parent()
	if class == nil || class.Type() != "class_definition" {
		return ""
	}
	if n := class.ChildByFieldName("name"); n != nil {
		return n.Content(sourceCode)
	}
	return ""
}

func (p *PythonExtractor) extractDocstring(node *sitter.Node, sourceCode []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	stmt := body.NamedChild(0)
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return ""
	}
	str := stmt.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	doc := str.Content(sourceCode)
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(doc, q) && strings.HasSuffix(doc, q) && len(doc) >= 2*len(q) {
			doc = doc[len(q) : len(doc)-len(q)]
			break
		}
	}
	return strings.TrimSpace(doc)
}
