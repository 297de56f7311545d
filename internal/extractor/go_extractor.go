package extractor

import (
	"fmt"
	"strings"

	"funcsig/internal/signature"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoExtractor implements LanguageExtractor for Go. Go arguments are supplied
// by position only, so every parameter is positional-only and a trailing
// ...T parameter is variadic-positional.
type GoExtractor struct{}

func (g *GoExtractor) GetLanguage() *sitter.Language {
	return golang.GetLanguage()
}

func (g *GoExtractor) GetQuery() string {
	return `
		(function_declaration) @func
		(method_declaration) @func
	`
}

func (g *GoExtractor) ExtractUnit(captureName string, node *sitter.Node, sourceCode []byte, filepath string, packageName string) *CodeUnit {
	if captureName != "func" {
		return nil
	}
	unit := g.extractFunctionUnit(node, sourceCode, filepath)
	if unit != nil {
		unit.Package = packageName
		unit.Language = "go"
	}
	return unit
}

func (g *GoExtractor) extractFunctionUnit(node *sitter.Node, sourceCode []byte, filepath string) *CodeUnit {
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
		Description: g.extractDocComment(node, sourceCode),
		Params:      []signature.Descriptor{},
	}

	if node.Type() == "method_declaration" {
		unit.UnitType = "method"
		if receiverNode := node.ChildByFieldName("receiver"); receiverNode != nil {
			unit.Receiver = receiverNode.Content(sourceCode)
		}
	}
	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		unit.Params = g.extractParams(paramsNode, sourceCode)
	}
	if resultNode := node.ChildByFieldName("result"); resultNode != nil {
		unit.Returns = resultNode.Content(sourceCode)
	}
	return unit
}

func (g *GoExtractor) extractParams(paramsNode *sitter.Node, sourceCode []byte) []signature.Descriptor {
	params := []signature.Descriptor{}
	for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
		decl := paramsNode.NamedChild(i)

		kind := signature.PositionalOnly
		switch decl.Type() {
		case "parameter_declaration":
		case "variadic_parameter_declaration":
			kind = signature.VarPositional
		default:
			continue
		}

		pType := ""
		if tn := decl.ChildByFieldName("type"); tn != nil {
			pType = tn.Content(sourceCode)
		}

		var names []string
		for j := 0; j < int(decl.NamedChildCount()); j++ {
			if child := decl.NamedChild(j); child.Type() == "identifier" {
				names = append(names, child.Content(sourceCode))
			}
		}
		if len(names) == 0 {
			names = []string{""}
		}
		for _, n := range names {
			if n == "" || n == "_" {
				n = fmt.Sprintf("arg%d", len(params))
			}
			params = append(params, signature.Descriptor{Name: n, Kind: kind, Annotation: pType})
		}
	}
	return params
}

func (g *GoExtractor) extractDocComment(node *sitter.Node, sourceCode []byte) string {
	var commentLines []string
	currentNode := node
	for {
		prevSibling := currentNode.PrevSibling()
		if prevSibling == nil || (currentNode.StartPoint().Row-prevSibling.EndPoint().Row > 1) {
			break
		}
		if prevSibling.Type() != "comment" {
			break
		}
		commentLines = append([]string{prevSibling.Content(sourceCode)}, commentLines...)
		currentNode = prevSibling
	}
	return cleanDocComment(strings.Join(commentLines, "\n"))
}

func cleanDocComment(rawComment string) string {
	if rawComment == "" {
		return ""
	}
	lines := strings.Split(rawComment, "\n")
	var cleaned []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "//")
		l = strings.TrimPrefix(l, "/*")
		l = strings.TrimSuffix(l, "*/")
		cleaned = append(cleaned, strings.TrimSpace(l))
	}
	return strings.Join(cleaned, "\n")
}
