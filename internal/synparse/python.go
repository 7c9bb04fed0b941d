package synparse

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/73ai/code-context/internal/model"
)

func init() {
	register("python", &languageSpec{
		isComment:      func(kind string) bool { return kind == "comment" },
		commentText:    pyCommentText,
		handleNode:     pyHandleNode,
		containerBody:  pyContainerBody,
		extractCalls:   pyExtractCalls,
		extractImports: pyExtractImports,
	})
}

func pyCommentText(node *sitter.Node, content []byte) string {
	return strings.TrimSpace(strings.TrimPrefix(nodeText(node, content), "#"))
}

func pyHandleNode(node *sitter.Node, content []byte) *model.Symbol {
	switch node.Kind() {
	case "function_definition":
		return pyFunction(node, content)
	case "class_definition":
		return pyClass(node, content)
	case "import_statement", "import_from_statement":
		return pyImportSymbol(node, content)
	default:
		return nil
	}
}

func pyContainerBody(sym *model.Symbol, node *sitter.Node) *sitter.Node {
	if node.Kind() != "class_definition" {
		return nil
	}
	return childByFieldName(node, "body")
}

// pyDocstring implements the "docstrings live inside the body" rule:
// inspect the first statement of the body for a bare string expression.
func pyDocstring(body *sitter.Node, content []byte) string {
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first == nil || first.Kind() != "expression_statement" {
		return ""
	}
	if first.ChildCount() == 0 {
		return ""
	}
	strNode := first.Child(0)
	if strNode == nil || strNode.Kind() != "string" {
		return ""
	}
	text := nodeText(strNode, content)
	text = strings.Trim(text, `"'`)
	text = strings.TrimPrefix(text, "\"\"")
	text = strings.TrimSuffix(text, "\"\"")
	return strings.TrimSpace(text)
}

func pyFunction(node *sitter.Node, content []byte) *model.Symbol {
	nameNode := childByFieldName(node, "name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	sym := &model.Symbol{Name: name, Kind: model.KindFunction, Declaration: spanOf(node)}
	if body := childByFieldName(node, "body"); body != nil {
		b := spanOf(body)
		sym.Body = &b
		sym.Doc = pyDocstring(body, content)
	}
	return sym
}

func pyClass(node *sitter.Node, content []byte) *model.Symbol {
	nameNode := childByFieldName(node, "name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	sym := &model.Symbol{Name: name, Kind: model.KindClass, Declaration: spanOf(node)}
	if body := childByFieldName(node, "body"); body != nil {
		b := spanOf(body)
		sym.Body = &b
		if doc := pyDocstring(body, content); doc != "" {
			sym.Doc = doc
		}
	}
	return sym
}

func pyImportSymbol(node *sitter.Node, content []byte) *model.Symbol {
	text := nodeText(node, content)
	name := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(text, "import"), "from"))
	return &model.Symbol{Name: name, Kind: model.KindImport, Declaration: spanOf(node)}
}

func pyExtractImports(root *sitter.Node, content []byte) []model.ImportInfo {
	var out []model.ImportInfo
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		line := int(node.StartPosition().Row) + 1
		switch node.Kind() {
		case "import_statement":
			count := node.ChildCount()
			for i := uint(0); i < count; i++ {
				c := node.Child(i)
				if c == nil {
					continue
				}
				switch c.Kind() {
				case "dotted_name":
					name := nodeText(c, content)
					out = append(out, model.ImportInfo{
						Source:   name,
						Type:     model.ImportNamed,
						Bindings: []model.ImportBinding{{ExportedName: name, LocalName: name}},
						Line:     line,
						Raw:      nodeText(node, content),
					})
				case "aliased_import":
					nameNode := childByFieldName(c, "name")
					aliasNode := childByFieldName(c, "alias")
					if nameNode == nil {
						continue
					}
					source := nodeText(nameNode, content)
					local := source
					if aliasNode != nil {
						local = nodeText(aliasNode, content)
					}
					out = append(out, model.ImportInfo{
						Source:   source,
						Type:     model.ImportNamed,
						Bindings: []model.ImportBinding{{ExportedName: source, LocalName: local}},
						Line:     line,
						Raw:      nodeText(node, content),
					})
				}
			}
			return
		case "import_from_statement":
			moduleNode := childByFieldName(node, "module_name")
			source := nodeText(moduleNode, content)
			var bindings []model.ImportBinding
			count := node.ChildCount()
			for i := uint(0); i < count; i++ {
				c := node.Child(i)
				if c == nil {
					continue
				}
				if c.Kind() == "dotted_name" && c != moduleNode {
					name := nodeText(c, content)
					bindings = append(bindings, model.ImportBinding{ExportedName: name, LocalName: name})
				}
				if c.Kind() == "aliased_import" {
					nameNode := childByFieldName(c, "name")
					aliasNode := childByFieldName(c, "alias")
					if nameNode == nil {
						continue
					}
					exported := nodeText(nameNode, content)
					local := exported
					if aliasNode != nil {
						local = nodeText(aliasNode, content)
					}
					bindings = append(bindings, model.ImportBinding{ExportedName: exported, LocalName: local})
				}
			}
			out = append(out, model.ImportInfo{
				Source:   source,
				Type:     model.ImportNamed,
				Bindings: bindings,
				Line:     line,
				Raw:      nodeText(node, content),
			})
			return
		}
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	return out
}

func pyExtractCalls(root *sitter.Node, content []byte, filePath string) []model.CallSite {
	var out []model.CallSite
	var walk func(node *sitter.Node, enclosingName string)
	walk = func(node *sitter.Node, enclosingName string) {
		if node == nil {
			return
		}
		name := enclosingName
		switch node.Kind() {
		case "function_definition":
			if n := childByFieldName(node, "name"); n != nil {
				name = nodeText(n, content)
			}
		case "call":
			fn := childByFieldName(node, "function")
			callee := pyCalleeName(fn, content)
			if callee != "" {
				pos := node.StartPosition()
				out = append(out, model.CallSite{
					FilePath:        filePath,
					Line:            int(pos.Row) + 1,
					Column:          int(pos.Column) + 1,
					CallerName:      name,
					SurroundingLine: lineAt(content, int(pos.Row)+1),
				})
			}
		}
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			walk(node.Child(i), name)
		}
	}
	walk(root, "")
	return out
}

func pyCalleeName(fn *sitter.Node, content []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return nodeText(fn, content)
	case "attribute":
		if attr := childByFieldName(fn, "attribute"); attr != nil {
			return nodeText(attr, content)
		}
	}
	return ""
}
