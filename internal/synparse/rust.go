package synparse

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/73ai/code-context/internal/model"
)

func init() {
	register("rust", &languageSpec{
		isComment:      func(kind string) bool { return kind == "line_comment" || kind == "block_comment" },
		commentText:    rustCommentText,
		handleNode:     rustHandleNode,
		containerBody:  rustContainerBody,
		extractCalls:   rustExtractCalls,
		extractImports: rustExtractImports,
	})
}

func rustCommentText(node *sitter.Node, content []byte) string {
	text := nodeText(node, content)
	text = strings.TrimPrefix(text, "///")
	text = strings.TrimPrefix(text, "//!")
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	return strings.TrimSpace(text)
}

func rustHandleNode(node *sitter.Node, content []byte) *model.Symbol {
	switch node.Kind() {
	case "function_item":
		return rustFunction(node, content)
	case "struct_item":
		return rustNamed(node, content, model.KindClass)
	case "enum_item":
		return rustNamed(node, content, model.KindEnum)
	case "trait_item":
		return rustNamed(node, content, model.KindInterface)
	case "mod_item":
		return rustNamed(node, content, model.KindModule)
	case "const_item":
		return rustNamed(node, content, model.KindConstant)
	case "static_item":
		return rustNamed(node, content, model.KindVariable)
	case "use_declaration":
		return rustImportSymbol(node, content)
	case "impl_item":
		// impl blocks aren't named declarations themselves; their functions
		// are surfaced through container recursion keyed on the type name.
		return rustImpl(node, content)
	default:
		return nil
	}
}

func rustContainerBody(sym *model.Symbol, node *sitter.Node) *sitter.Node {
	switch node.Kind() {
	case "struct_item", "enum_item", "trait_item", "mod_item":
		if body := childByFieldName(node, "body"); body != nil {
			return body
		}
		return childByKind(node, "field_declaration_list")
	case "impl_item":
		return childByFieldName(node, "body")
	}
	return nil
}

func rustFunction(node *sitter.Node, content []byte) *model.Symbol {
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
	}
	return sym
}

func rustNamed(node *sitter.Node, content []byte, kind model.SymbolKind) *model.Symbol {
	nameNode := childByFieldName(node, "name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	sym := &model.Symbol{Name: name, Kind: kind, Declaration: spanOf(node)}
	if body := childByFieldName(node, "body"); body != nil {
		b := spanOf(body)
		sym.Body = &b
	}
	return sym
}

func rustImpl(node *sitter.Node, content []byte) *model.Symbol {
	typeNode := childByFieldName(node, "type")
	if typeNode == nil {
		return nil
	}
	name := nodeText(typeNode, content)
	if name == "" {
		return nil
	}
	sym := &model.Symbol{Name: name + "::impl", Kind: model.KindClass, Declaration: spanOf(node)}
	if body := childByFieldName(node, "body"); body != nil {
		b := spanOf(body)
		sym.Body = &b
	}
	return sym
}

func rustImportSymbol(node *sitter.Node, content []byte) *model.Symbol {
	text := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(nodeText(node, content), "use"), ";"))
	return &model.Symbol{Name: strings.TrimSpace(text), Kind: model.KindImport, Declaration: spanOf(node)}
}

func rustExtractImports(root *sitter.Node, content []byte) []model.ImportInfo {
	var out []model.ImportInfo
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Kind() == "use_declaration" {
			line := int(node.StartPosition().Row) + 1
			source := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(nodeText(node, content), "use"), ";"))
			out = append(out, model.ImportInfo{
				Source: source,
				Type:   model.ImportNamed,
				Line:   line,
				Raw:    nodeText(node, content),
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

func rustExtractCalls(root *sitter.Node, content []byte, filePath string) []model.CallSite {
	var out []model.CallSite
	var walk func(node *sitter.Node, enclosingName string)
	walk = func(node *sitter.Node, enclosingName string) {
		if node == nil {
			return
		}
		name := enclosingName
		switch node.Kind() {
		case "function_item":
			if n := childByFieldName(node, "name"); n != nil {
				name = nodeText(n, content)
			}
		case "call_expression":
			fn := childByFieldName(node, "function")
			callee := rustCalleeName(fn, content)
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

func rustCalleeName(fn *sitter.Node, content []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return nodeText(fn, content)
	case "field_expression":
		if field := childByFieldName(fn, "field"); field != nil {
			return nodeText(field, content)
		}
	case "scoped_identifier":
		if name := childByFieldName(fn, "name"); name != nil {
			return nodeText(name, content)
		}
	}
	return ""
}
