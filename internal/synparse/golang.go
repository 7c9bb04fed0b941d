package synparse

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/73ai/code-context/internal/model"
)

func init() {
	register("go", &languageSpec{
		isComment:      func(kind string) bool { return kind == "comment" },
		commentText:    goCommentText,
		handleNode:     goHandleNode,
		containerBody:  goContainerBody,
		extractCalls:   goExtractCalls,
		extractImports: goExtractImports,
		extractExports: nil, // Go has no export statement; visibility is name-based, out of scope for ExportInfo
	})
}

func goCommentText(node *sitter.Node, content []byte) string {
	text := nodeText(node, content)
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	return strings.TrimSpace(text)
}

func goHandleNode(node *sitter.Node, content []byte) *model.Symbol {
	switch node.Kind() {
	case "function_declaration":
		return goFunction(node, content, model.KindFunction)
	case "method_declaration":
		return goFunction(node, content, model.KindMethod)
	case "type_declaration":
		return goType(node, content)
	case "const_declaration":
		return goVarConst(node, content, model.KindConstant)
	case "var_declaration":
		return goVarConst(node, content, model.KindVariable)
	case "import_declaration":
		return goImportSymbol(node, content)
	case "field_declaration":
		return goField(node, content)
	case "method_elem":
		return goInterfaceMethod(node, content)
	default:
		return nil
	}
}

func goField(node *sitter.Node, content []byte) *model.Symbol {
	nameNode := childByFieldName(node, "name")
	if nameNode == nil {
		// embedded field: the type itself stands in for the name
		nameNode = childByFieldName(node, "type")
	}
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	return &model.Symbol{Name: name, Kind: model.KindField, Declaration: spanOf(node)}
}

func goInterfaceMethod(node *sitter.Node, content []byte) *model.Symbol {
	nameNode := childByFieldName(node, "name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	return &model.Symbol{Name: name, Kind: model.KindMethod, Declaration: spanOf(node)}
}

func goContainerBody(sym *model.Symbol, node *sitter.Node) *sitter.Node {
	if node.Kind() != "type_declaration" {
		return nil
	}
	spec := childByKind(node, "type_spec")
	if spec == nil {
		return nil
	}
	typeNode := childByFieldName(spec, "type")
	if typeNode == nil {
		return nil
	}
	switch typeNode.Kind() {
	case "struct_type":
		return childByKind(typeNode, "field_declaration_list")
	case "interface_type":
		return typeNode
	}
	return nil
}

func goFunction(node *sitter.Node, content []byte, kind model.SymbolKind) *model.Symbol {
	nameNode := childByFieldName(node, "name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	bodyNode := childByFieldName(node, "body")
	sym := &model.Symbol{Name: name, Kind: kind, Declaration: spanOf(node)}
	if bodyNode != nil {
		b := spanOf(bodyNode)
		sym.Body = &b
	}
	return sym
}

func goType(node *sitter.Node, content []byte) *model.Symbol {
	spec := childByKind(node, "type_spec")
	if spec == nil {
		return nil
	}
	nameNode := childByFieldName(spec, "name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}

	kind := model.KindTypeAlias
	var body *sitter.Node
	typeNode := childByFieldName(spec, "type")
	if typeNode != nil {
		switch typeNode.Kind() {
		case "struct_type":
			kind = model.KindClass
			body = childByKind(typeNode, "field_declaration_list")
		case "interface_type":
			kind = model.KindInterface
			body = typeNode
		}
	}

	sym := &model.Symbol{Name: name, Kind: kind, Declaration: spanOf(node)}
	if body != nil {
		b := spanOf(body)
		sym.Body = &b
	}
	return sym
}

func goVarConst(node *sitter.Node, content []byte, kind model.SymbolKind) *model.Symbol {
	spec := childByKind(node, "var_spec")
	if spec == nil {
		spec = childByKind(node, "const_spec")
	}
	if spec == nil {
		return nil
	}
	nameNode := childByFieldName(spec, "name")
	if nameNode == nil {
		nameNode = childByKind(spec, "identifier")
	}
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	return &model.Symbol{Name: name, Kind: kind, Declaration: spanOf(node)}
}

func goImportSymbol(node *sitter.Node, content []byte) *model.Symbol {
	// A single import_declaration may hold a spec_list; represent the whole
	// declaration as one import symbol named after its first path, so it is
	// preserved in the tree per the spec while being filtered from display.
	spec := childByKind(node, "import_spec")
	if spec == nil {
		if list := childByKind(node, "import_spec_list"); list != nil {
			spec = childByKind(list, "import_spec")
		}
	}
	name := "import"
	if spec != nil {
		if pathNode := childByFieldName(spec, "path"); pathNode != nil {
			name = strings.Trim(nodeText(pathNode, content), `"`)
		}
	}
	return &model.Symbol{Name: name, Kind: model.KindImport, Declaration: spanOf(node)}
}

func goExtractImports(root *sitter.Node, content []byte) []model.ImportInfo {
	var out []model.ImportInfo
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Kind() == "import_spec" {
			pathNode := childByFieldName(node, "path")
			if pathNode == nil {
				return
			}
			source := strings.Trim(nodeText(pathNode, content), `"`)
			nameNode := childByFieldName(node, "name")
			local := ""
			if nameNode != nil {
				local = nodeText(nameNode, content)
			}
			line := int(node.StartPosition().Row) + 1
			out = append(out, model.ImportInfo{
				Source: source,
				Type:   model.ImportNamed,
				Bindings: []model.ImportBinding{{
					ExportedName: source,
					LocalName:    local,
				}},
				Line: line,
				Raw:  nodeText(node, content),
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

func goExtractCalls(root *sitter.Node, content []byte, filePath string) []model.CallSite {
	var out []model.CallSite
	var walk func(node *sitter.Node, enclosingName string)
	walk = func(node *sitter.Node, enclosingName string) {
		if node == nil {
			return
		}
		name := enclosingName
		switch node.Kind() {
		case "function_declaration", "method_declaration":
			if n := childByFieldName(node, "name"); n != nil {
				name = nodeText(n, content)
			}
		case "call_expression":
			fn := childByFieldName(node, "function")
			callee := calleeName(fn, content)
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

// calleeName implements "bare identifier -> that identifier, member access ->
// rightmost property name".
func calleeName(fn *sitter.Node, content []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return nodeText(fn, content)
	case "selector_expression":
		if field := childByFieldName(fn, "field"); field != nil {
			return nodeText(field, content)
		}
	}
	return ""
}
