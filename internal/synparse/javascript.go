package synparse

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/73ai/code-context/internal/model"
)

func init() {
	spec := &languageSpec{
		isComment:      func(kind string) bool { return kind == "comment" },
		commentText:    jsCommentText,
		handleNode:     jsHandleNode,
		containerBody:  jsContainerBody,
		extractCalls:   jsExtractCalls,
		extractImports: jsExtractImports,
		extractExports: jsExtractExports,
	}
	register("javascript", spec)
	register("typescript", spec)
}

func jsCommentText(node *sitter.Node, content []byte) string {
	text := nodeText(node, content)
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), "*"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// jsHandleNode implements the "unwrap export statement" rule: an
// export_statement wrapping a declaration is unwrapped to the underlying
// declaration's symbol.
func jsHandleNode(node *sitter.Node, content []byte) *model.Symbol {
	if node.Kind() == "export_statement" {
		if decl := childByFieldName(node, "declaration"); decl != nil {
			sym := jsHandleNode(decl, content)
			return sym
		}
		return nil
	}
	switch node.Kind() {
	case "function_declaration", "generator_function_declaration":
		return jsFunction(node, content, model.KindFunction)
	case "class_declaration":
		return jsClass(node, content)
	case "interface_declaration":
		return jsInterface(node, content)
	case "method_definition":
		return jsMethod(node, content)
	case "public_field_definition", "field_definition":
		return jsField(node, content)
	case "lexical_declaration", "variable_declaration":
		return jsVariable(node, content)
	case "type_alias_declaration":
		return jsTypeAlias(node, content)
	case "enum_declaration":
		return jsEnum(node, content)
	case "import_statement":
		return jsImportSymbol(node, content)
	default:
		return nil
	}
}

func jsContainerBody(sym *model.Symbol, node *sitter.Node) *sitter.Node {
	target := node
	if node.Kind() == "export_statement" {
		if decl := childByFieldName(node, "declaration"); decl != nil {
			target = decl
		}
	}
	switch target.Kind() {
	case "class_declaration":
		return childByFieldName(target, "body")
	case "interface_declaration":
		return childByFieldName(target, "body")
	case "enum_declaration":
		return childByFieldName(target, "body")
	}
	return nil
}

func jsFunction(node *sitter.Node, content []byte, kind model.SymbolKind) *model.Symbol {
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

func jsClass(node *sitter.Node, content []byte) *model.Symbol {
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
	}
	return sym
}

func jsInterface(node *sitter.Node, content []byte) *model.Symbol {
	nameNode := childByFieldName(node, "name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	sym := &model.Symbol{Name: name, Kind: model.KindInterface, Declaration: spanOf(node)}
	if body := childByFieldName(node, "body"); body != nil {
		b := spanOf(body)
		sym.Body = &b
	}
	return sym
}

func jsEnum(node *sitter.Node, content []byte) *model.Symbol {
	nameNode := childByFieldName(node, "name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	sym := &model.Symbol{Name: name, Kind: model.KindEnum, Declaration: spanOf(node)}
	if body := childByFieldName(node, "body"); body != nil {
		b := spanOf(body)
		sym.Body = &b
	}
	return sym
}

func jsMethod(node *sitter.Node, content []byte) *model.Symbol {
	nameNode := childByFieldName(node, "name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	kind := model.KindMethod
	if name == "constructor" {
		kind = model.KindConstructor
	}
	sym := &model.Symbol{Name: name, Kind: kind, Declaration: spanOf(node)}
	if body := childByFieldName(node, "body"); body != nil {
		b := spanOf(body)
		sym.Body = &b
	}
	return sym
}

func jsField(node *sitter.Node, content []byte) *model.Symbol {
	nameNode := childByFieldName(node, "property")
	if nameNode == nil {
		nameNode = childByFieldName(node, "name")
	}
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	return &model.Symbol{Name: name, Kind: model.KindProperty, Declaration: spanOf(node)}
}

func jsVariable(node *sitter.Node, content []byte) *model.Symbol {
	declarator := childByKind(node, "variable_declarator")
	if declarator == nil {
		return nil
	}
	nameNode := childByFieldName(declarator, "name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	kind := model.KindVariable
	if strings.HasPrefix(nodeText(node, content), "const") {
		kind = model.KindConstant
	}
	return &model.Symbol{Name: name, Kind: kind, Declaration: spanOf(node)}
}

func jsTypeAlias(node *sitter.Node, content []byte) *model.Symbol {
	nameNode := childByFieldName(node, "name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	return &model.Symbol{Name: name, Kind: model.KindTypeAlias, Declaration: spanOf(node)}
}

func jsImportSymbol(node *sitter.Node, content []byte) *model.Symbol {
	source := ""
	if src := childByFieldName(node, "source"); src != nil {
		source = strings.Trim(nodeText(src, content), `'"`)
	}
	name := source
	if name == "" {
		name = "import"
	}
	return &model.Symbol{Name: name, Kind: model.KindImport, Declaration: spanOf(node)}
}

func jsExtractImports(root *sitter.Node, content []byte) []model.ImportInfo {
	var out []model.ImportInfo
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Kind() == "import_statement" {
			out = append(out, jsParseImport(node, content))
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

func jsParseImport(node *sitter.Node, content []byte) model.ImportInfo {
	source := ""
	if src := childByFieldName(node, "source"); src != nil {
		source = strings.Trim(nodeText(src, content), `'"`)
	}
	line := int(node.StartPosition().Row) + 1
	info := model.ImportInfo{Source: source, Line: line, Raw: nodeText(node, content)}

	clause := childByKind(node, "import_clause")
	if clause == nil {
		info.Type = model.ImportSideEffect
		return info
	}

	var bindings []model.ImportBinding
	count := clause.ChildCount()
	for i := uint(0); i < count; i++ {
		c := clause.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "identifier":
			info.Type = model.ImportDefault
			bindings = append(bindings, model.ImportBinding{ExportedName: "default", LocalName: nodeText(c, content)})
		case "namespace_import":
			info.Type = model.ImportNamespace
			if id := childByKind(c, "identifier"); id != nil {
				bindings = append(bindings, model.ImportBinding{ExportedName: "*", LocalName: nodeText(id, content)})
			}
		case "named_imports":
			if info.Type == "" {
				info.Type = model.ImportNamed
			}
			specCount := c.ChildCount()
			for j := uint(0); j < specCount; j++ {
				spec := c.Child(j)
				if spec == nil || spec.Kind() != "import_specifier" {
					continue
				}
				nameNode := childByFieldName(spec, "name")
				aliasNode := childByFieldName(spec, "alias")
				exported := nodeText(nameNode, content)
				local := exported
				if aliasNode != nil {
					local = nodeText(aliasNode, content)
				}
				bindings = append(bindings, model.ImportBinding{ExportedName: exported, LocalName: local})
			}
		}
	}
	info.Bindings = bindings
	if info.Type == "" {
		info.Type = model.ImportNamed
	}
	return info
}

func jsExtractExports(root *sitter.Node, content []byte) []model.ExportInfo {
	var out []model.ExportInfo
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Kind() == "export_statement" {
			out = append(out, jsParseExport(node, content))
		}
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	return out
}

func jsParseExport(node *sitter.Node, content []byte) model.ExportInfo {
	line := int(node.StartPosition().Row) + 1
	info := model.ExportInfo{Line: line, Raw: nodeText(node, content)}

	if decl := childByFieldName(node, "declaration"); decl != nil {
		info.Type = model.ExportDeclaration
		name := declarationName(decl, content)
		if name != "" {
			info.Bindings = []model.ExportBinding{{ExportedName: name, LocalName: name}}
		}
		return info
	}

	if src := childByFieldName(node, "source"); src != nil {
		info.Type = model.ExportReexport
		info.Source = strings.Trim(nodeText(src, content), `'"`)
	} else {
		info.Type = model.ExportNamed
	}

	if clause := childByKind(node, "export_clause"); clause != nil {
		count := clause.ChildCount()
		for i := uint(0); i < count; i++ {
			spec := clause.Child(i)
			if spec == nil || spec.Kind() != "export_specifier" {
				continue
			}
			nameNode := childByFieldName(spec, "name")
			aliasNode := childByFieldName(spec, "alias")
			local := nodeText(nameNode, content)
			exported := local
			if aliasNode != nil {
				exported = nodeText(aliasNode, content)
			}
			info.Bindings = append(info.Bindings, model.ExportBinding{ExportedName: exported, LocalName: local})
		}
	}

	// export default <expr>
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c != nil && c.Kind() == "default" {
			info.Type = model.ExportDefault
		}
	}

	return info
}

func declarationName(decl *sitter.Node, content []byte) string {
	if n := childByFieldName(decl, "name"); n != nil {
		return nodeText(n, content)
	}
	return ""
}

func jsExtractCalls(root *sitter.Node, content []byte, filePath string) []model.CallSite {
	var out []model.CallSite
	var walk func(node *sitter.Node, enclosingName string)
	walk = func(node *sitter.Node, enclosingName string) {
		if node == nil {
			return
		}
		name := enclosingName
		switch node.Kind() {
		case "function_declaration", "generator_function_declaration", "method_definition":
			if n := childByFieldName(node, "name"); n != nil {
				name = nodeText(n, content)
			}
		case "call_expression":
			fn := childByFieldName(node, "function")
			callee := jsCalleeName(fn, content)
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

func jsCalleeName(fn *sitter.Node, content []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return nodeText(fn, content)
	case "member_expression":
		if prop := childByFieldName(fn, "property"); prop != nil {
			return nodeText(prop, content)
		}
	}
	return ""
}
