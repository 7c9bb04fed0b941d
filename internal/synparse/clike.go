package synparse

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/73ai/code-context/internal/model"
)

// clike covers C, C++, and Java: three grammars different enough in node
// names to need per-language kind sets, close enough in shape to share one
// walking strategy.

func init() {
	register("c", &languageSpec{
		isComment:      clikeIsComment,
		commentText:    clikeCommentText,
		handleNode:     cHandleNode,
		containerBody:  cContainerBody,
		extractCalls:   clikeExtractCalls,
		extractImports: cExtractIncludes,
	})
	register("cpp", &languageSpec{
		isComment:      clikeIsComment,
		commentText:    clikeCommentText,
		handleNode:     cppHandleNode,
		containerBody:  cppContainerBody,
		extractCalls:   clikeExtractCalls,
		extractImports: cExtractIncludes,
	})
	register("java", &languageSpec{
		isComment:      clikeIsComment,
		commentText:    javaCommentText,
		handleNode:     javaHandleNode,
		containerBody:  javaContainerBody,
		extractCalls:   clikeExtractCalls,
		extractImports: javaExtractImports,
	})
}

func clikeIsComment(kind string) bool { return kind == "comment" }

func clikeCommentText(node *sitter.Node, content []byte) string {
	text := nodeText(node, content)
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	text = strings.TrimPrefix(text, "*")
	return strings.TrimSpace(text)
}

// javadoc comments use /** ... */ with leading '*' per line; strip both.
func javaCommentText(node *sitter.Node, content []byte) string {
	text := nodeText(node, content)
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimPrefix(strings.TrimSpace(l), "*")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// --- C ---

func cHandleNode(node *sitter.Node, content []byte) *model.Symbol {
	switch node.Kind() {
	case "function_definition":
		return cFunction(node, content)
	case "struct_specifier":
		return cRecord(node, content, model.KindClass)
	case "enum_specifier":
		return cRecord(node, content, model.KindEnum)
	case "preproc_include":
		return cIncludeSymbol(node, content)
	default:
		return nil
	}
}

func cContainerBody(sym *model.Symbol, node *sitter.Node) *sitter.Node {
	if node.Kind() == "struct_specifier" {
		return childByKind(node, "field_declaration_list")
	}
	return nil
}

func cFunction(node *sitter.Node, content []byte) *model.Symbol {
	declarator := childByFieldName(node, "declarator")
	name := cDeclaratorName(declarator, content)
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

func cRecord(node *sitter.Node, content []byte, kind model.SymbolKind) *model.Symbol {
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

func cIncludeSymbol(node *sitter.Node, content []byte) *model.Symbol {
	path := nodeText(node, content)
	return &model.Symbol{Name: strings.TrimSpace(path), Kind: model.KindImport, Declaration: spanOf(node)}
}

// cDeclaratorName unwraps function_declarator/pointer_declarator chains down
// to the bare identifier, since C function names sit behind a declarator tree
// rather than a direct "name" field.
func cDeclaratorName(node *sitter.Node, content []byte) string {
	for node != nil {
		switch node.Kind() {
		case "identifier", "field_identifier":
			return nodeText(node, content)
		case "function_declarator", "pointer_declarator":
			node = childByFieldName(node, "declarator")
		default:
			return ""
		}
	}
	return ""
}

func cExtractIncludes(root *sitter.Node, content []byte) []model.ImportInfo {
	var out []model.ImportInfo
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Kind() == "preproc_include" {
			pathNode := childByFieldName(node, "path")
			source := ""
			if pathNode != nil {
				source = strings.Trim(nodeText(pathNode, content), `"<>`)
			}
			out = append(out, model.ImportInfo{
				Source: source,
				Type:   model.ImportSideEffect,
				Line:   int(node.StartPosition().Row) + 1,
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

// --- C++ ---

func cppHandleNode(node *sitter.Node, content []byte) *model.Symbol {
	switch node.Kind() {
	case "function_definition":
		return cFunction(node, content)
	case "class_specifier":
		return cRecord(node, content, model.KindClass)
	case "struct_specifier":
		return cRecord(node, content, model.KindClass)
	case "enum_specifier":
		return cRecord(node, content, model.KindEnum)
	case "namespace_definition":
		return cppNamespace(node, content)
	case "preproc_include":
		return cIncludeSymbol(node, content)
	default:
		return nil
	}
}

func cppContainerBody(sym *model.Symbol, node *sitter.Node) *sitter.Node {
	switch node.Kind() {
	case "class_specifier", "struct_specifier":
		return childByKind(node, "field_declaration_list")
	case "namespace_definition":
		return childByFieldName(node, "body")
	}
	return nil
}

func cppNamespace(node *sitter.Node, content []byte) *model.Symbol {
	nameNode := childByFieldName(node, "name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	sym := &model.Symbol{Name: name, Kind: model.KindModule, Declaration: spanOf(node)}
	if body := childByFieldName(node, "body"); body != nil {
		b := spanOf(body)
		sym.Body = &b
	}
	return sym
}

// --- Java ---

func javaHandleNode(node *sitter.Node, content []byte) *model.Symbol {
	switch node.Kind() {
	case "method_declaration", "constructor_declaration":
		return javaMethod(node, content)
	case "class_declaration":
		return javaRecord(node, content, model.KindClass)
	case "interface_declaration":
		return javaRecord(node, content, model.KindInterface)
	case "enum_declaration":
		return javaRecord(node, content, model.KindEnum)
	case "field_declaration":
		return javaField(node, content)
	case "import_declaration":
		return javaImportSymbol(node, content)
	default:
		return nil
	}
}

func javaContainerBody(sym *model.Symbol, node *sitter.Node) *sitter.Node {
	switch node.Kind() {
	case "class_declaration", "interface_declaration", "enum_declaration":
		return childByFieldName(node, "body")
	}
	return nil
}

func javaMethod(node *sitter.Node, content []byte) *model.Symbol {
	nameNode := childByFieldName(node, "name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	if name == "" {
		return nil
	}
	kind := model.KindMethod
	if node.Kind() == "constructor_declaration" {
		kind = model.KindConstructor
	}
	sym := &model.Symbol{Name: name, Kind: kind, Declaration: spanOf(node)}
	if body := childByFieldName(node, "body"); body != nil {
		b := spanOf(body)
		sym.Body = &b
	}
	return sym
}

func javaRecord(node *sitter.Node, content []byte, kind model.SymbolKind) *model.Symbol {
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

func javaField(node *sitter.Node, content []byte) *model.Symbol {
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
	return &model.Symbol{Name: name, Kind: model.KindField, Declaration: spanOf(node)}
}

func javaImportSymbol(node *sitter.Node, content []byte) *model.Symbol {
	text := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(nodeText(node, content), "import"), ";"))
	return &model.Symbol{Name: text, Kind: model.KindImport, Declaration: spanOf(node)}
}

func javaExtractImports(root *sitter.Node, content []byte) []model.ImportInfo {
	var out []model.ImportInfo
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Kind() == "import_declaration" {
			source := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(nodeText(node, content), "import"), ";"))
			out = append(out, model.ImportInfo{
				Source: source,
				Type:   model.ImportNamed,
				Line:   int(node.StartPosition().Row) + 1,
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

// --- shared call extraction ---

func clikeExtractCalls(root *sitter.Node, content []byte, filePath string) []model.CallSite {
	var out []model.CallSite
	var walk func(node *sitter.Node, enclosingName string)
	walk = func(node *sitter.Node, enclosingName string) {
		if node == nil {
			return
		}
		name := enclosingName
		switch node.Kind() {
		case "function_definition":
			if declarator := childByFieldName(node, "declarator"); declarator != nil {
				if n := cDeclaratorName(declarator, content); n != "" {
					name = n
				}
			}
		case "method_declaration", "constructor_declaration":
			if n := childByFieldName(node, "name"); n != nil {
				name = nodeText(n, content)
			}
		case "call_expression", "method_invocation":
			callee := clikeCalleeName(node, content)
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

func clikeCalleeName(node *sitter.Node, content []byte) string {
	if node.Kind() == "method_invocation" {
		if name := childByFieldName(node, "name"); name != nil {
			return nodeText(name, content)
		}
		return ""
	}
	fn := childByFieldName(node, "function")
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
	case "qualified_identifier":
		if name := childByFieldName(fn, "name"); name != nil {
			return nodeText(name, content)
		}
	}
	return ""
}
