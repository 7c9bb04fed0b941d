// Package synparse drives tree-sitter over the engine's supported
// languages, producing the canonical model.SymbolTree plus call-site,
// import, and export extractions. Each language's declaration-node handling
// is a variant in a per-language function table keyed by language id —
// dispatch, not inheritance.
package synparse

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/go-logr/logr"

	"github.com/73ai/code-context/internal/engerr"
	"github.com/73ai/code-context/internal/langreg"
	"github.com/73ai/code-context/internal/model"
)

// nodeHandler turns one top-level or container-member CST node into a
// Symbol, or returns nil if the node isn't a declaration this language
// reports as a symbol.
type nodeHandler func(node *sitter.Node, content []byte) *model.Symbol

// languageSpec bundles everything dispatch needs for one language: how to
// classify comment nodes, how to turn a declaration node into a Symbol, what
// node kinds are containers worth recursing into, and the extractors for
// calls/imports/exports.
type languageSpec struct {
	isComment      func(kind string) bool
	commentText    func(node *sitter.Node, content []byte) string
	handleNode     nodeHandler
	containerBody  func(sym *model.Symbol, node *sitter.Node) *sitter.Node // returns the body node to recurse into, or nil
	extractCalls   func(root *sitter.Node, content []byte, filePath string) []model.CallSite
	extractImports func(root *sitter.Node, content []byte) []model.ImportInfo
	extractExports func(root *sitter.Node, content []byte) []model.ExportInfo
}

var specs = map[string]*languageSpec{}

func register(id string, spec *languageSpec) { specs[id] = spec }

// Parser drives tree-sitter parsing and symbol/call/import/export
// extraction for every registered language.
type Parser struct {
	registry *langreg.Registry
	log      logr.Logger
}

// New builds a Parser against the given Language Registry. A zero-value
// logr.Logger (logr.Discard()) is a valid logger for callers that don't want
// structured output.
func New(registry *langreg.Registry, log logr.Logger) *Parser {
	return &Parser{registry: registry, log: log}
}

// Parse produces the SymbolTree for source at path. It always returns a
// tree when the language is recognized; syntax errors are reported as data
// in the tree, never as the returned error. An unrecognized extension is a
// hard InputError — the Language Registry found "no language" and the
// parser rejects, per the registry's contract.
func (p *Parser) Parse(source []byte, path string) (*model.SymbolTree, error) {
	lang, ok := p.registry.ForPath(path)
	if !ok {
		return nil, engerr.Input("parse", "unrecognized file extension: "+path)
	}
	spec, ok := specs[lang.ID]
	if !ok {
		return nil, engerr.Input("parse", "unsupported language: "+lang.ID)
	}

	tree := &model.SymbolTree{FilePath: path, LanguageID: lang.ID}

	grammar := p.registry.Grammar(lang.ID)
	if grammar == nil {
		p.log.V(1).Info("grammar unavailable, using fallback extraction", "language", lang.ID, "path", path)
		tree.Symbols = fallbackSymbols(lang.ID, source)
		return tree, nil
	}

	sp := sitter.NewParser()
	defer sp.Close()
	if err := sp.SetLanguage(grammar); err != nil {
		p.log.Error(err, "failed to set grammar, using fallback extraction", "language", lang.ID)
		tree.Symbols = fallbackSymbols(lang.ID, source)
		return tree, nil
	}

	cst := sp.Parse(source, nil)
	if cst == nil {
		p.log.V(1).Info("tree-sitter returned nil tree, using fallback extraction", "path", path)
		tree.Symbols = fallbackSymbols(lang.ID, source)
		return tree, nil
	}
	defer cst.Close()

	root := cst.RootNode()
	tree.Symbols = walkTopLevel(root, source, spec)
	tree.Errors = collectSyntaxErrors(root)
	return tree, nil
}

// ExtractCalls walks the parsed tree of source looking for call expressions.
func (p *Parser) ExtractCalls(source []byte, path string) ([]model.CallSite, error) {
	lang, spec, root, cst, err := p.parseForExtraction(source, path)
	if err != nil {
		return nil, err
	}
	if cst != nil {
		defer cst.Close()
	}
	if spec.extractCalls == nil {
		return nil, nil
	}
	_ = lang
	return spec.extractCalls(root, source, path), nil
}

// ExtractImports walks the parsed tree of source collecting ImportInfo.
func (p *Parser) ExtractImports(source []byte, path string) ([]model.ImportInfo, error) {
	_, spec, root, cst, err := p.parseForExtraction(source, path)
	if err != nil {
		return nil, err
	}
	if cst != nil {
		defer cst.Close()
	}
	if spec.extractImports == nil {
		return nil, nil
	}
	return spec.extractImports(root, source), nil
}

// ExtractExports walks the parsed tree of source collecting ExportInfo.
func (p *Parser) ExtractExports(source []byte, path string) ([]model.ExportInfo, error) {
	_, spec, root, cst, err := p.parseForExtraction(source, path)
	if err != nil {
		return nil, err
	}
	if cst != nil {
		defer cst.Close()
	}
	if spec.extractExports == nil {
		return nil, nil
	}
	return spec.extractExports(root, source), nil
}

func (p *Parser) parseForExtraction(source []byte, path string) (langreg.Language, *languageSpec, *sitter.Node, *sitter.Tree, error) {
	lang, ok := p.registry.ForPath(path)
	if !ok {
		return langreg.Language{}, nil, nil, nil, engerr.Input("parse", "unrecognized file extension: "+path)
	}
	spec, ok := specs[lang.ID]
	if !ok {
		return langreg.Language{}, nil, nil, nil, engerr.Input("parse", "unsupported language: "+lang.ID)
	}
	grammar := p.registry.Grammar(lang.ID)
	if grammar == nil {
		return lang, spec, nil, nil, nil
	}
	sp := sitter.NewParser()
	defer sp.Close()
	if err := sp.SetLanguage(grammar); err != nil {
		return lang, spec, nil, nil, nil
	}
	cst := sp.Parse(source, nil)
	if cst == nil {
		return lang, spec, nil, nil, nil
	}
	return lang, spec, cst.RootNode(), cst, nil
}

// walkTopLevel implements the spec's top-level symbol-extraction rule: walk
// direct children of root, skip comments but remember the most recent
// doc-comment for the next symbol (carried forward across blank lines,
// reset only when a non-comment, non-symbol sibling is seen), and unwrap
// export-wrapper nodes to the underlying declaration.
func walkTopLevel(root *sitter.Node, content []byte, spec *languageSpec) []*model.Symbol {
	var out []*model.Symbol
	var pendingDoc strings.Builder

	count := root.ChildCount()
	for i := uint(0); i < count; i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		kind := child.Kind()

		if spec.isComment != nil && spec.isComment(kind) {
			if spec.commentText != nil {
				text := spec.commentText(child, content)
				if text != "" {
					if pendingDoc.Len() > 0 {
						pendingDoc.WriteString("\n")
					}
					pendingDoc.WriteString(text)
				}
			}
			continue
		}

		sym := spec.handleNode(child, content)
		if sym == nil {
			pendingDoc.Reset()
			continue
		}

		sym.Doc = pendingDoc.String()
		pendingDoc.Reset()

		if sym.Kind.IsContainer() && spec.containerBody != nil {
			if body := spec.containerBody(sym, child); body != nil {
				sym.Children = walkContainer(body, content, spec)
			}
		}

		out = append(out, sym)
	}
	return out
}

// walkContainer recurses only into container node types (class/interface/
// namespace/enum bodies) — never into function bodies, so local variables
// never appear as symbols.
func walkContainer(body *sitter.Node, content []byte, spec *languageSpec) []*model.Symbol {
	var out []*model.Symbol
	var pendingDoc strings.Builder

	count := body.ChildCount()
	for i := uint(0); i < count; i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		kind := child.Kind()

		if spec.isComment != nil && spec.isComment(kind) {
			if spec.commentText != nil {
				text := spec.commentText(child, content)
				if text != "" {
					if pendingDoc.Len() > 0 {
						pendingDoc.WriteString("\n")
					}
					pendingDoc.WriteString(text)
				}
			}
			continue
		}

		sym := spec.handleNode(child, content)
		if sym == nil {
			pendingDoc.Reset()
			continue
		}
		sym.Doc = pendingDoc.String()
		pendingDoc.Reset()

		if sym.Kind.IsContainer() && spec.containerBody != nil {
			if nested := spec.containerBody(sym, child); nested != nil {
				sym.Children = walkContainer(nested, content, spec)
			}
		}

		out = append(out, sym)
	}
	return out
}

// collectSyntaxErrors walks the tree recording one SyntaxError per actual
// defect node (an ERROR node or a missing node), not per ancestor of one.
// node.HasError() is a transitive predicate — true for every ancestor on the
// path down to a real defect — so it is used only to decide whether a
// subtree is worth descending into, never to decide whether to record.
func collectSyntaxErrors(root *sitter.Node) []model.SyntaxError {
	var errs []model.SyntaxError
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil || !node.HasError() {
			return
		}
		if node.Kind() == "ERROR" || node.IsMissing() {
			errs = append(errs, model.SyntaxError{
				Message: "syntax error at " + node.Kind() + " node",
				Span:    spanOf(node),
			})
			return
		}
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	return errs
}

func spanOf(node *sitter.Node) model.Span {
	start := node.StartPosition()
	end := node.EndPosition()
	return model.Span{
		Start: model.Position{Line: int(start.Row) + 1, Column: int(start.Column) + 1, Offset: int(node.StartByte())},
		End:   model.Position{Line: int(end.Row) + 1, Column: int(end.Column) + 1, Offset: int(node.EndByte())},
	}
}

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start >= uint(len(content)) || end > uint(len(content)) || start >= end {
		return ""
	}
	return string(content[start:end])
}

func childByKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		c := node.Child(i)
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func childByFieldName(node *sitter.Node, field string) *sitter.Node {
	if node == nil {
		return nil
	}
	return node.ChildByFieldName(field)
}

func lineAt(content []byte, line int) string {
	lines := strings.Split(string(content), "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[line-1])
}
