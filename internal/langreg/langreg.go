// Package langreg maps file extensions to language identifiers and lazily
// loads the tree-sitter grammar handle for each, memoized per process.
package langreg

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language is the descriptor the registry hands back for a recognized
// extension: stable id, display name, and the set of extensions mapped to
// it. The grammar handle itself is not part of the descriptor — callers
// fetch it separately via Grammar, which loads and memoizes lazily.
type Language struct {
	ID          string
	DisplayName string
	Extensions  []string
}

var languages = []Language{
	{ID: "go", DisplayName: "Go", Extensions: []string{".go"}},
	{ID: "python", DisplayName: "Python", Extensions: []string{".py", ".pyi"}},
	{ID: "javascript", DisplayName: "JavaScript", Extensions: []string{".js", ".mjs", ".jsx"}},
	{ID: "typescript", DisplayName: "TypeScript", Extensions: []string{".ts", ".tsx"}},
	{ID: "rust", DisplayName: "Rust", Extensions: []string{".rs"}},
	{ID: "c", DisplayName: "C", Extensions: []string{".c", ".h"}},
	{ID: "cpp", DisplayName: "C++", Extensions: []string{".cpp", ".cxx", ".cc", ".hpp", ".hh"}},
	{ID: "java", DisplayName: "Java", Extensions: []string{".java"}},
}

var grammarLoaders = map[string]func() *sitter.Language{
	"go":         func() *sitter.Language { return sitter.NewLanguage(tree_sitter_go.Language()) },
	"python":     func() *sitter.Language { return sitter.NewLanguage(tree_sitter_python.Language()) },
	"javascript": func() *sitter.Language { return sitter.NewLanguage(tree_sitter_javascript.Language()) },
	"typescript": func() *sitter.Language { return sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()) },
	"rust":       func() *sitter.Language { return sitter.NewLanguage(tree_sitter_rust.Language()) },
	"c":          func() *sitter.Language { return sitter.NewLanguage(tree_sitter_c.Language()) },
	"cpp":        func() *sitter.Language { return sitter.NewLanguage(tree_sitter_cpp.Language()) },
	"java":       func() *sitter.Language { return sitter.NewLanguage(tree_sitter_java.Language()) },
}

// Registry is a pure extension → language lookup. Grammar handles are loaded
// on first use and cached for the lifetime of the Registry.
type Registry struct {
	byExt map[string]Language

	mu       sync.Mutex
	grammars map[string]*sitter.Language
}

// New builds a registry pre-populated with the engine's built-in language
// set.
func New() *Registry {
	r := &Registry{
		byExt:    make(map[string]Language, 16),
		grammars: make(map[string]*sitter.Language, len(languages)),
	}
	for _, lang := range languages {
		for _, ext := range lang.Extensions {
			r.byExt[ext] = lang
		}
	}
	return r
}

// ForExtension returns the language mapped to ext (which should include the
// leading dot, case-insensitively), and false if the extension is unknown —
// the spec's "no language" result, which the parser then rejects.
func (r *Registry) ForExtension(ext string) (Language, bool) {
	lang, ok := r.byExt[strings.ToLower(ext)]
	return lang, ok
}

// ForPath is a convenience wrapper around ForExtension using filepath.Ext.
func (r *Registry) ForPath(path string) (Language, bool) {
	return r.ForExtension(filepath.Ext(path))
}

// Grammar returns the tree-sitter grammar handle for a language id, loading
// and memoizing it on first call. Returns nil if the id is unknown.
func (r *Registry) Grammar(languageID string) *sitter.Language {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.grammars[languageID]; ok {
		return g
	}
	loader, ok := grammarLoaders[languageID]
	if !ok {
		return nil
	}
	g := loader()
	r.grammars[languageID] = g
	return g
}

// Extensions returns every extension the registry recognizes, used by the
// Project Scanner and File Watcher to build their accepted-extension set.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}

// Languages returns the full set of registered language descriptors.
func (r *Registry) Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}
