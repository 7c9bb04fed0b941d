// Package model defines the data types shared across the indexing engine:
// positions and spans within source files, the symbol tree produced by the
// parser, the flattened cross-file symbol table, import/export metadata, and
// the dependency graph summary.
package model

import "fmt"

// Position is a location within a source file. Line and Column are
// 1-indexed; Offset is the 0-indexed byte offset and is the only field that
// uniquely identifies a character — Line and Column are always derivable
// from Offset plus the file content.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Span is a half-open range within a single file: inclusive of Start,
// exclusive of End, at the character level.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether the given span lies entirely within s.
func (s Span) Contains(inner Span) bool {
	return s.Start.Offset <= inner.Start.Offset && inner.End.Offset <= s.End.Offset
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// SymbolKind is the closed set of declaration kinds the parser recognizes.
type SymbolKind string

const (
	KindModule      SymbolKind = "module"
	KindNamespace   SymbolKind = "namespace"
	KindClass       SymbolKind = "class"
	KindInterface   SymbolKind = "interface"
	KindTypeAlias   SymbolKind = "type_alias"
	KindEnum        SymbolKind = "enum"
	KindEnumMember  SymbolKind = "enum_member"
	KindFunction    SymbolKind = "function"
	KindMethod      SymbolKind = "method"
	KindConstructor SymbolKind = "constructor"
	KindProperty    SymbolKind = "property"
	KindField       SymbolKind = "field"
	KindVariable    SymbolKind = "variable"
	KindConstant    SymbolKind = "constant"
	KindParameter   SymbolKind = "parameter"
	KindImport      SymbolKind = "import"
)

// IsContainer reports whether symbols of this kind may carry children.
func (k SymbolKind) IsContainer() bool {
	switch k {
	case KindClass, KindInterface, KindNamespace, KindEnum, KindModule:
		return true
	default:
		return false
	}
}

// Symbol is one declaration in a file's symbol tree.
type Symbol struct {
	Name        string     `json:"name"`
	Kind        SymbolKind `json:"kind"`
	Declaration Span       `json:"declaration"`
	Body        *Span      `json:"body,omitempty"`
	Doc         string     `json:"doc,omitempty"`
	Children    []*Symbol  `json:"children,omitempty"`
}

// SyntaxError is a parse error or missing-node diagnostic anchored to a span.
type SyntaxError struct {
	Message string `json:"message"`
	Span    Span   `json:"span"`
}

// SymbolTree is the full per-file parse result: every top-level symbol
// (including imports, which callers must filter for display but which
// extractImports relies on) plus any syntax errors found.
type SymbolTree struct {
	FilePath   string        `json:"filePath"`
	LanguageID string        `json:"languageId"`
	Symbols    []*Symbol     `json:"symbols"`
	Errors     []SyntaxError `json:"errors,omitempty"`
}

// VisibleSymbols returns the tree's top-level symbols with import-kind
// symbols filtered out, per the spec's "MUST be filtered from visual
// listing but preserved in tree" rule.
func (t *SymbolTree) VisibleSymbols() []*Symbol {
	out := make([]*Symbol, 0, len(t.Symbols))
	for _, s := range t.Symbols {
		if s.Kind != KindImport {
			out = append(out, s)
		}
	}
	return out
}

// IndexedSymbol is the flattened, cross-file view of a Symbol stored by the
// Project Index.
type IndexedSymbol struct {
	Name          string     `json:"name"`
	QualifiedName string     `json:"qualifiedName"`
	Kind          SymbolKind `json:"kind"`
	FilePath      string     `json:"filePath"`
	StartLine     int        `json:"startLine"`
	EndLine       int        `json:"endLine"`
}

// ImportBinding is one name imported (or required) by an ImportInfo.
type ImportBinding struct {
	ExportedName string `json:"exportedName"`
	LocalName    string `json:"localName"`
	TypeOnly     bool   `json:"typeOnly,omitempty"`
}

// ImportType tags the syntactic shape of an import statement.
type ImportType string

const (
	ImportDefault    ImportType = "default"
	ImportNamed      ImportType = "named"
	ImportNamespace  ImportType = "namespace"
	ImportSideEffect ImportType = "side_effect"
	ImportType_      ImportType = "type"
	ImportRequire    ImportType = "require"
)

// ImportInfo is the language-neutral description of one import statement.
type ImportInfo struct {
	Source   string          `json:"source"`
	Type     ImportType      `json:"type"`
	Bindings []ImportBinding `json:"bindings"`
	Line     int             `json:"line"`
	Raw      string          `json:"raw"`
}

// ExportBinding is one name an ExportInfo makes visible outside the file.
type ExportBinding struct {
	ExportedName string      `json:"exportedName"`
	LocalName    string      `json:"localName"`
	Kind         *SymbolKind `json:"kind,omitempty"`
	TypeOnly     bool        `json:"typeOnly,omitempty"`
}

// ExportType tags the syntactic shape of an export statement.
type ExportType string

const (
	ExportNamed       ExportType = "named"
	ExportDefault     ExportType = "default"
	ExportDeclaration ExportType = "declaration"
	ExportReexport    ExportType = "reexport"
	ExportNamespace   ExportType = "namespace"
)

// ExportInfo is the language-neutral description of one export statement.
type ExportInfo struct {
	Type     ExportType      `json:"type"`
	Bindings []ExportBinding `json:"bindings"`
	Source   string          `json:"source,omitempty"`
	Line     int             `json:"line"`
	Raw      string          `json:"raw"`
}

// CallSite is one occurrence of a symbol being invoked.
type CallSite struct {
	FilePath        string `json:"filePath"`
	Line            int    `json:"line"`
	Column          int    `json:"column"`
	CallerName      string `json:"callerName"`
	SurroundingLine string `json:"surroundingLine"`
}

// SymbolReference is one textual occurrence of an identifier.
type SymbolReference struct {
	FilePath        string `json:"filePath"`
	SymbolName      string `json:"symbolName"`
	Line            int    `json:"line"`
	Column          int    `json:"column"`
	SurroundingLine string `json:"surroundingLine"`
	IsDefinition    bool   `json:"isDefinition"`
}

// ClosingImport is the edge that closes a dependency cycle.
type ClosingImport struct {
	From string `json:"from"`
	To   string `json:"to"`
	Line int    `json:"line"`
}

// Cycle is a closed walk in the import graph.
type Cycle struct {
	Files   []string      `json:"files"`
	Closing ClosingImport `json:"closingImport"`
}

// DependencyAnalysis is the summary produced by the dependency analyzer.
type DependencyAnalysis struct {
	TotalFiles   int             `json:"totalFiles"`
	TotalImports int             `json:"totalImports"`
	TopOutDegree []FileDegree    `json:"topOutDegree"`
	TopInDegree  []FileDegree    `json:"topInDegree"`
	Cycles       []Cycle         `json:"cycles"`
}

// FileDegree pairs a file with an in- or out-degree count.
type FileDegree struct {
	FilePath string `json:"filePath"`
	Degree   int    `json:"degree"`
}

// IndexStats summarizes the result of a full or incremental index pass.
type IndexStats struct {
	FilesIndexed      int            `json:"filesIndexed"`
	SymbolsIndexed    int            `json:"symbolsIndexed"`
	LanguageHistogram map[string]int `json:"languageHistogram"`
	ParseErrors       int            `json:"parseErrors"`
	TimestampUnix     int64          `json:"timestamp"`
}

// Commit is one entry in the recent-changes collaborator's history for a
// path: the out-of-scope git collaborator yields these, and the Insight
// Synthesizer treats the collaborator as a pure function of
// (root, relativePath, maxCount).
type Commit struct {
	Hash         string `json:"hash"`
	Author       string `json:"author"`
	Message      string `json:"message"`
	RelativeDate string `json:"relativeDate"`
}

// ComplexityBucket is a coarse size/complexity classification for a file,
// derived from its line count and symbol count.
type ComplexityBucket string

const (
	ComplexityTrivial  ComplexityBucket = "trivial"
	ComplexitySmall    ComplexityBucket = "small"
	ComplexityModerate ComplexityBucket = "moderate"
	ComplexityLarge    ComplexityBucket = "large"
)

// InsightOptions controls how much the Insight Synthesizer computes and
// returns for a single getInsight call.
type InsightOptions struct {
	IncludeCallGraph bool
	IncludeCode      bool
	MaxChanges       int
}

// DefaultInsightOptions mirrors §6's getInsight defaults.
func DefaultInsightOptions() InsightOptions {
	return InsightOptions{IncludeCallGraph: true, IncludeCode: true, MaxChanges: 10}
}

// FileInsight answers "what is this file" by composing the Project Index,
// the Parser's extracted imports/exports, and the recent-changes
// collaborator.
type FileInsight struct {
	FilePath      string           `json:"filePath"`
	Symbols       []IndexedSymbol  `json:"symbols"`
	Imports       []ImportInfo     `json:"imports"`
	Exports       []ExportInfo     `json:"exports"`
	Complexity    ComplexityBucket `json:"complexity"`
	Summary       string           `json:"summary"`
	RecentChanges []Commit         `json:"recentChanges"`
}

// EntryPoint is a file recognized as a directory's conventional entry point
// (index.*/main.*/mod.* at the directory root or in a src/ child).
type EntryPoint struct {
	FilePath string `json:"filePath"`
	Kind     string `json:"kind"`
}

// DirectoryInsight answers "what is this directory" by aggregating the
// files it recursively contains.
type DirectoryInsight struct {
	DirPath              string       `json:"dirPath"`
	SourceFiles          []string     `json:"sourceFiles"`
	TestFiles            []string     `json:"testFiles"`
	EntryPoints          []EntryPoint `json:"entryPoints"`
	TotalSymbols         int          `json:"totalSymbols"`
	TotalLines           int          `json:"totalLines"`
	ExternalDependencies []string     `json:"externalDependencies"`
	InternalDependents   []string     `json:"internalDependents"`
}

// SymbolInsight answers "what is this symbol" with its definition, source,
// call graph, and siblings.
type SymbolInsight struct {
	Symbol         IndexedSymbol `json:"symbol"`
	Source         string        `json:"source,omitempty"`
	Callers        []CallSite    `json:"callers"`
	Callees        []CallSite    `json:"callees"`
	RelatedSymbols []IndexedSymbol `json:"relatedSymbols"`
}
