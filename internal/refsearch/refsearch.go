// Package refsearch implements the Reference & Call Search component
// (§4.8): a text-plus-symbol-span analysis layered over the Project
// Index's symbol tables. It deliberately avoids semantic type resolution —
// full resolution across dynamic, duck-typed, and gradually-typed
// languages is out of scope (§1 Non-goals) — so recall is favored over
// precision: false positives (a match inside a string or comment) are
// accepted since they are easier for a consumer to filter out than a
// missed real hit would be to discover.
package refsearch

import (
	"regexp"
	"sort"
	"strings"

	"github.com/73ai/code-context/internal/fsx"
	"github.com/73ai/code-context/internal/model"
)

// IndexReader is the subset of the Project Index's read surface this
// component needs: the set of indexed files and their flattened symbol
// table, which GetCallees also uses for qualified-name lookups. GetTree is
// part of the interface, but no lookup in this package calls it.
type IndexReader interface {
	GetIndexedFiles() []string
	AllSymbols() []model.IndexedSymbol
	GetTree(path string) (*model.SymbolTree, error)
}

// Searcher answers findReferences/getCallers/getCallees against an
// IndexReader's current tables and the File Abstraction's current source.
type Searcher struct {
	index IndexReader
	fs    *fsx.FS
}

// New builds a Searcher over index, reading current file contents via fs.
func New(index IndexReader, fs *fsx.FS) *Searcher {
	return &Searcher{index: index, fs: fs}
}

// declKeywords are the tokens that, immediately preceding a name match,
// mark it as a declaration rather than a call — per §4.8's getCallers
// rejection rule.
var declKeywords = []string{"function", "class", "interface", "type", "const", "let", "var"}

// calleeKeywords is the fixed control-flow/declaration keyword set getCallees
// rejects identifier( matches against.
var calleeKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"function": true, "return": true, "async": true, "await": true, "new": true,
	"typeof": true, "instanceof": true, "class": true, "interface": true,
	"type": true, "const": true, "let": true, "var": true, "export": true, "import": true,
}

func wordBoundaryRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
}

// FindReferences scans every indexed file's current source for whole-word
// occurrences of symbolName. isDefinition is true iff some indexed symbol
// in that file has the same name and starts on the match's line. Results
// sort definitions first, then by file path, then by line.
func (s *Searcher) FindReferences(symbolName string) ([]model.SymbolReference, error) {
	re := wordBoundaryRe(symbolName)
	defLines := definitionLines(s.index.AllSymbols(), symbolName)

	var out []model.SymbolReference
	for _, path := range s.index.GetIndexedFiles() {
		source, err := s.fs.Read(path)
		if err != nil {
			continue
		}
		lines := strings.Split(string(source), "\n")
		for i, line := range lines {
			lineNo := i + 1
			for _, loc := range re.FindAllStringIndex(line, -1) {
				col := loc[0] + 1
				out = append(out, model.SymbolReference{
					FilePath:        path,
					SymbolName:      symbolName,
					Line:            lineNo,
					Column:          col,
					SurroundingLine: strings.TrimSpace(line),
					IsDefinition:    defLines[fileLine{path, lineNo}],
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDefinition != out[j].IsDefinition {
			return out[i].IsDefinition
		}
		if out[i].FilePath != out[j].FilePath {
			return out[i].FilePath < out[j].FilePath
		}
		return out[i].Line < out[j].Line
	})
	return out, nil
}

type fileLine struct {
	path string
	line int
}

func definitionLines(symbols []model.IndexedSymbol, name string) map[fileLine]bool {
	out := make(map[fileLine]bool)
	for _, sym := range symbols {
		if sym.Name == name {
			out[fileLine{sym.FilePath, sym.StartLine}] = true
		}
	}
	return out
}

// callRe matches an identifier immediately followed (after optional
// whitespace) by "(".
var callRe = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// GetCallers finds every call site of symbolName within the body of every
// indexed function/method symbol, excluding declaration-shaped matches and
// self-recursive matches (an enclosing symbol calling itself by its own
// name is not reported as a "caller" — see SPEC_FULL.md's recorded Open
// Question decision on this).
func (s *Searcher) GetCallers(symbolName string) ([]model.CallSite, error) {
	var out []model.CallSite
	for _, sym := range s.index.AllSymbols() {
		if sym.Kind != model.KindFunction && sym.Kind != model.KindMethod {
			continue
		}
		source, err := s.fs.Read(sym.FilePath)
		if err != nil {
			continue
		}
		lines := strings.Split(string(source), "\n")
		start, end := sym.StartLine, sym.EndLine
		if start < 1 {
			start = 1
		}
		if end > len(lines) {
			end = len(lines)
		}
		for lineNo := start; lineNo <= end; lineNo++ {
			line := lines[lineNo-1]
			for _, m := range callRe.FindAllStringSubmatchIndex(line, -1) {
				name := line[m[2]:m[3]]
				if name != symbolName {
					continue
				}
				if sym.Name == symbolName {
					continue // self-recursion is never reported as a caller
				}
				if isDeclarationContext(line, m[0]) {
					continue
				}
				out = append(out, model.CallSite{
					FilePath:        sym.FilePath,
					Line:            lineNo,
					Column:          m[0] + 1,
					CallerName:      sym.QualifiedName,
					SurroundingLine: strings.TrimSpace(line),
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FilePath != out[j].FilePath {
			return out[i].FilePath < out[j].FilePath
		}
		return out[i].Line < out[j].Line
	})
	return out, nil
}

// isDeclarationContext reports whether the text immediately before a match
// at offset matchStart in line looks like a declaration keyword (optionally
// prefixed by "export" and/or "async"), per §4.8's rejection rule.
func isDeclarationContext(line string, matchStart int) bool {
	prefix := strings.TrimRight(line[:matchStart], " \t")
	for _, kw := range declKeywords {
		if strings.HasSuffix(prefix, kw) {
			return true
		}
	}
	return false
}

// GetCallees locates the symbol identified by (filePath, qualifiedName) and
// scans its body — lines start+1 through end, skipping the declaration
// line itself — for identifier( occurrences, rejecting the fixed keyword
// set and de-duplicating by (identifier, line).
func (s *Searcher) GetCallees(filePath, qualifiedName string) ([]model.CallSite, error) {
	var target *model.IndexedSymbol
	for _, sym := range s.index.AllSymbols() {
		if sym.FilePath == filePath && sym.QualifiedName == qualifiedName {
			sym := sym
			target = &sym
			break
		}
	}
	if target == nil {
		return nil, nil
	}

	source, err := s.fs.Read(filePath)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(source), "\n")

	start := target.StartLine + 1
	end := target.EndLine
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}

	type key struct {
		name string
		line int
	}
	seen := make(map[key]bool)
	var out []model.CallSite

	for lineNo := start; lineNo <= end; lineNo++ {
		if lineNo < 1 || lineNo > len(lines) {
			continue
		}
		line := lines[lineNo-1]
		for _, m := range callRe.FindAllStringSubmatchIndex(line, -1) {
			name := line[m[2]:m[3]]
			if calleeKeywords[name] {
				continue
			}
			k := key{name, lineNo}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, model.CallSite{
				FilePath:        filePath,
				Line:            lineNo,
				Column:          m[0] + 1,
				CallerName:      qualifiedName,
				SurroundingLine: strings.TrimSpace(line),
			})
		}
	}
	return out, nil
}
