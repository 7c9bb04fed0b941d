// Package insight implements the Insight Synthesizer (§4.10): it composes
// the Project Index, Reference & Call Search, Dependency Analyzer, and the
// external recent-changes collaborator into a single getInsight operation.
package insight

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/73ai/code-context/internal/depgraph"
	"github.com/73ai/code-context/internal/engerr"
	"github.com/73ai/code-context/internal/fsx"
	"github.com/73ai/code-context/internal/langreg"
	"github.com/73ai/code-context/internal/model"
	"github.com/73ai/code-context/internal/projindex"
	"github.com/73ai/code-context/internal/refsearch"
	"github.com/73ai/code-context/internal/scanner"
	"github.com/73ai/code-context/internal/synparse"
)

// RecentChanges is the function-shaped "recent changes" collaborator from
// §6: given (relativePath, maxCount), yield the path's commit history. The
// Synthesizer depends only on this shape, never on a concrete git type.
type RecentChanges func(relativePath string, maxCount int) ([]model.Commit, error)

// IndexReader is the subset of the Project Index's read surface the
// Synthesizer composes answers from.
type IndexReader interface {
	GetIndexedFiles() []string
	AllSymbols() []model.IndexedSymbol
	GetTree(path string) (*model.SymbolTree, error)
	SearchSymbols(opts projindex.SearchOptions) ([]model.IndexedSymbol, bool, error)
}

// Synthesizer answers getInsight by composing the core's other components.
type Synthesizer struct {
	index    IndexReader
	search   *refsearch.Searcher
	deps     *depgraph.Analyzer
	fs       *fsx.FS
	parser   *synparse.Parser
	registry *langreg.Registry
	recent   RecentChanges
}

// New builds a Synthesizer. recent may be nil, in which case recent-commits
// lists are always empty (e.g. a workspace with no git repository).
func New(index IndexReader, search *refsearch.Searcher, deps *depgraph.Analyzer, fs *fsx.FS, parser *synparse.Parser, registry *langreg.Registry, recent RecentChanges) *Synthesizer {
	return &Synthesizer{index: index, search: search, deps: deps, fs: fs, parser: parser, registry: registry, recent: recent}
}

// GetInsight classifies target as an absolute path, a workspace-relative
// path, a directory, or a symbol name, and returns one of
// *model.FileInsight, *model.DirectoryInsight, or *model.SymbolInsight.
func (s *Synthesizer) GetInsight(target string, opts model.InsightOptions) (any, error) {
	norm := normalizePath(target)
	files := s.index.GetIndexedFiles()

	fileSet := make(map[string]bool, len(files))
	for _, f := range files {
		fileSet[f] = true
	}

	if fileSet[norm] {
		return s.fileInsight(norm, opts)
	}
	if s.isDirectory(norm, files) {
		return s.directoryInsight(norm, opts)
	}
	return s.symbolInsight(strings.TrimSpace(target), opts)
}

// normalizePath strips a leading "/" (an absolute path is workspace-rooted,
// per §6's "absolute paths begin with / ... that the File Abstraction
// recognizes") and cleans the result to forward-slash form.
func normalizePath(target string) string {
	t := strings.TrimPrefix(target, "/")
	if t == "" || t == "." {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(t))
}

func (s *Synthesizer) isDirectory(norm string, files []string) bool {
	if norm == "" {
		return true
	}
	if stat, err := s.fs.Stats(norm); err == nil && stat.IsDir {
		return true
	}
	prefix := norm + "/"
	for _, f := range files {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}

// fileInsight composes §4.10's file insight.
func (s *Synthesizer) fileInsight(path string, opts model.InsightOptions) (*model.FileInsight, error) {
	var symbols []model.IndexedSymbol
	for _, sym := range s.index.AllSymbols() {
		if sym.FilePath == path {
			symbols = append(symbols, sym)
		}
	}

	source, err := s.fs.Read(path)
	if err != nil {
		return nil, engerr.IO("getInsight", "read "+path, err)
	}
	imports, err := s.parser.ExtractImports(source, path)
	if err != nil {
		imports = nil // parse errors are data, not failures, per §4.8/§4.10's error-handling stance
	}
	exports, err := s.parser.ExtractExports(source, path)
	if err != nil {
		exports = nil
	}

	lineCount := strings.Count(string(source), "\n") + 1
	bucket := complexityBucket(lineCount, len(symbols))

	var recent []model.Commit
	if s.recent != nil {
		recent, _ = s.recent(path, maxChanges(opts))
	}

	return &model.FileInsight{
		FilePath:      path,
		Symbols:       symbols,
		Imports:       imports,
		Exports:       exports,
		Complexity:    bucket,
		Summary:       fileSummary(path, lineCount, symbols, bucket),
		RecentChanges: recent,
	}, nil
}

func fileSummary(path string, lineCount int, symbols []model.IndexedSymbol, bucket model.ComplexityBucket) string {
	return fmt.Sprintf("%s spans %d lines and declares %d symbols (%s complexity).", path, lineCount, len(symbols), bucket)
}

func complexityBucket(lineCount, symbolCount int) model.ComplexityBucket {
	switch {
	case lineCount < 50 && symbolCount < 5:
		return model.ComplexityTrivial
	case lineCount < 200 && symbolCount < 20:
		return model.ComplexitySmall
	case lineCount < 500 && symbolCount < 50:
		return model.ComplexityModerate
	default:
		return model.ComplexityLarge
	}
}

func maxChanges(opts model.InsightOptions) int {
	if opts.MaxChanges > 0 {
		return opts.MaxChanges
	}
	return 10
}

var testFileRe = regexp.MustCompile(`(?i)(^test_|_test\.|\.test\.|\.spec\.)`)

// directoryInsight composes §4.10's directory insight.
func (s *Synthesizer) directoryInsight(dir string, opts model.InsightOptions) (*model.DirectoryInsight, error) {
	sc := scanner.New(s.fs, s.registry.Extensions())
	members, err := sc.Scan(dir)
	if err != nil {
		return nil, engerr.IO("getInsight", "scan "+dir, err)
	}

	memberSet := make(map[string]bool, len(members))
	var sourceFiles, testFiles []string
	totalSymbols, totalLines := 0, 0
	externalDeps := make(map[string]bool)

	for _, f := range members {
		memberSet[f] = true
		base := filepath.Base(f)
		if testFileRe.MatchString(base) {
			testFiles = append(testFiles, f)
		} else {
			sourceFiles = append(sourceFiles, f)
		}

		if source, err := s.fs.Read(f); err == nil {
			totalLines += strings.Count(string(source), "\n") + 1
			if imports, err := s.parser.ExtractImports(source, f); err == nil {
				for _, imp := range imports {
					if !strings.HasPrefix(imp.Source, ".") && !strings.HasPrefix(imp.Source, "/") {
						externalDeps[imp.Source] = true
					}
				}
			}
		}
	}
	for _, sym := range s.index.AllSymbols() {
		if memberSet[sym.FilePath] {
			totalSymbols++
		}
	}

	entryPoints := detectEntryPoints(dir, members)
	internalDependents := s.internalDependents(dir, memberSet)

	return &model.DirectoryInsight{
		DirPath:              dir,
		SourceFiles:          sourceFiles,
		TestFiles:            testFiles,
		EntryPoints:          entryPoints,
		TotalSymbols:         totalSymbols,
		TotalLines:           totalLines,
		ExternalDependencies: sortedKeys(externalDeps),
		InternalDependents:   internalDependents,
	}, nil
}

// detectEntryPoints looks for index.*/main.*/mod.* at dir's root and in a
// src/ child, per §4.10.
func detectEntryPoints(dir string, members []string) []model.EntryPoint {
	roots := map[string]bool{dir: true}
	if dir == "" {
		roots["src"] = true
	} else {
		roots[filepath.ToSlash(filepath.Join(dir, "src"))] = true
	}

	var out []model.EntryPoint
	for _, f := range members {
		parent := filepath.ToSlash(filepath.Dir(f))
		if parent == "." {
			parent = ""
		}
		if !roots[parent] {
			continue
		}
		base := filepath.Base(f)
		for _, kind := range []string{"index", "main", "mod"} {
			if strings.HasPrefix(base, kind+".") {
				out = append(out, model.EntryPoint{FilePath: f, Kind: kind})
				break
			}
		}
	}
	return out
}

// internalDependents finds other directories whose files resolve an import
// into this directory's member set.
func (s *Synthesizer) internalDependents(dir string, members map[string]bool) []string {
	dependents := make(map[string]bool)
	for _, f := range s.index.GetIndexedFiles() {
		if members[f] {
			continue
		}
		resolved, err := s.deps.ResolvedImports(f)
		if err != nil {
			continue
		}
		for _, target := range resolved {
			if members[target] {
				d := filepath.ToSlash(filepath.Dir(f))
				if d == "." {
					d = ""
				}
				if d != dir {
					dependents[d] = true
				}
				break
			}
		}
	}
	return sortedKeys(dependents)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// symbolInsight composes §4.10's symbol insight: exact-match lookup first,
// substring fallback second, with ambiguity and not-found handled per
// §4.10's explicit contract.
func (s *Synthesizer) symbolInsight(name string, opts model.InsightOptions) (*model.SymbolInsight, error) {
	sym, err := s.resolveSymbol(name)
	if err != nil {
		return nil, err
	}

	insight := &model.SymbolInsight{Symbol: sym}

	if opts.IncludeCode {
		if source, err := s.fs.Read(sym.FilePath); err == nil {
			insight.Source = extractBody(source, sym.StartLine, sym.EndLine)
		}
	}

	if opts.IncludeCallGraph {
		if callers, err := s.search.GetCallers(sym.Name); err == nil {
			insight.Callers = dedupeCallers(callers, 10)
		}
		if callees, err := s.search.GetCallees(sym.FilePath, sym.QualifiedName); err == nil {
			insight.Callees = capCallSites(callees, 10)
		}
	}

	for _, other := range s.index.AllSymbols() {
		if other.FilePath == sym.FilePath && other.Name != sym.Name {
			insight.RelatedSymbols = append(insight.RelatedSymbols, other)
		}
	}

	return insight, nil
}

func (s *Synthesizer) resolveSymbol(name string) (model.IndexedSymbol, error) {
	exact, _, err := s.index.SearchSymbols(projindex.SearchOptions{Pattern: "^" + regexp.QuoteMeta(name) + "$"})
	if err != nil {
		return model.IndexedSymbol{}, err
	}
	if len(exact) == 1 {
		return exact[0], nil
	}
	if len(exact) > 1 {
		return model.IndexedSymbol{}, engerr.Ambiguous("getInsight", candidateNames(exact))
	}

	sub, _, err := s.index.SearchSymbols(projindex.SearchOptions{Pattern: regexp.QuoteMeta(name)})
	if err != nil {
		return model.IndexedSymbol{}, err
	}
	if len(sub) == 1 {
		return sub[0], nil
	}
	if len(sub) > 1 {
		return model.IndexedSymbol{}, engerr.Ambiguous("getInsight", candidateNames(sub))
	}
	return model.IndexedSymbol{}, engerr.NotFound("getInsight", "no symbol matching "+name)
}

func candidateNames(symbols []model.IndexedSymbol) []string {
	out := make([]string, len(symbols))
	for i, sym := range symbols {
		out[i] = sym.QualifiedName
	}
	return out
}

func extractBody(source []byte, startLine, endLine int) string {
	lines := strings.Split(string(source), "\n")
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > endLine || startLine > len(lines) {
		return ""
	}
	return strings.Join(lines[startLine-1:endLine], "\n")
}

func dedupeCallers(callers []model.CallSite, max int) []model.CallSite {
	type key struct {
		from string
		file string
	}
	seen := make(map[key]bool)
	var out []model.CallSite
	for _, c := range callers {
		k := key{c.CallerName, c.FilePath}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
		if len(out) >= max {
			break
		}
	}
	return out
}

func capCallSites(sites []model.CallSite, max int) []model.CallSite {
	if len(sites) > max {
		return sites[:max]
	}
	return sites
}
