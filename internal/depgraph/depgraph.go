// Package depgraph implements the Dependency Analyzer (§4.9): it builds
// the directed import graph over the indexed files, finds cycles via a
// single depth-first traversal with a recursion-stack set, and ranks files
// by in/out-degree.
package depgraph

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/73ai/code-context/internal/fsx"
	"github.com/73ai/code-context/internal/model"
)

// IndexReader is the subset of the Project Index this component reads.
type IndexReader interface {
	GetIndexedFiles() []string
}

// ImportExtractor is the Parser capability this component depends on.
type ImportExtractor interface {
	ExtractImports(source []byte, path string) ([]model.ImportInfo, error)
}

// Analyzer builds and analyzes the import graph over an IndexReader's
// current file set.
type Analyzer struct {
	index      IndexReader
	fs         *fsx.FS
	parser     ImportExtractor
	extensions []string
}

// New builds an Analyzer. extensions is the set of known source extensions
// (including the leading dot) tried during relative-import resolution.
func New(index IndexReader, fs *fsx.FS, parser ImportExtractor, extensions []string) *Analyzer {
	return &Analyzer{index: index, fs: fs, parser: parser, extensions: extensions}
}

type edge struct {
	to   string
	line int
}

// AnalyzeDependencies builds the adjacency map over every indexed file,
// counts total imports, finds cycles (canonicalized and deduped per
// SPEC_FULL.md's recorded Open Question decision), and ranks the top 10
// files by in- and out-degree.
func (a *Analyzer) AnalyzeDependencies() (model.DependencyAnalysis, error) {
	files := a.index.GetIndexedFiles()
	fileSet := make(map[string]bool, len(files))
	for _, f := range files {
		fileSet[f] = true
	}

	adjacency := make(map[string][]edge, len(files))
	totalImports := 0
	for _, f := range files {
		source, err := a.fs.Read(f)
		if err != nil {
			continue // a file that cannot be read is skipped without logging; overall analysis still succeeds
		}
		imports, err := a.parser.ExtractImports(source, f)
		if err != nil {
			continue
		}
		for _, imp := range imports {
			totalImports++
			if !isRelative(imp.Source) {
				continue
			}
			target, ok := resolve(f, imp.Source, fileSet, a.extensions)
			if !ok {
				continue
			}
			adjacency[f] = append(adjacency[f], edge{to: target, line: imp.Line})
		}
	}

	outDegree := make(map[string]int, len(files))
	inDegree := make(map[string]int, len(files))
	for f, edges := range adjacency {
		outDegree[f] = len(edges)
		for _, e := range edges {
			inDegree[e.to]++
		}
	}

	cycles := findCycles(files, adjacency)

	return model.DependencyAnalysis{
		TotalFiles:   len(files),
		TotalImports: totalImports,
		TopOutDegree: topDegree(outDegree, files),
		TopInDegree:  topDegree(inDegree, files),
		Cycles:       cycles,
	}, nil
}

// ResolvedImports returns the indexed files that file's relative imports
// resolve to, in source order. It is exported so the Insight Synthesizer
// can answer "which directories depend on this one" without duplicating
// the resolution rules.
func (a *Analyzer) ResolvedImports(file string) ([]string, error) {
	source, err := a.fs.Read(file)
	if err != nil {
		return nil, err
	}
	imports, err := a.parser.ExtractImports(source, file)
	if err != nil {
		return nil, err
	}

	fileSet := make(map[string]bool)
	for _, f := range a.index.GetIndexedFiles() {
		fileSet[f] = true
	}

	var out []string
	for _, imp := range imports {
		if !isRelative(imp.Source) {
			continue
		}
		if target, ok := resolve(file, imp.Source, fileSet, a.extensions); ok {
			out = append(out, target)
		}
	}
	return out, nil
}

func isRelative(specifier string) bool {
	return strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/")
}

// resolve attempts to match a relative import specifier to an indexed
// file, in the order §4.9 prescribes: exact match, then each known
// extension appended, then "<spec>/index.<ext>", then a ".js"->".ts"
// rewrite.
func resolve(fromFile, specifier string, fileSet map[string]bool, extensions []string) (string, bool) {
	dir := filepath.Dir(fromFile)
	joined := filepath.ToSlash(filepath.Join(dir, specifier))

	if fileSet[joined] {
		return joined, true
	}
	for _, ext := range extensions {
		candidate := joined + ext
		if fileSet[candidate] {
			return candidate, true
		}
	}
	for _, ext := range extensions {
		candidate := filepath.ToSlash(filepath.Join(joined, "index"+ext))
		if fileSet[candidate] {
			return candidate, true
		}
	}
	if strings.HasSuffix(joined, ".js") {
		candidate := strings.TrimSuffix(joined, ".js") + ".ts"
		if fileSet[candidate] {
			return candidate, true
		}
	}
	return "", false
}

func topDegree(degree map[string]int, files []string) []model.FileDegree {
	out := make([]model.FileDegree, 0, len(files))
	for _, f := range files {
		out = append(out, model.FileDegree{FilePath: f, Degree: degree[f]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Degree != out[j].Degree {
			return out[i].Degree > out[j].Degree
		}
		return out[i].FilePath < out[j].FilePath
	})
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

// findCycles runs a single depth-first traversal per unvisited root with a
// recursion-stack set; a back-edge to a node on the current stack closes a
// cycle. Each reported cycle is rotated to start at its
// lexicographically-smallest file and deduped by that canonical form, so
// the same cycle reached from different DFS roots is reported once.
func findCycles(files []string, adjacency map[string][]edge) []model.Cycle {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	visited := make(map[string]bool, len(files))
	onStack := make(map[string]bool, len(files))
	var stack []string
	seen := make(map[string]bool)
	var cycles []model.Cycle

	var visit func(node string)
	visit = func(node string) {
		visited[node] = true
		onStack[node] = true
		stack = append(stack, node)

		for _, e := range adjacency[node] {
			if onStack[e.to] {
				idx := indexOf(stack, e.to)
				if idx >= 0 {
					cyclePath := append([]string(nil), stack[idx:]...)
					closing := model.ClosingImport{From: node, To: e.to, Line: e.line}
					canon, rotatedClosing := canonicalizeCycle(cyclePath, closing)
					key := strings.Join(canon, "\x00")
					if !seen[key] {
						seen[key] = true
						cycles = append(cycles, model.Cycle{Files: canon, Closing: rotatedClosing})
					}
				}
				continue
			}
			if !visited[e.to] {
				visit(e.to)
			}
		}

		stack = stack[:len(stack)-1]
		onStack[node] = false
	}

	for _, f := range sorted {
		if !visited[f] {
			visit(f)
		}
	}
	return cycles
}

func indexOf(stack []string, node string) int {
	for i, s := range stack {
		if s == node {
			return i
		}
	}
	return -1
}

// canonicalizeCycle rotates path so it starts at its lexicographically
// smallest element, preserving direction. The closing import is returned
// unchanged: it stays the back-edge the traversal found, from the file that
// was last on the stack to the file where the cycle was entered, which after
// rotation need not be the rotated path's last and first elements.
func canonicalizeCycle(path []string, closing model.ClosingImport) ([]string, model.ClosingImport) {
	minIdx := 0
	for i, p := range path {
		if p < path[minIdx] {
			minIdx = i
		}
	}
	rotated := make([]string, len(path))
	for i := range path {
		rotated[i] = path[(minIdx+i)%len(path)]
	}
	return rotated, closing
}
