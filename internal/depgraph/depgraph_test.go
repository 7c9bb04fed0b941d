package depgraph

import (
	"context"
	"testing"

	"github.com/go-logr/logr"

	"github.com/73ai/code-context/internal/fsx"
	"github.com/73ai/code-context/internal/langreg"
	"github.com/73ai/code-context/internal/projindex"
	"github.com/73ai/code-context/internal/synparse"
)

func buildAnalyzer(t *testing.T, files map[string]string) *Analyzer {
	t.Helper()
	fs := fsx.NewMem("/ws")
	for path, content := range files {
		if err := fs.Write(path, []byte(content)); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	ix := projindex.New(projindex.Config{FS: fs})
	if _, err := ix.IndexProject(context.Background(), ""); err != nil {
		t.Fatalf("IndexProject: %v", err)
	}
	parser := synparse.New(langreg.New(), logr.Discard())
	return New(ix, fs, parser, []string{".go"})
}

// S4: two files mutually importing each other report exactly one cycle of
// length 2, with the correct closing-import line.
func TestAnalyzeDependenciesFindsMutualImportCycle(t *testing.T) {
	a := buildAnalyzer(t, map[string]string{
		"a.go": "package a\n\nimport \"./b\"\n\nvar _ = b.X\n",
		"b.go": "package a\n\nimport \"./a\"\n\nvar _ = a.X\n",
	})

	analysis, err := a.AnalyzeDependencies()
	if err != nil {
		t.Fatalf("AnalyzeDependencies: %v", err)
	}
	if len(analysis.Cycles) != 1 {
		t.Fatalf("Cycles = %d, want 1: %+v", len(analysis.Cycles), analysis.Cycles)
	}
	cyc := analysis.Cycles[0]
	if len(cyc.Files) != 2 {
		t.Fatalf("cycle length = %d, want 2: %+v", len(cyc.Files), cyc)
	}
	if cyc.Closing.Line != 3 {
		t.Fatalf("closing import line = %d, want 3: %+v", cyc.Closing.Line, cyc)
	}
}

func TestAnalyzeDependenciesNoCycleForLinearImports(t *testing.T) {
	a := buildAnalyzer(t, map[string]string{
		"a.go": "package a\n\nimport \"./b\"\n\nvar _ = b.X\n",
		"b.go": "package a\n\nvar X int\n",
	})

	analysis, err := a.AnalyzeDependencies()
	if err != nil {
		t.Fatalf("AnalyzeDependencies: %v", err)
	}
	if len(analysis.Cycles) != 0 {
		t.Fatalf("expected no cycles, got %+v", analysis.Cycles)
	}
	if len(analysis.TopOutDegree) == 0 || analysis.TopOutDegree[0].FilePath != "a.go" {
		t.Fatalf("expected a.go to rank highest by out-degree, got %+v", analysis.TopOutDegree)
	}
	if len(analysis.TopInDegree) == 0 || analysis.TopInDegree[0].FilePath != "b.go" {
		t.Fatalf("expected b.go to rank highest by in-degree, got %+v", analysis.TopInDegree)
	}
}

func TestResolveTriesExtensionThenIndexThenJsToTsRewrite(t *testing.T) {
	fileSet := map[string]bool{
		"pkg/index.ts": true,
	}
	target, ok := resolve("main.ts", "./pkg", fileSet, []string{".ts"})
	if !ok || target != "pkg/index.ts" {
		t.Fatalf("resolve(./pkg) = %q, %v, want pkg/index.ts, true", target, ok)
	}

	fileSet = map[string]bool{"util.ts": true}
	target, ok = resolve("main.js", "./util.js", fileSet, []string{".ts"})
	if !ok || target != "util.ts" {
		t.Fatalf("resolve(./util.js) = %q, %v, want util.ts, true", target, ok)
	}
}

func TestResolveIgnoresNonRelativeSpecifiers(t *testing.T) {
	if isRelative("fmt") {
		t.Fatal("expected bare package specifier to be non-relative")
	}
	if !isRelative("./sibling") || !isRelative("/abs/path") {
		t.Fatal("expected ./ and / prefixed specifiers to be relative")
	}
}
