package insight

import (
	"context"
	"testing"

	"github.com/go-logr/logr"

	"github.com/73ai/code-context/internal/depgraph"
	"github.com/73ai/code-context/internal/fsx"
	"github.com/73ai/code-context/internal/langreg"
	"github.com/73ai/code-context/internal/model"
	"github.com/73ai/code-context/internal/projindex"
	"github.com/73ai/code-context/internal/refsearch"
	"github.com/73ai/code-context/internal/synparse"
)

func buildSynthesizer(t *testing.T, files map[string]string) (*Synthesizer, *projindex.Index) {
	t.Helper()
	fs := fsx.NewMem("/ws")
	for path, content := range files {
		if err := fs.Write(path, []byte(content)); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	registry := langreg.New()
	ix := projindex.New(projindex.Config{FS: fs, Registry: registry})
	if _, err := ix.IndexProject(context.Background(), ""); err != nil {
		t.Fatalf("IndexProject: %v", err)
	}
	parser := synparse.New(registry, logr.Discard())
	search := refsearch.New(ix, fs)
	deps := depgraph.New(ix, fs, parser, []string{".go"})
	syn := New(ix, search, deps, fs, parser, registry, nil)
	return syn, ix
}

func TestGetInsightFileReturnsFileInsight(t *testing.T) {
	syn, _ := buildSynthesizer(t, map[string]string{
		"greet.go": "package main\n\nfunc greet() {}\n",
	})

	result, err := syn.GetInsight("greet.go", model.DefaultInsightOptions())
	if err != nil {
		t.Fatalf("GetInsight: %v", err)
	}
	fi, ok := result.(*model.FileInsight)
	if !ok {
		t.Fatalf("GetInsight returned %T, want *model.FileInsight", result)
	}
	if fi.FilePath != "greet.go" {
		t.Fatalf("FilePath = %q, want greet.go", fi.FilePath)
	}
	if len(fi.Symbols) == 0 {
		t.Fatal("expected at least one symbol")
	}
}

func TestGetInsightDirectoryReturnsDirectoryInsight(t *testing.T) {
	syn, _ := buildSynthesizer(t, map[string]string{
		"pkg/a.go":      "package pkg\n\nfunc A() {}\n",
		"pkg/a_test.go": "package pkg\n\nfunc TestA() {}\n",
	})

	result, err := syn.GetInsight("pkg", model.DefaultInsightOptions())
	if err != nil {
		t.Fatalf("GetInsight: %v", err)
	}
	di, ok := result.(*model.DirectoryInsight)
	if !ok {
		t.Fatalf("GetInsight returned %T, want *model.DirectoryInsight", result)
	}
	if len(di.SourceFiles) != 1 || di.SourceFiles[0] != "pkg/a.go" {
		t.Fatalf("SourceFiles = %v, want [pkg/a.go]", di.SourceFiles)
	}
	if len(di.TestFiles) != 1 || di.TestFiles[0] != "pkg/a_test.go" {
		t.Fatalf("TestFiles = %v, want [pkg/a_test.go]", di.TestFiles)
	}
}

func TestGetInsightSymbolReturnsSymbolInsight(t *testing.T) {
	syn, _ := buildSynthesizer(t, map[string]string{
		"a.go": "package a\n\nfunc helper() int {\n\treturn 1\n}\n",
		"b.go": "package a\n\nfunc caller() int {\n\treturn helper()\n}\n",
	})

	result, err := syn.GetInsight("helper", model.DefaultInsightOptions())
	if err != nil {
		t.Fatalf("GetInsight: %v", err)
	}
	si, ok := result.(*model.SymbolInsight)
	if !ok {
		t.Fatalf("GetInsight returned %T, want *model.SymbolInsight", result)
	}
	if si.Symbol.Name != "helper" {
		t.Fatalf("Symbol.Name = %q, want helper", si.Symbol.Name)
	}
	found := false
	for _, c := range si.Callers {
		if c.CallerName == "caller" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected caller() among Callers, got %+v", si.Callers)
	}
}

func TestGetInsightSymbolNotFound(t *testing.T) {
	syn, _ := buildSynthesizer(t, map[string]string{
		"a.go": "package a\n\nfunc helper() {}\n",
	})

	if _, err := syn.GetInsight("doesNotExist", model.DefaultInsightOptions()); err == nil {
		t.Fatal("expected a not-found error")
	}
}

func TestGetInsightSymbolAmbiguous(t *testing.T) {
	syn, _ := buildSynthesizer(t, map[string]string{
		"a.go": "package a\n\nfunc doThing() {}\nfunc doThingElse() {}\n",
	})

	if _, err := syn.GetInsight("do", model.DefaultInsightOptions()); err == nil {
		t.Fatal("expected an ambiguity error")
	}
}
