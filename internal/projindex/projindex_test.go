package projindex

import (
	"context"
	"testing"

	"github.com/73ai/code-context/internal/fsx"
	"github.com/73ai/code-context/internal/model"
)

const greetSource = `package main

import "fmt"

// greet prints a greeting.
func greet(name string) {
	fmt.Println("hello " + name)
}

func main() {
	greet("world")
}
`

func newTestIndex(t *testing.T) (*Index, *fsx.FS) {
	t.Helper()
	fs := fsx.NewMem("/ws")
	if err := fs.Write("greet.go", []byte(greetSource)); err != nil {
		t.Fatalf("write: %v", err)
	}
	ix := New(Config{FS: fs})
	return ix, fs
}

func TestIndexProjectBasics(t *testing.T) {
	ix, _ := newTestIndex(t)

	stats, err := ix.IndexProject(context.Background(), "")
	if err != nil {
		t.Fatalf("IndexProject: %v", err)
	}
	if stats.FilesIndexed != 1 {
		t.Fatalf("FilesIndexed = %d, want 1", stats.FilesIndexed)
	}
	if stats.SymbolsIndexed < 1 {
		t.Fatalf("SymbolsIndexed = %d, want >= 1", stats.SymbolsIndexed)
	}
	if ix.State() != StateReady {
		t.Fatalf("State() = %v, want Ready", ix.State())
	}
	if ix.IsEmpty() {
		t.Fatal("IsEmpty() = true after indexing")
	}
}

func TestSearchSymbolsFindsGreet(t *testing.T) {
	ix, _ := newTestIndex(t)
	if _, err := ix.IndexProject(context.Background(), ""); err != nil {
		t.Fatalf("IndexProject: %v", err)
	}

	results, truncated, err := ix.SearchSymbols(SearchOptions{Pattern: "greet"})
	if err != nil {
		t.Fatalf("SearchSymbols: %v", err)
	}
	if truncated {
		t.Fatal("unexpected truncation")
	}
	found := false
	for _, r := range results {
		if r.Name == "greet" && r.Kind == model.KindFunction {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a greet function symbol, got %+v", results)
	}
}

func TestSearchSymbolsEmptyPatternMatchesNothing(t *testing.T) {
	ix, _ := newTestIndex(t)
	if _, err := ix.IndexProject(context.Background(), ""); err != nil {
		t.Fatalf("IndexProject: %v", err)
	}
	results, _, err := ix.SearchSymbols(SearchOptions{Pattern: "^$"})
	if err != nil {
		t.Fatalf("SearchSymbols: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no matches for ^$, got %v", results)
	}
}

func TestGetFileSymbolsExcludesImports(t *testing.T) {
	ix, _ := newTestIndex(t)
	if _, err := ix.IndexProject(context.Background(), ""); err != nil {
		t.Fatalf("IndexProject: %v", err)
	}
	symbols, err := ix.GetFileSymbols("greet.go")
	if err != nil {
		t.Fatalf("GetFileSymbols: %v", err)
	}
	for _, s := range symbols {
		if s.Kind == model.KindImport {
			t.Fatalf("GetFileSymbols returned an import symbol: %+v", s)
		}
	}
}

func TestReindexFileReplacesSymbolsExclusively(t *testing.T) {
	ix, fs := newTestIndex(t)
	if _, err := ix.IndexProject(context.Background(), ""); err != nil {
		t.Fatalf("IndexProject: %v", err)
	}

	newSource := `package main

func onlyNewFunc() {}
`
	if err := fs.Write("greet.go", []byte(newSource)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ix.ReindexFile("greet.go"); err != nil {
		t.Fatalf("ReindexFile: %v", err)
	}

	symbols, err := ix.GetFileSymbols("greet.go")
	if err != nil {
		t.Fatalf("GetFileSymbols: %v", err)
	}
	if len(symbols) != 1 || symbols[0].Name != "onlyNewFunc" {
		t.Fatalf("expected exactly onlyNewFunc, got %+v", symbols)
	}

	results, _, err := ix.SearchSymbols(SearchOptions{Pattern: "greet"})
	if err != nil {
		t.Fatalf("SearchSymbols: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no trace of old greet symbol, got %v", results)
	}
}

func TestRemoveFileDropsTreeAndSymbols(t *testing.T) {
	ix, _ := newTestIndex(t)
	if _, err := ix.IndexProject(context.Background(), ""); err != nil {
		t.Fatalf("IndexProject: %v", err)
	}
	if err := ix.RemoveFile("greet.go"); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if _, err := ix.GetTree("greet.go"); err == nil {
		t.Fatal("expected GetTree to fail after RemoveFile")
	}
	if !ix.IsEmpty() {
		t.Fatal("expected IsEmpty after removing the only file")
	}
}

func TestReindexFileTwiceIsIdempotent(t *testing.T) {
	ix, _ := newTestIndex(t)
	if _, err := ix.IndexProject(context.Background(), ""); err != nil {
		t.Fatalf("IndexProject: %v", err)
	}
	if err := ix.ReindexFile("greet.go"); err != nil {
		t.Fatalf("ReindexFile #1: %v", err)
	}
	first, _ := ix.GetFileSymbols("greet.go")
	if err := ix.ReindexFile("greet.go"); err != nil {
		t.Fatalf("ReindexFile #2: %v", err)
	}
	second, _ := ix.GetFileSymbols("greet.go")
	if len(first) != len(second) {
		t.Fatalf("symbol count changed across idempotent reindex: %d vs %d", len(first), len(second))
	}
}
