package projindex

import (
	"context"
	"testing"

	"github.com/73ai/code-context/internal/fsx"
	"github.com/73ai/code-context/internal/refsearch"
)

// TestIndexProjectOverRealGoPackage exercises a full index() against a
// realistic, multi-file Go package on the real OS filesystem (as opposed to
// the single-file afero in-memory fixtures the other tests use), to catch
// anything that only shows up once files reference each other's types
// across a directory.
func TestIndexProjectOverRealGoPackage(t *testing.T) {
	fs := fsx.NewOS("../../testdata/go")
	ix := New(Config{FS: fs})

	stats, err := ix.IndexProject(context.Background(), "")
	if err != nil {
		t.Fatalf("IndexProject: %v", err)
	}
	if stats.FilesIndexed != 4 {
		t.Fatalf("FilesIndexed = %d, want 4", stats.FilesIndexed)
	}
	if stats.ParseErrors != 0 {
		t.Fatalf("ParseErrors = %d, want 0: %+v", stats.ParseErrors, stats)
	}
	if stats.SymbolsIndexed < 30 {
		t.Fatalf("SymbolsIndexed = %d, want a substantial symbol count", stats.SymbolsIndexed)
	}

	results, _, err := ix.SearchSymbols(SearchOptions{Pattern: "^NewServer$"})
	if err != nil {
		t.Fatalf("SearchSymbols: %v", err)
	}
	if len(results) != 1 || results[0].FilePath != "main.go" {
		t.Fatalf("expected exactly one NewServer in main.go, got %+v", results)
	}

	symbols, err := ix.GetFileSymbols("models.go")
	if err != nil {
		t.Fatalf("GetFileSymbols: %v", err)
	}
	foundUser := false
	for _, s := range symbols {
		if s.Name == "User" {
			foundUser = true
		}
	}
	if !foundUser {
		t.Fatalf("expected a User type symbol in models.go, got %+v", symbols)
	}

	search := refsearch.New(ix, fs)
	callers, err := search.GetCallers("NewDatabase")
	if err != nil {
		t.Fatalf("GetCallers: %v", err)
	}
	foundCaller := false
	for _, c := range callers {
		if c.FilePath == "main.go" {
			foundCaller = true
		}
	}
	if !foundCaller {
		t.Fatalf("expected main.go to call NewDatabase, got %+v", callers)
	}
}
