package parsecache

import (
	"testing"
	"time"

	"github.com/73ai/code-context/internal/index"
	"github.com/73ai/code-context/internal/model"
)

func TestLRUGetSetInvalidate(t *testing.T) {
	c := NewLRU(2, nil)
	t1 := time.Now()
	tree := &model.SymbolTree{FilePath: "a.go", LanguageID: "go"}

	if _, ok := c.Get("a.go", t1); ok {
		t.Fatal("expected miss before Set")
	}

	c.Set("a.go", t1, tree)
	got, ok := c.Get("a.go", t1)
	if !ok || got != tree {
		t.Fatalf("Get after Set = %v, %v", got, ok)
	}

	t2 := t1.Add(time.Second)
	if _, ok := c.Get("a.go", t2); ok {
		t.Fatal("expected miss for a newer mtime")
	}

	c.Invalidate("a.go")
	if _, ok := c.Get("a.go", t1); ok {
		t.Fatal("expected miss after Invalidate")
	}
}

func TestLRUEvictsOldest(t *testing.T) {
	evicted := ""
	c := NewLRU(1, func(path string) { evicted = path })
	now := time.Now()

	c.Set("a.go", now, &model.SymbolTree{FilePath: "a.go"})
	c.Set("b.go", now, &model.SymbolTree{FilePath: "b.go"})

	if evicted != "a.go" {
		t.Fatalf("expected a.go evicted, got %q", evicted)
	}
	if _, ok := c.Get("a.go", now); ok {
		t.Fatal("a.go should have been evicted")
	}
	if _, ok := c.Get("b.go", now); !ok {
		t.Fatal("b.go should still be cached")
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func newTestBadgerCache(t *testing.T) *BadgerCache {
	t.Helper()
	opts := index.DefaultBadgerOptions("")
	opts.InMemory = true

	storage, err := index.NewBadgerStorage(opts)
	if err != nil {
		t.Fatalf("NewBadgerStorage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return NewBadgerCache(storage)
}

func TestBadgerCacheGetSetInvalidate(t *testing.T) {
	c := newTestBadgerCache(t)
	t1 := time.Now()
	tree := &model.SymbolTree{FilePath: "a.go", LanguageID: "go"}

	if _, ok := c.Get("a.go", t1); ok {
		t.Fatal("expected miss before Set")
	}

	c.Set("a.go", t1, tree)
	got, ok := c.Get("a.go", t1)
	if !ok || got.FilePath != tree.FilePath || got.LanguageID != tree.LanguageID {
		t.Fatalf("Get after Set = %+v, %v", got, ok)
	}

	t2 := t1.Add(time.Second)
	if _, ok := c.Get("a.go", t2); ok {
		t.Fatal("expected miss for a newer mtime")
	}
}

func TestBadgerCacheDetectsKeyCollisionMismatch(t *testing.T) {
	c := newTestBadgerCache(t)
	t1 := time.Now()

	c.Set("a.go", t1, &model.SymbolTree{FilePath: "a.go", LanguageID: "go"})

	// A different path/mtime pair that happens to land on the same bucket
	// would decode to a record whose own path doesn't match — Get must
	// treat that as a miss rather than returning the wrong tree.
	if got, ok := c.Get("b.go", t1); ok {
		t.Fatalf("Get(b.go) unexpectedly hit with %+v", got)
	}
}
