package fsx

import (
	"errors"
	"testing"

	"github.com/73ai/code-context/internal/engerr"
)

func TestReadWriteRoundTrip(t *testing.T) {
	fs := NewMem("/workspace")
	if err := fs.Write("src/main.go", []byte("package main\n")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	data, err := fs.Read("src/main.go")
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if string(data) != "package main\n" {
		t.Errorf("Read = %q, want package main", string(data))
	}
}

func TestReadMissingFileIsIoError(t *testing.T) {
	fs := NewMem("/workspace")
	_, err := fs.Read("missing.go")
	if err == nil {
		t.Fatal("expected an error reading a missing file")
	}
	var ie *engerr.IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("expected an *engerr.IndexError, got %T", err)
	}
	if ie.Kind != engerr.KindIO {
		t.Errorf("Kind = %v, want KindIO", ie.Kind)
	}
}

func TestExists(t *testing.T) {
	fs := NewMem("/workspace")
	if fs.Exists("ghost.go") {
		t.Error("Exists should be false for a file never written")
	}
	fs.Write("present.go", []byte("x"))
	if !fs.Exists("present.go") {
		t.Error("Exists should be true for a written file")
	}
}

func TestStatsReportsSizeAndDir(t *testing.T) {
	fs := NewMem("/workspace")
	fs.Write("a/b.go", []byte("12345"))

	st, err := fs.Stats("a/b.go")
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if st.Size != 5 {
		t.Errorf("Size = %d, want 5", st.Size)
	}
	if st.IsDir {
		t.Error("b.go should not report IsDir")
	}

	dirSt, err := fs.Stats("a")
	if err != nil {
		t.Fatalf("Stats(a) returned error: %v", err)
	}
	if !dirSt.IsDir {
		t.Error("a should report IsDir")
	}
}

func TestListDirectoryIsNameSorted(t *testing.T) {
	fs := NewMem("/workspace")
	fs.Write("dir/zeta.go", []byte("z"))
	fs.Write("dir/alpha.go", []byte("a"))
	fs.Write("dir/mid.go", []byte("m"))

	entries, err := fs.ListDirectory("dir")
	if err != nil {
		t.Fatalf("ListDirectory returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Name > entries[i].Name {
			t.Errorf("entries not sorted: %v", entries)
			break
		}
	}
}

func TestResolveHandlesAbsoluteAndRelativePaths(t *testing.T) {
	fs := NewMem("/workspace")
	fs.Write("rel.go", []byte("rel"))
	if got, err := fs.Read("/workspace/rel.go"); err != nil || string(got) != "rel" {
		t.Errorf("Read via absolute path failed: %v %q", err, got)
	}
}
