// Package fsx is the File Abstraction collaborator: reading, stating,
// checking existence of, and listing files, with relative paths resolved
// against a stored workspace root. It performs no caching of its own — that
// is the Parse Cache's job, one layer up.
package fsx

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/73ai/code-context/internal/engerr"
)

// Stat is the subset of file metadata the engine cares about.
type Stat struct {
	ModTime time.Time
	Size    int64
	IsDir   bool
}

// Entry is one item returned by ListDirectory.
type Entry struct {
	Name  string
	IsDir bool
}

// FS is the File Abstraction: read/stat/exists/list, resolving relative
// paths against Root. Backed by an afero.Fs so production code runs against
// the OS filesystem while tests run against an in-memory one with no disk
// I/O at all.
type FS struct {
	afero afero.Fs
	Root  string
}

// NewOS returns a File Abstraction backed by the real operating-system
// filesystem, rooted at root.
func NewOS(root string) *FS {
	return &FS{afero: afero.NewOsFs(), Root: root}
}

// NewMem returns a File Abstraction backed by an in-memory filesystem,
// useful for hermetic tests of every layer above this one.
func NewMem(root string) *FS {
	return &FS{afero: afero.NewMemMapFs(), Root: root}
}

// New wraps an arbitrary afero.Fs, for callers that want a different backend
// (e.g. a read-only overlay).
func New(root string, backend afero.Fs) *FS {
	return &FS{afero: backend, Root: root}
}

func (f *FS) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(f.Root, path)
}

// Read returns the full contents of path.
func (f *FS) Read(path string) ([]byte, error) {
	data, err := afero.ReadFile(f.afero, f.resolve(path))
	if err != nil {
		return nil, classify("read", path, err)
	}
	return data, nil
}

// Stats returns mtime/size/isDir for path.
func (f *FS) Stats(path string) (Stat, error) {
	info, err := f.afero.Stat(f.resolve(path))
	if err != nil {
		return Stat{}, classify("stats", path, err)
	}
	return Stat{ModTime: info.ModTime(), Size: info.Size(), IsDir: info.IsDir()}, nil
}

// Exists reports whether path can be stat'd without error.
func (f *FS) Exists(path string) bool {
	_, err := f.afero.Stat(f.resolve(path))
	return err == nil
}

// ListDirectory returns the direct children of path, name-sorted.
func (f *FS) ListDirectory(path string) ([]Entry, error) {
	infos, err := afero.ReadDir(f.afero, f.resolve(path))
	if err != nil {
		return nil, classify("listDirectory", path, err)
	}
	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{Name: info.Name(), IsDir: info.IsDir()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Write is a test/fixture convenience not part of the consumer surface —
// production code never writes source files — but it lets tests populate an
// in-memory FS without reaching into afero directly.
func (f *FS) Write(path string, data []byte) error {
	full := f.resolve(path)
	if err := f.afero.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return classify("write", path, err)
	}
	return afero.WriteFile(f.afero, full, data, 0o644)
}

// Afero exposes the underlying afero.Fs for components (the scanner, the
// watcher's polling fallback) that need directory-walk primitives afero
// itself provides.
func (f *FS) Afero() afero.Fs { return f.afero }

func classify(op, path string, err error) error {
	if strings.Contains(err.Error(), "no such file") || err == fs.ErrNotExist {
		return engerr.Wrap(engerr.KindIO, op, "not found: "+path, err)
	}
	if strings.Contains(err.Error(), "permission denied") {
		return engerr.Wrap(engerr.KindIO, op, "permission denied: "+path, err)
	}
	return engerr.IO(op, path, err)
}
