// Package scanner is the Project Scanner collaborator: given a workspace
// root and an accepted set of extensions, it produces the ordered,
// depth-first, name-sorted list of workspace-relative source paths that the
// Project Index scans on a full index(). It shares the denylist of
// directory names the engine never descends into.
package scanner

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/73ai/code-context/internal/fsx"
)

// skipDirs is the fixed denylist from §4.5: version-control metadata, the
// dependency directory for the common ecosystems represented in the
// language registry, and build-output directories. Any directory starting
// with "." is skipped regardless of this list.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"out":          true,
	"coverage":     true,
	"__pycache__":  true,
}

// Scanner walks a workspace rooted at an *fsx.FS, filtering by extension.
type Scanner struct {
	fs         *fsx.FS
	extensions map[string]bool
}

// New builds a Scanner over fs, accepting only the given extensions
// (each including its leading dot, e.g. ".go").
func New(fs *fsx.FS, extensions []string) *Scanner {
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		set[ext] = true
	}
	return &Scanner{fs: fs, extensions: set}
}

// Scan returns every accepted source file under root (workspace-relative to
// the Scanner's fsx.FS root), in depth-first, name-sorted order. An error
// listing root itself is returned. An error listing a subdirectory skips
// that subdirectory and the walk continues; Scan has no logger, and such
// errors are neither returned nor logged.
func (s *Scanner) Scan(root string) ([]string, error) {
	var out []string
	if err := s.walk(root, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Scanner) walk(dir string, out *[]string) error {
	entries, err := s.fs.ListDirectory(dir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for _, e := range entries {
		childRel := e.Name
		if dir != "" && dir != "." {
			childRel = filepath.ToSlash(filepath.Join(dir, e.Name))
		}
		if e.IsDir {
			if s.skipDir(e.Name) {
				continue
			}
			if err := s.walk(childRel, out); err != nil {
				continue
			}
			continue
		}
		if s.accepted(e.Name) {
			*out = append(*out, childRel)
		}
	}
	return nil
}

func (s *Scanner) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return skipDirs[name]
}

func (s *Scanner) accepted(name string) bool {
	if len(s.extensions) == 0 {
		return true
	}
	return s.extensions[strings.ToLower(filepath.Ext(name))]
}
