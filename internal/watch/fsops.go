package watch

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

func statIsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// addRecursive adds root and every subdirectory under it to fsw's watch
// set. fsnotify does not watch recursively on its own.
func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			_ = fsw.Add(path)
		}
		return nil
	})
}
