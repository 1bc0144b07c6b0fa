package watcher

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/autosnap/git-autosnap/internal/engine"
)

// addDirectoryRecursive walks root and registers every non-ignored
// directory with fsw, the same filepath.Walk + SkipDir shape the teacher's
// addDirectoryRecursive uses, generalized to consult the assembled
// ignoreSet plus the I3 sidecar/primary-metadata exclusion instead of a
// hardcoded pattern list.
func addDirectoryRecursive(fsw *fsnotify.Watcher, root string, ignores *ignoreSet, onWarn func(string, error)) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr == nil && rel != "." {
			if engine.IsExcludedPath(filepath.ToSlash(rel)) || ignores.ShouldIgnore(path) {
				return filepath.SkipDir
			}
		}
		if err := fsw.Add(path); err != nil {
			onWarn(path, err)
		}
		return nil
	})
}
