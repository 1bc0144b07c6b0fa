// Package utils holds small filesystem helpers shared across commands,
// generalized from the teacher's internal/utils (same CalculateDirectorySize
// / FormatBytes / CountProjectFiles shape), adapted to use this repo's I3
// exclusion boundary instead of the teacher's full ignore-pattern engine,
// since these are display helpers rather than snapshot-correctness code.
package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/autosnap/git-autosnap/internal/engine"
)

// CalculateDirectorySize sums the size of every regular file under dirPath.
func CalculateDirectorySize(dirPath string) (int64, error) {
	var size int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})

	return size, err
}

// FormatBytes formats bytes in human-readable form.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// CountProjectFiles counts files and directories under root, excluding the
// primary and sidecar VCS metadata directories.
func CountProjectFiles(root string) (fileCount, dirCount int) {
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr == nil && rel != "." && engine.IsExcludedPath(filepath.ToSlash(rel)) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			dirCount++
		} else {
			fileCount++
		}
		return nil
	})

	return fileCount, dirCount
}
