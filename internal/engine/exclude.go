package engine

import "strings"

// isExcludedPath reports whether a repo-relative, slash-separated path
// falls under one of the two directories I3 and spec.md §4.4 mandate be
// excluded from every snapshot tree and untouched by every restore,
// regardless of any filter configuration. Both the index-stripping step
// in SnapshotOnce and the restore/diff walkers call this single helper so
// the exclusion cannot drift between code paths (§5.4).
func isExcludedPath(relPath string) bool {
	return IsExcludedPath(relPath)
}

// IsExcludedPath is the exported form, reused by internal/watcher's
// directory walker and event filter so the I3 boundary has exactly one
// definition across the whole module.
func IsExcludedPath(relPath string) bool {
	relPath = strings.TrimPrefix(relPath, "/")
	return relPath == ".git" || strings.HasPrefix(relPath, ".git/") ||
		relPath == ".autosnap" || strings.HasPrefix(relPath, ".autosnap/")
}
