package engine

import (
	"bufio"
	"strings"

	"github.com/autosnap/git-autosnap/internal/errs"
)

// writeCurrentTree is the add-then-write-tree mechanism spec.md §4.1
// names as the performance-critical hot path: it delegates index
// population to the host VCS's own multi-threaded, ignore-aware `add -A`
// rather than walking R in process, then strips the two directories I3
// protects before writing the tree object. SnapshotOnce and the WORKING
// side of Diff both call this so "what would be captured" and "what diff
// shows" cannot drift (§9 WORKING-as-tree).
func (e *Engine) writeCurrentTree() (string, error) {
	if _, err := e.run("add", "-A", "--ignore-errors"); err != nil {
		return "", err
	}

	if err := e.stripExcludedFromIndex(); err != nil {
		return "", err
	}

	treeOID, err := e.run("write-tree")
	if err != nil {
		return "", err
	}
	return treeOID, nil
}

// stripExcludedFromIndex re-reads the index and removes any entry under
// .git/ or .autosnap/, defensively enforcing I3 even if the external
// tool's own ignore rules somehow let one through (e.g. a tracked
// .gitignore with a negated pattern).
func (e *Engine) stripExcludedFromIndex() error {
	listing, err := e.run("ls-files", "-z")
	if err != nil {
		return err
	}

	var toRemove []string
	scanner := bufio.NewScanner(strings.NewReader(listing))
	scanner.Split(splitNUL)
	for scanner.Scan() {
		path := scanner.Text()
		if path == "" {
			continue
		}
		if isExcludedPath(path) {
			toRemove = append(toRemove, path)
		}
	}

	if len(toRemove) == 0 {
		return nil
	}

	args := append([]string{"rm", "--cached", "-r", "-q", "--"}, toRemove...)
	if _, err := e.run(args...); err != nil {
		return errs.New("engine.stripExcludedFromIndex", errs.ExternalToolFailure, err)
	}
	return nil
}

func splitNUL(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i, b := range data {
		if b == 0 {
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}
