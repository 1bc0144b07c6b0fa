package engine

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/autosnap/git-autosnap/internal/errs"
)

// Working is the sentinel selector meaning "the tree that would be
// captured by SnapshotOnce right now" (spec.md §4.1, GLOSSARY).
const Working = "WORKING"

// DiffFormat selects the diff output shape spec.md §6 names.
type DiffFormat int

const (
	FormatUnified DiffFormat = iota
	FormatStat
	FormatNameOnly
	FormatNameStatus
)

// Diff compares two selectors, each a commit id or Working, resolving
// defaults per spec.md §4.1: a omitted -> (Working, HEAD); only a given
// -> (a, Working).
func (e *Engine) Diff(a, b string, paths []string, format DiffFormat) (string, error) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	if !e.Repo.Initialized {
		return "", errs.New("engine.Diff", errs.NotInRepository, nil)
	}

	if a == "" {
		a = Working
		head, ok := e.headCommit()
		if ok {
			b = head
		}
	} else if b == "" {
		b = Working
	}

	left, err := e.resolveTreeish(a)
	if err != nil {
		return "", err
	}
	right, err := e.resolveTreeish(b)
	if err != nil {
		return "", err
	}

	args := []string{"diff"}
	switch format {
	case FormatStat:
		args = append(args, "--stat")
	case FormatNameOnly:
		args = append(args, "--name-only")
	case FormatNameStatus:
		args = append(args, "--name-status")
	default:
		if isatty.IsTerminal(os.Stdout.Fd()) {
			args = append(args, "--color=always")
		}
	}

	args = append(args, left, right)
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}

	return e.run(args...)
}

// resolveTreeish turns a selector into a git tree-ish: either the literal
// commit id, or a freshly synthesized WORKING tree object (§9
// WORKING-as-tree: the same add-then-write-tree pipeline SnapshotOnce
// uses, with the resulting tree never attached to a commit).
func (e *Engine) resolveTreeish(selector string) (string, error) {
	if selector == Working {
		return e.writeCurrentTree()
	}
	return selector, nil
}
