package engine

import (
	"fmt"
	"strings"

	"github.com/autosnap/git-autosnap/internal/errs"
)

// RestoreMode selects overlay vs full restore semantics (spec.md §4.1).
type RestoreMode int

const (
	Overlay RestoreMode = iota
	Full
)

// RestorePlan is what dry_run reports instead of performing the restore.
type RestorePlan struct {
	Writes  []string
	Deletes []string
}

// Restore writes paths from commit into R (overlay), optionally also
// deleting files present in R but absent from the snapshot tree (full),
// refusing to run against uncommitted changes unless force is set (P7).
func (e *Engine) Restore(commit string, paths []string, mode RestoreMode, dryRun, force bool) (RestorePlan, error) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	if !e.Repo.Initialized {
		return RestorePlan{}, errs.New("engine.Restore", errs.NotInRepository, fmt.Errorf("sidecar store not initialized"))
	}

	if _, err := e.run("rev-parse", "--verify", commit+"^{commit}"); err != nil {
		return RestorePlan{}, errs.New("engine.Restore", errs.IOError, fmt.Errorf("unknown snapshot %q: %w", commit, err))
	}

	if !force {
		dirty, err := e.primaryHasUncommittedChanges()
		if err != nil {
			return RestorePlan{}, err
		}
		if dirty {
			return RestorePlan{}, errs.New("engine.Restore", errs.UncommittedChanges,
				fmt.Errorf("working tree has uncommitted changes; pass force to override"))
		}
	}

	snapshotFiles, err := e.listTreePaths(commit)
	if err != nil {
		return RestorePlan{}, err
	}

	plan := RestorePlan{}
	wanted := pathSet(paths)
	for _, p := range snapshotFiles {
		if isExcludedPath(p) {
			continue
		}
		if len(wanted) == 0 || wanted[p] {
			plan.Writes = append(plan.Writes, p)
		}
	}

	if mode == Full {
		workingTree, err := e.writeCurrentTree()
		if err != nil {
			return RestorePlan{}, err
		}
		currentFiles, err := e.listTreePaths(workingTree)
		if err != nil {
			return RestorePlan{}, err
		}
		have := pathSet(snapshotFiles)
		for _, p := range currentFiles {
			if isExcludedPath(p) {
				continue
			}
			if !have[p] {
				if len(wanted) == 0 || wanted[p] {
					plan.Deletes = append(plan.Deletes, p)
				}
			}
		}
	}

	if dryRun {
		return plan, nil
	}

	if len(plan.Writes) > 0 {
		args := append([]string{"checkout", commit, "--"}, plan.Writes...)
		if _, err := e.run(args...); err != nil {
			return plan, err
		}
	}

	for _, p := range plan.Deletes {
		if _, err := e.run("rm", "-f", "-q", "--", p); err != nil {
			// The file may already be gone on disk; ignore and continue.
			continue
		}
	}

	// Refresh the primary VCS index so `status` reflects the new disk
	// state, without writing any new primary-repo objects (I5).
	if _, err := e.runPrimary("update-index", "--refresh"); err != nil {
		_ = err // best-effort refresh; a dirty refresh isn't fatal
	}

	return plan, nil
}

func (e *Engine) listTreePaths(ref string) ([]string, error) {
	out, err := e.run("ls-tree", "-r", "--name-only", ref)
	if err != nil {
		return nil, err
	}
	return splitNonEmpty(out), nil
}

func (e *Engine) primaryHasUncommittedChanges() (bool, error) {
	out, err := e.runPrimary("status", "--porcelain")
	if err != nil {
		return false, errs.New("engine.Restore", errs.IOError, err)
	}
	return strings.TrimSpace(out) != "", nil
}

func pathSet(paths []string) map[string]bool {
	if len(paths) == 0 {
		return nil
	}
	m := make(map[string]bool, len(paths))
	for _, p := range paths {
		m[p] = true
	}
	return m
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
