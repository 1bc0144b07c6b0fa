package engine

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/autosnap/git-autosnap/internal/errs"
)

// GC implements spec.md §4.1's gc operation. Without prune it only
// compacts objects; with prune it first expires snapshot history older
// than days, then prunes unreachable objects with the same horizon.
// Compaction and pruning errors are combined with go.uber.org/multierr
// (from the teacher's own indirect dependency set) rather than returning
// only the first failure, since a caller running `gc --prune` wants to
// know about both a failed repack and a failed prune.
func (e *Engine) GC(days int, prune bool) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	if !e.Repo.Initialized {
		return errs.New("engine.GC", errs.NotInRepository, fmt.Errorf("sidecar store not initialized"))
	}

	// An empty history is a no-op success.
	if _, ok := e.headCommit(); !ok {
		return nil
	}

	var errOut error

	if prune {
		if err := e.expireOldSnapshots(days); err != nil {
			errOut = multierr.Append(errOut, err)
		}
		expire := time.Now().AddDate(0, 0, -days).Format("2006-01-02T15:04:05")
		if _, err := e.run("reflog", "expire", "--expire="+expire, "--all"); err != nil {
			errOut = multierr.Append(errOut, err)
		}
		if _, err := e.run("prune", "--expire="+expire); err != nil {
			errOut = multierr.Append(errOut, err)
		}
	}

	if _, err := e.run("gc"); err != nil {
		errOut = multierr.Append(errOut, err)
	}

	return errOut
}

// expireOldSnapshots rewrites the snapshot history to drop commits older
// than the retention horizon while preserving every surviving commit
// intact (I6: gc only compacts objects and drops commits older than the
// threshold; it must never lose a commit newer than the oldest one kept).
// `git log` lists newest-first, so the commits to keep are a prefix of
// that output; the oldest of them is grafted as a fresh parentless root,
// and every newer kept commit is rebuilt on top of it in oldest-to-newest
// order with its own tree and message, so their content survives exactly
// as captured.
func (e *Engine) expireOldSnapshots(days int) error {
	horizon := time.Now().AddDate(0, 0, -days)

	log, err := e.run("log", "--format=%H %cI")
	if err != nil {
		return err
	}
	if log == "" {
		return nil
	}

	lines := strings.Split(log, "\n")

	var keep []string // newest-to-oldest, mirrors git log's own order
	for _, line := range lines {
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}
		ts, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			continue
		}
		if ts.Before(horizon) {
			break
		}
		keep = append(keep, parts[0])
	}

	if len(keep) == 0 {
		// Every commit is older than the horizon; nothing survives, but
		// we never delete the ref entirely (I6 is about pruning commits,
		// not destroying S). Keep only the single most recent commit.
		keep = []string{strings.SplitN(lines[0], " ", 2)[0]}
	}

	// Rebuild oldest-to-newest so each new commit can parent the next.
	var newParent string
	for i := len(keep) - 1; i >= 0; i-- {
		hash := keep[i]
		treeOID, err := e.run("rev-parse", hash+"^{tree}")
		if err != nil {
			return err
		}
		msg, err := e.run("log", "-1", "--format=%B", hash)
		if err != nil {
			return err
		}

		args := []string{"commit-tree", treeOID, "-m", msg}
		if newParent != "" {
			args = append(args, "-p", newParent)
		}
		newCommit, err := e.run(args...)
		if err != nil {
			return err
		}
		newParent = newCommit
	}

	if _, err := e.run("update-ref", "refs/heads/main", newParent); err != nil {
		return err
	}
	return nil
}
