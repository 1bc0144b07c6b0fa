package engine

import (
	"fmt"
	"time"

	"github.com/autosnap/git-autosnap/internal/errs"
)

// SnapshotResult reports the outcome of SnapshotOnce. Either CommitID is
// set (a new commit was made) or Unchanged is true (I4).
type SnapshotResult struct {
	CommitID  string
	Unchanged bool
}

// SnapshotOnce is the hot path: at most one commit is produced per call.
// It follows spec.md §4.1's numbered steps exactly.
func (e *Engine) SnapshotOnce(tail string) (SnapshotResult, error) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	if !e.Repo.Initialized {
		return SnapshotResult{}, errs.New("engine.SnapshotOnce", errs.NotInRepository,
			fmt.Errorf("sidecar store not initialized, run init first"))
	}

	treeOID, err := e.writeCurrentTree()
	if err != nil {
		return SnapshotResult{}, err
	}

	headTree, haveHead := e.headTreeOID()
	if haveHead && headTree == treeOID {
		return SnapshotResult{Unchanged: true}, nil
	}

	branch, err := e.CurrentBranch()
	if err != nil {
		branch = "DETACHED"
	}

	message := buildMessage(branch, time.Now(), tail)

	commitArgs := []string{"commit-tree", treeOID, "-m", message}
	if parent, ok := e.headCommit(); ok {
		commitArgs = append(commitArgs, "-p", parent)
	}

	commitOID, err := e.run(commitArgs...)
	if err != nil {
		return SnapshotResult{}, err
	}

	if _, err := e.run("update-ref", "refs/heads/main", commitOID); err != nil {
		return SnapshotResult{}, err
	}
	if _, err := e.run("symbolic-ref", "HEAD", "refs/heads/main"); err != nil {
		return SnapshotResult{}, err
	}

	return SnapshotResult{CommitID: commitOID}, nil
}

func (e *Engine) headCommit() (string, bool) {
	out, err := e.run("rev-parse", "--verify", "HEAD")
	if err != nil {
		return "", false
	}
	return out, true
}

func (e *Engine) headTreeOID() (string, bool) {
	out, err := e.run("rev-parse", "--verify", "HEAD^{tree}")
	if err != nil {
		return "", false
	}
	return out, true
}
