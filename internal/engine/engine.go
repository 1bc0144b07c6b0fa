// Package engine owns the sidecar store S: a bare repository at
// R/.autosnap whose history is a single linear chain of snapshot
// commits, entirely independent of R's own VCS history. It is grounded
// on the teacher repo's internal/core.GitManager (--git-dir/--work-tree
// invocation, operation-level locking, branch-name validation) but
// generalizes the teacher's "shadow repo mirrors R's branch" design into
// spec.md's "single linear branch, branch name recorded in the commit
// message only" (see DESIGN.md REDESIGN entry).
package engine

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"github.com/autosnap/git-autosnap/internal/errs"
	"github.com/autosnap/git-autosnap/internal/repo"
)

// Engine is the Snapshot Engine. One Engine per repo.Repo; operations are
// serialized by opMu the way the teacher's GitManager.operationMutex
// prevents racing commits from the watcher and a manual `once` call.
type Engine struct {
	Repo *repo.Repo
	opMu sync.Mutex
}

func New(r *repo.Repo) *Engine {
	return &Engine{Repo: r}
}

// run executes the host VCS tool against the sidecar as its metadata
// directory and R as its working tree. CRITICAL, per the teacher's own
// comment on this exact pattern: always pass --git-dir/--work-tree so
// operations never touch the primary repository.
func (e *Engine) run(args ...string) (string, error) {
	full := append([]string{
		"--git-dir=" + e.Repo.SidecarDir,
		"--work-tree=" + e.Repo.Root,
	}, args...)

	cmd := exec.Command("git", full...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", classifyToolError("git "+strings.Join(args, " "), out, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// runPrimary runs a read-only query against R's own VCS metadata, never
// writing to it (I5).
func (e *Engine) runPrimary(args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"--git-dir=" + e.Repo.VCSDir, "--work-tree=" + e.Repo.Root}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// classifyToolError wraps a failed git invocation with its output. A git
// binary missing from PATH is classified IOError; every other failure,
// lock contention on the sidecar index included, is ExternalToolFailure,
// so transient and fatal tool failures are not told apart by kind.
func classifyToolError(op string, out []byte, err error) error {
	text := string(out)
	kind := errs.ExternalToolFailure
	if _, ok := err.(*exec.Error); ok {
		kind = errs.IOError // git binary missing from PATH
	}
	if strings.Contains(text, "index.lock") {
		kind = errs.ExternalToolFailure // lock contention on the sidecar index
	}
	return errs.New("engine."+op, kind, fmt.Errorf("%s: %w", text, err))
}

var branchNameRe = regexp.MustCompile(`^[a-zA-Z0-9/_.-]+$`)

// isValidBranchName mirrors the teacher's git-check-ref-format-derived
// validation, used here only to sanity-check a branch name before it is
// embedded in a commit message (never passed to a shell).
func isValidBranchName(name string) bool {
	if name == "" || len(name) > 255 || !branchNameRe.MatchString(name) {
		return false
	}
	return !strings.HasPrefix(name, ".") &&
		!strings.HasSuffix(name, ".") &&
		!strings.Contains(name, "..") &&
		!strings.Contains(name, "//") &&
		!strings.HasPrefix(name, "/") &&
		!strings.HasSuffix(name, "/") &&
		!strings.Contains(name, "@{") &&
		!strings.HasSuffix(name, ".lock") &&
		name != "HEAD" && name != "@"
}

// CurrentBranch returns R's current branch, or the DETACHED sentinel
// spec.md's commit-message grammar names.
func (e *Engine) CurrentBranch() (string, error) {
	out, err := e.runPrimary("symbolic-ref", "--short", "HEAD")
	if err != nil {
		// Detached HEAD: symbolic-ref fails.
		return "DETACHED", nil
	}
	branch := strings.TrimSpace(out)
	if branch == "" || !isValidBranchName(branch) {
		return "DETACHED", nil
	}
	return branch, nil
}
