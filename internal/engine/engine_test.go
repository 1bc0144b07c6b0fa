package engine

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/autosnap/git-autosnap/internal/repo"
)

// newTestRepo mirrors the teacher's git_test.go setup: a temp directory
// with a real primary git repo whose identity is configured, ready for
// the sidecar engine to attach to.
func newTestRepo(t *testing.T) *repo.Repo {
	t.Helper()
	root := t.TempDir()

	run := func(args ...string) {
		cmd := exec.Command("git", append([]string{"-C", root}, args...)...)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-q", "-b", "main")
	run("config", "user.name", "Test User")
	run("config", "user.email", "test@example.com")

	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-q", "-m", "initial")

	return &repo.Repo{
		Root:       root,
		VCSDir:     filepath.Join(root, ".git"),
		SidecarDir: filepath.Join(root, ".autosnap"),
	}
}

func TestInitIsIdempotent(t *testing.T) {
	r := newTestRepo(t)
	e := New(r)

	if err := e.Init(); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if err := e.Init(); err != nil {
		t.Fatalf("second init: %v", err)
	}

	content, err := os.ReadFile(r.ExcludeFile())
	if err != nil {
		t.Fatalf("read exclude file: %v", err)
	}
	if got := strings.Count(string(content), ".autosnap"); got != 1 {
		t.Fatalf("expected exactly one .autosnap line, got %d in %q", got, content)
	}
}

func TestSnapshotOnceBasicCapture(t *testing.T) {
	r := newTestRepo(t)
	e := New(r)
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := os.WriteFile(filepath.Join(r.Root, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := e.SnapshotOnce("")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if result.Unchanged || result.CommitID == "" {
		t.Fatalf("expected a new commit, got %+v", result)
	}

	msg, err := e.run("log", "-1", "--format=%s", result.CommitID)
	if err != nil {
		t.Fatalf("read commit message: %v", err)
	}
	if !strings.HasPrefix(msg, "AUTOSNAP[main] ") {
		t.Fatalf("unexpected commit message: %q", msg)
	}

	files, err := e.listTreePaths(result.CommitID)
	if err != nil {
		t.Fatalf("list tree: %v", err)
	}
	if len(files) != 2 || !contains(files, "a.txt") || !contains(files, "README.md") {
		t.Fatalf("unexpected tree contents: %v", files)
	}
}

func TestSnapshotOnceDedup(t *testing.T) {
	r := newTestRepo(t)
	e := New(r)
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	first, err := e.SnapshotOnce("")
	if err != nil {
		t.Fatalf("first snapshot: %v", err)
	}

	second, err := e.SnapshotOnce("")
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if !second.Unchanged {
		t.Fatalf("expected unchanged result on second call, got %+v", second)
	}

	head, _ := e.headCommit()
	if head != first.CommitID {
		t.Fatalf("HEAD moved on a no-op snapshot: had %s, now %s", first.CommitID, head)
	}
}

func TestSnapshotExcludesSidecarAndPrimaryMetadata(t *testing.T) {
	r := newTestRepo(t)
	e := New(r)
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	result, err := e.SnapshotOnce("")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	files, err := e.listTreePaths(result.CommitID)
	if err != nil {
		t.Fatalf("list tree: %v", err)
	}
	for _, f := range files {
		if isExcludedPath(f) {
			t.Fatalf("tree contains excluded path %q", f)
		}
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
