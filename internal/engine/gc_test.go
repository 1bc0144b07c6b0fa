package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// snapshotAt writes name with contents content under root, backdates the
// commit's author/committer timestamp to at, and takes a snapshot.
// Backdating lets the test control which commits fall on which side of a
// retention horizon without actually sleeping.
func snapshotAt(t *testing.T, e *Engine, root, name, content string, at time.Time) string {
	t.Helper()

	if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	iso := at.Format(time.RFC3339)
	t.Setenv("GIT_AUTHOR_DATE", iso)
	t.Setenv("GIT_COMMITTER_DATE", iso)

	result, err := e.SnapshotOnce("")
	if err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}
	if result.Unchanged {
		t.Fatalf("snapshot %s: expected a new commit, got unchanged", name)
	}
	return result.CommitID
}

func TestGCPruneKeepsNewerCommitsAndContentIntact(t *testing.T) {
	r := newTestRepo(t)
	e := New(r)
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	now := time.Now()
	snapshotAt(t, e, r.Root, "a.txt", "a", now.AddDate(0, 0, -10))
	snapshotAt(t, e, r.Root, "b.txt", "b", now.AddDate(0, 0, -3))
	c3 := snapshotAt(t, e, r.Root, "c.txt", "c", now)

	if err := e.GC(5, true); err != nil {
		t.Fatalf("gc --prune: %v", err)
	}

	head, ok := e.headCommit()
	if !ok {
		t.Fatal("no HEAD after gc")
	}
	if head == c3 {
		t.Fatalf("expected HEAD to be rebuilt (new commit id), still points at original %s", c3)
	}

	files, err := e.listTreePaths(head)
	if err != nil {
		t.Fatalf("list tree: %v", err)
	}
	if !contains(files, "c.txt") {
		t.Fatalf("newest snapshot's content was lost by gc --prune: tree = %v", files)
	}
	if !contains(files, "b.txt") {
		t.Fatalf("kept-but-not-newest snapshot's content was lost by gc --prune: tree = %v", files)
	}

	it, err := e.ListSnapshots()
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	defer it.Close()

	count := 0
	for it.Next() {
		count++
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterate snapshots: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 surviving commits (the -3d and now snapshots), got %d", count)
	}
}

func TestGCWithoutPruneNeverShortensHistory(t *testing.T) {
	r := newTestRepo(t)
	e := New(r)
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	now := time.Now()
	snapshotAt(t, e, r.Root, "a.txt", "a", now.AddDate(0, 0, -100))
	head, _ := e.headCommit()

	if err := e.GC(1, false); err != nil {
		t.Fatalf("gc: %v", err)
	}

	after, ok := e.headCommit()
	if !ok || after != head {
		t.Fatalf("gc without --prune moved HEAD: had %s, now %s (ok=%v)", head, after, ok)
	}
}
