package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiffDefaultsToWorkingAgainstHEAD(t *testing.T) {
	r := newTestRepo(t)
	e := New(r)
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := e.SnapshotOnce(""); err != nil {
		t.Fatalf("initial snapshot: %v", err)
	}

	if err := os.WriteFile(filepath.Join(r.Root, "a.txt"), []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := e.Diff("", "", nil, FormatNameOnly)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if strings.TrimSpace(out) != "a.txt" {
		t.Fatalf("diff(WORKING, HEAD) --name-only = %q, want a.txt", out)
	}
}

func TestDiffBetweenTwoSnapshots(t *testing.T) {
	r := newTestRepo(t)
	e := New(r)
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	first, err := e.SnapshotOnce("")
	if err != nil {
		t.Fatalf("first snapshot: %v", err)
	}

	if err := os.WriteFile(filepath.Join(r.Root, "b.txt"), []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := e.SnapshotOnce("")
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}

	out, err := e.Diff(first.CommitID, second.CommitID, nil, FormatNameOnly)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if strings.TrimSpace(out) != "b.txt" {
		t.Fatalf("diff(C1, C2) --name-only = %q, want b.txt", out)
	}
}

func TestDiffStatFormat(t *testing.T) {
	r := newTestRepo(t)
	e := New(r)
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	first, err := e.SnapshotOnce("")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if err := os.WriteFile(filepath.Join(r.Root, "README.md"), []byte("hello\nworld\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := e.SnapshotOnce("")
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}

	out, err := e.Diff(first.CommitID, second.CommitID, nil, FormatStat)
	if err != nil {
		t.Fatalf("diff --stat: %v", err)
	}
	if !strings.Contains(out, "README.md") {
		t.Fatalf("diff --stat output missing changed file: %q", out)
	}
}

func TestDiffScopedToPaths(t *testing.T) {
	r := newTestRepo(t)
	e := New(r)
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	first, err := e.SnapshotOnce("")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if err := os.WriteFile(filepath.Join(r.Root, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(r.Root, "b.txt"), []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := e.SnapshotOnce("")
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}

	out, err := e.Diff(first.CommitID, second.CommitID, []string{"a.txt"}, FormatNameOnly)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if strings.TrimSpace(out) != "a.txt" {
		t.Fatalf("path-scoped diff = %q, want only a.txt", out)
	}
}
