package watcher

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIgnoreSetAssemblesMultipleSources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "node_modules/\n*.log\n")

	primaryExclude := filepath.Join(root, ".git", "info", "exclude")
	writeFile(t, primaryExclude, "build/\n")

	set := newIgnoreSet(root, assembleIgnoreSources(root, primaryExclude, ""))

	cases := map[string]bool{
		filepath.Join(root, "node_modules", "pkg", "index.js"): true,
		filepath.Join(root, "app.log"):                         true,
		filepath.Join(root, "build", "out.bin"):                true,
		filepath.Join(root, "src", "main.go"):                  false,
	}

	for path, want := range cases {
		if got := set.ShouldIgnore(path); got != want {
			t.Errorf("ShouldIgnore(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestIgnoreSetNegationPattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\n!important.log\n")

	set := newIgnoreSet(root, []string{filepath.Join(root, ".gitignore")})

	if !set.ShouldIgnore(filepath.Join(root, "debug.log")) {
		t.Error("expected debug.log to be ignored")
	}
	if set.ShouldIgnore(filepath.Join(root, "important.log")) {
		t.Error("expected important.log to survive the negation pattern")
	}
}

func TestIgnoreSetTracksSourcesAndReloads(t *testing.T) {
	root := t.TempDir()
	gitignore := filepath.Join(root, ".gitignore")
	writeFile(t, gitignore, "*.log\n")

	set := newIgnoreSet(root, []string{gitignore})

	if !set.IsTrackedSource(gitignore) {
		t.Fatal("expected .gitignore to be a tracked source")
	}
	if set.IsTrackedSource(filepath.Join(root, "other")) {
		t.Fatal("unexpected file reported as tracked source")
	}

	if set.ShouldIgnore(filepath.Join(root, "a.txt")) {
		t.Fatal("a.txt should not be ignored before reload")
	}

	writeFile(t, gitignore, "*.log\n*.txt\n")
	set.Reload()

	if !set.ShouldIgnore(filepath.Join(root, "a.txt")) {
		t.Fatal("expected a.txt to be ignored after reload picked up the new pattern")
	}
}
