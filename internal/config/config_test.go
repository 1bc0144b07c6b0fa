package config

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// newTestVCSDir mirrors the engine package's own git fixture helper: a
// real repo whose .git dir can receive `git config` writes.
func newTestVCSDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	run := func(args ...string) {
		cmd := exec.Command("git", append([]string{"-C", root}, args...)...)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-q", "-b", "main")
	return filepath.Join(root, ".git")
}

func TestDefaultsApplyWithNoConfigFile(t *testing.T) {
	m := NewManager()
	projectRoot := t.TempDir()

	if err := m.Load(projectRoot, ""); err != nil {
		t.Fatalf("Load: %v", err)
	}

	c := m.Get()
	if c.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", c.Log.Level)
	}
	if c.Watcher.DebounceMS != DefaultDebounceMS {
		t.Errorf("Watcher.DebounceMS = %d, want %d", c.Watcher.DebounceMS, DefaultDebounceMS)
	}
	if c.GC.PruneDays != DefaultPruneDays {
		t.Errorf("GC.PruneDays = %d, want %d", c.GC.PruneDays, DefaultPruneDays)
	}
	if !c.UI.ColorOutput {
		t.Errorf("UI.ColorOutput = false, want true")
	}
}

func TestYAMLConfigOverridesDefaults(t *testing.T) {
	projectRoot := t.TempDir()
	yaml := "watcher:\n  debounce_ms: 2500\nlog:\n  level: debug\n"
	if err := os.WriteFile(filepath.Join(projectRoot, "autosnap.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	if err := m.Load(projectRoot, ""); err != nil {
		t.Fatalf("Load: %v", err)
	}

	c := m.Get()
	if c.Watcher.DebounceMS != 2500 {
		t.Errorf("Watcher.DebounceMS = %d, want 2500", c.Watcher.DebounceMS)
	}
	if c.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", c.Log.Level)
	}
}

func TestAllowListedEnvVarOverridesYAML(t *testing.T) {
	projectRoot := t.TempDir()
	yaml := "watcher:\n  debounce_ms: 2500\n"
	if err := os.WriteFile(filepath.Join(projectRoot, "autosnap.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AUTOSNAP_DEBOUNCE_MS", "750")

	m := NewManager()
	if err := m.Load(projectRoot, ""); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := m.Get().Watcher.DebounceMS; got != 750 {
		t.Errorf("Watcher.DebounceMS = %d, want 750 (env should win)", got)
	}
}

func TestUnrecognizedEnvVarIsIgnored(t *testing.T) {
	// AUTOSNAP_DEBOUNCE_MS is allow-listed; a lookalike that isn't must
	// never reach Config, since bindEnv only wires the explicit map.
	t.Setenv("AUTOSNAP_WATCHER_DEBOUNCE_MS", "1")

	m := NewManager()
	if err := m.Load(t.TempDir(), ""); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := m.Get().Watcher.DebounceMS; got != DefaultDebounceMS {
		t.Errorf("Watcher.DebounceMS = %d, want default %d (unlisted env var must be ignored)", got, DefaultDebounceMS)
	}
}

func TestInvalidLogLevelFailsValidation(t *testing.T) {
	projectRoot := t.TempDir()
	yaml := "log:\n  level: verbose\n"
	if err := os.WriteFile(filepath.Join(projectRoot, "autosnap.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	if err := m.Load(projectRoot, ""); err == nil {
		t.Fatal("Load: expected validation error for log.level=verbose, got nil")
	}
}

func TestDebounceMSPrefersVCSConfigOverYAML(t *testing.T) {
	vcsDir := newTestVCSDir(t)
	cmd := exec.Command("git", "--git-dir="+vcsDir, "config", "autosnap.debounce-ms", "400")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git config: %v\n%s", err, out)
	}

	m := NewManager()
	if err := m.Load(t.TempDir(), vcsDir); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := m.DebounceMS(); got != 400 {
		t.Errorf("DebounceMS() = %d, want 400 (VCS config should win)", got)
	}
	if got := m.DebounceDuration(); got.Milliseconds() != 400 {
		t.Errorf("DebounceDuration() = %v, want 400ms", got)
	}
}

func TestPruneDaysFallsBackToConfigWhenVCSKeyAbsent(t *testing.T) {
	vcsDir := newTestVCSDir(t)

	m := NewManager()
	if err := m.Load(t.TempDir(), vcsDir); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := m.PruneDays(); got != DefaultPruneDays {
		t.Errorf("PruneDays() = %d, want default %d", got, DefaultPruneDays)
	}
}
