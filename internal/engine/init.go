package engine

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/autosnap/git-autosnap/internal/errs"
)

// Init creates S if missing and ensures the local exclude file names it
// (I1, I5). Idempotent: a second call on an already-consistent store
// returns success without side effects.
func (e *Engine) Init() error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	if e.Repo.Initialized {
		return nil
	}

	if err := os.MkdirAll(e.Repo.SidecarDir, 0o700); err != nil {
		return errs.New("engine.Init", errs.IOError, fmt.Errorf("create sidecar dir: %w", err))
	}

	if _, err := e.run("init", "--bare"); err != nil {
		return err
	}

	// Point the bare repo's workdir at R (spec.md §3: "its working tree is
	// logically R").
	if _, err := e.run("config", "core.bare", "false"); err != nil {
		return err
	}
	if _, err := e.run("config", "core.worktree", e.Repo.Root); err != nil {
		return err
	}

	if err := e.syncIdentity(); err != nil {
		return err
	}

	if err := appendExcludeLine(e.Repo.ExcludeFile(), ".autosnap"); err != nil {
		return errs.New("engine.Init", errs.IOError, err)
	}

	// Belt-and-suspenders: keep the sidecar's own index from ever staging
	// .git or .autosnap in the first place, on top of the defensive
	// post-add strip in stripExcludedFromIndex (I3).
	sidecarExclude := filepath.Join(e.Repo.SidecarDir, "info", "exclude")
	if err := appendExcludeLine(sidecarExclude, ".git/"); err != nil {
		return errs.New("engine.Init", errs.IOError, err)
	}
	if err := appendExcludeLine(sidecarExclude, ".autosnap/"); err != nil {
		return errs.New("engine.Init", errs.IOError, err)
	}

	e.Repo.Initialized = true
	return nil
}

// appendExcludeLine adds name to the exclude file with a preceding blank
// line if needed, never duplicating an existing entry (I5, P1).
func appendExcludeLine(path, name string) error {
	var lines []string
	if f, err := os.Open(path); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			lines = append(lines, line)
			if strings.TrimSpace(line) == name {
				f.Close()
				return nil // already present
			}
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, l := range lines {
		if _, err := w.WriteString(l + "\n"); err != nil {
			return err
		}
	}
	if len(lines) > 0 {
		if _, err := w.WriteString("\n"); err != nil {
			return err
		}
	}
	if _, err := w.WriteString(name + "\n"); err != nil {
		return err
	}
	return w.Flush()
}
