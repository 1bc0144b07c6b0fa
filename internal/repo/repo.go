// Package repo locates the repository root R and the sidecar store S,
// generalizing the teacher's core.AppState path-discovery into the
// vocabulary spec.md uses (R, S) without the teacher's shadow-branch
// bookkeeping, which this repo's engine no longer needs (see DESIGN.md).
package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/autosnap/git-autosnap/internal/config"
	"github.com/autosnap/git-autosnap/internal/errs"
)

const SidecarDirName = ".autosnap"

// Repo pins down the paths every other package needs: the project root,
// the primary VCS metadata directory, and the sidecar store.
type Repo struct {
	Root        string // R
	VCSDir      string // R/.git
	SidecarDir  string // R/.autosnap (S)
	Initialized bool   // whether S already exists

	Config *config.Manager
}

// Discover walks upward from the given directory looking for a primary
// VCS metadata directory, per spec.md §3 ("absence is a fatal error").
func Discover(startDir string) (*Repo, error) {
	vcsDir := findVCSDir(startDir)
	if vcsDir == "" {
		return nil, errs.New("repo.Discover", errs.NotInRepository,
			fmt.Errorf("no .git directory found above %s", startDir))
	}

	root := filepath.Dir(vcsDir)
	sidecarDir := filepath.Join(root, SidecarDirName)

	initialized := false
	if info, err := os.Stat(filepath.Join(sidecarDir, "HEAD")); err == nil && !info.IsDir() {
		initialized = true
	}

	mgr := config.NewManager()
	if err := mgr.Load(root, vcsDir); err != nil {
		// Configuration is optional; defaults already populate mgr.Get().
		_ = err
	}

	return &Repo{
		Root:        root,
		VCSDir:      vcsDir,
		SidecarDir:  sidecarDir,
		Initialized: initialized,
		Config:      mgr,
	}, nil
}

// DiscoverFromCWD is the common entry point commands use.
func DiscoverFromCWD() (*Repo, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errs.New("repo.DiscoverFromCWD", errs.IOError, err)
	}
	return Discover(cwd)
}

func findVCSDir(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, ".git")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// PidFile is the path to the supervisor's PID record (P in spec.md §3).
func (r *Repo) PidFile() string {
	return filepath.Join(r.SidecarDir, "autosnap.pid")
}

// ExcludeFile is R/.git/info/exclude, the one file I5 allows the core to
// append to.
func (r *Repo) ExcludeFile() string {
	return filepath.Join(r.VCSDir, "info", "exclude")
}
