package engine

import (
	"fmt"
	"os/exec"
	"strings"
)

// DefaultAuthorName/Email are the documented fallback identity spec.md §3
// names for when the primary repo has no user.name/user.email configured.
const (
	DefaultAuthorName  = "git-autosnap"
	DefaultAuthorEmail = "autosnap@localhost"
)

// syncIdentity copies user.name/user.email from the primary repo into the
// sidecar, generalizing the teacher's GitManager.copyGitConfig, falling
// back to the documented default identity rather than leaving it unset.
func (e *Engine) syncIdentity() error {
	name, _ := e.primaryConfig("user.name")
	if name == "" {
		name = DefaultAuthorName
	}
	if _, err := e.run("config", "user.name", name); err != nil {
		return err
	}

	email, _ := e.primaryConfig("user.email")
	if email == "" {
		email = DefaultAuthorEmail
	}
	if _, err := e.run("config", "user.email", email); err != nil {
		return err
	}
	return nil
}

func (e *Engine) primaryConfig(key string) (string, error) {
	cmd := exec.Command("git", "--git-dir="+e.Repo.VCSDir, "config", key)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("read primary config %s: %w", key, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// PrimaryConfigValue exposes a read-only primary-repo config lookup for
// callers outside this package, such as the watcher's global-excludesfile
// discovery (I5: this never writes to R's own VCS metadata).
func (e *Engine) PrimaryConfigValue(key string) (string, error) {
	return e.primaryConfig(key)
}
