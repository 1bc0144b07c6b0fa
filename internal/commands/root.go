// Package commands wires the cobra command surface spec.md §6 names onto
// the engine/watcher/supervisor packages, grounded on the teacher's
// cmd/timemachine/main.go + internal/commands/*.go layout: one
// exported *Cmd() constructor per verb, a shared app-state bootstrap
// (here repo.DiscoverFromCWD instead of the teacher's core.NewAppState),
// and the same colored, narrated status-line style.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/autosnap/git-autosnap/internal/engine"
	"github.com/autosnap/git-autosnap/internal/errs"
	"github.com/autosnap/git-autosnap/internal/repo"
	"github.com/autosnap/git-autosnap/internal/supervisor"
	"github.com/autosnap/git-autosnap/internal/telemetry"
)

// Root builds the top-level "autosnap" command with every subcommand
// attached, the way the teacher's cmd/timemachine/main.go assembles
// rootCmd in its init().
func Root(version string) *cobra.Command {
	root := &cobra.Command{
		Use:     "autosnap",
		Version: version,
		Short:   "Background Git snapshots for working-tree history",
		Long: `git-autosnap records timestamped snapshots of a working tree into a
sidecar bare repository, independent of the project's own Git history.
It watches for file changes and creates snapshots without touching your
primary repository's commits, branches, or index.`,
	}

	root.AddCommand(
		InitCmd(),
		StartCmd(),
		StopCmd(),
		StatusCmd(),
		OnceCmd(),
		GCCmd(),
		UninstallCmd(),
		RestoreCmd(),
		DiffCmd(),
	)

	return root
}

// bootstrap resolves R/S and builds an Engine, the common first step of
// every command below.
func bootstrap() (*repo.Repo, *engine.Engine, error) {
	r, err := repo.DiscoverFromCWD()
	if err != nil {
		return nil, nil, err
	}
	return r, engine.New(r), nil
}

func requireInitialized(cli *telemetry.CLI, r *repo.Repo) bool {
	if r.Initialized {
		return true
	}
	cli.Fail("git-autosnap is not initialized in this repository\n")
	cli.Step("Run 'autosnap init' to get started.\n")
	return false
}

// ExitCodeFor maps an errs.Kind onto a process exit code. Every command's
// RunE returns a plain error; main.go calls this to pick os.Exit's
// argument, matching spec.md §6's "0 success, non-zero on error".
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	switch errs.KindOf(err) {
	case errs.NotInRepository:
		return 2
	case errs.AlreadyRunning:
		return 3
	case errs.UncommittedChanges:
		return 4
	case errs.ExternalToolFailure:
		return 5
	default:
		return 1
	}
}

// StripDaemonChildFlag removes the internal daemon-child marker from args
// before cobra ever sees it (cobra has no such flag registered) and
// reports whether it was present.
func StripDaemonChildFlag(args []string) ([]string, bool) {
	out := make([]string, 0, len(args))
	found := false
	for _, a := range args {
		if a == supervisor.DaemonChildFlag {
			found = true
			continue
		}
		out = append(out, a)
	}
	return out, found
}
