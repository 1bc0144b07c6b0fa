package supervisor

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/autosnap/git-autosnap/internal/errs"
)

// DaemonChildFlag is the internal re-exec marker this package's Daemonize
// appends to mark the child invocation, the same way a long-running Unix
// tool avoids a literal double-fork (which the Go runtime cannot do
// safely once goroutines/threads exist) by re-executing itself with a
// flag the child recognizes.
const DaemonChildFlag = "--daemon-child"

// Daemonize re-execs the current program in the background with
// DaemonChildFlag appended, redirecting the child's standard streams to
// /dev/null and detaching it into a new session, then returns once the
// child has taken the PID-file lock (or the deadline below expires).
// Per spec.md §4.3: "the parent returns immediately after observing that
// the child has taken the lock, or fails with a clear error if it has
// not within a short deadline."
func Daemonize(pidFile, workDir string, args []string) error {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return errs.New("supervisor.Daemonize", errs.IOError, err)
	}
	defer devNull.Close()

	exe, err := os.Executable()
	if err != nil {
		return errs.New("supervisor.Daemonize", errs.IOError, err)
	}

	childArgs := append(append([]string{}, args...), DaemonChildFlag)
	cmd := exec.Command(exe, childArgs...)
	cmd.Dir = workDir
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = daemonSysProcAttr()

	if err := cmd.Start(); err != nil {
		return errs.New("supervisor.Daemonize", errs.IOError, fmt.Errorf("start daemon child: %w", err))
	}
	// The parent does not wait on the child; the child outlives it in its
	// own session.
	_ = cmd.Process.Release()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if running, pid, _ := Status(pidFile); running {
			_ = pid
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}

	return errs.New("supervisor.Daemonize", errs.StaleState,
		fmt.Errorf("daemon child did not take the lock within the startup deadline"))
}
