// Package supervisor implements the Process Supervisor: single-instance
// enforcement via an advisory PID-file lock, status/stop operations, and
// Unix daemonization.
//
// Nothing in the teacher repo manages a PID file or daemonizes — its
// `start` command just runs in the foreground under normal shell job
// control. This package is new code, grounded on the *pattern* the
// teacher's internal/core.AppState uses for owning repo-rooted paths,
// generalized to own R/.autosnap/autosnap.pid, and on
// github.com/gofrs/flock (present in the pack's ethereum-go-ethereum
// go.mod) for the non-blocking exclusive advisory lock spec.md §4.3
// describes step by step.
package supervisor

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"github.com/autosnap/git-autosnap/internal/errs"
)

// Supervisor owns the advisory lock on a single repo's PID file.
type Supervisor struct {
	pidFile string
	lock    *flock.Flock
	owned   bool
}

func New(pidFile string) *Supervisor {
	return &Supervisor{pidFile: pidFile, lock: flock.New(pidFile)}
}

// Acquire implements spec.md §4.3's PID file protocol steps 1-4: open
// create+rw mode 0600, attempt the non-blocking exclusive lock, and on
// success truncate+write the current PID. It refuses to start if the
// lock is already held, resolving the existing PID for the error message
// where possible.
func (s *Supervisor) Acquire() error {
	locked, err := s.lock.TryLock()
	if err != nil {
		return errs.New("supervisor.Acquire", errs.IOError, fmt.Errorf("lock %s: %w", s.pidFile, err))
	}
	if !locked {
		existing, _ := readPID(s.pidFile)
		return errs.New("supervisor.Acquire", errs.AlreadyRunning,
			fmt.Errorf("watcher already running (pid %s)", existing))
	}

	if s.lock.File() == nil {
		return errs.New("supervisor.Acquire", errs.IOError, fmt.Errorf("lock file handle unavailable"))
	}
	// flock opens its own handle read-only, so the PID is written through a
	// second read-write handle while the lock stays held on the first.
	f, err := os.OpenFile(s.pidFile, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return errs.New("supervisor.Acquire", errs.IOError, err)
	}
	defer f.Close()
	if err := f.Truncate(0); err != nil {
		return errs.New("supervisor.Acquire", errs.IOError, err)
	}
	if _, err := f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0); err != nil {
		return errs.New("supervisor.Acquire", errs.IOError, err)
	}
	if err := f.Sync(); err != nil {
		return errs.New("supervisor.Acquire", errs.IOError, err)
	}

	s.owned = true
	return nil
}

// Release unlocks and, if this process holds the lock, removes the PID
// file. Safe to call on a Supervisor that never successfully Acquired.
func (s *Supervisor) Release() {
	if s.owned {
		_ = os.Remove(s.pidFile)
		s.owned = false
	}
	_ = s.lock.Unlock()
}

// Status reports whether a watcher is currently running against pidFile,
// per spec.md §4.3: present PID file + unobtainable lock + a PID that
// answers a zero-signal probe. Any other combination is "stopped", and a
// stale file is removed.
func Status(pidFile string) (running bool, pid int, err error) {
	pidStr, readErr := readPID(pidFile)
	if readErr != nil {
		return false, 0, nil
	}
	pid, convErr := strconv.Atoi(pidStr)
	if convErr != nil {
		_ = os.Remove(pidFile)
		return false, 0, nil
	}

	l := flock.New(pidFile)
	locked, lockErr := l.TryLock()
	if lockErr != nil {
		return false, 0, errs.New("supervisor.Status", errs.IOError, lockErr)
	}
	if locked {
		// We got the lock ourselves: nothing else holds it, so it is not
		// running regardless of what the stale file says.
		_ = l.Unlock()
		_ = os.Remove(pidFile)
		return false, 0, nil
	}

	if !processAlive(pid) {
		return false, 0, nil
	}
	return true, pid, nil
}

// Stop reads the PID, sends a graceful-terminate signal, and waits up to
// timeout for the PID file to disappear. Idempotent: stopping an
// already-stopped watcher succeeds trivially.
func Stop(pidFile string, timeout time.Duration) error {
	running, pid, err := Status(pidFile)
	if err != nil {
		return err
	}
	if !running {
		return nil
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return errs.New("supervisor.Stop", errs.IOError, fmt.Errorf("signal pid %d: %w", pid, err))
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(pidFile); os.IsNotExist(err) {
			return nil
		}
		if !processAlive(pid) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return errs.New("supervisor.Stop", errs.StaleState,
		fmt.Errorf("pid %d did not exit within %s", pid, timeout))
}

// Signal sends sig to the process recorded in pidFile, for callers that
// request SIGUSR1/SIGUSR2 behavior without going through Stop.
func Signal(pidFile string, sig syscall.Signal) error {
	running, pid, err := Status(pidFile)
	if err != nil {
		return err
	}
	if !running {
		return errs.New("supervisor.Signal", errs.StaleState, fmt.Errorf("no watcher running"))
	}
	if err := syscall.Kill(pid, sig); err != nil {
		return errs.New("supervisor.Signal", errs.IOError, err)
	}
	return nil
}

func readPID(pidFile string) (string, error) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func processAlive(pid int) bool {
	// Unix zero-signal probe: no signal is sent, only existence/permission
	// is checked.
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}
