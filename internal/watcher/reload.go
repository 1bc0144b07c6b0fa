package watcher

import (
	"os"
	"time"
)

// binaryIdentity is the (size, mtime) pair the hot-reload poller compares
// against to detect that the on-disk executable has been replaced.
type binaryIdentity struct {
	size  int64
	mtime time.Time
}

func statBinaryIdentity(path string) (binaryIdentity, error) {
	info, err := os.Stat(path)
	if err != nil {
		return binaryIdentity{}, err
	}
	return binaryIdentity{size: info.Size(), mtime: info.ModTime()}, nil
}

// startupPath/startupIdentity record the executable as it was when this
// process started, so a binary replaced before the reload signal arrives
// is still seen as changed.
var startupPath, startupIdentity, startupErr = func() (string, binaryIdentity, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", binaryIdentity{}, err
	}
	id, err := statBinaryIdentity(exe)
	return exe, id, err
}()

// pollForBinaryUpdate watches the running executable's identity on disk
// and elevates to BinaryUpdateExec the moment it changes (or immediately,
// if it had already changed before this was called), per spec.md §4.2's
// hot-reload description. It stops polling once the loop is already
// shutting down for another reason.
func pollForBinaryUpdate(path string, interval time.Duration, state *ExitState, stop <-chan struct{}) {
	baseline := startupIdentity
	if startupErr != nil || path != startupPath {
		var err error
		if baseline, err = statBinaryIdentity(path); err != nil {
			return
		}
	}
	if current, err := statBinaryIdentity(path); err == nil && current != baseline {
		state.Elevate(BinaryUpdateExec)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			current, err := statBinaryIdentity(path)
			if err != nil {
				continue
			}
			if current != baseline {
				state.Elevate(BinaryUpdateExec)
				return
			}
		}
	}
}
