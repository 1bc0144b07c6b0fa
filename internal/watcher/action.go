package watcher

import "go.uber.org/atomic"

// ExitAction ranks what the main loop does on the way out, per spec.md
// §4.2's precedence table. Stored in a single atomic so signal handlers
// never allocate and never race with the loop reading it.
type ExitAction uint32

const (
	None ExitAction = iota
	Snapshot
	ReloadExec
	BinaryUpdateExec
)

func (a ExitAction) String() string {
	switch a {
	case None:
		return "none"
	case Snapshot:
		return "snapshot"
	case ReloadExec:
		return "reload-exec"
	case BinaryUpdateExec:
		return "binary-update-exec"
	default:
		return "unknown"
	}
}

// ExitState holds the current ExitAction rank. Elevate is monotonic: it
// may only raise the rank, matching spec.md's "handlers may only raise
// the rank, never lower it" requirement, so a terminate followed by a
// reload always ends in a re-exec rather than a plain exit.
type ExitState struct {
	v atomic.Uint32
}

// Elevate raises the stored action to want if want outranks the current
// value. Safe for concurrent use from multiple signal handlers.
func (s *ExitState) Elevate(want ExitAction) {
	for {
		old := ExitAction(s.v.Load())
		if want <= old {
			return
		}
		if s.v.CAS(uint32(old), uint32(want)) {
			return
		}
	}
}

func (s *ExitState) Load() ExitAction {
	return ExitAction(s.v.Load())
}
