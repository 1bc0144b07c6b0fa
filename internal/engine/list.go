package engine

import (
	"bufio"
	"fmt"
	"os/exec"
	"strings"

	"github.com/autosnap/git-autosnap/internal/errs"
)

// SnapshotEntry is one record in the snapshot history.
type SnapshotEntry struct {
	CommitID string
	ParsedMessage
}

// SnapshotIterator streams SnapshotEntry values from HEAD backward,
// without loading the whole history into memory, per spec.md §4.1's
// requirement that the external fuzzy selector MUST be able to stream.
// It is grounded on the teacher's ListSnapshots pretty-format parsing,
// generalized from an eagerly materialized slice into a pull-based
// reader over `git log`'s own streaming stdout pipe.
type SnapshotIterator struct {
	cmd    *exec.Cmd
	stdout *bufio.Scanner
	cur    SnapshotEntry
	err    error
	done   bool
}

// ListSnapshots opens a streaming iterator over S's history. Callers must
// call Close when finished, even after an early break.
func (e *Engine) ListSnapshots() (*SnapshotIterator, error) {
	if !e.Repo.Initialized {
		return nil, errs.New("engine.ListSnapshots", errs.NotInRepository, nil)
	}

	cmd := exec.Command("git",
		"--git-dir="+e.Repo.SidecarDir,
		"--work-tree="+e.Repo.Root,
		"log", "--format=%H%x1f%s", "--no-renames")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errs.New("engine.ListSnapshots", errs.IOError, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, errs.New("engine.ListSnapshots", errs.IOError, err)
	}

	return &SnapshotIterator{cmd: cmd, stdout: bufio.NewScanner(stdout)}, nil
}

// Next advances the iterator. It returns false at end of history or on
// error; check Err afterward.
func (it *SnapshotIterator) Next() bool {
	if it.done || !it.stdout.Scan() {
		it.done = true
		return false
	}
	line := it.stdout.Text()
	parts := strings.SplitN(line, "\x1f", 2)
	if len(parts) != 2 {
		it.err = fmt.Errorf("malformed log line: %q", line)
		it.done = true
		return false
	}
	it.cur = SnapshotEntry{CommitID: parts[0], ParsedMessage: parseMessage(parts[1])}
	return true
}

func (it *SnapshotIterator) Entry() SnapshotEntry { return it.cur }

func (it *SnapshotIterator) Err() error { return it.err }

// Close releases the underlying `git log` process, killing it first so
// Wait doesn't deadlock on unread stdout after an early break.
func (it *SnapshotIterator) Close() error {
	if it.cmd.Process != nil {
		_ = it.cmd.Process.Kill()
	}
	return it.cmd.Wait()
}
