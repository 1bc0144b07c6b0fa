package engine

import (
	"fmt"
	"regexp"
	"time"
)

// messageRe matches spec.md §3/§6's commit message grammar:
// AUTOSNAP[<branch>] <ISO-8601-with-offset>[ <tail>]
var messageRe = regexp.MustCompile(`^AUTOSNAP\[([^\]]*)\] (\S+)(?: (.*))?$`)

// buildMessage renders the commit-message grammar using the local wall
// clock offset, as spec.md §3 requires.
func buildMessage(branch string, at time.Time, tail string) string {
	ts := at.Format(time.RFC3339)
	if tail == "" {
		return fmt.Sprintf("AUTOSNAP[%s] %s", branch, ts)
	}
	return fmt.Sprintf("AUTOSNAP[%s] %s %s", branch, ts, tail)
}

// ParsedMessage is the decomposed form of a snapshot commit message,
// returned by ListSnapshots.
type ParsedMessage struct {
	Branch    string
	Timestamp time.Time
	Tail      string
	Raw       string
}

// parseMessage decodes a commit message produced by buildMessage. Commits
// not matching the grammar (e.g. a stray manual commit) are returned with
// an empty Branch and the raw text preserved as Tail.
func parseMessage(raw string) ParsedMessage {
	m := messageRe.FindStringSubmatch(raw)
	if m == nil {
		return ParsedMessage{Raw: raw, Tail: raw}
	}
	ts, err := time.Parse(time.RFC3339, m[2])
	if err != nil {
		ts = time.Time{}
	}
	return ParsedMessage{Branch: m[1], Timestamp: ts, Tail: m[3], Raw: raw}
}
