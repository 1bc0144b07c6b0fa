// Package telemetry splits output into two sinks, matching the split the
// teacher repo already has informally: colored interactive narration for
// commands run by a human, and structured logging for the long-lived
// watcher daemon.
package telemetry

import (
	"fmt"

	"github.com/fatih/color"
)

// CLI prints colored, human-facing status lines the way the teacher's
// command package does inline with fatih/color.
type CLI struct{}

func NewCLI() *CLI { return &CLI{} }

func (CLI) Step(format string, a ...interface{}) {
	fmt.Printf(format, a...)
}

func (CLI) OK(format string, a ...interface{}) {
	color.Green(format, a...)
}

func (CLI) Warn(format string, a ...interface{}) {
	color.Yellow(format, a...)
}

func (CLI) Fail(format string, a ...interface{}) {
	color.Red(format, a...)
}

func (CLI) Info(format string, a ...interface{}) {
	color.Cyan(format, a...)
}
