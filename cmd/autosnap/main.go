// Command autosnap is the dispatcher for the git-autosnap background
// snapshot service, generalizing the teacher's cmd/timemachine/main.go
// rootCmd assembly onto this repo's command surface.
package main

import (
	"os"

	"github.com/autosnap/git-autosnap/internal/commands"
	"github.com/autosnap/git-autosnap/internal/telemetry"
)

const version = "0.1.0"

func main() {
	args, isChild := commands.StripDaemonChildFlag(os.Args[1:])
	if isChild {
		commands.MarkDaemonChild()
	}

	root := commands.Root(version)
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		cli := telemetry.NewCLI()
		cli.Fail("error: %v\n", err)
		os.Exit(commands.ExitCodeFor(err))
	}
}
