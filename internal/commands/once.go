package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/autosnap/git-autosnap/internal/telemetry"
)

func OnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once [tail]",
		Short: "Take a single snapshot immediately",
		Long:  `Create one snapshot of the current working tree and exit, without starting the watcher. Any positional arguments become the commit message's free-form tail.`,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(strings.Join(args, " "))
		},
	}
}

func runOnce(tail string) error {
	cli := telemetry.NewCLI()

	r, e, err := bootstrap()
	if err != nil {
		return err
	}
	if !requireInitialized(cli, r) {
		return nil
	}

	cli.Step("Creating snapshot... ")
	result, err := e.SnapshotOnce(tail)
	if err != nil {
		cli.Fail("failed\n")
		return err
	}
	if result.Unchanged {
		cli.OK("no change\n")
		return nil
	}
	cli.OK("done (%s)\n", result.CommitID[:12])
	return nil
}
