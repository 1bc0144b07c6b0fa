package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/autosnap/git-autosnap/internal/supervisor"
	"github.com/autosnap/git-autosnap/internal/telemetry"
)

const stopTimeout = 5 * time.Second

func StopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running watcher",
		Long:  `Send a graceful-terminate signal to the running watcher and wait for it to exit. Idempotent when no watcher is running.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop()
		},
	}
}

func runStop() error {
	cli := telemetry.NewCLI()

	r, _, err := bootstrap()
	if err != nil {
		return err
	}

	cli.Step("Stopping watcher... ")
	if err := supervisor.Stop(r.PidFile(), stopTimeout); err != nil {
		cli.Fail("failed\n")
		return err
	}
	cli.OK("done\n")
	return nil
}
