package commands

import (
	"github.com/spf13/cobra"

	"github.com/autosnap/git-autosnap/internal/telemetry"
)

func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the sidecar snapshot store in the current repository",
		Long: `Initialize git-autosnap by creating a bare sidecar repository at
R/.autosnap, configured with its own identity and excluded from the
primary repository's index.`,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	cli := telemetry.NewCLI()

	r, e, err := bootstrap()
	if err != nil {
		return err
	}

	if r.Initialized {
		cli.OK("git-autosnap is already initialized at %s\n", r.SidecarDir)
		return nil
	}

	cli.Step("Creating sidecar store... ")
	if err := e.Init(); err != nil {
		cli.Fail("failed\n")
		return err
	}
	cli.OK("done\n")

	cli.Info("Next: run 'autosnap start' to begin watching for changes.\n")
	return nil
}
