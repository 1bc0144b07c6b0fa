package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autosnap/git-autosnap/internal/supervisor"
	"github.com/autosnap/git-autosnap/internal/telemetry"
)

func UninstallCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the sidecar snapshot store from this repository",
		Long:  `Stops a running watcher, deletes R/.autosnap and all of its snapshot history, and prompts for confirmation unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUninstall(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}

func runUninstall(force bool) error {
	cli := telemetry.NewCLI()

	r, _, err := bootstrap()
	if err != nil {
		return err
	}
	if !r.Initialized {
		cli.OK("nothing to uninstall\n")
		return nil
	}

	if !force {
		cli.Warn("This permanently deletes all snapshot history at %s\n", r.SidecarDir)
		fmt.Print("Continue? (y/N): ")
		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		if strings.TrimSpace(strings.ToLower(response)) != "y" {
			cli.Step("Aborted.\n")
			return nil
		}
	}

	if running, _, _ := supervisor.Status(r.PidFile()); running {
		cli.Step("Stopping watcher... ")
		if err := supervisor.Stop(r.PidFile(), stopTimeout); err != nil {
			cli.Fail("failed\n")
			return err
		}
		cli.OK("done\n")
	}

	cli.Step("Removing sidecar store... ")
	if err := os.RemoveAll(r.SidecarDir); err != nil {
		cli.Fail("failed\n")
		return err
	}
	cli.OK("done\n")
	return nil
}
