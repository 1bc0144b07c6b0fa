package commands

import (
	"github.com/spf13/cobra"

	"github.com/autosnap/git-autosnap/internal/config"
	"github.com/autosnap/git-autosnap/internal/telemetry"
)

func GCCmd() *cobra.Command {
	var (
		prune bool
		days  int
	)

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Compact the sidecar store, optionally pruning old history",
		Long:  `Runs git gc against the sidecar store. With --prune, snapshot history older than --days is first expired from the linear chain.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGC(prune, days)
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "Expire snapshots older than --days before compacting")
	cmd.Flags().IntVar(&days, "days", 0, "Retention horizon in days (defaults to autosnap.gc.prune-days)")
	return cmd
}

func runGC(prune bool, days int) error {
	cli := telemetry.NewCLI()

	r, e, err := bootstrap()
	if err != nil {
		return err
	}
	if !requireInitialized(cli, r) {
		return nil
	}

	if days <= 0 {
		days = config.DefaultPruneDays
		if r.Config != nil {
			days = r.Config.PruneDays()
		}
	}

	cli.Step("Running garbage collection... ")
	if err := e.GC(days, prune); err != nil {
		cli.Fail("failed\n")
		return err
	}
	cli.OK("done\n")
	return nil
}
