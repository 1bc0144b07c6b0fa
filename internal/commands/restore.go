package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autosnap/git-autosnap/internal/engine"
	"github.com/autosnap/git-autosnap/internal/telemetry"
)

func RestoreCmd() *cobra.Command {
	var (
		force  bool
		dryRun bool
		full   bool
	)

	cmd := &cobra.Command{
		Use:   "restore [commit] [paths...]",
		Short: "Write files from a snapshot back into the working tree",
		Long: `Restore copies files from a snapshot into R. commit defaults to HEAD
when omitted, mirroring diff's own default. By default only the listed
paths (or all paths) are overlaid; --full also deletes files present in
the working tree but absent from the snapshot. Refuses to run against an
uncommitted primary-repo working tree unless --force is set.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			commit := "HEAD"
			paths := args
			if len(args) > 0 {
				commit = args[0]
				paths = args[1:]
			}
			return runRestore(commit, paths, force, dryRun, full)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Restore even with uncommitted primary-repo changes")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the plan without writing anything")
	cmd.Flags().BoolVar(&full, "full", false, "Also delete files absent from the snapshot")
	return cmd
}

func runRestore(commit string, paths []string, force, dryRun, full bool) error {
	cli := telemetry.NewCLI()

	r, e, err := bootstrap()
	if err != nil {
		return err
	}
	if !requireInitialized(cli, r) {
		return nil
	}

	mode := engine.Overlay
	if full {
		mode = engine.Full
	}

	plan, err := e.Restore(commit, paths, mode, true, force)
	if err != nil {
		return err
	}

	cli.Info("Restore plan for %s:\n", commit)
	for _, w := range plan.Writes {
		fmt.Printf("  write  %s\n", w)
	}
	for _, d := range plan.Deletes {
		fmt.Printf("  delete %s\n", d)
	}
	if len(plan.Writes) == 0 && len(plan.Deletes) == 0 {
		cli.Step("Nothing to do.\n")
		return nil
	}

	if dryRun {
		return nil
	}

	if !force {
		fmt.Print("Apply this restore? (y/N): ")
		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		if strings.TrimSpace(strings.ToLower(response)) != "y" {
			cli.Step("Aborted.\n")
			return nil
		}
	}

	cli.Step("Restoring... ")
	if _, err := e.Restore(commit, paths, mode, false, force); err != nil {
		cli.Fail("failed\n")
		return err
	}
	cli.OK("done\n")
	return nil
}
