package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autosnap/git-autosnap/internal/engine"
	"github.com/autosnap/git-autosnap/internal/telemetry"
)

func DiffCmd() *cobra.Command {
	var (
		stat       bool
		nameOnly   bool
		nameStatus bool
	)

	cmd := &cobra.Command{
		Use:   "diff [a] [b] [paths...]",
		Short: "Compare two snapshots, or a snapshot against the working tree",
		Long: `With no arguments, diffs the working tree against HEAD. With one
selector, diffs it against the working tree. With two, diffs them against
each other. Either selector may be a commit id or the literal WORKING.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args, stat, nameOnly, nameStatus)
		},
	}

	cmd.Flags().BoolVar(&stat, "stat", false, "Show a diffstat instead of a full patch")
	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "Show only changed file names")
	cmd.Flags().BoolVar(&nameStatus, "name-status", false, "Show changed file names with status letters")
	return cmd
}

func runDiff(args []string, stat, nameOnly, nameStatus bool) error {
	cli := telemetry.NewCLI()

	r, e, err := bootstrap()
	if err != nil {
		return err
	}
	if !requireInitialized(cli, r) {
		return nil
	}

	var a, b string
	var paths []string
	switch {
	case len(args) >= 2:
		a, b, paths = args[0], args[1], args[2:]
	case len(args) == 1:
		a, paths = args[0], args[1:]
	}

	format := engine.FormatUnified
	switch {
	case stat:
		format = engine.FormatStat
	case nameOnly:
		format = engine.FormatNameOnly
	case nameStatus:
		format = engine.FormatNameStatus
	}

	out, err := e.Diff(a, b, paths, format)
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Println(out)
	}
	return nil
}
