package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/autosnap/git-autosnap/internal/supervisor"
	"github.com/autosnap/git-autosnap/internal/telemetry"
	"github.com/autosnap/git-autosnap/internal/utils"
)

// StatusCmd reports whether a watcher is running, grounded on the
// teacher's internal/commands/status.go layout (project header, snapshot
// count, sidecar size, verbose file counts), adapted so the command's
// exit code is exactly "0 iff running" per spec.md §6 rather than the
// teacher's always-0 informational report.
func StatusCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether a watcher is running",
		Long:  `Exits 0 if a watcher is currently running against this repository, non-zero otherwise, per the PID-file protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show file counts and sidecar store size")
	return cmd
}

func runStatus(verbose bool) error {
	cli := telemetry.NewCLI()

	r, e, err := bootstrap()
	if err != nil {
		return err
	}

	cli.Info("git-autosnap: %s\n", filepath.Base(r.Root))

	if !r.Initialized {
		cli.Warn("not initialized\n")
		os.Exit(1)
	}

	running, pid, err := supervisor.Status(r.PidFile())
	if err != nil {
		return err
	}

	if running {
		cli.OK("running (pid %d)\n", pid)
	} else {
		cli.Warn("stopped\n")
	}

	it, err := e.ListSnapshots()
	if err == nil {
		count := 0
		var latest string
		for it.Next() {
			if count == 0 {
				latest = it.Entry().Raw
			}
			count++
		}
		it.Close()
		fmt.Printf("snapshots: %d\n", count)
		if latest != "" {
			fmt.Printf("latest: %s\n", utils.TruncateString(latest, 60))
		}
	}

	if size, err := utils.CalculateDirectorySize(r.SidecarDir); err == nil {
		fmt.Printf("sidecar size: %s\n", utils.FormatBytes(size))
	}

	if verbose {
		fileCount, dirCount := utils.CountProjectFiles(r.Root)
		fmt.Printf("project files: %d files in %d directories\n", fileCount, dirCount)
	}

	// status's contract is "0 iff running"; exit directly rather than
	// returning an error for main's generic "error:" printing path.
	if !running {
		os.Exit(1)
	}
	return nil
}
