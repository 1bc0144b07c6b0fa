package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/autosnap/git-autosnap/internal/supervisor"
	"github.com/autosnap/git-autosnap/internal/telemetry"
	"github.com/autosnap/git-autosnap/internal/watcher"
)

func StartCmd() *cobra.Command {
	var daemon bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Watch for file changes and create automatic snapshots",
		Long: `Start the watcher, which monitors the repository for changes and
debounces them into timestamped snapshots in the sidecar store. Runs in
the foreground unless --daemon is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(daemon)
		},
	}

	cmd.Flags().BoolVar(&daemon, "daemon", false, "Detach into the background after the watcher takes the lock")
	return cmd
}

var daemonChild bool

// MarkDaemonChild records that this process is the re-exec'd daemon
// child, per the --daemon-child marker main.go strips out of os.Args
// before cobra ever parses them (cobra has no such flag registered).
func MarkDaemonChild() { daemonChild = true }

func isDaemonChild() bool { return daemonChild }

func runStart(daemon bool) error {
	cli := telemetry.NewCLI()

	r, e, err := bootstrap()
	if err != nil {
		return err
	}
	if !requireInitialized(cli, r) {
		return nil
	}

	if daemon && !isDaemonChild() {
		cli.Step("Starting watcher in the background... ")
		args := append([]string{}, os.Args[1:]...)
		if err := supervisor.Daemonize(r.PidFile(), r.Root, args); err != nil {
			cli.Fail("failed\n")
			return err
		}
		cli.OK("done\n")
		return nil
	}

	sup := supervisor.New(r.PidFile())
	if err := sup.Acquire(); err != nil {
		return err
	}
	defer sup.Release()

	log, err := telemetry.NewDaemonLogger(telemetry.DaemonLoggerConfig{
		SidecarDir: r.SidecarDir,
		Level:      r.Config.Get().Log.Level,
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	loop, err := watcher.New(r, e, cli, log)
	if err != nil {
		return err
	}

	return loop.Run()
}
