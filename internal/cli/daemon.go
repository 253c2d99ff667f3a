package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"idlerig/internal/daemon"
	"idlerig/internal/database"
	"idlerig/pkg/detector"
	"idlerig/pkg/idle"
	"idlerig/pkg/utils"
)

func NewStopCommand(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the background watchdog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dm := daemon.New(a.cfg.Daemon.PIDFile)

			running, pid, err := dm.IsRunning()
			if err != nil {
				return errors.Wrap(err, "failed to check daemon status")
			}

			if !running {
				fmt.Println("Daemon is not running")
				return nil
			}

			fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
			if err := dm.Stop(timeout); err != nil {
				return errors.Wrap(err, "failed to stop daemon")
			}

			fmt.Println("Daemon stopped successfully")
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for the daemon to exit")

	return cmd
}

func NewStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon state, last transition and current idle time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := a.cfg
			dm := daemon.New(cfg.Daemon.PIDFile)

			running, pid, err := dm.IsRunning()
			if err != nil {
				return errors.Wrap(err, "failed to check daemon status")
			}

			if running {
				fmt.Fprintf(out, "Status: Running (PID: %d, %s)\n", pid, dm.PIDFile())
			} else {
				fmt.Fprintln(out, "Status: Not running")
			}
			fmt.Fprintf(out, "Miner: %s\n", cfg.RPC.URL)
			fmt.Fprintf(out, "Idle Threshold: %v\n", cfg.IdleThreshold())
			fmt.Fprintf(out, "Poll Interval: %v\n", cfg.PollInterval())

			if cfg.Journal.Enabled {
				printLatestTransition(out, cfg.Journal.Path)
			}

			src, err := detector.New(cfg.Watch.Source)
			if err != nil {
				fmt.Fprintf(out, "\nCould not open idle source: %v\n", err)
				return nil
			}
			defer src.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			info, err := idle.Sample(ctx, src)
			if err != nil {
				fmt.Fprintf(out, "\nCould not query idle time: %v\n", err)
				return nil
			}

			fmt.Fprintf(out, "\nDesktop:\n")
			fmt.Fprintf(out, "  Source: %s\n", info.Source)
			fmt.Fprintf(out, "  Idle Time: %s\n", info.IdleTime.Round(time.Second))
			if info.IdleTime >= cfg.IdleThreshold() {
				fmt.Fprintln(out, "  Miner should be: RUNNING")
			} else {
				fmt.Fprintf(out, "  Miner should be: PAUSED (resumes in %s)\n", (cfg.IdleThreshold() - info.IdleTime).Round(time.Second))
			}
			return nil
		},
	}
}

// printLatestTransition shows the newest journal entry. A journal that does
// not exist yet is left uncreated.
func printLatestTransition(out io.Writer, path string) {
	if path == "" {
		var err error
		if path, err = database.GetDefaultDBPath(); err != nil {
			return
		}
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(out, "\nJournal: no entries yet")
		return
	}

	db, err := database.Connect(path)
	if err != nil {
		fmt.Fprintf(out, "\nJournal unavailable: %v\n", err)
		return
	}
	defer db.Close()

	repo := database.NewRepository(db)
	latest, err := repo.GetLatestTransition()
	if err != nil {
		fmt.Fprintf(out, "\nJournal unavailable: %v\n", err)
		return
	}
	if latest == nil {
		fmt.Fprintln(out, "\nJournal: no entries yet")
		return
	}

	fmt.Fprintf(out, "\nLast Transition:\n")
	fmt.Fprintf(out, "  State: %s -> %s\n", latest.FromState, latest.ToState)
	fmt.Fprintf(out, "  When: %s (%s ago)\n",
		latest.Timestamp.Local().Format(time.DateTime),
		utils.FormatRoundedUnit(int64(time.Since(latest.Timestamp).Seconds())))

	if lastErr, err := repo.GetLatestErrorLog(); err == nil && lastErr != nil {
		fmt.Fprintf(out, "  Last Error: [%s] %s\n", lastErr.Kind, lastErr.ErrorMsg)
	}
}
