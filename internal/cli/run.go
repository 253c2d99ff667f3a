package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"idlerig/internal/credentials"
	"idlerig/internal/daemon"
	"idlerig/internal/database"
	"idlerig/internal/watchdog"
	"idlerig/internal/web"
	"idlerig/pkg/detector"
	"idlerig/pkg/rpc"
)

func NewRunCommand(a *app) *cobra.Command {
	var wf watchFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the watchdog in the foreground",
		Long: `Run the watchdog in the foreground until interrupted.

The miner is paused while the desktop is in use and resumed once idle time
reaches the threshold.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wf.apply(cmd, a.cfg)
			return a.runWatchdog(cmd.Context(), nil)
		},
	}
	wf.register(cmd)

	return cmd
}

func NewStartCommand(a *app) *cobra.Command {
	var wf watchFlags

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the watchdog in the background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wf.apply(cmd, a.cfg)
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			dm := daemon.New(a.cfg.Daemon.PIDFile)
			running, pid, err := dm.IsRunning()
			if err != nil {
				return errors.Wrap(err, "failed to check daemon status")
			}
			if running && !daemon.IsChild() {
				return errors.Errorf("daemon is already running (PID: %d)", pid)
			}

			if daemon.IsChild() {
				return a.runWatchdog(cmd.Context(), dm)
			}

			childPID, err := daemon.Spawn(os.Args[1:], a.cfg.Daemon.LogFile)
			if err != nil {
				return err
			}

			fmt.Printf("Daemon started successfully (PID: %d)\n", childPID)
			if a.cfg.Web.Enabled {
				fmt.Printf("Status API available at: http://%s:%d\n", a.cfg.Web.Host, a.cfg.Web.Port)
			}
			fmt.Printf("Logs: %s\n", a.cfg.Daemon.LogFile)
			return nil
		},
	}
	wf.register(cmd)

	return cmd
}

// runWatchdog builds the loop from configuration and runs it until SIGINT or
// SIGTERM. dm is nil when running in the foreground.
func (a *app) runWatchdog(parent context.Context, dm *daemon.Daemon) error {
	cfg := a.cfg
	a.resolveToken()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := detector.New(cfg.Watch.Source)
	if err != nil {
		return errors.Wrap(err, "failed to initialize idle source")
	}
	defer src.Close()
	a.logger.Info("Idle source initialized", "source", src.Name())

	client := rpc.NewClient(cfg.RPC.URL, cfg.RPC.Token, rpc.WithTimeout(cfg.RPCTimeout()))

	opts := []watchdog.Option{watchdog.WithLogger(a.logger)}

	if cfg.Journal.Enabled {
		db, err := database.Connect(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Initialize(); err != nil {
			return err
		}

		repo := database.NewRepository(db)
		journal := database.NewJournal(repo)
		opts = append(opts, watchdog.WithRecorder(journal))
		a.logger.Debug("Journal opened", "session", journal.SessionID())

		if cfg.Web.Enabled {
			server := web.NewServer(cfg, repo)
			go func() {
				if err := server.Start(); err != nil {
					a.logger.Error("Status API failed", "error", err)
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					a.logger.Warn("Error shutting down status API", "error", err)
				}
			}()
		}
	}

	loop, err := watchdog.New(watchdog.Config{
		IdleThreshold: cfg.IdleThreshold(),
		PollInterval:  cfg.PollInterval(),
		PauseOnExit:   cfg.Watch.PauseOnExit,
	}, src, client, opts...)
	if err != nil {
		return err
	}

	if dm != nil {
		if err := dm.WritePID(); err != nil {
			return err
		}
		defer dm.RemovePID()
	}

	a.logger.Debug("Starting watchdog", "miner", client.Endpoint())
	a.logger.Debug(cfg.String())

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// resolveToken falls back to the keyring when no token was configured
func (a *app) resolveToken() {
	if a.cfg.RPC.Token != "" || a.cfg.RPC.URL == "" {
		return
	}

	store, err := credentials.Open()
	if err != nil {
		a.logger.Debug("Keyring unavailable", "error", err)
		return
	}

	token, err := store.GetToken(a.cfg.RPC.URL)
	if err != nil {
		a.logger.Debug("No token in keyring", "error", err)
		return
	}
	a.cfg.RPC.Token = token
}
