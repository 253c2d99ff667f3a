// Package cli wires the idlerig commands together.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"idlerig/internal/config"
	"idlerig/internal/logging"
)

// Version is set at build time with -ldflags
var Version = "dev"

// app carries state shared by all subcommands of one invocation
type app struct {
	configPath string
	verbose    int
	url        string
	token      string

	cfg     *config.Config
	logger  *slog.Logger
	logFile io.Closer
}

func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "idlerig",
		Short: "Pause an XMRig miner while you use your desktop",
		Long: `idlerig watches desktop idle time and resumes a remote XMRig miner once
you have been away long enough. Any input pauses the miner again.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logFile != nil {
				a.logFile.Close()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "config file (TOML)")
	rootCmd.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "more output, repeat for even more")
	rootCmd.PersistentFlags().StringVar(&a.url, "url", "", "XMRig HTTP API base URL, e.g. http://127.0.0.1:8080")
	rootCmd.PersistentFlags().StringVar(&a.token, "bearer", "", "XMRig HTTP API access token")

	rootCmd.AddCommand(
		NewRunCommand(a),
		NewStartCommand(a),
		NewStopCommand(a),
		NewStatusCommand(a),
		NewReportCommand(a),
		NewClearCommand(a),
		NewCtlCommand(a),
		NewTokenCommand(a),
		NewConfigCommand(a),
		NewVersionCommand(),
	)

	return rootCmd
}

// init loads configuration and sets up logging before any subcommand runs
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.RPC.URL = a.url
	}
	if flags.Changed("bearer") {
		cfg.RPC.Token = a.token
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return &config.Error{Field: "log.level", Reason: err.Error()}
	}
	if a.verbose > 0 {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	if cfg.Log.File != "" {
		f, err := logging.OpenFile(cfg.Log.File)
		if err != nil {
			return err
		}
		a.logFile = f
		out = f
	}
	a.logger = logging.Setup(out, level)

	return nil
}
