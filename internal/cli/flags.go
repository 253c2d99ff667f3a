package cli

import (
	"github.com/spf13/cobra"

	"idlerig/internal/config"
)

// watchFlags are shared by run and start
type watchFlags struct {
	thresholdMs int64
	intervalMs  int64
	source      string
	pauseOnExit bool
	journal     string
	noJournal   bool
	web         bool
	webPort     int
}

func (f *watchFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Int64Var(&f.thresholdMs, "threshold-ms", 0, "idle time in ms after which the miner is resumed")
	flags.Int64Var(&f.intervalMs, "interval-ms", 0, "poll interval in ms while the user is idle")
	flags.StringVar(&f.source, "source", "", "idle source: auto, mutter or x11")
	flags.BoolVar(&f.pauseOnExit, "pause-on-exit", false, "pause the miner when the watchdog stops")
	flags.StringVar(&f.journal, "journal", "", "path of the SQLite transition journal")
	flags.BoolVar(&f.noJournal, "no-journal", false, "do not record transitions")
	flags.BoolVar(&f.web, "web", false, "serve the status API")
	flags.IntVar(&f.webPort, "web-port", 0, "status API port")
}

// apply overrides cfg with every flag given on the command line
func (f *watchFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("threshold-ms") {
		cfg.Watch.IdleThresholdMs = f.thresholdMs
	}
	if flags.Changed("interval-ms") {
		cfg.Watch.PollIntervalMs = f.intervalMs
	}
	if flags.Changed("source") {
		cfg.Watch.Source = f.source
	}
	if flags.Changed("pause-on-exit") {
		cfg.Watch.PauseOnExit = f.pauseOnExit
	}
	if flags.Changed("journal") {
		cfg.Journal.Path = f.journal
	}
	if flags.Changed("no-journal") {
		cfg.Journal.Enabled = !f.noJournal
	}
	if flags.Changed("web") {
		cfg.Web.Enabled = f.web
	}
	if flags.Changed("web-port") {
		cfg.Web.Port = f.webPort
	}
}
