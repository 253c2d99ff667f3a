package config

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"time"

	"idlerig/pkg/detector"
)

// Config holds all application configuration. It is built once at startup
// and not modified after the watchdog starts.
type Config struct {
	// Miner RPC configuration
	RPC RPCConfig `toml:"rpc"`

	// Idle watch configuration
	Watch WatchConfig `toml:"watch"`

	// Transition journal configuration
	Journal JournalConfig `toml:"journal"`

	// Daemon configuration
	Daemon DaemonConfig `toml:"daemon"`

	// Status API configuration
	Web WebConfig `toml:"web"`

	// Logging configuration
	Log LogConfig `toml:"log"`
}

// RPCConfig describes the XMRig HTTP API
type RPCConfig struct {
	URL       string `toml:"url"`        // Base URL, /json_rpc is appended
	Token     string `toml:"token"`      // Bearer access token
	TimeoutMs int64  `toml:"timeout_ms"` // Per-call timeout
}

// WatchConfig holds the control loop timings
type WatchConfig struct {
	IdleThresholdMs int64  `toml:"idle_threshold_ms"` // Idle time after which the miner runs
	PollIntervalMs  int64  `toml:"poll_interval_ms"`  // Re-check cadence while idle
	Source          string `toml:"source"`            // auto, mutter or x11
	PauseOnExit     bool   `toml:"pause_on_exit"`     // Pause the miner when the watchdog stops
}

// JournalConfig holds the SQLite journal settings
type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Empty means ~/.config/idlerig/journal.db
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `toml:"pid_file"`
	LogFile string `toml:"log_file"` // stdout and stderr of the detached process
}

// WebConfig holds status API configuration
type WebConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	File  string `toml:"file"`  // Empty means stderr
}

// maxMillis is the largest millisecond count a time.Duration can hold
const maxMillis = math.MaxInt64 / int64(time.Millisecond)

// Error reports an invalid configuration value. It is fatal at startup.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		RPC: RPCConfig{
			TimeoutMs: 5000,
		},
		Watch: WatchConfig{
			IdleThresholdMs: 300_000, // 5 minutes
			PollIntervalMs:  250,
			Source:          detector.SourceAuto,
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/idlerig-%d.pid", os.Getuid()),
			LogFile: fmt.Sprintf("/tmp/idlerig-%d.log", os.Getuid()),
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 10000 + os.Getuid(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.ValidateRPC(); err != nil {
		return err
	}

	if err := checkMillis("watch.idle_threshold_ms", c.Watch.IdleThresholdMs); err != nil {
		return err
	}

	if err := checkMillis("watch.poll_interval_ms", c.Watch.PollIntervalMs); err != nil {
		return err
	}

	if !detector.IsValidSource(c.Watch.Source) {
		return &Error{Field: "watch.source", Reason: fmt.Sprintf("unknown source %q (valid: auto, mutter, x11)", c.Watch.Source)}
	}

	if c.Web.Enabled {
		if c.Web.Port < 1 || c.Web.Port > 65535 {
			return &Error{Field: "web.port", Reason: fmt.Sprintf("must be between 1 and 65535, got %d", c.Web.Port)}
		}
		if c.Web.Host == "" {
			return &Error{Field: "web.host", Reason: "cannot be empty"}
		}
		if !c.Journal.Enabled {
			return &Error{Field: "web.enabled", Reason: "the status API reads the journal, enable journal.enabled"}
		}
	}

	if c.Daemon.PIDFile == "" {
		return &Error{Field: "daemon.pid_file", Reason: "cannot be empty"}
	}

	return nil
}

// ValidateRPC checks only the settings needed to talk to the miner
func (c *Config) ValidateRPC() error {
	if c.RPC.URL == "" {
		return &Error{Field: "rpc.url", Reason: "is required"}
	}

	u, err := url.Parse(c.RPC.URL)
	if err != nil {
		return &Error{Field: "rpc.url", Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &Error{Field: "rpc.url", Reason: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme)}
	}
	if u.Host == "" {
		return &Error{Field: "rpc.url", Reason: "missing host"}
	}

	if c.RPC.TimeoutMs < 0 {
		return &Error{Field: "rpc.timeout_ms", Reason: "cannot be negative"}
	}
	if c.RPC.TimeoutMs > maxMillis {
		return &Error{Field: "rpc.timeout_ms", Reason: fmt.Sprintf("must be at most %d, got %d", maxMillis, c.RPC.TimeoutMs)}
	}

	return nil
}

func checkMillis(field string, ms int64) error {
	if ms <= 0 {
		return &Error{Field: field, Reason: fmt.Sprintf("must be positive, got %d", ms)}
	}
	if ms > maxMillis {
		return &Error{Field: field, Reason: fmt.Sprintf("must be at most %d, got %d", maxMillis, ms)}
	}
	return nil
}

func (c *Config) IdleThreshold() time.Duration {
	return time.Duration(c.Watch.IdleThresholdMs) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Watch.PollIntervalMs) * time.Millisecond
}

func (c *Config) RPCTimeout() time.Duration {
	return time.Duration(c.RPC.TimeoutMs) * time.Millisecond
}

// String returns a string representation of the config with the token masked
func (c *Config) String() string {
	token := "(none)"
	if c.RPC.Token != "" {
		token = "********"
	}

	return fmt.Sprintf(`Configuration:
  RPC:
    URL: %s
    Token: %s
    Timeout: %v
  Watch:
    Idle Threshold: %v
    Poll Interval: %v
    Source: %s
    Pause On Exit: %v
  Journal:
    Enabled: %v
    Path: %s
  Daemon:
    PID File: %s
    Log File: %s
  Web:
    Enabled: %v
    Address: %s:%d`,
		c.RPC.URL,
		token,
		c.RPCTimeout(),
		c.IdleThreshold(),
		c.PollInterval(),
		c.Watch.Source,
		c.Watch.PauseOnExit,
		c.Journal.Enabled,
		c.Journal.Path,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Web.Enabled,
		c.Web.Host,
		c.Web.Port,
	)
}
