package config

import (
	"fmt"
	"os"
	"strconv"
)

// LoadFromEnv loads configuration from environment variables.
// Environment variables override file and default values. Malformed numbers
// are reported rather than ignored; range checks are left to Validate.
func LoadFromEnv(cfg *Config) error {
	// RPC configuration
	if u := os.Getenv("IDLERIG_URL"); u != "" {
		cfg.RPC.URL = u
	}

	if token := os.Getenv("IDLERIG_TOKEN"); token != "" {
		cfg.RPC.Token = token
	}

	// Watch configuration
	if err := envInt64("IDLERIG_THRESHOLD_MS", "watch.idle_threshold_ms", &cfg.Watch.IdleThresholdMs); err != nil {
		return err
	}

	if err := envInt64("IDLERIG_INTERVAL_MS", "watch.poll_interval_ms", &cfg.Watch.PollIntervalMs); err != nil {
		return err
	}

	if source := os.Getenv("IDLERIG_SOURCE"); source != "" {
		cfg.Watch.Source = source
	}

	// Journal configuration
	if path := os.Getenv("IDLERIG_JOURNAL_PATH"); path != "" {
		cfg.Journal.Path = path
	}

	// Daemon configuration
	if pidFile := os.Getenv("IDLERIG_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	// Web configuration
	if webHost := os.Getenv("IDLERIG_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("IDLERIG_WEB_PORT"); webPort != "" {
		port, err := strconv.Atoi(webPort)
		if err != nil {
			return &Error{Field: "web.port", Reason: fmt.Sprintf("IDLERIG_WEB_PORT=%q is not a number", webPort)}
		}
		cfg.Web.Port = port
	}

	// Log configuration
	if level := os.Getenv("IDLERIG_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return nil
}

func envInt64(name, field string, dst *int64) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return &Error{Field: field, Reason: fmt.Sprintf("%s=%q is not a number", name, raw)}
	}
	*dst = v
	return nil
}
