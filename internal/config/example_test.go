package config_test

import (
	"fmt"

	"idlerig/internal/config"
)

// Example of creating a default configuration
func ExampleDefault() {
	cfg := config.Default()
	fmt.Println("Idle Threshold:", cfg.IdleThreshold())
	fmt.Println("Poll Interval:", cfg.PollInterval())
	fmt.Println("Source:", cfg.Watch.Source)
	// Output:
	// Idle Threshold: 5m0s
	// Poll Interval: 250ms
	// Source: auto
}

// Example of validating configuration
func ExampleConfig_Validate() {
	cfg := config.Default()

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	}

	cfg.RPC.URL = "http://127.0.0.1:8080"
	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	} else {
		fmt.Println("Configuration is valid")
	}

	// Output:
	// Invalid config: invalid configuration: rpc.url: is required
	// Configuration is valid
}
