// Package config provides loading and environment overlay for pollbus
// configuration. Default() carries the built-in timings; Load reads an
// optional JSON, YAML or TOML file and overlays POLLBUS_* environment
// variables.
//
// Example:
//
//	cfg, err := config.Load("/etc/pollbus/pollbus.yaml")
//	if err != nil {
//	    return err
//	}
//	// POLLBUS_BROKER_POLL_TIMEOUT=5s shortens long-polls
//	rt, _ := runtime.Open(runtime.Options{Config: cfg, Logger: logger})
//	defer rt.Close()
package config
