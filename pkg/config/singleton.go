package config

import "sync/atomic"

// active is the process-wide configuration shared by the CLI commands and
// the hot-reload watcher.
var active atomic.Pointer[Config]

// Current returns the active configuration, or nil before SetConfig has
// run.
func Current() *Config {
	return active.Load()
}

// SetConfig installs cfg as the active configuration and returns the one it
// replaced.
func SetConfig(cfg *Config) *Config {
	return active.Swap(cfg)
}

// MustCurrent is Current for callers that run after command setup.
func MustCurrent() *Config {
	cfg := active.Load()
	if cfg == nil {
		panic("config: no active configuration")
	}
	return cfg
}
