package config

import "time"

// Defaults suit a local admin port: small session buffers and a
// 42 second linger window.
const (
	DefaultPort          = 2323
	DefaultBacklog       = 1
	DefaultBufSize       = 1024
	DefaultLingerTimeout = 42 * time.Second
)

// Default returns the baseline configuration before env and flag
// overrides.
func Default() Config {
	return Config{
		ListenAddr:    "127.0.0.1",
		Port:          DefaultPort,
		Backlog:       DefaultBacklog,
		BufSize:       DefaultBufSize,
		LingerTimeout: DefaultLingerTimeout,
	}
}
