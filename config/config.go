// Package config defines the runtime configuration for telnetd.
package config

import (
	"net"
	"time"

	errs "telnetd/internal/errors"
)

// Config holds every tuneable for a telnetd instance.
type Config struct {
	// ── Listener ─────────────────────────────────────────────────────
	ListenAddr string // IP to bind; empty = all interfaces
	Port       int
	IPv6       bool
	Backlog    int // listen(2) backlog; tiny, this is an admin port

	// ── Sessions ─────────────────────────────────────────────────────
	BufSize       int           // initial per-connection buffer size in bytes
	LingerTimeout time.Duration // wait after half-close before forced teardown

	// ── Output ───────────────────────────────────────────────────────
	Verbose       int
	StatsInterval time.Duration // 0 disables periodic stats logging
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &errs.ConfigError{Field: "port", Value: c.Port, Message: "out of range 1-65535"}
	}
	if c.ListenAddr != "" {
		ip := net.ParseIP(c.ListenAddr)
		if ip == nil {
			return &errs.ConfigError{Field: "listen", Value: c.ListenAddr, Message: "not a valid IP address"}
		}
		if !c.IPv6 && ip.To4() == nil {
			return &errs.ConfigError{Field: "listen", Value: c.ListenAddr, Message: "IPv6 address needs --ipv6"}
		}
		if c.IPv6 && ip.To4() != nil {
			return &errs.ConfigError{Field: "listen", Value: c.ListenAddr, Message: "IPv4 address conflicts with --ipv6"}
		}
	}
	if c.Backlog < 1 {
		return &errs.ConfigError{Field: "backlog", Value: c.Backlog, Message: "must be at least 1"}
	}
	if c.BufSize < 1 {
		return &errs.ConfigError{Field: "buf-size", Value: c.BufSize, Message: "must be positive"}
	}
	if c.LingerTimeout <= 0 {
		return &errs.ConfigError{Field: "linger", Value: c.LingerTimeout, Message: "must be positive"}
	}
	if c.StatsInterval < 0 {
		return &errs.ConfigError{Field: "stats", Value: c.StatsInterval, Message: "must not be negative"}
	}
	return nil
}
