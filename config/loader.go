package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the TELNETD_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("TELNETD_LISTEN"); v != "" {
		cfg.ListenAddr = v
	}
	if v := envInt("TELNETD_PORT"); v > 0 {
		cfg.Port = v
	}
	if envBool("TELNETD_IPV6") {
		cfg.IPv6 = true
	}
	if v := envInt("TELNETD_BACKLOG"); v > 0 {
		cfg.Backlog = v
	}
	if v := envInt("TELNETD_BUF_SIZE"); v > 0 {
		cfg.BufSize = v
	}
	if v := envInt("TELNETD_LINGER"); v > 0 {
		cfg.LingerTimeout = secondsDuration(v)
	}
	if v := envInt("TELNETD_STATS"); v > 0 {
		cfg.StatsInterval = secondsDuration(v)
	}
	if v := envInt("TELNETD_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
