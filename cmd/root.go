// Package cmd wires up the CLI flags and dispatches to the telnet core.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"telnetd/config"
	errs "telnetd/internal/errors"
	"telnetd/internal/metrics"
	"telnetd/internal/reactor"
	"telnetd/internal/retry"
	"telnetd/telnet"
	"telnetd/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X telnetd/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the server until ctx is cancelled.
func Execute(ctx context.Context, args []string) error {
	cfg := config.Default()
	config.LoadFromEnv(&cfg)

	fs := flag.NewFlagSet("telnetd", flag.ContinueOnError)

	// ── listener ─────────────────────────────────────────────────
	fs.StringVarP(&cfg.ListenAddr, "listen", "l", cfg.ListenAddr, "Address to bind (empty = all interfaces)")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "Port to listen on")
	fs.BoolVarP(&cfg.IPv6, "ipv6", "6", cfg.IPv6, "Bind an IPv6 socket")
	fs.IntVar(&cfg.Backlog, "backlog", cfg.Backlog, "Listen backlog")

	// ── sessions ─────────────────────────────────────────────────
	fs.IntVar(&cfg.BufSize, "buf-size", cfg.BufSize, "Per-connection buffer size in bytes")
	lingerSec := int(cfg.LingerTimeout / time.Second)
	fs.IntVar(&lingerSec, "linger", lingerSec, "Seconds to wait after half-close before forcing teardown")

	// ── output ───────────────────────────────────────────────────
	statsSec := int(cfg.StatsInterval / time.Second)
	fs.IntVar(&statsSec, "stats", statsSec, "Stats logging interval in seconds (0 = off)")
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}
	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("telnetd %s\n", version)
		return nil
	}

	cfg.LingerTimeout = time.Duration(lingerSec) * time.Second
	cfg.StatsInterval = time.Duration(statsSec) * time.Second

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	if cfg.Verbose >= 2 && term.IsTerminal(int(os.Stderr.Fd())) {
		logger.SetTimestamps(true)
	}

	loop, err := reactor.NewLoop(logger)
	if err != nil {
		return err
	}
	defer loop.Close()

	collector := metrics.New()
	srv := telnet.NewServer(loop, loop, logger, collector)
	srv.SetHandler(adminRegistry(collector).Dispatch)

	if err := srv.Prepare(cfg); err != nil {
		return err
	}

	// A port still in TIME_WAIT right after a restart clears within
	// seconds; retry transient bind failures instead of giving up.
	backoff := retry.DefaultBackoff()
	err = backoff.Do(ctx, func(attempt int) error {
		err := srv.Init()
		if err == nil {
			return nil
		}
		if errs.Is(err, unix.EADDRINUSE) {
			logger.Warn("bind attempt %d: %v", attempt, err)
			return err
		}
		return retry.Permanent(err)
	})
	if err != nil {
		return err
	}
	defer srv.Exit()

	if cfg.StatsInterval > 0 {
		loop.EveryFunc(cfg.StatsInterval, cfg.StatsInterval, func() {
			logger.Info("%s", collector.Snapshot())
		})
	}

	return loop.Run(ctx)
}

// ── command table ────────────────────────────────────────────────────

// adminRegistry builds the command table served to clients.  The core
// only knows the Handler contract; everything here is plain dispatcher
// business logic.
func adminRegistry(collector *metrics.Collector) *telnet.Registry {
	reg := telnet.NewRegistry()
	reg.Register(telnet.Command{
		Name: "echo",
		Help: "echo the arguments back",
		Run: func(c *telnet.Conn, args string) {
			c.Printf("%s\n", args)
		},
	})
	reg.Register(telnet.Command{
		Name: "version",
		Help: "print the server version",
		Run: func(c *telnet.Conn, _ string) {
			c.Printf("telnetd %s\n", version)
		},
	})
	reg.Register(telnet.Command{
		Name: "stats",
		Help: "print session statistics",
		Run: func(c *telnet.Conn, _ string) {
			c.Printf("%s\n", collector.Snapshot())
		},
	})
	quit := func(c *telnet.Conn, _ string) {
		c.Printf("bye\n")
		c.Quit(false)
	}
	reg.Register(telnet.Command{Name: "quit", Help: "close the session", Run: quit})
	reg.Register(telnet.Command{Name: "exit", Help: "close the session", Run: quit})
	return reg
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `telnetd - line-protocol admin server v%s

A single-threaded, non-blocking TCP server speaking a newline-delimited
text protocol, intended for low-concurrency administrative access.

Usage:
  telnetd [options]

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  telnetd                         Listen on 127.0.0.1:2323
  telnetd -l 0.0.0.0 -p 4242      Listen on all interfaces, port 4242
  telnetd -6 -l ::1 -vv           IPv6 loopback, verbose
  TELNETD_PORT=2525 telnetd       Configure via environment
`)
}
