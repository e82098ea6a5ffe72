package telnet

import (
	"sort"
	"strings"
)

// Handler processes one framed command line.  Handlers interact with
// the core only through the connection's output queue (Printf, Write)
// and close requests (Quit); the I/O driver re-checks for queued
// output after every dispatch.
type Handler func(c *Conn, line string)

// Echo is the default handler: repeat the line and close gracefully.
func Echo(c *Conn, line string) {
	c.Printf("%s\n", line)
	c.Quit(false)
}

// ── Command registry ─────────────────────────────────────────────────

// Command is one named entry in a Registry.
type Command struct {
	Name string
	Help string
	Run  func(c *Conn, args string)
}

// Registry dispatches lines of the form "name [args...]" to named
// commands.  Its Dispatch method satisfies [Handler].
type Registry struct {
	commands map[string]Command
}

// NewRegistry returns a Registry preloaded with a help command.
func NewRegistry() *Registry {
	r := &Registry{commands: make(map[string]Command)}
	r.Register(Command{
		Name: "help",
		Help: "list available commands",
		Run:  r.runHelp,
	})
	return r
}

// Register adds or replaces a command.  Names are matched
// case-insensitively.
func (r *Registry) Register(cmd Command) {
	r.commands[strings.ToLower(cmd.Name)] = cmd
}

// Dispatch parses the first word as the command name and runs it.
// Empty lines are ignored; unknown names get an error reply.
func (r *Registry) Dispatch(c *Conn, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	name, args, _ := strings.Cut(line, " ")
	cmd, ok := r.commands[strings.ToLower(name)]
	if !ok {
		c.Printf("unknown command %q (try help)\n", name)
		return
	}
	cmd.Run(c, strings.TrimSpace(args))
}

func (r *Registry) runHelp(c *Conn, _ string) {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.Printf("%-10s %s\n", name, r.commands[name].Help)
	}
}
