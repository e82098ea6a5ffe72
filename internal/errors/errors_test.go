package errors

import (
	"fmt"
	"testing"

	"golang.org/x/sys/unix"
)

func TestNetworkErrorFormat(t *testing.T) {
	e := Wrap("bind", "127.0.0.1:2323", unix.EADDRINUSE)
	want := "bind 127.0.0.1:2323: address already in use"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}

	noAddr := Wrap("epoll_create", "", unix.EMFILE)
	if got := noAddr.Error(); got != "epoll_create: too many open files" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapPreservesErrno(t *testing.T) {
	err := Wrap("bind", "127.0.0.1:2323", unix.EADDRINUSE)
	if !Is(err, unix.EADDRINUSE) {
		t.Error("wrapped errno not matched by Is")
	}
	var ne *NetworkError
	if !As(fmt.Errorf("init: %w", err), &ne) {
		t.Error("NetworkError not matched by As through wrapping")
	}
}

func TestTransientClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eagain", unix.EAGAIN, true},
		{"ewouldblock", unix.EWOULDBLOCK, true},
		{"eintr", unix.EINTR, true},
		{"econnreset", unix.ECONNRESET, false},
		{"plain", New("boom"), false},
		{"wrapped eagain", Wrap("read", "", unix.EAGAIN), true},
		{"wrapped reset", Wrap("read", "", unix.ECONNRESET), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestConfigErrorFormat(t *testing.T) {
	e := &ConfigError{Field: "port", Value: 70000, Message: "out of range 1-65535"}
	want := "config: --port=70000: out of range 1-65535"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}

	missing := &ConfigError{Field: "listen", Message: "required"}
	if got := missing.Error(); got != "config: --listen: required" {
		t.Errorf("Error() = %q", got)
	}
}
