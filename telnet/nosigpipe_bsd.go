//go:build darwin || freebsd || dragonfly

package telnet

import "golang.org/x/sys/unix"

// setNoSigpipe suppresses SIGPIPE delivery at the socket level, so a
// write racing a peer close surfaces as EPIPE instead of a signal.
func setNoSigpipe(fd int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NOSIGPIPE, 1)
}
