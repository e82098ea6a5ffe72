//go:build !darwin && !freebsd && !dragonfly

package telnet

// setNoSigpipe is a no-op where SO_NOSIGPIPE does not exist; the Go
// runtime already ignores SIGPIPE for descriptors other than stdout
// and stderr.
func setNoSigpipe(fd int) error { return nil }
