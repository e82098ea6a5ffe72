//go:build !linux

package reactor

import (
	"context"
	"errors"
	"time"

	"telnetd/util"
)

// ErrUnsupported is returned on platforms without an epoll backend.
var ErrUnsupported = errors.New("reactor: event loop requires linux")

// Loop is a placeholder on non-linux platforms; NewLoop always fails.
type Loop struct{}

// NewLoop reports that no poller backend is available.
func NewLoop(log *util.Logger) (*Loop, error) { return nil, ErrUnsupported }

func (l *Loop) Register(fd int, cb Callback, interest Ready) error { return ErrUnsupported }

func (l *Loop) Enable(fd int, interest Ready) error { return ErrUnsupported }

func (l *Loop) Disable(fd int, interest Ready) error { return ErrUnsupported }

func (l *Loop) Unregister(fd int) error { return ErrUnsupported }

func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer { return nil }

func (l *Loop) EveryFunc(delay, interval time.Duration, fn func()) Timer { return nil }

func (l *Loop) Run(ctx context.Context) error { return ErrUnsupported }
func (l *Loop) Close() error                  { return nil }
