// internal/robot/errors.go
package robot

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrNotConnected is returned when a command is sent without a live link.
var ErrNotConnected = errors.New("robot not connected")

// ConnectErrorKind classifies connection failures
type ConnectErrorKind string

const (
	ConnectTimeout     ConnectErrorKind = "timeout"
	ConnectRefused     ConnectErrorKind = "refused"
	ConnectUnreachable ConnectErrorKind = "unreachable"
	ConnectOther       ConnectErrorKind = "other"
)

// ConnectError represents a failure to establish the robot link
type ConnectError struct {
	Kind ConnectErrorKind
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// SendError represents a transport failure while sending a command
type SendError struct {
	Command byte
	Err     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send command %q: %v", e.Command, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// classifyDialError maps a dial error onto a ConnectErrorKind
func classifyDialError(addr string, err error) *ConnectError {
	kind := ConnectOther

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = ConnectTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = ConnectTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		kind = ConnectRefused
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		kind = ConnectUnreachable
	}

	return &ConnectError{Kind: kind, Addr: addr, Err: err}
}
