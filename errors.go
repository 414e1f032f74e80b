package libee

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrEncode           = errors.New("value cannot be encoded into the shared representation")
	ErrDecode           = errors.New("representation cannot be decoded into the listener type")
	ErrConnectionClosed = errors.New("connection has been closed")
	ErrCannotConnect    = errors.New("connection cannot be established")
	ErrTerminated       = errors.New("program exit")
	ErrRateLimit        = errors.New("rate limit exceeded")
)

// ListenerError is the failure of one listener during one emission,
// carrying the listener's id and event name alongside the cause.
type ListenerError struct {
	ID    string
	Event string
	cause error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %s on %q: %s", e.ID, e.Event, e.cause)
}

func (e *ListenerError) Unwrap() error { return e.cause }

// DispatchError aggregates the listener failures of a single emission.
// Emit returns one only after every listener has had its turn; a
// failing listener never blocks the rest of the fan-out.
type DispatchError struct {
	Event    string
	Failures []*ListenerError
}

func (e *DispatchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d listener(s) for %q failed: ", len(e.Failures), e.Event)
	for i, f := range e.Failures {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(f.Error())
	}
	return sb.String()
}

func (e *DispatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
