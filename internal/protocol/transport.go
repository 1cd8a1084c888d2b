package protocol

import (
	"context"
)

// Transport delivers one serialized request to the privileged context
// and returns its serialized response. Calls block until the reply
// arrives; there is no timeout beyond what the context carries.
type Transport interface {
	RoundTrip(ctx context.Context, req []byte) ([]byte, error)
}

// Local is an in-process transport that hands requests directly to a
// dispatcher. The UI pages use it when both contexts share a process;
// tests use it to exercise the full request path.
type Local struct {
	dispatcher *Dispatcher
}

// NewLocal creates a Local transport over the given dispatcher.
func NewLocal(d *Dispatcher) *Local {
	return &Local{dispatcher: d}
}

// RoundTrip dispatches the request synchronously.
func (l *Local) RoundTrip(ctx context.Context, req []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.dispatcher.Dispatch(ctx, req), nil
}
