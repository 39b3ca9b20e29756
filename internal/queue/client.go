package queue

import (
	"context"
	"time"
)

// Client sends messages to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Receiver blocks up to wait for the next raw message body. ok is false when
// the wait elapsed with nothing queued.
type Receiver interface {
	Receive(ctx context.Context, wait time.Duration) (body string, ok bool, err error)
}

type requestIDKey struct{}

// WithRequestID carries the originating HTTP request id into queued messages.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFrom returns the request id stored by WithRequestID.
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
