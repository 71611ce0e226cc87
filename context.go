package goAset

import (
	"context"

	"github.com/google/uuid"
	"github.com/mansetdig/goAset/backend"
)

// WithRequestID attaches a correlation id to ctx. Every backend request and
// session event produced under ctx carries it. Operations started without
// one get a fresh UUID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return backend.WithRequestID(ctx, id)
}

// RequestID returns the correlation id attached to ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := backend.RequestIDFrom(ctx)
	return id
}

func ensureRequestID(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := backend.RequestIDFrom(ctx); ok {
		return ctx
	}
	return backend.WithRequestID(ctx, uuid.NewString())
}
