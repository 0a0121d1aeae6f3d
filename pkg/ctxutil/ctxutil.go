package ctxutil

import (
	"context"
	"time"
)

type cancelKey struct{}

// TimeoutContext provides a cancelable context. For a positive
// duration it is canceled when the duration expires.
func TimeoutContext(ctx context.Context, duration time.Duration) context.Context {
	if duration <= 0 {
		return cancelContext(context.WithCancel(ctx))
	}
	return cancelContext(context.WithTimeout(ctx, duration))
}

func cancelContext(ctx context.Context, cancel context.CancelFunc) context.Context {
	return context.WithValue(ctx, cancelKey{}, cancel)
}

// Cancel cancels a context created by TimeoutContext.
// Other contexts are ignored.
func Cancel(ctx context.Context) {
	if cancel, ok := ctx.Value(cancelKey{}).(context.CancelFunc); ok {
		cancel()
	}
}
