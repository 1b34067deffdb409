package helpers

import (
	"context"
	"time"
)

// RetryOnce runs fn under a per-attempt timeout and runs it a second time when
// retryable reports true for the first error. A zero timeout means no deadline.
func RetryOnce(ctx context.Context, timeout time.Duration, retryable func(error) bool, fn func(ctx context.Context) error) error {
	err := attempt(ctx, timeout, fn)
	if err == nil || ctx.Err() != nil || !retryable(err) {
		return err
	}
	return attempt(ctx, timeout, fn)
}

func attempt(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}
