package helpers

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errFlaky = errors.New("flaky")

func TestRetryOnceRetriesRetryableError(t *testing.T) {
	calls := 0
	err := RetryOnce(context.Background(), time.Second, func(err error) bool { return errors.Is(err, errFlaky) }, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errFlaky
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success on retry, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRetryOnceStopsAfterSecondFailure(t *testing.T) {
	calls := 0
	err := RetryOnce(context.Background(), time.Second, func(error) bool { return true }, func(ctx context.Context) error {
		calls++
		return errFlaky
	})
	if !errors.Is(err, errFlaky) || calls != 2 {
		t.Fatalf("expected two failed calls, got %d calls and %v", calls, err)
	}
}

func TestRetryOnceSkipsPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("bad request")
	err := RetryOnce(context.Background(), time.Second, func(err error) bool { return errors.Is(err, errFlaky) }, func(ctx context.Context) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Fatalf("expected a single call, got %d calls and %v", calls, err)
	}
}

func TestRetryOnceAppliesTimeout(t *testing.T) {
	err := RetryOnce(context.Background(), 10*time.Millisecond, func(error) bool { return false }, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
