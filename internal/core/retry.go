// AngelaMos | 2026
// retry.go

package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryPolicy is a bounded retry with linear backoff: the wait before
// attempt n (1-based, n > 1) is Backoff * (n-1).
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func Retry(
	ctx context.Context,
	policy RetryPolicy,
	fn func(ctx context.Context) error,
) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := policy.Backoff * time.Duration(attempt-1)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry aborted after %d attempts: %w (last: %w)",
					attempt-1, ctx.Err(), lastErr)
			case <-timer.C:
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		lastErr = err
	}

	return lastErr
}
