package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rohmanhakim/legaldata/pkg/failure"
	"github.com/rohmanhakim/legaldata/pkg/timeutil"
)

// Retry executes the provided function with retry logic.
// It will retry the function up to MaxAttempts times, waiting attempt*BaseDelay
// between attempts. Only transient errors trigger a retry; a permanent error
// is returned as soon as it is seen.
//
// Type parameter T represents the return type of the function being retried.
func Retry[T any](retryParam RetryParam, fn func() (T, failure.ClassifiedError)) Result[T] {
	if retryParam.MaxAttempts < 1 {
		return Result[T]{
			err: &RetryError{
				Message:   "max attempt cannot be 0",
				Cause:     ErrZeroAttempt,
				Retryable: false,
				Identity:  retryParam.Identity,
			},
		}
	}

	ctx := retryParam.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	sleep := retryParam.sleep
	if sleep == nil {
		sleep = contextSleep(ctx)
	}

	var lastErr failure.ClassifiedError
	for attempt := 1; attempt <= retryParam.MaxAttempts; attempt++ {
		value, err := fn()
		if err == nil {
			return Result[T]{value: value, attempts: attempt}
		}
		lastErr = err

		if !isErrorRetryable(err) {
			return Result[T]{err: err, attempts: attempt}
		}

		delay := timeutil.LinearBackoffDelay(attempt, retryParam.BaseDelay)
		if attempt == retryParam.MaxAttempts {
			delay = 0
		}
		if retryParam.OnRetry != nil {
			retryParam.OnRetry(attempt, delay, err)
		}
		if delay > 0 {
			sleep(delay)
		}
		if ctx.Err() != nil {
			return Result[T]{err: lastErr, attempts: attempt}
		}
	}

	return Result[T]{
		err: &RetryError{
			Message:   fmt.Sprintf("exhausted %d attempts. Last error: %v", retryParam.MaxAttempts, lastErr),
			Cause:     ErrExhaustedAttempts,
			Retryable: true, // recoverable at crawler level
			Identity:  retryParam.Identity,
			LastErr:   lastErr,
		},
		attempts: retryParam.MaxAttempts,
	}
}

// isErrorRetryable checks if an error should be retried.
// Errors that do not declare retryability are treated as permanent.
func isErrorRetryable(err failure.ClassifiedError) bool {
	if r, ok := err.(failure.Retryable); ok {
		return r.IsRetryable()
	}
	return false
}

// contextSleep waits for d or until ctx is done, whichever comes first.
func contextSleep(ctx context.Context) func(time.Duration) {
	return func(d time.Duration) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
}
