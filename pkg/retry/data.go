package retry

import (
	"context"
	"time"

	"github.com/rohmanhakim/legaldata/pkg/failure"
)

// RetryParam holds the parameters for retry logic.
// These parameters are passed from outside (e.g., config) and should not
// be known by the retry handler internally.
type RetryParam struct {
	// BaseDelay is multiplied by the attempt number to get the wait before the next attempt.
	BaseDelay   time.Duration
	MaxAttempts int
	// Identity names what is being retried (usually a URL) in the exhausted error.
	Identity string
	// OnRetry observes every failed attempt. Optional.
	OnRetry func(attempt int, delay time.Duration, err failure.ClassifiedError)

	ctx   context.Context
	sleep func(time.Duration)
}

// NewRetryParam creates a new RetryParam with the given settings.
func NewRetryParam(
	baseDelay time.Duration,
	maxAttempts int,
) RetryParam {
	return RetryParam{
		BaseDelay:   baseDelay,
		MaxAttempts: maxAttempts,
	}
}

// WithIdentity returns a copy of p that reports identity on exhaustion.
func (p RetryParam) WithIdentity(identity string) RetryParam {
	p.Identity = identity
	return p
}

// WithObserver returns a copy of p that calls fn after every failed attempt.
func (p RetryParam) WithObserver(fn func(attempt int, delay time.Duration, err failure.ClassifiedError)) RetryParam {
	p.OnRetry = fn
	return p
}

// WithContext returns a copy of p whose waits end early when ctx is done.
// No further attempt is made once ctx is done.
func (p RetryParam) WithContext(ctx context.Context) RetryParam {
	p.ctx = ctx
	return p
}

// WithSleep returns a copy of p that waits with fn instead of time.Sleep.
func (p RetryParam) WithSleep(fn func(time.Duration)) RetryParam {
	p.sleep = fn
	return p
}

// Result is the outcome of Retry.
type Result[T any] struct {
	value    T
	err      failure.ClassifiedError
	attempts int
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() failure.ClassifiedError {
	return r.err
}

// Attempts is the number of times the operation was invoked.
func (r Result[T]) Attempts() int {
	return r.attempts
}

func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

func (r Result[T]) IsFailure() bool {
	return r.err != nil
}
