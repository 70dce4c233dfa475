package retry

import (
	"fmt"

	"github.com/rohmanhakim/legaldata/pkg/failure"
)

type RetryErrorCause string

const (
	ErrZeroAttempt       RetryErrorCause = "zero attempt"
	ErrExhaustedAttempts RetryErrorCause = "exhausted attempt"
)

type RetryError struct {
	Message   string
	Retryable bool
	Cause     RetryErrorCause
	// Identity is what was being retried, usually a URL.
	Identity string
	// LastErr is the error returned by the final attempt.
	LastErr failure.ClassifiedError
}

func (e *RetryError) Error() string {
	if e.Identity != "" {
		return fmt.Sprintf("retry error: %s, %s: %s", e.Cause, e.Identity, e.Message)
	}
	return fmt.Sprintf("retry error: %s, %s", e.Cause, e.Message)
}

func (e *RetryError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *RetryError) IsRetryable() bool {
	return e.Retryable
}

func (e *RetryError) Unwrap() error {
	if e.LastErr == nil {
		return nil
	}
	return e.LastErr
}

// Is allows errors.Is to match RetryError types
func (e *RetryError) Is(target error) bool {
	_, ok := target.(*RetryError)
	return ok
}
