package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseInvalidRequest        FetchErrorCause = "invalid request"
	ErrCauseNetworkFailure        FetchErrorCause = "network issues"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
	ErrCauseDecodeFailure         FetchErrorCause = "failed to decode response body"
	ErrCauseBodyTooLarge          FetchErrorCause = "response body too large"
	ErrCauseRedirectLimitExceeded FetchErrorCause = "reached redirect limit"
	ErrCauseNotFound              FetchErrorCause = "not found"
	ErrCauseRequestPageForbidden  FetchErrorCause = "forbidden"
	ErrCauseRequestTooMany        FetchErrorCause = "too many requests"
	ErrCauseRequest4xx            FetchErrorCause = "4xx"
	ErrCauseRequest5xx            FetchErrorCause = "5xx"
	ErrCauseWriteFailure          FetchErrorCause = "failed to write download"
)

// FetchError is either Transient (Retryable) or Permanent.
// Only transient failures are retried by callers.
type FetchError struct {
	Message    string
	Retryable  bool
	Cause      FetchErrorCause
	StatusCode int
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetcher error: %s (%d): %s", e.Cause, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fetcher error: %s: %s", e.Cause, e.Message)
}

// Severity is fatal only for local write failures; a remote failure never
// stops the run on its own.
func (e *FetchError) Severity() failure.Severity {
	if e.Cause == ErrCauseWriteFailure {
		return failure.SeverityFatal
	}
	return failure.SeverityRecoverable
}

// IsRetryable returns whether this error is retryable
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// IsNotFound reports a not-found class response (404, 410).
func (e *FetchError) IsNotFound() bool {
	return e.Cause == ErrCauseNotFound
}

// MapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func MapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNetworkFailure, ErrCauseRequest5xx, ErrCauseReadResponseBodyError:
		return metadata.CauseNetworkFailure
	case ErrCauseRequestTooMany, ErrCauseRequestPageForbidden:
		return metadata.CausePolicyDisallow
	case ErrCauseNotFound:
		return metadata.CauseNotFound
	case ErrCauseDecodeFailure, ErrCauseBodyTooLarge:
		return metadata.CauseContentInvalid
	case ErrCauseWriteFailure:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
