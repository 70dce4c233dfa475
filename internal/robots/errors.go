package robots

import (
	"fmt"

	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/pkg/failure"
)

type RobotsErrorCause string

const (
	ErrCauseInvalidURL   RobotsErrorCause = "invalid url"
	ErrCauseFetchFailure RobotsErrorCause = "robots.txt fetch failure"
)

type RobotsError struct {
	Message   string
	Retryable bool
	Cause     RobotsErrorCause
}

func (e *RobotsError) Error() string {
	return fmt.Sprintf("robots error: %s: %s", e.Cause, e.Message)
}

func (e *RobotsError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func (e *RobotsError) IsRetryable() bool {
	return e.Retryable
}

// mapRobotsErrorToMetadataCause maps robots-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapRobotsErrorToMetadataCause(err *RobotsError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseFetchFailure:
		return metadata.CauseNetworkFailure
	case ErrCauseInvalidURL:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
