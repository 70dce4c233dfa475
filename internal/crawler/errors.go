package crawler

import (
	"fmt"

	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/pkg/failure"
)

type CrawlErrorCause string

const (
	ErrCauseCancelled    CrawlErrorCause = "crawl cancelled"
	ErrCauseMissingIndex CrawlErrorCause = "missing index"
)

type CrawlError struct {
	Message string
	Cause   CrawlErrorCause
	Err     error
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl error: %s: %s", e.Cause, e.Message)
}

func (e *CrawlError) Unwrap() error {
	return e.Err
}

// Severity: cancellation stops the run; a missing index only skips it.
func (e *CrawlError) Severity() failure.Severity {
	if e.Cause == ErrCauseCancelled {
		return failure.SeverityFatal
	}
	return failure.SeverityRecoverable
}

func mapCrawlErrorToMetadataCause(err *CrawlError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseMissingIndex:
		return metadata.CauseNotFound
	case ErrCauseCancelled:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
