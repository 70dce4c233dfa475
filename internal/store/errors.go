package store

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/pkg/failure"
)

type StoreErrorCause string

const (
	// ErrCausePageNotFound: the origin answered 404/410 for a page. Callers
	// skip the page and continue.
	ErrCausePageNotFound StoreErrorCause = "page not found"
	// ErrCauseMalformedCache: a cache artifact exists but cannot be read or
	// decoded. Not repaired automatically.
	ErrCauseMalformedCache StoreErrorCause = "malformed cache"
	// ErrCauseTransferExhausted: every retry attempt of a resource failed.
	ErrCauseTransferExhausted StoreErrorCause = "transfer exhausted"
	// ErrCauseParseFailure: a freshly fetched page could not be parsed.
	ErrCauseParseFailure StoreErrorCause = "parse failure"
	// ErrCauseStorage: the cache directory could not be written.
	ErrCauseStorage StoreErrorCause = "cache storage failure"
)

type StoreError struct {
	Message   string
	Retryable bool
	Cause     StoreErrorCause
	URL       string
	Path      string
}

func (e *StoreError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("store error: %s, %s: %s", e.Cause, e.URL, e.Message)
	}
	return fmt.Sprintf("store error: %s: %s", e.Cause, e.Message)
}

// Severity is fatal for cache corruption and local I/O failures; every
// remote failure is recoverable per item.
func (e *StoreError) Severity() failure.Severity {
	switch e.Cause {
	case ErrCauseMalformedCache, ErrCauseStorage:
		return failure.SeverityFatal
	default:
		return failure.SeverityRecoverable
	}
}

func (e *StoreError) IsRetryable() bool {
	return e.Retryable
}

// IsPageNotFound reports whether err is a PageNotFound store error.
func IsPageNotFound(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Cause == ErrCausePageNotFound
}

// mapStoreErrorToMetadataCause maps store-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapStoreErrorToMetadataCause(err *StoreError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCausePageNotFound:
		return metadata.CauseNotFound
	case ErrCauseMalformedCache, ErrCauseParseFailure:
		return metadata.CauseContentInvalid
	case ErrCauseTransferExhausted:
		return metadata.CauseRetryFailure
	case ErrCauseStorage:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
