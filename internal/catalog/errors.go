package catalog

import (
	"fmt"

	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/pkg/failure"
)

type CatalogErrorCause string

const (
	ErrCauseOpenFailure   CatalogErrorCause = "open failure"
	ErrCauseSchemaFailure CatalogErrorCause = "schema failure"
	ErrCauseWriteFailure  CatalogErrorCause = "write failure"
	ErrCauseReadFailure   CatalogErrorCause = "read failure"
	ErrCauseEncodeFailure CatalogErrorCause = "encode failure"
	ErrCauseNotFound      CatalogErrorCause = "not found"
)

type CatalogError struct {
	Message   string
	Retryable bool
	Cause     CatalogErrorCause
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog error: %s: %s", e.Cause, e.Message)
}

// Severity: a catalog that cannot be opened stops the crawl; a failed
// upsert only loses the index entry, the sidecar is still on disk.
func (e *CatalogError) Severity() failure.Severity {
	switch e.Cause {
	case ErrCauseOpenFailure, ErrCauseSchemaFailure:
		return failure.SeverityFatal
	default:
		return failure.SeverityRecoverable
	}
}

func (e *CatalogError) IsRetryable() bool {
	return e.Retryable
}

func MapCatalogErrorToMetadataCause(err *CatalogError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseOpenFailure, ErrCauseSchemaFailure, ErrCauseWriteFailure:
		return metadata.CauseStorageFailure
	case ErrCauseEncodeFailure:
		return metadata.CauseInvariantViolation
	case ErrCauseNotFound:
		return metadata.CauseNotFound
	default:
		return metadata.CauseUnknown
	}
}
