package mdconvert

import (
	"fmt"

	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/pkg/failure"
)

type ConversionErrorCause string

const (
	ErrCauseNilNode           ConversionErrorCause = "nil node"
	ErrCauseConversionFailure ConversionErrorCause = "conversion failed"
)

type ConversionError struct {
	Message   string
	Retryable bool
	Cause     ConversionErrorCause
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion error: %s: %s", e.Cause, e.Message)
}

// Severity is always recoverable: a block that cannot be rendered only
// degrades the record.
func (e *ConversionError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func mapConversionErrorToMetadataCause(err *ConversionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNilNode, ErrCauseConversionFailure:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
