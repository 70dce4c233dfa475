package mdconvert_test

import (
	"time"

	"github.com/rohmanhakim/legaldata/internal/metadata"
)

// errorSinkMock captures recorded error causes and ignores everything else.
type errorSinkMock struct {
	metadata.NoopSink
	causes []metadata.ErrorCause
}

func (m *errorSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.causes = append(m.causes, cause)
}
