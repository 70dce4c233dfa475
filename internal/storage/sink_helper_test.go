package storage_test

import (
	"time"

	"github.com/rohmanhakim/legaldata/internal/metadata"
)

type recordedError struct {
	packageName string
	action      string
	cause       metadata.ErrorCause
	attrs       []metadata.Attribute
}

type recordedWarning struct {
	action  string
	details string
	attrs   []metadata.Attribute
}

type recordedArtifact struct {
	kind metadata.ArtifactKind
	path string
}

// metadataSinkMock is a mock for metadata.MetadataSink
type metadataSinkMock struct {
	errors    []recordedError
	warnings  []recordedWarning
	artifacts []recordedArtifact
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.errors = append(m.errors, recordedError{packageName, action, cause, attrs})
}

func (m *metadataSinkMock) RecordWarning(
	observedAt time.Time,
	packageName string,
	action string,
	details string,
	attrs []metadata.Attribute,
) {
	m.warnings = append(m.warnings, recordedWarning{action, details, attrs})
}

func (m *metadataSinkMock) RecordRetry(
	observedAt time.Time,
	packageName string,
	action string,
	attempt int,
	delay time.Duration,
	details string,
	attrs []metadata.Attribute,
) {
}

func (m *metadataSinkMock) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	loadedFromCache bool,
) {
}

func (m *metadataSinkMock) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.artifacts = append(m.artifacts, recordedArtifact{kind, path})
}

// findAttrValue finds an attribute value by key in a slice of attributes
func findAttrValue(attrs []metadata.Attribute, key metadata.AttributeKey) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}
