package store_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rohmanhakim/legaldata/internal/metadata"
)

type errorEvent struct {
	action string
	cause  metadata.ErrorCause
}

type retryEvent struct {
	attempt int
	delay   time.Duration
}

type fetchEvent struct {
	url             string
	status          int
	retryCount      int
	loadedFromCache bool
}

// metadataSinkMock is a test double for metadata.MetadataSink
type metadataSinkMock struct {
	errors    []errorEvent
	warnings  []string
	retries   []retryEvent
	fetches   []fetchEvent
	artifacts []metadata.ArtifactKind
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.errors = append(m.errors, errorEvent{action: action, cause: cause})
}

func (m *metadataSinkMock) RecordWarning(
	observedAt time.Time,
	packageName string,
	action string,
	details string,
	attrs []metadata.Attribute,
) {
	m.warnings = append(m.warnings, details)
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
	m.retries = append(m.retries, retryEvent{attempt: attempt, delay: delay})
}

func (m *metadataSinkMock) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	loadedFromCache bool,
) {
	m.fetches = append(m.fetches, fetchEvent{
		url:             fetchUrl,
		status:          httpStatus,
		retryCount:      retryCount,
		loadedFromCache: loadedFromCache,
	})
}

func (m *metadataSinkMock) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.artifacts = append(m.artifacts, kind)
}

func (m *metadataSinkMock) errorCauses() []metadata.ErrorCause {
	causes := make([]metadata.ErrorCause, len(m.errors))
	for i, e := range m.errors {
		causes[i] = e.cause
	}
	return causes
}

// countingServer wraps handler and counts every request it receives.
func countingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var count atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, &count
}
