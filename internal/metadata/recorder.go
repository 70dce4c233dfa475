package metadata

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

/*
Metadata Collected
- Fetch timestamps and durations
- HTTP status codes
- Cache hits and misses
- Retry attempts and their backoff delays
- Content hashes of saved artifacts

Metadata is write-only.
No component may read metadata to influence crawl decisions.
*/

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	// RecordWarning covers conditions that are worth surfacing but are not
	// failures: unknown content types, extension mismatches, name collisions.
	RecordWarning(
		observedAt time.Time,
		packageName string,
		action string,
		details string,
		attrs []Attribute,
	)

	RecordRetry(
		observedAt time.Time,
		packageName string,
		action string,
		attempt int,
		delay time.Duration,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		retryCount int,
		loadedFromCache bool,
	)

	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

type CrawlFinalizer interface {
	RecordFinalCrawlStats(
		totalDocuments int,
		totalResources int,
		totalFailed int,
		totalErrors int,
		duration time.Duration,
	)
}

/*
Recorder captures structured crawl events and writes them through zerolog.
It must not:
- perform I/O decisions
- affect control flow
Events are written synchronously in the order they are received.
*/
type Recorder struct {
	runID  string
	logger zerolog.Logger
}

func NewRecorder(logger zerolog.Logger) Recorder {
	runID := uuid.NewString()
	return Recorder{
		runID:  runID,
		logger: logger.With().Str("run_id", runID).Logger(),
	}
}

func (r *Recorder) RunID() string {
	return r.runID
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	r.withAttrs(r.logger.Error(), attrs).
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Str("cause", cause.String()).
		Msg(errorString)
}

func (r *Recorder) RecordWarning(
	observedAt time.Time,
	packageName string,
	action string,
	details string,
	attrs []Attribute,
) {
	r.withAttrs(r.logger.Warn(), attrs).
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Msg(details)
}

func (r *Recorder) RecordRetry(
	observedAt time.Time,
	packageName string,
	action string,
	attempt int,
	delay time.Duration,
	details string,
	attrs []Attribute,
) {
	r.withAttrs(r.logger.Warn(), attrs).
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Int("attempt", attempt).
		Dur("delay", delay).
		Msg(details)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	loadedFromCache bool,
) {
	r.logger.Info().
		Str("url", fetchUrl).
		Int("http_status", httpStatus).
		Dur("duration", duration).
		Str("content_type", contentType).
		Int("retry_count", retryCount).
		Bool("loaded_from_cache", loadedFromCache).
		Msg("fetch")
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	r.withAttrs(r.logger.Debug(), attrs).
		Str("kind", string(kind)).
		Str("path", path).
		Msg("artifact")
}

/*
RecordFinalCrawlStats records a terminal, derived summary of a completed crawl.

Contract:
  - MUST be called exactly once per crawl execution.
  - MUST be called only after crawl termination.
  - The provided stats MUST be derived from crawler state,
    not accumulated incrementally via the recorder.
*/
func (r *Recorder) RecordFinalCrawlStats(
	totalDocuments int,
	totalResources int,
	totalFailed int,
	totalErrors int,
	duration time.Duration,
) {
	stats := crawlStats{
		totalDocuments: totalDocuments,
		totalResources: totalResources,
		totalFailed:    totalFailed,
		totalErrors:    totalErrors,
		durationMs:     duration.Milliseconds(),
	}

	r.append(stats)
}

func (r *Recorder) append(stats crawlStats) {
	r.logger.Info().
		Int("documents", stats.totalDocuments).
		Int("resources", stats.totalResources).
		Int("failed_resources", stats.totalFailed).
		Int("errors", stats.totalErrors).
		Int64("duration_ms", stats.durationMs).
		Msg("crawl finished")
}

func (r *Recorder) withAttrs(e *zerolog.Event, attrs []Attribute) *zerolog.Event {
	for _, attr := range attrs {
		e = e.Str(string(attr.Key), attr.Value)
	}
	return e
}

// NoopSink, struct that implements metadata.MetadataSink but does nothing
// Crawler (or Test) can decide whether to inject Recorder or NoopSink
// Purpose is to make metadata orthogonal

type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordWarning(
	observedAt time.Time,
	packageName string,
	action string,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordRetry(
	observedAt time.Time,
	packageName string,
	action string,
	attempt int,
	delay time.Duration,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	loadedFromCache bool,
) {
}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

func (n *NoopSink) RecordFinalCrawlStats(
	totalDocuments int,
	totalResources int,
	totalFailed int,
	totalErrors int,
	duration time.Duration,
) {
}
