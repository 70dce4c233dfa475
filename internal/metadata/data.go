package metadata

/*
crawlStats
  - Represents a terminal, derived summary of a completed crawl
  - Contains only aggregate counts and durations
  - Is computed by the crawler after the last index was processed
  - Is recorded exactly once
  - Must not influence retries or crawl termination
*/
type crawlStats struct {
	totalDocuments int
	totalResources int
	totalFailed    int
	totalErrors    int
	durationMs     int64
}

type ArtifactKind string

const (
	ArtifactPageCache     ArtifactKind = "page_cache"
	ArtifactResourceCache ArtifactKind = "resource_cache"
	ArtifactResource      ArtifactKind = "resource"
	ArtifactSidecar       ArtifactKind = "sidecar"
	ArtifactCatalog       ArtifactKind = "catalog"
)

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, reporting).

	Rules:
	 - It must never be used to derive retry, continuation, or abort decisions.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown
  - The failure does not map cleanly to any known category.

# CauseNetworkFailure
  - Transport failures, timeouts, 5xx responses.

# CausePolicyDisallow
  - robots.txt disallow, HTTP 403 / 429.

# CauseContentInvalid
  - Content was fetched but could not be processed (unparsable HTML, corrupt cache bundle).

# CauseStorageFailure
  - Disk full, permission errors, failed renames.

# CauseInvariantViolation
  - An internal consistency check failed.

# CauseNotFound
  - The origin answered with a not-found class status (404, 410).

# CauseRetryFailure
  - Every retry attempt failed.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
	CauseInvariantViolation
	CauseNotFound
	CauseRetryFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	case CauseNotFound:
		return "not_found"
	case CauseRetryFailure:
		return "retry_failure"
	default:
		return "unknown"
	}
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL         AttributeKey = "url"
	AttrIndexURL    AttributeKey = "index_url"
	AttrFinalURL    AttributeKey = "final_url"
	AttrPath        AttributeKey = "path"
	AttrCachePath   AttributeKey = "cache_path"
	AttrWritePath   AttributeKey = "write_path"
	AttrField       AttributeKey = "field"
	AttrHTTPStatus  AttributeKey = "http_status"
	AttrContentType AttributeKey = "content_type"
	AttrExtension   AttributeKey = "extension"
	AttrSite        AttributeKey = "site"
	AttrCode        AttributeKey = "code"
	AttrHash        AttributeKey = "hash"
	AttrMessage     AttributeKey = "message"
)
