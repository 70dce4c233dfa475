package robots

import "time"

type DecisionReason string

const (
	AllowedByRobots    DecisionReason = "allowed_by_robots"
	DisallowedByRobots DecisionReason = "disallowed_by_robots"
	// RobotsUnavailable: robots.txt could not be fetched; the URL is allowed.
	RobotsUnavailable DecisionReason = "robots_unavailable"
)

type Decision struct {
	URL string

	Allowed bool

	// Why this decision was made (for logging/debugging)
	Reason DecisionReason

	// Crawl-delay of the matched group, nil when absent
	CrawlDelay *time.Duration
}
