package timeutil

import "time"

// CrawlDateLayout is the day-first timestamp layout written into sidecar records.
const CrawlDateLayout = "02-01-2006 15:04:05"

// LinearBackoffDelay returns the wait before the next attempt after the
// given failed attempt: attempt * base. Attempts start at 1.
//
// example (base = 10s):
//
//	attempt 1 -> 10s
//	attempt 2 -> 20s
//	attempt 3 -> 30s
func LinearBackoffDelay(attempt int, base time.Duration) time.Duration {
	if attempt < 1 || base <= 0 {
		return 0
	}
	return time.Duration(attempt) * base
}

// FormatCrawlDate renders t with CrawlDateLayout.
func FormatCrawlDate(t time.Time) string {
	return t.Format(CrawlDateLayout)
}

// DurationPtr is a helper function to create a pointer to a time.Duration
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}
