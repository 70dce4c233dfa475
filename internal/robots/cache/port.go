package cache

import "time"

// Entry is a fetched robots.txt as received: status and body. Parsing is
// left to the caller so the cache stays independent of the rules library.
type Entry struct {
	StatusCode int
	Body       string
	FetchedAt  time.Time
}

// Cache stores robots.txt entries per origin ("scheme://host") for the
// duration of one crawl.
type Cache interface {
	Get(origin string) (Entry, bool)
	Put(origin string, entry Entry)
}
