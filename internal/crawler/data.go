package crawler

import (
	"context"

	"github.com/rohmanhakim/legaldata/internal/record"
	"github.com/rohmanhakim/legaldata/internal/robots"
	"github.com/rohmanhakim/legaldata/internal/store"
	"github.com/rohmanhakim/legaldata/pkg/failure"
)

// PageSource is satisfied by *store.PageStore.
type PageSource interface {
	FetchPage(ctx context.Context, rawURL string, useCache bool) (store.Page, failure.ClassifiedError)
	Cached(rawURL string) bool
}

// ResourceSource is satisfied by *store.ResourceStore.
type ResourceSource interface {
	FetchResource(ctx context.Context, req store.ResourceRequest) (store.ResourceResult, failure.ClassifiedError)
	Cached(link string) bool
}

// RobotsGate is satisfied by *robots.Robot.
type RobotsGate interface {
	Decide(ctx context.Context, rawURL string) (robots.Decision, failure.ClassifiedError)
}

// RecordIndex is satisfied by *catalog.Catalog.
type RecordIndex interface {
	Upsert(ctx context.Context, rec record.Record) failure.ClassifiedError
}

// Options are the per-run knobs of a crawl.
type Options struct {
	OutputDir string
	UseCache  bool
	// PerDocumentLimit caps the detail pages taken from one index; 0 means no cap.
	PerDocumentLimit int
	NamePrefix       string
}

// Stats aggregates one Run.
type Stats struct {
	Indexes   int
	Documents int
	// Resources counts saved files.
	Resources int
	// Failed counts resources that could not be saved.
	Failed int
	Errors int
	// Skipped counts URLs refused by robots.txt.
	Skipped int
	// Collisions counts saved files that overwrote another link's file.
	Collisions int
}

// IndexProgress is reported after each index page has been fully processed.
type IndexProgress struct {
	IndexURL  string
	Documents int
	Done      int
	Total     int
}
