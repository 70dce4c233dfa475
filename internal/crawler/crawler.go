package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/internal/record"
	"github.com/rohmanhakim/legaldata/internal/site"
	"github.com/rohmanhakim/legaldata/internal/storage"
	"github.com/rohmanhakim/legaldata/internal/store"
	"github.com/rohmanhakim/legaldata/pkg/failure"
	"github.com/rohmanhakim/legaldata/pkg/limiter"
)

/*
 Crawler is the sole control-plane authority of a crawl.

 An index page yields detail pages, a detail page yields download links,
 and every document ends in exactly one sidecar. Stages below the crawler
 (stores, sink, adapter) detect and classify failure; only the crawler
 decides whether to continue, skip or abort.

 Crawler Responsibilities:
 - Walk index -> documents -> resources strictly in discovery order
 - Enforce the per-index document limit
 - Pause after network fetches only, never after cache hits
 - Re-resolve download links answered with a landing page
 - Write the sidecar once every link of a document was attempted
 - Aggregate crawl statistics and finalize them exactly once per Run

 Metadata emission is observational only and MUST NOT influence
 control flow.
*/

type Crawler struct {
	metadataSink   metadata.MetadataSink
	crawlFinalizer metadata.CrawlFinalizer
	adapter        site.Adapter
	pages          PageSource
	resources      ResourceSource
	sink           storage.Sink
	throttle       limiter.Throttle
	robots         RobotsGate
	catalog        RecordIndex
	options        Options
	onProgress     func(IndexProgress)
	now            func() time.Time
	// largest robots.txt crawl-delay seen so far
	crawlDelay time.Duration
	stats      Stats
}

func NewCrawler(
	metadataSink metadata.MetadataSink,
	crawlFinalizer metadata.CrawlFinalizer,
	adapter site.Adapter,
	pages PageSource,
	resources ResourceSource,
	sink storage.Sink,
	throttle limiter.Throttle,
	options Options,
) *Crawler {
	return &Crawler{
		metadataSink:   metadataSink,
		crawlFinalizer: crawlFinalizer,
		adapter:        adapter,
		pages:          pages,
		resources:      resources,
		sink:           sink,
		throttle:       throttle,
		options:        options,
		now:            time.Now,
	}
}

// WithRobots gates every page and resource URL through robots.txt.
func (c *Crawler) WithRobots(gate RobotsGate) *Crawler {
	c.robots = gate
	return c
}

// WithCatalog upserts every written record into idx.
func (c *Crawler) WithCatalog(idx RecordIndex) *Crawler {
	c.catalog = idx
	return c
}

func (c *Crawler) WithProgress(fn func(IndexProgress)) *Crawler {
	c.onProgress = fn
	return c
}

func (c *Crawler) WithClock(now func() time.Time) *Crawler {
	c.now = now
	return c
}

func (c *Crawler) Stats() Stats {
	return c.stats
}

// Run crawls indexURLs in order and returns every record sorted by code.
// Final statistics are recorded once, whatever the outcome.
func (c *Crawler) Run(ctx context.Context, indexURLs []string) ([]record.Record, failure.ClassifiedError) {
	crawlStartTime := time.Now()
	c.stats = Stats{}

	defer func() {
		c.crawlFinalizer.RecordFinalCrawlStats(
			c.stats.Documents,
			c.stats.Resources,
			c.stats.Failed,
			c.stats.Errors,
			time.Since(crawlStartTime),
		)
	}()

	var all []record.Record
	for i, indexURL := range indexURLs {
		if err := c.checkContext(ctx); err != nil {
			record.Sort(all)
			return all, err
		}

		records, err := c.CrawlIndex(ctx, indexURL)
		all = append(all, records...)
		c.stats.Indexes++
		if c.onProgress != nil {
			c.onProgress(IndexProgress{
				IndexURL:  indexURL,
				Documents: len(records),
				Done:      i + 1,
				Total:     len(indexURLs),
			})
		}
		if err != nil && failure.IsFatal(err) {
			record.Sort(all)
			return all, err
		}
	}

	record.Sort(all)
	return all, nil
}

// CrawlIndex crawls one index page. A missing index yields no records and
// no error. The returned error is fatal; recoverable problems are recorded
// and counted instead.
func (c *Crawler) CrawlIndex(ctx context.Context, indexURL string) ([]record.Record, failure.ClassifiedError) {
	if err := c.checkContext(ctx); err != nil {
		return nil, err
	}

	c.metadataSink.RecordWarning(
		time.Now(),
		"crawler",
		"Crawler.CrawlIndex",
		"multi-page index listings are not followed; only the first page is crawled",
		[]metadata.Attribute{metadata.NewAttr(metadata.AttrIndexURL, indexURL)},
	)

	allowed, err := c.allowed(ctx, indexURL, c.pageCached(indexURL))
	if err != nil || !allowed {
		return nil, err
	}

	page, err := c.pages.FetchPage(ctx, indexURL, c.options.UseCache)
	if err != nil {
		if failure.IsFatal(err) {
			return nil, err
		}
		c.stats.Errors++
		if store.IsPageNotFound(err) {
			crawlErr := &CrawlError{
				Message: fmt.Sprintf("index %s does not exist", indexURL),
				Cause:   ErrCauseMissingIndex,
				Err:     err,
			}
			c.recordError("Crawler.CrawlIndex", crawlErr, indexURL)
		}
		return nil, nil
	}
	if err := c.pauseAfter(ctx, page.LoadedFromCache()); err != nil {
		return nil, err
	}

	detailURLs := c.adapter.ExtractDetailLinks(page.Doc())

	var records []record.Record
	for i, detailURL := range detailURLs {
		if c.options.PerDocumentLimit > 0 && i >= c.options.PerDocumentLimit {
			break
		}
		if err := c.checkContext(ctx); err != nil {
			return records, err
		}

		rec, ok, err := c.crawlDocument(ctx, indexURL, detailURL)
		if err != nil {
			return records, err
		}
		if ok {
			records = append(records, rec)
		}
	}

	for i := range records {
		if err := c.checkContext(ctx); err != nil {
			return records, err
		}
		if err := c.collectResources(ctx, &records[i]); err != nil {
			return records, err
		}
		if err := c.writeRecord(ctx, records[i]); err != nil {
			return records, err
		}
	}

	return records, nil
}

// crawlDocument fetches one detail page and builds its record. ok is false
// when the document is skipped.
func (c *Crawler) crawlDocument(ctx context.Context, indexURL string, detailURL string) (record.Record, bool, failure.ClassifiedError) {
	allowed, err := c.allowed(ctx, detailURL, c.pageCached(detailURL))
	if err != nil || !allowed {
		return record.Record{}, false, err
	}

	page, err := c.pages.FetchPage(ctx, detailURL, c.options.UseCache)
	if err != nil {
		if failure.IsFatal(err) {
			return record.Record{}, false, err
		}
		c.stats.Errors++
		return record.Record{}, false, nil
	}

	links := c.adapter.ExtractDownloadLinks(page.Doc())
	md := c.adapter.ExtractMetadata(page.Doc(), detailURL, links)
	for _, warning := range md.Warnings {
		c.metadataSink.RecordWarning(
			time.Now(),
			"crawler",
			"Crawler.crawlDocument",
			warning,
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, detailURL),
				metadata.NewAttr(metadata.AttrIndexURL, indexURL),
			},
		)
	}

	rec := record.New(c.adapter.Name(), md.Code, detailURL, c.now())
	rec.Title = md.Title
	rec.Description = md.Description
	rec.DescriptionFull = md.DescriptionFull
	rec.Classification = md.Classification
	rec.Admins = md.Admins
	rec.PageDetails = md.PageDetails
	if md.MetaTags != nil {
		rec.MetaTags = md.MetaTags
	}
	if links != nil {
		rec.DownloadLinks = links
	}
	rec.LoadedFromCache = page.LoadedFromCache()
	c.stats.Documents++

	if err := c.pauseAfter(ctx, page.LoadedFromCache()); err != nil {
		return rec, true, err
	}
	return rec, true, nil
}

// collectResources attempts every download link of rec in order. Links that
// cannot be saved are left out of SavedFilenames.
func (c *Crawler) collectResources(ctx context.Context, rec *record.Record) failure.ClassifiedError {
	for _, link := range rec.DownloadLinks {
		if err := c.checkContext(ctx); err != nil {
			return err
		}

		servedLocally := c.options.UseCache && c.resources.Cached(link)
		allowed, err := c.allowed(ctx, link, servedLocally)
		if err != nil {
			return err
		}
		if !allowed {
			c.stats.Failed++
			continue
		}

		result, err := c.fetchResource(ctx, rec, link)
		if err != nil {
			if failure.IsFatal(err) {
				return err
			}
			c.stats.Errors++
		}
		if !result.IsSaved() {
			c.stats.Failed++
			continue
		}
		c.stats.Resources++
		if result.Collided() {
			c.stats.Collisions++
		}
		rec.AddSaved(result.Filename(), result.ContentHash())
	}
	return nil
}

func (c *Crawler) fetchResource(ctx context.Context, rec *record.Record, link string) (store.ResourceResult, failure.ClassifiedError) {
	req := store.ResourceRequest{
		Link:       link,
		OutputDir:  c.options.OutputDir,
		UseCache:   c.options.UseCache,
		TitleHint:  rec.Title,
		NamePrefix: c.options.NamePrefix,
	}

	result, err := c.resources.FetchResource(ctx, req)
	if err != nil {
		return store.ResourceResult{}, err
	}
	if err := c.pauseAfter(ctx, result.LoadedFromCache()); err != nil {
		return result, err
	}

	resolver, ok := c.adapter.(site.RedirectResolver)
	if !ok || !result.IsSaved() || !result.ExtensionMismatch() {
		return result, nil
	}

	redirected, found, err := c.resolveRedirect(ctx, resolver, link)
	if err != nil || !found {
		return result, err
	}

	// the landing page was placed under the document's name; drop it
	if err := c.sink.RemoveArtifact(result.Path()); err != nil {
		return result, err
	}

	req.Link = redirected
	result, err = c.resources.FetchResource(ctx, req)
	if err != nil {
		return store.ResourceResult{}, err
	}
	if err := c.pauseAfter(ctx, result.LoadedFromCache()); err != nil {
		return result, err
	}
	return result, nil
}

// resolveRedirect loads link as an HTML page and asks the adapter for the
// real file link inside it.
func (c *Crawler) resolveRedirect(
	ctx context.Context,
	resolver site.RedirectResolver,
	link string,
) (string, bool, failure.ClassifiedError) {
	page, err := c.pages.FetchPage(ctx, link, c.options.UseCache)
	if err != nil {
		if failure.IsFatal(err) {
			return "", false, err
		}
		c.stats.Errors++
		return "", false, nil
	}
	if err := c.pauseAfter(ctx, page.LoadedFromCache()); err != nil {
		return "", false, err
	}

	redirected, ok := resolver.ResolveRedirectedDownload(page.Doc(), link)
	if !ok {
		c.metadataSink.RecordWarning(
			time.Now(),
			"crawler",
			"Crawler.resolveRedirect",
			"landing page has no link to the requested file; keeping the landing page",
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, link)},
		)
		return "", false, nil
	}
	return redirected, true, nil
}

func (c *Crawler) writeRecord(ctx context.Context, rec record.Record) failure.ClassifiedError {
	base := storage.SidecarBase(rec.SavedFilenames, c.options.NamePrefix, rec.Title, rec.Code)
	if _, err := c.sink.WriteRecord(c.options.OutputDir, base, rec); err != nil {
		if failure.IsFatal(err) {
			return err
		}
		c.stats.Errors++
		return nil
	}

	if c.catalog == nil {
		return nil
	}
	if err := c.catalog.Upsert(ctx, rec); err != nil {
		if failure.IsFatal(err) {
			return err
		}
		c.stats.Errors++
		c.metadataSink.RecordError(
			time.Now(),
			"crawler",
			"Crawler.writeRecord",
			metadata.CauseStorageFailure,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, rec.PageURL),
				metadata.NewAttr(metadata.AttrCode, rec.Code),
			},
		)
	}
	return nil
}

// allowed consults robots.txt when a gate is configured. Work served from
// the local cache never reaches the origin and is not gated.
func (c *Crawler) allowed(ctx context.Context, rawURL string, servedLocally bool) (bool, failure.ClassifiedError) {
	if c.robots == nil || servedLocally {
		return true, nil
	}

	decision, err := c.robots.Decide(ctx, rawURL)
	if err != nil {
		if failure.IsFatal(err) {
			return false, err
		}
		c.stats.Errors++
		return false, nil
	}

	if decision.CrawlDelay != nil && *decision.CrawlDelay > c.crawlDelay {
		c.crawlDelay = *decision.CrawlDelay
	}

	if !decision.Allowed {
		c.stats.Skipped++
		c.metadataSink.RecordError(
			time.Now(),
			"crawler",
			"Crawler.allowed",
			metadata.CausePolicyDisallow,
			fmt.Sprintf("disallowed by robots.txt: %s", decision.Reason),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, rawURL)},
		)
		return false, nil
	}
	return true, nil
}

func (c *Crawler) pageCached(rawURL string) bool {
	return c.options.UseCache && c.pages.Cached(rawURL)
}

// pauseAfter applies the courtesy delay unless the work was served locally.
// A robots.txt crawl-delay longer than the configured delay wins.
func (c *Crawler) pauseAfter(ctx context.Context, servedLocally bool) failure.ClassifiedError {
	if servedLocally {
		return nil
	}
	if err := c.throttle.Wait(ctx); err != nil {
		return c.cancelled(err)
	}

	extra := c.crawlDelay - c.throttle.Delay()
	if extra <= 0 {
		return nil
	}
	timer := time.NewTimer(extra)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return c.cancelled(ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (c *Crawler) checkContext(ctx context.Context) failure.ClassifiedError {
	if err := ctx.Err(); err != nil {
		return c.cancelled(err)
	}
	return nil
}

func (c *Crawler) cancelled(err error) *CrawlError {
	crawlErr := &CrawlError{
		Message: err.Error(),
		Cause:   ErrCauseCancelled,
		Err:     err,
	}
	c.recordError("Crawler.Run", crawlErr, "")
	return crawlErr
}

func (c *Crawler) recordError(action string, err *CrawlError, rawURL string) {
	attrs := []metadata.Attribute{}
	if rawURL != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrURL, rawURL))
	}
	c.metadataSink.RecordError(
		time.Now(),
		"crawler",
		action,
		mapCrawlErrorToMetadataCause(err),
		err.Error(),
		attrs,
	)
}
