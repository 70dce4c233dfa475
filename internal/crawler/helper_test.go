package crawler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/legaldata/internal/crawler"
	"github.com/rohmanhakim/legaldata/internal/fetcher"
	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/internal/record"
	"github.com/rohmanhakim/legaldata/internal/site"
	"github.com/rohmanhakim/legaldata/internal/storage"
	"github.com/rohmanhakim/legaldata/internal/store"
	"github.com/rohmanhakim/legaldata/pkg/failure"
	"github.com/rohmanhakim/legaldata/pkg/hashutil"
	"github.com/rohmanhakim/legaldata/pkg/retry"
)

// metadataSinkMock is a test double for metadata.MetadataSink and
// metadata.CrawlFinalizer
type metadataSinkMock struct {
	mu         sync.Mutex
	errors     []metadata.ErrorCause
	warnings   []string
	finalStats []finalStats
}

type finalStats struct {
	documents int
	resources int
	failed    int
	errors    int
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, cause)
}

func (m *metadataSinkMock) RecordWarning(
	observedAt time.Time,
	packageName string,
	action string,
	details string,
	attrs []metadata.Attribute,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
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
}

func (m *metadataSinkMock) RecordFinalCrawlStats(
	totalDocuments int,
	totalResources int,
	totalFailed int,
	totalErrors int,
	duration time.Duration,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalStats = append(m.finalStats, finalStats{
		documents: totalDocuments,
		resources: totalResources,
		failed:    totalFailed,
		errors:    totalErrors,
	})
}

func (m *metadataSinkMock) hasCause(cause metadata.ErrorCause) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.errors {
		if c == cause {
			return true
		}
	}
	return false
}

// countingThrottle never sleeps; it only counts Wait calls.
type countingThrottle struct {
	waits int
}

func (c *countingThrottle) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.waits++
	return nil
}

func (c *countingThrottle) Delay() time.Duration {
	return 0
}

type catalogMock struct {
	upserted []record.Record
}

func (c *catalogMock) Upsert(ctx context.Context, rec record.Record) failure.ClassifiedError {
	c.upserted = append(c.upserted, rec)
	return nil
}

type fixture struct {
	crawler   *crawler.Crawler
	sink      *metadataSinkMock
	throttle  *countingThrottle
	adapter   site.Adapter
	outputDir string
	cacheDir  string
}

type fixtureOptions struct {
	limit      int
	useCache   bool
	cacheDir   string
	outputDir  string
	namePrefix string
	// adapter defaults to austlii pointed at the test server
	adapter site.Adapter
}

func newFixture(t *testing.T, server *httptest.Server, opts fixtureOptions) fixture {
	t.Helper()
	root := t.TempDir()
	if opts.cacheDir == "" {
		opts.cacheDir = filepath.Join(root, "cache")
	}
	if opts.outputDir == "" {
		opts.outputDir = filepath.Join(root, "output")
	}

	sink := &metadataSinkMock{}
	throttle := &countingThrottle{}
	adapter := opts.adapter
	if adapter == nil {
		adapter = site.NewAustlii().WithBaseURL(server.URL)
	}
	client := fetcher.NewClientWithHTTPClient(server.Client(), "test-agent")
	localSink := storage.NewLocalSink(sink, hashutil.HashAlgoBLAKE3)

	pages := store.NewPageStore(client, sink, opts.cacheDir, adapter.CachePrefix())
	resources := store.NewResourceStore(
		client,
		localSink,
		sink,
		opts.cacheDir,
		adapter.CachePrefix(),
		retry.NewRetryParam(time.Millisecond, 2).WithSleep(func(time.Duration) {}),
	)

	c := crawler.NewCrawler(
		sink,
		sink,
		adapter,
		pages,
		resources,
		localSink,
		throttle,
		crawler.Options{
			OutputDir:        opts.outputDir,
			UseCache:         opts.useCache,
			PerDocumentLimit: opts.limit,
			NamePrefix:       opts.namePrefix,
		},
	).WithClock(func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) })

	return fixture{
		crawler:   c,
		sink:      sink,
		throttle:  throttle,
		adapter:   adapter,
		outputDir: opts.outputDir,
		cacheDir:  opts.cacheDir,
	}
}

const (
	indexPath = "/cgi-bin/viewtoc/au/legis/cth/consol_act/toc-A.html"

	indexPage = `<html><body><ul>
<li><a href="/cgi-bin/viewdoc/au/legis/cth/consol_act/aa1901230/">Audit Act 1901</a></li>
<li><a href="/cgi-bin/viewdoc/au/legis/cth/consol_act/ba2000001/">Banking Act 2000</a></li>
<li><a href="/cgi-bin/viewdoc/au/legis/cth/consol_act/ca2001001/">Corporations Act 2001</a></li>
</ul></body></html>`

	auditDetail = `<html><head><title>Audit Act 1901</title></head><body>
<div class="side-download"><a href="/au/legis/cth/consol_act/aa1901230.rtf">RTF</a></div>
</body></html>`

	bankingDetail = `<html><head><title>Banking Act 2000</title></head><body>
<div class="side-download">
<a href="/files/a.pdf">A</a>
<a href="/files/b.pdf">B</a>
<a href="/files/c.pdf">C</a>
</div>
</body></html>`

	corporationsDetail = `<html><head><title>Corporations Act 2001</title></head><body>
<div class="side-download"><a href="/au/legis/cth/consol_act/ca2001001.rtf">RTF</a></div>
</body></html>`
)

// siteHandler serves a small austlii-shaped site. b.pdf always fails and
// the corporations act follows the banking act in the index.
func siteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case indexPath:
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(indexPage))
		case "/cgi-bin/viewdoc/au/legis/cth/consol_act/aa1901230/":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(auditDetail))
		case "/cgi-bin/viewdoc/au/legis/cth/consol_act/ba2000001/":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(bankingDetail))
		case "/cgi-bin/viewdoc/au/legis/cth/consol_act/ca2001001/":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(corporationsDetail))
		case "/au/legis/cth/consol_act/aa1901230.rtf":
			w.Header().Set("Content-Type", "application/rtf")
			_, _ = w.Write([]byte(`{\rtf1 audit}`))
		case "/au/legis/cth/consol_act/ca2001001.rtf":
			w.Header().Set("Content-Type", "application/rtf")
			_, _ = w.Write([]byte(`{\rtf1 corporations}`))
		case "/files/a.pdf", "/files/c.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4 " + r.URL.Path))
		case "/files/b.pdf":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}
}

func newSiteServer(t *testing.T) (*httptest.Server, func(path string) int) {
	t.Helper()
	return newCountingServer(t, siteHandler())
}

// newCountingServer serves handler and counts requests per path.
func newCountingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, func(path string) int) {
	t.Helper()
	var mu sync.Mutex
	hits := map[string]int{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, func(path string) int {
		mu.Lock()
		defer mu.Unlock()
		return hits[path]
	}
}
