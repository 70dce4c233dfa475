package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/legaldata/internal/fetcher"
	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/pkg/failure"
	"github.com/rohmanhakim/legaldata/pkg/fileutil"
	"github.com/rohmanhakim/legaldata/pkg/keyutil"
	"golang.org/x/net/html"
)

/*
Responsibilities
- Fetch-or-load an HTML page keyed by its canonical URL
- Persist the raw body verbatim before parsing
- Signal not-found pages so callers can skip them

Pages are fetched once, without retry. Index and detail pages are small
and their failures are mostly permanent addressing errors.
*/

const pageCacheExtension = ".html"

type PageStore struct {
	client       PageFetcher
	metadataSink metadata.MetadataSink
	cacheDir     string
	sitePrefix   string
}

func NewPageStore(
	client PageFetcher,
	metadataSink metadata.MetadataSink,
	cacheDir string,
	sitePrefix string,
) *PageStore {
	return &PageStore{
		client:       client,
		metadataSink: metadataSink,
		cacheDir:     cacheDir,
		sitePrefix:   sitePrefix,
	}
}

// CachePath returns <cacheDir>/<sitePrefix>-<key>.html for rawURL.
func (s *PageStore) CachePath(rawURL string) string {
	return filepath.Join(s.cacheDir, s.sitePrefix+"-"+keyutil.Canonicalize(rawURL)+pageCacheExtension)
}

// Cached reports whether FetchPage with useCache would be served from disk.
func (s *PageStore) Cached(rawURL string) bool {
	return fileutil.IsRegularFile(s.CachePath(rawURL))
}

// FetchPage returns the page at rawURL, from the cache when useCache is set
// and a cached copy exists, otherwise from the network.
func (s *PageStore) FetchPage(ctx context.Context, rawURL string, useCache bool) (Page, failure.ClassifiedError) {
	cachePath := s.CachePath(rawURL)

	if useCache && s.Cached(rawURL) {
		page, err := s.load(rawURL, cachePath)
		if err != nil {
			s.recordError("PageStore.FetchPage", err)
			return Page{}, err
		}
		s.metadataSink.RecordFetch(rawURL, 0, 0, "", 0, true)
		return page, nil
	}

	result, fetchErr := s.client.Fetch(ctx, rawURL)
	if fetchErr != nil {
		var fe *fetcher.FetchError
		if errors.As(fetchErr, &fe) && fe.IsNotFound() {
			notFound := &StoreError{
				Message:   fe.Error(),
				Retryable: false,
				Cause:     ErrCausePageNotFound,
				URL:       rawURL,
			}
			s.recordError("PageStore.FetchPage", notFound)
			return Page{}, notFound
		}
		s.recordFetchError(rawURL, fetchErr)
		return Page{}, fetchErr
	}

	body := result.Body()
	if err := s.persist(rawURL, cachePath, body); err != nil {
		s.recordError("PageStore.FetchPage", err)
		return Page{}, err
	}

	meta := result.Meta()
	s.metadataSink.RecordFetch(rawURL, meta.StatusCode(), meta.Duration(), meta.ContentType(), 1, false)
	recordRedirect(s.metadataSink, "PageStore.FetchPage", rawURL, meta)

	doc, parseErr := html.Parse(bytes.NewReader(body))
	if parseErr != nil {
		err := &StoreError{
			Message:   parseErr.Error(),
			Retryable: false,
			Cause:     ErrCauseParseFailure,
			URL:       rawURL,
			Path:      cachePath,
		}
		s.recordError("PageStore.FetchPage", err)
		return Page{}, err
	}

	return Page{
		url:             rawURL,
		raw:             body,
		doc:             doc,
		loadedFromCache: false,
	}, nil
}

func (s *PageStore) load(rawURL string, cachePath string) (Page, *StoreError) {
	raw, err := os.ReadFile(cachePath)
	if err != nil {
		return Page{}, &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseMalformedCache,
			URL:       rawURL,
			Path:      cachePath,
		}
	}
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return Page{}, &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseMalformedCache,
			URL:       rawURL,
			Path:      cachePath,
		}
	}
	return Page{
		url:             rawURL,
		raw:             raw,
		doc:             doc,
		loadedFromCache: true,
	}, nil
}

func (s *PageStore) persist(rawURL string, cachePath string, body []byte) *StoreError {
	if err := fileutil.EnsureDir(s.cacheDir); err != nil {
		return &StoreError{
			Message: err.Error(),
			Cause:   ErrCauseStorage,
			URL:     rawURL,
			Path:    s.cacheDir,
		}
	}
	if err := fileutil.WriteFileAtomic(cachePath, body); err != nil {
		return &StoreError{
			Message: err.Error(),
			Cause:   ErrCauseStorage,
			URL:     rawURL,
			Path:    cachePath,
		}
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactPageCache,
		cachePath,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, rawURL),
			metadata.NewAttr(metadata.AttrCachePath, cachePath),
		},
	)
	return nil
}

func (s *PageStore) recordError(action string, err *StoreError) {
	s.metadataSink.RecordError(
		time.Now(),
		"store",
		action,
		mapStoreErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, err.URL),
			metadata.NewAttr(metadata.AttrCachePath, err.Path),
		},
	)
}

func (s *PageStore) recordFetchError(rawURL string, err failure.ClassifiedError) {
	cause := metadata.CauseUnknown
	var fe *fetcher.FetchError
	if errors.As(err, &fe) {
		cause = fetcher.MapFetchErrorToMetadataCause(fe)
	}
	s.metadataSink.RecordError(
		time.Now(),
		"store",
		"PageStore.FetchPage",
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, rawURL),
		},
	)
}

// recordRedirect warns when the server answered requested from another URL.
// The cache stays keyed by the requested URL.
func recordRedirect(sink metadata.MetadataSink, action string, requested string, meta fetcher.ResponseMeta) {
	final := meta.FinalURL()
	if final == "" || final == requested {
		return
	}
	sink.RecordWarning(
		time.Now(),
		"store",
		action,
		"request was redirected",
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, requested),
			metadata.NewAttr(metadata.AttrFinalURL, final),
		},
	)
}
