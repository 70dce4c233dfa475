package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/legaldata/internal/fetcher"
	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/internal/storage"
	"github.com/rohmanhakim/legaldata/pkg/failure"
	"github.com/rohmanhakim/legaldata/pkg/fileutil"
	"github.com/rohmanhakim/legaldata/pkg/keyutil"
	"github.com/rohmanhakim/legaldata/pkg/retry"
	"github.com/rohmanhakim/legaldata/pkg/urlutil"
)

/*
Responsibilities
- Fetch-or-load a binary resource keyed by its canonical link
- Keep the response headers next to the bytes (.pkl bundle)
- Retry transient transfer failures with linear backoff
- Resolve the output name from headers and place a named copy

Cache layout
  <cacheDir>/<sitePrefix>-<key>.urlretrieve  raw bytes
  <cacheDir>/<sitePrefix>-<key>.pkl          gob bundle {Bytes, OriginPath, Headers}
*/

const (
	rawCacheExtension    = ".urlretrieve"
	bundleCacheExtension = ".pkl"
)

type ResourceStore struct {
	downloader   Downloader
	sink         storage.Sink
	metadataSink metadata.MetadataSink
	cacheDir     string
	sitePrefix   string
	retryParam   retry.RetryParam
}

func NewResourceStore(
	downloader Downloader,
	sink storage.Sink,
	metadataSink metadata.MetadataSink,
	cacheDir string,
	sitePrefix string,
	retryParam retry.RetryParam,
) *ResourceStore {
	return &ResourceStore{
		downloader:   downloader,
		sink:         sink,
		metadataSink: metadataSink,
		cacheDir:     cacheDir,
		sitePrefix:   sitePrefix,
		retryParam:   retryParam,
	}
}

// CachePaths returns the raw-bytes and bundle cache paths of link.
func (s *ResourceStore) CachePaths(link string) (string, string) {
	base := filepath.Join(s.cacheDir, s.sitePrefix+"-"+keyutil.Canonicalize(link))
	return base + rawCacheExtension, base + bundleCacheExtension
}

// Cached reports whether both cache artifacts of link exist, so that
// FetchResource with UseCache would not touch the network.
func (s *ResourceStore) Cached(link string) bool {
	rawPath, bundlePath := s.CachePaths(link)
	return fileutil.IsRegularFile(rawPath) && fileutil.IsRegularFile(bundlePath)
}

// FetchResource makes sure the resource behind req.Link is cached and places
// a named copy into req.OutputDir.
//
// A resource that cannot be transferred yields a Failed result and a nil
// error. The returned error is reserved for conditions that must stop the
// run: a corrupt cache or an unwritable cache/output directory.
func (s *ResourceStore) FetchResource(ctx context.Context, req ResourceRequest) (ResourceResult, failure.ClassifiedError) {
	rawPath, bundlePath := s.CachePaths(req.Link)

	if req.UseCache && s.Cached(req.Link) {
		bundle, err := loadBundle(bundlePath)
		if err != nil {
			storeErr := &StoreError{
				Message: err.Error(),
				Cause:   ErrCauseMalformedCache,
				URL:     req.Link,
				Path:    bundlePath,
			}
			s.recordError("ResourceStore.FetchResource", storeErr)
			return ResourceResult{}, storeErr
		}
		s.metadataSink.RecordFetch(req.Link, 0, 0, bundle.Headers.Get("Content-Type"), 0, true)
		return s.place(req, bundle, true)
	}

	if err := fileutil.EnsureDir(s.cacheDir); err != nil {
		storeErr := &StoreError{
			Message: err.Error(),
			Cause:   ErrCauseStorage,
			URL:     req.Link,
			Path:    s.cacheDir,
		}
		s.recordError("ResourceStore.FetchResource", storeErr)
		return ResourceResult{}, storeErr
	}

	param := s.retryParam.
		WithIdentity(req.Link).
		WithObserver(func(attempt int, delay time.Duration, err failure.ClassifiedError) {
			s.metadataSink.RecordRetry(
				time.Now(),
				"store",
				"ResourceStore.FetchResource",
				attempt,
				delay,
				err.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrURL, req.Link),
				},
			)
		}).
		WithContext(ctx)

	result := retry.Retry(param, func() (fetcher.DownloadResult, failure.ClassifiedError) {
		return s.downloader.Download(ctx, req.Link, rawPath)
	})
	if result.IsFailure() {
		return s.transferFailed(req, result.Err())
	}

	download := result.Value()
	meta := download.Meta()
	s.metadataSink.RecordFetch(req.Link, meta.StatusCode(), meta.Duration(), meta.ContentType(), result.Attempts(), false)
	recordRedirect(s.metadataSink, "ResourceStore.FetchResource", req.Link, meta)

	data, readErr := os.ReadFile(download.Path())
	if readErr != nil {
		storeErr := &StoreError{
			Message: readErr.Error(),
			Cause:   ErrCauseStorage,
			URL:     req.Link,
			Path:    download.Path(),
		}
		s.recordError("ResourceStore.FetchResource", storeErr)
		return ResourceResult{}, storeErr
	}

	bundle := resourceBundle{
		Bytes:      data,
		OriginPath: download.Path(),
		Headers:    meta.Headers(),
	}
	if err := s.saveBundle(req.Link, bundlePath, bundle); err != nil {
		s.recordError("ResourceStore.FetchResource", err)
		return ResourceResult{}, err
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactResourceCache,
		rawPath,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, req.Link),
			metadata.NewAttr(metadata.AttrCachePath, rawPath),
		},
	)

	return s.place(req, bundle, false)
}

// transferFailed turns a failed transfer into a Failed result, unless the
// failure is fatal (a local write error), which is returned as-is.
func (s *ResourceStore) transferFailed(req ResourceRequest, err failure.ClassifiedError) (ResourceResult, failure.ClassifiedError) {
	var retryErr *retry.RetryError
	if errors.As(err, &retryErr) && retryErr.Cause == retry.ErrExhaustedAttempts {
		exhausted := &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseTransferExhausted,
			URL:       req.Link,
		}
		s.recordError("ResourceStore.FetchResource", exhausted)
		return ResourceResult{
			status: resourceFailed,
			link:   req.Link,
			reason: exhausted.Error(),
		}, nil
	}

	if failure.IsFatal(err) {
		cause := metadata.CauseUnknown
		var fe *fetcher.FetchError
		if errors.As(err, &fe) {
			cause = fetcher.MapFetchErrorToMetadataCause(fe)
		}
		s.metadataSink.RecordError(
			time.Now(),
			"store",
			"ResourceStore.FetchResource",
			cause,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, req.Link),
			},
		)
		return ResourceResult{}, err
	}

	// permanent remote failure, e.g. 404
	cause := metadata.CauseUnknown
	var fe *fetcher.FetchError
	if errors.As(err, &fe) {
		cause = fetcher.MapFetchErrorToMetadataCause(fe)
	}
	s.metadataSink.RecordError(
		time.Now(),
		"store",
		"ResourceStore.FetchResource",
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, req.Link),
		},
	)
	return ResourceResult{
		status: resourceFailed,
		link:   req.Link,
		reason: err.Error(),
	}, nil
}

// place resolves the output name from the bundle headers and writes the copy.
func (s *ResourceStore) place(req ResourceRequest, bundle resourceBundle, loadedFromCache bool) (ResourceResult, failure.ClassifiedError) {
	info := storage.ResolveHeaders(bundle.Headers)
	if !info.Known() {
		s.metadataSink.RecordWarning(
			time.Now(),
			"store",
			"ResourceStore.FetchResource",
			"unknown content type, saving without extension",
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, req.Link),
				metadata.NewAttr(metadata.AttrContentType, bundle.Headers.Get("Content-Type")),
			},
		)
	}

	filename := storage.ComputeFilename(
		req.TitleHint,
		req.NamePrefix,
		info.Filename,
		info.Extension,
		urlutil.Basename(req.Link),
	)

	placed, err := s.sink.PlaceResource(req.OutputDir, filename, bundle.Bytes, req.Link)
	if err != nil {
		return ResourceResult{}, err
	}

	linkExt := urlutil.Extension(req.Link)
	mismatch := extensionsDisagree(linkExt, info.Extension)
	if mismatch {
		s.metadataSink.RecordWarning(
			time.Now(),
			"store",
			"ResourceStore.FetchResource",
			"link extension differs from response content type",
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, req.Link),
				metadata.NewAttr(metadata.AttrExtension, linkExt+" != "+info.Extension),
				metadata.NewAttr(metadata.AttrContentType, info.MediaType),
			},
		)
	}

	return ResourceResult{
		status:            resourceSaved,
		path:              placed.Path(),
		filename:          placed.Filename(),
		resolvedExtension: info.Extension,
		mediaType:         info.MediaType,
		contentHash:       placed.ContentHash(),
		loadedFromCache:   loadedFromCache,
		extensionMismatch: mismatch,
		collided:          placed.Collided(),
		link:              req.Link,
	}, nil
}

func (s *ResourceStore) saveBundle(link string, bundlePath string, bundle resourceBundle) *StoreError {
	data, err := encodeBundle(bundle)
	if err != nil {
		return &StoreError{
			Message: err.Error(),
			Cause:   ErrCauseStorage,
			URL:     link,
			Path:    bundlePath,
		}
	}
	if writeErr := fileutil.WriteFileAtomic(bundlePath, data); writeErr != nil {
		return &StoreError{
			Message: writeErr.Error(),
			Cause:   ErrCauseStorage,
			URL:     link,
			Path:    bundlePath,
		}
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactResourceCache,
		bundlePath,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, link),
			metadata.NewAttr(metadata.AttrCachePath, bundlePath),
			metadata.NewAttr(metadata.AttrField, strconv.Itoa(len(bundle.Bytes))),
		},
	)
	return nil
}

func (s *ResourceStore) recordError(action string, err *StoreError) {
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

// extensionsDisagree compares a link extension with a resolved one. Either
// side being empty is not a disagreement; .htm and .html are the same type.
func extensionsDisagree(linkExt string, resolvedExt string) bool {
	if linkExt == "" || resolvedExt == "" {
		return false
	}
	normalize := func(ext string) string {
		ext = strings.ToLower(ext)
		if ext == ".htm" {
			return ".html"
		}
		return ext
	}
	return normalize(linkExt) != normalize(resolvedExt)
}
