package store

import (
	"context"
	"net/http"

	"github.com/rohmanhakim/legaldata/internal/fetcher"
	"github.com/rohmanhakim/legaldata/pkg/failure"
	"golang.org/x/net/html"
)

// PageFetcher is the part of fetcher.Client used by PageStore.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (fetcher.FetchResult, failure.ClassifiedError)
}

// Downloader is the part of fetcher.Client used by ResourceStore.
type Downloader interface {
	Download(ctx context.Context, rawURL string, destPath string) (fetcher.DownloadResult, failure.ClassifiedError)
}

// Page is a parsed HTML page and the exact bytes it was parsed from.
type Page struct {
	url             string
	raw             []byte
	doc             *html.Node
	loadedFromCache bool
}

func (p Page) URL() string {
	return p.url
}

// Raw is the body as received from the origin (or as cached).
func (p Page) Raw() []byte {
	return p.raw
}

func (p Page) Doc() *html.Node {
	return p.doc
}

func (p Page) LoadedFromCache() bool {
	return p.loadedFromCache
}

// ResourceRequest names one binary resource and where its copy goes.
type ResourceRequest struct {
	Link      string
	OutputDir string
	UseCache  bool
	// TitleHint is optional; an empty hint contributes nothing to the name.
	TitleHint  string
	NamePrefix string
}

type resourceStatus int

const (
	resourceSaved resourceStatus = iota + 1
	resourceFailed
)

// ResourceResult is either Saved or Failed. A Failed result is not an error:
// the resource is simply absent from the document's saved files.
type ResourceResult struct {
	status resourceStatus

	// Saved
	path              string
	filename          string
	resolvedExtension string
	mediaType         string
	contentHash       string
	loadedFromCache   bool
	extensionMismatch bool
	collided          bool

	// Failed
	link   string
	reason string
}

func (r ResourceResult) IsSaved() bool {
	return r.status == resourceSaved
}

func (r ResourceResult) IsFailed() bool {
	return r.status == resourceFailed
}

func (r ResourceResult) Path() string {
	return r.path
}

// Filename is the basename of Path.
func (r ResourceResult) Filename() string {
	return r.filename
}

// ResolvedExtension includes the leading dot. Empty when the content type
// was unknown.
func (r ResourceResult) ResolvedExtension() string {
	return r.resolvedExtension
}

func (r ResourceResult) MediaType() string {
	return r.mediaType
}

func (r ResourceResult) ContentHash() string {
	return r.contentHash
}

func (r ResourceResult) LoadedFromCache() bool {
	return r.loadedFromCache
}

// ExtensionMismatch reports that the link's own extension disagrees with the
// one resolved from the response headers, which usually means the server
// answered with a landing page instead of the file.
func (r ResourceResult) ExtensionMismatch() bool {
	return r.extensionMismatch
}

// Collided reports that an earlier link of this run was written to the
// same output path and has been overwritten.
func (r ResourceResult) Collided() bool {
	return r.collided
}

func (r ResourceResult) Link() string {
	return r.link
}

// Reason explains a Failed result.
func (r ResourceResult) Reason() string {
	return r.reason
}

// resourceBundle is the .pkl cache artifact. It keeps the headers of the
// original response so a cache hit can resolve the output name offline.
type resourceBundle struct {
	Bytes      []byte
	OriginPath string
	Headers    http.Header
}
