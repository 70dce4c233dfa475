package fetcher

import (
	"net/http"
	"time"
)

// HTTP boundary

type ResponseMeta struct {
	statusCode  int
	headers     http.Header
	duration    time.Duration
	finalURL    string
	contentType string
}

func (m ResponseMeta) StatusCode() int {
	return m.statusCode
}

// Headers are the response headers as received. Content-Encoding has
// already been removed from the body.
func (m ResponseMeta) Headers() http.Header {
	return m.headers
}

func (m ResponseMeta) Duration() time.Duration {
	return m.duration
}

// FinalURL is the URL after redirects.
func (m ResponseMeta) FinalURL() string {
	return m.finalURL
}

func (m ResponseMeta) ContentType() string {
	return m.contentType
}

// FetchResult is an in-memory response, used for pages.
type FetchResult struct {
	url  string
	body []byte
	meta ResponseMeta
}

func (f FetchResult) URL() string {
	return f.url
}

func (f FetchResult) Body() []byte {
	return f.body
}

func (f FetchResult) Meta() ResponseMeta {
	return f.meta
}

// DownloadResult describes a response body streamed into a file.
type DownloadResult struct {
	url  string
	path string
	meta ResponseMeta
}

func (d DownloadResult) URL() string {
	return d.url
}

func (d DownloadResult) Path() string {
	return d.path
}

func (d DownloadResult) Meta() ResponseMeta {
	return d.meta
}
