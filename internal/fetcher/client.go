package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/rohmanhakim/legaldata/pkg/failure"
)

/*
Responsibilities

- Perform HTTP GET requests with the configured User-Agent
- Decode Content-Encoding (gzip, deflate, br)
- Classify responses as Transient or Permanent failures
- Stream binary downloads into a file without partial results

The client never parses content and never retries; retry policy and
caching belong to the caller.
*/

const defaultMaxBodySize int64 = 512 << 20

// Client is the single HTTP entry point of a crawl. It is an explicit value
// built once and handed to every store.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	maxBodySize int64
}

func NewClient(userAgent string, timeout time.Duration) *Client {
	return NewClientWithHTTPClient(&http.Client{Timeout: timeout}, userAgent)
}

// NewClientWithHTTPClient creates a Client with a custom HTTP client.
// This is useful for testing.
func NewClientWithHTTPClient(httpClient *http.Client, userAgent string) *Client {
	return &Client{
		httpClient:  httpClient,
		userAgent:   userAgent,
		maxBodySize: defaultMaxBodySize,
	}
}

// WithMaxBodySize caps the decoded size of any single response.
func (c *Client) WithMaxBodySize(n int64) *Client {
	if n > 0 {
		c.maxBodySize = n
	}
	return c
}

func (c *Client) UserAgent() string {
	return c.userAgent
}

// Fetch performs a GET and returns the decoded body in memory.
func (c *Client) Fetch(ctx context.Context, rawURL string) (FetchResult, failure.ClassifiedError) {
	start := time.Now()
	resp, err := c.do(ctx, rawURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	reader, err := c.decodedBody(resp)
	if err != nil {
		return FetchResult{}, err
	}

	body, readErr := io.ReadAll(reader)
	if readErr != nil {
		return FetchResult{}, &FetchError{
			Message:   readErr.Error(),
			Retryable: true,
			Cause:     ErrCauseReadResponseBodyError,
		}
	}
	if int64(len(body)) > c.maxBodySize {
		return FetchResult{}, tooLarge(c.maxBodySize)
	}

	return FetchResult{
		url:  rawURL,
		body: body,
		meta: newResponseMeta(resp, time.Since(start)),
	}, nil
}

// Download performs a GET and streams the decoded body to destPath.
// The file is written to a temporary sibling first and renamed into place,
// so destPath is either the complete body or untouched.
func (c *Client) Download(ctx context.Context, rawURL string, destPath string) (DownloadResult, failure.ClassifiedError) {
	start := time.Now()
	resp, err := c.do(ctx, rawURL, "*/*")
	if err != nil {
		return DownloadResult{}, err
	}
	defer resp.Body.Close()

	reader, err := c.decodedBody(resp)
	if err != nil {
		return DownloadResult{}, err
	}

	tmp, createErr := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".*.part")
	if createErr != nil {
		return DownloadResult{}, writeFailure(createErr)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	dst := &fileWriter{f: tmp}
	written, copyErr := io.Copy(dst, reader)
	if copyErr != nil {
		cleanup()
		if dst.err != nil {
			return DownloadResult{}, writeFailure(dst.err)
		}
		return DownloadResult{}, &FetchError{
			Message:   copyErr.Error(),
			Retryable: true,
			Cause:     ErrCauseReadResponseBodyError,
		}
	}
	if written > c.maxBodySize {
		cleanup()
		return DownloadResult{}, tooLarge(c.maxBodySize)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		os.Remove(tmpName)
		return DownloadResult{}, writeFailure(closeErr)
	}
	if renameErr := os.Rename(tmpName, destPath); renameErr != nil {
		os.Remove(tmpName)
		return DownloadResult{}, writeFailure(renameErr)
	}

	return DownloadResult{
		url:  rawURL,
		path: destPath,
		meta: newResponseMeta(resp, time.Since(start)),
	}, nil
}

func (c *Client) do(ctx context.Context, rawURL string, accept string) (*http.Response, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseInvalidRequest,
		}
	}

	for key, value := range requestHeaders(c.userAgent, accept) {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// a cancelled crawl is not worth retrying
		return nil, &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: ctx.Err() == nil,
			Cause:     ErrCauseNetworkFailure,
		}
	}

	if classified := classifyStatus(resp.StatusCode); classified != nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, classified
	}
	return resp, nil
}

// classifyStatus maps a status code to a Transient or Permanent failure.
// It returns nil for 2xx.
func classifyStatus(status int) *FetchError {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status >= 500:
		return &FetchError{
			Message:    fmt.Sprintf("server error: %d", status),
			Retryable:  true,
			Cause:      ErrCauseRequest5xx,
			StatusCode: status,
		}
	case status == http.StatusTooManyRequests:
		return &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseRequestTooMany,
			StatusCode: status,
		}
	case status == http.StatusNotFound || status == http.StatusGone:
		return &FetchError{
			Message:    fmt.Sprintf("not found: %d", status),
			Retryable:  false,
			Cause:      ErrCauseNotFound,
			StatusCode: status,
		}
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		return &FetchError{
			Message:    fmt.Sprintf("access forbidden: %d", status),
			Retryable:  false,
			Cause:      ErrCauseRequestPageForbidden,
			StatusCode: status,
		}
	case status >= 400:
		return &FetchError{
			Message:    fmt.Sprintf("client error: %d", status),
			Retryable:  false,
			Cause:      ErrCauseRequest4xx,
			StatusCode: status,
		}
	default:
		// Redirects are followed by http.Client; reaching here means the
		// redirect limit was exceeded or a 1xx/3xx leaked through.
		return &FetchError{
			Message:    fmt.Sprintf("unexpected status: %d", status),
			Retryable:  false,
			Cause:      ErrCauseRedirectLimitExceeded,
			StatusCode: status,
		}
	}
}

// decodedBody unwraps Content-Encoding and caps the readable size at
// maxBodySize+1 so callers can detect overflow.
func (c *Client) decodedBody(resp *http.Response) (io.Reader, failure.ClassifiedError) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, &FetchError{
				Message:   fmt.Sprintf("gzip decode: %v", err),
				Retryable: true,
				Cause:     ErrCauseDecodeFailure,
			}
		}
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		reader = flate.NewReader(resp.Body)
	}

	return io.LimitReader(reader, c.maxBodySize+1), nil
}

func newResponseMeta(resp *http.Response, duration time.Duration) ResponseMeta {
	finalURL := ""
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return ResponseMeta{
		statusCode:  resp.StatusCode,
		headers:     resp.Header.Clone(),
		duration:    duration,
		finalURL:    finalURL,
		contentType: resp.Header.Get("Content-Type"),
	}
}

func tooLarge(limit int64) *FetchError {
	return &FetchError{
		Message:   fmt.Sprintf("exceeded max %d bytes", limit),
		Retryable: false,
		Cause:     ErrCauseBodyTooLarge,
	}
}

func writeFailure(err error) *FetchError {
	msg := err.Error()
	if errors.Is(err, syscall.ENOSPC) {
		msg = "disk full: " + msg
	}
	return &FetchError{
		Message:   msg,
		Retryable: false,
		Cause:     ErrCauseWriteFailure,
	}
}

// fileWriter remembers the last write error so a local disk failure can be
// told apart from a broken response stream.
type fileWriter struct {
	f   *os.File
	err error
}

func (w *fileWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	if err != nil {
		w.err = err
	}
	return n, err
}

func requestHeaders(userAgent string, accept string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          accept,
		"Accept-Language": "en-US,en;q=0.5",
		"Accept-Encoding": "gzip, deflate, br",
	}
}
