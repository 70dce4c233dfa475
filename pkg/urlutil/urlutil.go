package urlutil

import (
	"net/url"
	"path"
	"sort"
	"strings"
)

// Resolve resolves ref against base. Absolute refs are returned unchanged.
// An unparsable ref is returned as-is so callers can still log it.
func Resolve(base string, ref string) string {
	ref = strings.TrimSpace(ref)
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// Basename returns the last path segment of a URL, without query or fragment.
// It falls back to a plain string split when the URL cannot be parsed.
func Basename(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// Extension returns the extension of the URL's last path segment including
// the leading dot, e.g. ".txt". It returns "" when there is none.
func Extension(rawURL string) string {
	return path.Ext(Basename(rawURL))
}

// Dedupe removes repeated entries while keeping first-seen order.
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// DedupeSorted removes repeated entries and sorts the result.
func DedupeSorted(urls []string) []string {
	out := Dedupe(urls)
	sort.Strings(out)
	return out
}
