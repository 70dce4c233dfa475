package site

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rohmanhakim/legaldata/internal/metadata"
	"golang.org/x/net/html"
)

/*
Responsibilities
- Turn a parsed page into detail links, download links and descriptive fields
- Know the index URLs and cache prefix of one site

Adapters are pure: no I/O, no caching, no state between calls.
*/

// Adapter is the site-specific half of a crawl.
type Adapter interface {
	// Name identifies the site in config and records: "legislation" or "austlii".
	Name() string
	// CachePrefix prefixes every cache file of this site.
	CachePrefix() string
	IndexURLs() []string
	ExtractDetailLinks(doc *html.Node) []string
	ExtractDownloadLinks(doc *html.Node) []string
	ExtractMetadata(doc *html.Node, pageURL string, downloadLinks []string) Metadata
}

// RedirectResolver is implemented by sites that answer some download links
// with an HTML landing page that links to the real file.
type RedirectResolver interface {
	ResolveRedirectedDownload(doc *html.Node, link string) (string, bool)
}

// Metadata is the descriptive part of a record.
type Metadata struct {
	Code            string
	Title           string
	Description     string
	DescriptionFull string
	Classification  string
	Admins          string
	PageDetails     []string
	MetaTags        map[string]string
	// Warnings are conditions worth logging, e.g. a missing page element.
	Warnings []string
}

var ErrUnknownSite = errors.New("unknown site")

// Names lists the supported site names.
func Names() []string {
	names := []string{legislationName, austliiName}
	sort.Strings(names)
	return names
}

// ForName returns the adapter for name, using the real site URLs.
func ForName(name string, metadataSink metadata.MetadataSink) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case legislationName:
		return NewLegislation(metadataSink), nil
	case austliiName:
		return NewAustlii(), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownSite, name, strings.Join(Names(), ", "))
	}
}
