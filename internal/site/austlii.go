package site

import (
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/legaldata/pkg/urlutil"
	"golang.org/x/net/html"
)

const (
	austliiName        = "austlii"
	austliiCachePrefix = "austlii"
	AustliiBaseURL     = "http://www.austlii.edu.au"

	austliiDownloadSelector = "div.side-download"
)

var austliiDetailPattern = regexp.MustCompile(`cgi-bin/viewdoc/au/legis/cth/consol_act/[^/"'\s]+/`)

// Austlii is the adapter for the consolidated Commonwealth Acts on AustLII.
// Indexes K, X, Y and Z do not exist; crawling them yields nothing.
type Austlii struct {
	baseURL string
}

func NewAustlii() *Austlii {
	return &Austlii{baseURL: AustliiBaseURL}
}

// WithBaseURL points generated links at another origin. Used in tests.
func (a *Austlii) WithBaseURL(baseURL string) *Austlii {
	a.baseURL = strings.TrimRight(baseURL, "/")
	return a
}

func (a *Austlii) Name() string {
	return austliiName
}

func (a *Austlii) CachePrefix() string {
	return austliiCachePrefix
}

func (a *Austlii) IndexURLs() []string {
	urls := make([]string, 0, 26)
	for letter := 'A'; letter <= 'Z'; letter++ {
		urls = append(urls, a.baseURL+"/cgi-bin/viewtoc/au/legis/cth/consol_act/toc-"+string(letter)+".html")
	}
	return urls
}

// ExtractDetailLinks returns the consolidated-act pages linked from an
// index, de-duplicated and sorted.
func (a *Austlii) ExtractDetailLinks(doc *html.Node) []string {
	matches := austliiDetailPattern.FindAllString(renderHTML(doc), -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		links = append(links, a.baseURL+"/"+m)
	}
	return urlutil.DedupeSorted(links)
}

// ExtractDownloadLinks returns the links of the side download box,
// de-duplicated and sorted.
func (a *Austlii) ExtractDownloadLinks(doc *html.Node) []string {
	if doc == nil {
		return []string{}
	}
	gq := goquery.NewDocumentFromNode(doc)
	var links []string
	gq.Find(austliiDownloadSelector).First().Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.TrimSpace(href) == "" {
			return
		}
		links = append(links, urlutil.Resolve(a.baseURL, href))
	})
	return urlutil.DedupeSorted(links)
}

// ExtractMetadata takes the code from the first (sorted) download link, e.g.
// .../consol_act/antsbna1999470.txt gives "antsbna1999470".
func (a *Austlii) ExtractMetadata(doc *html.Node, pageURL string, downloadLinks []string) Metadata {
	md := Metadata{
		MetaTags: map[string]string{},
	}
	if len(downloadLinks) > 0 {
		first := urlutil.DedupeSorted(downloadLinks)[0]
		base := urlutil.Basename(first)
		md.Code = strings.TrimSuffix(base, path.Ext(base))
	}
	if doc == nil {
		return md
	}

	gq := goquery.NewDocumentFromNode(doc)
	md.MetaTags = metaTags(gq)
	md.Title = collapseSpace(gq.Find("title").First().Text())
	md.Description = md.MetaTags["description"]
	return md
}

// ResolveRedirectedDownload finds the real file link in a landing page served
// for link: the first absolute URL ending in link's basename.
func (a *Austlii) ResolveRedirectedDownload(doc *html.Node, link string) (string, bool) {
	base := urlutil.Basename(link)
	if base == "" {
		return "", false
	}
	pattern, err := regexp.Compile(`http[^\s"'<>]+` + regexp.QuoteMeta(base))
	if err != nil {
		return "", false
	}
	match := pattern.FindString(renderHTML(doc))
	if match == "" {
		return "", false
	}
	return match, true
}
