package site

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// renderHTML serializes doc so link patterns can be matched against the
// markup itself, attributes included.
func renderHTML(doc *html.Node) string {
	if doc == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return ""
	}
	return buf.String()
}

// metaTags collects <meta name=... content=...> pairs. Names are trimmed and
// lower-cased; tags without a name are skipped.
func metaTags(doc *goquery.Document) map[string]string {
	tags := make(map[string]string)
	doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return
		}
		content, _ := s.Attr("content")
		tags[name] = strings.TrimSpace(content)
	})
	return tags
}

// textOr returns the whitespace-collapsed text of the first match of
// selector, or fallback when nothing matches.
func textOr(doc *goquery.Document, selector string, fallback string) string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return fallback
	}
	return collapseSpace(sel.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
