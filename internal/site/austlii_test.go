package site_test

import (
	"testing"

	"github.com/rohmanhakim/legaldata/internal/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const austliiIndexPage = `<html><body><ul>
<li><a href="/cgi-bin/viewdoc/au/legis/cth/consol_act/aia1901230/">Acts Interpretation Act 1901</a></li>
<li><a href="/cgi-bin/viewdoc/au/legis/cth/consol_act/aa1901230/">Audit Act 1901</a></li>
<li><a href="/cgi-bin/viewdoc/au/legis/cth/consol_act/aia1901230/">duplicate</a></li>
</ul></body></html>`

const austliiDetailPage = `<html><head>
<title>
  Acts Interpretation Act 1901
</title>
<meta name="description" content="Consolidated Acts">
</head><body>
<div class="side-download"><ul>
<li><a href="/au/legis/cth/consol_act/aia1901230.txt">Plain text</a></li>
<li><a href="/au/legis/cth/consol_act/aia1901230.rtf">RTF</a></li>
<li><a href="/au/legis/cth/consol_act/aia1901230.txt">Plain text again</a></li>
</ul></div>
<div class="side-download"><a href="/ignored.pdf">second box</a></div>
</body></html>`

func TestAustlii_IndexURLs(t *testing.T) {
	urls := site.NewAustlii().IndexURLs()

	require.Len(t, urls, 26)
	assert.Equal(t, "http://www.austlii.edu.au/cgi-bin/viewtoc/au/legis/cth/consol_act/toc-A.html", urls[0])
	assert.Equal(t, "http://www.austlii.edu.au/cgi-bin/viewtoc/au/legis/cth/consol_act/toc-Z.html", urls[25])
}

func TestAustlii_ExtractDetailLinks(t *testing.T) {
	links := site.NewAustlii().ExtractDetailLinks(parse(t, austliiIndexPage))

	assert.Equal(t, []string{
		"http://www.austlii.edu.au/cgi-bin/viewdoc/au/legis/cth/consol_act/aa1901230/",
		"http://www.austlii.edu.au/cgi-bin/viewdoc/au/legis/cth/consol_act/aia1901230/",
	}, links)
}

func TestAustlii_ExtractDownloadLinks(t *testing.T) {
	links := site.NewAustlii().ExtractDownloadLinks(parse(t, austliiDetailPage))

	assert.Equal(t, []string{
		"http://www.austlii.edu.au/au/legis/cth/consol_act/aia1901230.rtf",
		"http://www.austlii.edu.au/au/legis/cth/consol_act/aia1901230.txt",
	}, links)
}

func TestAustlii_ExtractDownloadLinks_NoBox(t *testing.T) {
	links := site.NewAustlii().ExtractDownloadLinks(parse(t, `<html><body><a href="/x.txt">x</a></body></html>`))
	assert.Empty(t, links)
}

func TestAustlii_ExtractMetadata(t *testing.T) {
	aus := site.NewAustlii()
	doc := parse(t, austliiDetailPage)

	md := aus.ExtractMetadata(doc, "http://www.austlii.edu.au/cgi-bin/viewdoc/au/legis/cth/consol_act/aia1901230/", aus.ExtractDownloadLinks(doc))

	assert.Equal(t, "aia1901230", md.Code)
	assert.Equal(t, "Acts Interpretation Act 1901", md.Title)
	assert.Equal(t, "Consolidated Acts", md.Description)
	assert.Equal(t, map[string]string{"description": "Consolidated Acts"}, md.MetaTags)
}

func TestAustlii_ExtractMetadata_NoDownloads(t *testing.T) {
	md := site.NewAustlii().ExtractMetadata(parse(t, `<html><head><title>T</title></head></html>`), "http://x/", nil)
	assert.Empty(t, md.Code)
	assert.Equal(t, "T", md.Title)
}

func TestAustlii_ResolveRedirectedDownload(t *testing.T) {
	aus := site.NewAustlii()
	landing := parse(t, `<html><body>
<p>Your download is ready:
<a href="http://www8.austlii.edu.au/cgi-bin/download.cgi/download/au/legis/cth/consol_act/amsaa1990405.txt">amsaa1990405.txt</a></p>
</body></html>`)

	resolved, ok := aus.ResolveRedirectedDownload(landing, "http://www.austlii.edu.au/au/legis/cth/consol_act/amsaa1990405.txt")
	require.True(t, ok)
	assert.Equal(t, "http://www8.austlii.edu.au/cgi-bin/download.cgi/download/au/legis/cth/consol_act/amsaa1990405.txt", resolved)

	_, ok = aus.ResolveRedirectedDownload(landing, "http://www.austlii.edu.au/au/legis/cth/consol_act/other.txt")
	assert.False(t, ok)
}
