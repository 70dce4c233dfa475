package site_test

import (
	"testing"

	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/internal/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legislationIndexPage = `<html><body><table>
<tr><td><a href="../Details/C2004A00001/Download">Acts Interpretation Act</a></td></tr>
<tr><td><a href="../Details/C2018C00418/Download">Income Tax Act</a></td></tr>
<tr><td><a href="../Details/C2018C00418/Html">Income Tax Act (html)</a></td></tr>
</table></body></html>`

const legislationDetailPage = `<html><head>
<meta name="Title" content=" Acts Interpretation Act 1901 ">
<meta name="DESCRIPTION" content="An Act for the Interpretation of Acts">
<meta content="no name">
</head><body>
<table><tr id="MainContent_ucLegItemPane_trNumberYearClassification"><td>Act No. 2 of 1901</td>
<td>  Principal   Act </td></tr></table>
<span id="MainContent_ucLegItemPane_lblBD">An Act for the Interpretation of Acts of Parliament</span>
<span id="MainContent_ucLegItemPane_lblAdminDepts">Attorney-General's Department</span>
<div id="MainContent_leftDetailMeta"><p>Start date: 01 Jan 2020</p><p>End date: current</p></div>
<a href="../Details/C2004A00001/18b59cb0-976c-4721-ac2b-c5a57016703b">Word</a>
<a href="../Details/C2004A00001/2aa1cc3e-0d5e-4f6e-8b2a-1234567890ab">PDF</a>
<a href="../Details/C2004A00001/18b59cb0-976c-4721-ac2b-c5a57016703b">Word again</a>
<a href="../Details/C2004A00001/not-a-guid">other</a>
</body></html>`

func TestLegislation_IndexURLs(t *testing.T) {
	urls := site.NewLegislation(&metadata.NoopSink{}).IndexURLs()

	require.Len(t, urls, 125)
	assert.Equal(t, "https://www.legislation.gov.au/Browse/Results/ByTitle/Acts/InForce/Ab/0/0/principal", urls[0])
	assert.Contains(t, urls, "https://www.legislation.gov.au/Browse/Results/ByTitle/Acts/InForce/Pr/0/0/principal")

	seen := map[string]bool{}
	for _, u := range urls {
		assert.False(t, seen[u], "duplicate index url %s", u)
		seen[u] = true
	}
}

func TestLegislation_ExtractDetailLinks(t *testing.T) {
	leg := site.NewLegislation(&metadata.NoopSink{})

	links := leg.ExtractDetailLinks(parse(t, legislationIndexPage))
	assert.Equal(t, []string{
		"https://www.legislation.gov.au/Details/C2004A00001/Download",
		"https://www.legislation.gov.au/Details/C2018C00418/Download",
	}, links)
}

func TestLegislation_ExtractDetailLinks_WithBaseURL(t *testing.T) {
	leg := site.NewLegislation(&metadata.NoopSink{}).WithBaseURL("http://127.0.0.1:8080/")

	links := leg.ExtractDetailLinks(parse(t, legislationIndexPage))
	require.Len(t, links, 2)
	assert.Equal(t, "http://127.0.0.1:8080/Details/C2004A00001/Download", links[0])
}

func TestLegislation_ExtractDownloadLinks(t *testing.T) {
	leg := site.NewLegislation(&metadata.NoopSink{})

	links := leg.ExtractDownloadLinks(parse(t, legislationDetailPage))
	assert.Equal(t, []string{
		"https://www.legislation.gov.au/Details/C2004A00001/18b59cb0-976c-4721-ac2b-c5a57016703b",
		"https://www.legislation.gov.au/Details/C2004A00001/2aa1cc3e-0d5e-4f6e-8b2a-1234567890ab",
	}, links)
}

func TestLegislation_ExtractMetadata(t *testing.T) {
	leg := site.NewLegislation(&metadata.NoopSink{})
	pageURL := "https://www.legislation.gov.au/Details/C2004A00001/Download"
	doc := parse(t, legislationDetailPage)

	md := leg.ExtractMetadata(doc, pageURL, leg.ExtractDownloadLinks(doc))

	assert.Equal(t, "C2004A00001", md.Code)
	assert.Equal(t, "Acts Interpretation Act 1901", md.Title)
	assert.Equal(t, "An Act for the Interpretation of Acts", md.Description)
	assert.Equal(t, "Act No. 2 of 1901 Principal Act", md.Classification)
	assert.Equal(t, "An Act for the Interpretation of Acts of Parliament", md.DescriptionFull)
	assert.Equal(t, "Attorney-General's Department", md.Admins)
	assert.Equal(t, []string{"Start date: 01 Jan 2020", "End date: current"}, md.PageDetails)
	assert.Equal(t, map[string]string{
		"title":       "Acts Interpretation Act 1901",
		"description": "An Act for the Interpretation of Acts",
	}, md.MetaTags)
	assert.Empty(t, md.Warnings)
}

func TestLegislation_ExtractMetadata_Fallbacks(t *testing.T) {
	leg := site.NewLegislation(&metadata.NoopSink{})

	md := leg.ExtractMetadata(parse(t, `<html><head><meta name="title" content="Bare Act"></head><body></body></html>`),
		"https://www.legislation.gov.au/Details/C1/Download", nil)

	assert.Equal(t, "C1", md.Code)
	assert.Equal(t, "Classification not found", md.Classification)
	assert.Equal(t, "Full description not found", md.DescriptionFull)
	assert.Equal(t, "Admins not found", md.Admins)
	assert.Equal(t, []string{"html id not found, try updating legaldata to latest version."}, md.PageDetails)
	require.Len(t, md.Warnings, 1)
	assert.Contains(t, md.Warnings[0], "Bare Act")
}
