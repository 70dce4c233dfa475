package site

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/legaldata/internal/mdconvert"
	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/pkg/urlutil"
	"golang.org/x/net/html"
)

const (
	legislationName        = "legislation"
	legislationCachePrefix = "legal"
	LegislationBaseURL     = "https://www.legislation.gov.au"

	classificationSelector = "tr#MainContent_ucLegItemPane_trNumberYearClassification"
	descFullSelector       = "span#MainContent_ucLegItemPane_lblBD"
	adminsSelector         = "span#MainContent_ucLegItemPane_lblAdminDepts"
	pageDetailsSelector    = "div#MainContent_leftDetailMeta"

	classificationFallback = "Classification not found"
	descFullFallback       = "Full description not found"
	adminsFallback         = "Admins not found"
	pageDetailsFallback    = "html id not found, try updating legaldata to latest version."
)

var (
	// ../Details/C2018C00418/Download
	legislationDetailPattern = regexp.MustCompile(`\.\./Details/([^/"'\s]*)/Download`)
	// ../Details/C2014C00072/18b59cb0-976c-4721-ac2b-c5a57016703b
	legislationDownloadPattern = regexp.MustCompile(`\.\./Details/([^/"'\s]*/[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12})`)
	legislationCodePattern     = regexp.MustCompile(`/Details/([^/]+)/Download`)

	// title-browse pages of principal Acts in force
	legislationIndexCodes = []string{
		"Ab", "AC", "Ad", "Ae", "Ag", "Ai", "Al", "An", "Ap", "Ar", "As", "At", "Au", "Av",
		"Ba", "Bi", "Bo", "Br", "Bu",
		"Ca", "Ce", "CF", "Ch", "Ci", "Cl", "Co", "Cr", "CS", "Cu",
		"Da", "De", "Di", "Do",
		"Ea", "Ed", "Eg", "El", "Em", "En", "Ep", "Eq", "Eu", "Ev", "Ex",
		"Fa", "Fe", "Fi", "Fl", "Fo", "Fr", "Fu",
		"Ga", "Ge", "Go", "Gr", "Gu",
		"Ha", "He", "Hi", "Ho", "Hu",
		"Il", "Im", "In",
		"Ja", "Je", "Ju",
		"La", "Le", "Li", "Lo",
		"Ma", "Me", "Mi", "Mo", "Mu", "My",
		"Na", "Ne", "No", "Nu",
		"Oc", "Of", "Ol", "Om", "Or", "Ov", "Oz",
		"Pa", "Pe", "Pi", "Pl", "Po", "Pr", "Ps", "Pu",
		"Qa",
		"Ra", "Re", "Ro", "Ru",
		"Sa", "Sc", "Se", "Sh", "Sm", "Sn", "So", "Sp", "St", "Su", "Sy",
		"Ta", "Te", "Th", "To", "Tr",
		"Un", "Ur",
		"VE",
		"Wa", "We", "Wh", "Wi", "Wo",
	}
)

// Legislation is the adapter for the Federal Register of Legislation.
type Legislation struct {
	baseURL string
	details mdconvert.ConvertRule
}

func NewLegislation(metadataSink metadata.MetadataSink) *Legislation {
	return &Legislation{
		baseURL: LegislationBaseURL,
		details: mdconvert.NewRule(metadataSink),
	}
}

// WithBaseURL points generated links at another origin. Used in tests.
func (l *Legislation) WithBaseURL(baseURL string) *Legislation {
	l.baseURL = strings.TrimRight(baseURL, "/")
	return l
}

func (l *Legislation) Name() string {
	return legislationName
}

func (l *Legislation) CachePrefix() string {
	return legislationCachePrefix
}

func (l *Legislation) IndexURLs() []string {
	urls := make([]string, 0, len(legislationIndexCodes))
	for _, code := range legislationIndexCodes {
		urls = append(urls, l.baseURL+"/Browse/Results/ByTitle/Acts/InForce/"+code+"/0/0/principal")
	}
	return urls
}

// ExtractDetailLinks returns one /Details/<code>/Download URL per match, in
// page order.
func (l *Legislation) ExtractDetailLinks(doc *html.Node) []string {
	matches := legislationDetailPattern.FindAllStringSubmatch(renderHTML(doc), -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		links = append(links, l.baseURL+"/Details/"+m[1]+"/Download")
	}
	return links
}

// ExtractDownloadLinks returns the /Details/<code>/<guid> file links,
// de-duplicated in discovery order.
func (l *Legislation) ExtractDownloadLinks(doc *html.Node) []string {
	matches := legislationDownloadPattern.FindAllStringSubmatch(renderHTML(doc), -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		links = append(links, l.baseURL+"/Details/"+m[1])
	}
	return urlutil.Dedupe(links)
}

func (l *Legislation) ExtractMetadata(doc *html.Node, pageURL string, downloadLinks []string) Metadata {
	md := Metadata{
		MetaTags: map[string]string{},
	}
	if m := legislationCodePattern.FindStringSubmatch(pageURL); m != nil {
		md.Code = m[1]
	}
	if doc == nil {
		return md
	}

	gq := goquery.NewDocumentFromNode(doc)
	md.MetaTags = metaTags(gq)
	md.Title = md.MetaTags["title"]
	md.Description = md.MetaTags["description"]
	md.Classification = textOr(gq, classificationSelector, classificationFallback)
	md.DescriptionFull = textOr(gq, descFullSelector, descFullFallback)
	md.Admins = textOr(gq, adminsSelector, adminsFallback)

	details := gq.Find(pageDetailsSelector).First()
	if details.Length() == 0 {
		md.Warnings = append(md.Warnings, "page details html id not found for '"+md.Title+"'")
		md.PageDetails = []string{pageDetailsFallback}
		return md
	}

	converted, err := l.details.Convert(details.Get(0))
	if err != nil {
		md.Warnings = append(md.Warnings, "page details could not be rendered: "+err.Error())
		md.PageDetails = []string{collapseSpace(details.Text())}
		return md
	}
	md.PageDetails = converted.Lines()
	return md
}
