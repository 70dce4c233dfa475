package record

import (
	"sort"
	"strings"
	"time"

	"github.com/rohmanhakim/legaldata/pkg/timeutil"
)

/*
Record is the sidecar describing one document and the files saved for it.

Invariants
- On success len(SavedFilenames) == len(DownloadLinks)
- A resource that could not be transferred is absent from SavedFilenames;
  no empty placeholder is ever written
- SavedFilenames follows download-link discovery order
*/
type Record struct {
	Code            string            `json:"code"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	DescriptionFull string            `json:"description_full,omitempty"`
	Classification  string            `json:"classification,omitempty"`
	Admins          string            `json:"admins,omitempty"`
	PageDetails     []string          `json:"page_details,omitempty"`
	MetaTags        map[string]string `json:"meta_tags"`
	PageURL         string            `json:"page_url"`
	DownloadLinks   []string          `json:"download_links"`
	LoadedFromCache bool              `json:"loaded_from_cache"`
	CrawlDate       string            `json:"crawl_date"`
	SavedFilenames  []string          `json:"saved_filenames"`
	ContentHashes   map[string]string `json:"content_hashes,omitempty"`
	Site            string            `json:"site"`
}

// New returns a Record stamped with the crawl date, with empty (non-nil)
// collections so the sidecar always serializes lists as [].
func New(site string, code string, pageURL string, crawledAt time.Time) Record {
	return Record{
		Code:           code,
		Site:           site,
		PageURL:        pageURL,
		MetaTags:       map[string]string{},
		DownloadLinks:  []string{},
		SavedFilenames: []string{},
		ContentHashes:  map[string]string{},
		CrawlDate:      timeutil.FormatCrawlDate(crawledAt),
	}
}

// AddSaved appends a saved file (basename) and its content hash.
func (r *Record) AddSaved(filename string, hash string) {
	r.SavedFilenames = append(r.SavedFilenames, filename)
	if hash == "" {
		return
	}
	if r.ContentHashes == nil {
		r.ContentHashes = map[string]string{}
	}
	r.ContentHashes[filename] = hash
}

// Complete reports whether every download link produced a saved file.
func (r Record) Complete() bool {
	return len(r.SavedFilenames) == len(r.DownloadLinks)
}

// Compare orders records solely by Code.
func Compare(a, b Record) int {
	return strings.Compare(a.Code, b.Code)
}

// Sort orders records by Code, keeping discovery order for equal codes.
func Sort(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return Compare(records[i], records[j]) < 0
	})
}
