package storage

// HeaderInfo is what the response headers say about a downloaded file.
type HeaderInfo struct {
	// Filename from Content-Disposition, empty when absent.
	Filename string
	// MediaType is the Content-Type without parameters, lower-cased.
	MediaType string
	// Extension including the leading dot, empty when the media type is unknown.
	Extension string
}

// Known reports whether an extension could be resolved.
func (h HeaderInfo) Known() bool {
	return h.Extension != ""
}

// Persistence

type PlaceResult struct {
	filename    string
	path        string
	contentHash string
	collided    bool
}

func NewPlaceResult(
	filename string,
	path string,
	contentHash string,
	collided bool,
) PlaceResult {
	return PlaceResult{
		filename:    filename,
		path:        path,
		contentHash: contentHash,
		collided:    collided,
	}
}

// Filename is the basename written into the record.
func (p PlaceResult) Filename() string {
	return p.filename
}

func (p PlaceResult) Path() string {
	return p.path
}

func (p PlaceResult) ContentHash() string {
	return p.contentHash
}

// Collided reports that another link already wrote this destination in the
// current run and was overwritten.
func (p PlaceResult) Collided() bool {
	return p.collided
}
