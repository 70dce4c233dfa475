package storage

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rohmanhakim/legaldata/pkg/keyutil"
)

// mediaExtensions covers the document formats served by the supported sites.
// Anything else falls back to the system MIME table.
var mediaExtensions = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/rtf":                         ".rtf",
	"text/rtf":                                ".rtf",
	"text/plain":                              ".txt",
	"text/html":                               ".html",
	"application/xhtml+xml":                   ".html",
	"text/xml":                                ".xml",
	"application/xml":                         ".xml",
	"application/zip":                         ".zip",
	"application/x-zip-compressed":            ".zip",
	"application/epub+zip":                    ".epub",
	"application/vnd.oasis.opendocument.text": ".odt",
}

// ExtensionForMediaType maps a media type to a file extension including the
// leading dot. It returns "" for unknown types.
func ExtensionForMediaType(mediaType string) string {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "" {
		return ""
	}
	if ext, ok := mediaExtensions[mediaType]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}

// ResolveHeaders extracts the attachment filename and the extension of the
// body from response headers.
func ResolveHeaders(header http.Header) HeaderInfo {
	info := HeaderInfo{
		Filename: dispositionFilename(header.Get("Content-Disposition")),
	}

	contentType := header.Get("Content-Type")
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
		}
		info.MediaType = strings.ToLower(mediaType)
		info.Extension = ExtensionForMediaType(info.MediaType)
	}
	return info
}

func dispositionFilename(disposition string) string {
	if disposition == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := params["filename"]; name != "" {
			return filepath.Base(name)
		}
	}
	// Some servers send unquoted names with spaces, which the strict parser
	// rejects.
	idx := strings.Index(strings.ToLower(disposition), "filename=")
	if idx < 0 {
		return ""
	}
	name := disposition[idx+len("filename="):]
	if semi := strings.Index(name, ";"); semi >= 0 {
		name = name[:semi]
	}
	name = strings.Trim(strings.TrimSpace(name), `"'`)
	if name == "" {
		return ""
	}
	return filepath.Base(name)
}

// ComputeFilename builds the output filename of a resource:
//
//	<namePrefix><titleKey>_<bodyName>[<headerExtension>]
//
// bodyName is the canonical header filename when the server sent one,
// otherwise the raw URL basename. The extension is appended only when the
// name does not already end with it. The result is lower-cased.
func ComputeFilename(
	titleHint string,
	namePrefix string,
	headerFilename string,
	headerExtension string,
	urlBasename string,
) string {
	titleKey, _ := keyutil.CanonicalizeOptional(titleHint)

	bodyName := urlBasename
	if strings.TrimSpace(headerFilename) != "" {
		bodyName = keyutil.Canonicalize(headerFilename)
	}

	name := namePrefix + titleKey + "_" + bodyName
	if headerExtension != "" && !strings.HasSuffix(strings.ToLower(name), strings.ToLower(headerExtension)) {
		name += headerExtension
	}
	return strings.ToLower(name)
}

// SidecarBase returns the basename (without extension) of a document's
// sidecar: the last saved file without its extension, or
// <namePrefix><titleKey>_<code> when nothing was saved.
func SidecarBase(savedFilenames []string, namePrefix string, titleHint string, code string) string {
	if n := len(savedFilenames); n > 0 {
		last := savedFilenames[n-1]
		return strings.TrimSuffix(last, filepath.Ext(last))
	}
	titleKey, _ := keyutil.CanonicalizeOptional(titleHint)
	return strings.ToLower(namePrefix + titleKey + "_" + keyutil.Canonicalize(code))
}
