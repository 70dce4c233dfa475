package keyutil

import "strings"

// Unnamed is returned when an input sanitizes to nothing.
const Unnamed = "unnamed"

// Canonicalize maps an arbitrary string (usually a URL or a document title)
// to a key that is safe to use as a file name on every target filesystem.
//
// Rules, applied in order:
//   - lower-case
//   - strip a leading http:// or https://
//   - "/" becomes "_"
//   - drop everything outside [a-z0-9 _.()-]
//   - spaces become "_"
//   - trim leading and trailing "_"
//
// Canonicalize is pure, total and idempotent. It never returns an empty string.
func Canonicalize(raw string) string {
	s := strings.ToLower(raw)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '/' || r == ' ':
			b.WriteByte('_')
		case isKeyRune(r):
			b.WriteRune(r)
		}
	}

	key := strings.Trim(b.String(), "_")
	if key == "" {
		return Unnamed
	}
	return key
}

// CanonicalizeOptional is Canonicalize for optional inputs such as a title
// that may not exist. A blank input reports absence instead of a key.
func CanonicalizeOptional(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	return Canonicalize(raw), true
}

func isKeyRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.' || r == '(' || r == ')' || r == '-':
		return true
	}
	return false
}
