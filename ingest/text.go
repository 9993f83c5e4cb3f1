package ingest

import (
	"strings"
	"unicode/utf8"
)

// previewText treats content as UTF-8 text, replacing invalid bytes and
// capping the preview length.
func previewText(content []byte, limit int) string {
	var s string
	if utf8.Valid(content) {
		s = string(content)
	} else {
		s = strings.ToValidUTF8(string(content), "�")
	}
	return truncate(strings.TrimSpace(s), limit)
}
