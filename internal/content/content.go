// Package content classifies response bodies by file name.
package content

import "strings"

const (
	TextHTML  = "text/html"
	TextPlain = "text/plain"
)

// Type returns the MIME type for path, judged only by its suffix. Paths
// reach here already lower-cased.
func Type(path string) string {
	if strings.HasSuffix(path, ".htm") || strings.HasSuffix(path, ".html") {
		return TextHTML
	}
	return TextPlain
}
