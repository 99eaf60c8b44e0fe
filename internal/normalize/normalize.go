// Package normalize provides utilities for normalizing user-entered search text.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Query canonicalizes search input before it becomes part of a query
// identity: NFC composition, full-width to half-width folding, and
// whitespace collapsing. Two inputs that render identically (a common
// artifact of Korean IMEs switching width forms) normalize to the same
// string, so they dedup in history and share pagination state.
func Query(text string) string {
	text = norm.NFC.String(text)
	text = width.Narrow.String(text)
	return strings.Join(strings.Fields(text), " ")
}
