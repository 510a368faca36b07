package nlp

import (
	"regexp"
	"strings"
)

var (
	camelBoundaryRe = regexp.MustCompile(`([a-z])([A-Z])`)
	nonAlnumRe      = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	spacesRe        = regexp.MustCompile(`\s+`)
)

// Normalize returns the canonical comparison form of text: glued camel-case words split,
// everything except ASCII letters, digits and whitespace replaced by a space,
// whitespace collapsed and trimmed, and the result lowercased.
func Normalize(text string) string {
	text = camelBoundaryRe.ReplaceAllString(text, "$1 $2")
	text = nonAlnumRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(spacesRe.ReplaceAllString(text, " "))
	return strings.ToLower(text)
}
