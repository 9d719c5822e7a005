package domain

import (
	"regexp"
	"strings"
)

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeContent canonicalizes text for exact matching: lowercase, strip
// non-word and non-space characters, collapse whitespace runs, trim.
// Two items are exact duplicates when their normalized forms are byte-equal.
func NormalizeContent(text string) string {
	text = strings.ToLower(text)
	text = nonWordRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
