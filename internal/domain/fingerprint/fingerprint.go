// Package fingerprint extracts lightweight structural features from raw
// text and scores structural similarity between two fingerprints. It is the
// cheap middle stage of the duplicate detection cascade: no embeddings, no
// I/O, derived on demand and never persisted.
package fingerprint

import (
	"regexp"
	"strings"
)

// Element tags detected in text.
const (
	ElementNumberedList = "numbered_list"
	ElementBulletList   = "bullet_list"
	ElementHeader       = "header"
	ElementTemplateVar  = "template_var"
	ElementCodeBlock    = "code_block"
	ElementLink         = "link"
	ElementTable        = "table"
	ElementBlockQuote   = "block_quote"
)

// Blend weights for Similarity. They sum to 1 so the result stays in [0,1].
const (
	weightElements = 0.30
	weightLength   = 0.20
	weightWords    = 0.20
	weightLines    = 0.15
	weightFeatures = 0.15
)

var (
	numberedListRe = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	bulletListRe   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	headerRe       = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	templateVarRe  = regexp.MustCompile(`\{\{[^}]+\}\}|\{[A-Za-z_][A-Za-z0-9_]*\}`)
	codeBlockRe    = regexp.MustCompile("(?s)```.*?```|(?m)^ {4}\\S")
	linkRe         = regexp.MustCompile(`\[[^\]]*\]\([^)]+\)|https?://\S+`)
	tableRe        = regexp.MustCompile(`(?m)^\s*\|.+\|\s*$`)
	blockQuoteRe   = regexp.MustCompile(`(?m)^\s*>\s?`)
)

// Fingerprint is a transient structural summary of a text.
type Fingerprint struct {
	Elements   map[string]bool
	Length     int
	WordCount  int
	LineCount  int
	HasCode    bool
	HasLinks   bool
	HasHeaders bool
}

// Extract derives a fingerprint from raw text.
func Extract(text string) Fingerprint {
	elements := make(map[string]bool)

	checks := []struct {
		tag string
		re  *regexp.Regexp
	}{
		{ElementNumberedList, numberedListRe},
		{ElementBulletList, bulletListRe},
		{ElementHeader, headerRe},
		{ElementTemplateVar, templateVarRe},
		{ElementCodeBlock, codeBlockRe},
		{ElementLink, linkRe},
		{ElementTable, tableRe},
		{ElementBlockQuote, blockQuoteRe},
	}
	for _, c := range checks {
		if c.re.MatchString(text) {
			elements[c.tag] = true
		}
	}

	return Fingerprint{
		Elements:   elements,
		Length:     len(text),
		WordCount:  len(strings.Fields(text)),
		LineCount:  strings.Count(text, "\n") + 1,
		HasCode:    elements[ElementCodeBlock],
		HasLinks:   elements[ElementLink],
		HasHeaders: elements[ElementHeader],
	}
}

// Similarity returns a weighted structural similarity in [0,1].
// Every sub-term is symmetric, so the blend is symmetric by construction.
func Similarity(a, b Fingerprint) float64 {
	return weightElements*elementOverlap(a.Elements, b.Elements) +
		weightLength*countSimilarity(a.Length, b.Length) +
		weightWords*countSimilarity(a.WordCount, b.WordCount) +
		weightLines*countSimilarity(a.LineCount, b.LineCount) +
		weightFeatures*featureAgreement(a, b)
}

// elementOverlap returns |A∩B| / max(|A|,|B|), 0 when both sets are empty.
func elementOverlap(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	var shared int
	for tag := range a {
		if b[tag] {
			shared++
		}
	}

	larger := len(a)
	if len(b) > larger {
		larger = len(b)
	}
	return float64(shared) / float64(larger)
}

// countSimilarity returns 1 - |a-b|/max(a,b), treating two zero counts as equal.
func countSimilarity(a, b int) float64 {
	if a == b {
		return 1
	}

	larger := a
	diff := a - b
	if b > a {
		larger = b
		diff = b - a
	}
	return 1 - float64(diff)/float64(larger)
}

// featureAgreement returns the fraction of the code/links/headers booleans
// that agree between a and b.
func featureAgreement(a, b Fingerprint) float64 {
	var agree int
	if a.HasCode == b.HasCode {
		agree++
	}
	if a.HasLinks == b.HasLinks {
		agree++
	}
	if a.HasHeaders == b.HasHeaders {
		agree++
	}
	return float64(agree) / 3
}
