// Package textproc provides text normalization and keyword extraction for
// the retrieval pipeline. All functions are pure with respect to a
// process-lifetime stopword set.
package textproc

import (
	"strings"
	"unicode"
)

// Normalizer lowercases, strips punctuation, tokenizes and removes
// stopwords from free text.
type Normalizer struct {
	stopwords *StopwordSet
}

// NewNormalizer builds a normalizer over the given stopword set. A nil set
// disables stopword removal.
func NewNormalizer(stopwords *StopwordSet) *Normalizer {
	return &Normalizer{stopwords: stopwords}
}

// Normalize returns the lowercase, punctuation-free, stopword-filtered form
// of text with tokens joined by single spaces. Empty or all-stopword input
// yields "".
func (n *Normalizer) Normalize(text string) string {
	tokens := n.Tokens(text)
	if len(tokens) == 0 {
		return ""
	}
	return strings.Join(tokens, " ")
}

// Tokens returns the normalized token stream, preserving duplicates and
// order.
func (n *Normalizer) Tokens(text string) []string {
	words := splitWords(text)
	var out []string
	for _, w := range words {
		if n.stopwords.Contains(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// ExtractKeywords identifies candidate salient terms: content words longer
// than two characters, stopwords excluded. Duplicates collapse to a set.
func (n *Normalizer) ExtractKeywords(text string) map[string]struct{} {
	keywords := make(map[string]struct{})
	for _, w := range splitWords(text) {
		if len(w) <= 2 || n.stopwords.Contains(w) {
			continue
		}
		keywords[w] = struct{}{}
	}
	return keywords
}

// splitWords lowercases and splits on any non-alphanumeric rune.
func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
