package textproc

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// genericStopwords contains common English words excluded from matching.
var genericStopwords = []string{
	"the", "a", "an", "is", "are", "was", "were", "do", "does", "did",
	"have", "has", "had", "be", "been", "being", "will", "would", "could",
	"should", "may", "might", "can", "shall", "not", "no", "and", "or",
	"but", "if", "then", "than", "so", "as", "at", "by", "for", "from",
	"in", "into", "of", "on", "to", "with", "about", "up", "out", "it",
	"its", "this", "that", "these", "those", "what", "which", "who",
	"whom", "when", "where", "why", "how", "you", "me", "i", "my", "your",
	"we", "our", "they", "their", "he", "she", "her", "him", "us", "them",
	"there", "here", "am", "very", "just", "too", "also", "any", "each",
	"more", "most", "other", "some", "such", "only", "own", "same",
}

// StopwordSet is an immutable set of terms dropped during normalization.
// Built once at startup; safe for concurrent reads.
type StopwordSet struct {
	words map[string]struct{}
}

// NewStopwordSet builds a set from the builtin generic list plus any extra
// domain terms.
func NewStopwordSet(extra ...string) *StopwordSet {
	s := &StopwordSet{words: make(map[string]struct{}, len(genericStopwords)+len(extra))}
	for _, w := range genericStopwords {
		s.words[w] = struct{}{}
	}
	for _, w := range extra {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			s.words[w] = struct{}{}
		}
	}
	return s
}

// LoadStopwords reads a newline-delimited word list and merges it with the
// builtin generic list. Lines starting with '#' are ignored.
func LoadStopwords(path string) (*StopwordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stopword file: %w", err)
	}
	defer f.Close()

	var extra []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		extra = append(extra, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stopword file: %w", err)
	}
	return NewStopwordSet(extra...), nil
}

// Contains reports whether w is a stopword. Matching is case-insensitive.
func (s *StopwordSet) Contains(w string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[strings.ToLower(w)]
	return ok
}

// Len returns the number of words in the set.
func (s *StopwordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}
