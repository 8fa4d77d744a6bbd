package retrieval

import (
	"math"
	"sort"
	"strings"
)

// Vector is a sparse TF-IDF vector keyed by feature index.
type Vector map[int]float64

// Vectorizer is a fitted TF-IDF vector space over unigram and bigram
// features. Immutable after FitVectorizer; safe for concurrent use.
type Vectorizer struct {
	vocab map[string]int
	idf   []float64
	docs  int
}

// FitVectorizer learns a vocabulary and IDF weights from the given
// documents (already normalized, space-separated). Features are unigrams
// plus bigrams, capped at maxFeatures by document frequency. Terms present
// in more than maxDFRatio of the documents are excluded as near-universal;
// the cutoff only engages once the corpus has more than one document.
func FitVectorizer(docs []string, maxFeatures int, maxDFRatio float64) *Vectorizer {
	v := &Vectorizer{vocab: make(map[string]int), docs: len(docs)}
	if len(docs) == 0 {
		return v
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range ngrams(doc) {
			seen[term] = struct{}{}
		}
		for term := range seen {
			df[term]++
		}
	}

	type termDF struct {
		term string
		df   int
	}
	candidates := make([]termDF, 0, len(df))
	for term, n := range df {
		if len(docs) > 1 && float64(n)/float64(len(docs)) > maxDFRatio {
			continue
		}
		candidates = append(candidates, termDF{term, n})
	}
	// Highest-df terms first so the feature cap keeps the best-covered
	// vocabulary; term order breaks ties for determinism.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].df != candidates[j].df {
			return candidates[i].df > candidates[j].df
		}
		return candidates[i].term < candidates[j].term
	})
	if maxFeatures > 0 && len(candidates) > maxFeatures {
		candidates = candidates[:maxFeatures]
	}

	v.idf = make([]float64, len(candidates))
	for i, c := range candidates {
		v.vocab[c.term] = i
		v.idf[i] = math.Log(float64(1+len(docs))/float64(1+c.df)) + 1
	}
	return v
}

// Features returns the vocabulary size.
func (v *Vectorizer) Features() int { return len(v.vocab) }

// Transform maps a normalized document into the fitted vector space. The
// result is L2-normalized so cosine similarity reduces to a dot product.
// Documents sharing no vocabulary with the corpus yield an empty vector.
func (v *Vectorizer) Transform(doc string) Vector {
	vec := make(Vector)
	if len(v.vocab) == 0 {
		return vec
	}
	counts := make(map[int]int)
	total := 0
	for _, term := range ngrams(doc) {
		total++
		if idx, ok := v.vocab[term]; ok {
			counts[idx]++
		}
	}
	if total == 0 || len(counts) == 0 {
		return vec
	}
	var norm float64
	for idx, c := range counts {
		w := (float64(c) / float64(total)) * v.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for idx := range vec {
		vec[idx] /= norm
	}
	return vec
}

// CosineSimilarity between two vectors. Transform output is already
// unit-length, but norms are recomputed so arbitrary vectors work too.
func CosineSimilarity(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot, na, nb float64
	for idx, w := range a {
		na += w * w
		if bw, ok := b[idx]; ok {
			dot += w * bw
		}
	}
	for _, w := range b {
		nb += w * w
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// ngrams expands a normalized document into unigram and bigram features.
func ngrams(doc string) []string {
	tokens := strings.Fields(doc)
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
