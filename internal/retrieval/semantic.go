package retrieval

import (
	"bufio"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
)

// SemanticScorer measures meaning-level similarity between a query and a
// document, both given as normalized token streams. Implementations must be
// safe for concurrent use.
type SemanticScorer interface {
	Score(queryTokens, docTokens []string) float64
	Name() string
}

// NullScorer is the fallback when no word-vector resource is available.
// Ranking degrades to TF-IDF plus keyword scoring.
type NullScorer struct{}

func (NullScorer) Score(_, _ []string) float64 { return 0 }
func (NullScorer) Name() string                { return "null" }

// VectorScorer scores with pretrained word vectors: each text is averaged
// into a single embedding and compared by cosine. Tokens without coverage
// are ignored; no coverage on either side scores zero.
type VectorScorer struct {
	vectors map[string][]float64
	dim     int
}

// LoadVectorScorer parses a GloVe-style text file: one word per line
// followed by its vector components, space separated.
func LoadVectorScorer(path string) (*VectorScorer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vector file: %w", err)
	}
	defer f.Close()

	s := &VectorScorer{vectors: make(map[string][]float64)}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		word := strings.ToLower(fields[0])
		vec := make([]float64, len(fields)-1)
		ok := true
		for i, raw := range fields[1:] {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				ok = false
				break
			}
			vec[i] = v
		}
		if !ok {
			continue
		}
		if s.dim == 0 {
			s.dim = len(vec)
		}
		if len(vec) != s.dim {
			return nil, fmt.Errorf("vector file line %d: dimension %d, expected %d", line, len(vec), s.dim)
		}
		s.vectors[word] = vec
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vector file: %w", err)
	}
	if len(s.vectors) == 0 {
		return nil, fmt.Errorf("vector file %s contains no vectors", path)
	}
	return s, nil
}

func (s *VectorScorer) Name() string { return "wordvec" }

// Vocabulary returns the number of loaded word vectors.
func (s *VectorScorer) Vocabulary() int { return len(s.vectors) }

func (s *VectorScorer) Score(queryTokens, docTokens []string) float64 {
	q, qok := s.average(queryTokens)
	d, dok := s.average(docTokens)
	if !qok || !dok {
		return 0
	}
	var dot, nq, nd float64
	for i := range q {
		dot += q[i] * d[i]
		nq += q[i] * q[i]
		nd += d[i] * d[i]
	}
	if nq == 0 || nd == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(nq) * math.Sqrt(nd))
	// Clamp to [0,1]: anti-correlated texts are simply "not similar".
	if sim < 0 {
		return 0
	}
	return sim
}

func (s *VectorScorer) average(tokens []string) ([]float64, bool) {
	sum := make([]float64, s.dim)
	covered := 0
	for _, tok := range tokens {
		vec, ok := s.vectors[tok]
		if !ok {
			continue
		}
		covered++
		for i, v := range vec {
			sum[i] += v
		}
	}
	if covered == 0 {
		return nil, false
	}
	for i := range sum {
		sum[i] /= float64(covered)
	}
	return sum, true
}

// NewSemanticScorer selects the vector-backed scorer when the resource at
// path loads, otherwise the null scorer. Capability absence is a logged
// degradation, never a failure.
func NewSemanticScorer(path string, logger *log.Logger) SemanticScorer {
	if logger == nil {
		logger = log.New(log.Writer(), "[SEMANTIC] ", log.LstdFlags)
	}
	if strings.TrimSpace(path) == "" {
		logger.Printf("no word-vector file configured, semantic signal disabled")
		return NullScorer{}
	}
	scorer, err := LoadVectorScorer(path)
	if err != nil {
		logger.Printf("word vectors unavailable (%v), semantic signal disabled", err)
		return NullScorer{}
	}
	logger.Printf("loaded %d word vectors (dim=%d) from %s", scorer.Vocabulary(), scorer.dim, path)
	return scorer
}
