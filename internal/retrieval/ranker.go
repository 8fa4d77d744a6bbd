package retrieval

import (
	"log"
	"sort"
	"strings"
	"time"

	"github.com/croplore/agrihub/config"
	"github.com/croplore/agrihub/internal/textproc"
)

// Specificity classifies how narrow a free-text query is. It selects the
// signal weights and how wide a net the ranker casts.
type Specificity string

const (
	VeryGeneral     Specificity = "very_general"
	General         Specificity = "general"
	SomewhatGeneral Specificity = "somewhat_general"
	Specific        Specificity = "specific"
)

// Marker lexicons for the specificity rule table. Phrases are matched
// against the lowercased raw query.
var (
	specificMarkers = []string{
		"how to", "how do", "how can", "step by step", "what is the",
		"difference between", "when should", "where can i",
	}
	genericMarkers = []string{
		"all", "show", "list", "everything", "anything", "info", "information",
	}
)

// ClassifySpecificity applies a deterministic rule table over word count
// and marker phrases.
func ClassifySpecificity(query string) Specificity {
	q := strings.ToLower(strings.TrimSpace(query))
	words := strings.Fields(q)
	for _, m := range specificMarkers {
		if strings.Contains(q, m) {
			return Specific
		}
	}
	hasGeneric := false
	for _, m := range genericMarkers {
		for _, w := range words {
			if w == m {
				hasGeneric = true
				break
			}
		}
	}
	switch {
	case len(words) <= 1:
		return VeryGeneral
	case len(words) <= 2 && hasGeneric:
		return VeryGeneral
	case len(words) <= 3:
		return General
	case len(words) <= 5:
		return SomewhatGeneral
	default:
		return Specific
	}
}

// IsGeneral reports whether the tier widens thresholds and diversifies.
func (s Specificity) IsGeneral() bool {
	return s == VeryGeneral || s == General
}

// ComponentScores breaks a combined score into its three signals.
type ComponentScores struct {
	TFIDF    float64 `json:"tfidf"`
	Semantic float64 `json:"semantic"`
	Keyword  float64 `json:"keyword"`
}

// ScoredMatch is an ephemeral ranking result; created per query and never
// persisted.
type ScoredMatch struct {
	Item       ContentItem
	Score      float64
	Components ComponentScores
	Confidence string
	corpusPos  int
}

// Confidence tier cutoffs over the combined score.
const (
	confidenceHighCutoff   = 0.6
	confidenceMediumCutoff = 0.3
)

func confidenceTier(score float64) string {
	switch {
	case score >= confidenceHighCutoff:
		return "high"
	case score >= confidenceMediumCutoff:
		return "medium"
	default:
		return "low"
	}
}

// Ranker scores queries against a corpus snapshot. Stateless between calls;
// safe for concurrent use.
type Ranker struct {
	normalizer *textproc.Normalizer
	semantic   SemanticScorer
	cfg        config.RetrievalConfig
	logger     *log.Logger
}

// NewRanker wires the ranker with the same normalizer used at indexing
// time and a semantic capability (use NullScorer when none is available).
func NewRanker(n *textproc.Normalizer, scorer SemanticScorer, cfg config.RetrievalConfig, logger *log.Logger) *Ranker {
	if scorer == nil {
		scorer = NullScorer{}
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[RANKER] ", log.LstdFlags)
	}
	return &Ranker{normalizer: n, semantic: scorer, cfg: cfg.Normalize(), logger: logger}
}

// Rank returns the ordered matches for query against corpus. An empty or
// whitespace query, or an empty corpus, yields an empty result. A scoring
// failure on one item excludes that item only.
func (r *Ranker) Rank(query string, corpus *Corpus) []ScoredMatch {
	if strings.TrimSpace(query) == "" || corpus.Len() == 0 {
		return nil
	}
	started := time.Now()
	spec := ClassifySpecificity(query)

	threshold := r.cfg.Threshold
	topK := r.cfg.TopK
	if spec.IsGeneral() {
		threshold = r.cfg.GeneralThreshold
		topK = r.cfg.GeneralTopK
	}
	weights := r.weightsFor(spec)

	normQuery := r.normalizer.Normalize(query)
	queryVec := corpus.Vectorizer.Transform(normQuery)
	queryTokens := strings.Fields(normQuery)
	queryKeywords := r.normalizer.ExtractKeywords(query)

	candidates := make([]ScoredMatch, 0, corpus.Len())
	for i := range corpus.Items {
		match, ok := r.scoreItem(corpus, i, queryVec, queryTokens, queryKeywords, normQuery, weights, spec)
		if !ok {
			continue
		}
		if match.Score >= threshold && match.Components.Keyword >= r.cfg.KeywordFloor {
			candidates = append(candidates, match)
		}
	}

	// Stable sort: equal scores keep corpus insertion order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if spec.IsGeneral() && len(candidates) > topK {
		candidates = diversify(candidates, topK, r.cfg.TypeCap)
	}
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	queriesTotal.WithLabelValues(string(spec)).Inc()
	queryDuration.Observe(time.Since(started).Seconds())
	return candidates
}

// scoreItem computes the blended score for one item. A panic while scoring
// a malformed item is recovered so a single item never aborts the query.
func (r *Ranker) scoreItem(corpus *Corpus, i int, queryVec Vector, queryTokens []string, queryKeywords map[string]struct{}, normQuery string, w config.SignalWeights, spec Specificity) (match ScoredMatch, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Printf("scoring item %s failed: %v", corpus.Items[i].ID, rec)
			ok = false
		}
	}()

	item := corpus.Items[i]
	tfidf := CosineSimilarity(queryVec, corpus.Vectors[i])
	semantic := r.semantic.Score(queryTokens, strings.Fields(item.NormalizedText))
	keyword := keywordSignal(queryTokens, queryKeywords, item, normQuery, r.normalizer, spec)

	score := w.TFIDF*tfidf + w.Semantic*semantic + w.Keyword*keyword
	return ScoredMatch{
		Item:       item,
		Score:      score,
		Components: ComponentScores{TFIDF: tfidf, Semantic: semantic, Keyword: keyword},
		Confidence: confidenceTier(score),
		corpusPos:  i,
	}, true
}

func (r *Ranker) weightsFor(spec Specificity) config.SignalWeights {
	switch spec {
	case VeryGeneral:
		return r.cfg.Weights.VeryGeneral
	case General:
		return r.cfg.Weights.General
	case SomewhatGeneral:
		return r.cfg.Weights.SomewhatGeneral
	default:
		return r.cfg.Weights.Specific
	}
}

// Relative weights of the keyword signal components. Title matches count
// more than description matches; extracted keywords fill the rest.
const (
	titleWeight       = 0.6
	descriptionWeight = 0.25
	extractedWeight   = 0.15
	titleExactBonus   = 0.3
)

// keywordSignal measures lexical overlap between the query and the item's
// title, description and extracted keywords. For general queries an exact
// title-substring match earns a bonus: title words carry most of the signal
// when the query itself is vague.
func keywordSignal(queryTokens []string, queryKeywords map[string]struct{}, item ContentItem, normQuery string, n *textproc.Normalizer, spec Specificity) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	querySet := make(map[string]struct{}, len(queryTokens))
	for _, t := range queryTokens {
		querySet[t] = struct{}{}
	}

	titleTokens := n.Tokens(item.Title)
	descTokens := n.Tokens(item.Description)

	score := titleWeight*overlapRatio(querySet, titleTokens) +
		descriptionWeight*overlapRatio(querySet, descTokens) +
		extractedWeight*keywordOverlapRatio(queryKeywords, item.Keywords)

	if spec.IsGeneral() && normQuery != "" {
		normTitle := n.Normalize(item.Title)
		if normTitle != "" && (strings.Contains(normTitle, normQuery) || strings.Contains(normQuery, normTitle)) {
			score += titleExactBonus
		}
	}
	if score > 1 {
		score = 1
	}
	return score
}

// overlapRatio is the fraction of query tokens present in tokens.
func overlapRatio(querySet map[string]struct{}, tokens []string) float64 {
	if len(querySet) == 0 || len(tokens) == 0 {
		return 0
	}
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = struct{}{}
	}
	hits := 0
	for t := range querySet {
		if _, ok := tokenSet[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(querySet))
}

func keywordOverlapRatio(queryKeywords, itemKeywords map[string]struct{}) float64 {
	if len(queryKeywords) == 0 || len(itemKeywords) == 0 {
		return 0
	}
	hits := 0
	for kw := range queryKeywords {
		if _, ok := itemKeywords[kw]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(queryKeywords))
}

// diversify caps how many items of one type appear in the first pass, then
// backfills remaining slots by raw score. Candidates must be sorted by
// score descending.
func diversify(candidates []ScoredMatch, topK, typeCap int) []ScoredMatch {
	if typeCap <= 0 {
		typeCap = 2
	}
	picked := make([]ScoredMatch, 0, topK)
	used := make(map[int]struct{}, topK)
	perType := make(map[ItemType]int)

	for i, c := range candidates {
		if len(picked) == topK {
			break
		}
		if perType[c.Item.Type] >= typeCap {
			continue
		}
		perType[c.Item.Type]++
		used[i] = struct{}{}
		picked = append(picked, c)
	}
	for i, c := range candidates {
		if len(picked) == topK {
			break
		}
		if _, ok := used[i]; ok {
			continue
		}
		picked = append(picked, c)
	}
	return picked
}
