package retrieval

import (
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/croplore/agrihub/internal/store"
	"github.com/croplore/agrihub/internal/textproc"
)

// Corpus is the indexed collection of content items plus the fitted TF-IDF
// vector space over their normalized text. Immutable once built; a refresh
// produces a brand-new Corpus published via Snapshot.
type Corpus struct {
	Items      []ContentItem
	Vectorizer *Vectorizer
	Vectors    []Vector
	BuiltAt    time.Time
}

// Len returns the number of indexed items.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// Indexer builds corpora from raw content rows.
type Indexer struct {
	normalizer      *textproc.Normalizer
	maxFeatures     int
	maxDocFreqRatio float64
	logger          *log.Logger
}

// NewIndexer builds a corpus indexer over the given normalizer.
func NewIndexer(n *textproc.Normalizer, maxFeatures int, maxDocFreqRatio float64, logger *log.Logger) *Indexer {
	if maxFeatures <= 0 {
		maxFeatures = 5000
	}
	if maxDocFreqRatio <= 0 || maxDocFreqRatio > 1 {
		maxDocFreqRatio = 0.8
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[CORPUS] ", log.LstdFlags)
	}
	return &Indexer{normalizer: n, maxFeatures: maxFeatures, maxDocFreqRatio: maxDocFreqRatio, logger: logger}
}

// Normalizer exposes the indexer's normalizer so rankers share the same
// stopword set.
func (ix *Indexer) Normalizer() *textproc.Normalizer { return ix.normalizer }

// BuildCorpus projects rows into content items and fits the TF-IDF space.
// Rows that fail to project are logged and skipped; a corpus with zero
// items is a valid degenerate result. The input is only read.
func (ix *Indexer) BuildCorpus(rows []store.ContentRow) *Corpus {
	items := make([]ContentItem, 0, len(rows))
	for _, row := range rows {
		item, err := NewContentItem(row, ix.normalizer)
		if err != nil {
			if errors.Is(err, ErrEmptyText) {
				ix.logger.Printf("skipping %s row %s: no indexable text", row.Type, row.ID)
			} else {
				ix.logger.Printf("skipping row %s: %v", row.ID, err)
			}
			continue
		}
		items = append(items, item)
	}

	docs := make([]string, len(items))
	for i, item := range items {
		docs[i] = item.NormalizedText
	}
	vectorizer := FitVectorizer(docs, ix.maxFeatures, ix.maxDocFreqRatio)
	vectors := make([]Vector, len(items))
	for i, doc := range docs {
		vectors[i] = vectorizer.Transform(doc)
	}

	ix.logger.Printf("corpus built: %d items (%d rows), %d features", len(items), len(rows), vectorizer.Features())
	return &Corpus{Items: items, Vectorizer: vectorizer, Vectors: vectors, BuiltAt: time.Now()}
}

// Snapshot publishes the active corpus. Readers always observe a fully
// built corpus; Replace swaps the pointer atomically so in-flight ranking
// calls finish against the snapshot they captured.
type Snapshot struct {
	ptr atomic.Pointer[Corpus]
}

// NewSnapshot starts with the given corpus (may be nil).
func NewSnapshot(c *Corpus) *Snapshot {
	s := &Snapshot{}
	if c != nil {
		s.ptr.Store(c)
	}
	return s
}

// Load returns the active corpus, or nil when none has been published.
func (s *Snapshot) Load() *Corpus { return s.ptr.Load() }

// Replace publishes a new corpus.
func (s *Snapshot) Replace(c *Corpus) { s.ptr.Store(c) }
