package retrieval

import (
	"io"
	"log"
	"testing"

	"github.com/croplore/agrihub/config"
	"github.com/croplore/agrihub/internal/store"
	"github.com/croplore/agrihub/internal/textproc"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testCorpus(t *testing.T, rows []store.ContentRow) (*Ranker, *Corpus) {
	t.Helper()
	normalizer := textproc.NewNormalizer(textproc.NewStopwordSet())
	indexer := NewIndexer(normalizer, 0, 0, testLogger())
	corpus := indexer.BuildCorpus(rows)
	ranker := NewRanker(normalizer, NullScorer{}, config.RetrievalConfig{}, testLogger())
	return ranker, corpus
}

func hubRows() []store.ContentRow {
	return []store.ContentRow{
		{Type: store.RowTypeFAQ, ID: "f1", Question: "How do I register an account?", Answer: "Open the app, choose sign up and fill in your farm details."},
		{Type: store.RowTypeFAQ, ID: "f2", Question: "How do I reset my password?", Answer: "Use the forgot password link on the login screen."},
		{Type: store.RowTypeCommodity, ID: "c1", Name: "Rice", Description: "Staple grain grown in lowland paddies.", Category: "grains"},
		{Type: store.RowTypeCommodity, ID: "c2", Name: "Corn", Description: "Versatile grain for feed and food.", Category: "grains"},
		{Type: store.RowTypeResource, ID: "r1", Title: "Rice planting calendar", Description: "Month by month guide to rice planting.", Tags: "rice planting", Category: "guides"},
		{Type: store.RowTypeResource, ID: "r2", Title: "Pest control for vegetables", Description: "Managing common vegetable pests without chemicals.", Tags: "pest vegetables"},
		{Type: store.RowTypeForum, ID: "p1", Title: "Best fertilizer for corn?", Description: "Looking for advice on corn fertilizer timing.", Author: "juan"},
	}
}

func TestClassifySpecificity(t *testing.T) {
	tests := []struct {
		query string
		want  Specificity
	}{
		{"", VeryGeneral},
		{"rice", VeryGeneral},
		{"show all", VeryGeneral},
		{"list everything", VeryGeneral},
		{"rice planting", General},
		{"rice planting calendar", General},
		{"pest control for vegetables", SomewhatGeneral},
		{"best fertilizer timing for corn", SomewhatGeneral},
		{"how to register an account", Specific},
		{"what is the price of rice", Specific},
		{"difference between hybrid and native corn", Specific},
		{"one two three four five six seven", Specific},
	}
	for _, tt := range tests {
		if got := ClassifySpecificity(tt.query); got != tt.want {
			t.Errorf("ClassifySpecificity(%q) = %s, want %s", tt.query, got, tt.want)
		}
	}
}

func TestRankEmptyQuery(t *testing.T) {
	ranker, corpus := testCorpus(t, hubRows())
	if got := ranker.Rank("", corpus); len(got) != 0 {
		t.Errorf("empty query should return no matches, got %d", len(got))
	}
	if got := ranker.Rank("   \t ", corpus); len(got) != 0 {
		t.Errorf("whitespace query should return no matches, got %d", len(got))
	}
}

func TestRankEmptyCorpus(t *testing.T) {
	ranker, _ := testCorpus(t, hubRows())
	empty := NewIndexer(textproc.NewNormalizer(nil), 0, 0, testLogger()).BuildCorpus(nil)
	if got := ranker.Rank("rice planting", empty); len(got) != 0 {
		t.Errorf("empty corpus should return no matches, got %d", len(got))
	}
	if got := ranker.Rank("rice planting", nil); len(got) != 0 {
		t.Errorf("nil corpus should return no matches, got %d", len(got))
	}
}

func TestRankSpecificQueryExactTitle(t *testing.T) {
	ranker, corpus := testCorpus(t, hubRows())
	matches := ranker.Rank("how to register an account", corpus)
	if len(matches) == 0 {
		t.Fatalf("expected matches for a query with an exact FAQ counterpart")
	}
	top := matches[0]
	if top.Item.Type != TypeFAQ || top.Item.ID != "faq:f1" {
		t.Errorf("top match = %s (%s), want faq:f1", top.Item.ID, top.Item.Title)
	}
	if top.Components.TFIDF == 0 {
		t.Errorf("expected a lexical signal for the exact FAQ match")
	}
}

func TestRankSingleItemExactTitle(t *testing.T) {
	title := "What is the best month to plant rice"
	ranker, corpus := testCorpus(t, []store.ContentRow{
		{Type: store.RowTypeResource, ID: "r1", Title: title, Description: "Planting windows by region."},
	})
	matches := ranker.Rank(title, corpus)
	if len(matches) == 0 {
		t.Fatalf("query equal to the only title must match")
	}
	if matches[0].Item.ID != "resource:r1" {
		t.Errorf("top match = %s, want resource:r1", matches[0].Item.ID)
	}
}

func TestRankScoresOrderedAndAboveThreshold(t *testing.T) {
	normalizer := textproc.NewNormalizer(textproc.NewStopwordSet())
	indexer := NewIndexer(normalizer, 0, 0, testLogger())
	corpus := indexer.BuildCorpus(hubRows())
	cfg := config.RetrievalConfig{Threshold: 0.05, GeneralThreshold: 0.02}
	ranker := NewRanker(normalizer, NullScorer{}, cfg, testLogger())

	matches := ranker.Rank("rice planting calendar", corpus)
	if len(matches) == 0 {
		t.Fatalf("expected matches for %q", "rice planting calendar")
	}
	for i, m := range matches {
		if m.Score < 0.02 {
			t.Errorf("match %d score %f below general threshold", i, m.Score)
		}
		if i > 0 && matches[i-1].Score < m.Score {
			t.Errorf("matches not sorted: [%d]=%f < [%d]=%f", i-1, matches[i-1].Score, i, m.Score)
		}
	}
}

func TestRankDeterministic(t *testing.T) {
	ranker, corpus := testCorpus(t, hubRows())
	first := ranker.Rank("rice planting", corpus)
	second := ranker.Rank("rice planting", corpus)
	if len(first) != len(second) {
		t.Fatalf("repeated query returned %d then %d matches", len(first), len(second))
	}
	for i := range first {
		if first[i].Item.ID != second[i].Item.ID || first[i].Score != second[i].Score {
			t.Errorf("match %d differs between runs: %s/%f vs %s/%f",
				i, first[i].Item.ID, first[i].Score, second[i].Item.ID, second[i].Score)
		}
	}
}

func TestRankGeneralQueryBounds(t *testing.T) {
	ranker, corpus := testCorpus(t, hubRows())
	matches := ranker.Rank("show", corpus)
	if len(matches) > 10 {
		t.Errorf("very general query returned %d matches, cap is 10", len(matches))
	}
}

func TestRankTopKTruncation(t *testing.T) {
	rows := make([]store.ContentRow, 0, 12)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		rows = append(rows, store.ContentRow{
			Type: store.RowTypeResource, ID: id,
			Title:       "Rice guide " + id,
			Description: "Notes on rice growing " + id,
		})
	}
	ranker, corpus := testCorpus(t, rows)
	matches := ranker.Rank("guide to growing rice in lowland paddy fields", corpus)
	if len(matches) > 5 {
		t.Errorf("specific query returned %d matches, cap is 5", len(matches))
	}
}

func TestConfidenceTiers(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.9, "high"},
		{0.6, "high"},
		{0.59, "medium"},
		{0.3, "medium"},
		{0.29, "low"},
		{0, "low"},
	}
	for _, tt := range tests {
		if got := confidenceTier(tt.score); got != tt.want {
			t.Errorf("confidenceTier(%f) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestKeywordSignalTitleDominates(t *testing.T) {
	n := textproc.NewNormalizer(textproc.NewStopwordSet())
	titleItem := ContentItem{Title: "Rice planting calendar", Description: "unrelated words entirely"}
	descItem := ContentItem{Title: "Unrelated heading", Description: "rice planting calendar"}

	query := "rice planting"
	tokens := n.Tokens(query)
	keywords := n.ExtractKeywords(query)
	norm := n.Normalize(query)

	titleScore := keywordSignal(tokens, keywords, titleItem, norm, n, Specific)
	descScore := keywordSignal(tokens, keywords, descItem, norm, n, Specific)
	if titleScore <= descScore {
		t.Errorf("title overlap (%f) should outweigh description overlap (%f)", titleScore, descScore)
	}
}

func TestKeywordSignalExactTitleBonus(t *testing.T) {
	n := textproc.NewNormalizer(textproc.NewStopwordSet())
	item := ContentItem{Title: "Rice", Description: ""}
	query := "rice"
	tokens := n.Tokens(query)
	keywords := n.ExtractKeywords(query)
	norm := n.Normalize(query)

	general := keywordSignal(tokens, keywords, item, norm, n, VeryGeneral)
	specific := keywordSignal(tokens, keywords, item, norm, n, Specific)
	if general <= specific {
		t.Errorf("general tier should earn the exact-title bonus: general=%f specific=%f", general, specific)
	}
	if general > 1 {
		t.Errorf("keyword signal must be clamped to 1, got %f", general)
	}
}

func TestDiversifyCapsPerType(t *testing.T) {
	mk := func(typ ItemType, id string, score float64) ScoredMatch {
		return ScoredMatch{Item: ContentItem{ID: id, Type: typ}, Score: score}
	}
	candidates := []ScoredMatch{
		mk(TypeResource, "r1", 0.9),
		mk(TypeResource, "r2", 0.8),
		mk(TypeResource, "r3", 0.7),
		mk(TypeFAQ, "f1", 0.6),
		mk(TypeCommodity, "c1", 0.5),
		mk(TypeFAQ, "f2", 0.4),
	}

	picked := diversify(candidates, 6, 2)
	if len(picked) != 6 {
		t.Fatalf("diversify returned %d matches, want 6", len(picked))
	}
	firstPassTypes := map[ItemType]int{}
	for _, p := range picked[:5] {
		firstPassTypes[p.Item.Type]++
	}
	if firstPassTypes[TypeResource] > 2 {
		t.Errorf("first pass exceeded type cap: %v", firstPassTypes)
	}
	// r3 is skipped by the cap and comes back last through backfill.
	if picked[5].Item.ID != "r3" {
		t.Errorf("backfill slot = %s, want the capped candidate r3", picked[5].Item.ID)
	}
}

func TestDiversifySingleTypeBackfill(t *testing.T) {
	mk := func(id string, score float64) ScoredMatch {
		return ScoredMatch{Item: ContentItem{ID: id, Type: TypeResource}, Score: score}
	}
	candidates := []ScoredMatch{mk("a", 0.9), mk("b", 0.8), mk("c", 0.7), mk("d", 0.6)}
	picked := diversify(candidates, 4, 2)
	if len(picked) != 4 {
		t.Errorf("homogeneous candidates should still fill topK via backfill, got %d", len(picked))
	}
}
