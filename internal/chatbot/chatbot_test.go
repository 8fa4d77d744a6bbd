package chatbot

import (
	"io"
	"log"
	"strings"
	"testing"

	"github.com/croplore/agrihub/config"
	"github.com/croplore/agrihub/internal/retrieval"
	"github.com/croplore/agrihub/internal/store"
	"github.com/croplore/agrihub/internal/textproc"
)

func testService(t *testing.T, rows []store.ContentRow) *Service {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	normalizer := textproc.NewNormalizer(textproc.NewStopwordSet())
	indexer := retrieval.NewIndexer(normalizer, 0, 0, logger)
	snap := retrieval.NewSnapshot(indexer.BuildCorpus(rows))
	ranker := retrieval.NewRanker(normalizer, retrieval.NullScorer{}, config.RetrievalConfig{}, logger)
	return NewService(ranker, snap, config.ChatbotConfig{}, logger)
}

func contentRows() []store.ContentRow {
	return []store.ContentRow{
		{Type: store.RowTypeFAQ, ID: "f1", Question: "How do I register an account?", Answer: "Open the app and choose sign up."},
		{Type: store.RowTypeCommodity, ID: "c1", Name: "Rice", Description: "Lowland staple grain."},
		{Type: store.RowTypeResource, ID: "r1", Title: "Rice planting calendar", Description: "Month by month planting guide."},
	}
}

func TestRespondFAQAnswerIsVerbatim(t *testing.T) {
	svc := testService(t, contentRows())
	resp := svc.Respond("how to register an account")

	if resp.NoMatch {
		t.Fatalf("expected a match for the registration question")
	}
	if resp.Answer != "Open the app and choose sign up." {
		t.Errorf("FAQ answer should be returned verbatim, got %q", resp.Answer)
	}
	if resp.ExchangeID == "" {
		t.Errorf("every response carries an exchange id")
	}
	if resp.Message != "how to register an account" {
		t.Errorf("response echoes the original message, got %q", resp.Message)
	}
}

func TestRespondNonFAQAnswerFormat(t *testing.T) {
	svc := testService(t, contentRows())
	resp := svc.Respond("rice planting calendar")

	if resp.NoMatch {
		t.Fatalf("expected a match for %q", "rice planting calendar")
	}
	if !strings.Contains(resp.Answer, ": ") {
		t.Errorf("non-FAQ answer should join title and description, got %q", resp.Answer)
	}
}

func TestRespondNoMatchFallback(t *testing.T) {
	svc := testService(t, contentRows())
	resp := svc.Respond("completely unrelated quantum physics topic please")

	if !resp.NoMatch {
		t.Fatalf("expected the no-match fallback")
	}
	if len(resp.Suggestions) == 0 {
		t.Errorf("fallback must carry generic suggestions")
	}
	if len(resp.Matches) != 0 {
		t.Errorf("no-match response should have no matches, got %d", len(resp.Matches))
	}
	if resp.Answer == "" {
		t.Errorf("fallback still answers with guidance text")
	}
}

func TestRespondSuggestionsFromRunnersUp(t *testing.T) {
	rows := []store.ContentRow{
		{Type: store.RowTypeResource, ID: "r1", Title: "Rice planting calendar", Description: "Planting guide for rice."},
		{Type: store.RowTypeResource, ID: "r2", Title: "Rice pest management", Description: "Pests that attack rice."},
		{Type: store.RowTypeFAQ, ID: "f1", Question: "Where can I buy rice seed?", Answer: "Accredited dealers sell certified rice seed."},
	}
	svc := testService(t, rows)
	resp := svc.Respond("rice")

	if resp.NoMatch {
		t.Fatalf("expected matches for %q", "rice")
	}
	if len(resp.Matches) < 2 {
		t.Skipf("need at least two matches to check suggestions, got %d", len(resp.Matches))
	}
	if len(resp.Suggestions) == 0 {
		t.Errorf("runner-up matches should produce suggestions")
	}
	for _, s := range resp.Suggestions {
		if s == resp.Matches[0].Title {
			t.Errorf("top match must not suggest itself")
		}
	}
	if len(resp.Suggestions) > 3 {
		t.Errorf("suggestions exceed default cap: %d", len(resp.Suggestions))
	}
}

func TestAnswerTextShapes(t *testing.T) {
	tests := []struct {
		item retrieval.ContentItem
		want string
	}{
		{retrieval.ContentItem{Type: retrieval.TypeFAQ, Title: "Q?", Description: "The answer."}, "The answer."},
		{retrieval.ContentItem{Type: retrieval.TypeCommodity, Title: "Rice", Description: "Staple grain."}, "Rice: Staple grain."},
		{retrieval.ContentItem{Type: retrieval.TypeCategory, Title: "Livestock", Description: ""}, "Livestock"},
	}
	for _, tt := range tests {
		if got := answerText(tt.item); got != tt.want {
			t.Errorf("answerText(%s) = %q, want %q", tt.item.Type, got, tt.want)
		}
	}
}
