// Package chatbot assembles ranked retrieval matches into chat responses:
// a primary answer, follow-up suggestions, and a graceful no-match
// fallback.
package chatbot

import (
	"log"
	"strings"

	"github.com/croplore/agrihub/config"
	"github.com/croplore/agrihub/internal/retrieval"
	"github.com/google/uuid"
)

// MatchView is the presentation shape of a scored match.
type MatchView struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Type        string            `json:"type"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Score       float64           `json:"score"`
	Confidence  string            `json:"confidence"`
}

// Response is a complete chat turn.
type Response struct {
	ExchangeID  string      `json:"exchange_id"`
	Message     string      `json:"message"`
	Answer      string      `json:"answer"`
	Matches     []MatchView `json:"matches"`
	Suggestions []string    `json:"suggestions"`
	NoMatch     bool        `json:"no_match"`
}

// Service answers free-text questions against the active corpus snapshot.
type Service struct {
	ranker *retrieval.Ranker
	snap   *retrieval.Snapshot
	cfg    config.ChatbotConfig
	logger *log.Logger
}

func NewService(ranker *retrieval.Ranker, snap *retrieval.Snapshot, cfg config.ChatbotConfig, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(log.Writer(), "[CHATBOT] ", log.LstdFlags)
	}
	return &Service{ranker: ranker, snap: snap, cfg: cfg.Normalize(), logger: logger}
}

// Respond ranks the message and shapes the result. A query with no
// qualifying matches gets the generic-suggestion fallback, never an error.
func (s *Service) Respond(message string) Response {
	resp := Response{ExchangeID: uuid.NewString(), Message: message}

	matches := s.ranker.Rank(message, s.snap.Load())
	if len(matches) == 0 {
		resp.NoMatch = true
		resp.Answer = "I couldn't find a close match for that. You could try one of these instead."
		resp.Suggestions = append(resp.Suggestions, s.cfg.FallbackSuggestions...)
		return resp
	}

	top := matches[0]
	resp.Answer = answerText(top.Item)
	for _, m := range matches {
		resp.Matches = append(resp.Matches, MatchView{
			Title:       m.Item.Title,
			Description: m.Item.Description,
			Type:        string(m.Item.Type),
			Metadata:    m.Item.Metadata,
			Score:       m.Score,
			Confidence:  m.Confidence,
		})
	}
	// Follow-up suggestions come from the runner-up matches.
	for _, m := range matches[1:] {
		if len(resp.Suggestions) == s.cfg.MaxSuggestions {
			break
		}
		title := strings.TrimSpace(m.Item.Title)
		if title != "" {
			resp.Suggestions = append(resp.Suggestions, title)
		}
	}
	return resp
}

func answerText(item retrieval.ContentItem) string {
	desc := strings.TrimSpace(item.Description)
	if desc == "" {
		return strings.TrimSpace(item.Title)
	}
	if item.Type == retrieval.TypeFAQ {
		return desc
	}
	return strings.TrimSpace(item.Title) + ": " + desc
}
