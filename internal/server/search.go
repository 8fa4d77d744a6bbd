package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/croplore/agrihub/internal/cache"
	"github.com/croplore/agrihub/internal/chatbot"
	"github.com/croplore/agrihub/internal/retrieval"
	"github.com/croplore/agrihub/internal/textproc"
)

// SearchResult is one entry of a search listing.
type SearchResult struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Type        string            `json:"type"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Score       float64           `json:"score"`
	Confidence  string            `json:"confidence"`
}

// SearchResponse is the payload of GET /api/search.
type SearchResponse struct {
	Query       string         `json:"query"`
	Specificity string         `json:"specificity"`
	Results     []SearchResult `json:"results"`
}

type SearchHandler struct {
	Ranker *retrieval.Ranker
	Snap   *retrieval.Snapshot
}

func (h *SearchHandler) Register(g *echo.Group) {
	g.GET("/search", h.search)
}

// Search
//
//	@Summary	Rank content against a free-text query
//	@Tags		search
//	@Produce	json
//	@Param		q		query		string	true	"query text"
//	@Param		limit	query		int		false	"max results"
//	@Success	200		{object}	SearchResponse
//	@Router		/api/search [get]
func (h *SearchHandler) search(c echo.Context) error {
	query := c.QueryParam("q")
	matches := h.Ranker.Rank(query, h.Snap.Load())

	if limitRaw := c.QueryParam("limit"); limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		if limit < len(matches) {
			matches = matches[:limit]
		}
	}

	resp := SearchResponse{
		Query:       query,
		Specificity: string(retrieval.ClassifySpecificity(query)),
		Results:     make([]SearchResult, 0, len(matches)),
	}
	for _, m := range matches {
		resp.Results = append(resp.Results, SearchResult{
			Title:       m.Item.Title,
			Description: m.Item.Description,
			Type:        string(m.Item.Type),
			Metadata:    m.Item.Metadata,
			Score:       m.Score,
			Confidence:  m.Confidence,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type ChatHandler struct {
	Bot        *chatbot.Service
	Cache      cache.ChatCache
	CacheTTL   time.Duration
	Normalizer *textproc.Normalizer
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/chat", h.chat)
}

// Chat
//
//	@Summary	Answer a free-text question from the indexed content
//	@Tags		chat
//	@Accept		json
//	@Produce	json
//	@Success	200	{object}	chatbot.Response
//	@Router		/api/chat [post]
func (h *ChatHandler) chat(c echo.Context) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}

	// Cache key is the normalized message so punctuation variants share an
	// entry. An empty normalization (all stopwords) bypasses the cache.
	key := ""
	if h.Cache != nil {
		key = h.Normalizer.Normalize(req.Message)
	}
	if key != "" {
		if cached, err := h.Cache.Get(c.Request().Context(), key); err == nil {
			return c.JSON(http.StatusOK, cached)
		} else if !errors.Is(err, cache.ErrMiss) {
			c.Logger().Warnf("chat cache get: %v", err)
		}
	}

	resp := h.Bot.Respond(req.Message)

	if key != "" {
		if err := h.Cache.Set(c.Request().Context(), key, resp, h.CacheTTL); err != nil {
			c.Logger().Warnf("chat cache set: %v", err)
		}
	}
	return c.JSON(http.StatusOK, resp)
}
