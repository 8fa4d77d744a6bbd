package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/croplore/agrihub/internal/retrieval"
	"github.com/croplore/agrihub/internal/store"
)

const rebuildLockKey = "corpus:rebuild:lock"
const rebuildLockTTL = 2 * time.Minute

// RefreshHandler owns the explicit corpus rebuild trigger. A rebuild reads
// all content rows, builds a fresh corpus and swaps the snapshot; on any
// failure the previous snapshot keeps serving.
type RefreshHandler struct {
	Store   *store.Store
	Indexer *retrieval.Indexer
	Snap    *retrieval.Snapshot
	Rdb     *redis.Client
}

func (h *RefreshHandler) Register(g *echo.Group) {
	g.POST("/refresh", h.refresh)
}

// Refresh
//
//	@Summary	Rebuild the retrieval corpus from current content
//	@Tags		corpus
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Failure	409	{object}	HTTPError	"rebuild already running"
//	@Router		/api/corpus/refresh [post]
func (h *RefreshHandler) refresh(c echo.Context) error {
	ctx := c.Request().Context()
	if h.Rdb != nil {
		ok, err := h.Rdb.SetNX(ctx, rebuildLockKey, "1", rebuildLockTTL).Result()
		if err == nil && !ok {
			return echo.NewHTTPError(http.StatusConflict, "rebuild already running")
		}
		if err == nil {
			defer h.Rdb.Del(ctx, rebuildLockKey)
		}
	}

	corpus, err := h.Rebuild(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":    corpus.Len(),
		"built_at": corpus.BuiltAt,
	})
}

// Rebuild fetches content, builds a new corpus and publishes it. The swap
// happens only after the build fully succeeds.
func (h *RefreshHandler) Rebuild(ctx context.Context) (*retrieval.Corpus, error) {
	started := time.Now()
	rows, err := h.Store.FetchContentRows(ctx)
	if err != nil {
		retrieval.ObserveRebuild(nil, 0, err)
		return nil, err
	}
	corpus := h.Indexer.BuildCorpus(rows)
	h.Snap.Replace(corpus)
	retrieval.ObserveRebuild(corpus, time.Since(started).Seconds(), nil)
	return corpus, nil
}
