package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/croplore/agrihub/config"
	"github.com/croplore/agrihub/internal/cache"
	"github.com/croplore/agrihub/internal/chatbot"
	"github.com/croplore/agrihub/internal/retrieval"
	"github.com/croplore/agrihub/internal/runtime"
	"github.com/croplore/agrihub/internal/store"
	"github.com/croplore/agrihub/internal/textproc"
)

// Run wires the service and starts the HTTP listener. The corpus is built
// once here; later rebuilds go through the refresh endpoint or the cron
// scheduler and swap the snapshot atomically.
func Run(cfg *appconfig.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()
	dsn, err := runtime.BuildPostgresDSN(cfg)
	if err != nil {
		return err
	}
	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	corpusLogger := log.New(log.Writer(), "[CORPUS] ", log.LstdFlags)
	stopwords := loadStopwords(cfg.Retrieval.StopwordFile, corpusLogger)
	normalizer := textproc.NewNormalizer(stopwords)
	indexer := retrieval.NewIndexer(normalizer, cfg.Retrieval.MaxFeatures, cfg.Retrieval.MaxDocFreqRatio, corpusLogger)
	scorer := retrieval.NewSemanticScorer(cfg.Retrieval.VectorFile, nil)

	// Initial corpus; an unreachable database at startup is fatal.
	rows, err := st.FetchContentRows(ctx)
	if err != nil {
		return fmt.Errorf("initial content fetch: %w", err)
	}
	started := time.Now()
	corpus := indexer.BuildCorpus(rows)
	retrieval.ObserveRebuild(corpus, time.Since(started).Seconds(), nil)
	snap := retrieval.NewSnapshot(corpus)

	ranker := retrieval.NewRanker(normalizer, scorer, cfg.Retrieval, nil)
	bot := chatbot.NewService(ranker, snap, cfg.Chatbot, nil)

	var rdb *redis.Client
	var chatCache cache.ChatCache
	if cfg.Storage.Redis.Enabled() {
		rdb, err = cache.Conn(ctx, cfg.Storage.Redis.Addr(), cfg.Storage.Redis.Password, cfg.Storage.Redis.DB, cfg.Storage.Redis.Timeout)
		if err != nil {
			return err
		}
		chatCache = cache.NewRedisChatCache(rdb)
	}

	api := e.Group("/api")

	sh := &SearchHandler{Ranker: ranker, Snap: snap}
	sh.Register(api)

	ch := &ChatHandler{Bot: bot, Cache: chatCache, CacheTTL: cfg.Server.ChatCacheTTL, Normalizer: normalizer}
	ch.Register(api)

	cth := &ContentHandler{Store: st}
	cth.Register(api)

	rh := &RefreshHandler{Store: st, Indexer: indexer, Snap: snap, Rdb: rdb}
	rh.Register(api.Group("/corpus",
		runtime.EchoAuthMiddleware([]byte(cfg.Server.JWTSecret)),
		runtime.RequireScopes(runtime.ScopeCorpusRefresh)))

	if cfg.Server.RefreshCron != "" {
		sched := &Scheduler{
			Cron:    cfg.Server.RefreshCron,
			Refresh: rh.Rebuild,
			Rdb:     rdb,
			Stop:    make(chan struct{}),
		}
		sched.Start()
	}

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":10010"
	}
	baseLogger.Printf("listening on %s (corpus: %d items)", addr, corpus.Len())
	return e.Start(addr)
}

// loadStopwords merges the configured domain word list with the builtin
// generic list. A missing or unreadable file degrades to the builtin list.
func loadStopwords(path string, logger *log.Logger) *textproc.StopwordSet {
	if path == "" {
		return textproc.NewStopwordSet()
	}
	set, err := textproc.LoadStopwords(path)
	if err != nil {
		logger.Printf("stopword file unavailable (%v), using builtin list", err)
		return textproc.NewStopwordSet()
	}
	return set
}
