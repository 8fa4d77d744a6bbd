package retrieval

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	corpusItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agrihub_corpus_items",
		Help: "Number of content items in the active corpus snapshot.",
	})
	rebuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agrihub_corpus_rebuilds_total",
		Help: "Corpus rebuild attempts by result.",
	}, []string{"result"})
	rebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agrihub_corpus_rebuild_duration_seconds",
		Help:    "Time spent rebuilding the corpus.",
		Buckets: prometheus.DefBuckets,
	})
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agrihub_queries_total",
		Help: "Ranking queries by classified specificity.",
	}, []string{"specificity"})
	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agrihub_query_duration_seconds",
		Help:    "Time spent ranking a query.",
		Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	})
)

// ObserveRebuild records a rebuild outcome and, on success, the new corpus
// size.
func ObserveRebuild(c *Corpus, seconds float64, err error) {
	if err != nil {
		rebuildsTotal.WithLabelValues("failure").Inc()
		return
	}
	rebuildsTotal.WithLabelValues("success").Inc()
	rebuildDuration.Observe(seconds)
	corpusItems.Set(float64(c.Len()))
}
