package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/croplore/agrihub/config"
	"github.com/croplore/agrihub/internal/retrieval"
	"github.com/croplore/agrihub/internal/runtime"
	"github.com/croplore/agrihub/internal/store"
	"github.com/croplore/agrihub/internal/textproc"
)

// rebuildCMD builds the corpus once from current database content and
// prints its stats. Useful as a sanity check after content changes.
func rebuildCMD() *cobra.Command {
	var cfgPath string
	var rebuild = &cobra.Command{
		Use:   "rebuild",
		Short: "Build the retrieval corpus once and report its size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			ctx := context.Background()

			dsn, err := runtime.BuildPostgresDSN(cfg)
			if err != nil {
				return err
			}
			st, err := store.NewWithDSN(ctx, dsn)
			if err != nil {
				return err
			}
			rows, err := st.FetchContentRows(ctx)
			if err != nil {
				return err
			}

			indexer := newIndexer(cfg)
			corpus := indexer.BuildCorpus(rows)
			fmt.Printf("corpus: %d items from %d rows, %d features, built at %s\n",
				corpus.Len(), len(rows), corpus.Vectorizer.Features(), corpus.BuiltAt.Format("15:04:05"))
			return nil
		},
	}
	rebuild.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return rebuild
}

func newIndexer(cfg *config.Config) *retrieval.Indexer {
	logger := log.New(log.Writer(), "[CORPUS] ", log.LstdFlags)
	stopwords := textproc.NewStopwordSet()
	if cfg.Retrieval.StopwordFile != "" {
		if loaded, err := textproc.LoadStopwords(cfg.Retrieval.StopwordFile); err == nil {
			stopwords = loaded
		} else {
			logger.Printf("stopword file unavailable (%v), using builtin list", err)
		}
	}
	normalizer := textproc.NewNormalizer(stopwords)
	return retrieval.NewIndexer(normalizer, cfg.Retrieval.MaxFeatures, cfg.Retrieval.MaxDocFreqRatio, logger)
}
