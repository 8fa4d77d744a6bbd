package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/croplore/agrihub/config"
	"github.com/croplore/agrihub/internal/retrieval"
	"github.com/croplore/agrihub/internal/runtime"
	"github.com/croplore/agrihub/internal/store"
)

// queryCMD ranks a query from the terminal against a freshly built corpus.
func queryCMD() *cobra.Command {
	var cfgPath string
	var query = &cobra.Command{
		Use:   "query [text...]",
		Short: "Rank a free-text query against current content",
		Args:  cobra.MinimumNArgs(1),
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
			scorer := retrieval.NewSemanticScorer(cfg.Retrieval.VectorFile, nil)
			ranker := retrieval.NewRanker(indexer.Normalizer(), scorer, cfg.Retrieval, nil)

			q := strings.Join(args, " ")
			fmt.Printf("query: %q (%s)\n", q, retrieval.ClassifySpecificity(q))
			matches := ranker.Rank(q, corpus)
			if len(matches) == 0 {
				fmt.Println("no matches")
				return nil
			}
			for i, m := range matches {
				fmt.Printf("%2d. [%.3f %s] (%s) %s\n", i+1, m.Score, m.Confidence, m.Item.Type, m.Item.Title)
				fmt.Printf("    tfidf=%.3f semantic=%.3f keyword=%.3f\n",
					m.Components.TFIDF, m.Components.Semantic, m.Components.Keyword)
			}
			return nil
		},
	}
	query.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return query
}
