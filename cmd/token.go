package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/croplore/agrihub/config"
	"github.com/croplore/agrihub/internal/runtime"
)

// tokenCMD mints a service token for the corpus refresh endpoint.
func tokenCMD() *cobra.Command {
	var cfgPath string
	var subject string
	var ttl time.Duration

	var token = &cobra.Command{
		Use:   "token",
		Short: "Mint a service JWT with the corpus:refresh scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			signed, err := runtime.SignJWT(subject, []byte(cfg.Server.JWTSecret), ttl, runtime.ScopeCorpusRefresh)
			if err != nil {
				return err
			}
			fmt.Println(signed)
			return nil
		},
	}
	token.Flags().StringVar(&subject, "subject", "ops", "token subject")
	token.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	token.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return token
}
