package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/investor-alpha/holdings-cli/internal/edgar"
	"github.com/investor-alpha/holdings-cli/internal/fetcher"
	"github.com/investor-alpha/holdings-cli/internal/holdings"
	"github.com/investor-alpha/holdings-cli/internal/pipeline"
	"github.com/investor-alpha/holdings-cli/internal/store"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Fetch and aggregate the latest 13F filing per fund",
	Long: `Fetch the latest 13F filing for every configured fund, parse its
holdings table, aggregate into weighted holdings, and write one CSV per fund
to the processed directory. Funds with no filing, an empty holdings document,
or a zero-value portfolio are skipped and the run continues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "pipeline"))

		funds, err := selectFunds(cmd)
		if err != nil {
			return err
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.EDGAR.UserAgent,
			Timeout:    time.Duration(cfg.EDGAR.TimeoutSecs) * time.Second,
			MaxRetries: cfg.EDGAR.MaxRetries,
		})
		locator := edgar.NewClient(f, edgar.Options{
			DataBaseURL:     cfg.EDGAR.DataBaseURL,
			ArchivesBaseURL: cfg.EDGAR.ArchivesBaseURL,
		})
		parser := holdings.NewParser(f)

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		p := pipeline.New(locator, parser, st, pipeline.Options{
			FormType:     cfg.EDGAR.FormType,
			ProcessedDir: cfg.Output.ProcessedDir,
			FundPause:    time.Duration(cfg.EDGAR.FundPauseSecs) * time.Second,
		})

		log.Info("starting pipeline", zap.Int("funds", len(funds)))

		summary, err := p.Run(ctx, funds)
		if err != nil {
			return eris.Wrap(err, "pipeline")
		}

		fmt.Printf("Pipeline complete: %d funds processed, %d skipped\n",
			summary.Processed, summary.Skipped)
		return nil
	},
}

func init() {
	pipelineCmd.Flags().StringSlice("funds", nil, "restrict to specific fund names (default: full universe)")
	rootCmd.AddCommand(pipelineCmd)
}

// selectFunds returns the configured universe, narrowed by --funds if set.
func selectFunds(cmd *cobra.Command) (map[string]string, error) {
	universe := cfg.FundMap()

	names, _ := cmd.Flags().GetStringSlice("funds")
	if len(names) == 0 {
		return universe, nil
	}

	selected := make(map[string]string, len(names))
	for _, name := range names {
		cik, ok := universe[name]
		if !ok {
			return nil, eris.Errorf("unknown fund %q (see `holdings-cli funds`)", name)
		}
		selected[name] = cik
	}
	return selected, nil
}

// initStore opens the configured run-history store.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return store.NewSQLite(cfg.Store.Path)
	}
}
