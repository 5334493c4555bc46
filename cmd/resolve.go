package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/investor-alpha/holdings-cli/internal/report"
	"github.com/investor-alpha/holdings-cli/internal/ticker"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [cusip...]",
	Short: "Resolve CUSIPs to trading symbols",
	Long: `Resolve CUSIPs to trading symbols via the local cache with remote
fallback. Pass CUSIPs as arguments, or --file with a per-fund table to
resolve every holding in it.

Lookups that fail are cached as UNKNOWN and never retried (set
ticker.negative_cache to false to retry failures on a later run).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		file, _ := cmd.Flags().GetString("file")
		if len(args) == 0 && file == "" {
			return eris.New("resolve: pass CUSIPs or --file")
		}

		type target struct{ cusip, name string }
		var targets []target
		for _, c := range args {
			targets = append(targets, target{cusip: c})
		}
		if file != "" {
			rows, err := report.ReadFundTable(file)
			if err != nil {
				return err
			}
			for _, row := range rows {
				targets = append(targets, target{cusip: row.CUSIP, name: row.IssuerName})
			}
		}

		client := ticker.NewAPIClient(cfg.Ticker.BaseURL, cfg.Ticker.APIKey)
		resolver, err := ticker.NewResolver(cfg.Ticker.CachePath, client, cfg.Ticker.NegativeCache)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CUSIP\tSYMBOL\tNAME")
		for _, t := range targets {
			symbol := resolver.Resolve(ctx, t.cusip, t.name)
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.cusip, symbol, t.name)
		}
		return w.Flush()
	},
}

func init() {
	resolveCmd.Flags().String("file", "", "per-fund table whose holdings to resolve")
	rootCmd.AddCommand(resolveCmd)
}
