package main

import (
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/investor-alpha/holdings-cli/internal/consensus"
	"github.com/investor-alpha/holdings-cli/internal/report"
)

var consensusCmd = &cobra.Command{
	Use:   "consensus",
	Short: "Build the cross-fund consensus report",
	Long: `Load every per-fund table from the processed directory, cluster
holdings across funds by normalized issuer name, and write a single consensus
report ranked by how many funds hold each name. The report file is
overwritten on each run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := zap.L().With(zap.String("command", "consensus"))

		tables, err := report.LoadFundTables(cfg.Output.ProcessedDir)
		if err != nil {
			return eris.Wrap(err, "consensus: load fund tables")
		}
		if len(tables) == 0 {
			return eris.Errorf("no fund tables in %s; run `holdings-cli pipeline` first", cfg.Output.ProcessedDir)
		}

		var positions int
		for _, t := range tables {
			positions += len(t.Rows)
		}
		log.Info("loaded fund tables",
			zap.Int("funds", len(tables)),
			zap.Int("positions", positions),
		)

		rows := consensus.Build(tables)

		outPath := filepath.Join(cfg.Output.AnalysisDir, "consensus_report.csv")
		if err := report.WriteConsensusTable(outPath, rows); err != nil {
			return eris.Wrap(err, "consensus: write report")
		}

		if len(rows) > 0 {
			fmt.Printf("Top consensus stock: %s (owned by %d funds)\n",
				rows[0].StockName, rows[0].GuruCount)
		}
		fmt.Printf("Consensus report saved: %d rows from %d funds -> %s\n",
			len(rows), len(tables), outPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(consensusCmd)
}
