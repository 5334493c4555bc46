package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/investor-alpha/holdings-cli/internal/model"
	"github.com/investor-alpha/holdings-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List pipeline run history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		fund, _ := cmd.Flags().GetString("fund")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Fund:   fund,
			Status: model.RunStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		return formatRunsList(os.Stdout, runs)
	},
}

func formatRunsList(out io.Writer, runs []model.PipelineRun) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tFUND\tSTATUS\tREASON\tFILED\tHOLDINGS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Fund, r.Status, r.SkipReason, r.FilingDate, r.Holdings,
		)
	}
	return w.Flush()
}

func init() {
	runsCmd.Flags().String("fund", "", "filter by fund name")
	runsCmd.Flags().String("status", "", "filter by status: ok, skipped")
	runsCmd.Flags().Int("limit", 50, "maximum rows")
	rootCmd.AddCommand(runsCmd)
}
