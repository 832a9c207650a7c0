package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ascending-macs/mobility-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded run summaries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ledger, err := store.NewLedger(cfg.Ledger.Path)
		if err != nil {
			return err
		}
		defer ledger.Close() //nolint:errcheck
		if err := ledger.Migrate(cmd.Context()); err != nil {
			return err
		}

		runs, err := ledger.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tSCHOOLS\tUNRESOLVED(T/C/CZ)\tEXCLUDED\tJOINED(C/CZ)\tDROPPED(A/M)")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d/%d\t%d\t%d/%d\t%d/%d\n",
				shortID(r.ID),
				r.StartedAt.Format("2006-01-02 15:04"),
				r.Schools,
				r.UnresolvedTract, r.UnresolvedCounty, r.UnresolvedCZ,
				r.ExcludedCells,
				r.CountyJoined, r.CZJoined,
				r.DroppedAggregates, r.DroppedMobility,
			)
		}
		return w.Flush()
	},
}

// shortID truncates a run ID for display; short or hand-edited IDs pass
// through unchanged.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
