package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ascending-macs/mobility-cli/internal/loader"
	"github.com/ascending-macs/mobility-cli/internal/pipeline"
	"github.com/ascending-macs/mobility-cli/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline",
	Long:  "Loads the manifest's input tables, resolves schools to geographies, aggregates per county and commuting zone, joins with the mobility tables, and writes the output CSVs.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		manifestPath, _ := cmd.Flags().GetString("manifest")
		outDir, _ := cmd.Flags().GetString("out")
		noLedger, _ := cmd.Flags().GetBool("no-ledger")
		if manifestPath == "" {
			manifestPath = cfg.Data.Manifest
		}
		if outDir == "" {
			outDir = cfg.Data.OutputDir
		}

		m, err := loader.LoadManifest(manifestPath)
		if err != nil {
			return err
		}

		var ledger *store.Ledger
		if !noLedger {
			ledger, err = store.NewLedger(cfg.Ledger.Path)
			if err != nil {
				return err
			}
			defer ledger.Close() //nolint:errcheck
			if err := ledger.Migrate(ctx); err != nil {
				return err
			}
		}

		summary, err := pipeline.Run(ctx, m, outDir, ledger)
		if err != nil {
			if eris.Is(err, loader.ErrDataFormat) {
				zap.L().Error("input data format error", zap.Error(err))
			}
			return eris.Wrap(err, "run")
		}

		fmt.Printf("run %s complete\n", summary.ID)
		fmt.Printf("  schools:            %d\n", summary.Schools)
		fmt.Printf("  unresolved (tract/county/cz): %d/%d/%d\n",
			summary.UnresolvedTract, summary.UnresolvedCounty, summary.UnresolvedCZ)
		fmt.Printf("  excluded cells:     %d\n", summary.ExcludedCells)
		fmt.Printf("  joined (county/cz): %d/%d\n", summary.CountyJoined, summary.CZJoined)
		fmt.Printf("  join drops (agg/mobility): %d/%d\n",
			summary.DroppedAggregates, summary.DroppedMobility)
		return nil
	},
}

func init() {
	runCmd.Flags().String("manifest", "", "input manifest path (default from config)")
	runCmd.Flags().String("out", "", "output directory (default from config)")
	runCmd.Flags().Bool("no-ledger", false, "skip recording the run summary")
	rootCmd.AddCommand(runCmd)
}
