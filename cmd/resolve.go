package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ascending-macs/mobility-cli/internal/loader"
	"github.com/ascending-macs/mobility-cli/internal/model"
	"github.com/ascending-macs/mobility-cli/internal/pipeline"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve schools to geographies and export the linkage table",
	Long:  "Runs only the spatial resolution stages and writes the school to tract/county/commuting-zone linkage CSV.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		manifestPath, _ := cmd.Flags().GetString("manifest")
		outDir, _ := cmd.Flags().GetString("out")
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

		result, err := pipeline.Resolve(m, outDir)
		if err != nil {
			return eris.Wrap(err, "resolve")
		}

		fmt.Printf("resolved %d schools\n", len(result.Placements))
		fmt.Printf("  unresolved tract:  %d\n", result.Unresolved[model.LevelTract])
		fmt.Printf("  unresolved county: %d\n", result.Unresolved[model.LevelCounty])
		fmt.Printf("  unresolved cz:     %d\n", result.Unresolved[model.LevelCZ])
		return nil
	},
}

func init() {
	resolveCmd.Flags().String("manifest", "", "input manifest path (default from config)")
	resolveCmd.Flags().String("out", "", "output directory (default from config)")
	rootCmd.AddCommand(resolveCmd)
}
