package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ascending-macs/mobility-cli/internal/loader"
)

var fetchShapesCmd = &cobra.Command{
	Use:   "fetch-shapes",
	Short: "Download boundary shapefiles",
	Long:  "Downloads and extracts the tract and county cartographic boundary ZIPs from the Census servers into the shapes directory.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		destDir, _ := cmd.Flags().GetString("dest")
		if destDir == "" {
			destDir = cfg.Data.ShapesDir
		}

		client := &http.Client{Timeout: time.Duration(cfg.Fetch.TimeoutSecs) * time.Second}
		limiter := rate.NewLimiter(rate.Limit(cfg.Fetch.RequestsPerSec), 1)

		targets := map[string]string{
			"tracts":   cfg.Fetch.TractURL,
			"counties": cfg.Fetch.CountyURL,
		}

		g, gctx := errgroup.WithContext(ctx)
		for name, url := range targets {
			name, url := name, url
			g.Go(func() error {
				shpPath, err := loader.FetchShapefile(gctx, client, limiter, url, filepath.Join(destDir, name))
				if err != nil {
					return eris.Wrapf(err, "fetch %s", name)
				}
				zap.L().Info("shapefile ready", zap.String("name", name), zap.String("path", shpPath))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Println("boundary shapefiles downloaded")
		return nil
	},
}

func init() {
	fetchShapesCmd.Flags().String("dest", "", "destination directory (default from config)")
	rootCmd.AddCommand(fetchShapesCmd)
}
