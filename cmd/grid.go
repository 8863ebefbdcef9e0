package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avianlab/habitat-cli/internal/boundary"
	"github.com/avianlab/habitat-cli/internal/export"
	"github.com/avianlab/habitat-cli/internal/landcover"
	"github.com/avianlab/habitat-cli/internal/pipeline"
	"github.com/avianlab/habitat-cli/internal/raster"
	"github.com/avianlab/habitat-cli/internal/store"
)

var (
	gridBoundary    string
	gridRasterDir   string
	gridOutput      string
	gridTemplate    string
	gridStorePath   string
	gridConcurrency int
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Build the prediction-surface composition table",
	Long: `Generates a regular lattice over the study region, aligned to the
landcover raster grid, and computes neighborhood composition for every cell
whose center falls inside the boundary, against the most recent layer year.

Example:
  habitat-cli grid --boundary region.shp --raster-dir rasters/ --output grid.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "grid"))

		rasterDir := gridRasterDir
		if rasterDir == "" {
			rasterDir = cfg.Raster.Dir
		}
		if rasterDir == "" {
			return eris.New("grid: --raster-dir or raster.dir config is required")
		}

		loader, err := raster.OpenDir(rasterDir)
		if err != nil {
			return err
		}

		region, err := boundary.ReadShapefile(gridBoundary)
		if err != nil {
			return err
		}

		legend := landcover.DefaultLegend()
		opts := pipeline.Options{
			RadiusMeters: cfg.Neighborhood.RadiusMeters,
			Concurrency:  concurrencyOrDefault(gridConcurrency),
			Legend:       legend,
		}

		var st *store.Store
		var runID string
		if gridStorePath != "" {
			st, runID, err = openRun(ctx, gridStorePath, "grid", gridBoundary, gridOutput)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		result, err := pipeline.BuildGrid(ctx, loader, region, opts)
		if err != nil {
			if st != nil {
				_ = st.FinishRun(ctx, runID, store.RunStatusFailed, pipeline.Stats{})
			}
			return eris.Wrap(err, "grid: build surface")
		}

		if err := export.WriteGridCSV(gridOutput, legend, result.Cells); err != nil {
			return err
		}

		templatePath := gridTemplate
		if templatePath == "" {
			templatePath = gridOutput + ".template.json"
		}
		if err := export.WriteTemplate(templatePath, result.Template); err != nil {
			return err
		}

		if st != nil {
			if err := st.SaveCells(ctx, runID, legend, result.Cells); err != nil {
				return err
			}
			if err := st.FinishRun(ctx, runID, store.RunStatusComplete, result.Stats); err != nil {
				return err
			}
		}

		log.Info("prediction surface written",
			zap.String("output", gridOutput),
			zap.String("template", templatePath),
			zap.Int("cells", result.Stats.Rows),
			zap.Int("dropped", result.Stats.Dropped),
		)
		return nil
	},
}

func init() {
	gridCmd.Flags().StringVar(&gridBoundary, "boundary", "", "study region boundary shapefile (.shp)")
	gridCmd.Flags().StringVar(&gridRasterDir, "raster-dir", "", "directory of annual landcover GeoTIFFs (*_YYYY.tif)")
	gridCmd.Flags().StringVar(&gridOutput, "output", "grid.csv", "output CSV path")
	gridCmd.Flags().StringVar(&gridTemplate, "template", "", "grid template JSON path (default <output>.template.json)")
	gridCmd.Flags().StringVar(&gridStorePath, "store", "", "optional SQLite database for run bookkeeping")
	gridCmd.Flags().IntVar(&gridConcurrency, "concurrency", 0, "parallel extractions (default from config)")
	_ = gridCmd.MarkFlagRequired("boundary")
	rootCmd.AddCommand(gridCmd)
}
