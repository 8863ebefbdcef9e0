package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avianlab/habitat-cli/internal/export"
	"github.com/avianlab/habitat-cli/internal/landcover"
	"github.com/avianlab/habitat-cli/internal/observation"
	"github.com/avianlab/habitat-cli/internal/pipeline"
	"github.com/avianlab/habitat-cli/internal/raster"
	"github.com/avianlab/habitat-cli/internal/store"
)

var (
	extractObservations string
	extractRasterDir    string
	extractOutput       string
	extractStorePath    string
	extractConcurrency  int
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract landcover composition around observation locations",
	Long: `Computes the proportion of each landcover class within a fixed-size
neighborhood of every unique (location, year) pair in the observations file,
against the matching annual landcover layer.

Example:
  habitat-cli extract --observations checklists.csv --raster-dir rasters/ --output pland.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "extract"))

		rasterDir := extractRasterDir
		if rasterDir == "" {
			rasterDir = cfg.Raster.Dir
		}
		if rasterDir == "" {
			return eris.New("extract: --raster-dir or raster.dir config is required")
		}

		loader, err := raster.OpenDir(rasterDir)
		if err != nil {
			return err
		}

		recs, ingestStats, err := observation.ReadFile(extractObservations)
		if err != nil {
			return err
		}
		sites := observation.Sites(recs)
		log.Info("observations ingested",
			zap.Int("rows", ingestStats.Read),
			zap.Int("skipped", ingestStats.Skipped),
			zap.Int("sites", len(sites)),
		)

		legend := landcover.DefaultLegend()
		opts := pipeline.Options{
			RadiusMeters: cfg.Neighborhood.RadiusMeters,
			Concurrency:  concurrencyOrDefault(extractConcurrency),
			Legend:       legend,
		}

		var st *store.Store
		var runID string
		if extractStorePath != "" {
			st, runID, err = openRun(ctx, extractStorePath, "extract", extractObservations, extractOutput)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		result, err := pipeline.ExtractObservations(ctx, loader, sites, opts)
		if err != nil {
			if st != nil {
				_ = st.FinishRun(ctx, runID, store.RunStatusFailed, pipeline.Stats{})
			}
			return eris.Wrap(err, "extract: run pipeline")
		}

		if err := export.WriteObservationCSV(extractOutput, legend, result.Rows); err != nil {
			return err
		}

		if st != nil {
			if err := st.SaveRows(ctx, runID, legend, result.Rows); err != nil {
				return err
			}
			if err := st.FinishRun(ctx, runID, store.RunStatusComplete, result.Stats); err != nil {
				return err
			}
		}

		log.Info("composition table written",
			zap.String("output", extractOutput),
			zap.Int("rows", result.Stats.Rows),
			zap.Int("dropped", result.Stats.Dropped),
			zap.Int("clamped", result.Stats.Clamped),
		)
		return nil
	},
}

// concurrencyOrDefault prefers the flag, falling back to config.
func concurrencyOrDefault(flag int) int {
	if flag > 0 {
		return flag
	}
	return cfg.Extract.Concurrency
}

// openRun opens the results store, migrates it, and records a new run.
func openRun(ctx context.Context, path, kind, input, output string) (*store.Store, string, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, "", err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck,gosec
		return nil, "", err
	}
	runID, err := st.CreateRun(ctx, kind, input, output)
	if err != nil {
		st.Close() //nolint:errcheck,gosec
		return nil, "", err
	}
	return st, runID, nil
}

func init() {
	extractCmd.Flags().StringVar(&extractObservations, "observations", "", "path to observations CSV")
	extractCmd.Flags().StringVar(&extractRasterDir, "raster-dir", "", "directory of annual landcover GeoTIFFs (*_YYYY.tif)")
	extractCmd.Flags().StringVar(&extractOutput, "output", "pland.csv", "output CSV path")
	extractCmd.Flags().StringVar(&extractStorePath, "store", "", "optional SQLite database for run bookkeeping and compositions")
	extractCmd.Flags().IntVar(&extractConcurrency, "concurrency", 0, "parallel extractions per year (default from config)")
	_ = extractCmd.MarkFlagRequired("observations")
	rootCmd.AddCommand(extractCmd)
}
