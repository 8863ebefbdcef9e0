package pipeline

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/avianlab/habitat-cli/internal/boundary"
	"github.com/avianlab/habitat-cli/internal/landcover"
)

// GridCell is one prediction-surface row: a retained lattice cell center and
// the landcover composition of its neighborhood.
type GridCell struct {
	ID            int64
	X, Y          float64 // cell center, raster CRS
	LandcoverYear int
	Comp          landcover.Composition
}

// Template describes the prediction lattice so the output table can be
// reconstituted into a raster image for mapping.
type Template struct {
	OriginX       float64 `json:"origin_x"`
	OriginY       float64 `json:"origin_y"`
	CellSize      float64 `json:"cell_size"`
	Columns       int     `json:"columns"`
	Rows          int     `json:"rows"`
	Projection    string  `json:"projection,omitempty"`
	LandcoverYear int     `json:"landcover_year"`
}

// GridResult holds the prediction surface, its template, and run statistics.
type GridResult struct {
	Cells    []GridCell
	Template Template
	Stats    Stats
}

// BuildGrid generates the prediction surface: a lattice aligned to the
// landcover grid, coarsened by a whole-cell aggregation factor, trimmed to
// cells whose center falls inside the study region, each summarized against
// the most recent available layer year.
func BuildGrid(ctx context.Context, loader Loader, region *geom.MultiPolygon, opts Options) (*GridResult, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if region == nil || region.NumPolygons() == 0 {
		return nil, eris.New("pipeline: study region boundary is empty")
	}

	router, err := landcover.NewRouter(loader.Years())
	if err != nil {
		return nil, err
	}
	refYear := router.MaxYear()

	start := time.Now()

	layer, err := loader.Load(ctx, refYear)
	if err != nil {
		return nil, err
	}

	// Aggregation factor: prediction cells span a whole number of source
	// cells so aggregation is exact, never interpolated.
	factor := int(math.Round(2 * opts.RadiusMeters / layer.CellSize))
	if factor < 1 {
		factor = 1
	}
	coarseSize := float64(factor) * layer.CellSize
	cols := (layer.Width + factor - 1) / factor
	rows := (layer.Height + factor - 1) / factor

	log := zap.L().With(
		zap.Int("landcover_year", refYear),
		zap.Int("factor", factor),
		zap.Int("columns", cols),
		zap.Int("rows", rows),
	)
	log.Info("generating prediction grid")

	// The extraction neighborhood matches the coarse cell exactly.
	radius := coarseSize / 2

	var (
		mu      sync.Mutex
		cells   []GridCell
		dropped atomic.Int64
		total   int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cx := layer.OriginX + (float64(col)+0.5)*coarseSize
			cy := layer.OriginY - (float64(row)+0.5)*coarseSize

			// Cells whose center falls outside the boundary are dropped;
			// this trims the lattice's ragged edges.
			if !boundary.Contains(region, cx, cy) {
				continue
			}
			total++
			id := int64(row)*int64(cols) + int64(col)

			g.Go(func() error {
				if err := gCtx.Err(); err != nil {
					return err
				}
				reg := landcover.NewRegion(cx, cy, radius)
				codes := landcover.ExtractRegion(layer, reg)
				comp, sumErr := landcover.Summarize(codes, opts.Legend)
				if sumErr != nil {
					dropped.Add(1)
					return nil
				}
				mu.Lock()
				cells = append(cells, GridCell{
					ID:            id,
					X:             cx,
					Y:             cy,
					LandcoverYear: refYear,
					Comp:          comp,
				})
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: build grid")
	}

	sort.Slice(cells, func(i, j int) bool { return cells[i].ID < cells[j].ID })

	stats := Stats{
		Sites:    total,
		Rows:     len(cells),
		Dropped:  int(dropped.Load()),
		Years:    1,
		Duration: time.Since(start),
	}
	log.Info("prediction grid complete",
		zap.Int("cells", stats.Rows),
		zap.Int("dropped", stats.Dropped),
		zap.Duration("duration", stats.Duration),
	)

	return &GridResult{
		Cells: cells,
		Template: Template{
			OriginX:       layer.OriginX,
			OriginY:       layer.OriginY,
			CellSize:      coarseSize,
			Columns:       cols,
			Rows:          rows,
			Projection:    layer.Projection,
			LandcoverYear: refYear,
		},
		Stats: stats,
	}, nil
}
