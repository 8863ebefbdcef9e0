// Package pipeline orchestrates habitat covariate extraction: it routes sites
// onto layer years, loads each layer once, and fans extraction out over sites.
package pipeline

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/avianlab/habitat-cli/internal/landcover"
	"github.com/avianlab/habitat-cli/internal/observation"
	"github.com/avianlab/habitat-cli/internal/raster"
)

// Loader supplies annual landcover layers. Implementations load lazily; the
// pipeline holds at most one year in memory at a time.
type Loader interface {
	Years() []int
	Load(ctx context.Context, year int) (*raster.Raster, error)
}

// Options configures an extraction run.
type Options struct {
	// RadiusMeters is the neighborhood half-width in raster CRS units.
	RadiusMeters float64
	// Concurrency bounds parallel per-site extraction within a year.
	Concurrency int
	Legend      landcover.Legend
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.Legend == nil {
		o.Legend = landcover.DefaultLegend()
	}
	return o
}

func (o Options) validate() error {
	if o.RadiusMeters <= 0 {
		return eris.Errorf("pipeline: neighborhood radius must be positive, got %f", o.RadiusMeters)
	}
	return nil
}

// Row is one output record: the composition of a site's neighborhood.
// LandcoverYear differs from Year when the router clamped.
type Row struct {
	LocationID    string
	Year          int
	LandcoverYear int
	Comp          landcover.Composition
}

// Stats summarizes an extraction run.
type Stats struct {
	Sites    int
	Rows     int
	Dropped  int // sites with no valid cells in the neighborhood
	Clamped  int // sites whose year was clamped to the last layer year
	Years    int // distinct layer years loaded
	Duration time.Duration
}

// Result holds the output table and run statistics.
type Result struct {
	Rows  []Row
	Stats Stats
}

// ExtractObservations computes one composition row per site. Sites sharing a
// routed layer year are processed together against a single in-memory layer,
// released before the next year loads. Sites with no valid cells are dropped
// and counted, never emitted as undefined rows.
func ExtractObservations(ctx context.Context, loader Loader, sites []observation.Site, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	router, err := landcover.NewRouter(loader.Years())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	log := zap.L().With(zap.Int("sites", len(sites)))

	// Route every site up front so a bad observation year fails the run
	// before any layer is loaded.
	type routed struct {
		site observation.Site
		year int
	}
	byYear := make(map[int][]routed)
	var clamped int
	for _, s := range sites {
		layerYear, wasClamped, routeErr := router.Route(s.Year)
		if routeErr != nil {
			return nil, routeErr
		}
		if wasClamped {
			clamped++
			zap.L().Debug("pipeline: observation year clamped to last layer year",
				zap.String("location_id", s.LocationID),
				zap.Int("year", s.Year),
				zap.Int("landcover_year", layerYear),
			)
		}
		byYear[layerYear] = append(byYear[layerYear], routed{site: s, year: layerYear})
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	var (
		mu      sync.Mutex
		rows    []Row
		dropped atomic.Int64
		ref     *raster.Raster
	)

	for _, year := range years {
		layer, loadErr := loader.Load(ctx, year)
		if loadErr != nil {
			return nil, loadErr
		}
		if ref == nil {
			ref = gridRef(layer)
		} else if !layer.AlignedWith(ref) {
			return nil, eris.Errorf("pipeline: layer %d is not aligned with layer %d", year, ref.Year)
		}

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Concurrency)

		for _, rt := range byYear[year] {
			g.Go(func() error {
				if err := gCtx.Err(); err != nil {
					return err
				}
				region := landcover.NewRegion(rt.site.X, rt.site.Y, opts.RadiusMeters)
				codes := landcover.ExtractRegion(layer, region)
				comp, sumErr := landcover.Summarize(codes, opts.Legend)
				if sumErr != nil {
					// A data gap drops the row, never the batch.
					dropped.Add(1)
					zap.L().Debug("pipeline: dropping site with no valid cells",
						zap.String("location_id", rt.site.LocationID),
						zap.Int("year", rt.site.Year),
					)
					return nil
				}
				mu.Lock()
				rows = append(rows, Row{
					LocationID:    rt.site.LocationID,
					Year:          rt.site.Year,
					LandcoverYear: rt.year,
					Comp:          comp,
				})
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, eris.Wrapf(err, "pipeline: extract year %d", year)
		}
	}

	// Output order is irrelevant to correctness but stable output files diff
	// cleanly across runs.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].LocationID != rows[j].LocationID {
			return rows[i].LocationID < rows[j].LocationID
		}
		return rows[i].Year < rows[j].Year
	})

	stats := Stats{
		Sites:    len(sites),
		Rows:     len(rows),
		Dropped:  int(dropped.Load()),
		Clamped:  clamped,
		Years:    len(years),
		Duration: time.Since(start),
	}
	log.Info("extraction complete",
		zap.Int("rows", stats.Rows),
		zap.Int("dropped", stats.Dropped),
		zap.Int("clamped", stats.Clamped),
		zap.Int("years", stats.Years),
		zap.Duration("duration", stats.Duration),
	)

	return &Result{Rows: rows, Stats: stats}, nil
}

// gridRef keeps only the grid metadata of a layer for alignment checks,
// letting the cell data itself be collected between years.
func gridRef(r *raster.Raster) *raster.Raster {
	ref, err := raster.New(r.Year, 1, 1, r.OriginX, r.OriginY, r.CellSize, r.NoData, make([]int32, 1))
	if err != nil {
		return r
	}
	ref.Projection = r.Projection
	return ref
}
