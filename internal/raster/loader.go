package raster

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/lukeroth/gdal"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// yearPattern matches annual layer filenames like landcover_2014.tif.
var yearPattern = regexp.MustCompile(`_(\d{4})\.tiff?$`)

// DirLoader locates annual landcover GeoTIFFs in a directory and loads them
// one at a time. Layers are large, so nothing is read until Load is called;
// the caller owns the returned raster and decides when to let it go.
type DirLoader struct {
	dir   string
	paths map[int]string
}

// OpenDir scans dir for files named *_YYYY.tif and indexes them by year.
func OpenDir(dir string) (*DirLoader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "raster: read directory %s", dir)
	}

	paths := make(map[int]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := yearPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		year, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			continue
		}
		if prev, dup := paths[year]; dup {
			return nil, eris.Errorf("raster: duplicate layers for year %d: %s and %s", year, filepath.Base(prev), e.Name())
		}
		paths[year] = filepath.Join(dir, e.Name())
	}

	if len(paths) == 0 {
		return nil, eris.Errorf("raster: no annual layers (*_YYYY.tif) found in %s", dir)
	}

	return &DirLoader{dir: dir, paths: paths}, nil
}

// Years returns the available layer years in ascending order.
func (l *DirLoader) Years() []int {
	years := make([]int, 0, len(l.paths))
	for y := range l.paths {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Load reads the full layer for the given year into memory.
func (l *DirLoader) Load(ctx context.Context, year int) (*Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "raster: load cancelled")
	}

	path, ok := l.paths[year]
	if !ok {
		return nil, eris.Errorf("raster: no layer for year %d", year)
	}

	log := zap.L().With(zap.Int("year", year), zap.String("path", path))
	log.Info("loading landcover layer")

	ds, err := gdal.Open(path, gdal.ReadOnly)
	if err != nil {
		return nil, eris.Wrapf(err, "raster: open %s", path)
	}
	defer ds.Close()

	width := ds.RasterXSize()
	height := ds.RasterYSize()
	gt := ds.GeoTransform()

	// Rotated or sheared rasters are not supported.
	if gt[2] != 0 || gt[4] != 0 {
		return nil, eris.Errorf("raster: %s has a rotated geotransform", path)
	}
	cellSize := gt[1]
	if cellSize <= 0 || gt[5] >= 0 {
		return nil, eris.Errorf("raster: %s is not north-up with positive cell size", path)
	}

	band := ds.RasterBand(1)
	noData, hasNoData := band.NoDataValue()
	if !hasNoData {
		noData = defaultNoData
	}

	cells := make([]int32, width*height)
	if err := band.IO(gdal.Read, 0, 0, width, height, cells, width, height, 0, 0); err != nil {
		return nil, eris.Wrapf(err, "raster: read band from %s", path)
	}

	r, err := New(year, width, height, gt[0], gt[3], cellSize, int(noData), cells)
	if err != nil {
		return nil, err
	}
	r.Projection = ds.Projection()

	log.Info("landcover layer loaded",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Float64("cell_size", cellSize),
	)
	return r, nil
}

// defaultNoData is used when a layer carries no explicit no-data value.
// 255 is the fill value of the source landcover product.
const defaultNoData = 255
