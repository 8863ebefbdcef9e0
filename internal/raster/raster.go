// Package raster provides the in-memory categorical raster model and the
// GDAL-backed loader for annual landcover layers.
package raster

import (
	"math"

	"github.com/rotisserie/eris"
)

// alignTolerance is the maximum coordinate drift, in raster CRS units, allowed
// when checking that two layers share the same cell grid.
const alignTolerance = 1e-6

// Raster is a single-band categorical raster: one landcover class code per
// cell, north-up, square cells. Read-only after construction.
type Raster struct {
	Year       int
	Width      int
	Height     int
	OriginX    float64 // X of the top-left corner
	OriginY    float64 // Y of the top-left corner
	CellSize   float64
	Projection string
	NoData     int

	cells []int32 // row-major, Width*Height
}

// New constructs a Raster over the given row-major cell values.
func New(year, width, height int, originX, originY, cellSize float64, noData int, cells []int32) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, eris.Errorf("raster: invalid dimensions %dx%d", width, height)
	}
	if cellSize <= 0 {
		return nil, eris.Errorf("raster: invalid cell size %f", cellSize)
	}
	if len(cells) != width*height {
		return nil, eris.Errorf("raster: got %d cells, want %d", len(cells), width*height)
	}
	return &Raster{
		Year:     year,
		Width:    width,
		Height:   height,
		OriginX:  originX,
		OriginY:  originY,
		CellSize: cellSize,
		NoData:   noData,
		cells:    cells,
	}, nil
}

// Value returns the class code at (col, row). The second return is false when
// the cell is outside the raster or holds the no-data sentinel.
func (r *Raster) Value(col, row int) (int, bool) {
	if col < 0 || col >= r.Width || row < 0 || row >= r.Height {
		return 0, false
	}
	v := int(r.cells[row*r.Width+col])
	if v == r.NoData {
		return 0, false
	}
	return v, true
}

// CellCenter returns the world coordinates of the center of cell (col, row).
func (r *Raster) CellCenter(col, row int) (x, y float64) {
	x = r.OriginX + (float64(col)+0.5)*r.CellSize
	y = r.OriginY - (float64(row)+0.5)*r.CellSize
	return x, y
}

// ColRow returns the cell indices containing the world coordinate (x, y).
// The result may be outside [0,Width)x[0,Height); callers clamp as needed.
func (r *Raster) ColRow(x, y float64) (col, row int) {
	col = int(math.Floor((x - r.OriginX) / r.CellSize))
	row = int(math.Floor((r.OriginY - y) / r.CellSize))
	return col, row
}

// Extent returns the bounding box of the raster in world coordinates.
func (r *Raster) Extent() (minX, minY, maxX, maxY float64) {
	minX = r.OriginX
	maxX = r.OriginX + float64(r.Width)*r.CellSize
	maxY = r.OriginY
	minY = r.OriginY - float64(r.Height)*r.CellSize
	return minX, minY, maxX, maxY
}

// AlignedWith reports whether two rasters share cell size, projection, and a
// congruent cell grid, so neighborhoods computed against one apply to the other.
func (r *Raster) AlignedWith(o *Raster) bool {
	if math.Abs(r.CellSize-o.CellSize) > alignTolerance {
		return false
	}
	if r.Projection != o.Projection {
		return false
	}
	// Origins must differ by a whole number of cells.
	dx := math.Mod(math.Abs(r.OriginX-o.OriginX), r.CellSize)
	dy := math.Mod(math.Abs(r.OriginY-o.OriginY), r.CellSize)
	nearZero := func(d float64) bool {
		return d < alignTolerance || r.CellSize-d < alignTolerance
	}
	return nearZero(dx) && nearZero(dy)
}
