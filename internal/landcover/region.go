package landcover

// Region is an axis-aligned square neighborhood around a point, in the raster
// coordinate system. Regions are transient: built per point, never persisted.
type Region struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewRegion builds the neighborhood square of half-width radius centered on
// (x, y). Coordinates must already be in the raster CRS; the builder does not
// reproject. Radius is validated once at configuration time, not here.
func NewRegion(x, y, radius float64) Region {
	return Region{
		MinX: x - radius,
		MinY: y - radius,
		MaxX: x + radius,
		MaxY: y + radius,
	}
}

// Contains reports whether a point falls inside the region. The lower edges
// are inclusive and the upper edges exclusive, so a cell center on a shared
// boundary belongs to exactly one of two adjacent regions.
func (r Region) Contains(x, y float64) bool {
	return x >= r.MinX && x < r.MaxX && y >= r.MinY && y < r.MaxY
}
