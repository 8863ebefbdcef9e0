package landcover

import "github.com/avianlab/habitat-cli/internal/raster"

// ExtractRegion returns the class codes of every raster cell whose center
// falls inside the region. Cells outside the raster extent and no-data cells
// contribute nothing; near study-area edges the result may hold fewer codes
// than the nominal neighborhood cell count.
func ExtractRegion(r *raster.Raster, reg Region) []int {
	// Candidate cell index window for the region.
	c0, r0 := r.ColRow(reg.MinX, reg.MaxY)
	c1, r1 := r.ColRow(reg.MaxX, reg.MinY)

	if c0 < 0 {
		c0 = 0
	}
	if r0 < 0 {
		r0 = 0
	}
	if c1 >= r.Width {
		c1 = r.Width - 1
	}
	if r1 >= r.Height {
		r1 = r.Height - 1
	}

	var codes []int
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			x, y := r.CellCenter(col, row)
			if !reg.Contains(x, y) {
				continue
			}
			if v, ok := r.Value(col, row); ok {
				codes = append(codes, v)
			}
		}
	}
	return codes
}
