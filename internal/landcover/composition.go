package landcover

import "github.com/rotisserie/eris"

// ErrNoValidCells marks a neighborhood with zero valid raster cells: entirely
// outside the raster or entirely no-data. Callers drop the row rather than
// emit undefined proportions.
var ErrNoValidCells = eris.New("landcover: neighborhood contains no valid cells")

// Composition is the proportion of each legend class within one neighborhood.
// Props is legend-aligned, zero-filled for absent classes, and sums to 1 over
// the valid cells actually found.
type Composition struct {
	Props  []float64
	Counts []int
	Valid  int // valid cells in the denominator
}

// Summarize tallies a multiset of class codes into a composition vector.
// Codes not present in the legend are ignored entirely: they join neither the
// numerator nor the denominator. Returns ErrNoValidCells when nothing remains.
func Summarize(codes []int, legend Legend) (Composition, error) {
	counts := make([]int, len(legend))
	valid := 0
	for _, code := range codes {
		i, ok := legend.Index(code)
		if !ok {
			continue
		}
		counts[i]++
		valid++
	}

	if valid == 0 {
		return Composition{}, ErrNoValidCells
	}

	props := make([]float64, len(legend))
	for i, n := range counts {
		props[i] = float64(n) / float64(valid)
	}

	return Composition{Props: props, Counts: counts, Valid: valid}, nil
}
