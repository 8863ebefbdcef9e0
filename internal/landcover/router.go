package landcover

import (
	"sort"

	"github.com/rotisserie/eris"
)

// Router maps observation years onto available landcover layer years.
// The landcover product stops being produced before observations do, so years
// past the last layer are clamped to it. Clamping is an approximation the
// output must keep visible, never silent data loss.
type Router struct {
	min, max int
}

// NewRouter builds a router over the available layer years. Years must be
// non-empty and contiguous; a gap means a required annual layer is missing,
// which is a configuration problem, not something to paper over at runtime.
func NewRouter(years []int) (Router, error) {
	if len(years) == 0 {
		return Router{}, eris.New("landcover: no layer years available")
	}
	sorted := make([]int, len(years))
	copy(sorted, years)
	sort.Ints(sorted)

	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			return Router{}, eris.Errorf("landcover: missing layer years between %d and %d", sorted[i-1], sorted[i])
		}
	}
	return Router{min: sorted[0], max: sorted[len(sorted)-1]}, nil
}

// MaxYear returns the most recent available layer year, the reference year
// for prediction surfaces.
func (r Router) MaxYear() int { return r.max }

// MinYear returns the earliest available layer year.
func (r Router) MinYear() int { return r.min }

// Route returns the layer year to use for an observation year and whether the
// year was clamped. Observation years before the earliest layer cannot be
// approximated by reuse and are an error.
func (r Router) Route(obsYear int) (layerYear int, clamped bool, err error) {
	if obsYear < r.min {
		return 0, false, eris.Errorf("landcover: observation year %d precedes earliest layer year %d", obsYear, r.min)
	}
	if obsYear > r.max {
		return r.max, true, nil
	}
	return obsYear, false, nil
}
