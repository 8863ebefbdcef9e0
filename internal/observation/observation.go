// Package observation ingests checklist observation records from CSV.
package observation

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Count is an observation count as reported on a checklist. The source data
// marks a species seen but not counted with an "X"; that is resolved here,
// once, into an explicit tagged value instead of leaking into the pipeline.
type Count struct {
	Present bool
	Known   bool // false for "X" markers
	N       int
}

// UnmarshalText implements encoding.TextUnmarshaler for csvutil decoding.
func (c *Count) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "":
		*c = Count{}
		return nil
	case strings.EqualFold(s, "X"):
		*c = Count{Present: true, Known: false}
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return eris.Errorf("observation: invalid count %q", s)
	}
	if n < 0 {
		return eris.Errorf("observation: negative count %d", n)
	}
	*c = Count{Present: n > 0, Known: true, N: n}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Count) MarshalText() ([]byte, error) {
	if !c.Present {
		return []byte("0"), nil
	}
	if !c.Known {
		return []byte("X"), nil
	}
	return []byte(strconv.Itoa(c.N)), nil
}

// Record is one checklist observation row. X and Y carry coordinates already
// projected into the landcover raster CRS; the pipeline never reprojects.
type Record struct {
	LocationID string  `csv:"location_id"`
	Latitude   float64 `csv:"latitude"`
	Longitude  float64 `csv:"longitude"`
	X          float64 `csv:"x"`
	Y          float64 `csv:"y"`
	Year       int     `csv:"year"`
	Count      Count   `csv:"observation_count"`
}

// Site is a unique (location, year) pair to extract covariates for. Duplicate
// observations of the same location and year collapse to one site, since
// their neighborhoods are identical by construction.
type Site struct {
	LocationID string
	Year       int
	X, Y       float64
}

// Sites deduplicates records into extraction sites, keeping the coordinates
// of the first record seen for each (location, year) pair. Order follows
// first appearance in the input.
func Sites(recs []Record) []Site {
	type key struct {
		loc  string
		year int
	}
	seen := make(map[key]bool, len(recs))
	var sites []Site
	for _, r := range recs {
		k := key{r.LocationID, r.Year}
		if seen[k] {
			continue
		}
		seen[k] = true
		sites = append(sites, Site{
			LocationID: r.LocationID,
			Year:       r.Year,
			X:          r.X,
			Y:          r.Y,
		})
	}
	return sites
}
