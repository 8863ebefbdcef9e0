// Package boundary loads the study-region polygon from a shapefile and
// answers point containment for prediction-grid trimming.
package boundary

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// ReadShapefile reads every polygon record in a shapefile and merges them
// into one MultiPolygon. Coordinates are taken as-is; the file must already
// be in the landcover raster CRS.
func ReadShapefile(path string) (*geom.MultiPolygon, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	mp := geom.NewMultiPolygon(geom.XY)
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}
		appendPolygonParts(mp, poly)
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped non-polygon shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	if mp.NumPolygons() == 0 {
		return nil, eris.Errorf("boundary: no polygons found in %s", path)
	}

	return mp, nil
}

// appendPolygonParts splits a shapefile polygon record into its rings and
// pushes each exterior ring onto the MultiPolygon, attaching hole rings to
// the exterior that encloses them. Shapefile winding convention: exterior
// rings run clockwise, holes counterclockwise.
func appendPolygonParts(mp *geom.MultiPolygon, p *shp.Polygon) {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return
	}

	var exteriors []*geom.Polygon
	var holes [][]float64

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		if len(flat) < 8 { // a closed ring needs at least 4 points
			continue
		}

		if xy.IsRingCounterClockwise(geom.XY, flat) {
			holes = append(holes, flat)
			continue
		}
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		exteriors = append(exteriors, poly)
	}

	// Holes attach before the exteriors go onto the MultiPolygon: Push
	// copies coordinates, so rings added afterwards would be lost.
	for _, hole := range holes {
		attachHole(exteriors, hole)
	}

	for _, poly := range exteriors {
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon part", zap.Error(err))
		}
	}
}

// attachHole pushes a hole ring onto the exterior that encloses its first
// vertex. A hole inside no exterior is dropped.
func attachHole(exteriors []*geom.Polygon, hole []float64) {
	pt := geom.Coord{hole[0], hole[1]}
	for _, poly := range exteriors {
		if !xy.IsPointInRing(poly.Layout(), pt, poly.LinearRing(0).FlatCoords()) {
			continue
		}
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, hole)); err != nil {
			zap.L().Debug("boundary: skipping malformed hole ring", zap.Error(err))
		}
		return
	}
	zap.L().Debug("boundary: dropping hole ring enclosed by no exterior")
}

// Contains reports whether (x, y) lies inside the boundary: inside the
// exterior ring of any member polygon and outside that polygon's holes.
func Contains(mp *geom.MultiPolygon, x, y float64) bool {
	p := geom.Coord{x, y}
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		if poly.NumLinearRings() == 0 {
			continue
		}
		if !xy.IsPointInRing(poly.Layout(), p, poly.LinearRing(0).FlatCoords()) {
			continue
		}
		inHole := false
		for j := 1; j < poly.NumLinearRings(); j++ {
			if xy.IsPointInRing(poly.Layout(), p, poly.LinearRing(j).FlatCoords()) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}
