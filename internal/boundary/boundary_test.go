package boundary

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func square(t *testing.T, minX, minY, maxX, maxY float64, holes ...[]float64) *geom.Polygon {
	t.Helper()
	poly := geom.NewPolygon(geom.XY)
	outer := geom.NewLinearRingFlat(geom.XY, []float64{
		minX, minY, maxX, minY, maxX, maxY, minX, maxY, minX, minY,
	})
	require.NoError(t, poly.Push(outer))
	for _, h := range holes {
		require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY, h)))
	}
	return poly
}

func TestContains_SimpleSquare(t *testing.T) {
	mp := geom.NewMultiPolygon(geom.XY)
	require.NoError(t, mp.Push(square(t, 0, 0, 10, 10)))

	assert.True(t, Contains(mp, 5, 5))
	assert.True(t, Contains(mp, 0.5, 9.5))
	assert.False(t, Contains(mp, 11, 5))
	assert.False(t, Contains(mp, -1, -1))
}

func TestContains_Hole(t *testing.T) {
	hole := []float64{4, 4, 6, 4, 6, 6, 4, 6, 4, 4}
	mp := geom.NewMultiPolygon(geom.XY)
	require.NoError(t, mp.Push(square(t, 0, 0, 10, 10, hole)))

	assert.False(t, Contains(mp, 5, 5), "points in holes are outside")
	assert.True(t, Contains(mp, 2, 2))
}

func TestContains_MultiplePolygons(t *testing.T) {
	mp := geom.NewMultiPolygon(geom.XY)
	require.NoError(t, mp.Push(square(t, 0, 0, 10, 10)))
	require.NoError(t, mp.Push(square(t, 20, 20, 30, 30)))

	assert.True(t, Contains(mp, 5, 5))
	assert.True(t, Contains(mp, 25, 25))
	assert.False(t, Contains(mp, 15, 15))
}

func TestAppendPolygonParts_Donut(t *testing.T) {
	// Exterior winds clockwise, the hole counterclockwise, per the
	// shapefile convention.
	donut := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 5},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0},
			{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6}, {X: 4, Y: 4},
		},
	}

	mp := geom.NewMultiPolygon(geom.XY)
	appendPolygonParts(mp, donut)

	require.Equal(t, 1, mp.NumPolygons(), "the hole joins the exterior, it is not an island")
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings())
	assert.False(t, Contains(mp, 5, 5), "the hole center is outside the boundary")
	assert.True(t, Contains(mp, 2, 2))
	assert.False(t, Contains(mp, 11, 5))
}

func TestAppendPolygonParts_HoleAttachesToEnclosingExterior(t *testing.T) {
	// Two disjoint exteriors; the hole ring comes last and belongs to the
	// second one.
	record := &shp.Polygon{
		NumParts: 3,
		Parts:    []int32{0, 5, 10},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0},
			{X: 20, Y: 0}, {X: 20, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 0}, {X: 20, Y: 0},
			{X: 24, Y: 4}, {X: 26, Y: 4}, {X: 26, Y: 6}, {X: 24, Y: 6}, {X: 24, Y: 4},
		},
	}

	mp := geom.NewMultiPolygon(geom.XY)
	appendPolygonParts(mp, record)

	require.Equal(t, 2, mp.NumPolygons())
	assert.True(t, Contains(mp, 5, 5), "first exterior has no hole")
	assert.False(t, Contains(mp, 25, 5), "hole center in the second exterior")
	assert.True(t, Contains(mp, 21, 1))
}

func TestAppendPolygonParts_OrphanHoleDropped(t *testing.T) {
	record := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 5},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0},
			// Counterclockwise ring far outside the exterior.
			{X: 50, Y: 50}, {X: 60, Y: 50}, {X: 60, Y: 60}, {X: 50, Y: 60}, {X: 50, Y: 50},
		},
	}

	mp := geom.NewMultiPolygon(geom.XY)
	appendPolygonParts(mp, record)

	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 1, mp.Polygon(0).NumLinearRings())
	assert.False(t, Contains(mp, 55, 55))
}

func TestReadShapefile_Missing(t *testing.T) {
	_, err := ReadShapefile("/nonexistent/region.shp")
	require.Error(t, err)
}
