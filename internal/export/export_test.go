package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avianlab/habitat-cli/internal/landcover"
	"github.com/avianlab/habitat-cli/internal/pipeline"
)

func testComposition(t *testing.T, legend landcover.Legend, codes []int) landcover.Composition {
	t.Helper()
	comp, err := landcover.Summarize(codes, legend)
	require.NoError(t, err)
	return comp
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestWriteObservationCSV(t *testing.T) {
	legend := landcover.DefaultLegend()
	rows := []pipeline.Row{
		{LocationID: "L1", Year: 2018, LandcoverYear: 2018, Comp: testComposition(t, legend, []int{4, 4, 12})},
		{LocationID: "L2", Year: 2023, LandcoverYear: 2019, Comp: testComposition(t, legend, []int{13})},
	}

	path := filepath.Join(t.TempDir(), "pland.csv")
	require.NoError(t, WriteObservationCSV(path, legend, rows))

	recs := readCSV(t, path)
	require.Len(t, recs, 3)

	header := recs[0]
	require.Len(t, header, 3+len(legend), "exactly K proportion columns")
	assert.Equal(t, []string{"location_id", "year", "landcover_year"}, header[:3])
	assert.Equal(t, "pland_01", header[3])
	assert.Equal(t, "pland_16", header[len(header)-1])

	// Clamped year is visible as a separate column.
	assert.Equal(t, "2023", recs[2][1])
	assert.Equal(t, "2019", recs[2][2])

	// Proportions round-trip and sum to 1.
	for _, rec := range recs[1:] {
		var sum float64
		for _, s := range rec[3:] {
			v, parseErr := strconv.ParseFloat(s, 64)
			require.NoError(t, parseErr)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestWriteGridCSV(t *testing.T) {
	legend := landcover.DefaultLegend()
	cells := []pipeline.GridCell{
		{ID: 0, X: 250, Y: 750, LandcoverYear: 2019, Comp: testComposition(t, legend, []int{4})},
		{ID: 2, X: 250, Y: 250, LandcoverYear: 2019, Comp: testComposition(t, legend, []int{12, 12, 4})},
	}

	path := filepath.Join(t.TempDir(), "grid.csv")
	require.NoError(t, WriteGridCSV(path, legend, cells))

	recs := readCSV(t, path)
	require.Len(t, recs, 3)
	require.Len(t, recs[0], 4+len(legend))
	assert.Equal(t, []string{"cell_id", "x", "y", "landcover_year"}, recs[0][:4])
	assert.Equal(t, "0", recs[1][0])
	assert.Equal(t, "2", recs[2][0])
}

func TestWriteTemplate(t *testing.T) {
	tpl := pipeline.Template{
		OriginX:       0,
		OriginY:       1000,
		CellSize:      500,
		Columns:       2,
		Rows:          2,
		LandcoverYear: 2019,
	}

	path := filepath.Join(t.TempDir(), "grid.template.json")
	require.NoError(t, WriteTemplate(path, tpl))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cell_size": 500`)
	assert.Contains(t, string(data), `"landcover_year": 2019`)
}

func TestWriteObservationCSV_BadPath(t *testing.T) {
	err := WriteObservationCSV("/nonexistent/dir/out.csv", landcover.DefaultLegend(), nil)
	require.Error(t, err)
}
