package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTable = `location_id,year,landcover_year,pland_01,pland_04,pland_12
L1,2018,2018,0.2,0.8,0
L2,2018,2018,0.4,0.6,0
L3,2019,2019,0.6,0.2,0.2
`

func TestSummarize(t *testing.T) {
	summaries, rows, err := Summarize(strings.NewReader(sampleTable))
	require.NoError(t, err)

	assert.Equal(t, 3, rows)
	require.Len(t, summaries, 3)

	s := summaries[0]
	assert.Equal(t, "pland_01", s.Column)
	assert.InDelta(t, 0.4, s.Mean, 1e-9)
	assert.InDelta(t, 0.2, s.StdDev, 1e-9)
	assert.Equal(t, 0.2, s.Min)
	assert.Equal(t, 0.6, s.Max)

	assert.Equal(t, "pland_12", summaries[2].Column)
	assert.Equal(t, 0.0, summaries[2].Min)
	assert.InDelta(t, 0.2, summaries[2].Max, 1e-9)
}

func TestSummarize_NoProportionColumns(t *testing.T) {
	_, _, err := Summarize(strings.NewReader("a,b\n1,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no proportion columns")
}

func TestSummarize_NoRows(t *testing.T) {
	_, _, err := Summarize(strings.NewReader("pland_01\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}

func TestSummarize_BadValue(t *testing.T) {
	_, _, err := Summarize(strings.NewReader("pland_01\nnotanumber\n"))
	require.Error(t, err)
}

func TestSummarizeFile_Missing(t *testing.T) {
	_, _, err := SummarizeFile("/nonexistent/pland.csv")
	require.Error(t, err)
}
