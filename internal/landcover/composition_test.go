package landcover

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_SingleClass(t *testing.T) {
	legend := DefaultLegend()

	codes := make([]int, 25)
	for i := range codes {
		codes[i] = 4
	}

	comp, err := Summarize(codes, legend)
	require.NoError(t, err)

	idx, ok := legend.Index(4)
	require.True(t, ok)
	assert.Equal(t, 1.0, comp.Props[idx])
	assert.Equal(t, 25, comp.Valid)
	for i := range comp.Props {
		if i == idx {
			continue
		}
		assert.Zero(t, comp.Props[i], "class %d should be zero-filled", legend[i].Code)
	}
}

func TestSummarize_SumsToOne(t *testing.T) {
	legend := DefaultLegend()
	codes := []int{1, 1, 1, 4, 4, 12, 12, 12, 12, 13, 16}

	comp, err := Summarize(codes, legend)
	require.NoError(t, err)

	var sum float64
	for _, p := range comp.Props {
		assert.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSummarize_FixedWidth(t *testing.T) {
	legend := DefaultLegend()

	comp, err := Summarize([]int{10}, legend)
	require.NoError(t, err)
	assert.Len(t, comp.Props, len(legend))
	assert.Len(t, comp.Counts, len(legend))
}

func TestSummarize_CountRoundTrip(t *testing.T) {
	legend := DefaultLegend()
	codes := []int{1, 2, 2, 3, 3, 3, 16, 16, 16, 16}

	comp, err := Summarize(codes, legend)
	require.NoError(t, err)

	total := 0
	for _, n := range comp.Counts {
		total += n
	}
	assert.Equal(t, comp.Valid, total)
	assert.Equal(t, len(codes), total)
}

func TestSummarize_EmptyMultiset(t *testing.T) {
	_, err := Summarize(nil, DefaultLegend())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoValidCells))
}

func TestSummarize_UnknownCodesExcluded(t *testing.T) {
	legend := DefaultLegend()

	// Codes outside the legend join neither numerator nor denominator.
	comp, err := Summarize([]int{4, 4, 99, 0, -1}, legend)
	require.NoError(t, err)
	assert.Equal(t, 2, comp.Valid)

	idx, _ := legend.Index(4)
	assert.Equal(t, 1.0, comp.Props[idx])
}

func TestSummarize_OnlyUnknownCodes(t *testing.T) {
	_, err := Summarize([]int{0, 99}, DefaultLegend())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoValidCells))
}
