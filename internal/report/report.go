// Package report computes per-class summary statistics over a composition
// table, for a quick look at covariate distributions before modeling.
package report

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"

	"github.com/avianlab/habitat-cli/internal/export"
)

// ClassSummary holds distribution statistics for one proportion column.
type ClassSummary struct {
	Column string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// SummarizeFile reads a composition CSV produced by the extract or grid
// commands and summarizes every proportion column. Returns the summaries and
// the number of data rows read.
func SummarizeFile(path string) ([]ClassSummary, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "report: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return Summarize(f)
}

// Summarize reads composition CSV data and summarizes the pland_* columns.
func Summarize(r io.Reader) ([]ClassSummary, int, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, 0, eris.Wrap(err, "report: read header")
	}

	var propIdx []int
	var propCols []string
	for i, col := range header {
		if strings.HasPrefix(col, export.PropColumnPrefix+"_") {
			propIdx = append(propIdx, i)
			propCols = append(propCols, col)
		}
	}
	if len(propIdx) == 0 {
		return nil, 0, eris.New("report: no proportion columns found")
	}

	values := make([][]float64, len(propIdx))
	rows := 0
	for {
		rec, readErr := cr.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, 0, eris.Wrap(readErr, "report: read row")
		}
		for j, i := range propIdx {
			v, parseErr := strconv.ParseFloat(rec[i], 64)
			if parseErr != nil {
				return nil, 0, eris.Wrapf(parseErr, "report: parse %s", header[i])
			}
			values[j] = append(values[j], v)
		}
		rows++
	}
	if rows == 0 {
		return nil, 0, eris.New("report: no data rows")
	}

	summaries := make([]ClassSummary, len(propIdx))
	for j, col := range propCols {
		vs := values[j]
		min, max := vs[0], vs[0]
		for _, v := range vs[1:] {
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
		summaries[j] = ClassSummary{
			Column: col,
			Mean:   stat.Mean(vs, nil),
			StdDev: stat.StdDev(vs, nil),
			Min:    min,
			Max:    max,
		}
	}

	return summaries, rows, nil
}
