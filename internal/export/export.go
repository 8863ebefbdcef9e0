// Package export writes composition tables and the grid template to disk.
package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/avianlab/habitat-cli/internal/landcover"
	"github.com/avianlab/habitat-cli/internal/pipeline"
)

// PropColumnPrefix is the prefix of the per-class proportion columns.
const PropColumnPrefix = "pland"

// WriteObservationCSV writes the per-(location, year) composition table.
// Columns: location_id, year, landcover_year, then one proportion column per
// legend class in ascending code order.
func WriteObservationCSV(path string, legend landcover.Legend, rows []pipeline.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	defer w.Flush()

	header := append([]string{"location_id", "year", "landcover_year"}, legend.Columns(PropColumnPrefix)...)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	for _, r := range rows {
		rec := make([]string, 0, len(header))
		rec = append(rec,
			r.LocationID,
			strconv.Itoa(r.Year),
			strconv.Itoa(r.LandcoverYear),
		)
		rec = appendProps(rec, r.Comp.Props)
		if err := w.Write(rec); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "export: flush")
}

// WriteGridCSV writes the prediction-surface composition table.
// Columns: cell_id, x, y, landcover_year, then one proportion column per class.
func WriteGridCSV(path string, legend landcover.Legend, cells []pipeline.GridCell) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	defer w.Flush()

	header := append([]string{"cell_id", "x", "y", "landcover_year"}, legend.Columns(PropColumnPrefix)...)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	for _, c := range cells {
		rec := make([]string, 0, len(header))
		rec = append(rec,
			strconv.FormatInt(c.ID, 10),
			formatFloat(c.X),
			formatFloat(c.Y),
			strconv.Itoa(c.LandcoverYear),
		)
		rec = appendProps(rec, c.Comp.Props)
		if err := w.Write(rec); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "export: flush")
}

// WriteTemplate writes the rasterizable grid template as JSON.
func WriteTemplate(path string, tpl pipeline.Template) error {
	data, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: marshal template")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}

func appendProps(rec []string, props []float64) []string {
	for _, p := range props {
		rec = append(rec, formatFloat(p))
	}
	return rec
}

// formatFloat uses the shortest representation that round-trips exactly, so
// output files diff cleanly and reload without loss.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
