package observation

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// IngestStats summarizes an ingestion pass.
type IngestStats struct {
	Read    int
	Skipped int
}

// ReadFile reads observation records from a CSV file. Rows that fail to
// decode are skipped and counted; one bad row never aborts the batch.
func ReadFile(path string) ([]Record, IngestStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, IngestStats{}, eris.Wrapf(err, "observation: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	recs, stats, err := Read(f)
	if err != nil {
		return nil, stats, eris.Wrapf(err, "observation: read %s", path)
	}
	return recs, stats, nil
}

// Read decodes observation records from CSV data.
func Read(r io.Reader) ([]Record, IngestStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // allow variable fields

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if err == io.EOF {
			return nil, IngestStats{}, eris.New("observation: empty input")
		}
		return nil, IngestStats{}, eris.Wrap(err, "observation: read header")
	}

	// The projected-coordinate columns must exist: without them every row
	// would decode to coordinates at the raster origin.
	xCol, yCol := -1, -1
	for i, h := range dec.Header() {
		switch h {
		case "x":
			xCol = i
		case "y":
			yCol = i
		}
	}
	if xCol < 0 || yCol < 0 {
		return nil, IngestStats{}, eris.New("observation: input is missing projected coordinate columns x and y")
	}

	var (
		recs  []Record
		stats IngestStats
	)
	for {
		var rec Record
		decErr := dec.Decode(&rec)
		if decErr == io.EOF {
			break
		}
		if decErr != nil {
			stats.Skipped++
			zap.L().Debug("observation: skipping malformed row", zap.Error(decErr))
			continue
		}
		if rec.LocationID == "" {
			stats.Skipped++
			zap.L().Debug("observation: skipping row without location_id")
			continue
		}
		raw := dec.Record()
		if len(raw) <= xCol || len(raw) <= yCol || raw[xCol] == "" || raw[yCol] == "" {
			stats.Skipped++
			zap.L().Debug("observation: skipping row without projected coordinates",
				zap.String("location_id", rec.LocationID))
			continue
		}
		stats.Read++
		recs = append(recs, rec)
	}

	return recs, stats, nil
}
