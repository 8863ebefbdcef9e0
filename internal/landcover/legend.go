// Package landcover implements the habitat covariate core: neighborhood
// construction, zonal extraction of class codes, composition summaries, and
// routing of observation years onto available layer years.
package landcover

import "fmt"

// Class is one category of the landcover classification product.
type Class struct {
	Code int
	Name string
}

// Legend is the ordered (ascending code) set of classes for a product.
// Every composition vector produced in a run is aligned to one legend, so
// independently computed rows join into a single table.
type Legend []Class

// DefaultLegend is the 16-class annual landcover classification used by the
// source satellite product.
func DefaultLegend() Legend {
	return Legend{
		{1, "evergreen needleleaf forest"},
		{2, "evergreen broadleaf forest"},
		{3, "deciduous needleleaf forest"},
		{4, "deciduous broadleaf forest"},
		{5, "mixed forest"},
		{6, "closed shrubland"},
		{7, "open shrubland"},
		{8, "woody savanna"},
		{9, "savanna"},
		{10, "grassland"},
		{11, "permanent wetland"},
		{12, "cropland"},
		{13, "urban and built-up"},
		{14, "cropland/natural mosaic"},
		{15, "permanent snow and ice"},
		{16, "barren"},
	}
}

// Index returns the position of a class code within the legend.
func (l Legend) Index(code int) (int, bool) {
	for i, c := range l {
		if c.Code == code {
			return i, true
		}
	}
	return 0, false
}

// Columns returns one stable column name per class, e.g. pland_01..pland_16.
func (l Legend) Columns(prefix string) []string {
	cols := make([]string, len(l))
	for i, c := range l {
		cols[i] = fmt.Sprintf("%s_%02d", prefix, c.Code)
	}
	return cols
}
