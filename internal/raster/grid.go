// Package raster provides a susceptibility grid type with point sampling,
// an ESRI ASCII grid reader, and a cached grid store for the server.
package raster

import (
	"math"

	"github.com/couchcryptid/flood-validation-service/internal/domain"
)

// Grid is a regular single-band raster. Cell (0,0) is the top-left corner;
// rows run north to south, matching the ASCII grid row order on disk.
type Grid struct {
	// CRS identifies the coordinate reference system of the grid, taken
	// from a .prj sidecar when present. Empty means unknown.
	CRS string

	Cols, Rows int
	// XMin and YMin are the coordinates of the lower-left corner of the
	// lower-left cell (the ASCII grid xllcorner/yllcorner convention).
	XMin, YMin float64
	CellSize   float64
	// NoData is the sentinel value marking cells without a measurement.
	NoData float64

	// values holds Rows*Cols cells in row-major order, top row first.
	values []float64
}

// NewGrid builds a grid from header fields plus row-major cell values, top
// row first. len(values) must equal meta.Cols*meta.Rows.
func NewGrid(meta Grid, values []float64) *Grid {
	if len(values) != meta.Cols*meta.Rows {
		panic("raster: value count does not match grid dimensions")
	}
	meta.values = values
	return &meta
}

// Value returns the raw cell value, including the no-data sentinel. Callers
// must pass indices in range; use SampleOne for coordinate lookups.
func (g *Grid) Value(col, row int) float64 {
	return g.at(col, row)
}

// Bounds returns the outer edges of the grid in map units.
func (g *Grid) Bounds() (xmin, ymin, xmax, ymax float64) {
	return g.XMin, g.YMin,
		g.XMin + float64(g.Cols)*g.CellSize,
		g.YMin + float64(g.Rows)*g.CellSize
}

// at returns the raw cell value. Callers must pass indices in range.
func (g *Grid) at(col, row int) float64 {
	return g.values[row*g.Cols+col]
}

// SampleOne returns the value of the cell containing the point, or NaN when
// the point is outside the grid or the cell holds the no-data sentinel.
func (g *Grid) SampleOne(p domain.Point) float64 {
	col := int(math.Floor((p.X - g.XMin) / g.CellSize))
	// Row 0 is the top of the grid, so flip the y axis.
	row := g.Rows - 1 - int(math.Floor((p.Y-g.YMin)/g.CellSize))

	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return math.NaN()
	}
	v := g.at(col, row)
	if v == g.NoData {
		return math.NaN()
	}
	return v
}

// Sample returns one score per point, same order and length as the input.
// Out-of-bounds and no-data locations yield NaN; sampling never fails a
// whole batch. Pure read: a Grid is never mutated after parsing, so Sample
// is safe for concurrent use.
func (g *Grid) Sample(points []domain.Point) []float64 {
	scores := make([]float64, len(points))
	for i, p := range points {
		scores[i] = g.SampleOne(p)
	}
	return scores
}
