package vector

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/flood-validation-service/internal/domain"
)

// ParseCSV decodes coordinate rows. The first row may be a header naming an
// x column (x, lon, easting) and a y column (y, lat, northing); headerless
// files are read as bare "x,y" pairs. Extra columns are ignored. CSV carries
// no CRS metadata, so the returned set has an empty CRS.
func ParseCSV(r io.Reader) (PointSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return PointSet{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return PointSet{}, nil
	}

	xCol, yCol := 0, 1
	start := 0
	if cols, ok := headerColumns(rows[0]); ok {
		xCol, yCol = cols[0], cols[1]
		start = 1
	}

	set := PointSet{}
	for i, row := range rows[start:] {
		if len(row) <= xCol || len(row) <= yCol {
			return PointSet{}, fmt.Errorf("parse csv: row %d: too few columns", start+i+1)
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(row[xCol]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(row[yCol]), 64)
		if errX != nil || errY != nil {
			return PointSet{}, fmt.Errorf("parse csv: row %d: invalid coordinate %q,%q", start+i+1, row[xCol], row[yCol])
		}
		set.Points = append(set.Points, domain.Point{X: x, Y: y})
	}
	return set, nil
}

// headerColumns detects a coordinate header row and returns the [x, y]
// column indices.
func headerColumns(row []string) ([2]int, bool) {
	xNames := map[string]bool{"x": true, "lon": true, "longitude": true, "easting": true}
	yNames := map[string]bool{"y": true, "lat": true, "latitude": true, "northing": true}

	cols := [2]int{-1, -1}
	for i, field := range row {
		name := strings.ToLower(strings.TrimSpace(field))
		if xNames[name] && cols[0] < 0 {
			cols[0] = i
		}
		if yNames[name] && cols[1] < 0 {
			cols[1] = i
		}
	}
	if cols[0] >= 0 && cols[1] >= 0 {
		return cols, true
	}
	return [2]int{}, false
}
