package raster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// defaultNoData matches the ESRI writer default when the header omits
// NODATA_value.
const defaultNoData = -9999

// ParseASCIIGrid reads an ESRI ASCII grid (.asc): a header of
// ncols/nrows/xllcorner/yllcorner/cellsize and optional NODATA_value,
// followed by nrows lines of whitespace-separated cell values, top row first.
// Header keywords are case-insensitive; xllcenter/yllcenter variants are
// converted to the corner convention.
func ParseASCIIGrid(r io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	header := map[string]float64{}
	var firstDataLine string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		key := strings.ToLower(fields[0])
		if !isHeaderKey(key) {
			firstDataLine = line
			break
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("parse ascii grid: malformed header line %q", line)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse ascii grid: header %s: %w", key, err)
		}
		header[key] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse ascii grid: %w", err)
	}

	g, err := gridFromHeader(header)
	if err != nil {
		return nil, err
	}

	g.values = make([]float64, 0, g.Cols*g.Rows)
	appendRow := func(line string) error {
		for _, f := range strings.Fields(line) {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("parse ascii grid: cell value %q: %w", f, err)
			}
			g.values = append(g.values, v)
		}
		return nil
	}

	if firstDataLine != "" {
		if err := appendRow(firstDataLine); err != nil {
			return nil, err
		}
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := appendRow(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse ascii grid: %w", err)
	}

	if len(g.values) != g.Cols*g.Rows {
		return nil, fmt.Errorf("parse ascii grid: expected %d cells, got %d", g.Cols*g.Rows, len(g.values))
	}
	return g, nil
}

func isHeaderKey(key string) bool {
	switch key {
	case "ncols", "nrows", "xllcorner", "yllcorner", "xllcenter", "yllcenter", "cellsize", "nodata_value":
		return true
	}
	return false
}

func gridFromHeader(header map[string]float64) (*Grid, error) {
	for _, required := range []string{"ncols", "nrows", "cellsize"} {
		if _, ok := header[required]; !ok {
			return nil, fmt.Errorf("parse ascii grid: missing header %s", required)
		}
	}

	cols := int(header["ncols"])
	rows := int(header["nrows"])
	cell := header["cellsize"]
	if cols <= 0 || rows <= 0 || cell <= 0 {
		return nil, fmt.Errorf("parse ascii grid: invalid dimensions ncols=%d nrows=%d cellsize=%g", cols, rows, cell)
	}

	xmin, xok := header["xllcorner"]
	ymin, yok := header["yllcorner"]
	if !xok {
		if xc, ok := header["xllcenter"]; ok {
			xmin, xok = xc-cell/2, true
		}
	}
	if !yok {
		if yc, ok := header["yllcenter"]; ok {
			ymin, yok = yc-cell/2, true
		}
	}
	if !xok || !yok {
		return nil, fmt.Errorf("parse ascii grid: missing origin (xllcorner/yllcorner)")
	}

	nodata := float64(defaultNoData)
	if v, ok := header["nodata_value"]; ok {
		nodata = v
	}

	return &Grid{
		Cols:     cols,
		Rows:     rows,
		XMin:     xmin,
		YMin:     ymin,
		CellSize: cell,
		NoData:   nodata,
	}, nil
}

// LoadASCIIGrid reads an .asc file from disk. A sibling .prj file, when
// present, supplies the CRS string (stored verbatim, typically WKT or an
// EPSG code).
func LoadASCIIGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raster: %w", err)
	}
	defer f.Close()

	g, err := ParseASCIIGrid(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	prj := strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
	if data, err := os.ReadFile(prj); err == nil {
		g.CRS = strings.TrimSpace(string(data))
	}

	return g, nil
}
