package raster

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/flood-validation-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGrid = `ncols 3
nrows 2
xllcorner 100
yllcorner 200
cellsize 10
NODATA_value -9999
0.1 0.2 0.3
0.4 -9999 0.6
`

func TestParseASCIIGrid(t *testing.T) {
	t.Run("full header", func(t *testing.T) {
		g, err := ParseASCIIGrid(strings.NewReader(sampleGrid))

		require.NoError(t, err)
		assert.Equal(t, 3, g.Cols)
		assert.Equal(t, 2, g.Rows)
		assert.Equal(t, 100.0, g.XMin)
		assert.Equal(t, 200.0, g.YMin)
		assert.Equal(t, 10.0, g.CellSize)
		assert.Equal(t, -9999.0, g.NoData)
		assert.Equal(t, 0.1, g.Value(0, 0))
		assert.Equal(t, 0.6, g.Value(2, 1))
	})

	t.Run("case-insensitive headers", func(t *testing.T) {
		input := strings.NewReader("NCOLS 1\nNROWS 1\nXLLCORNER 0\nYLLCORNER 0\nCELLSIZE 1\n0.5\n")
		g, err := ParseASCIIGrid(input)

		require.NoError(t, err)
		assert.Equal(t, 0.5, g.Value(0, 0))
	})

	t.Run("center origin converted to corner", func(t *testing.T) {
		input := strings.NewReader("ncols 1\nnrows 1\nxllcenter 105\nyllcenter 205\ncellsize 10\n0.5\n")
		g, err := ParseASCIIGrid(input)

		require.NoError(t, err)
		assert.Equal(t, 100.0, g.XMin)
		assert.Equal(t, 200.0, g.YMin)
	})

	t.Run("default no-data sentinel", func(t *testing.T) {
		input := strings.NewReader("ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n-9999\n")
		g, err := ParseASCIIGrid(input)

		require.NoError(t, err)
		assert.True(t, math.IsNaN(g.SampleOne(domain.Point{X: 0.5, Y: 0.5})))
	})

	t.Run("values spanning multiple lines per row", func(t *testing.T) {
		input := strings.NewReader("ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n0.1 0.2\n0.3\n0.4\n")
		g, err := ParseASCIIGrid(input)

		require.NoError(t, err)
		assert.Equal(t, 0.4, g.Value(1, 1))
	})

	t.Run("missing required header", func(t *testing.T) {
		input := strings.NewReader("ncols 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n0.5\n")
		_, err := ParseASCIIGrid(input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing header nrows")
	})

	t.Run("missing origin", func(t *testing.T) {
		input := strings.NewReader("ncols 1\nnrows 1\ncellsize 1\n0.5\n")
		_, err := ParseASCIIGrid(input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing origin")
	})

	t.Run("invalid dimensions", func(t *testing.T) {
		input := strings.NewReader("ncols 0\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n")
		_, err := ParseASCIIGrid(input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid dimensions")
	})

	t.Run("non-numeric cell", func(t *testing.T) {
		input := strings.NewReader("ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\nabc\n")
		_, err := ParseASCIIGrid(input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "cell value")
	})

	t.Run("cell count mismatch", func(t *testing.T) {
		input := strings.NewReader("ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n0.1 0.2 0.3\n")
		_, err := ParseASCIIGrid(input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 4 cells, got 3")
	})
}

func TestLoadASCIIGrid(t *testing.T) {
	t.Run("with prj sidecar", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "susceptibility.asc")
		require.NoError(t, os.WriteFile(path, []byte(sampleGrid), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "susceptibility.prj"), []byte("EPSG:32643\n"), 0o644))

		g, err := LoadASCIIGrid(path)
		require.NoError(t, err)
		assert.Equal(t, "EPSG:32643", g.CRS)
	})

	t.Run("without prj sidecar", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "grid.asc")
		require.NoError(t, os.WriteFile(path, []byte(sampleGrid), 0o644))

		g, err := LoadASCIIGrid(path)
		require.NoError(t, err)
		assert.Empty(t, g.CRS)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadASCIIGrid(filepath.Join(t.TempDir(), "nope.asc"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
